package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds the metadata documents describing the generated dataset:
// what exists, who owns it, how it flows and which quality checks run on it.
type Catalog struct {
	Datasets   []Dataset
	Owners     []Owner
	Glossary   []GlossaryTerm
	Flows      []LineageFlow
	Gaps       []LineageGap
	Assertions []QualityAssertion
}

type Dataset struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Domain      string   `yaml:"domain" json:"domain"`
	Tags        []string `yaml:"tags" json:"tags"`
	RowEstimate int64    `yaml:"row_estimate" json:"row_estimate,omitempty"`
	UpdateCycle string   `yaml:"update_cycle" json:"update_cycle,omitempty"`

	Relevance int      `yaml:"-" json:"_relevance"`
	Owners    []string `yaml:"-" json:"owners"`
}

type Owner struct {
	Name     string   `yaml:"name" json:"name"`
	Role     string   `yaml:"role" json:"role"`
	Team     string   `yaml:"team" json:"team,omitempty"`
	Datasets []string `yaml:"datasets" json:"datasets"`
}

type GlossaryTerm struct {
	Term       string   `yaml:"term" json:"term"`
	Definition string   `yaml:"definition" json:"definition"`
	Related    []string `yaml:"related_datasets" json:"related_datasets,omitempty"`
}

type LineageFlow struct {
	Name  string        `yaml:"name" json:"name"`
	Edges []LineageEdge `yaml:"edges" json:"edges"`
}

type LineageEdge struct {
	Upstream   string `yaml:"upstream" json:"upstream"`
	Downstream string `yaml:"downstream" json:"downstream"`
	Transform  string `yaml:"transform" json:"transform,omitempty"`
}

type LineageGap struct {
	Dataset string `yaml:"dataset" json:"dataset"`
	Note    string `yaml:"note" json:"note"`
}

type QualityAssertion struct {
	Dataset string `yaml:"dataset" json:"dataset"`
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"`
	Status  string `yaml:"status" json:"status"`
	LastRun string `yaml:"last_run" json:"last_run,omitempty"`
	Details string `yaml:"details" json:"details,omitempty"`
}

// SearchOptions narrow and enrich a metadata search.
type SearchOptions struct {
	FilterTags     []string
	FilterOwner    string
	FilterDomain   string
	IncludeLineage bool
	IncludeQuality bool
}

// SearchResult mirrors the tool contract: datasets sorted by relevance plus
// optional glossary, lineage and quality sections.
type SearchResult struct {
	Datasets          []Dataset          `json:"datasets"`
	GlossaryMatches   []GlossaryTerm     `json:"glossary_matches"`
	Lineage           []LineageMatch     `json:"lineage"`
	QualityAssertions []QualityAssertion `json:"quality_assertions"`
	Error             string             `json:"error,omitempty"`
}

type LineageMatch struct {
	FlowName string       `json:"flow_name,omitempty"`
	Edge     *LineageEdge `json:"edge,omitempty"`
	Gap      *LineageGap  `json:"gap,omitempty"`
}

// LoadCatalog reads every catalog document from dir. Each file is optional;
// a catalog missing the lineage or quality documents simply yields empty
// sections for those searches.
func LoadCatalog(dir string) (*Catalog, error) {
	c := &Catalog{}

	var datasetsDoc struct {
		Datasets []Dataset `yaml:"datasets"`
	}
	if err := readYAML(filepath.Join(dir, "datasets.yaml"), &datasetsDoc); err != nil {
		return nil, err
	}
	c.Datasets = datasetsDoc.Datasets

	var ownershipDoc struct {
		Owners []Owner `yaml:"owners"`
	}
	if err := readYAML(filepath.Join(dir, "ownership.yaml"), &ownershipDoc); err != nil {
		return nil, err
	}
	c.Owners = ownershipDoc.Owners

	var glossaryDoc struct {
		GlossaryTerms []GlossaryTerm `yaml:"glossary_terms"`
	}
	if err := readYAML(filepath.Join(dir, "glossary.yaml"), &glossaryDoc); err != nil {
		return nil, err
	}
	c.Glossary = glossaryDoc.GlossaryTerms

	var lineageDoc struct {
		Flows []LineageFlow `yaml:"lineage_flows"`
		Gaps  []LineageGap  `yaml:"undocumented_gaps"`
	}
	if err := readYAML(filepath.Join(dir, "lineage.yaml"), &lineageDoc); err != nil {
		return nil, err
	}
	c.Flows = lineageDoc.Flows
	c.Gaps = lineageDoc.Gaps

	var qualityDoc struct {
		Assertions []QualityAssertion `yaml:"assertions"`
	}
	if err := readYAML(filepath.Join(dir, "quality.yaml"), &qualityDoc); err != nil {
		return nil, err
	}
	c.Assertions = qualityDoc.Assertions

	return c, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Search scores datasets by free-text relevance: a name hit outweighs a tag
// hit, which outweighs a description hit. Filters narrow the result set and
// never widen it.
func (c *Catalog) Search(term string, opts SearchOptions) SearchResult {
	result := SearchResult{
		Datasets:          []Dataset{},
		GlossaryMatches:   []GlossaryTerm{},
		Lineage:           []LineageMatch{},
		QualityAssertions: []QualityAssertion{},
	}
	search := strings.ToLower(term)

	for _, ds := range c.Datasets {
		score := 0
		if strings.Contains(strings.ToLower(ds.Name), search) {
			score += 10
		}
		if strings.Contains(strings.ToLower(ds.Description), search) {
			score += 5
		}
		for _, tag := range ds.Tags {
			if strings.Contains(strings.ToLower(tag), search) {
				score += 8
				break
			}
		}

		if len(opts.FilterTags) > 0 && !hasAnyTag(ds.Tags, opts.FilterTags) {
			continue
		}
		if opts.FilterDomain != "" && !strings.EqualFold(opts.FilterDomain, ds.Domain) {
			continue
		}
		if score == 0 && len(opts.FilterTags) == 0 {
			continue
		}

		ds.Relevance = score
		ds.Owners = c.ownersOf(ds.Name)
		result.Datasets = append(result.Datasets, ds)
	}

	if opts.FilterOwner != "" {
		result.Datasets = c.filterByOwner(result.Datasets, opts.FilterOwner)
	}

	for _, t := range c.Glossary {
		if strings.Contains(strings.ToLower(t.Term), search) ||
			strings.Contains(strings.ToLower(t.Definition), search) {
			result.GlossaryMatches = append(result.GlossaryMatches, t)
		}
	}

	if opts.IncludeLineage {
		for _, flow := range c.Flows {
			for i := range flow.Edges {
				edge := flow.Edges[i]
				if strings.Contains(strings.ToLower(edge.Upstream), search) ||
					strings.Contains(strings.ToLower(edge.Downstream), search) {
					result.Lineage = append(result.Lineage, LineageMatch{FlowName: flow.Name, Edge: &edge})
				}
			}
		}
		for i := range c.Gaps {
			gap := c.Gaps[i]
			if strings.Contains(strings.ToLower(gap.Dataset), search) ||
				strings.Contains(strings.ToLower(gap.Note), search) {
				result.Lineage = append(result.Lineage, LineageMatch{Gap: &gap})
			}
		}
	}

	if opts.IncludeQuality {
		failureProbe := strings.Contains(search, "fail") ||
			strings.Contains(search, "quality") || strings.Contains(search, "issue")
		for _, a := range c.Assertions {
			if strings.Contains(strings.ToLower(a.Dataset), search) ||
				strings.Contains(strings.ToLower(a.Name), search) ||
				(a.Status == "FAIL" && failureProbe) {
				result.QualityAssertions = append(result.QualityAssertions, a)
			}
		}
	}

	sort.SliceStable(result.Datasets, func(i, j int) bool {
		if result.Datasets[i].Relevance != result.Datasets[j].Relevance {
			return result.Datasets[i].Relevance > result.Datasets[j].Relevance
		}
		return result.Datasets[i].Name < result.Datasets[j].Name
	})
	return result
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// ownersOf resolves the owners of one dataset, honouring "*" (everything)
// and "schema.*" (whole schema) entries in the ownership document.
func (c *Catalog) ownersOf(name string) []string {
	var out []string
	for _, owner := range c.Owners {
		if ownerCovers(owner.Datasets, name) {
			out = append(out, fmt.Sprintf("%s (%s)", owner.Name, owner.Role))
		}
	}
	return out
}

func (c *Catalog) filterByOwner(datasets []Dataset, filterOwner string) []Dataset {
	needle := strings.ToLower(filterOwner)
	var covered []string
	for _, owner := range c.Owners {
		if strings.Contains(strings.ToLower(owner.Name), needle) {
			covered = append(covered, owner.Datasets...)
		}
	}

	var out []Dataset
	for _, ds := range datasets {
		if ownerCovers(covered, ds.Name) {
			out = append(out, ds)
		}
	}
	if out == nil {
		out = []Dataset{}
	}
	return out
}

func ownerCovers(patterns []string, name string) bool {
	for _, p := range patterns {
		switch {
		case p == "*":
			return true
		case strings.HasSuffix(p, ".*"):
			if strings.HasPrefix(name, strings.TrimSuffix(p, "*")) {
				return true
			}
		case p == name:
			return true
		}
	}
	return false
}

package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/knakk/rdf"
)

// OntologyResult is the payload for a SPARQL query. Parse and evaluation
// failures populate Error and leave the data fields empty.
type OntologyResult struct {
	Variables []string            `json:"variables,omitempty"`
	Rows      []map[string]string `json:"rows,omitempty"`
	RowCount  int                 `json:"row_count"`
	Error     string              `json:"error,omitempty"`
}

// OntologyTool evaluates a SPARQL SELECT subset over the banking ontology
// documents: basic graph patterns with '.' and ';' separators, PREFIX
// declarations, DISTINCT and LIMIT. That subset covers concept, mapping and
// lineage lookups; OPTIONAL, UNION and FILTER are rejected with an error.
type OntologyTool struct {
	triples []triple
}

type triple struct {
	s, p, o string
}

// defaultPrefixes are always in scope, matching the published ontology
// namespaces, so short queries work without PREFIX boilerplate.
var defaultPrefixes = map[string]string{
	"meridian": "http://meridianbank.co.uk/ontology#",
	"map":      "http://meridianbank.co.uk/mapping#",
	"lin":      "http://meridianbank.co.uk/lineage#",
	"rdf":      "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs":     "http://www.w3.org/2000/01/rdf-schema#",
	"owl":      "http://www.w3.org/2002/07/owl#",
	"skos":     "http://www.w3.org/2004/02/skos/core#",
	"xsd":      "http://www.w3.org/2001/XMLSchema#",
}

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// LoadOntology parses every Turtle document in dir into one in-memory graph.
func LoadOntology(dir string) (*OntologyTool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ontology directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".ttl") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("no ontology documents found in %s", dir)
	}

	tool := &OntologyTool{}
	for _, file := range files {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file, err)
		}
		decoded, err := rdf.NewTripleDecoder(f, rdf.Turtle).DecodeAll()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		for _, t := range decoded {
			tool.triples = append(tool.triples, triple{
				s: t.Subj.String(),
				p: t.Pred.String(),
				o: t.Obj.String(),
			})
		}
	}
	return tool, nil
}

// TripleCount reports the size of the loaded graph.
func (t *OntologyTool) TripleCount() int { return len(t.triples) }

// Query evaluates a SPARQL SELECT query against the loaded graph.
func (t *OntologyTool) Query(sparql string) OntologyResult {
	q, err := parseSPARQL(sparql)
	if err != nil {
		return OntologyResult{Error: err.Error()}
	}

	bindings := t.solve(q.patterns, map[string]string{})

	vars := q.selected
	if len(vars) == 0 {
		vars = q.patternVars()
	}

	seen := map[string]bool{}
	rows := make([]map[string]string, 0, len(bindings))
	for _, b := range bindings {
		row := make(map[string]string, len(vars))
		for _, v := range vars {
			row[v] = b[v]
		}
		if q.distinct {
			key := rowKey(vars, row)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		rows = append(rows, row)
		if q.limit > 0 && len(rows) >= q.limit {
			break
		}
	}

	return OntologyResult{Variables: vars, Rows: rows, RowCount: len(rows)}
}

func rowKey(vars []string, row map[string]string) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = row[v]
	}
	return strings.Join(parts, "\x1f")
}

// solve joins the graph patterns left to right, extending the binding set
// pattern by pattern.
func (t *OntologyTool) solve(patterns []pattern, binding map[string]string) []map[string]string {
	if len(patterns) == 0 {
		return []map[string]string{binding}
	}

	head, rest := patterns[0], patterns[1:]
	var out []map[string]string
	for _, tr := range t.triples {
		next, ok := head.match(tr, binding)
		if !ok {
			continue
		}
		out = append(out, t.solve(rest, next)...)
	}
	return out
}

type term struct {
	value string
	isVar bool
}

type pattern struct {
	s, p, o term
}

func (pt pattern) match(tr triple, binding map[string]string) (map[string]string, bool) {
	next := binding
	extend := func(tm term, value string) bool {
		if !tm.isVar {
			return tm.value == value
		}
		if bound, ok := next[tm.value]; ok {
			return bound == value
		}
		if sameMap(next, binding) {
			next = make(map[string]string, len(binding)+1)
			for k, v := range binding {
				next[k] = v
			}
		}
		next[tm.value] = value
		return true
	}

	if !extend(pt.s, tr.s) || !extend(pt.p, tr.p) || !extend(pt.o, tr.o) {
		return nil, false
	}
	return next, true
}

func sameMap(a, b map[string]string) bool {
	return len(a) == len(b)
}

type sparqlQuery struct {
	selected []string
	distinct bool
	limit    int
	patterns []pattern
}

func (q *sparqlQuery) patternVars() []string {
	var vars []string
	seen := map[string]bool{}
	for _, p := range q.patterns {
		for _, tm := range []term{p.s, p.p, p.o} {
			if tm.isVar && !seen[tm.value] {
				seen[tm.value] = true
				vars = append(vars, tm.value)
			}
		}
	}
	return vars
}

func parseSPARQL(query string) (*sparqlQuery, error) {
	tokens, err := tokenizeSPARQL(query)
	if err != nil {
		return nil, err
	}

	prefixes := make(map[string]string, len(defaultPrefixes))
	for k, v := range defaultPrefixes {
		prefixes[k] = v
	}

	q := &sparqlQuery{}
	i := 0

	for i < len(tokens) && strings.EqualFold(tokens[i], "PREFIX") {
		if i+2 >= len(tokens) {
			return nil, fmt.Errorf("incomplete PREFIX declaration")
		}
		name := strings.TrimSuffix(tokens[i+1], ":")
		iri := tokens[i+2]
		if !strings.HasPrefix(iri, "<") || !strings.HasSuffix(iri, ">") {
			return nil, fmt.Errorf("PREFIX %s: expected an IRI, got %q", name, iri)
		}
		prefixes[name] = strings.Trim(iri, "<>")
		i += 3
	}

	if i >= len(tokens) || !strings.EqualFold(tokens[i], "SELECT") {
		return nil, fmt.Errorf("only SELECT queries are supported")
	}
	i++

	if i < len(tokens) && strings.EqualFold(tokens[i], "DISTINCT") {
		q.distinct = true
		i++
	}

	for i < len(tokens) && strings.HasPrefix(tokens[i], "?") {
		q.selected = append(q.selected, strings.TrimPrefix(tokens[i], "?"))
		i++
	}
	if i < len(tokens) && tokens[i] == "*" {
		i++
	}
	if len(q.selected) == 0 && (i == 0 || tokens[i-1] != "*") {
		return nil, fmt.Errorf("SELECT needs at least one variable or *")
	}

	if i >= len(tokens) || !strings.EqualFold(tokens[i], "WHERE") {
		return nil, fmt.Errorf("expected WHERE clause")
	}
	i++
	if i >= len(tokens) || tokens[i] != "{" {
		return nil, fmt.Errorf("expected '{' after WHERE")
	}
	i++

	var current pattern
	var have int
	for i < len(tokens) && tokens[i] != "}" {
		tok := tokens[i]
		switch {
		case strings.EqualFold(tok, "OPTIONAL"), strings.EqualFold(tok, "UNION"),
			strings.EqualFold(tok, "FILTER"), strings.EqualFold(tok, "MINUS"):
			return nil, fmt.Errorf("unsupported SPARQL feature: %s", strings.ToUpper(tok))
		case tok == ".":
			if have != 0 && have != 3 {
				return nil, fmt.Errorf("incomplete triple pattern before '.'")
			}
			have = 0
		case tok == ";":
			if have != 3 {
				return nil, fmt.Errorf("';' without a complete preceding pattern")
			}
			// Keep the subject, expect a new predicate and object.
			have = 1
		default:
			tm, err := parseTerm(tok, prefixes)
			if err != nil {
				return nil, err
			}
			switch have {
			case 0:
				current = pattern{s: tm}
			case 1:
				current.p = tm
			case 2:
				current.o = tm
			default:
				return nil, fmt.Errorf("unexpected token %q after complete pattern (missing '.'?)", tok)
			}
			have++
			if have == 3 {
				q.patterns = append(q.patterns, current)
			}
		}
		i++
	}
	if i >= len(tokens) {
		return nil, fmt.Errorf("unterminated WHERE block")
	}
	if have != 0 && have != 3 {
		return nil, fmt.Errorf("incomplete triple pattern at end of WHERE block")
	}
	i++

	if i < len(tokens) && strings.EqualFold(tokens[i], "LIMIT") {
		if i+1 >= len(tokens) {
			return nil, fmt.Errorf("LIMIT needs a value")
		}
		n, err := strconv.Atoi(tokens[i+1])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid LIMIT value %q", tokens[i+1])
		}
		q.limit = n
		i += 2
	}
	if i < len(tokens) {
		return nil, fmt.Errorf("unexpected trailing token %q", tokens[i])
	}
	if len(q.patterns) == 0 {
		return nil, fmt.Errorf("WHERE block contains no triple patterns")
	}
	return q, nil
}

func parseTerm(tok string, prefixes map[string]string) (term, error) {
	switch {
	case strings.HasPrefix(tok, "?"):
		return term{value: strings.TrimPrefix(tok, "?"), isVar: true}, nil
	case tok == "a":
		return term{value: rdfType}, nil
	case strings.HasPrefix(tok, "<") && strings.HasSuffix(tok, ">"):
		return term{value: strings.Trim(tok, "<>")}, nil
	case strings.HasPrefix(tok, `"`):
		lit := strings.TrimPrefix(tok, `"`)
		if idx := strings.LastIndex(lit, `"`); idx >= 0 {
			lit = lit[:idx]
		}
		return term{value: lit}, nil
	case strings.Contains(tok, ":"):
		parts := strings.SplitN(tok, ":", 2)
		base, ok := prefixes[parts[0]]
		if !ok {
			return term{}, fmt.Errorf("unknown prefix %q", parts[0])
		}
		return term{value: base + parts[1]}, nil
	default:
		return term{}, fmt.Errorf("cannot parse term %q", tok)
	}
}

// tokenizeSPARQL splits a query into terms, keeping IRIs and quoted literals
// intact and treating '{', '}', '.', ';' as standalone tokens.
func tokenizeSPARQL(query string) ([]string, error) {
	var tokens []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, buf.String())
			buf.Reset()
		}
	}

	runes := []rune(query)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '#':
			flush()
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case c == '<':
			flush()
			j := i
			for j < len(runes) && runes[j] != '>' {
				j++
			}
			if j == len(runes) {
				return nil, fmt.Errorf("unterminated IRI")
			}
			tokens = append(tokens, string(runes[i:j+1]))
			i = j
		case c == '"':
			flush()
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				if runes[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated string literal")
			}
			// Swallow a trailing datatype or language tag.
			end := j + 1
			if end+1 < len(runes) && runes[end] == '^' && runes[end+1] == '^' {
				end += 2
				for end < len(runes) && !isBreak(runes[end]) {
					end++
				}
			} else if end < len(runes) && runes[end] == '@' {
				for end < len(runes) && !isBreak(runes[end]) {
					end++
				}
			}
			tokens = append(tokens, string(runes[i:j+1]))
			i = end - 1
		case c == '{' || c == '}' || c == ';':
			flush()
			tokens = append(tokens, string(c))
		case c == '.':
			// A dot inside a prefixed name or number stays put.
			if buf.Len() > 0 && i+1 < len(runes) && !isBreak(runes[i+1]) {
				buf.WriteRune(c)
			} else {
				flush()
				tokens = append(tokens, ".")
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			buf.WriteRune(c)
		}
	}
	flush()
	return tokens, nil
}

func isBreak(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' ||
		c == '{' || c == '}' || c == ';' || c == '.'
}

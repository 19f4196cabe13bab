package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridianhq/meridian/internal/config"
	"github.com/meridianhq/meridian/internal/store"
	"github.com/meridianhq/meridian/internal/tools"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run read-only queries against the generated estate",
	Long: `Query the generated dataset through one of the three surfaces:

  sql       read-only SQL against PostgreSQL (SELECT/WITH only, 500 row cap)
  metadata  search the dataset catalog, glossary, lineage and quality checks
  ontology  SPARQL SELECT over the banking ontology

Results are printed as JSON. Failures are reported inside the JSON
payload, matching what an agent integration receives.`,
}

var querySQLCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a read-only SQL query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		dbURL, err := cfg.DatabaseURL()
		if err != nil {
			return err
		}

		ctx := context.Background()
		st := store.New()
		if err := st.Connect(ctx, dbURL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()

		result := tools.NewSQLTool(st.Pool()).Query(ctx, args[0])
		return printJSON(result)
	},
}

var queryMetadataCmd = &cobra.Command{
	Use:   "metadata <search>",
	Short: "Search the metadata catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		catalog, err := tools.LoadCatalog(cfg.Metadata.CatalogDir)
		if err != nil {
			return fmt.Errorf("failed to load metadata catalog: %w", err)
		}

		tags, _ := cmd.Flags().GetString("tags")
		owner, _ := cmd.Flags().GetString("owner")
		domain, _ := cmd.Flags().GetString("domain")
		lineage, _ := cmd.Flags().GetBool("lineage")
		quality, _ := cmd.Flags().GetBool("quality")

		opts := tools.SearchOptions{
			FilterOwner:    owner,
			FilterDomain:   domain,
			IncludeLineage: lineage,
			IncludeQuality: quality,
		}
		if tags != "" {
			opts.FilterTags = strings.Split(tags, ",")
		}

		return printJSON(catalog.Search(args[0], opts))
	},
}

var queryOntologyCmd = &cobra.Command{
	Use:   "ontology <sparql>",
	Short: "Run a SPARQL SELECT query over the banking ontology",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ont, err := tools.LoadOntology(cfg.Ontology.Dir)
		if err != nil {
			return fmt.Errorf("failed to load ontology: %w", err)
		}

		return printJSON(ont.Query(args[0]))
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	queryMetadataCmd.Flags().String("tags", "", "comma-separated tags to filter on")
	queryMetadataCmd.Flags().String("owner", "", "filter datasets by owner name")
	queryMetadataCmd.Flags().String("domain", "", "filter datasets by domain")
	queryMetadataCmd.Flags().Bool("lineage", false, "include lineage matches")
	queryMetadataCmd.Flags().Bool("quality", false, "include data quality assertions")

	queryCmd.AddCommand(querySQLCmd)
	queryCmd.AddCommand(queryMetadataCmd)
	queryCmd.AddCommand(queryOntologyCmd)
	rootCmd.AddCommand(queryCmd)
}

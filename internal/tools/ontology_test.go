package tools

import (
	"os"
	"path/filepath"
	"testing"
)

const testTurtle = `@prefix meridian: <http://meridianbank.co.uk/ontology#> .
@prefix map: <http://meridianbank.co.uk/mapping#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .

meridian:Customer a owl:Class ;
    rdfs:label "Customer" ;
    map:mapsToTable "core_banking.customers" ;
    map:mapsToTable "warehouse_core.dim_customer" .

meridian:Account a owl:Class ;
    rdfs:label "Account" ;
    map:mapsToTable "core_banking.accounts" .

meridian:hasAccount a owl:ObjectProperty ;
    rdfs:domain meridian:Customer ;
    rdfs:range meridian:Account .
`

func loadTestOntology(t *testing.T) *OntologyTool {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test.ttl"), []byte(testTurtle), 0o644); err != nil {
		t.Fatal(err)
	}
	tool, err := LoadOntology(dir)
	if err != nil {
		t.Fatalf("failed to load ontology: %v", err)
	}
	return tool
}

func TestOntologyQueryBasicPattern(t *testing.T) {
	tool := loadTestOntology(t)

	res := tool.Query(`SELECT ?table WHERE { meridian:Customer map:mapsToTable ?table }`)
	if res.Error != "" {
		t.Fatalf("query failed: %s", res.Error)
	}
	if res.RowCount != 2 {
		t.Fatalf("expected 2 table mappings, got %d: %v", res.RowCount, res.Rows)
	}
	found := map[string]bool{}
	for _, row := range res.Rows {
		found[row["table"]] = true
	}
	if !found["core_banking.customers"] || !found["warehouse_core.dim_customer"] {
		t.Errorf("unexpected mappings: %v", res.Rows)
	}
}

func TestOntologyQueryJoin(t *testing.T) {
	tool := loadTestOntology(t)

	res := tool.Query(`SELECT ?concept ?table WHERE {
		?concept a owl:Class .
		?concept map:mapsToTable ?table
	}`)
	if res.Error != "" {
		t.Fatalf("query failed: %s", res.Error)
	}
	if res.RowCount != 3 {
		t.Errorf("expected 3 concept/table pairs, got %d", res.RowCount)
	}
	if len(res.Variables) != 2 || res.Variables[0] != "concept" || res.Variables[1] != "table" {
		t.Errorf("unexpected variable order: %v", res.Variables)
	}
}

func TestOntologyQueryPrefixDeclaration(t *testing.T) {
	tool := loadTestOntology(t)

	res := tool.Query(`PREFIX ex: <http://meridianbank.co.uk/ontology#>
		SELECT ?label WHERE { ex:Account rdfs:label ?label }`)
	if res.Error != "" {
		t.Fatalf("query failed: %s", res.Error)
	}
	if res.RowCount != 1 || res.Rows[0]["label"] != "Account" {
		t.Errorf("unexpected result: %v", res.Rows)
	}
}

func TestOntologyQueryLimitAndDistinct(t *testing.T) {
	tool := loadTestOntology(t)

	res := tool.Query(`SELECT ?s WHERE { ?s ?p ?o } LIMIT 2`)
	if res.Error != "" {
		t.Fatalf("query failed: %s", res.Error)
	}
	if res.RowCount != 2 {
		t.Errorf("LIMIT 2 returned %d rows", res.RowCount)
	}

	res = tool.Query(`SELECT DISTINCT ?s WHERE { ?s map:mapsToTable ?o }`)
	if res.Error != "" {
		t.Fatalf("query failed: %s", res.Error)
	}
	if res.RowCount != 2 {
		t.Errorf("DISTINCT should collapse to the 2 mapped concepts, got %d", res.RowCount)
	}
}

func TestOntologyQueryErrorsInPayload(t *testing.T) {
	tool := loadTestOntology(t)

	cases := []string{
		"",
		"ASK { ?s ?p ?o }",
		"SELECT ?s WHERE { ?s ?p }",
		"SELECT ?s WHERE { ?s ?p ?o ",
		"SELECT ?s WHERE { ?s unknownprefix:thing ?o }",
		"SELECT ?s WHERE { OPTIONAL { ?s ?p ?o } }",
	}
	for _, q := range cases {
		res := tool.Query(q)
		if res.Error == "" {
			t.Errorf("query %q should fail inside the payload, got %v", q, res.Rows)
		}
		if res.RowCount != 0 {
			t.Errorf("failed query %q reported rows", q)
		}
	}
}

func TestLoadOntologyMissingDir(t *testing.T) {
	if _, err := LoadOntology(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for a missing ontology directory")
	}
}

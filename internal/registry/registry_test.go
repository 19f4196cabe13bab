package registry

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestRegisterAndIDs(t *testing.T) {
	rg := New()
	rg.Register("customer", []int64{1, 2, 3})

	ids, err := rg.IDs("customer")
	if err != nil {
		t.Fatalf("IDs returned error: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("unexpected id set: %v", ids)
	}
}

func TestIDsNotFound(t *testing.T) {
	rg := New()
	rg.Register("customer", []int64{1})
	rg.Register("account", []int64{10})

	_, err := rg.IDs("product")
	if err == nil {
		t.Fatal("expected error for unregistered entity type")
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
	if nf.Requested != "product" {
		t.Errorf("Requested = %q, want product", nf.Requested)
	}
	msg := err.Error()
	if !strings.Contains(msg, "account") || !strings.Contains(msg, "customer") {
		t.Errorf("error should list registered types, got %q", msg)
	}
}

func TestRegisterOverwrites(t *testing.T) {
	rg := New()
	rg.Register("customer", []int64{1, 2})
	rg.Register("customer", []int64{5})

	ids, _ := rg.IDs("customer")
	if len(ids) != 1 || ids[0] != 5 {
		t.Errorf("second Register should replace the set, got %v", ids)
	}
}

func TestGroups(t *testing.T) {
	rg := New()
	rg.RegisterGroups("product", map[string][]int64{
		"current_account": {1, 2},
		"savings":         {3},
	})

	groups, err := rg.Groups("product")
	if err != nil {
		t.Fatalf("Groups returned error: %v", err)
	}
	if len(groups["current_account"]) != 2 || len(groups["savings"]) != 1 {
		t.Errorf("unexpected groups: %v", groups)
	}

	if _, err := rg.Groups("customer"); err == nil {
		t.Error("expected error for unregistered group type")
	}
}

func TestRandomIDsWithReplacement(t *testing.T) {
	rg := New()
	rg.Register("customer", []int64{100, 200, 300})

	r := rand.New(rand.NewSource(42))
	ids, err := rg.RandomIDs(r, "customer", 50)
	if err != nil {
		t.Fatalf("RandomIDs returned error: %v", err)
	}
	if len(ids) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(ids))
	}
	valid := map[int64]bool{100: true, 200: true, 300: true}
	for _, id := range ids {
		if !valid[id] {
			t.Fatalf("sampled id %d not in registered set", id)
		}
	}
}

func TestRandomIDsDeterministic(t *testing.T) {
	rg := New()
	rg.Register("account", []int64{1, 2, 3, 4, 5})

	a, _ := rg.RandomIDs(rand.New(rand.NewSource(7)), "account", 20)
	b, _ := rg.RandomIDs(rand.New(rand.NewSource(7)), "account", 20)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sampling diverged at index %d with identical sources", i)
		}
	}
}

func TestSummary(t *testing.T) {
	rg := New()
	rg.Register("customer", []int64{1, 2, 3})
	rg.Register("account", []int64{1})

	s := rg.Summary()
	if s["customer"] != 3 || s["account"] != 1 {
		t.Errorf("unexpected summary: %v", s)
	}
}

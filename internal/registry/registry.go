package registry

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Registry is the cross-stage lookup of persisted primary keys. A stage
// registers the full id set for an entity type only after the rows are
// committed; later stages sample the set to obtain valid foreign keys.
// Execution is strictly sequential, so no locking is needed.
type Registry struct {
	ids    map[string][]int64
	groups map[string]map[string][]int64
}

// NotFoundError reports a lookup for an entity type that was never registered,
// listing what is registered so ordering mistakes are obvious.
type NotFoundError struct {
	Requested string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registry: no ids registered for %q (available: %s)",
		e.Requested, strings.Join(e.Available, ", "))
}

func New() *Registry {
	return &Registry{
		ids:    make(map[string][]int64),
		groups: make(map[string]map[string][]int64),
	}
}

// Register stores the full id set for an entity type. Calling it twice for the
// same type overwrites the previous set; stages are expected to call it once.
func (rg *Registry) Register(entityType string, ids []int64) {
	rg.ids[entityType] = ids
}

// RegisterGroups stores ids partitioned by category, e.g. products by product
// category so account generation can draw within one category.
func (rg *Registry) RegisterGroups(entityType string, byGroup map[string][]int64) {
	rg.groups[entityType] = byGroup
}

// IDs returns the registered id set, or a NotFoundError if the producing stage
// has not run.
func (rg *Registry) IDs(entityType string) ([]int64, error) {
	ids, ok := rg.ids[entityType]
	if !ok {
		return nil, &NotFoundError{Requested: entityType, Available: rg.available()}
	}
	return ids, nil
}

// Groups returns the category-partitioned id sets for an entity type.
func (rg *Registry) Groups(entityType string) (map[string][]int64, error) {
	g, ok := rg.groups[entityType]
	if !ok {
		return nil, &NotFoundError{Requested: entityType, Available: rg.available()}
	}
	return g, nil
}

// RandomIDs samples n ids with replacement. The caller supplies the random
// source so sampling stays on the calling stage's deterministic stream.
func (rg *Registry) RandomIDs(r *rand.Rand, entityType string, n int) ([]int64, error) {
	ids, err := rg.IDs(entityType)
	if err != nil {
		return nil, err
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = ids[r.Intn(len(ids))]
	}
	return out, nil
}

// RandomID samples a single id with replacement.
func (rg *Registry) RandomID(r *rand.Rand, entityType string) (int64, error) {
	ids, err := rg.IDs(entityType)
	if err != nil {
		return 0, err
	}
	return ids[r.Intn(len(ids))], nil
}

// Count returns the number of registered ids for an entity type.
func (rg *Registry) Count(entityType string) (int, error) {
	ids, err := rg.IDs(entityType)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Summary maps each registered entity type to its id count.
func (rg *Registry) Summary() map[string]int {
	out := make(map[string]int, len(rg.ids))
	for k, v := range rg.ids {
		out[k] = len(v)
	}
	return out
}

func (rg *Registry) available() []string {
	names := make([]string, 0, len(rg.ids))
	for k := range rg.ids {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

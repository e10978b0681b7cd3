// Package scope provides the ordered, typed variable set that flows
// across entries within one file run. Unlike the teacher's plain
// name-to-string map, each variable carries its own runtime Value and a
// secret flag that, once set, can never be cleared (spec.md §3).
package scope

import (
	"math/rand"
	"sync"

	"github.com/vdobler/rq/value"
)

// Variable is one named entry in a Set.
type Variable struct {
	Name   string
	Value  value.Value
	Secret bool
}

// Set is an ordered, name-addressable collection of Variables. Insertion
// order is preserved for deterministic logging; re-assigning an existing
// name updates its value in place without changing its position.
type Set struct {
	byName map[string]int
	vars   []Variable
}

// New creates an empty Set.
func New() *Set {
	return &Set{byName: map[string]int{}}
}

// Get returns the named variable and whether it is defined.
func (s *Set) Get(name string) (Variable, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Variable{}, false
	}
	return s.vars[i], true
}

// Set inserts or updates a variable. A variable already marked secret
// stays secret even if called again with secret=false: the Invariant in
// spec.md §3 is that a secret can never be demoted.
func (s *Set) Set(name string, v value.Value, secret bool) {
	if i, ok := s.byName[name]; ok {
		s.vars[i].Value = v
		if secret {
			s.vars[i].Secret = true
		}
		return
	}
	s.byName[name] = len(s.vars)
	s.vars = append(s.vars, Variable{Name: name, Value: v, Secret: secret})
}

// Names returns variable names in insertion order.
func (s *Set) Names() []string {
	out := make([]string, len(s.vars))
	for i, v := range s.vars {
		out[i] = v.Name
	}
	return out
}

// All returns every variable in insertion order.
func (s *Set) All() []Variable {
	out := make([]Variable, len(s.vars))
	copy(out, s.vars)
	return out
}

// Copy returns an independent deep copy of s. Used to give each work-pool
// worker its own variable set so that entries run in parallel across
// files never observe each other's captures (spec.md §5).
func (s *Set) Copy() *Set {
	cpy := &Set{
		byName: make(map[string]int, len(s.byName)),
		vars:   make([]Variable, len(s.vars)),
	}
	copy(cpy.vars, s.vars)
	for k, v := range s.byName {
		cpy.byName[k] = v
	}
	return cpy
}

// SecretStrings returns the string form of every secret-marked variable's
// current value, for seeding the redactor (spec.md §4.10).
func (s *Set) SecretStrings() []string {
	var out []string
	for _, v := range s.vars {
		if !v.Secret {
			continue
		}
		if str, ok := v.Value.String(); ok {
			out = append(out, str)
		}
	}
	return out
}

// ----------------------------------------------------------------------------
// Random source behind RandomIntn. Seeded, not cryptographic; no builtin
// calls it (newUuid uses github.com/google/uuid).

var random *rand.Rand
var randMux sync.Mutex

func init() {
	random = rand.New(rand.NewSource(34))
}

// RandomIntn returns a random int in the range [0,n). Safe for concurrent
// use.
func RandomIntn(n int) int {
	randMux.Lock()
	defer randMux.Unlock()
	return random.Intn(n)
}

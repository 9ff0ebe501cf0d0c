// Package scope resolves material and transform names against an ordered
// list of tables, the current room's overrides first and the global
// defaults last.
package scope

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/chazu/penmap/pkg/diag"
	"github.com/samber/lo"
)

// TransformSuffix is appended to a material name to find its texture
// mapping.
const TransformSuffix = "_transform"

// Table maps a name such as "wall" or "wall_transform" to its value.
type Table map[string]string

// Merge returns a new table holding t overlaid with o.
func (t Table) Merge(o Table) Table {
	return lo.Assign(t, o)
}

// Resolve scans scopes in order and returns the first value bound to name.
func Resolve(scopes []Table, name string) (string, bool) {
	for _, s := range scopes {
		if v, ok := s[name]; ok {
			return v, true
		}
	}
	return "", false
}

// Resolver turns names into final material and transform strings,
// expanding {fmt,min-max} templates in materials.
type Resolver struct {
	rng     *rand.Rand
	counter int
	started bool
}

// NewResolver returns a resolver that expands templates round-robin.
func NewResolver() *Resolver {
	return &Resolver{}
}

// NewRandomResolver returns a resolver that expands templates with a
// pseudo-random source seeded with seed.
func NewRandomResolver(seed int64) *Resolver {
	return &Resolver{rng: rand.New(rand.NewSource(seed))}
}

// Material resolves name for room and expands any template in the result.
func (r *Resolver) Material(scopes []Table, room int, name string) (string, error) {
	v, ok := Resolve(scopes, name)
	if !ok {
		return "", diag.Roomf(diag.Lookup, room, "material %s is not known about in room %d", name, room)
	}
	out, err := r.Expand(v)
	if err != nil {
		return "", diag.Roomf(diag.Lookup, room, "material %s: %v", name, err)
	}
	return out, nil
}

// Transform resolves the texture mapping of material name for room.
func (r *Resolver) Transform(scopes []Table, room int, name string) (string, error) {
	v, ok := Resolve(scopes, name+TransformSuffix)
	if !ok {
		return "", diag.Roomf(diag.Lookup, room, "transform for %s is not known about in room %d", name, room)
	}
	return v, nil
}

// Expand replaces the first {fmt,min-max} group in s with fmt formatted
// with a number in [min, max]. Strings without a group are returned as is.
func (r *Resolver) Expand(s string) (string, error) {
	i := strings.IndexByte(s, '{')
	if i < 0 {
		return s, nil
	}
	j := strings.IndexByte(s[i:], '}')
	if j < 0 {
		return "", fmt.Errorf("template is incomplete as there is no terminating } in %q", s)
	}
	j += i
	body := s[i+1 : j]
	if body == "" {
		return s[:i] + s[j+1:], nil
	}
	format, limits, ok := strings.Cut(body, ",")
	if !ok {
		return "", fmt.Errorf("template %q needs a format and a range", body)
	}
	from, to, ok := strings.Cut(limits, "-")
	if !ok {
		return "", fmt.Errorf("template range %q must be min-max", limits)
	}
	first, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return "", fmt.Errorf("template range %q: %v", limits, err)
	}
	last, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return "", fmt.Errorf("template range %q: %v", limits, err)
	}
	if last < first {
		return "", fmt.Errorf("template range %q is empty", limits)
	}
	return s[:i] + fmt.Sprintf(format, r.pick(first, last)) + s[j+1:], nil
}

// pick returns the next number in [first, last]. The round-robin counter
// is shared by every template and restarts at first when it leaves the
// range.
func (r *Resolver) pick(first, last int) int {
	if r.rng != nil {
		return first + r.rng.Intn(last-first+1)
	}
	if r.started {
		r.counter++
	} else {
		r.started = true
		r.counter = first
	}
	if r.counter < first || r.counter > last {
		r.counter = first
	}
	return r.counter
}

// Defaults returns a fresh copy of the built-in global table.
func Defaults() Table {
	return Table{
		"portal":            "textures/editor/visportal",
		"open":              "textures/editor/visportal",
		"closed":            "textures/hell/wood1",
		"secret":            "textures/hell/cbrick2",
		"wall":              "textures/hell/cbrick2",
		"floor":             "textures/hell/qfloor",
		"plinth":            "textures/hell/qfloor",
		"ceiling":           "textures/hell/wood1",
		"brick":             "textures/caves/sbricks2",
		"open_transform":    "( ( 0.0078125 0 0 ) ( 0 0.0078125 1.5 ) )",
		"portal_transform":  "( ( 0.0078125 0 0 ) ( 0 0.0078125 1.5 ) )",
		"closed_transform":  "( ( 0.0078125 0 0 ) ( 0 0.0078125 0 ) )",
		"wall_transform":    "( ( 0.0078125 0 0.5 ) ( 0 -0.0078125 -1 ) )",
		"floor_transform":   "( ( 0.03 0 0 ) ( 0 0.03 0 ) )",
		"plinth_transform":  "( ( 0.03 0 0 ) ( 0 0.03 0 ) )",
		"ceiling_transform": "( ( 0.0078125 0 0 ) ( 0 0.0078125 0 ) )",
		"secret_transform":  "( ( 0.0156250019 0 1.0000002384 ) ( 0 0.015625 6.25 ) )",
		"brick_transform":   "( ( 0.015625 0 0 ) ( 0 0.0078125 0 ) )",
	}
}

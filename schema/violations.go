package schema

import (
	"encoding/json"
	"slices"
	"sort"
)

// ViolationSet maps a plugin identity to the set of its unstable dependency identities.
// Insertion is set-union per key, so rediscovering a pair never inflates the set.
// A key is only present while it holds at least one value.
type ViolationSet struct {
	entries map[string]map[string]struct{}
}

// NewViolationSet returns an empty set.
func NewViolationSet() *ViolationSet {
	return &ViolationSet{entries: make(map[string]map[string]struct{})}
}

// Put adds the given dependencies under plugin. Calling it with no dependencies is a no-op.
func (v *ViolationSet) Put(plugin string, dependencies ...string) {
	if len(dependencies) == 0 {
		return
	}
	if v.entries == nil {
		v.entries = make(map[string]map[string]struct{})
	}
	bucket, ok := v.entries[plugin]
	if !ok {
		bucket = make(map[string]struct{}, len(dependencies))
		v.entries[plugin] = bucket
	}
	for _, dep := range dependencies {
		bucket[dep] = struct{}{}
	}
}

// Merge unions other into v.
func (v *ViolationSet) Merge(other *ViolationSet) {
	if other == nil {
		return
	}
	for plugin, bucket := range other.entries {
		for dep := range bucket {
			v.Put(plugin, dep)
		}
	}
}

// RemoveKey drops the whole group of plugin and reports whether it was present.
func (v *ViolationSet) RemoveKey(plugin string) bool {
	if v == nil || v.entries == nil {
		return false
	}
	if _, ok := v.entries[plugin]; !ok {
		return false
	}
	delete(v.entries, plugin)
	return true
}

// Contains reports whether the (plugin, dependency) pair is present.
func (v *ViolationSet) Contains(plugin, dependency string) bool {
	if v == nil {
		return false
	}
	_, ok := v.entries[plugin][dependency]
	return ok
}

// HasKey reports whether plugin has at least one violation.
func (v *ViolationSet) HasKey(plugin string) bool {
	if v == nil {
		return false
	}
	_, ok := v.entries[plugin]
	return ok
}

// IsEmpty reports whether the set holds no pairs.
func (v *ViolationSet) IsEmpty() bool {
	return v == nil || len(v.entries) == 0
}

// Len returns the number of (plugin, dependency) pairs.
func (v *ViolationSet) Len() int {
	if v == nil {
		return 0
	}
	n := 0
	for _, bucket := range v.entries {
		n += len(bucket)
	}
	return n
}

// Plugins returns the plugin identities in sorted order.
func (v *ViolationSet) Plugins() []string {
	if v == nil {
		return nil
	}
	keys := make([]string, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dependencies returns the dependency identities of plugin in sorted order.
func (v *ViolationSet) Dependencies(plugin string) []string {
	if v == nil {
		return nil
	}
	bucket := v.entries[plugin]
	deps := make([]string, 0, len(bucket))
	for d := range bucket {
		deps = append(deps, d)
	}
	slices.Sort(deps)
	return deps
}

// Pairs returns every (plugin, dependency) pair in sorted order.
func (v *ViolationSet) Pairs() []Violation {
	var pairs []Violation
	for _, plugin := range v.Plugins() {
		for _, dep := range v.Dependencies(plugin) {
			pairs = append(pairs, Violation{Plugin: plugin, Dependency: dep})
		}
	}
	return pairs
}

// Map returns a sorted, plain copy of the set, suitable for encoding.
func (v *ViolationSet) Map() map[string][]string {
	out := make(map[string][]string)
	for _, plugin := range v.Plugins() {
		out[plugin] = v.Dependencies(plugin)
	}
	return out
}

// Equal reports whether both sets hold the same pairs.
func (v *ViolationSet) Equal(other *ViolationSet) bool {
	if v.Len() != other.Len() {
		return false
	}
	for _, p := range v.Pairs() {
		if !other.Contains(p.Plugin, p.Dependency) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as an object of sorted arrays.
func (v *ViolationSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON decodes an object of arrays into the set.
func (v *ViolationSet) UnmarshalJSON(data []byte) error {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.entries = make(map[string]map[string]struct{}, len(raw))
	for plugin, deps := range raw {
		v.Put(plugin, deps...)
	}
	return nil
}

// Violation is a single (plugin, dependency) pair.
type Violation struct {
	Plugin     string `json:"plugin"`
	Dependency string `json:"dependency"`
}

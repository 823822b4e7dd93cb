// Package fieldpath resolves dot- or bracket-notation key paths against
// arbitrarily nested records. Tracker exports disagree about where a
// value lives (`value.bpm`, `levels.summary.light.minutes`, a bare CSV
// column), so extraction is driven by configured paths instead of
// per-format structs.
//
// Resolution is a best-effort probe: a missing key or a non-mapping
// intermediate stops the walk and reports absence together with the
// last value reached, which callers use for membership checks against
// partially present subtrees. Resolution never fails and never mutates
// the record.
package fieldpath

import "strings"

// Path is an ordered key sequence locating a value inside a nested
// record. Immutable once built.
type Path []string

// Parse builds a Path from a spec string. Both dot notation
// ("levels.summary") and bracket notation ("[levels][summary]") are
// accepted; a spec without delimiters is a single-key path.
func Parse(spec string) Path {
	if strings.HasPrefix(spec, "[") && strings.HasSuffix(spec, "]") {
		trimmed := spec[1 : len(spec)-1]
		return Path(strings.Split(trimmed, "]["))
	}
	return Path(strings.Split(spec, "."))
}

// ParseAll parses a list of path specs.
func ParseAll(specs []string) []Path {
	paths := make([]Path, len(specs))
	for i, s := range specs {
		paths[i] = Parse(s)
	}
	return paths
}

// String renders the path in dot notation.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Resolve walks the record one key at a time. It returns the terminal
// value and true when every key matched. When a key is absent or an
// intermediate value is not a mapping, it returns the last value
// successfully reached and false. The record is never modified.
func Resolve(rec map[string]any, p Path) (any, bool) {
	var cur any = rec
	for _, key := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return cur, false
		}
		next, ok := m[key]
		if !ok {
			return cur, false
		}
		cur = next
	}
	return cur, true
}

// KeysAt returns the key set of the mapping reached by p, or false when
// the path does not terminate at a mapping. Order is unspecified.
func KeysAt(rec map[string]any, p Path) ([]string, bool) {
	v, found := Resolve(rec, p)
	if !found {
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys, true
}

// Contains reports whether key appears under the subtree reached by p.
// For a mapping terminal the check is key membership. For a list
// terminal (per-stage rows in some exports) any element that is itself
// a mapping matches when one of its string values contains key,
// case-insensitively.
func Contains(rec map[string]any, p Path, key string) bool {
	v, found := Resolve(rec, p)
	if !found {
		return false
	}
	switch t := v.(type) {
	case map[string]any:
		_, ok := t[key]
		return ok
	case []any:
		for _, elem := range t {
			m, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			for _, ev := range m {
				s, ok := ev.(string)
				if ok && strings.Contains(strings.ToLower(s), strings.ToLower(key)) {
					return true
				}
			}
		}
	}
	return false
}

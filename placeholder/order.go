package placeholder

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultPrivilegedPrefix marks identity (full name) fields, which lead
// their group.
const DefaultPrivilegedPrefix = "ФИО"

var numbered = regexp.MustCompile(`^(.*)_(\d+)$`)

// Orderer sorts tag names for presentation as form fields.
//
// Unnumbered names come first, numbered names (<base>_<digits>) follow
// grouped by their number in ascending numeric order. Inside each group
// names starting with a privileged prefix lead, then the rest in
// case-insensitive order of the name (or base, for numbered names).
type Orderer struct {
	Privileged []string
}

// DefaultOrderer privileges DefaultPrivilegedPrefix.
var DefaultOrderer = Orderer{Privileged: []string{DefaultPrivilegedPrefix}}

// sortKey is the precomputed comparison key of one name.
type sortKey struct {
	name       string
	isNumbered bool
	number     string // digits without leading zeros
	rank       int    // 0 for privileged, 1 otherwise
	folded     string
}

// Order returns the names of set in presentation order.
func Order(set Set) []string {
	return DefaultOrderer.Order(set.Slice())
}

// Order returns a sorted copy of names. Duplicates are removed. The result
// depends only on the contents of names, not their order.
func (o Orderer) Order(names []string) []string {
	fold := cases.Fold()

	seen := make(map[string]bool, len(names))
	keys := make([]sortKey, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		keys = append(keys, o.key(fold, name))
	}

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.name
	}
	return out
}

// key classifies name.
func (o Orderer) key(fold cases.Caser, name string) sortKey {
	k := sortKey{name: name, rank: 1}

	base := name
	if m := numbered.FindStringSubmatch(name); m != nil {
		base = m[1]
		k.isNumbered = true
		k.number = strings.TrimLeft(m[2], "0")
	}

	for _, prefix := range o.Privileged {
		if prefix != "" && strings.HasPrefix(base, prefix) {
			k.rank = 0
			break
		}
	}

	k.folded = fold.String(base)
	return k
}

// less orders two keys; ties end on the raw name so the order is total.
func (a sortKey) less(b sortKey) bool {
	if a.isNumbered != b.isNumbered {
		return !a.isNumbered
	}
	if a.isNumbered {
		if c := compareDigits(a.number, b.number); c != 0 {
			return c < 0
		}
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.folded != b.folded {
		return a.folded < b.folded
	}
	return a.name < b.name
}

// compareDigits compares unsigned decimal strings without leading zeros
// numerically, so arbitrarily long suffixes never overflow.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

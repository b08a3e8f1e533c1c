package generator

import "strconv"

// nameGen hands out a stream of unique, prefix-tagged identifiers. Each
// Generator owns one set rather than sharing package-level counters, so
// two independently constructed generators never collide even if run in
// the same process (spec.md §5's ban on global mutable singletons).
type nameGen struct {
	counters map[string]int
}

func newNameGen() *nameGen {
	return &nameGen{counters: make(map[string]int)}
}

func (n *nameGen) next(prefix string) string {
	i := n.counters[prefix]
	n.counters[prefix] = i + 1
	return prefix + strconv.Itoa(i)
}

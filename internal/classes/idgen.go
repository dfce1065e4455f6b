// Package classes resolves the symbolic class, attribute group, attribute
// and template names found in annotation documents into the numeric IDs of a
// project's catalog.
package classes

// IDGenerator hands out synthetic negative class IDs for class names that
// have no catalog entry. The same name always maps to the same ID; distinct
// names get -1, -2, -3, ... in first-seen order. It is scoped to a single
// conversion pass and is not safe for concurrent use.
type IDGenerator struct {
	ids map[string]int
}

// NewIDGenerator returns an empty generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{ids: make(map[string]int)}
}

// NextID returns the synthetic ID for name, assigning one on first use.
func (g *IDGenerator) NextID(name string) int {
	if id, ok := g.ids[name]; ok {
		return id
	}
	id := -(len(g.ids) + 1)
	g.ids[name] = id
	return id
}

// Len returns the number of distinct names seen.
func (g *IDGenerator) Len() int {
	return len(g.ids)
}

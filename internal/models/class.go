// Package models defines the data structures shared across the SDK:
// the class catalog, annotation documents, video documents and the
// platform resources exposed by the REST API.
package models

// PlaceholderClassID is the ID carried by classes that have no server-side
// definition and by instances whose class could not be resolved.
const PlaceholderClassID = -1

// Attribute is a single selectable value inside an attribute group.
type Attribute struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AttributeGroup is a named set of attributes owned by a class.
type AttributeGroup struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	IsMultiple bool         `json:"is_multiselect,omitempty"`
	Attributes []*Attribute `json:"attributes"`
}

// AnnotationClass is a class definition from a project's class catalog.
type AnnotationClass struct {
	ID              int               `json:"id"`
	Name            string            `json:"name"`
	Color           string            `json:"color"`
	Type            string            `json:"type,omitempty"`
	AttributeGroups []*AttributeGroup `json:"attribute_groups"`
}

// IsPlaceholder reports whether the class was synthesized locally for an
// unknown class name rather than loaded from the server.
func (c *AnnotationClass) IsPlaceholder() bool {
	return c.ID == PlaceholderClassID
}

// Clone returns a deep copy of the class.
func (c *AnnotationClass) Clone() *AnnotationClass {
	out := &AnnotationClass{
		ID:    c.ID,
		Name:  c.Name,
		Color: c.Color,
		Type:  c.Type,
	}
	if c.AttributeGroups != nil {
		out.AttributeGroups = make([]*AttributeGroup, len(c.AttributeGroups))
		for i, g := range c.AttributeGroups {
			gc := &AttributeGroup{ID: g.ID, Name: g.Name, IsMultiple: g.IsMultiple}
			if g.Attributes != nil {
				gc.Attributes = make([]*Attribute, len(g.Attributes))
				for j, a := range g.Attributes {
					gc.Attributes[j] = &Attribute{ID: a.ID, Name: a.Name}
				}
			}
			out.AttributeGroups[i] = gc
		}
	}
	return out
}

// Template is a named geometry template that template instances refer to.
type Template struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

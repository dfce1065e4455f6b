package classes

import (
	"fmt"
	"math/rand"

	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/report"
)

// Catalog is the in-memory class catalog used for one resolution pass.
//
// Name lookups are served from explicit indexes. Among classes (or groups
// within a class, or attributes within a group) sharing a name, the first
// one in catalog order wins. The class index is dropped whenever a
// placeholder class is appended and rebuilt on the next lookup.
type Catalog struct {
	classes []*models.AnnotationClass

	byName map[string]*models.AnnotationClass
	groups map[*models.AnnotationClass]map[string]*models.AttributeGroup
	attrs  map[*models.AttributeGroup]map[string]*models.Attribute
}

// NewCatalog builds a catalog over classes. One warning is sent to rep for
// every class name, and every attribute group name within a class, that
// occurs more than once. rep may be nil.
func NewCatalog(classes []*models.AnnotationClass, rep report.Reporter) *Catalog {
	c := &Catalog{classes: append([]*models.AnnotationClass(nil), classes...)}
	if rep != nil {
		warnDuplicates(c.classes, rep)
	}
	return c
}

func warnDuplicates(classes []*models.AnnotationClass, rep report.Reporter) {
	counts := make(map[string]int, len(classes))
	for _, cls := range classes {
		counts[cls.Name]++
		if counts[cls.Name] == 2 {
			rep.LogWarning(fmt.Sprintf("Duplicated annotation class name %s", cls.Name))
		}
	}

	for _, cls := range classes {
		groupCounts := make(map[string]int, len(cls.AttributeGroups))
		for _, g := range cls.AttributeGroups {
			groupCounts[g.Name]++
			if groupCounts[g.Name] == 2 {
				rep.LogWarning(fmt.Sprintf("Duplicated annotation group name %s in class %s", g.Name, cls.Name))
			}
		}
	}
}

// Clone returns an independent deep copy of the catalog with empty lookup
// caches. Use one clone per goroutine when resolving documents in parallel.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{classes: make([]*models.AnnotationClass, len(c.classes))}
	for i, cls := range c.classes {
		out.classes[i] = cls.Clone()
	}
	return out
}

// Classes returns the catalog entries, placeholders included, in order.
func (c *Catalog) Classes() []*models.AnnotationClass {
	return append([]*models.AnnotationClass(nil), c.classes...)
}

// Len returns the number of entries, placeholders included.
func (c *Catalog) Len() int {
	return len(c.classes)
}

// Lookup returns the first class named name.
func (c *Catalog) Lookup(name string) (*models.AnnotationClass, bool) {
	if c.byName == nil {
		c.byName = make(map[string]*models.AnnotationClass, len(c.classes))
		for _, cls := range c.classes {
			if _, exists := c.byName[cls.Name]; !exists {
				c.byName[cls.Name] = cls
			}
		}
	}
	cls, ok := c.byName[name]
	return cls, ok
}

// Group returns the first attribute group of cls named name.
func (c *Catalog) Group(cls *models.AnnotationClass, name string) (*models.AttributeGroup, bool) {
	if c.groups == nil {
		c.groups = make(map[*models.AnnotationClass]map[string]*models.AttributeGroup)
	}
	idx, ok := c.groups[cls]
	if !ok {
		idx = make(map[string]*models.AttributeGroup, len(cls.AttributeGroups))
		for _, g := range cls.AttributeGroups {
			if _, exists := idx[g.Name]; !exists {
				idx[g.Name] = g
			}
		}
		c.groups[cls] = idx
	}
	g, ok := idx[name]
	return g, ok
}

// Attribute returns the first attribute of group named name.
func (c *Catalog) Attribute(group *models.AttributeGroup, name string) (*models.Attribute, bool) {
	if c.attrs == nil {
		c.attrs = make(map[*models.AttributeGroup]map[string]*models.Attribute)
	}
	idx, ok := c.attrs[group]
	if !ok {
		idx = make(map[string]*models.Attribute, len(group.Attributes))
		for _, a := range group.Attributes {
			if _, exists := idx[a.Name]; !exists {
				idx[a.Name] = a
			}
		}
		c.attrs[group] = idx
	}
	a, ok := idx[name]
	return a, ok
}

// AddPlaceholder appends a class with the placeholder ID, no attribute
// groups and a random color, and invalidates the name index.
func (c *Catalog) AddPlaceholder(name string) *models.AnnotationClass {
	cls := &models.AnnotationClass{
		ID:              models.PlaceholderClassID,
		Name:            name,
		Color:           randomColor(),
		AttributeGroups: []*models.AttributeGroup{},
	}
	c.classes = append(c.classes, cls)
	c.byName = nil
	return cls
}

func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}

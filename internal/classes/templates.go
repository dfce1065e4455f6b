package classes

import "github.com/annohub/anno/internal/models"

// TemplateCatalog maps template names to IDs. The first template with a
// given name wins.
type TemplateCatalog struct {
	byName map[string]int
}

// NewTemplateCatalog indexes templates by name.
func NewTemplateCatalog(templates []*models.Template) *TemplateCatalog {
	t := &TemplateCatalog{byName: make(map[string]int, len(templates))}
	for _, tpl := range templates {
		if _, exists := t.byName[tpl.Name]; !exists {
			t.byName[tpl.Name] = tpl.ID
		}
	}
	return t
}

// ID returns the ID of the template named name, or -1 if there is none.
// A nil catalog resolves nothing.
func (t *TemplateCatalog) ID(name string) int {
	if t == nil {
		return unresolvedID
	}
	if id, ok := t.byName[name]; ok {
		return id
	}
	return unresolvedID
}

package classes

import (
	"errors"
	"fmt"

	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/report"
)

// ErrMalformedDocument is returned when a document does not have the shape
// the resolver needs in order to walk it.
var ErrMalformedDocument = errors.New("malformed annotation document")

// unresolvedID marks an instance, template or class reference with no
// catalog match.
const unresolvedID = -1

// Resolver rewrites the symbolic references of annotation documents into
// catalog IDs. Unknown classes, groups, attributes and templates are not
// errors: they are reported to the Reporter and dropped or sentineled.
//
// A Resolver mutates its catalog (placeholder classes) and caches lookups,
// so it must not be shared between goroutines.
type Resolver struct {
	catalog   *Catalog
	templates *TemplateCatalog
	reporter  report.Reporter

	nullReported bool
}

// NewResolver creates a resolver over catalog and templates. templates may
// be nil, in which case every template instance gets templateId -1. A nil
// rep discards diagnostics.
func NewResolver(catalog *Catalog, templates *TemplateCatalog, rep report.Reporter) *Resolver {
	if rep == nil {
		rep = report.New(nil)
	}
	return &Resolver{catalog: catalog, templates: templates, reporter: rep}
}

// Catalog returns the catalog the resolver works against.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve fills classId, templateId and the attribute groupId/id fields of
// every instance in doc, in place, and returns doc.
func (r *Resolver) Resolve(doc models.Document) (models.Document, error) {
	raw, ok := doc[models.KeyInstances]
	if !ok {
		return doc, nil
	}

	instances, err := instanceObjects(raw)
	if err != nil {
		return nil, err
	}

	resolved := make([]*models.AnnotationClass, len(instances))
	for i, inst := range instances {
		cls, err := r.resolveClass(inst)
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
		resolved[i] = cls
	}

	for _, inst := range instances {
		if inst[models.KeyType] != models.InstanceTypeTemplate {
			continue
		}
		name, _ := inst[models.KeyTemplateName].(string)
		inst[models.KeyTemplateID] = r.templates.ID(name)
	}

	for i, inst := range instances {
		cls := resolved[i]
		if cls == nil || cls.ID <= 0 {
			continue
		}
		if err := r.resolveAttributes(inst, cls); err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}
	}

	return doc, nil
}

// resolveClass sets classId on inst and returns the catalog class it
// resolved to, or nil.
func (r *Resolver) resolveClass(inst map[string]interface{}) (*models.AnnotationClass, error) {
	rawName, ok := inst[models.KeyClassName]
	if !ok {
		inst[models.KeyClassID] = unresolvedID
		return nil, nil
	}
	if rawName == nil {
		// A null className never matches a catalog class. It is reported
		// once per resolver under the JSON literal.
		if !r.nullReported {
			r.reporter.LogWarning("Couldn't find class null")
			r.reporter.StoreMessage(report.MissingClasses, "null")
			r.nullReported = true
		}
		inst[models.KeyClassID] = unresolvedID
		inst[models.KeyAttributes] = []interface{}{}
		return nil, nil
	}
	name, ok := rawName.(string)
	if !ok {
		return nil, fmt.Errorf("%w: className is %T, not a string", ErrMalformedDocument, rawName)
	}

	cls, found := r.catalog.Lookup(name)
	switch {
	case !found:
		r.reporter.LogWarning(fmt.Sprintf("Couldn't find class %s", name))
		r.reporter.StoreMessage(report.MissingClasses, name)
		r.catalog.AddPlaceholder(name)
		inst[models.KeyClassID] = unresolvedID
		inst[models.KeyAttributes] = []interface{}{}
		return nil, nil
	case cls.IsPlaceholder():
		inst[models.KeyClassID] = unresolvedID
		inst[models.KeyAttributes] = []interface{}{}
		return nil, nil
	}

	inst[models.KeyClassID] = cls.ID
	return cls, nil
}

func (r *Resolver) resolveAttributes(inst map[string]interface{}, cls *models.AnnotationClass) error {
	raw, ok := inst[models.KeyAttributes]
	if !ok || raw == nil {
		return nil
	}
	attrs, ok := raw.([]interface{})
	if !ok {
		return fmt.Errorf("%w: attributes is %T, not an array", ErrMalformedDocument, raw)
	}

	kept := make([]interface{}, 0, len(attrs))
	for j, a := range attrs {
		attr, ok := a.(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: attribute %d is %T, not an object", ErrMalformedDocument, j, a)
		}

		groupName, _ := attr[models.KeyGroupName].(string)
		name, _ := attr[models.KeyName].(string)

		group, ok := r.catalog.Group(cls, groupName)
		if !ok {
			r.reporter.LogWarning(fmt.Sprintf("Couldn't find annotation group %s", groupName))
			r.reporter.StoreMessage(report.MissingAttributeGroups, cls.Name+"."+groupName)
			continue
		}
		attr[models.KeyGroupID] = group.ID

		def, ok := r.catalog.Attribute(group, name)
		if !ok {
			r.reporter.LogWarning(fmt.Sprintf("Couldn't find annotation name %s in annotation group %s", name, groupName))
			r.reporter.StoreMessage(report.MissingAttributes, cls.Name+"."+groupName+"."+name)
			delete(attr, models.KeyGroupID)
			continue
		}
		attr[models.KeyID] = def.ID
		kept = append(kept, attr)
	}

	inst[models.KeyAttributes] = kept
	return nil
}

func instanceObjects(raw interface{}) ([]map[string]interface{}, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: instances is %T, not an array", ErrMalformedDocument, raw)
	}

	out := make([]map[string]interface{}, len(list))
	for i, item := range list {
		inst, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: instance %d is %T, not an object", ErrMalformedDocument, i, item)
		}
		out[i] = inst
	}
	return out, nil
}

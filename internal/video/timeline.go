package video

import (
	"fmt"
	"sort"

	"github.com/annohub/anno/internal/classes"
	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/report"
)

// unknownClassName stands in for instances that carry no className.
const unknownClassName = "unknown_class"

// Converter builds editor timelines for the instances of one video
// document. Unresolved class names share one IDGenerator, so they get
// consistent synthetic IDs across the document. Use a new Converter for
// every document.
type Converter struct {
	catalog  *classes.Catalog
	reporter report.Reporter
	ids      *classes.IDGenerator
}

// NewConverter creates a converter that resolves against catalog and
// reports to rep. A nil rep discards diagnostics.
func NewConverter(catalog *classes.Catalog, rep report.Reporter) *Converter {
	if rep == nil {
		rep = report.New(nil)
	}
	return &Converter{
		catalog:  catalog,
		reporter: rep,
		ids:      classes.NewIDGenerator(),
	}
}

// ConvertDocument converts a whole video document.
func ConvertDocument(doc *models.VideoDocument, catalog *classes.Catalog, rep report.Reporter) *models.EditorDocument {
	c := NewConverter(catalog, rep)

	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}

	out := &models.EditorDocument{
		Instances: make([]*models.EditorInstance, 0, len(doc.Instances)),
		Tags:      tags,
		Name:      doc.Metadata.Name,
		Metadata: models.EditorMetadata{
			Name:     doc.Metadata.Name,
			Width:    doc.Metadata.Width,
			Height:   doc.Metadata.Height,
			Duration: convertDuration(doc.Metadata.Duration),
		},
	}

	for _, inst := range doc.Instances {
		out.Instances = append(out.Instances, c.BuildTimeline(inst))
	}
	return out
}

type attrKey struct {
	group string
	name  string
}

type activeSet map[attrKey]models.AttributeRef

// BuildTimeline converts one video instance.
func (c *Converter) BuildTimeline(inst models.VideoInstance) *models.EditorInstance {
	out := &models.EditorInstance{
		Attributes: []models.AttributeRef{},
		Timeline:   make(map[string]*models.TimelineEntry),
		Type:       inst.Meta.Type,
	}
	if len(inst.Meta.PointLabels) > 0 {
		out.PointLabels = inst.Meta.PointLabels
	}

	cls := c.resolveClass(inst.Meta.ClassName)
	if cls != nil {
		out.ClassID = cls.ID
	} else if inst.Meta.ClassName != nil {
		out.ClassID = c.ids.NextID(*inst.Meta.ClassName)
	} else {
		out.ClassID = c.ids.NextID(unknownClassName)
	}

	active := activeSet{}
	for _, param := range inst.Parameters {
		start := ConvertTimestamp(param.Start)
		end := ConvertTimestamp(param.End)

		for _, ts := range param.Timestamps {
			key := ConvertTimestamp(ts.Timestamp)
			entry, ok := out.Timeline[key]
			if !ok {
				entry = &models.TimelineEntry{}
				out.Timeline[key] = entry
			}

			// A keyframe that is both start and end ends up inactive.
			if key == start {
				entry.Active = boolPtr(true)
			}
			if key == end {
				entry.Active = boolPtr(false)
			}

			if ts.Points != nil {
				entry.Points = ts.Points
			}

			if cls == nil {
				continue
			}

			current := c.activeAttributes(cls, ts.Attributes)
			added := difference(current, active)
			removed := difference(active, current)
			if len(added) > 0 || len(removed) > 0 {
				entry.Attributes = &models.AttributeDelta{Added: added, Removed: removed}
			}
			active = current
		}
	}

	return out
}

// resolveClass returns the catalog class for name, or nil when the name is
// absent, unknown, or only known as a placeholder.
func (c *Converter) resolveClass(name *string) *models.AnnotationClass {
	if name == nil {
		return nil
	}
	cls, ok := c.catalog.Lookup(*name)
	if ok && !cls.IsPlaceholder() {
		return cls
	}
	c.reporter.LogWarning(fmt.Sprintf("Couldn't find class %s", *name))
	c.reporter.StoreMessage(report.MissingClasses, *name)
	return nil
}

func (c *Converter) activeAttributes(cls *models.AnnotationClass, refs []models.AttributeRefName) activeSet {
	set := make(activeSet, len(refs))
	for _, ref := range refs {
		group, ok := c.catalog.Group(cls, ref.GroupName)
		if !ok {
			c.reporter.StoreMessage(report.MissingAttributeGroups, cls.Name+"."+ref.GroupName)
			continue
		}
		attr, ok := c.catalog.Attribute(group, ref.Name)
		if !ok {
			c.reporter.StoreMessage(report.MissingAttributes, cls.Name+"."+ref.GroupName+"."+ref.Name)
			continue
		}
		set[attrKey{group: ref.GroupName, name: ref.Name}] = models.AttributeRef{ID: attr.ID, GroupID: group.ID}
	}
	return set
}

// difference returns the refs in a that are not in b, ordered by group ID
// and then attribute ID.
func difference(a, b activeSet) []models.AttributeRef {
	out := []models.AttributeRef{}
	for k, ref := range a {
		if _, ok := b[k]; !ok {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupID != out[j].GroupID {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func boolPtr(b bool) *bool {
	return &b
}

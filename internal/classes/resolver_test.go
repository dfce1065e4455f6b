package classes

import (
	"testing"

	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleCatalog() []*models.AnnotationClass {
	return []*models.AnnotationClass{
		{
			ID:    876855,
			Name:  "Personal vehicle",
			Color: "#ecb65f",
			AttributeGroups: []*models.AttributeGroup{
				{
					ID:   350510,
					Name: "Num doors",
					Attributes: []*models.Attribute{
						{ID: 1208404, Name: "2"},
						{ID: 1208405, Name: "4"},
					},
				},
			},
		},
	}
}

func parseDoc(t *testing.T, js string) models.Document {
	t.Helper()
	doc, err := models.ParseDocument([]byte(js))
	require.NoError(t, err)
	return doc
}

func instance(t *testing.T, doc models.Document, i int) map[string]interface{} {
	t.Helper()
	list, ok := doc[models.KeyInstances].([]interface{})
	require.True(t, ok)
	require.Greater(t, len(list), i)
	inst, ok := list[i].(map[string]interface{})
	require.True(t, ok)
	return inst
}

func newTestResolver(classes []*models.AnnotationClass, templates []*models.Template) (*Resolver, *report.Report) {
	rep := report.New(nil)
	r := NewResolver(NewCatalog(classes, rep), NewTemplateCatalog(templates), rep)
	return r, rep
}

func TestResolve_KnownClassAndAttribute(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[{"type":"bbox","className":"Personal vehicle",
		"attributes":[{"name":"2","groupName":"Num doors"}]}]}`)

	out, err := r.Resolve(doc)
	require.NoError(t, err)

	inst := instance(t, out, 0)
	assert.Equal(t, 876855, inst["classId"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "2", "groupName": "Num doors", "groupId": 350510, "id": 1208404},
	}, inst["attributes"])
	assert.True(t, rep.Empty())
}

func TestResolve_UnknownClass(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[{"type":"bbox","className":"Unknown",
		"attributes":[{"name":"2","groupName":"Num doors"}]}]}`)

	out, err := r.Resolve(doc)
	require.NoError(t, err)

	inst := instance(t, out, 0)
	assert.Equal(t, -1, inst["classId"])
	assert.Equal(t, []interface{}{}, inst["attributes"])
	assert.Equal(t, []string{"Unknown"}, rep.Messages(report.MissingClasses))
	assert.Equal(t, []string{"Couldn't find class Unknown"}, rep.Warnings())
}

func TestResolve_NoClassNameLeavesAttributesUntouched(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[{"type":"point","x":1,
		"attributes":[{"name":"2","groupName":"Num doors"}]}]}`)

	out, err := r.Resolve(doc)
	require.NoError(t, err)

	inst := instance(t, out, 0)
	assert.Equal(t, -1, inst["classId"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "2", "groupName": "Num doors"},
	}, inst["attributes"])
	assert.True(t, rep.Empty())
}

func TestResolve_SameUnknownClassAppendsOnePlaceholder(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[
		{"type":"bbox","className":"Truck","attributes":[{"name":"x","groupName":"y"}]},
		{"type":"polygon","className":"Truck","attributes":[{"name":"x","groupName":"y"}]}]}`)

	out, err := r.Resolve(doc)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		inst := instance(t, out, i)
		assert.Equal(t, -1, inst["classId"])
		assert.Equal(t, []interface{}{}, inst["attributes"])
	}

	placeholders := 0
	for _, cls := range r.Catalog().Classes() {
		if cls.Name == "Truck" {
			placeholders++
			assert.Equal(t, -1, cls.ID)
		}
	}
	assert.Equal(t, 1, placeholders)
	assert.Equal(t, []string{"Truck"}, rep.Messages(report.MissingClasses))
}

func TestResolve_MissingGroupDropsAttribute(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[{"type":"bbox","className":"Personal vehicle","attributes":[
		{"name":"2","groupName":"Wheels"},
		{"name":"4","groupName":"Num doors"}]}]}`)

	out, err := r.Resolve(doc)
	require.NoError(t, err)

	inst := instance(t, out, 0)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "4", "groupName": "Num doors", "groupId": 350510, "id": 1208405},
	}, inst["attributes"])
	assert.Equal(t, []string{"Personal vehicle.Wheels"}, rep.Messages(report.MissingAttributeGroups))
	assert.Equal(t, []string{"Couldn't find annotation group Wheels"}, rep.Warnings())
}

func TestResolve_MissingAttributeRollsBackGroupID(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[{"type":"bbox","className":"Personal vehicle","attributes":[
		{"name":"5","groupName":"Num doors"}]}]}`)

	// Keep a handle on the original attribute object to observe rollback.
	attrs := instance(t, doc, 0)["attributes"].([]interface{})
	orig := attrs[0].(map[string]interface{})

	out, err := r.Resolve(doc)
	require.NoError(t, err)

	inst := instance(t, out, 0)
	assert.Equal(t, []interface{}{}, inst["attributes"])
	assert.NotContains(t, orig, "groupId")
	assert.NotContains(t, orig, "id")
	assert.Equal(t, []string{"Personal vehicle.Num doors.5"}, rep.Messages(report.MissingAttributes))
	assert.Equal(t, []string{"Couldn't find annotation name 5 in annotation group Num doors"}, rep.Warnings())
}

func TestResolve_NoPartialGroupIDAcrossMixedAttributes(t *testing.T) {
	r, _ := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[
		{"type":"bbox","className":"Personal vehicle","attributes":[
			{"name":"2","groupName":"Num doors"},
			{"name":"9","groupName":"Num doors"},
			{"name":"2","groupName":"Nope"},
			{"name":"4","groupName":"Num doors"}]},
		{"type":"bbox","className":"Ghost","attributes":[{"name":"2","groupName":"Num doors"}]}]}`)

	all := []map[string]interface{}{}
	for i := 0; i < 2; i++ {
		for _, a := range instance(t, doc, i)["attributes"].([]interface{}) {
			all = append(all, a.(map[string]interface{}))
		}
	}

	_, err := r.Resolve(doc)
	require.NoError(t, err)

	for _, a := range all {
		if _, hasGroup := a["groupId"]; hasGroup {
			assert.Contains(t, a, "id", "attribute %v has groupId without id", a)
		}
	}

	kept := instance(t, doc, 0)["attributes"].([]interface{})
	require.Len(t, kept, 2)
	assert.Equal(t, "2", kept[0].(map[string]interface{})["name"])
	assert.Equal(t, "4", kept[1].(map[string]interface{})["name"])
}

func TestResolve_DuplicateClassFirstWins(t *testing.T) {
	classes := vehicleCatalog()
	classes = append(classes, &models.AnnotationClass{ID: 999, Name: "Personal vehicle"})

	r, rep := newTestResolver(classes, nil)
	require.Len(t, rep.Warnings(), 1)

	doc := parseDoc(t, `{"instances":[
		{"type":"bbox","className":"Personal vehicle"},
		{"type":"bbox","className":"Personal vehicle"}]}`)

	_, err := r.Resolve(doc)
	require.NoError(t, err)

	assert.Equal(t, 876855, instance(t, doc, 0)["classId"])
	assert.Equal(t, 876855, instance(t, doc, 1)["classId"])
	assert.Len(t, rep.Warnings(), 1)
}

func TestResolve_Templates(t *testing.T) {
	r, _ := newTestResolver(vehicleCatalog(), []*models.Template{{ID: 42, Name: "skeleton"}})
	doc := parseDoc(t, `{"instances":[
		{"type":"template","templateName":"skeleton"},
		{"type":"template","templateName":"face"},
		{"type":"template"},
		{"type":"bbox","templateName":"skeleton"}]}`)

	_, err := r.Resolve(doc)
	require.NoError(t, err)

	assert.Equal(t, 42, instance(t, doc, 0)["templateId"])
	assert.Equal(t, -1, instance(t, doc, 1)["templateId"])
	assert.Equal(t, -1, instance(t, doc, 2)["templateId"])
	assert.NotContains(t, instance(t, doc, 3), "templateId")
}

func TestResolve_NoInstancesKey(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"metadata":{"name":"a.jpg"},"tags":["day"]}`)

	out, err := r.Resolve(doc)
	require.NoError(t, err)
	assert.Equal(t, doc, out)
	assert.NotContains(t, out, "instances")
	assert.True(t, rep.Empty())
}

func TestResolve_KeepsUnknownFields(t *testing.T) {
	r, _ := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[{"type":"bbox","className":"Personal vehicle",
		"points":{"x1":1.5,"y1":2},"creationType":"Manual"}]}`)

	_, err := r.Resolve(doc)
	require.NoError(t, err)

	inst := instance(t, doc, 0)
	assert.Equal(t, "Manual", inst["creationType"])
	assert.Contains(t, inst, "points")
	assert.NotContains(t, inst, "attributes")
}

func TestResolve_NullClassName(t *testing.T) {
	r, rep := newTestResolver(vehicleCatalog(), nil)
	doc := parseDoc(t, `{"instances":[
		{"type":"bbox","className":null,"attributes":[{"name":"2","groupName":"Num doors"}]},
		{"type":"bbox","className":"Personal vehicle","attributes":[{"name":"2","groupName":"Num doors"}]},
		{"type":"bbox","className":null}]}`)

	out, err := r.Resolve(doc)
	require.NoError(t, err)

	for _, i := range []int{0, 2} {
		inst := instance(t, out, i)
		assert.Equal(t, -1, inst["classId"])
		assert.Equal(t, []interface{}{}, inst["attributes"])
	}

	resolved := instance(t, out, 1)
	assert.Equal(t, 876855, resolved["classId"])
	attr := resolved["attributes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, 1208404, attr["id"])

	assert.Equal(t, []string{"Couldn't find class null"}, rep.Warnings())
	assert.Equal(t, []string{"null"}, rep.Messages(report.MissingClasses))
	assert.Equal(t, 1, r.Catalog().Len())
}

func TestResolve_MalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"instances not array", `{"instances":{"a":1}}`},
		{"instances null", `{"instances":null}`},
		{"instance not object", `{"instances":[1]}`},
		{"className not string", `{"instances":[{"className":5}]}`},
		{"attributes not array", `{"instances":[{"className":"Personal vehicle","attributes":"x"}]}`},
		{"attribute not object", `{"instances":[{"className":"Personal vehicle","attributes":["x"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(vehicleCatalog(), nil)
			_, err := r.Resolve(parseDoc(t, tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

package analytics

import (
	"context"
	"testing"

	"github.com/annohub/anno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func load(t *testing.T, db *DB, image, js string) {
	t.Helper()
	doc, err := models.ParseDocument([]byte(js))
	require.NoError(t, err)
	require.NoError(t, db.Load(context.Background(), image, doc))
}

func TestClassDistribution(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	load(t, db, "a.jpg", `{"instances":[
		{"type":"bbox","className":"car","classId":1,"attributes":[
			{"groupName":"color","name":"red"},{"groupName":"doors","name":"4"}]},
		{"type":"bbox","className":"car","classId":1,"attributes":[]},
		{"type":"point"}]}`)
	load(t, db, "b.jpg", `{"instances":[
		{"type":"polygon","className":"bus","classId":2,"attributes":[{"groupName":"color","name":"red"}]},
		{"type":"bbox","className":"car","classId":1,"attributes":[{"groupName":"color","name":"blue"}]}]}`)
	load(t, db, "c.jpg", `{"tags":["empty"]}`)

	dist, err := db.ClassDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ClassCount{
		{ClassName: "car", Instances: 3},
		{ClassName: "", Instances: 1},
		{ClassName: "bus", Instances: 1},
	}, dist)

	images, err := db.Images(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, images)
}

func TestAttributeDistribution(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	load(t, db, "a.jpg", `{"instances":[
		{"type":"bbox","className":"car","attributes":[{"groupName":"color","name":"red"}]},
		{"type":"bbox","className":"car","attributes":[{"groupName":"color","name":"red"},{"groupName":"doors","name":"2"}]},
		{"type":"bbox","className":"car"}]}`)

	dist, err := db.AttributeDistribution(ctx, "car")
	require.NoError(t, err)
	assert.Equal(t, []AttributeCount{
		{Group: "color", Attribute: "red", Count: 2},
		{Group: "doors", Attribute: "2", Count: 1},
	}, dist)

	dist, err = db.AttributeDistribution(ctx, "bus")
	require.NoError(t, err)
	assert.Empty(t, dist)
}

func TestOpen_Isolated(t *testing.T) {
	ctx := context.Background()
	a := newTestDB(t)
	b := newTestDB(t)

	load(t, a, "a.jpg", `{"instances":[{"type":"bbox","className":"car"}]}`)

	n, err := b.Images(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

package core

import (
	"testing"

	"github.com/annohub/anno/internal/analytics"
	"github.com/annohub/anno/internal/classes"
	"github.com/annohub/anno/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectStats(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.jpg.json", `{"instances":[
			{"type":"bbox","className":"car","attributes":[{"groupName":"color","name":"red"}]},
			{"type":"bbox","className":"car","attributes":[{"groupName":"color","name":"pink"}]},
			{"type":"bbox","className":"bus"}]}`),
		writeFile(t, dir, "b.jpg.json", `{"instances":[{"type":"bbox","className":"car"}]}`),
		writeFile(t, dir, "c.jpg.json", `[]`),
	}

	rep := report.New(nil)
	stats, err := CollectStats(t.Context(), paths, classes.NewCatalog(vehicleClasses(), nil), nil, rep)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Images)
	assert.Equal(t, []analytics.ClassCount{
		{ClassName: "car", Instances: 3},
		{ClassName: "bus", Instances: 1},
	}, stats.Classes)
	// The unknown attribute is dropped by resolution.
	assert.Equal(t, map[string][]analytics.AttributeCount{
		"car": {{Group: "color", Attribute: "red", Count: 1}},
	}, stats.Attributes)
	require.Len(t, stats.Failed, 1)
	assert.Equal(t, paths[2], stats.Failed[0].Path)
	assert.Equal(t, []string{"car.color.pink"}, rep.Messages(report.MissingAttributes))
}

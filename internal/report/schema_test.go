package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicationSchema(t *testing.T) {
	t.Parallel()

	content, err := DuplicationSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(content, &schema))
	assert.Equal(t, "gocda duplication result", schema["title"])

	properties, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"records", "total_self_rate", "total_destination_rate", "source_files"} {
		assert.Contains(t, properties, key)
	}

	records, ok := properties["records"].(map[string]any)
	require.True(t, ok)
	items, ok := records["items"].(map[string]any)
	require.True(t, ok)
	itemProperties, ok := items["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, itemProperties, "self_rate")
	assert.Contains(t, itemProperties, "destination_rate")
}

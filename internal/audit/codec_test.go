package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/skuldata/skuldata-api/internal/models"
)

func TestSafeMetadataEmptyInput(t *testing.T) {
	require.Empty(t, SafeMetadata("anything", nil))
	require.Empty(t, SafeMetadata("anything", map[string]interface{}{}))
}

func TestSafeMetadataPassesStructuredTree(t *testing.T) {
	result := SafeMetadata("update", map[string]interface{}{
		"count": 3,
		"nested": map[string]interface{}{
			"flag":  true,
			"items": []interface{}{"a", "b"},
		},
	})

	require.Equal(t, 3, result["count"])
	nested, ok := result["nested"].(datatypes.JSONMap)
	require.True(t, ok)
	require.Equal(t, true, nested["flag"])

	_, err := json.Marshal(result)
	require.NoError(t, err)
}

func TestSafeMetadataNumbersAndDates(t *testing.T) {
	result := SafeMetadata("fee update", map[string]interface{}{
		"amount":      json.Number("9.99"),
		"due_date":    datatypes.Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		"changed_at":  time.Date(2024, 1, 1, 14, 30, 5, 0, time.UTC),
		"imported_at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"window":      90 * time.Second,
	})

	require.Equal(t, 9.99, result["amount"])
	require.Equal(t, "2024-01-01", result["due_date"])
	require.Equal(t, "2024-01-01T14:30:05Z", result["changed_at"])
	// A timestamp that happens to land on midnight is still a timestamp.
	require.Equal(t, "2024-01-01T00:00:00Z", result["imported_at"])
	require.Equal(t, "1m30s", result["window"])
}

func TestSafeMetadataEntityBecomesReference(t *testing.T) {
	student := &models.Student{Name: "Ada Lovelace", Class: "4B"}
	student.ID = 12

	result := SafeMetadata("view", map[string]interface{}{"target": student})

	ref, ok := result["target"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "Student", ref["type"])
	require.Equal(t, uint(12), ref["id"])
	require.Equal(t, "Ada Lovelace", ref["display"])
}

func TestSafeMetadataStringifiesUnserializableValues(t *testing.T) {
	result := SafeMetadata("upload", map[string]interface{}{
		"pipe": make(chan int),
		"size": 42,
	})

	// Tier two keeps convertible siblings intact.
	require.Equal(t, 42, result["size"])
	require.IsType(t, "", result["pipe"])

	_, err := json.Marshal(result)
	require.NoError(t, err)
}

func TestSafeMetadataBoundsRecursionDepth(t *testing.T) {
	leaf := map[string]interface{}{"value": 1}
	root := leaf
	for i := 0; i < maxConvertDepth+5; i++ {
		root = map[string]interface{}{"child": root}
	}

	result := SafeMetadata("deep", root)
	require.NotEmpty(t, result)

	_, err := json.Marshal(result)
	require.NoError(t, err)
}

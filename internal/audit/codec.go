package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// maxConvertDepth bounds the recursive walk so cyclic metadata degrades to
// tier two instead of recursing forever.
const maxConvertDepth = 32

var errUnconvertible = fmt.Errorf("value cannot be made json-safe")

// SafeMetadata converts an arbitrary metadata tree into a JSON-safe map.
// It degrades through three tiers and never fails: a metadata value that
// cannot be serialized must not abort the mutation being audited.
//
// Tier one walks the tree structurally. Tier two flattens one level and
// stringifies anything still unconvertible. Tier three replaces the whole
// map with an error marker that preserves the action text.
func SafeMetadata(action string, metadata map[string]interface{}) datatypes.JSONMap {
	if len(metadata) == 0 {
		return datatypes.JSONMap{}
	}

	if converted, err := convertMap(metadata, 0); err == nil {
		if _, err := json.Marshal(converted); err == nil {
			return converted
		}
	}

	flattened := datatypes.JSONMap{}
	for key, value := range metadata {
		converted, err := convertValue(value, 0)
		if err == nil {
			if _, marshalErr := json.Marshal(converted); marshalErr == nil {
				flattened[key] = converted
				continue
			}
		}
		flattened[key] = stringify(value)
	}
	if _, err := json.Marshal(flattened); err == nil {
		return flattened
	}

	return datatypes.JSONMap{
		"error":           "metadata serialization failed",
		"original_action": action,
	}
}

func convertMap(input map[string]interface{}, depth int) (datatypes.JSONMap, error) {
	if depth > maxConvertDepth {
		return nil, errUnconvertible
	}
	result := datatypes.JSONMap{}
	for key, value := range input {
		converted, err := convertValue(value, depth+1)
		if err != nil {
			return nil, err
		}
		result[key] = converted
	}
	return result, nil
}

func convertValue(value interface{}, depth int) (interface{}, error) {
	if depth > maxConvertDepth {
		return nil, errUnconvertible
	}

	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v, nil
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return v.String(), nil
		}
		return parsed, nil
	case datatypes.Date:
		return time.Time(v).Format(time.DateOnly), nil
	case *datatypes.Date:
		if v == nil {
			return nil, nil
		}
		return time.Time(*v).Format(time.DateOnly), nil
	case time.Time:
		return formatTime(v), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return formatTime(*v), nil
	case time.Duration:
		return v.String(), nil
	case map[string]interface{}:
		return convertMap(v, depth)
	case []interface{}:
		items := make([]interface{}, 0, len(v))
		for _, item := range v {
			converted, err := convertValue(item, depth+1)
			if err != nil {
				return nil, err
			}
			items = append(items, converted)
		}
		return items, nil
	}

	if entity, ok := value.(Entity); ok && !isNilEntity(entity) {
		return entityRef(entity), nil
	}

	// Anything else must survive a marshal round-trip unchanged.
	if _, err := json.Marshal(value); err != nil {
		return nil, errUnconvertible
	}
	return value, nil
}

// entityRef renders an entity-like value as a weak reference object.
func entityRef(entity Entity) map[string]interface{} {
	ref := map[string]interface{}{
		"type": entity.EntityType(),
		"id":   entity.EntityID(),
	}
	if display, ok := entity.(Displayable); ok {
		ref["display"] = display.Display()
	} else {
		ref["display"] = fmt.Sprintf("%s#%d", entity.EntityType(), entity.EntityID())
	}
	return ref
}

// formatTime renders timestamps in ISO-8601. Calendar dates carry their own
// type (datatypes.Date), so a time.Time at midnight stays a full timestamp.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// stringify relies on fmt to recover from panicking String methods.
func stringify(value interface{}) string {
	return fmt.Sprintf("%v", value)
}

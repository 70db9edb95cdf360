package services

import (
	"fmt"
	"strings"
)

// DefaultMaxArrayItems caps list lengths in report payloads handed to the model
const DefaultMaxArrayItems = 20

const maxIDLength = 30

var droppedKeys = map[string]bool{
	"success": true,
	"cached":  true,
	"_date":   true,
}

var timestampKeys = map[string]bool{
	"timestamp":  true,
	"created_at": true,
	"updated_at": true,
}

// CleanForLLM shrinks a decoded JSON report so it fits in a tool result:
// long arrays are truncated, transport flags and long identifiers dropped,
// the data envelope flattened and empty objects removed.
func CleanForLLM(value any, maxItems int) any {
	if maxItems <= 0 {
		maxItems = DefaultMaxArrayItems
	}

	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return cleanArray(v, maxItems)
	case map[string]any:
		return cleanObject(v, maxItems)
	default:
		return v
	}
}

func cleanArray(items []any, maxItems int) []any {
	n := len(items)
	if n > maxItems {
		n = maxItems
	}

	cleaned := make([]any, 0, n+1)
	for _, item := range items[:n] {
		cleaned = append(cleaned, CleanForLLM(item, maxItems))
	}
	if len(items) > maxItems {
		cleaned = append(cleaned, fmt.Sprintf("... (%d more items)", len(items)-maxItems))
	}
	return cleaned
}

func cleanObject(object map[string]any, maxItems int) map[string]any {
	cleaned := make(map[string]any, len(object))

	for key, value := range object {
		if droppedKeys[key] {
			continue
		}

		switch {
		case key == "data" && value != nil && isContainer(value):
			inner := CleanForLLM(value, maxItems)
			if innerObject, ok := inner.(map[string]any); ok {
				for k, v := range innerObject {
					cleaned[k] = v
				}
			} else {
				cleaned[key] = inner
			}

		case key == "error":
			cleaned[key] = value

		case isIDKey(key) && isLongString(value):
			continue

		case timestampKeys[key]:
			if ts, ok := value.(map[string]any); ok {
				if iso, ok := ts["iso"]; ok {
					cleaned[key] = iso
				}
			} else if s, ok := value.(string); ok {
				cleaned[key] = s
			}

		default:
			if nested, ok := value.(map[string]any); ok {
				if len(nested) == 0 {
					continue
				}
				if inner := cleanObject(nested, maxItems); len(inner) > 0 {
					cleaned[key] = inner
				}
				continue
			}
			cleaned[key] = CleanForLLM(value, maxItems)
		}
	}

	return cleaned
}

func isContainer(value any) bool {
	switch value.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func isIDKey(key string) bool {
	return key == "id" || strings.Contains(key, "_id")
}

func isLongString(value any) bool {
	s, ok := value.(string)
	return ok && len(s) > maxIDLength
}

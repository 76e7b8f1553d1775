package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// resourceArgKeys are the argument names that identify the resource a tool
// acts on, in lookup order.
var resourceArgKeys = []string{"fileId", "spreadsheetId", "documentId", "bucket", "topic", "job", "queue", "secret", "collection", "dataset"}

// ResourceIDFromArgs returns the first resource identifier found in args.
func ResourceIDFromArgs(args map[string]interface{}) string {
	for _, key := range resourceArgKeys {
		if v, ok := args[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// RequiredString returns a non-empty string argument.
func RequiredString(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// OptionalString returns a string argument or def when it is absent or empty.
func OptionalString(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// OptionalInt returns a positive number argument or def. JSON numbers arrive
// as float64.
func OptionalInt(args map[string]interface{}, key string, def int) int {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}

// OptionalBool returns a boolean argument or def.
func OptionalBool(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// ParseCommaList splits a comma-separated list, dropping empty items.
func ParseCommaList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// StringMap reads an object argument with string values. A JSON-encoded
// string is accepted too.
func StringMap(args map[string]interface{}, key string) (map[string]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		if s == "" {
			return nil, nil
		}
		var m map[string]string
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object of strings: %w", key, err)
		}
		return m, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	m := make(map[string]string, len(obj))
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be a string", key, k)
		}
		m[k] = s
	}
	return m, nil
}

// Values reads a two-dimensional array argument, e.g. spreadsheet rows. A
// JSON-encoded string is accepted too.
func Values(args map[string]interface{}, key string) ([][]interface{}, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is required", key)
	}
	if s, ok := raw.(string); ok {
		var decoded []interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("%s must be a JSON array of rows: %w", key, err)
		}
		raw = decoded
	}
	rows, ok := raw.([]interface{})
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty array of rows", key)
	}
	values := make([][]interface{}, 0, len(rows))
	for i, r := range rows {
		row, ok := r.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an array", key, i)
		}
		values = append(values, row)
	}
	return values, nil
}

// Object reads a required JSON object argument, e.g. a document body. A
// JSON-encoded string is accepted too.
func Object(args map[string]interface{}, key string) (map[string]interface{}, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is required", key)
	}
	if s, ok := raw.(string); ok {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("%s must be a JSON object: %w", key, err)
		}
		raw = m
	}
	obj, ok := raw.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty object", key)
	}
	return obj, nil
}

// Objects reads a required non-empty array of objects, e.g. table rows. A
// JSON-encoded string is accepted too.
func Objects(args map[string]interface{}, key string) ([]map[string]interface{}, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is required", key)
	}
	if s, ok := raw.(string); ok {
		var decoded []interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("%s must be a JSON array of objects: %w", key, err)
		}
		raw = decoded
	}
	items, ok := raw.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%s must be a non-empty array of objects", key)
	}
	out := make([]map[string]interface{}, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object", key, i)
		}
		out = append(out, obj)
	}
	return out, nil
}

// JSONResult renders v as an indented JSON text result, prefixed by msg when
// msg is not empty.
func JSONResult(msg string, v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	if msg == "" {
		return mcp.NewToolResultText(string(data)), nil
	}
	return mcp.NewToolResultText(msg + ":\n" + string(data)), nil
}

// ErrorResult formats a failed operation as a tool error result.
func ErrorResult(action string, err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err)), nil
}

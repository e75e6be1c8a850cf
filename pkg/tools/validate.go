package tools

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
)

// ValidateArgs checks args against a tool's input schema and reports
// every offending field path at once, so a caller can fix a bad request
// in one round trip.
func ValidateArgs(tool string, schema mcp.ToolInputSchema, args map[string]any) error {
	var fields []ghErrors.FieldError

	for _, required := range schema.Required {
		if v, ok := args[required]; !ok || v == nil {
			fields = append(fields, ghErrors.FieldError{Path: required, Message: "is required"})
		}
	}

	for name, rawProp := range schema.Properties {
		value, ok := args[name]
		if !ok || value == nil {
			continue
		}
		prop, ok := rawProp.(map[string]any)
		if !ok {
			continue
		}
		fields = append(fields, checkValue(name, prop, value)...)
	}

	if len(fields) == 0 {
		return nil
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return &ghErrors.ValidationError{Tool: tool, Fields: fields}
}

func checkValue(path string, prop map[string]any, value any) []ghErrors.FieldError {
	wantType, _ := prop["type"].(string)
	switch wantType {
	case "string":
		s, ok := value.(string)
		if !ok {
			return []ghErrors.FieldError{{Path: path, Message: fmt.Sprintf("expected a string, got %T", value)}}
		}
		var fields []ghErrors.FieldError
		if min, ok := asInt(prop["minLength"]); ok && len(s) < min {
			fields = append(fields, ghErrors.FieldError{Path: path, Message: fmt.Sprintf("must be at least %d characters", min)})
		}
		if allowed, ok := enumValues(prop["enum"]); ok && !containsValue(allowed, s) {
			fields = append(fields, ghErrors.FieldError{Path: path, Message: fmt.Sprintf("%q is not one of %v", s, allowed)})
		}
		return fields
	case "number", "integer":
		n, ok := asFloat(value)
		if !ok {
			return []ghErrors.FieldError{{Path: path, Message: fmt.Sprintf("expected a number, got %T", value)}}
		}
		if min, hasMin := asFloat(prop["minimum"]); hasMin && n < min {
			return []ghErrors.FieldError{{Path: path, Message: fmt.Sprintf("must be at least %v", min)}}
		}
		return nil
	case "boolean":
		if _, ok := value.(bool); !ok {
			return []ghErrors.FieldError{{Path: path, Message: fmt.Sprintf("expected a boolean, got %T", value)}}
		}
		return nil
	case "array":
		items, ok := value.([]any)
		if !ok {
			return []ghErrors.FieldError{{Path: path, Message: fmt.Sprintf("expected an array, got %T", value)}}
		}
		itemProp, _ := prop["items"].(map[string]any)
		if itemProp == nil {
			return nil
		}
		var fields []ghErrors.FieldError
		for i, item := range items {
			fields = append(fields, checkValue(fmt.Sprintf("%s[%d]", path, i), itemProp, item)...)
		}
		return fields
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return []ghErrors.FieldError{{Path: path, Message: fmt.Sprintf("expected an object, got %T", value)}}
		}
		props, _ := prop["properties"].(map[string]any)
		var fields []ghErrors.FieldError
		if required, ok := prop["required"].([]string); ok {
			for _, name := range required {
				if v, has := obj[name]; !has || v == nil {
					fields = append(fields, ghErrors.FieldError{Path: path + "." + name, Message: "is required"})
				}
			}
		}
		for name, rawNested := range props {
			nested, ok := rawNested.(map[string]any)
			if !ok {
				continue
			}
			v, has := obj[name]
			if !has || v == nil {
				continue
			}
			fields = append(fields, checkValue(path+"."+name, nested, v)...)
		}
		return fields
	default:
		return nil
	}
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	return int(f), ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func enumValues(v any) ([]string, bool) {
	switch e := v.(type) {
	case []string:
		return e, true
	case []any:
		out := make([]string, 0, len(e))
		for _, item := range e {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func containsValue(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// decodeArgs fills a typed argument struct from a validated map. Weak
// typing is deliberate: clients send "5" where 5 is meant often enough
// that rejecting it helps nobody.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("decoding arguments: %w", err)
	}
	return nil
}

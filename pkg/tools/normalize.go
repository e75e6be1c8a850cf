package tools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// NormalizeArguments turns whatever shape a client sent the arguments in
// into a plain map. Clients have been observed sending proper maps, JSON
// strings, and Python-literal strings (single quotes, True/False/None);
// anything else marshallable is round-tripped through JSON.
func NormalizeArguments(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		return parseArgString(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("arguments have unsupported type %T", raw)
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("arguments do not decode to an object: %w", err)
		}
		return out, nil
	}
}

func parseArgString(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out, nil
	}
	if err := json.Unmarshal([]byte(pythonToJSON(s)), &out); err == nil {
		return out, nil
	}
	return nil, fmt.Errorf("arguments string is neither JSON nor a Python literal: %.80s", s)
}

// pythonToJSON rewrites a Python dict/list literal into JSON: single
// quotes become double quotes (inner double quotes escaped) and the
// True/False/None keywords become their JSON forms. Content inside
// strings is preserved.
func pythonToJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\'', '"':
			i = writeQuoted(&b, runes, i)
		default:
			if unicode.IsLetter(r) {
				start := i
				for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
					i++
				}
				word := string(runes[start:i])
				i--
				switch word {
				case "True":
					b.WriteString("true")
				case "False":
					b.WriteString("false")
				case "None":
					b.WriteString("null")
				default:
					b.WriteString(word)
				}
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// writeQuoted copies the string starting at runes[start] (an opening
// quote) as a double-quoted JSON string, returning the index of the
// closing quote.
func writeQuoted(b *strings.Builder, runes []rune, start int) int {
	quote := runes[start]
	b.WriteRune('"')
	i := start + 1
	for ; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) {
			b.WriteRune(r)
			i++
			b.WriteRune(runes[i])
			continue
		}
		if r == quote {
			break
		}
		if r == '"' {
			b.WriteString(`\"`)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteRune('"')
	return i
}

// optionSeparators split free-text option lists, tried in order.
var optionSeparators = []string{",", " or ", " and "}

var arrowPattern = regexp.MustCompile(`^.*?->\s*`)

// coerceOptions rewrites the "options" argument of field-creation calls
// into the canonical []{name: ...} shape. Clients send JSON arrays,
// Python lists, comma lists, "A or B" prose, and "label -> A, B" arrows.
// An unparseable value is dropped, not failed: validation decides later
// whether options were required.
func coerceOptions(args map[string]any) {
	raw, ok := args["options"]
	if !ok {
		return
	}
	options := parseOptions(raw)
	if options == nil {
		delete(args, "options")
		return
	}
	args["options"] = options
}

func parseOptions(raw any) []any {
	switch v := raw.(type) {
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			switch o := item.(type) {
			case map[string]any:
				if _, ok := o["name"]; !ok {
					return nil
				}
				out = append(out, o)
			case string:
				out = append(out, map[string]any{"name": o})
			default:
				return nil
			}
		}
		return out
	case string:
		return parseOptionString(v)
	default:
		return nil
	}
}

func parseOptionString(s string) []any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, candidate := range []string{s, pythonToJSON(s)} {
		var arr []any
		if err := json.Unmarshal([]byte(candidate), &arr); err == nil {
			return parseOptions(arr)
		}
	}

	// Free text. Strip a leading "something ->" marker, then split.
	s = arrowPattern.ReplaceAllString(s, "")
	parts := []string{s}
	for _, sep := range optionSeparators {
		if strings.Contains(s, sep) {
			parts = strings.Split(s, sep)
			break
		}
	}
	out := make([]any, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p == "" {
			continue
		}
		out = append(out, map[string]any{"name": p})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

var relaxedPairPattern = regexp.MustCompile(`['"]?(\w+)['"]?\s*[:=]\s*['"]([^'"]*)['"]`)

// coerceRoadmapProject unwraps a stringified nested "project" object on
// create_roadmap calls. Three stages: JSON, Python-literal rewrite, then
// a relaxed key/value scan for hopelessly mangled input.
func coerceRoadmapProject(args map[string]any) {
	raw, ok := args["project"].(string)
	if !ok {
		return
	}
	for _, candidate := range []string{raw, pythonToJSON(raw)} {
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			args["project"] = obj
			return
		}
	}
	obj := map[string]any{}
	for _, m := range relaxedPairPattern.FindAllStringSubmatch(raw, -1) {
		obj[m[1]] = m[2]
	}
	if len(obj) > 0 {
		args["project"] = obj
	}
}

// coerce applies per-tool argument rewrites before schema validation.
func coerce(toolName string, args map[string]any) {
	switch toolName {
	case "create_project_field":
		coerceOptions(args)
	case "create_roadmap":
		coerceRoadmapProject(args)
	}
}

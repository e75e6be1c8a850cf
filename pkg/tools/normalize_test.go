package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeArguments(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want map[string]any
	}{
		{
			name: "nil becomes empty map",
			raw:  nil,
			want: map[string]any{},
		},
		{
			name: "map passes through",
			raw:  map[string]any{"title": "x"},
			want: map[string]any{"title": "x"},
		},
		{
			name: "JSON string",
			raw:  `{"title": "x", "count": 2}`,
			want: map[string]any{"title": "x", "count": float64(2)},
		},
		{
			name: "python literal string",
			raw:  `{'title': 'x', 'done': True, 'note': None}`,
			want: map[string]any{"title": "x", "done": true, "note": nil},
		},
		{
			name: "empty string",
			raw:  "   ",
			want: map[string]any{},
		},
		{
			name: "struct-ish value round-trips through JSON",
			raw:  struct{ Title string `json:"title"` }{Title: "x"},
			want: map[string]any{"title": "x"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeArguments(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeArgumentsRejectsGarbage(t *testing.T) {
	_, err := NormalizeArguments("definitely not structured")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither JSON nor a Python literal")
}

func TestPythonToJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{'a': 1}`, `{"a": 1}`},
		{`{'flag': True, 'other': False, 'gone': None}`, `{"flag": true, "other": false, "gone": null}`},
		{`{'quote': 'say "hi"'}`, `{"quote": "say \"hi\""}`},
		{`['a', 'b']`, `["a", "b"]`},
		{`{'Trueish': 'None of it'}`, `{"Trueish": "None of it"}`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, pythonToJSON(tc.in), "input %q", tc.in)
	}
}

func TestParseOptionsShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []any
	}{
		{
			name: "canonical objects",
			raw:  []any{map[string]any{"name": "High"}},
			want: []any{map[string]any{"name": "High"}},
		},
		{
			name: "bare strings",
			raw:  []any{"High", "Low"},
			want: []any{map[string]any{"name": "High"}, map[string]any{"name": "Low"}},
		},
		{
			name: "JSON array string",
			raw:  `["High", "Low"]`,
			want: []any{map[string]any{"name": "High"}, map[string]any{"name": "Low"}},
		},
		{
			name: "python list string",
			raw:  `['High', 'Low']`,
			want: []any{map[string]any{"name": "High"}, map[string]any{"name": "Low"}},
		},
		{
			name: "comma list",
			raw:  "High, Medium, Low",
			want: []any{map[string]any{"name": "High"}, map[string]any{"name": "Medium"}, map[string]any{"name": "Low"}},
		},
		{
			name: "or-separated prose",
			raw:  "High or Low",
			want: []any{map[string]any{"name": "High"}, map[string]any{"name": "Low"}},
		},
		{
			name: "arrow prefix stripped",
			raw:  "priority -> High, Low",
			want: []any{map[string]any{"name": "High"}, map[string]any{"name": "Low"}},
		},
		{
			name: "object missing name key",
			raw:  []any{map[string]any{"label": "High"}},
			want: nil,
		},
		{
			name: "unsupported element type",
			raw:  []any{42},
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseOptions(tc.raw))
		})
	}
}

func TestCoerceOptionsDropsUnparseable(t *testing.T) {
	args := map[string]any{"options": []any{42}}
	coerceOptions(args)
	_, present := args["options"]
	assert.False(t, present)
}

func TestCoerceRoadmapProject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "JSON string",
			raw:  `{"title": "Q3", "owner": "octo"}`,
			want: map[string]any{"title": "Q3", "owner": "octo"},
		},
		{
			name: "python literal",
			raw:  `{'title': 'Q3'}`,
			want: map[string]any{"title": "Q3"},
		},
		{
			name: "relaxed key-value scan",
			raw:  `title: 'Q3' owner='octo'`,
			want: map[string]any{"title": "Q3", "owner": "octo"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := map[string]any{"project": tc.raw}
			coerceRoadmapProject(args)
			assert.Equal(t, tc.want, args["project"])
		})
	}
}

func TestCoerceRoadmapProjectLeavesMapsAlone(t *testing.T) {
	project := map[string]any{"title": "Q3"}
	args := map[string]any{"project": project}
	coerceRoadmapProject(args)
	assert.Equal(t, project, args["project"])
}

func TestCoerceDispatchesByTool(t *testing.T) {
	args := map[string]any{"options": "High, Low"}
	coerce("create_project_field", args)
	require.IsType(t, []any{}, args["options"])
	assert.Len(t, args["options"], 2)

	untouched := map[string]any{"options": "High, Low"}
	coerce("create_issue", untouched)
	assert.Equal(t, "High, Low", untouched["options"])
}

package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"json number", json.Number("42"), 42, true},
		{"plain string", " 1200 ", 1200, true},
		{"thousands separator", "1,23,456", 123456, true},
		{"devanagari digits", "१२३", 123, true},
		{"devanagari with decimals", "४.५", 4.5, true},
		{"word", "many", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemaNormalize(t *testing.T) {
	schema := Schema{
		{Field: "a"},
		{Field: "b", Aliases: []string{"bee"}},
		{Field: "total", Fallback: SumOf("a", "b")},
	}

	t.Run("derives missing total", func(t *testing.T) {
		v, issues := schema.Normalize(Raw{"a": 2, "b": 3})
		assert.Empty(t, issues)
		assert.Equal(t, 5.0, v["total"])
	})

	t.Run("derived total wins over stale provided total", func(t *testing.T) {
		v, issues := schema.Normalize(Raw{"a": 2, "b": 3, "total": 9})
		assert.Equal(t, 5.0, v["total"])
		require.Len(t, issues, 1)
		assert.Equal(t, "total", issues[0].Field)
	})

	t.Run("matching provided total raises nothing", func(t *testing.T) {
		_, issues := schema.Normalize(Raw{"a": 2, "b": 3, "total": "5"})
		assert.Empty(t, issues)
	})

	t.Run("partial subgroups replace the provided total", func(t *testing.T) {
		v, issues := schema.Normalize(Raw{"a": 50, "total": 100})
		assert.Equal(t, 50.0, v["total"])
		require.Len(t, issues, 1)
		assert.Equal(t, "total", issues[0].Field)
		assert.Contains(t, issues[0].Message, "provided 100 disagrees with derived 50")
	})

	t.Run("provided total used when no subgroup present", func(t *testing.T) {
		v, issues := schema.Normalize(Raw{"total": 11})
		assert.Empty(t, issues)
		assert.Equal(t, 11.0, v["total"])
		assert.Equal(t, 0.0, v["a"])
	})

	t.Run("everything absent defaults to zero", func(t *testing.T) {
		v, issues := schema.Normalize(Raw{"a": nil, "b": "  "})
		assert.Empty(t, issues)
		assert.Equal(t, Values{"a": 0, "b": 0, "total": 0}, v)
	})

	t.Run("alias is read", func(t *testing.T) {
		v, _ := schema.Normalize(Raw{"a": 1, "bee": 4})
		assert.Equal(t, 4.0, v["b"])
		assert.Equal(t, 5.0, v["total"])
	})

	t.Run("bad values become zero with an issue", func(t *testing.T) {
		v, issues := schema.Normalize(Raw{"a": -4, "b": math.Inf(1)})
		assert.Equal(t, 0.0, v["a"])
		assert.Equal(t, 0.0, v["b"])
		assert.Equal(t, 0.0, v["total"])
		assert.Len(t, issues, 2)
	})

	t.Run("unparseable value", func(t *testing.T) {
		v, issues := schema.Normalize(Raw{"a": "lots", "b": 1})
		assert.Equal(t, 0.0, v["a"])
		assert.Equal(t, 1.0, v["total"])
		require.Len(t, issues, 1)
		assert.Equal(t, "a", issues[0].Field)
	})
}

func TestText(t *testing.T) {
	raw := Raw{"code": " canal ", "num": 3, "blank": ""}
	assert.Equal(t, "canal", Text(raw, "code"))
	assert.Equal(t, "3", Text(raw, "num"))
	assert.Equal(t, "canal", Text(raw, "blank", "code"))
	assert.Equal(t, "", Text(raw, "missing"))
}

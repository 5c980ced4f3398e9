package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rulegate/internal/core"
)

func TestNormalizeMinimalRule(t *testing.T) {
	n := NewRuleNormalizer(nil)

	out, err := n.Normalize(core.Record{
		"content":  "x",
		"category": "y",
		"tags":     []interface{}{},
	})
	require.NoError(t, err)

	assert.Equal(t, core.Record{
		"content":        "x",
		"category":       "y",
		"tags":           []interface{}{},
		"title":          "y",
		"description":    "Rules for y",
		"best_practices": "",
		"is_official":    false,
		"is_general":     false,
		"author":         "user",
		"author_name":    "User",
		"count":          "+1 rules",
	}, out)
}

func TestNormalizeMissingRequired(t *testing.T) {
	testCases := []struct {
		name  string
		in    core.Record
		field string
	}{
		{"missing content", core.Record{"category": "y", "tags": []interface{}{}}, "content"},
		{"missing category", core.Record{"content": "x", "tags": []interface{}{}}, "category"},
		{"missing tags", core.Record{"content": "x", "category": "y"}, "tags"},
		{"first missing wins", core.Record{}, "content"},
	}

	n := NewRuleNormalizer(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.Normalize(tc.in)
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, "Missing required field: "+tc.field, err.Error())
		})
	}
}

func TestNormalizeBooleanFlags(t *testing.T) {
	n := NewRuleNormalizer(nil)

	out, err := n.Normalize(core.Record{
		"content":    "x",
		"category":   "y",
		"tags":       []interface{}{"a"},
		"isOfficial": true,
		"isGeneral":  false,
	})
	require.NoError(t, err)

	assert.Equal(t, true, out["is_official"])
	assert.Equal(t, false, out["is_general"])
	assert.NotContains(t, out, "isOfficial")
	assert.NotContains(t, out, "isGeneral")
	assert.Equal(t, []interface{}{"a"}, out["tags"])
}

func TestNormalizeTruthyFlags(t *testing.T) {
	n := NewRuleNormalizer(nil)

	out, err := n.Normalize(core.Record{
		"content":    "x",
		"category":   "y",
		"tags":       []interface{}{},
		"isOfficial": "yes",
		"isGeneral":  0.0,
	})
	require.NoError(t, err)

	assert.Equal(t, true, out["is_official"])
	assert.Equal(t, false, out["is_general"])
}

func TestNormalizeKeepsProvidedValues(t *testing.T) {
	n := NewRuleNormalizer(nil)

	out, err := n.Normalize(core.Record{
		"content":       "x",
		"category":      "y",
		"tags":          []interface{}{"go"},
		"title":         "T",
		"description":   "D",
		"bestPractices": "BP",
		"author":        "ann",
		"authorName":    "Ann",
		"count":         "+3 rules",
		"extraField":    1.0,
	})
	require.NoError(t, err)

	assert.Equal(t, "T", out["title"])
	assert.Equal(t, "D", out["description"])
	assert.Equal(t, "BP", out["best_practices"])
	assert.Equal(t, "ann", out["author"])
	assert.Equal(t, "Ann", out["author_name"])
	assert.Equal(t, "+3 rules", out["count"])
	assert.Equal(t, 1.0, out["extra_field"])
	assert.NotContains(t, out, "authorName")
}

func TestNormalizeFalsyDefaults(t *testing.T) {
	n := NewRuleNormalizer(nil)

	out, err := n.Normalize(core.Record{
		"content":       "x",
		"category":      "y",
		"tags":          "not-a-list",
		"title":         "",
		"description":   nil,
		"bestPractices": nil,
		"author":        "",
		"authorName":    "",
		"count":         "",
	})
	require.NoError(t, err)

	assert.Equal(t, "y", out["title"])
	assert.Equal(t, "Rules for y", out["description"])
	// present but null stays null: only absence defaults
	assert.Nil(t, out["best_practices"])
	assert.Contains(t, out, "best_practices")
	assert.Equal(t, "user", out["author"])
	assert.Equal(t, "User", out["author_name"])
	assert.Equal(t, "", out["count"])
	assert.Equal(t, []interface{}{}, out["tags"])
}

func TestNormalizeNullCategoryDescription(t *testing.T) {
	out, err := NewRuleNormalizer(nil).Normalize(core.Record{
		"content":  "x",
		"category": nil,
		"tags":     []interface{}{},
	})
	require.NoError(t, err)

	assert.Equal(t, "Rules for null", out["description"])
	assert.Nil(t, out["title"])
}

func TestNormalizeKeyCollisionIsStable(t *testing.T) {
	orders := []core.Record{
		{"content": "x", "category": "y", "tags": []interface{}{}, "authorName": "A", "author_name": "B"},
		{"content": "x", "category": "y", "tags": []interface{}{}, "author_name": "B", "authorName": "A"},
	}

	n := NewRuleNormalizer(nil)
	for _, in := range orders {
		for i := 0; i < 100; i++ {
			out, err := n.Normalize(in)
			require.NoError(t, err)
			require.Equal(t, "B", out["author_name"], "run %d", i)
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := core.Record{"content": "x", "category": "y", "tags": nil, "isOfficial": true}
	_, err := NewRuleNormalizer(nil).Normalize(in)
	require.NoError(t, err)

	assert.Equal(t, core.Record{"content": "x", "category": "y", "tags": nil, "isOfficial": true}, in)
}

func TestNormalizeLogsDiagnostics(t *testing.T) {
	observed, logs := observer.New(zap.DebugLevel)
	n := NewRuleNormalizer(zap.New(observed))

	_, err := n.Normalize(core.Record{"content": "x", "category": "y", "tags": []interface{}{}})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "normalizing rule", entries[0].Message)
	assert.Equal(t, "normalized rule", entries[1].Message)
}

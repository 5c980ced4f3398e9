// Package normalize turns a rule creation request into a store-ready record.
package normalize

import (
	"fmt"

	"go.uber.org/zap"

	"rulegate/internal/core"
	"rulegate/internal/core/fieldmap"
)

// RequiredRuleFields must be present on every creation request, checked in this order
var RequiredRuleFields = []string{"content", "category", "tags"}

const (
	defaultAuthor     = "user"
	defaultAuthorName = "User"
	defaultCount      = "+1 rules"
)

// RuleNormalizer applies defaults and presence checks to inbound rules
type RuleNormalizer struct {
	log *zap.Logger
}

// NewRuleNormalizer creates a RuleNormalizer. A nil logger disables diagnostics.
func NewRuleNormalizer(log *zap.Logger) *RuleNormalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &RuleNormalizer{log: log}
}

// Normalize validates a camelCase rule and returns its snake_case store form.
// The input record is not modified.
func (n *RuleNormalizer) Normalize(in core.Record) (core.Record, error) {
	n.log.Debug("normalizing rule", zap.Any("input", in))

	for _, field := range RequiredRuleFields {
		if !in.Has(field) {
			return nil, &core.ValidationError{Field: field}
		}
	}

	rec := in.Clone()
	category := rec["category"]

	if !core.Truthy(rec["title"]) {
		rec["title"] = category
	}
	if !core.Truthy(rec["description"]) {
		rec["description"] = fmt.Sprintf("Rules for %s", core.Display(category))
	}
	if !rec.Has("bestPractices") {
		rec["bestPractices"] = ""
	}

	isOfficial := core.Truthy(rec["isOfficial"])
	isGeneral := core.Truthy(rec["isGeneral"])

	out := fieldmap.ToStore(rec, "isOfficial", "isGeneral")
	out["is_official"] = isOfficial
	out["is_general"] = isGeneral

	if tags, ok := out["tags"].([]interface{}); !ok || len(tags) == 0 {
		out["tags"] = []interface{}{}
	}

	if !core.Truthy(out["author"]) {
		out["author"] = defaultAuthor
	}
	if !core.Truthy(out["author_name"]) {
		out["author_name"] = defaultAuthorName
	}
	if !out.Has("count") {
		out["count"] = defaultCount
	}

	n.log.Debug("normalized rule", zap.Any("output", out))
	return out, nil
}

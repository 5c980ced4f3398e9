// Package fieldmap translates rule field names between the API naming
// (authorName) and the store naming (author_name).
//
// The two directions are intentionally different. Writes translate every key
// with ToStoreKey. Reads only rename the fixed set of fields in ReadTable, so
// unknown camelCase keys coming back from the store are left alone.
package fieldmap

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"rulegate/internal/core"
)

// Rename is a single store -> API field rename
type Rename struct {
	Store string
	API   string
}

// ReadTable lists the only fields renamed on the read path, in application order
var ReadTable = []Rename{
	{Store: "is_official", API: "isOfficial"},
	{Store: "is_general", API: "isGeneral"},
	{Store: "best_practices", API: "bestPractices"},
	{Store: "author_name", API: "authorName"},
	{Store: "created_at", API: "createdAt"},
}

// ToStoreKey converts a camelCase key to snake_case: every uppercase letter
// becomes '_' plus its lowercase form, then leading underscores are trimmed.
//
// This is not the inverse of a camelCase conversion when uppercase letters
// are adjacent ("URLPath" -> "u_r_l_path") or the key starts with one.
func ToStoreKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimLeft(b.String(), "_")
}

// ToStore applies ToStoreKey to every top-level key of rec except those in
// skip. Nested values are copied as-is.
//
// Keys are translated in sorted order, so when two keys land on the same
// store key the one sorting last wins: "author_name" beats "authorName".
func ToStore(rec core.Record, skip ...string) core.Record {
	out := make(core.Record, len(rec))
	for _, k := range slices.Sorted(maps.Keys(rec)) {
		if slices.Contains(skip, k) {
			continue
		}
		out[ToStoreKey(k)] = rec[k]
	}
	return out
}

// FromStore renames the ReadTable fields of rec. Other keys pass through.
func FromStore(rec core.Record) core.Record {
	out := rec.Clone()
	for _, rn := range ReadTable {
		if v, ok := out[rn.Store]; ok {
			out[rn.API] = v
			delete(out, rn.Store)
		}
	}
	return out
}

// FromStoreJSON applies the read table to every object of a JSON array
// without decoding it, so field order and number formatting survive.
// Non-array bodies are returned unchanged.
func FromStoreJSON(body []byte) ([]byte, error) {
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return body, nil
	}

	out := []byte("[]")
	var err error
	for i, item := range root.Array() {
		elem := []byte(item.Raw)
		if item.IsObject() {
			elem, err = renameObject(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		out, err = sjson.SetRawBytes(out, "-1", elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

func renameObject(obj []byte) ([]byte, error) {
	var err error
	for _, rn := range ReadTable {
		v := gjson.GetBytes(obj, rn.Store)
		if !v.Exists() {
			continue
		}
		if obj, err = sjson.SetRawBytes(obj, rn.API, []byte(v.Raw)); err != nil {
			return nil, fmt.Errorf("failed to set field %s: %w", rn.API, err)
		}
		if obj, err = sjson.DeleteBytes(obj, rn.Store); err != nil {
			return nil, fmt.Errorf("failed to delete field %s: %w", rn.Store, err)
		}
	}
	return obj, nil
}

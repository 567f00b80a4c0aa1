package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Category tags a workout's modality.
type Category string

const (
	CategoryCardio     Category = "cardio"
	CategoryGymnastics Category = "gymnastics"
	CategoryStrength   Category = "strength"
)

// Categories lists every accepted category in form order.
var Categories = []Category{CategoryCardio, CategoryGymnastics, CategoryStrength}

var (
	ErrNoCategory      = errors.New("at least one category is required")
	ErrUnknownCategory = errors.New("unknown category")
)

// NormalizeCategories turns a stored category field into an ordered tag list.
//
// Older rows store the field as a native list, a JSON-encoded array, or a comma
// separated string. Lists are taken element by element, strings starting with "["
// are decoded as JSON, anything else is split on commas. A string that looks like
// JSON but does not parse becomes a single tag. Empty entries are dropped and the
// function never fails.
func NormalizeCategories(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case string:
		return normalizeString(v)
	case []byte:
		return normalizeString(string(v))
	case []string:
		return compact(v)
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i).Interface()
			if elem == nil {
				continue
			}
			out = append(out, fmt.Sprint(elem))
		}
		return compact(out)
	}

	return compact([]string{fmt.Sprint(raw)})
}

func normalizeString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}

	if strings.HasPrefix(s, "[") {
		var decoded []any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return []string{s}
		}
		return NormalizeCategories(decoded)
	}

	return compact(strings.Split(s, ","))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CanonicalCategories validates categories submitted through a write path.
// Tags are lower-cased and de-duplicated keeping first occurrence order.
func CanonicalCategories(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[Category]bool, len(in))
	for _, raw := range NormalizeCategories(in) {
		c := Category(strings.ToLower(raw))
		if !c.IsKnown() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, string(c))
	}
	if len(out) == 0 {
		return nil, ErrNoCategory
	}
	return out, nil
}

// IsKnown reports whether c is one of Categories.
func (c Category) IsKnown() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"region-storefront/internal/docstore"
	"region-storefront/internal/domain"
)

// Field readers are lenient: a missing or mistyped field yields the zero
// value so one badly written record never fails a whole listing.

func stringField(doc docstore.Document, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func floatField(doc docstore.Document, key string) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func regionalField(doc docstore.Document, key string) domain.RegionalString {
	switch v := doc[key].(type) {
	case map[string]any:
		return domain.RegionalString{
			Global: stringField(v, "global"),
			India:  stringField(v, "india"),
		}
	case docstore.Document:
		return domain.RegionalString{
			Global: stringField(v, "global"),
			India:  stringField(v, "india"),
		}
	case string:
		// Legacy records carry a single value for every region.
		return domain.RegionalString{Global: v, India: v}
	}
	return domain.RegionalString{}
}

func regionField(doc docstore.Document) domain.Region {
	r := domain.Region(strings.ToLower(stringField(doc, "region")))
	if !r.Valid() {
		// Records written before regions existed are shown everywhere.
		return domain.RegionBoth
	}
	return r
}

// optional encodes the uniform unset convention: an empty value is written
// as an explicit null, never omitted.
func optional(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func regionalValue(s domain.RegionalString) any {
	if s.IsZero() {
		return nil
	}
	return map[string]any{
		"global": optional(s.Global),
		"india":  optional(s.India),
	}
}

func wrapNotFound(err error, notFound error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, docstore.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

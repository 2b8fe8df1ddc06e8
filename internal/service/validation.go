package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"region-storefront/internal/catalog"
	"region-storefront/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

var validate = validator.New()

// ValidationError lists invalid fields and why.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func isHTTPURL(s string) bool {
	return validate.Var(s, "http_url") == nil
}

func checkText(errs fieldErrors, field, value string, required bool, max int) {
	switch {
	case required && strings.TrimSpace(value) == "":
		errs.add(field, "is required")
	case utf8.RuneCountInString(value) > max:
		errs.add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func validateProduct(p domain.Product) error {
	errs := fieldErrors{}

	checkText(errs, "title", p.Title, true, maxTitleLength)

	if strings.TrimSpace(p.Image) == "" {
		errs.add("image", "is required")
	} else if !isHTTPURL(p.Image) {
		errs.add("image", "must be an http(s) URL")
	}

	if err := catalog.ValidatePlacement(p.Category, p.Subcategory); err != nil {
		if errors.Is(err, catalog.ErrUnknownSubcategory) ||
			(errors.Is(err, catalog.ErrMissingLeaf) && catalog.IsClothing(p.Category)) {
			errs.add("subcategory", err.Error())
		} else {
			errs.add("category", err.Error())
		}
	}

	if p.Rating < 0 || p.Rating > 5 {
		errs.add("rating", "must be between 0 and 5")
	}

	if !p.Region.Valid() {
		errs.add("region", "must be one of global, india, both")
	}

	if p.AmazonLink.Global != "" && !isHTTPURL(p.AmazonLink.Global) {
		errs.add("amazonLink.global", "must be an http(s) URL")
	}
	if p.AmazonLink.India != "" && !isHTTPURL(p.AmazonLink.India) {
		errs.add("amazonLink.india", "must be an http(s) URL")
	}

	return errs.err()
}

// probeImage runs the configured prober, turning its failure into a field
// error.
func probeImage(ctx context.Context, prober ImageProber, url string) error {
	if prober == nil {
		return nil
	}
	if err := prober.Probe(ctx, url); err != nil {
		return &ValidationError{Fields: map[string]string{"image": err.Error()}}
	}
	return nil
}

package catalog

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"region-storefront/internal/domain"
)

// NoLink is returned when a product has no purchase link for either region.
const NoLink = "#"

// IsVisible reports whether a viewer in region v may see p at all.
func IsVisible(p domain.Product, v domain.ViewerRegion) bool {
	return p.Region == domain.RegionBoth || string(p.Region) == string(v)
}

// ResolveLink picks the viewer's link, falling back to the other region.
func ResolveLink(p domain.Product, v domain.ViewerRegion) string {
	if link := resolve(p.AmazonLink, v); link != "" {
		return link
	}
	return NoLink
}

// ResolvePrice picks the viewer's price with the same fallback as
// ResolveLink. It returns "" when neither variant is set.
func ResolvePrice(p domain.Product, v domain.ViewerRegion) string {
	return resolve(p.Price, v)
}

func resolve(s domain.RegionalString, v domain.ViewerRegion) string {
	if val := strings.TrimSpace(s.For(v)); val != "" {
		return val
	}
	return strings.TrimSpace(s.For(v.Other()))
}

var priceNumber = regexp.MustCompile(`[0-9][0-9,]*(\.[0-9]+)?`)

// FormatPrice renders a raw price string with the viewer's currency symbol.
// Only the first number in raw is used, with thousands separators removed;
// a price with no number renders as "".
func FormatPrice(raw string, v domain.ViewerRegion) string {
	match := priceNumber.FindString(raw)
	if match == "" {
		return ""
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return ""
	}

	symbol := "$"
	if v == domain.ViewerIndia {
		symbol = "₹"
	}
	return fmt.Sprintf("%s%.2f", symbol, n)
}

// StarRating floors a rating to the nearest half star within [0, 5].
func StarRating(rating float64) float64 {
	if math.IsNaN(rating) || rating <= 0 {
		return 0
	}
	if rating >= 5 {
		return 5
	}
	return math.Floor(rating*2) / 2
}

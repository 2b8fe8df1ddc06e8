package catalog

import (
	"fmt"

	"region-storefront/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
)

var storedCategories = []interface{}{
	"plushies", "anime", "gaming", "accessories", "amazon-finds",
	"tech-gaming", "tech-audio", "tech-storage",
	"clothing-men", "clothing-women", "clothing-unisex",
}

func genRegion() gopter.Gen {
	return gen.OneConstOf(domain.RegionGlobal, domain.RegionIndia, domain.RegionBoth)
}

func genViewer() gopter.Gen {
	return gen.OneConstOf(domain.ViewerGlobal, domain.ViewerIndia)
}

func genOptional(g gopter.Gen) gopter.Gen {
	return gen.OneGenOf(gen.Const(""), g)
}

func genProduct() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 1_000_000),
		gen.AlphaString(),
		gen.OneConstOf(storedCategories...),
		genOptional(gen.OneConstOf("men-hoodies", "women-tshirts", "unisex-jackets")),
		genOptional(gen.Identifier()),
		genOptional(gen.Identifier()),
		gen.Float64Range(0, 5),
		genRegion(),
	).Map(func(v []interface{}) domain.Product {
		p := domain.Product{
			ID:          fmt.Sprintf("p-%d", v[0].(int)),
			Title:       v[1].(string),
			Category:    v[2].(string),
			Subcategory: v[3].(string),
			Rating:      v[6].(float64),
			Region:      v[7].(domain.Region),
		}
		if s := v[4].(string); s != "" {
			p.AmazonLink.Global = "https://amazon.com/" + s
			p.Price.Global = "19.99"
		}
		if s := v[5].(string); s != "" {
			p.AmazonLink.India = "https://amazon.in/" + s
			p.Price.India = "1499"
		}
		return p
	})
}

func genProducts() gopter.Gen {
	return gen.SliceOf(genProduct())
}

package catalog

import (
	"context"

	"github.com/quickkart/storefront-gateway/pkg/money"
)

// Category is a browsable product grouping supplied by the commerce backend.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Product is a catalog entry, read-only to the cart engine. Upstream feeds
// carry two price fields: an assigned override and a base price. At most one
// is authoritative per item; resolution order is fixed by the pricing package.
type Product struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	CategoryID    string       `json:"categoryId,omitempty"`
	Image         string       `json:"image,omitempty"`
	AssignedPrice *money.Paise `json:"assignedPrice,omitempty"`
	BasePrice     *money.Paise `json:"basePrice,omitempty"`
}

// Catalog lists categories and their products from the commerce backend.
type Catalog interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]Product, error)
}

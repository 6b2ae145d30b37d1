package pricing

import (
	"fmt"

	"github.com/quickkart/storefront-gateway/internal/catalog"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	"github.com/quickkart/storefront-gateway/pkg/money"
)

// Resolve normalizes a product's heterogeneous price fields into one unit
// price. The assigned override wins when present and valid, then the base
// price. Negative values never resolve.
func Resolve(product catalog.Product) (money.Paise, error) {
	if price, ok := usable(product.AssignedPrice); ok {
		return price, nil
	}
	if price, ok := usable(product.BasePrice); ok {
		return price, nil
	}
	return 0, pkgerrors.New(pkgerrors.CodePriceUnavailable,
		fmt.Sprintf("no usable price for product %s", product.ID))
}

func usable(price *money.Paise) (money.Paise, bool) {
	if price == nil || *price < 0 {
		return 0, false
	}
	return *price, true
}

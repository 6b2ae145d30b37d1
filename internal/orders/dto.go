package orders

import (
	"context"
	"strings"
	"time"

	"github.com/quickkart/storefront-gateway/internal/catalog"
	"github.com/quickkart/storefront-gateway/internal/pricing"
	"github.com/quickkart/storefront-gateway/pkg/money"
	"github.com/quickkart/storefront-gateway/pkg/pagination"
)

// PaymentMode is the settlement method for an order.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeOnline PaymentMode = "ONLINE"
)

// ParsePaymentMode normalizes the wire value to the canonical uppercase form.
func ParsePaymentMode(raw string) (PaymentMode, bool) {
	mode := PaymentMode(strings.ToUpper(strings.TrimSpace(raw)))
	switch mode {
	case PaymentModeCash, PaymentModeOnline:
		return mode, true
	}
	return "", false
}

// RequestItem is one product/quantity pair submitted with an order.
type RequestItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Request is the payload for one create-order attempt. Built once per attempt
// and never mutated afterwards. ClientRequestID gives the backend a handle to
// deduplicate a resubmission after a timeout.
type Request struct {
	ClientRequestID string        `json:"clientRequestId"`
	PaymentMode     PaymentMode   `json:"paymentMode"`
	Items           []RequestItem `json:"items"`
	TotalAmount     money.Paise   `json:"totalAmount"`
}

// RecordProduct is a product reference inside a stored order.
type RecordProduct struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Record is an order as the commerce backend stores it. The backend's own
// total is not trusted for display; Total recomputes it from the product
// references.
type Record struct {
	ID          string          `json:"id"`
	PaymentMode PaymentMode     `json:"paymentMode"`
	CreatedAt   time.Time       `json:"createdAt"`
	Products    []RecordProduct `json:"products"`
}

// Total derives the order amount from the record's products. References whose
// price cannot be resolved contribute nothing rather than failing the whole
// record.
func (r Record) Total() money.Paise {
	var sum money.Paise
	for _, entry := range r.Products {
		price, err := pricing.Resolve(entry.Product)
		if err != nil {
			continue
		}
		sum += price.Mul(entry.Quantity)
	}
	return sum
}

// Page is one slice of order history returned by the backend.
type Page struct {
	Records    []Record `json:"records"`
	PageNumber int      `json:"pageNumber"`
	HasNext    bool     `json:"hasNextPage"`
	TotalCount int      `json:"totalCount"`
}

// HistoryAPI lists stored orders for a date range, one page at a time.
type HistoryAPI interface {
	List(ctx context.Context, from, to time.Time, page pagination.Page) (*Page, error)
}

package upstream

import (
	"encoding/json"
	"time"

	"github.com/quickkart/storefront-gateway/internal/catalog"
	"github.com/quickkart/storefront-gateway/internal/orders"
	"github.com/quickkart/storefront-gateway/pkg/money"
	"github.com/shopspring/decimal"
)

// The commerce backend speaks rupees and mixes two product shapes: a flat
// document with assign_price/price fields, and an order line whose productId
// is either a bare id string or the embedded product document. Everything in
// this file normalizes that into the catalog/orders types.

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type categoryPayload struct {
	ID    string `json:"_id"`
	AltID string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func (c categoryPayload) toCategory() catalog.Category {
	return catalog.Category{
		ID:    firstNonEmpty(c.ID, c.AltID),
		Name:  c.Name,
		Image: c.Image,
	}
}

type productPayload struct {
	ID          string       `json:"_id"`
	AltID       string       `json:"id"`
	Title       string       `json:"title"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Image       string       `json:"image"`
	AssignPrice *json.Number `json:"assign_price"`
	Price       *json.Number `json:"price"`
}

func (p productPayload) toProduct() catalog.Product {
	return catalog.Product{
		ID:            firstNonEmpty(p.ID, p.AltID),
		Name:          firstNonEmpty(p.Title, p.Name),
		CategoryID:    p.Category,
		Image:         p.Image,
		AssignedPrice: rupeesToPaise(p.AssignPrice),
		BasePrice:     rupeesToPaise(p.Price),
	}
}

// orderLinePayload tolerates both order-line shapes: productId as an embedded
// product document, or a bare id string with price fields flattened onto the
// line itself.
type orderLinePayload struct {
	product  productPayload
	Quantity int
}

func (l *orderLinePayload) UnmarshalJSON(data []byte) error {
	var flat struct {
		ProductID   json.RawMessage `json:"productId"`
		Quantity    int             `json:"quantity"`
		Qty         int             `json:"qty"`
		Title       string          `json:"title"`
		Name        string          `json:"name"`
		AssignPrice *json.Number    `json:"assign_price"`
		Price       *json.Number    `json:"price"`
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	l.Quantity = flat.Quantity
	if l.Quantity == 0 {
		l.Quantity = flat.Qty
	}

	if len(flat.ProductID) > 0 && flat.ProductID[0] == '{' {
		return json.Unmarshal(flat.ProductID, &l.product)
	}

	var id string
	if len(flat.ProductID) > 0 {
		if err := json.Unmarshal(flat.ProductID, &id); err != nil {
			return err
		}
	}
	l.product = productPayload{
		ID:          id,
		Title:       flat.Title,
		Name:        flat.Name,
		AssignPrice: flat.AssignPrice,
		Price:       flat.Price,
	}
	return nil
}

type orderPayload struct {
	ID          string             `json:"_id"`
	AltID       string             `json:"id"`
	PaymentMode string             `json:"paymentMode"`
	CreatedAt   time.Time          `json:"createdAt"`
	Products    []orderLinePayload `json:"products"`
}

func (o orderPayload) toRecord() orders.Record {
	mode, _ := orders.ParsePaymentMode(o.PaymentMode)
	record := orders.Record{
		ID:          firstNonEmpty(o.ID, o.AltID),
		PaymentMode: mode,
		CreatedAt:   o.CreatedAt,
		Products:    make([]orders.RecordProduct, 0, len(o.Products)),
	}
	for _, line := range o.Products {
		record.Products = append(record.Products, orders.RecordProduct{
			Product:  line.product.toProduct(),
			Quantity: line.Quantity,
		})
	}
	return record
}

type orderPagePayload struct {
	Docs        []orderPayload `json:"docs"`
	Page        int            `json:"page"`
	HasNextPage bool           `json:"hasNextPage"`
	TotalDocs   int            `json:"totalDocs"`
}

func (p orderPagePayload) toPage() *orders.Page {
	page := &orders.Page{
		Records:    make([]orders.Record, 0, len(p.Docs)),
		PageNumber: p.Page,
		HasNext:    p.HasNextPage,
		TotalCount: p.TotalDocs,
	}
	for _, doc := range p.Docs {
		page.Records = append(page.Records, doc.toRecord())
	}
	return page
}

type createOrderPayload struct {
	ClientRequestID string                   `json:"clientRequestId"`
	PaymentMode     string                   `json:"paymentMode"`
	Products        []createOrderLinePayload `json:"products"`
	TotalAmount     decimal.Decimal          `json:"totalAmount"`
}

type createOrderLinePayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func buildCreatePayload(req orders.Request) createOrderPayload {
	lines := make([]createOrderLinePayload, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, createOrderLinePayload{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return createOrderPayload{
		ClientRequestID: req.ClientRequestID,
		PaymentMode:     string(req.PaymentMode),
		Products:        lines,
		TotalAmount:     req.TotalAmount.Rupees(),
	}
}

func rupeesToPaise(raw *json.Number) *money.Paise {
	if raw == nil {
		return nil
	}
	value, err := decimal.NewFromString(raw.String())
	if err != nil {
		return nil
	}
	paise := money.FromRupees(value)
	return &paise
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

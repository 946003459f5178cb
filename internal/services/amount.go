package services

import (
	"math"

	"tokoorder/internal/apperror"
	"tokoorder/internal/models"

	"github.com/shopspring/decimal"
)

var (
	taxRate   = decimal.RequireFromString("0.02")
	maxAmount = decimal.NewFromInt(math.MaxInt64)
)

// LineItem is one requested (product, quantity) pair.
type LineItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=10000"`
}

// Catalog is a point-in-time view of product prices keyed by product id.
type Catalog map[string]models.Product

// NewCatalog indexes products by id.
func NewCatalog(products []models.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// Quote is the outcome of pricing a list of line items.
type Quote struct {
	Subtotal int64
	Tax      int64
	Amount   int64
	// Products is aligned with the requested items.
	Products []models.Product
}

// OrderItems freezes the quoted unit prices into order lines.
func (q *Quote) OrderItems(items []LineItem) []models.OrderItem {
	lines := make([]models.OrderItem, len(items))
	for i, item := range items {
		lines[i] = models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: q.Products[i].OfferPrice,
		}
	}
	return lines
}

// CalculateAmount prices items against catalog: the sum of offer price times
// quantity plus a 2% tax rounded down. It fails with ProductNotFound if any
// product is missing and with InvalidAmount unless the total is positive.
func CalculateAmount(items []LineItem, catalog Catalog) (*Quote, error) {
	if len(items) == 0 {
		return nil, apperror.Validation("items must not be empty")
	}

	subtotal := decimal.Zero
	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperror.Validation("quantity must be at least 1")
		}
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, apperror.ProductNotFound(item.ProductID)
		}
		products = append(products, product)
		line := decimal.NewFromInt(product.OfferPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}

	tax := subtotal.Mul(taxRate).Floor()
	total := subtotal.Add(tax)
	if total.GreaterThan(maxAmount) {
		return nil, apperror.New(apperror.CodeInvalidAmount, "order amount exceeds the supported maximum")
	}
	amount := total.IntPart()
	if amount <= 0 {
		return nil, apperror.InvalidAmount(amount)
	}

	return &Quote{
		Subtotal: subtotal.IntPart(),
		Tax:      tax.IntPart(),
		Amount:   amount,
		Products: products,
	}, nil
}

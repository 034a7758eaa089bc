package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type QuoteLine struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type Quote struct {
	Lines    []QuoteLine
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	Policy   string
}

const (
	OrderStatusPaid = "PAID"
)

// Order is the record of a settled checkout.
type Order struct {
	ID          string
	Status      string
	Lines       []QuoteLine
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

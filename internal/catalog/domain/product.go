package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID       int64
	Name     string
	Category string
	Price    decimal.Decimal
	Image    string
}

package storage

import "github.com/shopspring/decimal"

// orderLine is a cart line priced at the moment the order is placed.
type orderLine struct {
	bookID   int64
	quantity int
	price    decimal.Decimal
}

func orderTotal(lines []orderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.price.Mul(decimal.NewFromInt(int64(l.quantity))))
	}
	return total
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Pass  string `json:"-"`
}

// PublicUser is what login hands back to the caller.
type PublicUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Book struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	PhotoBase64 *string         `json:"photo_base64"`
}

// CartLine is a cart row joined with the book it points at.
type CartLine struct {
	Quantity int `json:"quantity"`
	Book
}

type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []OrderItem     `json:"items"`
}

// OrderItem is an order line; Price is the unit price at purchase time.
// BookID is zero once the book has been removed from the catalog.
type OrderItem struct {
	BookID      int64           `json:"book_id,omitempty"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Price       decimal.Decimal `json:"price"`
	PhotoBase64 *string         `json:"photo_base64"`
	Quantity    int             `json:"quantity"`
}

package models

import "time"

// UserRecord aggregates a shopper's cart, wishlist, orders and settings. It
// is stored in the KV store under "user:<email>" and does not exist until
// the first write; reads of an absent record yield DefaultUserRecord.
type UserRecord struct {
	Email    string       `json:"email"`
	Cart     []CartItem   `json:"cart"`
	Wishlist []string     `json:"wishlist"`
	Orders   []Order      `json:"orders"`
	Settings UserSettings `json:"settings"`
}

type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID       string     `json:"id"`
	Items    []CartItem `json:"items"`
	Total    float64    `json:"total"`
	Currency string     `json:"currency"`
	Status   string     `json:"status"`
	PlacedAt time.Time  `json:"placed_at"`
}

type UserSettings struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// DefaultUserRecord returns the zero-value shape served for an email with no
// stored record: empty collections, blank settings.
func DefaultUserRecord(email string) *UserRecord {
	return &UserRecord{
		Email:    email,
		Cart:     []CartItem{},
		Wishlist: []string{},
		Orders:   []Order{},
	}
}

// Normalize replaces nil collections with empty ones so marshalled records
// always serialize as [] rather than null.
func (u *UserRecord) Normalize() {
	if u.Cart == nil {
		u.Cart = []CartItem{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []string{}
	}
	if u.Orders == nil {
		u.Orders = []Order{}
	}
}

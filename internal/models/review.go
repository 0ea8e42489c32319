package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Review is a relational row: one user's review of one product. The
// (product_id, user_id) pair is unique, enforced by a database constraint.
type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ID         string    `json:"id" bun:"id,pk,type:varchar(36)"`
	ProductID  string    `json:"product_id" bun:"product_id,notnull"`
	UserID     string    `json:"user_id" bun:"user_id,notnull"`
	Rating     int       `json:"rating" bun:"rating,notnull"`
	Comment    string    `json:"comment" bun:"comment"`
	AuthorName string    `json:"author_name" bun:"author_name"`
	CreatedAt  time.Time `json:"created_at" bun:"created_at,notnull,default:current_timestamp"`
}

// ReviewSummary is the derived aggregate over a product's reviews. Zero
// reviews yields {0, 0}, never a fault.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	Count         int     `json:"count"`
}

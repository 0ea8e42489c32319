package kv

import (
	"time"

	"github.com/uptrace/bun"
)

// Record represents the persistent key-value table in the database.
type Record struct {
	bun.BaseModel `bun:"table:kv_entries"`

	Key       string     `json:"key" bun:"key,pk,type:varchar(255)"`
	Value     string     `json:"value" bun:"value,notnull"`
	ExpiresAt *time.Time `json:"expires_at" bun:"expires_at,nullzero"`
	CreatedAt time.Time  `json:"created_at" bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time  `json:"updated_at" bun:"updated_at,notnull,default:current_timestamp"`
}

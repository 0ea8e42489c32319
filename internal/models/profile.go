package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserProfile is the relational row created alongside account sign-up. The
// avatar reference is mutated by the avatar upload/delete flows.
type UserProfile struct {
	bun.BaseModel `bun:"table:user_profiles"`

	ID        string    `json:"id" bun:"id,pk,type:varchar(36)"`
	Email     string    `json:"email" bun:"email,notnull,unique"`
	FirstName string    `json:"first_name" bun:"first_name"`
	LastName  string    `json:"last_name" bun:"last_name"`
	AvatarURL string    `json:"avatar_url" bun:"avatar_url"`
	IsAdmin   bool      `json:"is_admin" bun:"is_admin,notnull,default:false"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `json:"updated_at" bun:"updated_at,notnull,default:current_timestamp"`
}

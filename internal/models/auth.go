package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID        int64     `bun:"user_id,notnull" json:"user_id"`
	JTI           string    `bun:"jti,notnull" json:"jti"`
	TokenHash     string    `bun:"token_hash,notnull" json:"token_hash"`
	DeviceInfo    *string   `bun:"device_info" json:"device_info"`
	Revoked       bool      `bun:"revoked,notnull" json:"revoked"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	ExpiresAt     time.Time `bun:"expires_at,notnull" json:"expires_at"`
}

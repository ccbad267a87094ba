package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is the external tenant an account belongs to. This service
// only ever reads clients and their API keys; ownership lives in the
// billing system.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKey is a credential issued to a Client. The keys visible to an
// account are the keys of its client, a derived read-only view.
type APIKey struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Key       string    `gorm:"uniqueIndex;not null;size:64" json:"key"`
	Label     string    `gorm:"size:100" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

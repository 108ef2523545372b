package models

import (
	"time"

	"gorm.io/datatypes"
)

// SiteDocumentName names the single document the store keeps.
const SiteDocumentName = "site"

// SiteDocument is the persisted form of SiteData. Version increases by one
// on every accepted write and doubles as the lost-update token.
type SiteDocument struct {
	Name      string         `json:"name" gorm:"primaryKey;size:64"`
	Payload   datatypes.JSON `json:"payload" gorm:"not null"`
	Version   int64          `json:"version" gorm:"not null;default:0"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

func (SiteDocument) TableName() string {
	return "site_documents"
}

// StoreResult is the body the store answers a write with.
type StoreResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Version int64  `json:"version,omitempty"`
}

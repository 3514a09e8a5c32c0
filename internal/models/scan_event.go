// internal/models/scan_event.go
package models

import "time"

// ScanEvent is one recorded resolution of a product's unique code.
// Rows are append-only; they are never updated and only removed when
// the owning product is deleted.
type ScanEvent struct {
	BaseModel
	ProductID    uint      `json:"product_id" gorm:"not null;index"`
	ScannedAt    time.Time `json:"scanned_at" gorm:"not null;index"`
	IPAddress    string    `json:"ip_address" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" gorm:"size:512"`
	LocationData JSONB     `json:"location_data" gorm:"type:jsonb"`

	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}

func (ScanEvent) TableName() string {
	return "qr_scans"
}

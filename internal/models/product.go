// internal/models/product.go
package models

type Product struct {
	BaseModel
	MakerID     uint          `json:"maker_id" gorm:"not null;index"`
	Name        string        `json:"name" gorm:"size:255;not null"`
	Description string        `json:"description" gorm:"type:text;not null"`
	History     string        `json:"history" gorm:"type:text"`
	Philosophy  string        `json:"philosophy" gorm:"type:text"`
	VideoPath   string        `json:"video_path" gorm:"size:255"`
	QRCodePath  string        `json:"qr_code_path" gorm:"size:255"`
	UniqueCode  string        `json:"unique_code" gorm:"size:10;not null;uniqueIndex"`
	Status      ProductStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`

	// Relationships
	Maker      Maker          `json:"maker,omitempty" gorm:"foreignKey:MakerID"`
	Images     []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	Reviews    []Review       `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
	ScanEvents []ScanEvent    `json:"scan_events,omitempty" gorm:"foreignKey:ProductID"`
}

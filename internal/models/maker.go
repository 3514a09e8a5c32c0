// internal/models/maker.go
package models

// Maker is the small-business (UMKM) profile that owns products.
type Maker struct {
	BaseModel
	Name            string `json:"name" gorm:"size:255;not null"`
	OwnerName       string `json:"owner_name" gorm:"size:255;not null"`
	Address         string `json:"address" gorm:"type:text;not null"`
	Phone           string `json:"phone" gorm:"size:20;not null"`
	Email           string `json:"email" gorm:"size:255"`
	Story           string `json:"story" gorm:"type:text"`
	EstablishedYear int    `json:"established_year"`
	LogoPath        string `json:"logo_path" gorm:"size:255"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:MakerID"`
}

// internal/models/product_image.go
package models

type ProductImage struct {
	BaseModel
	ProductID  uint   `json:"product_id" gorm:"not null;index"`
	ImagePath  string `json:"image_path" gorm:"size:255;not null"`
	AltText    string `json:"alt_text" gorm:"size:255"`
	SortOrder  int    `json:"sort_order" gorm:"default:0"`
	IsFeatured bool   `json:"is_featured" gorm:"default:false"`

	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}

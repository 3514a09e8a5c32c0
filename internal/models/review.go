// internal/models/review.go
package models

type Review struct {
	BaseModel
	ProductID    uint         `json:"product_id" gorm:"not null;index"`
	CustomerName string       `json:"customer_name" gorm:"size:255;not null"`
	Rating       int          `json:"rating" gorm:"not null"`
	Comment      string       `json:"comment" gorm:"type:text"`
	ReviewImages JSONBArray   `json:"review_images" gorm:"type:jsonb"`
	Status       ReviewStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`

	Product Product `json:"-" gorm:"foreignKey:ProductID"`
}

package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product representa una publicación del catálogo. El vendedor queda
// denormalizado (nombre y email) al momento de crearla.
type Product struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name             string    `json:"name" gorm:"type:varchar(255);not null;index"`
	Category         string    `json:"category" gorm:"type:varchar(100);not null;index"`
	ShortDescription string    `json:"shortDescription" gorm:"type:text;not null"`
	Description      string    `json:"description" gorm:"type:text;not null"`
	Price            float64   `json:"price" gorm:"not null"`
	Count            int       `json:"count" gorm:"not null"`
	SellersName      string    `json:"sellersName" gorm:"type:varchar(255)"`
	SellersEmail     string    `json:"sellersEmail" gorm:"type:varchar(255);index;default:''"`
	Rating           float64   `json:"rating" gorm:"default:0"`
	Image            []byte    `json:"image,omitempty" gorm:"type:bytea"`
	ImageType        string    `json:"imageType,omitempty" gorm:"type:varchar(50)"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

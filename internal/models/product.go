package models

import "time"

// Product represents a stock item. It is stored but not yet exposed over HTTP.
type Product struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ProductID   int64     `json:"productID" gorm:"column:product_id;uniqueIndex;not null"`
	ProductName string    `json:"product_name" gorm:"column:product_name;type:varchar(255);not null" validate:"required"`
	Price       *float64  `json:"price" gorm:"not null" validate:"required"`
	Qty         *float64  `json:"qty" gorm:"not null" validate:"required"`
	CreatedDate time.Time `json:"created_date" gorm:"column:created_date;autoCreateTime"`
}

func (Product) TableName() string {
	return "products"
}

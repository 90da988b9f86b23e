package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a batch of produce owned by exactly one farmer.
type Product struct {
	// ID is the unique identifier of the product.
	ID int `json:"id" db:"product_id"`

	// FarmerID identifies the owning farmer.
	FarmerID int `json:"farmer_id" db:"farmer_id"`

	// Name is the product name, e.g. "Wheat".
	Name string `json:"name" db:"product_name"`

	// Quantity is the produced amount in the product's unit.
	Quantity decimal.Decimal `json:"quantity" db:"quantity"`

	// QualityGrade is a free-form grade label.
	QualityGrade string `json:"quality_grade" db:"quality_grade"`

	// UnitPrice is the selling price of one unit.
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`

	// ProductionCost is the cost of producing one unit.
	ProductionCost decimal.Decimal `json:"production_cost" db:"production_cost"`

	// ProductionDate is the day the batch was produced.
	ProductionDate time.Time `json:"production_date" db:"production_date"`

	// SoldQuantity is the part of Quantity already sold.
	SoldQuantity decimal.Decimal `json:"sold_quantity" db:"sold_quantity"`
}

// TotalValue returns quantity × unit price.
func (p Product) TotalValue() decimal.Decimal {
	return p.Quantity.Mul(p.UnitPrice)
}

// Profit returns quantity × (unit price − production cost).
func (p Product) Profit() decimal.Decimal {
	return p.Quantity.Mul(p.UnitPrice.Sub(p.ProductionCost))
}

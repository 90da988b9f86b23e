package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// NeedType tells whether a need is a good or a service.
type NeedType string

const (
	NeedTypeGood    NeedType = "good"
	NeedTypeService NeedType = "service"
)

// Valid reports whether t is one of the known need types.
func (t NeedType) Valid() bool {
	return t == NeedTypeGood || t == NeedTypeService
}

// NeedStatus is the procurement state of a need. Any status may be set from
// any other.
type NeedStatus string

const (
	NeedStatusRequired   NeedStatus = "required"
	NeedStatusPurchased  NeedStatus = "purchased"
	NeedStatusInProgress NeedStatus = "in-progress"
)

// Valid reports whether s is one of the known statuses.
func (s NeedStatus) Valid() bool {
	switch s {
	case NeedStatusRequired, NeedStatusPurchased, NeedStatusInProgress:
		return true
	default:
		return false
	}
}

// Pending reports whether a need with this status still requires credit.
func (s NeedStatus) Pending() bool {
	return s == NeedStatusRequired || s == NeedStatusInProgress
}

// Need represents something a farmer has to buy or order.
type Need struct {
	// ID is the unique identifier of the need.
	ID int `json:"id" db:"need_id"`

	// FarmerID identifies the owning farmer.
	FarmerID int `json:"farmer_id" db:"farmer_id"`

	// Name describes what is needed.
	Name string `json:"name" db:"need_name"`

	// Type is either a good or a service.
	Type NeedType `json:"type" db:"need_type"`

	// UnitPrice is the price of one unit.
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`

	// RequiredQuantity is how many units are needed.
	RequiredQuantity decimal.Decimal `json:"required_quantity" db:"required_quantity"`

	// Status is the procurement state.
	Status NeedStatus `json:"status" db:"status"`

	// PurchaseDate is set once the need has been bought.
	PurchaseDate *time.Time `json:"purchase_date,omitempty" db:"purchase_date"`

	// Notes holds free-form remarks.
	Notes string `json:"notes" db:"notes"`
}

// Credit returns unit price × required quantity.
func (n Need) Credit() decimal.Decimal {
	return n.UnitPrice.Mul(n.RequiredQuantity)
}

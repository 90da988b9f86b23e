package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionRow is one product joined to its owning farmer, as listed by the
// regional and per-product production reports.
type ProductionRow struct {
	ProductID      int             `json:"product_id" db:"product_id"`
	FarmerID       int             `json:"farmer_id" db:"farmer_id"`
	FarmerName     string          `json:"farmer_name" db:"farmer_name"`
	Address        string          `json:"address" db:"address"`
	ProductName    string          `json:"product_name" db:"product_name"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	QualityGrade   string          `json:"quality_grade" db:"quality_grade"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	ProductionDate time.Time       `json:"production_date" db:"production_date"`

	// TotalValue is quantity × unit price.
	TotalValue decimal.Decimal `json:"total_value" db:"total_value"`
}

// NeedRow is one need joined to its owning farmer.
type NeedRow struct {
	NeedID           int             `json:"need_id" db:"need_id"`
	FarmerID         int             `json:"farmer_id" db:"farmer_id"`
	FarmerName       string          `json:"farmer_name" db:"farmer_name"`
	NeedName         string          `json:"need_name" db:"need_name"`
	Type             NeedType        `json:"type" db:"need_type"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	RequiredQuantity decimal.Decimal `json:"required_quantity" db:"required_quantity"`
	Status           NeedStatus      `json:"status" db:"status"`
	PurchaseDate     *time.Time      `json:"purchase_date,omitempty" db:"purchase_date"`
	Notes            string          `json:"notes" db:"notes"`
}

// ProfitRow is the profit breakdown of a single product.
type ProfitRow struct {
	ProductID      int             `json:"product_id" db:"product_id"`
	FarmerID       int             `json:"farmer_id" db:"farmer_id"`
	FarmerName     string          `json:"farmer_name" db:"farmer_name"`
	ProductName    string          `json:"product_name" db:"product_name"`
	Quantity       decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	ProductionCost decimal.Decimal `json:"production_cost" db:"production_cost"`

	// Revenue is quantity × unit price.
	Revenue decimal.Decimal `json:"revenue" db:"revenue"`

	// Cost is quantity × production cost.
	Cost decimal.Decimal `json:"cost" db:"cost"`

	// Profit is Revenue − Cost.
	Profit decimal.Decimal `json:"profit" db:"profit"`
}

// CreditRow is the credit a farmer needs to cover pending needs.
type CreditRow struct {
	FarmerID   int    `json:"farmer_id" db:"farmer_id"`
	FarmerName string `json:"farmer_name" db:"farmer_name"`

	// TotalCredit sums unit price × required quantity over needs that are
	// required or in progress.
	TotalCredit decimal.Decimal `json:"total_credit" db:"total_credit"`
	NeedsCount  int             `json:"needs_count" db:"needs_count"`

	// NeedNames lists the counted needs, comma separated, oldest first.
	NeedNames string `json:"need_names" db:"need_names"`
}

// DifferenceStatus labels the sign of profit − credit.
type DifferenceStatus string

const (
	DifferenceProfitExceeds DifferenceStatus = "profit>credit"
	DifferenceCreditExceeds DifferenceStatus = "credit>profit"
	DifferenceEqual         DifferenceStatus = "equal"
)

// DifferenceStatusOf returns the label matching the sign of d.
func DifferenceStatusOf(d decimal.Decimal) DifferenceStatus {
	switch d.Sign() {
	case 1:
		return DifferenceProfitExceeds
	case -1:
		return DifferenceCreditExceeds
	default:
		return DifferenceEqual
	}
}

// DifferenceRow compares a farmer's total profit with the credit required.
type DifferenceRow struct {
	FarmerID   int              `json:"farmer_id"`
	FarmerName string           `json:"farmer_name"`
	Profit     decimal.Decimal  `json:"profit"`
	Credit     decimal.Decimal  `json:"credit"`
	Difference decimal.Decimal  `json:"difference"`
	Status     DifferenceStatus `json:"status"`
}

// StatisticsKind tags the variant of a StatisticsRow.
type StatisticsKind string

const (
	StatisticsSummary StatisticsKind = "summary"
	StatisticsProduct StatisticsKind = "product"
	StatisticsNeed    StatisticsKind = "need"
)

// StatisticsRow is one row of the farmer statistics sequence. It is
// implemented only by FarmerSummary, ProductStat and NeedStat.
type StatisticsRow interface {
	Kind() StatisticsKind
	statisticsRow()
}

// FarmerSummary heads the statistics of a single farmer.
type FarmerSummary struct {
	FarmerID     int       `json:"farmer_id" db:"farmer_id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Address      string    `json:"address" db:"address"`
	Phone        string    `json:"phone" db:"phone"`
	Email        string    `json:"email" db:"email"`
	Role         Role      `json:"role" db:"role"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`

	ProductCount         int             `json:"product_count"`
	TotalProductionValue decimal.Decimal `json:"total_production_value"`
	NeedsCount           int             `json:"needs_count"`
	PendingCredit        decimal.Decimal `json:"pending_credit"`
}

// ProductStat aggregates a farmer's products sharing the same name.
type ProductStat struct {
	ProductName string `json:"product_name" db:"product_name"`

	// Batches is the number of product records sharing the name.
	Batches       int             `json:"batches" db:"batches"`
	TotalQuantity decimal.Decimal `json:"total_quantity" db:"total_quantity"`
	AveragePrice  decimal.Decimal `json:"average_price" db:"average_price"`
	TotalValue    decimal.Decimal `json:"total_value" db:"total_value"`
}

// NeedStat aggregates a farmer's needs sharing the same status.
type NeedStat struct {
	Status    NeedStatus      `json:"status" db:"status"`
	Count     int             `json:"count" db:"needs_count"`
	TotalCost decimal.Decimal `json:"total_cost" db:"total_cost"`
}

func (FarmerSummary) Kind() StatisticsKind { return StatisticsSummary }
func (ProductStat) Kind() StatisticsKind   { return StatisticsProduct }
func (NeedStat) Kind() StatisticsKind      { return StatisticsNeed }

func (FarmerSummary) statisticsRow() {}
func (ProductStat) statisticsRow()   {}
func (NeedStat) statisticsRow()      {}

// FarmerStatistics is the per-farmer statistics report.
type FarmerStatistics struct {
	Summary  FarmerSummary `json:"summary"`
	Products []ProductStat `json:"products"`
	Needs    []NeedStat    `json:"needs"`
}

// Rows flattens the statistics into a single sequence: the summary first,
// then product rows, then need rows.
func (s FarmerStatistics) Rows() []StatisticsRow {
	rows := make([]StatisticsRow, 0, 1+len(s.Products)+len(s.Needs))
	rows = append(rows, s.Summary)
	for _, p := range s.Products {
		rows = append(rows, p)
	}
	for _, n := range s.Needs {
		rows = append(rows, n)
	}
	return rows
}

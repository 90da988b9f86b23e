package reports

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/agrocoop/farmdesk/types"
	"github.com/shopspring/decimal"
)

// Report names accepted by Run and Table.
const (
	NameRegionalProduction     = "regional-production"
	NameFarmersNeeds           = "farmers-needs"
	NameProductProduction      = "product-production"
	NameFarmersProfit          = "farmers-profit"
	NameRequiredCredits        = "required-credits"
	NameCreditProfitDifference = "credit-profit-difference"
	NameFarmerStatistics       = "farmer-statistics"
)

var (
	ErrUnknownReport    = errors.New("unknown report")
	ErrMissingParameter = errors.New("missing report parameter")
)

var titles = map[string]string{
	NameRegionalProduction:     "Regional production",
	NameFarmersNeeds:           "Farmers needs",
	NameProductProduction:      "Product production",
	NameFarmersProfit:          "Farmers profit",
	NameRequiredCredits:        "Required credits",
	NameCreditProfitDifference: "Credit and profit difference",
	NameFarmerStatistics:       "Farmer statistics",
}

// Title returns the display title of the named report, or "" for an
// unknown name.
func Title(name string) string {
	return titles[name]
}

// Names returns every report name in a stable order.
func Names() []string {
	return []string{
		NameRegionalProduction,
		NameFarmersNeeds,
		NameProductProduction,
		NameFarmersProfit,
		NameRequiredCredits,
		NameCreditProfitDifference,
		NameFarmerStatistics,
	}
}

// Params carries the arguments of parameterized reports.
type Params struct {
	// Product is the name fragment for product-production.
	Product string

	// FarmerID selects the farmer for farmer-statistics.
	FarmerID int
}

// Table is a report projected into text cells, ready for a terminal or a
// spreadsheet.
type Table struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]string
}

// Run executes the named report and returns its typed result: a slice of
// row structs, or types.FarmerStatistics.
func (e *Engine) Run(ctx context.Context, name string, params Params) (any, error) {
	switch name {
	case NameRegionalProduction:
		return e.RegionalProduction(ctx)
	case NameFarmersNeeds:
		return e.FarmersNeeds(ctx)
	case NameProductProduction:
		if params.Product == "" {
			return nil, fmt.Errorf("%w: product", ErrMissingParameter)
		}
		return e.ProductProduction(ctx, params.Product)
	case NameFarmersProfit:
		return e.FarmersProfit(ctx)
	case NameRequiredCredits:
		return e.RequiredCredits(ctx)
	case NameCreditProfitDifference:
		return e.CreditProfitDifference(ctx)
	case NameFarmerStatistics:
		if params.FarmerID <= 0 {
			return nil, fmt.Errorf("%w: farmer_id", ErrMissingParameter)
		}
		return e.FarmerStatistics(ctx, params.FarmerID)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownReport, name)
	}
}

// Table runs the named report and projects it into a Table.
func (e *Engine) Table(ctx context.Context, name string, params Params) (Table, error) {
	result, err := e.Run(ctx, name, params)
	if err != nil {
		return Table{}, err
	}

	t := Table{Name: name, Title: titles[name], Rows: [][]string{}}
	switch rows := result.(type) {
	case []types.ProductionRow:
		t.Columns = []string{"Product ID", "Farmer", "Address", "Product", "Quantity", "Grade", "Unit price", "Production date", "Total value"}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{
				strconv.Itoa(r.ProductID), r.FarmerName, r.Address, r.ProductName,
				r.Quantity.String(), r.QualityGrade, money(r.UnitPrice),
				r.ProductionDate.Format(dateLayout), money(r.TotalValue),
			})
		}
	case []types.NeedRow:
		t.Columns = []string{"Need ID", "Farmer", "Need", "Type", "Unit price", "Quantity", "Status", "Purchase date", "Notes"}
		for _, r := range rows {
			purchased := ""
			if r.PurchaseDate != nil {
				purchased = r.PurchaseDate.Format(dateLayout)
			}
			t.Rows = append(t.Rows, []string{
				strconv.Itoa(r.NeedID), r.FarmerName, r.NeedName, string(r.Type),
				money(r.UnitPrice), r.RequiredQuantity.String(), string(r.Status),
				purchased, r.Notes,
			})
		}
	case []types.ProfitRow:
		t.Columns = []string{"Product ID", "Farmer", "Product", "Quantity", "Unit price", "Production cost", "Revenue", "Cost", "Profit"}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{
				strconv.Itoa(r.ProductID), r.FarmerName, r.ProductName, r.Quantity.String(),
				money(r.UnitPrice), money(r.ProductionCost), money(r.Revenue), money(r.Cost), money(r.Profit),
			})
		}
	case []types.CreditRow:
		t.Columns = []string{"Farmer ID", "Farmer", "Total credit", "Needs", "Need names"}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{
				strconv.Itoa(r.FarmerID), r.FarmerName, money(r.TotalCredit),
				strconv.Itoa(r.NeedsCount), r.NeedNames,
			})
		}
	case []types.DifferenceRow:
		t.Columns = []string{"Farmer ID", "Farmer", "Profit", "Credit", "Difference", "Status"}
		for _, r := range rows {
			t.Rows = append(t.Rows, []string{
				strconv.Itoa(r.FarmerID), r.FarmerName, money(r.Profit), money(r.Credit),
				money(r.Difference), string(r.Status),
			})
		}
	case types.FarmerStatistics:
		t.Columns = []string{"Kind", "Name", "Count", "Quantity", "Average price", "Value"}
		for _, row := range rows.Rows() {
			t.Rows = append(t.Rows, statisticsCells(row))
		}
	}
	return t, nil
}

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func statisticsCells(row types.StatisticsRow) []string {
	switch r := row.(type) {
	case types.FarmerSummary:
		return []string{
			string(r.Kind()), r.FullName,
			fmt.Sprintf("%d products, %d needs", r.ProductCount, r.NeedsCount),
			"", "", fmt.Sprintf("%s produced, %s pending", money(r.TotalProductionValue), money(r.PendingCredit)),
		}
	case types.ProductStat:
		return []string{
			string(r.Kind()), r.ProductName, strconv.Itoa(r.Batches),
			r.TotalQuantity.String(), money(r.AveragePrice), money(r.TotalValue),
		}
	case types.NeedStat:
		return []string{
			string(r.Kind()), string(r.Status), strconv.Itoa(r.Count),
			"", "", money(r.TotalCost),
		}
	}
	return nil
}

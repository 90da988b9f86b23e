// Package reports builds the read-only business reports over the store.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/agrocoop/farmdesk/internal/store"
	"github.com/agrocoop/farmdesk/types"
	"github.com/shopspring/decimal"
)

// Repository is the query surface the engine needs from the store.
type Repository interface {
	RegionalProduction(ctx context.Context) ([]types.ProductionRow, error)
	ProductProduction(ctx context.Context, name string) ([]types.ProductionRow, error)
	FarmersNeeds(ctx context.Context) ([]types.NeedRow, error)
	FarmersProfit(ctx context.Context) ([]types.ProfitRow, error)
	RequiredCredits(ctx context.Context) ([]types.CreditRow, error)
	ProfitByFarmer(ctx context.Context) ([]store.FarmerAmount, error)
	CreditByFarmer(ctx context.Context) ([]store.FarmerAmount, error)
	FarmerSummary(ctx context.Context, farmerID int) (types.FarmerSummary, error)
	ProductStats(ctx context.Context, farmerID int) ([]types.ProductStat, error)
	NeedStats(ctx context.Context, farmerID int) ([]types.NeedStat, error)
}

// Engine runs reports. A failed report returns an error and is logged; an
// empty slice means the report has no data.
type Engine struct {
	repo   Repository
	logger *slog.Logger
}

func NewEngine(repo Repository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, logger: logger}
}

// RegionalProduction lists every farmer product, newest first.
func (e *Engine) RegionalProduction(ctx context.Context) ([]types.ProductionRow, error) {
	rows, err := e.repo.RegionalProduction(ctx)
	if err != nil {
		return nil, e.fail(ctx, NameRegionalProduction, err)
	}
	return rows, nil
}

// FarmersNeeds lists every farmer need, newest first.
func (e *Engine) FarmersNeeds(ctx context.Context) ([]types.NeedRow, error) {
	rows, err := e.repo.FarmersNeeds(ctx)
	if err != nil {
		return nil, e.fail(ctx, NameFarmersNeeds, err)
	}
	return rows, nil
}

// ProductProduction lists products whose name contains name, ignoring case,
// largest quantity first.
func (e *Engine) ProductProduction(ctx context.Context, name string) ([]types.ProductionRow, error) {
	rows, err := e.repo.ProductProduction(ctx, name)
	if err != nil {
		return nil, e.fail(ctx, NameProductProduction, err, "product", name)
	}
	return rows, nil
}

// FarmersProfit returns the profit of every product, most profitable first.
func (e *Engine) FarmersProfit(ctx context.Context) ([]types.ProfitRow, error) {
	rows, err := e.repo.FarmersProfit(ctx)
	if err != nil {
		return nil, e.fail(ctx, NameFarmersProfit, err)
	}
	return rows, nil
}

// RequiredCredits totals the pending needs of every farmer, largest first.
func (e *Engine) RequiredCredits(ctx context.Context) ([]types.CreditRow, error) {
	rows, err := e.repo.RequiredCredits(ctx)
	if err != nil {
		return nil, e.fail(ctx, NameRequiredCredits, err)
	}
	return rows, nil
}

// CreditProfitDifference compares each farmer's total profit with the credit
// their pending needs require. Farmers without products are not listed; a
// farmer with products but no pending needs has zero credit.
func (e *Engine) CreditProfitDifference(ctx context.Context) ([]types.DifferenceRow, error) {
	profits, err := e.repo.ProfitByFarmer(ctx)
	if err != nil {
		return nil, e.fail(ctx, NameCreditProfitDifference, err)
	}
	credits, err := e.repo.CreditByFarmer(ctx)
	if err != nil {
		return nil, e.fail(ctx, NameCreditProfitDifference, err)
	}

	creditOf := make(map[int]decimal.Decimal, len(credits))
	for _, credit := range credits {
		creditOf[credit.FarmerID] = credit.Amount
	}

	rows := make([]types.DifferenceRow, 0, len(profits))
	for _, profit := range profits {
		credit, ok := creditOf[profit.FarmerID]
		if !ok {
			credit = decimal.Zero
		}
		diff := profit.Amount.Sub(credit)
		rows = append(rows, types.DifferenceRow{
			FarmerID:   profit.FarmerID,
			FarmerName: profit.FarmerName,
			Profit:     profit.Amount,
			Credit:     credit,
			Difference: diff,
			Status:     types.DifferenceStatusOf(diff),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].Difference.Cmp(rows[j].Difference); c != 0 {
			return c > 0
		}
		return rows[i].FarmerID < rows[j].FarmerID
	})
	return rows, nil
}

// FarmerStatistics summarizes one farmer. It returns store.ErrNotFound when
// no such farmer exists or the farmer is an administrator.
func (e *Engine) FarmerStatistics(ctx context.Context, farmerID int) (types.FarmerStatistics, error) {
	summary, err := e.repo.FarmerSummary(ctx, farmerID)
	if err != nil {
		return types.FarmerStatistics{}, e.fail(ctx, NameFarmerStatistics, err, "farmer_id", farmerID)
	}
	products, err := e.repo.ProductStats(ctx, farmerID)
	if err != nil {
		return types.FarmerStatistics{}, e.fail(ctx, NameFarmerStatistics, err, "farmer_id", farmerID)
	}
	needs, err := e.repo.NeedStats(ctx, farmerID)
	if err != nil {
		return types.FarmerStatistics{}, e.fail(ctx, NameFarmerStatistics, err, "farmer_id", farmerID)
	}

	summary.TotalProductionValue = decimal.Zero
	summary.PendingCredit = decimal.Zero
	for _, p := range products {
		summary.ProductCount += p.Batches
		summary.TotalProductionValue = summary.TotalProductionValue.Add(p.TotalValue)
	}
	for _, n := range needs {
		summary.NeedsCount += n.Count
		if n.Status.Pending() {
			summary.PendingCredit = summary.PendingCredit.Add(n.TotalCost)
		}
	}

	return types.FarmerStatistics{Summary: summary, Products: products, Needs: needs}, nil
}

func (e *Engine) fail(ctx context.Context, report string, err error, attrs ...any) error {
	level := slog.LevelError
	if errors.Is(err, store.ErrNotFound) {
		level = slog.LevelInfo
	}
	e.logger.Log(ctx, level, "report failed", append([]any{"report", report, "error", err}, attrs...)...)
	return fmt.Errorf("%s report: %w", report, err)
}

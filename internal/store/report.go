package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/agrocoop/farmdesk/types"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// FarmerAmount is a per-farmer aggregate used to merge profit and credit.
type FarmerAmount struct {
	FarmerID   int             `db:"farmer_id"`
	FarmerName string          `db:"farmer_name"`
	Amount     decimal.Decimal `db:"amount"`
}

// ReportRepository runs the read-only aggregation queries behind reports.
// Administrators are excluded from every query.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const productionSelect = `
	SELECT p.product_id, p.farmer_id, f.full_name AS farmer_name, f.address,
	       p.product_name, p.quantity, p.quality_grade, p.unit_price, p.production_date
	FROM products p
	JOIN farmers f ON f.farmer_id = p.farmer_id
	WHERE f.role <> $1`

func (r *ReportRepository) RegionalProduction(ctx context.Context) ([]types.ProductionRow, error) {
	const query = productionSelect + `
	ORDER BY p.production_date DESC, p.product_id DESC`
	rows := []types.ProductionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, types.RoleAdmin); err != nil {
		return nil, err
	}
	fillTotalValue(rows)
	return rows, nil
}

// ProductProduction lists products whose name contains name, ignoring case.
// LIKE wildcards in name match literally.
func (r *ReportRepository) ProductProduction(ctx context.Context, name string) ([]types.ProductionRow, error) {
	const query = productionSelect + `
	  AND LOWER(p.product_name) LIKE $2 ESCAPE '\'
	ORDER BY p.quantity DESC, p.product_id`
	rows := []types.ProductionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, types.RoleAdmin, containsPattern(name)); err != nil {
		return nil, err
	}
	fillTotalValue(rows)
	return rows, nil
}

func (r *ReportRepository) FarmersNeeds(ctx context.Context) ([]types.NeedRow, error) {
	const query = `
	SELECT n.need_id, n.farmer_id, f.full_name AS farmer_name, n.need_name, n.need_type,
	       n.unit_price, n.required_quantity, n.status, n.purchase_date, n.notes
	FROM needs n
	JOIN farmers f ON f.farmer_id = n.farmer_id
	WHERE f.role <> $1
	ORDER BY n.need_id DESC`
	rows := []types.NeedRow{}
	if err := r.db.SelectContext(ctx, &rows, query, types.RoleAdmin); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) FarmersProfit(ctx context.Context) ([]types.ProfitRow, error) {
	const query = `
	SELECT p.product_id, p.farmer_id, f.full_name AS farmer_name, p.product_name,
	       p.quantity, p.unit_price, p.production_cost
	FROM products p
	JOIN farmers f ON f.farmer_id = p.farmer_id
	WHERE f.role <> $1
	ORDER BY p.quantity * (p.unit_price - p.production_cost) DESC, p.product_id`
	rows := []types.ProfitRow{}
	if err := r.db.SelectContext(ctx, &rows, query, types.RoleAdmin); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Revenue = rows[i].Quantity.Mul(rows[i].UnitPrice)
		rows[i].Cost = rows[i].Quantity.Mul(rows[i].ProductionCost)
		rows[i].Profit = rows[i].Revenue.Sub(rows[i].Cost)
	}
	return rows, nil
}

func (r *ReportRepository) RequiredCredits(ctx context.Context) ([]types.CreditRow, error) {
	const query = `
	SELECT f.farmer_id, f.full_name AS farmer_name,
	       COALESCE(SUM(n.unit_price * n.required_quantity), 0) AS total_credit,
	       COUNT(n.need_id) AS needs_count,
	       string_agg(n.need_name, ', ' ORDER BY n.need_id) AS need_names
	FROM needs n
	JOIN farmers f ON f.farmer_id = n.farmer_id
	WHERE f.role <> $1 AND n.status IN ($2, $3)
	GROUP BY f.farmer_id, f.full_name
	ORDER BY total_credit DESC, f.farmer_id`
	rows := []types.CreditRow{}
	err := r.db.SelectContext(ctx, &rows, query,
		types.RoleAdmin, types.NeedStatusRequired, types.NeedStatusInProgress)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ProfitByFarmer sums product profit per farmer.
func (r *ReportRepository) ProfitByFarmer(ctx context.Context) ([]FarmerAmount, error) {
	const query = `
	SELECT f.farmer_id, f.full_name AS farmer_name,
	       COALESCE(SUM(p.quantity * (p.unit_price - p.production_cost)), 0) AS amount
	FROM products p
	JOIN farmers f ON f.farmer_id = p.farmer_id
	WHERE f.role <> $1
	GROUP BY f.farmer_id, f.full_name
	ORDER BY f.farmer_id`
	rows := []FarmerAmount{}
	if err := r.db.SelectContext(ctx, &rows, query, types.RoleAdmin); err != nil {
		return nil, err
	}
	return rows, nil
}

// CreditByFarmer sums the credit of required and in-progress needs per farmer.
func (r *ReportRepository) CreditByFarmer(ctx context.Context) ([]FarmerAmount, error) {
	const query = `
	SELECT f.farmer_id, f.full_name AS farmer_name,
	       COALESCE(SUM(n.unit_price * n.required_quantity), 0) AS amount
	FROM needs n
	JOIN farmers f ON f.farmer_id = n.farmer_id
	WHERE f.role <> $1 AND n.status IN ($2, $3)
	GROUP BY f.farmer_id, f.full_name
	ORDER BY f.farmer_id`
	rows := []FarmerAmount{}
	err := r.db.SelectContext(ctx, &rows, query,
		types.RoleAdmin, types.NeedStatusRequired, types.NeedStatusInProgress)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) FarmerSummary(ctx context.Context, farmerID int) (types.FarmerSummary, error) {
	const query = `
	SELECT farmer_id, full_name, address, phone, email, role, registered_at
	FROM farmers
	WHERE farmer_id = $1 AND role <> $2`
	var summary types.FarmerSummary
	if err := r.db.GetContext(ctx, &summary, query, farmerID, types.RoleAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.FarmerSummary{}, ErrNotFound
		}
		return types.FarmerSummary{}, err
	}
	return summary, nil
}

func (r *ReportRepository) ProductStats(ctx context.Context, farmerID int) ([]types.ProductStat, error) {
	const query = `
	SELECT product_name,
	       COUNT(1) AS batches,
	       COALESCE(SUM(quantity), 0) AS total_quantity,
	       COALESCE(AVG(unit_price), 0) AS average_price,
	       COALESCE(SUM(quantity * unit_price), 0) AS total_value
	FROM products
	WHERE farmer_id = $1
	GROUP BY product_name
	ORDER BY product_name`
	rows := []types.ProductStat{}
	if err := r.db.SelectContext(ctx, &rows, query, farmerID); err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].AveragePrice = rows[i].AveragePrice.Round(2)
	}
	return rows, nil
}

func (r *ReportRepository) NeedStats(ctx context.Context, farmerID int) ([]types.NeedStat, error) {
	const query = `
	SELECT status,
	       COUNT(1) AS needs_count,
	       COALESCE(SUM(unit_price * required_quantity), 0) AS total_cost
	FROM needs
	WHERE farmer_id = $1
	GROUP BY status
	ORDER BY status`
	rows := []types.NeedStat{}
	if err := r.db.SelectContext(ctx, &rows, query, farmerID); err != nil {
		return nil, err
	}
	return rows, nil
}

func fillTotalValue(rows []types.ProductionRow) {
	for i := range rows {
		rows[i].TotalValue = rows[i].Quantity.Mul(rows[i].UnitPrice)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(name string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"
}

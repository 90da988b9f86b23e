package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agrocoop/farmdesk/types"
	"github.com/jmoiron/sqlx"
)

const needColumns = `need_id, farmer_id, need_name, need_type, unit_price, required_quantity, status, purchase_date, notes`

// NeedRepository handles persistence for needs.
type NeedRepository struct {
	db *sqlx.DB
}

func NewNeedRepository(db *sqlx.DB) *NeedRepository {
	return &NeedRepository{db: db}
}

func (r *NeedRepository) List(ctx context.Context) ([]types.Need, error) {
	const query = `SELECT ` + needColumns + ` FROM needs ORDER BY need_id`
	needs := []types.Need{}
	if err := r.db.SelectContext(ctx, &needs, query); err != nil {
		return nil, err
	}
	return needs, nil
}

func (r *NeedRepository) ListByFarmer(ctx context.Context, farmerID int) ([]types.Need, error) {
	const query = `SELECT ` + needColumns + ` FROM needs WHERE farmer_id = $1 ORDER BY need_id`
	needs := []types.Need{}
	if err := r.db.SelectContext(ctx, &needs, query, farmerID); err != nil {
		return nil, err
	}
	return needs, nil
}

func (r *NeedRepository) Get(ctx context.Context, id int) (types.Need, error) {
	const query = `SELECT ` + needColumns + ` FROM needs WHERE need_id = $1`
	var need types.Need
	if err := r.db.GetContext(ctx, &need, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Need{}, ErrNotFound
		}
		return types.Need{}, err
	}
	return need, nil
}

func (r *NeedRepository) Create(ctx context.Context, need types.Need) (types.Need, error) {
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := farmerExists(ctx, tx, need.FarmerID); err != nil {
			return err
		}

		const query = `
			INSERT INTO needs (farmer_id, need_name, need_type, unit_price, required_quantity, status, purchase_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING need_id`
		return tx.QueryRowxContext(
			ctx,
			query,
			need.FarmerID,
			need.Name,
			need.Type,
			need.UnitPrice,
			need.RequiredQuantity,
			need.Status,
			need.PurchaseDate,
			need.Notes,
		).Scan(&need.ID)
	})
	if err != nil {
		return types.Need{}, err
	}
	return need, nil
}

// Update overwrites every field of a need. Status is written as given; there
// is no transition check.
func (r *NeedRepository) Update(ctx context.Context, need types.Need) error {
	return WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := farmerExists(ctx, tx, need.FarmerID); err != nil {
			return err
		}

		const query = `
			UPDATE needs
			SET farmer_id = $1,
				need_name = $2,
				need_type = $3,
				unit_price = $4,
				required_quantity = $5,
				status = $6,
				purchase_date = $7,
				notes = $8
			WHERE need_id = $9`
		result, err := tx.ExecContext(
			ctx,
			query,
			need.FarmerID,
			need.Name,
			need.Type,
			need.UnitPrice,
			need.RequiredQuantity,
			need.Status,
			need.PurchaseDate,
			need.Notes,
			need.ID,
		)
		if err != nil {
			return err
		}
		return rowsAffected(result)
	})
}

func (r *NeedRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM needs WHERE need_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return rowsAffected(result)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/agrocoop/farmdesk/types"
	"github.com/jmoiron/sqlx"
)

const farmerColumns = `farmer_id, full_name, address, phone, login, password_hash, email, registered_at, role`

// FarmerRepository handles persistence for farmers.
type FarmerRepository struct {
	db *sqlx.DB
}

func NewFarmerRepository(db *sqlx.DB) *FarmerRepository {
	return &FarmerRepository{db: db}
}

func (r *FarmerRepository) List(ctx context.Context) ([]types.Farmer, error) {
	const query = `SELECT ` + farmerColumns + ` FROM farmers ORDER BY farmer_id`
	farmers := []types.Farmer{}
	if err := r.db.SelectContext(ctx, &farmers, query); err != nil {
		return nil, err
	}
	return farmers, nil
}

func (r *FarmerRepository) GetByID(ctx context.Context, id int) (types.Farmer, error) {
	const query = `SELECT ` + farmerColumns + ` FROM farmers WHERE farmer_id = $1`
	var farmer types.Farmer
	if err := r.db.GetContext(ctx, &farmer, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Farmer{}, ErrNotFound
		}
		return types.Farmer{}, err
	}
	return farmer, nil
}

func (r *FarmerRepository) GetByLogin(ctx context.Context, login string) (types.Farmer, error) {
	const query = `SELECT ` + farmerColumns + ` FROM farmers WHERE login = $1`
	var farmer types.Farmer
	if err := r.db.GetContext(ctx, &farmer, query, login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Farmer{}, ErrNotFound
		}
		return types.Farmer{}, err
	}
	return farmer, nil
}

// Create inserts a farmer after checking, in the same transaction, that the
// login is free. PasswordHash must already be set.
func (r *FarmerRepository) Create(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	if farmer.RegisteredAt.IsZero() {
		farmer.RegisteredAt = time.Now().UTC()
	}
	if farmer.Role == "" {
		farmer.Role = types.RoleFarmer
	}

	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var taken int
		err := tx.GetContext(ctx, &taken, `SELECT COUNT(1) FROM farmers WHERE login = $1`, farmer.Login)
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrDuplicateLogin
		}

		const query = `
			INSERT INTO farmers (full_name, address, phone, login, password_hash, email, registered_at, role)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING farmer_id`
		return tx.QueryRowxContext(
			ctx,
			query,
			farmer.FullName,
			farmer.Address,
			farmer.Phone,
			farmer.Login,
			farmer.PasswordHash,
			farmer.Email,
			farmer.RegisteredAt,
			farmer.Role,
		).Scan(&farmer.ID)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return types.Farmer{}, ErrDuplicateLogin
		}
		return types.Farmer{}, err
	}
	return farmer, nil
}

// Update rewrites the profile fields of a farmer. The password hash is only
// replaced when farmer.PasswordHash is non-empty.
func (r *FarmerRepository) Update(ctx context.Context, farmer types.Farmer) error {
	const query = `
		UPDATE farmers
		SET full_name = $1,
			address = $2,
			phone = $3,
			login = $4,
			email = $5,
			role = $6,
			password_hash = COALESCE(NULLIF($7, ''), password_hash)
		WHERE farmer_id = $8`
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var taken int
		err := tx.GetContext(ctx, &taken,
			`SELECT COUNT(1) FROM farmers WHERE login = $1 AND farmer_id <> $2`, farmer.Login, farmer.ID)
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrDuplicateLogin
		}

		result, err := tx.ExecContext(
			ctx,
			query,
			farmer.FullName,
			farmer.Address,
			farmer.Phone,
			farmer.Login,
			farmer.Email,
			farmer.Role,
			farmer.PasswordHash,
			farmer.ID,
		)
		if err != nil {
			return err
		}
		return rowsAffected(result)
	})
	if isUniqueViolation(err) {
		return ErrDuplicateLogin
	}
	return err
}

// Delete removes a farmer. Products and needs of the farmer are removed by
// the ON DELETE CASCADE foreign keys.
func (r *FarmerRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM farmers WHERE farmer_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return rowsAffected(result)
}

func farmerExists(ctx context.Context, tx *sqlx.Tx, id int) error {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM farmers WHERE farmer_id = $1`, id); err != nil {
		return err
	}
	if count == 0 {
		return ErrUnknownFarmer
	}
	return nil
}

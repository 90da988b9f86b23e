package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/agrocoop/farmdesk/types"
	"github.com/jmoiron/sqlx"
)

const productColumns = `product_id, farmer_id, product_name, quantity, quality_grade, unit_price, production_cost, production_date, sold_quantity`

// ProductRepository handles persistence for products.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]types.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products ORDER BY product_id`
	products := []types.Product{}
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) ListByFarmer(ctx context.Context, farmerID int) ([]types.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE farmer_id = $1 ORDER BY product_id`
	products := []types.Product{}
	if err := r.db.SelectContext(ctx, &products, query, farmerID); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int) (types.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE product_id = $1`
	var product types.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	err := WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := farmerExists(ctx, tx, product.FarmerID); err != nil {
			return err
		}

		const query = `
			INSERT INTO products (farmer_id, product_name, quantity, quality_grade, unit_price, production_cost, production_date, sold_quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING product_id`
		return tx.QueryRowxContext(
			ctx,
			query,
			product.FarmerID,
			product.Name,
			product.Quantity,
			product.QualityGrade,
			product.UnitPrice,
			product.ProductionCost,
			product.ProductionDate,
			product.SoldQuantity,
		).Scan(&product.ID)
	})
	if err != nil {
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product types.Product) error {
	return WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := farmerExists(ctx, tx, product.FarmerID); err != nil {
			return err
		}

		const query = `
			UPDATE products
			SET farmer_id = $1,
				product_name = $2,
				quantity = $3,
				quality_grade = $4,
				unit_price = $5,
				production_cost = $6,
				production_date = $7,
				sold_quantity = $8
			WHERE product_id = $9`
		result, err := tx.ExecContext(
			ctx,
			query,
			product.FarmerID,
			product.Name,
			product.Quantity,
			product.QualityGrade,
			product.UnitPrice,
			product.ProductionCost,
			product.ProductionDate,
			product.SoldQuantity,
			product.ID,
		)
		if err != nil {
			return err
		}
		return rowsAffected(result)
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM products WHERE product_id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return rowsAffected(result)
}

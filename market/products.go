// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package market

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/errs"

	"github.com/feedbay/feedbay/trending"
)

// CreateProduct persists a new product together with its images and
// category attachments in a single transaction, and returns the product
// identifier. Referenced categories must already exist.
func (db *DB) CreateProduct(ctx context.Context, product Product) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	if product.SellerID == "" {
		return "", ErrValidation.New("product seller id is required")
	}
	if product.Title == "" {
		return "", ErrValidation.New("product title is required")
	}
	if product.PriceCents < 0 {
		return "", ErrValidation.New("product price must not be negative")
	}

	seller, err := db.GetSeller(ctx, product.SellerID)
	if err != nil {
		return "", err
	}
	if seller == nil {
		return "", ErrNotFound.New("seller %s", product.SellerID)
	}

	categoryIDs, err := db.resolveCategoryNames(ctx, product.Categories)
	if err != nil {
		return "", err
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := db.nowFn().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return "", Error.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, tx.Rollback())
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO products (id, seller_id, title, description, price_cents, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.SellerID, product.Title, product.Description,
		product.PriceCents, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return "", Error.Wrap(err)
	}
	if err := insertProductImages(ctx, tx, product.ID, product.Images); err != nil {
		return "", err
	}
	if err := insertProductCategories(ctx, tx, product.ID, categoryIDs); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", Error.Wrap(err)
	}
	return product.ID, nil
}

// GetProduct returns the product with its images and category names, or
// nil when it does not exist.
func (db *DB) GetProduct(ctx context.Context, id string) (_ *Product, err error) {
	defer mon.Task()(&ctx)(&err)

	var product Product
	err = db.db.QueryRowContext(ctx,
		`SELECT id, seller_id, title, description, price_cents, created_at, updated_at
		 FROM products WHERE id = ?`, id).
		Scan(&product.ID, &product.SellerID, &product.Title, &product.Description,
			&product.PriceCents, &product.CreatedAt, &product.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if err := db.loadProductDetails(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct applies only the provided fields. Updating with no fields
// is a no-op returning success.
func (db *DB) UpdateProduct(ctx context.Context, id string, fields UpdateProductFields) (err error) {
	defer mon.Task()(&ctx)(&err)

	if fields.isZero() {
		return nil
	}
	if fields.PriceCents != nil && *fields.PriceCents < 0 {
		return ErrValidation.New("product price must not be negative")
	}

	var categoryIDs []string
	if fields.Categories != nil {
		categoryIDs, err = db.resolveCategoryNames(ctx, *fields.Categories)
		if err != nil {
			return err
		}
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, tx.Rollback())
		}
	}()

	assignments := []string{"updated_at = ?"}
	args := []interface{}{db.nowFn().UTC()}
	if fields.Title != nil {
		assignments = append(assignments, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *fields.Description)
	}
	if fields.PriceCents != nil {
		assignments = append(assignments, "price_cents = ?")
		args = append(args, *fields.PriceCents)
	}
	args = append(args, id)

	result, err := tx.ExecContext(ctx,
		`UPDATE products SET `+strings.Join(assignments, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return Error.Wrap(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Error.Wrap(err)
	}
	if affected == 0 {
		return ErrNotFound.New("product %s", id)
	}

	if fields.Images != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = ?`, id); err != nil {
			return Error.Wrap(err)
		}
		if err := insertProductImages(ctx, tx, id, *fields.Images); err != nil {
			return err
		}
	}
	if fields.Categories != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = ?`, id); err != nil {
			return Error.Wrap(err)
		}
		if err := insertProductCategories(ctx, tx, id, categoryIDs); err != nil {
			return err
		}
	}

	return Error.Wrap(tx.Commit())
}

// DeleteProduct removes the product; images, category attachments and
// collection memberships cascade. Deleting a missing product is not an
// error.
func (db *DB) DeleteProduct(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return Error.Wrap(err)
}

// ListProducts returns products matching the filters ordered by creation
// time descending.
func (db *DB) ListProducts(ctx context.Context, filters ProductFilters, page Pagination) (_ []Product, err error) {
	defer mon.Task()(&ctx)(&err)

	query := `SELECT p.id, p.seller_id, p.title, p.description, p.price_cents, p.created_at, p.updated_at
		FROM products p`
	var conditions []string
	var args []interface{}

	if filters.Category != "" {
		query += ` JOIN product_categories pc ON pc.product_id = p.id
			JOIN categories c ON c.id = pc.category_id`
		conditions = append(conditions, "c.name = ?")
		args = append(args, filters.Category)
	}
	if filters.SellerID != "" {
		conditions = append(conditions, "p.seller_id = ?")
		args = append(args, filters.SellerID)
	}
	if filters.TitleContains != "" {
		conditions = append(conditions, "instr(p.title, ?) > 0")
		args = append(args, filters.TitleContains)
	}
	if filters.MinPriceCents != nil {
		conditions = append(conditions, "p.price_cents >= ?")
		args = append(args, *filters.MinPriceCents)
	}
	if filters.MaxPriceCents != nil {
		conditions = append(conditions, "p.price_cents <= ?")
		args = append(args, *filters.MaxPriceCents)
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY p.created_at DESC, p.id LIMIT ? OFFSET ?`
	args = append(args, limitOrAll(page.Limit), offsetOrZero(page.Offset))

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var products []Product
	for rows.Next() {
		var product Product
		if err := rows.Scan(&product.ID, &product.SellerID, &product.Title, &product.Description,
			&product.PriceCents, &product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, Error.Wrap(errs.Combine(err, rows.Close()))
		}
		products = append(products, product)
	}
	// close before loading details: the handle is limited to one connection
	if err := errs.Combine(rows.Err(), rows.Close()); err != nil {
		return nil, Error.Wrap(err)
	}

	for i := range products {
		if err := db.loadProductDetails(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// Resolve implements trending.Source.
func (db *DB) Resolve(ctx context.Context, id string) (trending.Record, error) {
	product, err := db.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return product, nil
}

func (db *DB) loadProductDetails(ctx context.Context, product *Product) (err error) {
	rows, err := db.db.QueryContext(ctx,
		`SELECT url FROM product_images WHERE product_id = ? ORDER BY position`, product.ID)
	if err != nil {
		return Error.Wrap(err)
	}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return Error.Wrap(errs.Combine(err, rows.Close()))
		}
		product.Images = append(product.Images, url)
	}
	if err := errs.Combine(rows.Err(), rows.Close()); err != nil {
		return Error.Wrap(err)
	}

	rows, err = db.db.QueryContext(ctx,
		`SELECT c.name FROM product_categories pc
		 JOIN categories c ON c.id = pc.category_id
		 WHERE pc.product_id = ? ORDER BY c.name`, product.ID)
	if err != nil {
		return Error.Wrap(err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Error.Wrap(errs.Combine(err, rows.Close()))
		}
		product.Categories = append(product.Categories, name)
	}
	return Error.Wrap(errs.Combine(rows.Err(), rows.Close()))
}

func (db *DB) resolveCategoryNames(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		var id string
		err := db.db.QueryRowContext(ctx,
			`SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrValidation.New("unknown category %q", name)
		}
		if err != nil {
			return nil, Error.Wrap(err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func insertProductImages(ctx context.Context, tx *sql.Tx, productID string, images []string) error {
	for position, url := range images {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_images (product_id, position, url) VALUES (?, ?, ?)`,
			productID, position, url)
		if err != nil {
			return Error.Wrap(err)
		}
	}
	return nil
}

func insertProductCategories(ctx context.Context, tx *sql.Tx, productID string, categoryIDs []string) error {
	for _, categoryID := range categoryIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES (?, ?)`,
			productID, categoryID)
		if err != nil {
			return Error.Wrap(err)
		}
	}
	return nil
}

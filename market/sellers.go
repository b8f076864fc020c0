// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package market

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/zeebo/errs"
)

// CreateSeller persists a new seller and returns its identifier.
func (db *DB) CreateSeller(ctx context.Context, seller Seller) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	if seller.Name == "" {
		return "", ErrValidation.New("seller name is required")
	}
	if seller.ID == "" {
		seller.ID = uuid.NewString()
	}
	seller.CreatedAt = db.nowFn().UTC()

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO sellers (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		seller.ID, seller.Name, seller.Email, seller.CreatedAt)
	if err != nil {
		return "", Error.Wrap(err)
	}
	return seller.ID, nil
}

// GetSeller returns the seller or nil when it does not exist.
func (db *DB) GetSeller(ctx context.Context, id string) (_ *Seller, err error) {
	defer mon.Task()(&ctx)(&err)

	var seller Seller
	err = db.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM sellers WHERE id = ?`, id).
		Scan(&seller.ID, &seller.Name, &seller.Email, &seller.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &seller, nil
}

// ListSellers returns all sellers ordered by creation time descending.
func (db *DB) ListSellers(ctx context.Context, page Pagination) (_ []Seller, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.db.QueryContext(ctx,
		`SELECT id, name, email, created_at FROM sellers
		 ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limitOrAll(page.Limit), offsetOrZero(page.Offset))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var sellers []Seller
	for rows.Next() {
		var seller Seller
		if err := rows.Scan(&seller.ID, &seller.Name, &seller.Email, &seller.CreatedAt); err != nil {
			return nil, Error.Wrap(err)
		}
		sellers = append(sellers, seller)
	}
	return sellers, Error.Wrap(rows.Err())
}

// DeleteSeller removes the seller, cascading to its products and
// collections. Deleting a missing seller is not an error.
func (db *DB) DeleteSeller(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `DELETE FROM sellers WHERE id = ?`, id)
	return Error.Wrap(err)
}

// CreateCategory persists a new category, optionally as a child of an
// existing category, and returns its identifier.
func (db *DB) CreateCategory(ctx context.Context, category Category) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	if category.Name == "" {
		return "", ErrValidation.New("category name is required")
	}
	if category.ParentID != nil {
		parent, err := db.GetCategory(ctx, *category.ParentID)
		if err != nil {
			return "", err
		}
		if parent == nil {
			return "", ErrNotFound.New("parent category %s", *category.ParentID)
		}
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, parent_id) VALUES (?, ?, ?)`,
		category.ID, category.Name, category.ParentID)
	if err != nil {
		return "", Error.Wrap(err)
	}
	return category.ID, nil
}

// GetCategory returns the category or nil when it does not exist.
func (db *DB) GetCategory(ctx context.Context, id string) (_ *Category, err error) {
	defer mon.Task()(&ctx)(&err)

	var category Category
	err = db.db.QueryRowContext(ctx,
		`SELECT id, name, parent_id FROM categories WHERE id = ?`, id).
		Scan(&category.ID, &category.Name, &category.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &category, nil
}

// ListCategories returns all categories ordered by name ascending.
func (db *DB) ListCategories(ctx context.Context) (_ []Category, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.db.QueryContext(ctx,
		`SELECT id, name, parent_id FROM categories ORDER BY name`)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var categories []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.ParentID); err != nil {
			return nil, Error.Wrap(err)
		}
		categories = append(categories, category)
	}
	return categories, Error.Wrap(rows.Err())
}

// DeleteCategory removes the category; children keep existing with their
// parent reference cleared. Deleting a missing category is not an error.
func (db *DB) DeleteCategory(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return Error.Wrap(err)
}

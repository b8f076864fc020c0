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
)

// CreateCollection persists a new collection and returns its identifier.
func (db *DB) CreateCollection(ctx context.Context, collection Collection) (_ string, err error) {
	defer mon.Task()(&ctx)(&err)

	if collection.SellerID == "" {
		return "", ErrValidation.New("collection seller id is required")
	}
	if collection.Title == "" {
		return "", ErrValidation.New("collection title is required")
	}

	seller, err := db.GetSeller(ctx, collection.SellerID)
	if err != nil {
		return "", err
	}
	if seller == nil {
		return "", ErrNotFound.New("seller %s", collection.SellerID)
	}

	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	now := db.nowFn().UTC()
	collection.CreatedAt = now
	collection.UpdatedAt = now

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO collections (id, seller_id, title, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		collection.ID, collection.SellerID, collection.Title, collection.Description,
		collection.CreatedAt, collection.UpdatedAt)
	if err != nil {
		return "", Error.Wrap(err)
	}
	return collection.ID, nil
}

// GetCollection returns the collection or nil when it does not exist.
// When includeMembers is set, the member list is loaded ordered by
// position ascending.
func (db *DB) GetCollection(ctx context.Context, id string, includeMembers bool) (_ *Collection, err error) {
	defer mon.Task()(&ctx)(&err)

	var collection Collection
	err = db.db.QueryRowContext(ctx,
		`SELECT id, seller_id, title, description, created_at, updated_at
		 FROM collections WHERE id = ?`, id).
		Scan(&collection.ID, &collection.SellerID, &collection.Title,
			&collection.Description, &collection.CreatedAt, &collection.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if includeMembers {
		collection.Members, err = db.ListMembers(ctx, id)
		if err != nil {
			return nil, err
		}
	}
	return &collection, nil
}

// UpdateCollection applies only the provided fields. Updating with no
// fields is a no-op returning success.
func (db *DB) UpdateCollection(ctx context.Context, id string, fields UpdateCollectionFields) (err error) {
	defer mon.Task()(&ctx)(&err)

	if fields.isZero() {
		return nil
	}

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
	args = append(args, id)

	result, err := db.db.ExecContext(ctx,
		`UPDATE collections SET `+strings.Join(assignments, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return Error.Wrap(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Error.Wrap(err)
	}
	if affected == 0 {
		return ErrNotFound.New("collection %s", id)
	}
	return nil
}

// DeleteCollection removes the collection and its memberships. Deleting a
// missing collection is not an error.
func (db *DB) DeleteCollection(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	return Error.Wrap(err)
}

// ListCollections returns collections matching the filters ordered by
// creation time descending.
func (db *DB) ListCollections(ctx context.Context, filters CollectionFilters, page Pagination) (_ []Collection, err error) {
	defer mon.Task()(&ctx)(&err)

	query := `SELECT id, seller_id, title, description, created_at, updated_at FROM collections`
	var conditions []string
	var args []interface{}

	if filters.SellerID != "" {
		conditions = append(conditions, "seller_id = ?")
		args = append(args, filters.SellerID)
	}
	if filters.TitleContains != "" {
		conditions = append(conditions, "instr(title, ?) > 0")
		args = append(args, filters.TitleContains)
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limitOrAll(page.Limit), offsetOrZero(page.Offset))

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var collections []Collection
	for rows.Next() {
		var collection Collection
		if err := rows.Scan(&collection.ID, &collection.SellerID, &collection.Title,
			&collection.Description, &collection.CreatedAt, &collection.UpdatedAt); err != nil {
			return nil, Error.Wrap(err)
		}
		collections = append(collections, collection)
	}
	return collections, Error.Wrap(rows.Err())
}

// ListMembers returns the collection's memberships ordered by position
// ascending.
func (db *DB) ListMembers(ctx context.Context, collectionID string) (_ []CollectionMember, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.db.QueryContext(ctx,
		`SELECT product_id, position FROM collection_products
		 WHERE collection_id = ? ORDER BY position, product_id`, collectionID)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var members []CollectionMember
	for rows.Next() {
		var member CollectionMember
		if err := rows.Scan(&member.ProductID, &member.Position); err != nil {
			return nil, Error.Wrap(err)
		}
		members = append(members, member)
	}
	return members, Error.Wrap(rows.Err())
}

// ProductCollections returns the ids of collections the product belongs
// to.
func (db *DB) ProductCollections(ctx context.Context, productID string) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)

	rows, err := db.db.QueryContext(ctx,
		`SELECT collection_id FROM collection_products WHERE product_id = ?`, productID)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, rows.Close()) }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, Error.Wrap(err)
		}
		ids = append(ids, id)
	}
	return ids, Error.Wrap(rows.Err())
}

// AddMember attaches a product to a collection. When position is nil the
// product is appended after the current last member. Re-adding an
// existing member updates its position.
func (db *DB) AddMember(ctx context.Context, collectionID, productID string, position *int) (err error) {
	defer mon.Task()(&ctx)(&err)

	collection, err := db.GetCollection(ctx, collectionID, false)
	if err != nil {
		return err
	}
	if collection == nil {
		return ErrNotFound.New("collection %s", collectionID)
	}
	product, err := db.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound.New("product %s", productID)
	}

	pos := 0
	if position != nil {
		pos = *position
	} else {
		var max sql.NullInt64
		err := db.db.QueryRowContext(ctx,
			`SELECT max(position) FROM collection_products WHERE collection_id = ?`,
			collectionID).Scan(&max)
		if err != nil {
			return Error.Wrap(err)
		}
		if max.Valid {
			pos = int(max.Int64) + 1
		}
	}

	_, err = db.db.ExecContext(ctx,
		`INSERT INTO collection_products (collection_id, product_id, position) VALUES (?, ?, ?)
		 ON CONFLICT (collection_id, product_id) DO UPDATE SET position = excluded.position`,
		collectionID, productID, pos)
	return Error.Wrap(err)
}

// RemoveMember detaches a product from a collection. Removing a missing
// membership is not an error.
func (db *DB) RemoveMember(ctx context.Context, collectionID, productID string) (err error) {
	defer mon.Task()(&ctx)(&err)

	_, err = db.db.ExecContext(ctx,
		`DELETE FROM collection_products WHERE collection_id = ? AND product_id = ?`,
		collectionID, productID)
	return Error.Wrap(err)
}

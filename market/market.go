// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

// Package market implements the marketplace plugin: sellers, categories,
// products and product collections over a relational store.
package market

import (
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	mon = monkit.Package()

	// Error is the default market error class.
	Error = errs.Class("market")
	// ErrNotFound is returned by operations that require an existing target.
	ErrNotFound = errs.Class("market not found")
	// ErrValidation is returned for invalid input, before reaching the store.
	ErrValidation = errs.Class("market validation")
)

// Seller owns products and collections; deleting a seller cascades to
// both.
type Seller struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category is a label attached to products. Categories may form a
// parent/child hierarchy.
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
}

// Product is the marketplace entity.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Images      []string  `json:"images,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TrendingID implements trending.Record.
func (product *Product) TrendingID() string { return product.ID }

// HasCategory implements trending.Record.
func (product *Product) HasCategory(category string) bool {
	for _, c := range product.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Collection is a named, explicitly ordered group of products.
type Collection struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Members is populated only when requested.
	Members []CollectionMember `json:"members,omitempty"`
}

// CollectionMember is a product's membership in a collection with its
// explicit position.
type CollectionMember struct {
	ProductID string `json:"productId"`
	Position  int    `json:"position"`
}

// UpdateProductFields holds the product fields an update may touch. Nil
// fields are left unchanged.
type UpdateProductFields struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	PriceCents  *int64    `json:"priceCents,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Categories  *[]string `json:"categories,omitempty"`
}

func (fields UpdateProductFields) isZero() bool {
	return fields.Title == nil && fields.Description == nil &&
		fields.PriceCents == nil && fields.Images == nil && fields.Categories == nil
}

// UpdateCollectionFields holds the collection fields an update may touch.
type UpdateCollectionFields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (fields UpdateCollectionFields) isZero() bool {
	return fields.Title == nil && fields.Description == nil
}

// ProductFilters narrow down product listings.
type ProductFilters struct {
	SellerID      string
	Category      string
	TitleContains string
	MinPriceCents *int64
	MaxPriceCents *int64
}

// CollectionFilters narrow down collection listings.
type CollectionFilters struct {
	SellerID      string
	TitleContains string
}

// Pagination applies offset/limit over a sorted listing. Zero or negative
// limit means no limit. No total count is computed.
type Pagination struct {
	Limit  int
	Offset int
}

// Stats holds the marketplace plugin counters.
type Stats struct {
	Products    int `json:"products"`
	Collections int `json:"collections"`
	Sellers     int `json:"sellers"`
	Categories  int `json:"categories"`
}

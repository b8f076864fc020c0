// Copyright (C) 2026 Feedbay Authors.
// See LICENSE for copying information.

package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/feedbay/feedbay/market"
	"github.com/feedbay/feedbay/trending"
)

func (server *Server) createSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var seller market.Seller
	if err := json.Unmarshal(body, &seller); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	id, err := server.market.CreateSeller(ctx, seller)
	if err != nil {
		sendError(w, "failed to create seller", err)
		return
	}

	created, err := server.market.GetSeller(ctx, id)
	if err != nil {
		sendError(w, "failed to load created seller", err)
		return
	}
	sendJSON(w, http.StatusCreated, created)
}

func (server *Server) getSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	seller, err := server.market.GetSeller(ctx, id)
	if err != nil {
		sendError(w, "failed to get seller", err)
		return
	}
	if seller == nil {
		sendJSONError(w, "seller does not exist", "", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, seller)
}

func (server *Server) listSellers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sellers, err := server.market.ListSellers(ctx, marketPagination(r))
	if err != nil {
		sendError(w, "failed to list sellers", err)
		return
	}
	sendJSON(w, http.StatusOK, sellers)
}

func (server *Server) deleteSeller(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := server.market.DeleteSeller(ctx, id); err != nil {
		sendError(w, "failed to delete seller", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var category market.Category
	if err := json.Unmarshal(body, &category); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	id, err := server.market.CreateCategory(ctx, category)
	if err != nil {
		sendError(w, "failed to create category", err)
		return
	}

	created, err := server.market.GetCategory(ctx, id)
	if err != nil {
		sendError(w, "failed to load created category", err)
		return
	}
	sendJSON(w, http.StatusCreated, created)
}

func (server *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	category, err := server.market.GetCategory(ctx, id)
	if err != nil {
		sendError(w, "failed to get category", err)
		return
	}
	if category == nil {
		sendJSONError(w, "category does not exist", "", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, category)
}

func (server *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := server.market.ListCategories(ctx)
	if err != nil {
		sendError(w, "failed to list categories", err)
		return
	}
	sendJSON(w, http.StatusOK, categories)
}

func (server *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := server.market.DeleteCategory(ctx, id); err != nil {
		sendError(w, "failed to delete category", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var product market.Product
	if err := json.Unmarshal(body, &product); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	id, err := server.market.CreateProduct(ctx, product)
	if err != nil {
		sendError(w, "failed to create product", err)
		return
	}

	created, err := server.market.GetProduct(ctx, id)
	if err != nil {
		sendError(w, "failed to load created product", err)
		return
	}
	sendJSON(w, http.StatusCreated, created)
}

func (server *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	product, err := server.market.GetProduct(ctx, id)
	if err != nil {
		sendError(w, "failed to get product", err)
		return
	}
	if product == nil {
		sendJSONError(w, "product does not exist", "", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, product)
}

func (server *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var fields market.UpdateProductFields
	if err := json.Unmarshal(body, &fields); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	if err := server.market.UpdateProduct(ctx, id, fields); err != nil {
		sendError(w, "failed to update product", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := server.market.DeleteProduct(ctx, id); err != nil {
		sendError(w, "failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filters := market.ProductFilters{
		SellerID:      query.Get("seller"),
		Category:      query.Get("category"),
		TitleContains: query.Get("title"),
	}
	if min := query.Get("minPrice"); min != "" {
		cents := int64(queryInt(min, 0))
		filters.MinPriceCents = &cents
	}
	if max := query.Get("maxPrice"); max != "" {
		cents := int64(queryInt(max, 0))
		filters.MaxPriceCents = &cents
	}

	products, err := server.market.ListProducts(ctx, filters, marketPagination(r))
	if err != nil {
		sendError(w, "failed to list products", err)
		return
	}
	sendJSON(w, http.StatusOK, products)
}

func (server *Server) recordProductView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	product, err := server.market.GetProduct(ctx, id)
	if err != nil {
		sendError(w, "failed to get product", err)
		return
	}
	if product == nil {
		sendJSONError(w, "product does not exist", "", http.StatusNotFound)
		return
	}

	// views count towards each collection the product belongs to
	collectionIDs, err := server.market.ProductCollections(ctx, id)
	if err != nil {
		sendError(w, "failed to resolve collections", err)
		return
	}
	if len(collectionIDs) == 0 {
		collectionIDs = []string{""}
	}
	for _, collectionID := range collectionIDs {
		if err := server.marketTrending.RecordView(ctx, product.ID, collectionID); err != nil {
			sendError(w, "failed to record view", err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) trendingProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	window, err := trending.ParseWindow(query.Get("window"))
	if err != nil {
		sendJSONError(w, "invalid window", err.Error(), http.StatusBadRequest)
		return
	}

	records, err := server.marketTrending.TopK(ctx,
		window, queryInt(query.Get("limit"), 10),
		query.Get("collection"), query.Get("category"))
	if err != nil {
		sendError(w, "failed to query trending products", err)
		return
	}
	sendJSON(w, http.StatusOK, records)
}

func (server *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var collection market.Collection
	if err := json.Unmarshal(body, &collection); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	id, err := server.market.CreateCollection(ctx, collection)
	if err != nil {
		sendError(w, "failed to create collection", err)
		return
	}

	created, err := server.market.GetCollection(ctx, id, false)
	if err != nil {
		sendError(w, "failed to load created collection", err)
		return
	}
	sendJSON(w, http.StatusCreated, created)
}

func (server *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]
	includeMembers := r.URL.Query().Get("members") == "true"

	collection, err := server.market.GetCollection(ctx, id, includeMembers)
	if err != nil {
		sendError(w, "failed to get collection", err)
		return
	}
	if collection == nil {
		sendJSONError(w, "collection does not exist", "", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, collection)
}

func (server *Server) updateCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var fields market.UpdateCollectionFields
	if err := json.Unmarshal(body, &fields); err != nil {
		sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
		return
	}

	if err := server.market.UpdateCollection(ctx, id, fields); err != nil {
		sendError(w, "failed to update collection", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := server.market.DeleteCollection(ctx, id); err != nil {
		sendError(w, "failed to delete collection", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filters := market.CollectionFilters{
		SellerID:      query.Get("seller"),
		TitleContains: query.Get("title"),
	}

	collections, err := server.market.ListCollections(ctx, filters, marketPagination(r))
	if err != nil {
		sendError(w, "failed to list collections", err)
		return
	}
	sendJSON(w, http.StatusOK, collections)
}

func (server *Server) addCollectionProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		sendJSONError(w, "failed to read body", err.Error(), http.StatusInternalServerError)
		return
	}

	var input struct {
		Position *int `json:"position"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			sendJSONError(w, "failed to unmarshal request", err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := server.market.AddMember(ctx, vars["id"], vars["product"], input.Position); err != nil {
		sendError(w, "failed to add collection product", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) removeCollectionProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	if err := server.market.RemoveMember(ctx, vars["id"], vars["product"]); err != nil {
		sendError(w, "failed to remove collection product", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (server *Server) marketStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := server.market.Stats(ctx)
	if err != nil {
		sendError(w, "failed to compute stats", err)
		return
	}
	sendJSON(w, http.StatusOK, stats)
}

func marketPagination(r *http.Request) market.Pagination {
	query := r.URL.Query()
	return market.Pagination{
		Limit:  queryInt(query.Get("limit"), 0),
		Offset: queryInt(query.Get("offset"), 0),
	}
}

package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
	"github.com/pribylovaa/go-campus-market/internal/models"
	"github.com/pribylovaa/go-campus-market/internal/stub/store"
)

// listingPayload — тело создания/полной замены объявления.
type listingPayload struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Price       int64                 `json:"price"`
	Condition   string                `json:"condition"`
	Images      []models.ListingImage `json:"images"`
	CategoryIDs []string              `json:"category_ids"`
}

func (p listingPayload) toInput() store.ListingInput {
	return store.ListingInput{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Condition:   p.Condition,
		Images:      p.Images,
		CategoryIDs: p.CategoryIDs,
	}
}

// listingPage собирает страницу ленты: lastTimestamp — recency-метка
// последнего элемента, на пустой странице пустая строка.
func listingPage(items []models.Listing) models.ListingPage {
	page := models.ListingPage{Items: items}
	if n := len(items); n > 0 {
		page.LastTimestamp = stampOf(items[n-1].UpdatedAt)
	}

	return page
}

func (h *Handlers) ListListings(w http.ResponseWriter, r *http.Request) {
	schema, err := schemaOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	after, limit, err := pageQuery(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items, err := h.Store.Listings(r.Context(), schema, after, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listingPage(items))
}

func (h *Handlers) ListSellerListings(w http.ResponseWriter, r *http.Request) {
	schema, err := schemaOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	sellerID := chi.URLParam(r, "id")
	if sellerID == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty seller id: %w", apierrors.ErrInvalidArgument))
		return
	}

	after, limit, err := pageQuery(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items, err := h.Store.SellerListings(r.Context(), schema, sellerID, after, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listingPage(items))
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	schema, err := schemaOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty id: %w", apierrors.ErrInvalidArgument))
		return
	}

	listing, err := h.Store.ListingByID(r.Context(), schema, id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	schema, err := schemaOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	caller, err := callerOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var payload listingPayload
	if err := decodeStrict(r, &payload); err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("decode body: %w", apierrors.ErrInvalidArgument))
		return
	}

	listing, err := h.Store.CreateListing(r.Context(), schema, caller, payload.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

func (h *Handlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	schema, err := schemaOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	caller, err := callerOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty id: %w", apierrors.ErrInvalidArgument))
		return
	}

	var payload listingPayload
	if err := decodeStrict(r, &payload); err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("decode body: %w", apierrors.ErrInvalidArgument))
		return
	}

	listing, err := h.Store.UpdateListing(r.Context(), schema, caller, id, payload.toInput())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *Handlers) DeleteListing(w http.ResponseWriter, r *http.Request) {
	schema, err := schemaOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	caller, err := callerOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty id: %w", apierrors.ErrInvalidArgument))
		return
	}

	if err := h.Store.DeleteListing(r.Context(), schema, caller, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

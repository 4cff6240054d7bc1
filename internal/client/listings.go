package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-campus-market/internal/models"
)

// Listings возвращает страницу общей ленты объявлений
// (GET /listings, порядок — по убыванию recency).
//
// Ошибки:
//   - ErrNetwork/ErrStatus/ErrDecode по классификации do();
//   - ErrDecode дополнительно при элементах без id.
func (c *Client) Listings(ctx context.Context, opts ListOptions) (*models.ListingPage, error) {
	const op = "client.Listings"

	var page models.ListingPage
	if err := c.do(ctx, http.MethodGet, "/listings", c.listQuery(opts), nil, &page); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateListings(page.Items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &page, nil
}

// SellerListings возвращает страницу объявлений конкретного продавца
// (GET /users/{id}/listings).
func (c *Client) SellerListings(ctx context.Context, sellerID string, opts ListOptions) (*models.ListingPage, error) {
	const op = "client.SellerListings"

	if sellerID == "" {
		return nil, fmt.Errorf("%s: empty seller id", op)
	}

	path := "/users/" + url.PathEscape(sellerID) + "/listings"

	var page models.ListingPage
	if err := c.do(ctx, http.MethodGet, path, c.listQuery(opts), nil, &page); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validateListings(page.Items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &page, nil
}

// ListingByID возвращает объявление по идентификатору (GET /listings/{id}).
func (c *Client) ListingByID(ctx context.Context, id string) (*models.Listing, error) {
	const op = "client.ListingByID"

	if id == "" {
		return nil, fmt.Errorf("%s: empty id", op)
	}

	var listing models.Listing
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), c.schemaQuery(), nil, &listing); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if listing.ID == "" {
		return nil, fmt.Errorf("%s: %w: listing without id", op, ErrDecode)
	}

	return &listing, nil
}

// CreateListingInput — параметры создания объявления.
// Продавцом становится текущий пользователь (X-User-Id).
type CreateListingInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Price       int64                 `json:"price"`
	Condition   string                `json:"condition"`
	Images      []models.ListingImage `json:"images"`
	CategoryIDs []string              `json:"category_ids"`
}

// CreateListing создаёт объявление (POST /listings) и возвращает его
// в серверном виде (с id и временными метками).
func (c *Client) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	const op = "client.CreateListing"

	var listing models.Listing
	if err := c.do(ctx, http.MethodPost, "/listings", c.schemaQuery(), in, &listing); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if listing.ID == "" {
		return nil, fmt.Errorf("%s: %w: listing without id", op, ErrDecode)
	}

	return &listing, nil
}

// UpdateListing заменяет редактируемые поля объявления (PUT /listings/{id}).
// Семантика — полная замена: бекенд перезапишет title/description/price/
// condition/images/category_ids и обновит recency-метку.
func (c *Client) UpdateListing(ctx context.Context, id string, in CreateListingInput) (*models.Listing, error) {
	const op = "client.UpdateListing"

	if id == "" {
		return nil, fmt.Errorf("%s: empty id", op)
	}

	var listing models.Listing
	if err := c.do(ctx, http.MethodPut, "/listings/"+url.PathEscape(id), c.schemaQuery(), in, &listing); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if listing.ID == "" {
		return nil, fmt.Errorf("%s: %w: listing without id", op, ErrDecode)
	}

	return &listing, nil
}

// DeleteListing удаляет объявление (DELETE /listings/{id}).
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	const op = "client.DeleteListing"

	if id == "" {
		return fmt.Errorf("%s: empty id", op)
	}

	if err := c.do(ctx, http.MethodDelete, "/listings/"+url.PathEscape(id), c.schemaQuery(), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// schemaQuery — query только со схемой (несписочные запросы).
func (c *Client) schemaQuery() url.Values {
	q := url.Values{}
	q.Set("schema", c.schema)
	return q
}

// validateListings — обязательные поля страницы: у каждого элемента есть id.
func validateListings(items []models.Listing) error {
	for i, l := range items {
		if l.ID == "" {
			return fmt.Errorf("%w: item %d without id", ErrDecode, i)
		}
	}

	return nil
}

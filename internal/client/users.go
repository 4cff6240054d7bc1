package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-campus-market/internal/models"
)

// Profile возвращает публичный профиль пользователя (GET /users/{id}).
// Используется экраном продавца вместе с его лентой объявлений.
func (c *Client) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "client.Profile"

	if userID == "" {
		return nil, fmt.Errorf("%s: empty user id", op)
	}

	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), c.schemaQuery(), nil, &profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if profile.UserID == "" {
		return nil, fmt.Errorf("%s: %w: profile without user_id", op, ErrDecode)
	}

	return &profile, nil
}

package store

import (
	"context"
	"fmt"

	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
	"github.com/pribylovaa/go-campus-market/internal/models"
)

// Profile возвращает публичный профиль пользователя.
// Если профиль не заведён — ErrNotFound.
func (s *Store) Profile(ctx context.Context, schema, userID string) (models.Profile, error) {
	const op = "store.Profile"

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.schema(schema)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}

	p, ok := d.profiles[userID]
	if !ok {
		return models.Profile{}, fmt.Errorf("%s: user %q: %w", op, userID, apierrors.ErrNotFound)
	}

	return *p, nil
}

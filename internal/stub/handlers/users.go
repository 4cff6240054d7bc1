package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
)

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	schema, err := schemaOf(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty user id: %w", apierrors.ErrInvalidArgument))
		return
	}

	profile, err := h.Store.Profile(r.Context(), schema, id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

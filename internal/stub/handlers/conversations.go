package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
	"github.com/pribylovaa/go-campus-market/internal/models"
)

func conversationPage(items []models.Conversation) models.ConversationPage {
	page := models.ConversationPage{Items: items}
	if n := len(items); n > 0 {
		page.LastTimestamp = stampOf(items[n-1].LastMessageAt)
	}

	return page
}

func messagePage(items []models.Message) models.MessagePage {
	page := models.MessagePage{Items: items}
	if n := len(items); n > 0 {
		page.LastTimestamp = stampOf(items[n-1].CreatedAt)
	}

	return page
}

func (h *Handlers) ListConversations(w http.ResponseWriter, r *http.Request) {
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

	after, limit, err := pageQuery(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items, err := h.Store.Conversations(r.Context(), schema, caller, after, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, conversationPage(items))
}

func (h *Handlers) StartConversation(w http.ResponseWriter, r *http.Request) {
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

	var payload struct {
		ListingID string `json:"listing_id"`
	}
	if err := decodeStrict(r, &payload); err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("decode body: %w", apierrors.ErrInvalidArgument))
		return
	}
	if payload.ListingID == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty listing_id: %w", apierrors.ErrInvalidArgument))
		return
	}

	conv, err := h.Store.StartConversation(r.Context(), schema, caller, payload.ListingID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
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

	convID := chi.URLParam(r, "id")
	if convID == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty conversation id: %w", apierrors.ErrInvalidArgument))
		return
	}

	after, limit, err := pageQuery(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items, err := h.Store.Messages(r.Context(), schema, caller, convID, after, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messagePage(items))
}

func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
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

	convID := chi.URLParam(r, "id")
	if convID == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty conversation id: %w", apierrors.ErrInvalidArgument))
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := decodeStrict(r, &payload); err != nil {
		apierrors.WriteError(w, r, fmt.Errorf("decode body: %w", apierrors.ErrInvalidArgument))
		return
	}

	msg, err := h.Store.SendMessage(r.Context(), schema, caller, convID, payload.Text)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	convID := chi.URLParam(r, "id")
	if convID == "" {
		apierrors.WriteError(w, r, fmt.Errorf("empty conversation id: %w", apierrors.ErrInvalidArgument))
		return
	}

	if err := h.Store.MarkRead(r.Context(), schema, caller, convID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

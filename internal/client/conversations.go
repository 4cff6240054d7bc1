package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-campus-market/internal/models"
)

// Conversations возвращает страницу бесед текущего пользователя
// (GET /conversations, порядок — по убыванию последней активности).
// Поля peer_* и unread_count бекенд считает относительно X-User-Id.
func (c *Client) Conversations(ctx context.Context, opts ListOptions) (*models.ConversationPage, error) {
	const op = "client.Conversations"

	var page models.ConversationPage
	if err := c.do(ctx, http.MethodGet, "/conversations", c.listQuery(opts), nil, &page); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, conv := range page.Items {
		if conv.ID == "" {
			return nil, fmt.Errorf("%s: %w: item %d without id", op, ErrDecode, i)
		}
	}

	return &page, nil
}

// StartConversation возвращает беседу текущего пользователя с продавцом
// объявления (POST /conversations): существующую или только что созданную.
func (c *Client) StartConversation(ctx context.Context, listingID string) (*models.Conversation, error) {
	const op = "client.StartConversation"

	if listingID == "" {
		return nil, fmt.Errorf("%s: empty listing id", op)
	}

	body := struct {
		ListingID string `json:"listing_id"`
	}{ListingID: listingID}

	var conv models.Conversation
	if err := c.do(ctx, http.MethodPost, "/conversations", c.schemaQuery(), body, &conv); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if conv.ID == "" {
		return nil, fmt.Errorf("%s: %w: conversation without id", op, ErrDecode)
	}

	return &conv, nil
}

// Messages возвращает страницу истории беседы
// (GET /conversations/{id}/messages, новые раньше старых).
func (c *Client) Messages(ctx context.Context, conversationID string, opts ListOptions) (*models.MessagePage, error) {
	const op = "client.Messages"

	if conversationID == "" {
		return nil, fmt.Errorf("%s: empty conversation id", op)
	}

	path := "/conversations/" + url.PathEscape(conversationID) + "/messages"

	var page models.MessagePage
	if err := c.do(ctx, http.MethodGet, path, c.listQuery(opts), nil, &page); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, msg := range page.Items {
		if msg.ID == "" {
			return nil, fmt.Errorf("%s: %w: item %d without id", op, ErrDecode, i)
		}
	}

	return &page, nil
}

// SendMessage отправляет сообщение в беседу
// (POST /conversations/{id}/messages) и возвращает его в серверном виде.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (*models.Message, error) {
	const op = "client.SendMessage"

	if conversationID == "" {
		return nil, fmt.Errorf("%s: empty conversation id", op)
	}

	body := struct {
		Text string `json:"text"`
	}{Text: text}

	path := "/conversations/" + url.PathEscape(conversationID) + "/messages"

	var msg models.Message
	if err := c.do(ctx, http.MethodPost, path, c.schemaQuery(), body, &msg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if msg.ID == "" {
		return nil, fmt.Errorf("%s: %w: message without id", op, ErrDecode)
	}

	return &msg, nil
}

// MarkRead обнуляет счётчик непрочитанных текущего пользователя в беседе
// (POST /conversations/{id}/read).
func (c *Client) MarkRead(ctx context.Context, conversationID string) error {
	const op = "client.MarkRead"

	if conversationID == "" {
		return fmt.Errorf("%s: empty conversation id", op)
	}

	path := "/conversations/" + url.PathEscape(conversationID) + "/read"

	if err := c.do(ctx, http.MethodPost, path, c.schemaQuery(), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

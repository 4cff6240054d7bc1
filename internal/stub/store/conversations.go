package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
	"github.com/pribylovaa/go-campus-market/internal/models"

	"github.com/google/uuid"
)

// conversation — внутреннее представление беседы.
// Снапшот объявления (title/thumb) фиксируется в момент создания и дальше
// живёт своей жизнью: правка и удаление объявления его не трогают.
// Поля peer_* и unread_count наружу не хранятся — они зависят от зрителя
// и считаются в view().
type conversation struct {
	id           string
	listingID    string
	listingTitle string
	listingThumb string

	buyerID  string
	sellerID string

	lastText string
	lastAt   time.Time

	// непрочитанные по каждому участнику.
	unread map[string]int
}

// view собирает wire-представление беседы глазами viewerID.
// Имя и аватар собеседника берутся из профиля; без профиля именем
// служит идентификатор.
func (c *conversation) view(d *schemaData, viewerID string) models.Conversation {
	peerID := c.sellerID
	if viewerID == c.sellerID {
		peerID = c.buyerID
	}

	peerName := peerID
	peerAvatar := ""
	if p, ok := d.profiles[peerID]; ok {
		peerName = p.Username
		peerAvatar = p.AvatarURL
	}

	return models.Conversation{
		ID:                  c.id,
		ListingID:           c.listingID,
		ListingTitle:        c.listingTitle,
		ListingThumbnailURL: c.listingThumb,
		PeerID:              peerID,
		PeerName:            peerName,
		PeerAvatarURL:       peerAvatar,
		LastMessageText:     c.lastText,
		LastMessageAt:       c.lastAt,
		UnreadCount:         c.unread[viewerID],
	}
}

func (c *conversation) hasParticipant(userID string) bool {
	return userID == c.buyerID || userID == c.sellerID
}

func pairKey(buyerID, listingID string) string {
	return buyerID + "|" + listingID
}

// Conversations возвращает страницу бесед пользователя, от недавних к старым.
// Сортировка фиксирована: last_message_at DESC, id DESC.
func (s *Store) Conversations(ctx context.Context, schema, userID string, after time.Time, limit int) ([]models.Conversation, error) {
	const op = "store.Conversations"

	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.schema(schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mine := make([]*conversation, 0, len(d.convs))
	for _, c := range d.convs {
		if c.hasParticipant(userID) {
			mine = append(mine, c)
		}
	}

	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].lastAt.Equal(mine[j].lastAt) {
			return mine[i].lastAt.After(mine[j].lastAt)
		}
		return mine[i].id > mine[j].id
	})

	out := make([]models.Conversation, 0, limit)
	for _, c := range mine {
		if !after.IsZero() && !c.lastAt.Before(after) {
			continue
		}

		out = append(out, c.view(d, userID))
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// StartConversation возвращает беседу покупателя по объявлению,
// создавая её при первом обращении (get-or-create).
//
// Ошибки:
//   - ErrNotFound — нет такого объявления;
//   - ErrConflict — попытка завести беседу по собственному объявлению.
func (s *Store) StartConversation(ctx context.Context, schema, userID, listingID string) (models.Conversation, error) {
	const op = "store.StartConversation"

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.schema(schema)
	if err != nil {
		return models.Conversation{}, fmt.Errorf("%s: %w", op, err)
	}

	l, ok := d.listings[listingID]
	if !ok {
		return models.Conversation{}, fmt.Errorf("%s: listing %q: %w", op, listingID, apierrors.ErrNotFound)
	}
	if l.SellerID == userID {
		return models.Conversation{}, fmt.Errorf("%s: own listing %q: %w", op, listingID, apierrors.ErrConflict)
	}

	if c, ok := d.convByPair[pairKey(userID, listingID)]; ok {
		return c.view(d, userID), nil
	}

	card := models.CardFromListing(cloneListing(l))
	c := &conversation{
		id:           uuid.NewString(),
		listingID:    l.ID,
		listingTitle: l.Title,
		listingThumb: card.ThumbnailURL,
		buyerID:      userID,
		sellerID:     l.SellerID,
		lastAt:       s.stamp(),
		unread:       make(map[string]int),
	}
	d.convs = append(d.convs, c)
	d.convByPair[pairKey(userID, listingID)] = c

	return c.view(d, userID), nil
}

// conversationFor находит беседу и проверяет участие.
// Для не-участника беседы не существует: ErrNotFound, не 403.
func (d *schemaData) conversationFor(userID, convID string) (*conversation, error) {
	for _, c := range d.convs {
		if c.id != convID {
			continue
		}
		if !c.hasParticipant(userID) {
			return nil, fmt.Errorf("conversation %q: %w", convID, apierrors.ErrNotFound)
		}
		return c, nil
	}

	return nil, fmt.Errorf("conversation %q: %w", convID, apierrors.ErrNotFound)
}

// Messages возвращает страницу сообщений беседы, новые раньше старых.
// Сортировка фиксирована: created_at DESC, id DESC.
func (s *Store) Messages(ctx context.Context, schema, userID, convID string, after time.Time, limit int) ([]models.Message, error) {
	const op = "store.Messages"

	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.schema(schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := d.conversationFor(userID, convID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	all := d.messages[convID]
	sorted := make([]models.Message, len(all))
	copy(sorted, all)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})

	out := make([]models.Message, 0, limit)
	for _, m := range sorted {
		if !after.IsZero() && !m.CreatedAt.Before(after) {
			continue
		}

		out = append(out, m)
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// SendMessage добавляет сообщение в беседу от имени userID.
// Беседа поднимается в ленте, счётчик непрочитанных собеседника растёт.
func (s *Store) SendMessage(ctx context.Context, schema, userID, convID, text string) (models.Message, error) {
	const op = "store.SendMessage"

	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return models.Message{}, fmt.Errorf("%s: empty text: %w", op, apierrors.ErrInvalidArgument)
	case utf8.RuneCountInString(text) > maxMessageLen:
		return models.Message{}, fmt.Errorf("%s: text too long: %w", op, apierrors.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.schema(schema)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	c, err := d.conversationFor(userID, convID)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	m := models.Message{
		ID:             uuid.NewString(),
		ConversationID: convID,
		SenderID:       userID,
		Text:           text,
		CreatedAt:      s.stamp(),
	}
	d.messages[convID] = append(d.messages[convID], m)

	c.lastText = text
	c.lastAt = m.CreatedAt

	peerID := c.sellerID
	if userID == c.sellerID {
		peerID = c.buyerID
	}
	c.unread[peerID]++

	return m, nil
}

// MarkRead обнуляет счётчик непрочитанных вызывающего.
// Счётчик собеседника не трогает.
func (s *Store) MarkRead(ctx context.Context, schema, userID, convID string) error {
	const op = "store.MarkRead"

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.schema(schema)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c, err := d.conversationFor(userID, convID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.unread[userID] = 0

	return nil
}

package store

import (
	"context"
	"strings"
	"testing"
	"time"

	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
	"github.com/pribylovaa/go-campus-market/internal/models"

	"github.com/stretchr/testify/require"
)

func convIDs(items []models.Conversation) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}

func messageIDs(items []models.Message) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.ID)
	}
	return out
}

// Одна и та же беседа выглядит по-разному для покупателя и продавца:
// peer-поля и unread_count считаются относительно зрителя.
func TestConversations_ViewerRelative(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	masha, err := s.Conversations(ctx, testSchema, "u-masha", time.Time{}, 12)
	require.NoError(t, err)
	require.Equal(t, []string{"c-003", "c-002", "c-001"}, convIDs(masha))

	require.Equal(t, "u-artem", masha[0].PeerID)
	require.Equal(t, "artem", masha[0].PeerName)
	require.Equal(t, 0, masha[0].UnreadCount)
	require.Equal(t, "Отлично, до встречи!", masha[0].LastMessageText)
	require.Equal(t, "Ноутбук Lenovo ThinkPad X230", masha[0].ListingTitle)
	// Обложка — изображение с наименьшей позицией, а не первое в массиве.
	require.Equal(t, "https://img.campus.local/l-03/0.jpg", masha[0].ListingThumbnailURL)

	// c-001: последнее слово за artem, непрочитанное у masha.
	require.Equal(t, 1, masha[2].UnreadCount)

	artem, err := s.Conversations(ctx, testSchema, "u-artem", time.Time{}, 12)
	require.NoError(t, err)
	require.Equal(t, []string{"c-003", "c-002", "c-001"}, convIDs(artem))
	require.Equal(t, "u-masha", artem[0].PeerID)
	require.Equal(t, "masha", artem[0].PeerName)
	require.Equal(t, 1, artem[0].UnreadCount)
	require.Equal(t, 0, artem[2].UnreadCount)
}

func TestConversations_Pagination(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	first, err := s.Conversations(ctx, testSchema, "u-masha", time.Time{}, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c-003", "c-002"}, convIDs(first))

	second, err := s.Conversations(ctx, testSchema, "u-masha", first[1].LastMessageAt, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c-001"}, convIDs(second))
}

func TestConversations_StrangerSeesNothing(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)

	page, err := s.Conversations(context.Background(), testSchema, "u-stranger", time.Time{}, 12)
	require.NoError(t, err)
	require.Empty(t, page)
}

func TestStartConversation_GetOrCreate(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	// Повторное обращение по той же паре отдаёт существующую беседу.
	existing, err := s.StartConversation(ctx, testSchema, "u-masha", "l-07")
	require.NoError(t, err)
	require.Equal(t, "c-001", existing.ID)

	created, err := s.StartConversation(ctx, testSchema, "u-masha", "l-01")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "u-artem", created.PeerID)
	require.Equal(t, "Велосипед Stels Navigator", created.ListingTitle)
	require.Equal(t, "https://img.campus.local/l-01/0.jpg", created.ListingThumbnailURL)
	require.Empty(t, created.LastMessageText)

	// Свежая беседа наверху ленты.
	page, err := s.Conversations(ctx, testSchema, "u-masha", time.Time{}, 12)
	require.NoError(t, err)
	require.Equal(t, created.ID, page[0].ID)

	again, err := s.StartConversation(ctx, testSchema, "u-masha", "l-01")
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
}

func TestStartConversation_Errors(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	_, err := s.StartConversation(ctx, testSchema, "u-artem", "l-01")
	require.ErrorIs(t, err, apierrors.ErrConflict)

	_, err = s.StartConversation(ctx, testSchema, "u-masha", "l-404")
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}

// Снапшот объявления в беседе переживает удаление объявления.
func TestConversation_SnapshotSurvivesDeletion(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	require.NoError(t, s.DeleteListing(ctx, testSchema, "u-artem", "l-03"))

	page, err := s.Conversations(ctx, testSchema, "u-masha", time.Time{}, 12)
	require.NoError(t, err)
	require.Equal(t, "c-003", page[0].ID)
	require.Equal(t, "Ноутбук Lenovo ThinkPad X230", page[0].ListingTitle)
	require.Equal(t, "https://img.campus.local/l-03/0.jpg", page[0].ListingThumbnailURL)
}

// История c-003 из семи сообщений, страницы по три: 3+3+1.
func TestMessages_NewestFirst_Pagination(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	first, err := s.Messages(ctx, testSchema, "u-masha", "c-003", time.Time{}, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"m-c3-07", "m-c3-06", "m-c3-05"}, messageIDs(first))

	second, err := s.Messages(ctx, testSchema, "u-masha", "c-003", first[2].CreatedAt, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"m-c3-04", "m-c3-03", "m-c3-02"}, messageIDs(second))

	third, err := s.Messages(ctx, testSchema, "u-masha", "c-003", second[2].CreatedAt, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"m-c3-01"}, messageIDs(third))

	fourth, err := s.Messages(ctx, testSchema, "u-masha", "c-003", third[0].CreatedAt, 3)
	require.NoError(t, err)
	require.Empty(t, fourth)
}

// Для не-участника беседы не существует.
func TestMessages_NonParticipant_NotFound(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	_, err := s.Messages(ctx, testSchema, "u-stranger", "c-003", time.Time{}, 12)
	require.ErrorIs(t, err, apierrors.ErrNotFound)

	_, err = s.Messages(ctx, testSchema, "u-masha", "c-404", time.Time{}, 12)
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestSendMessage_BumpsConversationAndUnread(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	msg, err := s.SendMessage(ctx, testSchema, "u-artem", "c-001", "Видео отправил в личку.")
	require.NoError(t, err)
	require.Equal(t, "u-artem", msg.SenderID)
	require.Equal(t, "c-001", msg.ConversationID)

	// Беседа поднялась наверх, последнее сообщение обновилось.
	masha, err := s.Conversations(ctx, testSchema, "u-masha", time.Time{}, 12)
	require.NoError(t, err)
	require.Equal(t, "c-001", masha[0].ID)
	require.Equal(t, "Видео отправил в личку.", masha[0].LastMessageText)
	require.Equal(t, msg.CreatedAt, masha[0].LastMessageAt)

	// Непрочитанные получателя выросли, у отправителя не изменились.
	require.Equal(t, 2, masha[0].UnreadCount)

	artem, err := s.Conversations(ctx, testSchema, "u-artem", time.Time{}, 12)
	require.NoError(t, err)
	require.Equal(t, "c-001", artem[0].ID)
	require.Equal(t, 0, artem[0].UnreadCount)
}

func TestSendMessage_Validation(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	_, err := s.SendMessage(ctx, testSchema, "u-masha", "c-003", "   ")
	require.ErrorIs(t, err, apierrors.ErrInvalidArgument)

	_, err = s.SendMessage(ctx, testSchema, "u-masha", "c-003", strings.Repeat("ж", maxMessageLen+1))
	require.ErrorIs(t, err, apierrors.ErrInvalidArgument)

	_, err = s.SendMessage(ctx, testSchema, "u-stranger", "c-003", "привет")
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestMarkRead_ZeroesCallerCounterOnly(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	require.NoError(t, s.MarkRead(ctx, testSchema, "u-masha", "c-001"))

	masha, err := s.Conversations(ctx, testSchema, "u-masha", time.Time{}, 12)
	require.NoError(t, err)
	for _, c := range masha {
		if c.ID == "c-001" {
			require.Equal(t, 0, c.UnreadCount)
		}
	}

	// Счётчик artem в c-003 не тронут.
	artem, err := s.Conversations(ctx, testSchema, "u-artem", time.Time{}, 12)
	require.NoError(t, err)
	require.Equal(t, "c-003", artem[0].ID)
	require.Equal(t, 1, artem[0].UnreadCount)

	require.ErrorIs(t, s.MarkRead(ctx, testSchema, "u-stranger", "c-001"), apierrors.ErrNotFound)
}

func TestProfile(t *testing.T) {
	t.Parallel()

	s := newSeeded(t)
	ctx := context.Background()

	p, err := s.Profile(ctx, testSchema, "u-masha")
	require.NoError(t, err)
	require.Equal(t, "masha", p.Username)
	require.NotEmpty(t, p.AvatarURL)

	_, err = s.Profile(ctx, testSchema, "u-ghost")
	require.ErrorIs(t, err, apierrors.ErrNotFound)

	_, err = s.Profile(ctx, "campus_other", "u-masha")
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}

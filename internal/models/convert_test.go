package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCardFromListing_ThumbnailIsSmallestPosition(t *testing.T) {
	t.Parallel()

	// Обложка выбирается по Position, а не по порядку массива.
	l := Listing{
		ID: "l-1",
		Images: []ListingImage{
			{Position: 2, URL: "https://img.example/b.jpg"},
			{Position: 0, URL: "https://img.example/a.jpg"},
		},
	}

	card := CardFromListing(l)
	require.Equal(t, "https://img.example/a.jpg", card.ThumbnailURL)
}

func TestCardFromListing_NoImages_EmptyThumbnail(t *testing.T) {
	t.Parallel()

	card := CardFromListing(Listing{ID: "l-2"})
	require.Equal(t, "", card.ThumbnailURL)
	require.Empty(t, card.Images)
}

func TestCardFromListing_EqualPositions_EarlierElementWins(t *testing.T) {
	t.Parallel()

	l := Listing{
		ID: "l-3",
		Images: []ListingImage{
			{Position: 1, URL: "https://img.example/first.jpg"},
			{Position: 1, URL: "https://img.example/second.jpg"},
			{Position: 0, URL: "https://img.example/cover.jpg"},
		},
	}

	card := CardFromListing(l)
	require.Equal(t, "https://img.example/cover.jpg", card.ThumbnailURL)

	// Стабильная сортировка: относительный порядок равных Position сохранён.
	require.Equal(t, []ListingImage{
		{Position: 0, URL: "https://img.example/cover.jpg"},
		{Position: 1, URL: "https://img.example/first.jpg"},
		{Position: 1, URL: "https://img.example/second.jpg"},
	}, card.Images)
}

func TestCardFromListing_DoesNotMutateSource(t *testing.T) {
	t.Parallel()

	images := []ListingImage{
		{Position: 5, URL: "https://img.example/late.jpg"},
		{Position: 1, URL: "https://img.example/early.jpg"},
	}
	l := Listing{ID: "l-4", Images: images}

	_ = CardFromListing(l)

	require.Equal(t, []ListingImage{
		{Position: 5, URL: "https://img.example/late.jpg"},
		{Position: 1, URL: "https://img.example/early.jpg"},
	}, images)
}

func TestCardFromListing_CopiesScalarFields(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)

	l := Listing{
		ID:          "l-5",
		Title:       "Велосипед Stels",
		Description: "Почти новый, забирать в кампусе",
		Price:       550000,
		Condition:   "good",
		SellerID:    "u-masha",
		CategoryIDs: []string{"c-sport", "c-transport"},
		CreatedAt:   created,
		UpdatedAt:   updated,
	}

	card := CardFromListing(l)

	require.Equal(t, "l-5", card.Key())
	require.Equal(t, l.Title, card.Title)
	require.Equal(t, l.Description, card.Description)
	require.Equal(t, l.Price, card.Price)
	require.Equal(t, l.Condition, card.Condition)
	require.Equal(t, l.SellerID, card.SellerID)
	require.Equal(t, l.CategoryIDs, card.CategoryIDs)
	require.Equal(t, created, card.CreatedAt)
	require.Equal(t, updated, card.UpdatedAt)
}

func TestCardsFromListings_PreservesOrder(t *testing.T) {
	t.Parallel()

	items := []Listing{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	cards := CardsFromListings(items)
	require.Len(t, cards, 3)
	require.Equal(t, "a", cards[0].ID)
	require.Equal(t, "b", cards[1].ID)
	require.Equal(t, "c", cards[2].ID)
}

func TestCardsFromListings_Nil(t *testing.T) {
	t.Parallel()

	require.Nil(t, CardsFromListings(nil))
	require.Empty(t, CardsFromListings([]Listing{}))
}

func TestEntityKeys(t *testing.T) {
	t.Parallel()

	require.Equal(t, "conv-1", Conversation{ID: "conv-1"}.Key())
	require.Equal(t, "msg-1", Message{ID: "msg-1"}.Key())
}

package models

import (
	"sort"
	"time"
)

// ListingCard — display-модель объявления для списков и карточки.
// Это Listing, обогащённый обложкой; Images хранятся уже отсортированными
// по возрастанию Position.
type ListingCard struct {
	ID           string
	Title        string
	Description  string
	Price        int64
	Condition    string
	ThumbnailURL string
	Images       []ListingImage
	SellerID     string
	CategoryIDs  []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key — устойчивый ключ для дедупликации в лентах.
func (c ListingCard) Key() string { return c.ID }

// CardFromListing строит display-модель объявления.
//
// Правила обогащения:
//   - ThumbnailURL — url изображения с наименьшим Position; при равных
//     Position выигрывает более ранний элемент массива (сортировка стабильная);
//   - у объявления без изображений ThumbnailURL == "";
//   - исходный Listing не модифицируется, Images копируются.
func CardFromListing(l Listing) ListingCard {
	images := sortedImages(l.Images)

	thumbnail := ""
	if len(images) > 0 {
		thumbnail = images[0].URL
	}

	return ListingCard{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		Condition:    l.Condition,
		ThumbnailURL: thumbnail,
		Images:       images,
		SellerID:     l.SellerID,
		CategoryIDs:  l.CategoryIDs,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// CardsFromListings конвертирует страницу объявлений с сохранением порядка.
// nil на входе — nil на выходе.
func CardsFromListings(items []Listing) []ListingCard {
	if items == nil {
		return nil
	}

	out := make([]ListingCard, 0, len(items))
	for _, l := range items {
		out = append(out, CardFromListing(l))
	}

	return out
}

// sortedImages — копия изображений, отсортированная по возрастанию Position.
func sortedImages(images []ListingImage) []ListingImage {
	if len(images) == 0 {
		return nil
	}

	out := make([]ListingImage, len(images))
	copy(out, images)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})

	return out
}

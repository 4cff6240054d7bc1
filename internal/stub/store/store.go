// store — in-memory хранилище стаба campus-market.
//
// Хранилище мультитенантное: данные лежат по схемам кампусов, обращение
// к неизвестной схеме — ErrNotFound. Все публичные методы потокобезопасны,
// наружу отдаются только копии, внутренние структуры не утекают.
//
// Пагинация везде курсорная: сортировка фиксирована (recency-метка DESC,
// id DESC), страница начинается строго после курсорной метки, курсор
// следующей страницы — метка последнего элемента. Recency-метки выдаёт
// stamp() и они строго монотонны, поэтому строгий фильтр «старше курсора»
// однозначен даже при одинаковых показаниях часов.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
	"github.com/pribylovaa/go-campus-market/internal/models"

	"github.com/google/uuid"
)

// Пределы полей; превышение — ErrInvalidArgument.
const (
	maxTitleLen       = 140
	maxDescriptionLen = 4000
	maxMessageLen     = 2000
	maxImages         = 10
)

// Store — корень хранилища. Нулевое значение непригодно, создавать через New.
type Store struct {
	mu      sync.RWMutex
	schemas map[string]*schemaData

	now  func() time.Time
	last time.Time
}

// schemaData — данные одной схемы кампуса.
type schemaData struct {
	listings map[string]*models.Listing
	profiles map[string]*models.Profile

	convs []*conversation
	// ключ buyerID|listingID — для get-or-create в StartConversation.
	convByPair map[string]*conversation

	// сообщения по беседе, в порядке добавления (от старых к новым).
	messages map[string][]models.Message
}

// Options — зависимости хранилища.
type Options struct {
	// Now — источник времени; по умолчанию time.Now.
	Now func() time.Time
}

func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Store{
		schemas: make(map[string]*schemaData),
		now:     now,
	}
}

// AddSchema регистрирует пустую схему кампуса. Повторная регистрация — no-op.
func (s *Store) AddSchema(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureSchema(name)
}

func (s *Store) ensureSchema(name string) *schemaData {
	d, ok := s.schemas[name]
	if !ok {
		d = &schemaData{
			listings:   make(map[string]*models.Listing),
			profiles:   make(map[string]*models.Profile),
			convByPair: make(map[string]*conversation),
			messages:   make(map[string][]models.Message),
		}
		s.schemas[name] = d
	}

	return d
}

// schema возвращает данные схемы; неизвестное имя трактуется как «нет такой».
func (s *Store) schema(name string) (*schemaData, error) {
	d, ok := s.schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %q: %w", name, apierrors.ErrNotFound)
	}

	return d, nil
}

// stamp выдаёт очередную recency-метку в UTC.
// Метки строго возрастают: две записи никогда не делят метку.
// Вызывать только под s.mu.
func (s *Store) stamp() time.Time {
	t := s.now().UTC()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t

	return t
}

// clampLimit повторяет защиту от нуля/отрицательного значения на нижнем слое;
// основную нормализацию лимита делает HTTP-слой.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 1
	}

	return limit
}

func cloneListing(l *models.Listing) models.Listing {
	out := *l
	out.Images = append([]models.ListingImage(nil), l.Images...)
	out.CategoryIDs = append([]string(nil), l.CategoryIDs...)

	return out
}

// sortedListings возвращает объявления схемы в порядке ленты:
// updated_at DESC, id DESC.
func sortedListings(d *schemaData) []*models.Listing {
	out := make([]*models.Listing, 0, len(d.listings))
	for _, l := range d.listings {
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out
}

// Listings возвращает страницу ленты объявлений.
// after — курсорная метка (нулевое время: с начала ленты).
func (s *Store) Listings(ctx context.Context, schema string, after time.Time, limit int) ([]models.Listing, error) {
	const op = "store.Listings"

	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.schema(schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Listing, 0, limit)
	for _, l := range sortedListings(d) {
		if !after.IsZero() && !l.UpdatedAt.Before(after) {
			continue
		}

		out = append(out, cloneListing(l))
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// SellerListings возвращает страницу объявлений одного продавца.
// Для неизвестного продавца отдаёт пустую страницу, а не 404:
// лента продавца без объявлений выглядит так же.
func (s *Store) SellerListings(ctx context.Context, schema, sellerID string, after time.Time, limit int) ([]models.Listing, error) {
	const op = "store.SellerListings"

	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.schema(schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Listing, 0, limit)
	for _, l := range sortedListings(d) {
		if l.SellerID != sellerID {
			continue
		}
		if !after.IsZero() && !l.UpdatedAt.Before(after) {
			continue
		}

		out = append(out, cloneListing(l))
		if len(out) == limit {
			break
		}
	}

	return out, nil
}

// ListingByID возвращает объявление по идентификатору.
// Если запись не найдена — ErrNotFound.
func (s *Store) ListingByID(ctx context.Context, schema, id string) (models.Listing, error) {
	const op = "store.ListingByID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.schema(schema)
	if err != nil {
		return models.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	l, ok := d.listings[id]
	if !ok {
		return models.Listing{}, fmt.Errorf("%s: listing %q: %w", op, id, apierrors.ErrNotFound)
	}

	return cloneListing(l), nil
}

// ListingInput — изменяемые поля объявления (создание и полная замена).
type ListingInput struct {
	Title       string
	Description string
	Price       int64
	Condition   string
	Images      []models.ListingImage
	CategoryIDs []string
}

// validate нормализует и проверяет входные поля.
//
// Правила:
//   - Title — обязателен (после trim), не длиннее maxTitleLen;
//   - Description — не длиннее maxDescriptionLen;
//   - Price — в минорных единицах, не отрицательная;
//   - Condition — одно из models.ConditionNew/ConditionUsed;
//   - Images — не больше maxImages, каждый URL непуст.
func (in *ListingInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Title == "":
		return fmt.Errorf("empty title: %w", apierrors.ErrInvalidArgument)
	case utf8.RuneCountInString(in.Title) > maxTitleLen:
		return fmt.Errorf("title too long: %w", apierrors.ErrInvalidArgument)
	case utf8.RuneCountInString(in.Description) > maxDescriptionLen:
		return fmt.Errorf("description too long: %w", apierrors.ErrInvalidArgument)
	case in.Price < 0:
		return fmt.Errorf("negative price: %w", apierrors.ErrInvalidArgument)
	case in.Condition != models.ConditionNew && in.Condition != models.ConditionUsed:
		return fmt.Errorf("unknown condition %q: %w", in.Condition, apierrors.ErrInvalidArgument)
	case len(in.Images) > maxImages:
		return fmt.Errorf("too many images: %w", apierrors.ErrInvalidArgument)
	}

	for _, img := range in.Images {
		if strings.TrimSpace(img.URL) == "" {
			return fmt.Errorf("image without url: %w", apierrors.ErrInvalidArgument)
		}
	}

	return nil
}

// CreateListing создаёт объявление от имени sellerID.
func (s *Store) CreateListing(ctx context.Context, schema, sellerID string, in ListingInput) (models.Listing, error) {
	const op = "store.CreateListing"

	if err := in.validate(); err != nil {
		return models.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.schema(schema)
	if err != nil {
		return models.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.stamp()
	l := &models.Listing{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Condition:   in.Condition,
		Images:      append([]models.ListingImage(nil), in.Images...),
		SellerID:    sellerID,
		CategoryIDs: append([]string(nil), in.CategoryIDs...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.listings[l.ID] = l

	return cloneListing(l), nil
}

// UpdateListing целиком заменяет изменяемые поля объявления.
// Правка обновляет recency-метку и поднимает объявление в ленте.
// Чужое объявление править нельзя — ErrPermissionDenied.
func (s *Store) UpdateListing(ctx context.Context, schema, callerID, id string, in ListingInput) (models.Listing, error) {
	const op = "store.UpdateListing"

	if err := in.validate(); err != nil {
		return models.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.schema(schema)
	if err != nil {
		return models.Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	l, ok := d.listings[id]
	if !ok {
		return models.Listing{}, fmt.Errorf("%s: listing %q: %w", op, id, apierrors.ErrNotFound)
	}
	if l.SellerID != callerID {
		return models.Listing{}, fmt.Errorf("%s: listing %q: %w", op, id, apierrors.ErrPermissionDenied)
	}

	l.Title = in.Title
	l.Description = in.Description
	l.Price = in.Price
	l.Condition = in.Condition
	l.Images = append([]models.ListingImage(nil), in.Images...)
	l.CategoryIDs = append([]string(nil), in.CategoryIDs...)
	l.UpdatedAt = s.stamp()

	return cloneListing(l), nil
}

// DeleteListing удаляет объявление владельца.
// Снапшоты в существующих беседах намеренно переживают удаление.
func (s *Store) DeleteListing(ctx context.Context, schema, callerID, id string) error {
	const op = "store.DeleteListing"

	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.schema(schema)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	l, ok := d.listings[id]
	if !ok {
		return fmt.Errorf("%s: listing %q: %w", op, id, apierrors.ErrNotFound)
	}
	if l.SellerID != callerID {
		return fmt.Errorf("%s: listing %q: %w", op, id, apierrors.ErrPermissionDenied)
	}

	delete(d.listings, id)

	return nil
}

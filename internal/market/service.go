// market — фасад приложения campus-market: типизированный REST-клиент плюс
// ленты с курсорной пагинацией поверх него. Это единственный пакет, который
// потребляют экраны TUI.
package market

import (
	"context"

	"github.com/pribylovaa/go-campus-market/internal/client"
	"github.com/pribylovaa/go-campus-market/internal/config"
	"github.com/pribylovaa/go-campus-market/internal/feed"
	"github.com/pribylovaa/go-campus-market/internal/models"
)

// Service связывает клиент, конфиг и ленты.
//
// Ленты Listings и Conversations — долгоживущие синглтоны сервиса: их
// durable-состояние живёт, пока живёт приложение. SellerListings и Messages
// создают свежую ленту на каждый вызов: экран держит её, пока открыт,
// и начинает с чистого листа при повторном входе.
type Service struct {
	client *client.Client
	cfg    config.FeedConfig

	listings      *feed.Feed[models.ListingCard]
	conversations *feed.Feed[models.Conversation]
}

func New(c *client.Client, cfg config.FeedConfig) *Service {
	s := &Service{
		client: c,
		cfg:    cfg,
	}

	s.listings = feed.New(s.listingsSource(), cfg.PageSize)
	s.conversations = feed.New(s.conversationsSource(), cfg.PageSize)

	return s
}

// CurrentUserID — идентификатор текущего пользователя (из конфига клиента).
func (s *Service) CurrentUserID() string { return s.client.UserID() }

// Ping — проверка живости бекенда; TUI ждёт её успеха при старте.
func (s *Service) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

// Listings — общая лента объявлений.
func (s *Service) Listings() *feed.Feed[models.ListingCard] { return s.listings }

// Conversations — лента бесед текущего пользователя.
func (s *Service) Conversations() *feed.Feed[models.Conversation] { return s.conversations }

// SellerListings — лента объявлений конкретного продавца.
func (s *Service) SellerListings(sellerID string) *feed.Feed[models.ListingCard] {
	return feed.New(s.sellerSource(sellerID), s.cfg.PageSize)
}

// Messages — лента сообщений беседы, новые раньше старых.
func (s *Service) Messages(conversationID string) *feed.Feed[models.Message] {
	return feed.New(s.messagesSource(conversationID), s.cfg.MessagePageSize)
}

// Источники лент: клиентский вызов плюс конверсия моделей.
// Курсор и лимит прокидываются как есть, lastTimestamp страницы становится
// курсором продолжения.

func (s *Service) listingsSource() feed.Source[models.ListingCard] {
	return func(ctx context.Context, cursor string, limit int) (feed.Page[models.ListingCard], error) {
		page, err := s.client.Listings(ctx, client.ListOptions{Cursor: cursor, Limit: limit})
		if err != nil {
			return feed.Page[models.ListingCard]{}, err
		}

		return feed.Page[models.ListingCard]{
			Items:      models.CardsFromListings(page.Items),
			NextCursor: page.LastTimestamp,
		}, nil
	}
}

func (s *Service) sellerSource(sellerID string) feed.Source[models.ListingCard] {
	return func(ctx context.Context, cursor string, limit int) (feed.Page[models.ListingCard], error) {
		page, err := s.client.SellerListings(ctx, sellerID, client.ListOptions{Cursor: cursor, Limit: limit})
		if err != nil {
			return feed.Page[models.ListingCard]{}, err
		}

		return feed.Page[models.ListingCard]{
			Items:      models.CardsFromListings(page.Items),
			NextCursor: page.LastTimestamp,
		}, nil
	}
}

func (s *Service) conversationsSource() feed.Source[models.Conversation] {
	return func(ctx context.Context, cursor string, limit int) (feed.Page[models.Conversation], error) {
		page, err := s.client.Conversations(ctx, client.ListOptions{Cursor: cursor, Limit: limit})
		if err != nil {
			return feed.Page[models.Conversation]{}, err
		}

		return feed.Page[models.Conversation]{
			Items:      page.Items,
			NextCursor: page.LastTimestamp,
		}, nil
	}
}

func (s *Service) messagesSource(conversationID string) feed.Source[models.Message] {
	return func(ctx context.Context, cursor string, limit int) (feed.Page[models.Message], error) {
		page, err := s.client.Messages(ctx, conversationID, client.ListOptions{Cursor: cursor, Limit: limit})
		if err != nil {
			return feed.Page[models.Message]{}, err
		}

		return feed.Page[models.Message]{
			Items:      page.Items,
			NextCursor: page.LastTimestamp,
		}, nil
	}
}

// Несписочные операции — тонкая делегация клиенту;
// классификацию ошибок (ErrNetwork/ErrStatus/ErrDecode) делает client.

func (s *Service) Listing(ctx context.Context, id string) (*models.Listing, error) {
	return s.client.ListingByID(ctx, id)
}

func (s *Service) CreateListing(ctx context.Context, in client.CreateListingInput) (*models.Listing, error) {
	return s.client.CreateListing(ctx, in)
}

func (s *Service) UpdateListing(ctx context.Context, id string, in client.CreateListingInput) (*models.Listing, error) {
	return s.client.UpdateListing(ctx, id, in)
}

func (s *Service) DeleteListing(ctx context.Context, id string) error {
	return s.client.DeleteListing(ctx, id)
}

func (s *Service) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.client.Profile(ctx, userID)
}

func (s *Service) StartConversation(ctx context.Context, listingID string) (*models.Conversation, error) {
	return s.client.StartConversation(ctx, listingID)
}

func (s *Service) SendMessage(ctx context.Context, conversationID, text string) (*models.Message, error) {
	return s.client.SendMessage(ctx, conversationID, text)
}

func (s *Service) MarkRead(ctx context.Context, conversationID string) error {
	return s.client.MarkRead(ctx, conversationID)
}

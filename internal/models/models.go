// models содержит wire-модели бекенда campus-market и display-модели клиента.
// Wire-типы повторяют JSON-контракт бекенда один в один; display-типы —
// то, что потребляют экраны (списки, карточка, беседы).
package models

import "time"

// Допустимые значения Listing.Condition.
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// ListingImage — элемент упорядоченной коллекции изображений объявления.
// Порядок задаёт поле Position (наименьшее — обложка); значения могут быть
// неплотными, пропуски допустимы.
type ListingImage struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
}

// Listing — сырое объявление, как его отдаёт бекенд.
//
// Особенности:
//   - Price — целые минорные единицы валюты (копейки), никаких float;
//   - временные метки — RFC3339 в UTC; UpdatedAt — recency-метка,
//     по которой бекенд сортирует ленту и строит курсор;
//   - порядок Images определяется полем Position, а не позицией в массиве.
type Listing struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       int64          `json:"price"`
	Condition   string         `json:"condition"`
	Images      []ListingImage `json:"images"`
	SellerID    string         `json:"seller_id"`
	CategoryIDs []string       `json:"category_ids"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Conversation — беседа в списке диалогов.
//
// Особенности:
//   - поля peer_* и unread_count бекенд считает относительно текущего
//     пользователя (заголовок X-User-Id), клиенту ничего доразрешать не надо;
//   - снапшот объявления (title/thumbnail) денормализован на момент создания
//     беседы и переживает удаление объявления;
//   - LastMessageAt — recency-метка ленты бесед.
type Conversation struct {
	ID                  string    `json:"id"`
	ListingID           string    `json:"listing_id"`
	ListingTitle        string    `json:"listing_title"`
	ListingThumbnailURL string    `json:"listing_thumbnail_url"`
	PeerID              string    `json:"peer_id"`
	PeerName            string    `json:"peer_name"`
	PeerAvatarURL       string    `json:"peer_avatar_url"`
	LastMessageText     string    `json:"last_message_text"`
	LastMessageAt       time.Time `json:"last_message_at"`
	UnreadCount         int       `json:"unread_count"`
}

// Key — устойчивый ключ для дедупликации в лентах.
func (c Conversation) Key() string { return c.ID }

// Message — сообщение беседы. CreatedAt — recency-метка ленты сообщений.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Key — устойчивый ключ для дедупликации в лентах.
func (m Message) Key() string { return m.ID }

// Profile — публичный профиль пользователя (экран продавца).
type Profile struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingPage — страница объявлений.
// LastTimestamp — непрозрачный курсор продолжения: recency-метка последнего
// элемента страницы, которую клиент возвращает бекенду как есть.
// Бекенд отдаёт ключ в camelCase, поэтому тег отличается от остальных.
type ListingPage struct {
	Items         []Listing `json:"items"`
	LastTimestamp string    `json:"lastTimestamp"`
}

// ConversationPage — страница бесед.
type ConversationPage struct {
	Items         []Conversation `json:"items"`
	LastTimestamp string         `json:"lastTimestamp"`
}

// MessagePage — страница сообщений (новые раньше старых).
type MessagePage struct {
	Items         []Message `json:"items"`
	LastTimestamp string    `json:"lastTimestamp"`
}

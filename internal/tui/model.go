// tui — терминальный клиент campus-market на bubbletea.
//
// Модель — конечный автомат экранов: лента объявлений, карточка объявления,
// профиль продавца, список бесед, переписка. Все сетевые вызовы уходят в
// tea.Cmd с таймаутом; durable-состояние лент живёт в feed.Feed, модель
// держит только экранное: курсоры, ввод, статус.
//
// Ошибка сетевого вызова не разрушает экран: элементы, загруженные до сбоя,
// остаются на месте, текст ошибки показывается в служебной строке.
package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pribylovaa/go-campus-market/internal/feed"
	"github.com/pribylovaa/go-campus-market/internal/models"
)

// Service — срез фасада market, который потребляют экраны.
type Service interface {
	CurrentUserID() string

	Listings() *feed.Feed[models.ListingCard]
	Conversations() *feed.Feed[models.Conversation]
	SellerListings(sellerID string) *feed.Feed[models.ListingCard]
	Messages(conversationID string) *feed.Feed[models.Message]

	Listing(ctx context.Context, id string) (*models.Listing, error)
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	StartConversation(ctx context.Context, listingID string) (*models.Conversation, error)
	SendMessage(ctx context.Context, conversationID, text string) (*models.Message, error)
	MarkRead(ctx context.Context, conversationID string) error
}

// screen — активный экран модели.
type screen int

const (
	screenListings screen = iota
	screenDetail
	screenProfile
	screenConversations
	screenMessages
)

func (s screen) String() string {
	switch s {
	case screenDetail:
		return "listing"
	case screenProfile:
		return "profile"
	case screenConversations:
		return "inbox"
	case screenMessages:
		return "chat"
	default:
		return "listings"
	}
}

// feedKind различает ленты в сообщениях о завершении их операций.
type feedKind int

const (
	feedListings feedKind = iota
	feedSeller
	feedConversations
	feedMessages
)

type feedUpdatedMsg struct {
	kind feedKind
}

type feedErrorMsg struct {
	kind feedKind
	err  error
}

type listingLoadedMsg struct {
	listing *models.Listing
}

type listingErrorMsg struct {
	err error
}

type profileLoadedMsg struct {
	profile *models.Profile
}

type profileErrorMsg struct {
	err error
}

type conversationStartedMsg struct {
	conv models.Conversation
}

type conversationErrorMsg struct {
	err error
}

type messageSentMsg struct {
	sent models.Message
}

type sendErrorMsg struct {
	err error
}

type markReadDoneMsg struct {
	conversationID string
}

type markReadErrorMsg struct {
	err error
}

// Model — состояние терминального клиента.
//
// Ленты listings и conversations живут всё время работы программы, ленты
// seller и messages пересоздаются при входе на соответствующий экран.
type Model struct {
	service Service
	timeout time.Duration

	screen   screen
	showHelp bool
	width    int
	height   int

	listings      *feed.Feed[models.ListingCard]
	conversations *feed.Feed[models.Conversation]
	seller        *feed.Feed[models.ListingCard]
	messages      *feed.Feed[models.Message]

	listingCursor int
	sellerCursor  int
	convCursor    int

	detail    *models.Listing
	detailTop int

	profile   *models.Profile
	profileID string

	conv  models.Conversation
	input string

	// busy — одиночная (не ленточная) операция в полёте: карточка, профиль,
	// старт беседы, отправка сообщения.
	busy   bool
	status string
	err    error

	nowFn func() time.Time
}

// NewModel собирает модель поверх фасада. timeout ограничивает каждый
// сетевой вызов; timeout <= 0 приводится к 10 секундам.
func NewModel(service Service, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return Model{
		service:       service,
		timeout:       timeout,
		listings:      service.Listings(),
		conversations: service.Conversations(),
		nowFn:         time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return loadFirstCmd(m.listings, feedListings, m.timeout)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.showHelp {
			switch msg.String() {
			case "esc", "?", "q":
				m.showHelp = false
			}
			return m, nil
		}

		// Экран переписки перехватывает ввод целиком: печатаемые клавиши
		// уходят в строку сообщения.
		if m.screen == screenMessages {
			return m.updateMessages(msg)
		}

		switch msg.String() {
		case "?":
			m.showHelp = true
			return m, nil
		case "q":
			return m, tea.Quit
		}

		switch m.screen {
		case screenDetail:
			return m.updateDetail(msg)
		case screenProfile:
			return m.updateProfile(msg)
		case screenConversations:
			return m.updateConversations(msg)
		default:
			return m.updateListings(msg)
		}

	case feedUpdatedMsg:
		m.err = nil
		m.clampCursors()
		return m, nil

	case feedErrorMsg:
		// Элементы, загруженные до сбоя, остаются на экране.
		m.err = msg.err
		return m, nil

	case listingLoadedMsg:
		m.busy = false
		m.err = nil
		m.detail = msg.listing
		m.detailTop = 0
		m.screen = screenDetail
		return m, nil

	case listingErrorMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case profileLoadedMsg:
		m.err = nil
		m.profile = msg.profile
		return m, nil

	case profileErrorMsg:
		m.err = msg.err
		return m, nil

	case conversationStartedMsg:
		m.busy = false
		m.err = nil
		m.status = ""
		m.conv = msg.conv
		m.messages = m.service.Messages(msg.conv.ID)
		m.input = ""
		m.screen = screenMessages
		return m, tea.Batch(
			loadFirstCmd(m.messages, feedMessages, m.timeout),
			markReadCmd(m.service, msg.conv.ID, m.timeout),
		)

	case conversationErrorMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case messageSentMsg:
		m.busy = false
		m.err = nil
		m.input = ""
		m.status = "Sent"
		// Переписка и список бесед перечитываются: новое сообщение должно
		// подняться в обеих лентах.
		return m, tea.Batch(
			refreshCmd(m.messages, feedMessages, m.timeout),
			refreshCmd(m.conversations, feedConversations, m.timeout),
		)

	case sendErrorMsg:
		// Ввод не очищается: текст не должен пропасть из-за сетевого сбоя.
		m.busy = false
		m.err = msg.err
		return m, nil

	case markReadDoneMsg:
		return m, refreshCmd(m.conversations, feedConversations, m.timeout)

	case markReadErrorMsg:
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateListings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.listings.Snapshot()

	switch msg.String() {
	case "up", "k":
		if m.listingCursor > 0 {
			m.listingCursor--
		}
		return m, nil
	case "down", "j":
		if m.listingCursor < len(snap.Items)-1 {
			m.listingCursor++
		}
		return m, nil
	case "g":
		m.listingCursor = 0
		return m, nil
	case "G":
		if len(snap.Items) > 0 {
			m.listingCursor = len(snap.Items) - 1
		}
		return m, nil
	case "n":
		if snap.Exhausted {
			m.status = "No more listings"
			return m, nil
		}
		m.status = ""
		return m, loadNextCmd(m.listings, feedListings, m.timeout)
	case "r":
		m.status = ""
		m.err = nil
		return m, refreshCmd(m.listings, feedListings, m.timeout)
	case "enter":
		card, ok := cardAt(snap.Items, m.listingCursor)
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, fetchListingCmd(m.service, card.ID, m.timeout)
	case "p":
		card, ok := cardAt(snap.Items, m.listingCursor)
		if !ok {
			return m, nil
		}
		return m.openProfile(card.SellerID)
	case "m":
		card, ok := cardAt(snap.Items, m.listingCursor)
		if !ok {
			return m, nil
		}
		return m.startConversation(card.ID)
	case "c":
		return m.openConversations()
	}

	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.screen = screenListings
		m.detailTop = 0
		return m, nil
	case "up", "k":
		if m.detailTop > 0 {
			m.detailTop--
		}
		return m, nil
	case "down", "j":
		if maxTop := len(m.detailLines()) - m.bodyHeight(); m.detailTop < maxTop {
			m.detailTop++
		}
		return m, nil
	case "p":
		if m.detail != nil {
			return m.openProfile(m.detail.SellerID)
		}
		return m, nil
	case "m":
		if m.detail != nil {
			return m.startConversation(m.detail.ID)
		}
		return m, nil
	case "c":
		return m.openConversations()
	}

	return m, nil
}

func (m Model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.seller.Snapshot()

	switch msg.String() {
	case "esc", "backspace":
		m.screen = screenListings
		return m, nil
	case "up", "k":
		if m.sellerCursor > 0 {
			m.sellerCursor--
		}
		return m, nil
	case "down", "j":
		if m.sellerCursor < len(snap.Items)-1 {
			m.sellerCursor++
		}
		return m, nil
	case "n":
		if snap.Exhausted {
			m.status = "No more listings"
			return m, nil
		}
		m.status = ""
		return m, loadNextCmd(m.seller, feedSeller, m.timeout)
	case "r":
		m.status = ""
		m.err = nil
		return m, refreshCmd(m.seller, feedSeller, m.timeout)
	case "enter":
		card, ok := cardAt(snap.Items, m.sellerCursor)
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, fetchListingCmd(m.service, card.ID, m.timeout)
	case "m":
		card, ok := cardAt(snap.Items, m.sellerCursor)
		if !ok {
			return m, nil
		}
		return m.startConversation(card.ID)
	case "c":
		return m.openConversations()
	}

	return m, nil
}

func (m Model) updateConversations(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.conversations.Snapshot()

	switch msg.String() {
	case "esc", "backspace":
		m.screen = screenListings
		return m, nil
	case "up", "k":
		if m.convCursor > 0 {
			m.convCursor--
		}
		return m, nil
	case "down", "j":
		if m.convCursor < len(snap.Items)-1 {
			m.convCursor++
		}
		return m, nil
	case "n":
		if snap.Exhausted {
			m.status = "No more conversations"
			return m, nil
		}
		m.status = ""
		return m, loadNextCmd(m.conversations, feedConversations, m.timeout)
	case "r":
		m.status = ""
		m.err = nil
		return m, refreshCmd(m.conversations, feedConversations, m.timeout)
	case "enter":
		if m.convCursor < 0 || m.convCursor >= len(snap.Items) {
			return m, nil
		}
		return m.openConversation(snap.Items[m.convCursor])
	}

	return m, nil
}

// updateMessages обрабатывает экран переписки: печатаемые клавиши дополняют
// строку ввода, служебные управляют лентой.
func (m Model) updateMessages(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.screen = screenConversations
		m.status = ""
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input)
		if text == "" || m.busy {
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, sendMessageCmd(m.service, m.conv.ID, text, m.timeout)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeyPgUp:
		snap := m.messages.Snapshot()
		if snap.Exhausted {
			m.status = "No older messages"
			return m, nil
		}
		m.status = ""
		return m, loadNextCmd(m.messages, feedMessages, m.timeout)
	case tea.KeyCtrlR:
		m.status = ""
		m.err = nil
		return m, refreshCmd(m.messages, feedMessages, m.timeout)
	case tea.KeySpace:
		m.input += " "
		return m, nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return m, nil
	}

	return m, nil
}

// openProfile переключает на экран продавца и запускает загрузку профиля
// вместе с первой страницей его объявлений.
func (m Model) openProfile(sellerID string) (tea.Model, tea.Cmd) {
	m.screen = screenProfile
	m.profile = nil
	m.profileID = sellerID
	m.seller = m.service.SellerListings(sellerID)
	m.sellerCursor = 0
	m.status = ""

	return m, tea.Batch(
		fetchProfileCmd(m.service, sellerID, m.timeout),
		loadFirstCmd(m.seller, feedSeller, m.timeout),
	)
}

func (m Model) openConversations() (tea.Model, tea.Cmd) {
	m.screen = screenConversations
	m.status = ""

	// Первый вход загружает ленту; после неудачи повторный вход повторит
	// запрос, после пустого успешного ответа (exhausted) не повторит.
	snap := m.conversations.Snapshot()
	if len(snap.Items) == 0 && !snap.Loading && !snap.Exhausted {
		return m, loadFirstCmd(m.conversations, feedConversations, m.timeout)
	}
	return m, nil
}

// openConversation входит в переписку: история загружается с первой страницы,
// беседа помечается прочитанной.
func (m Model) openConversation(conv models.Conversation) (tea.Model, tea.Cmd) {
	m.screen = screenMessages
	m.conv = conv
	m.messages = m.service.Messages(conv.ID)
	m.input = ""
	m.status = ""

	return m, tea.Batch(
		loadFirstCmd(m.messages, feedMessages, m.timeout),
		markReadCmd(m.service, conv.ID, m.timeout),
	)
}

func (m Model) startConversation(listingID string) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = "Starting conversation..."
	return m, startConversationCmd(m.service, listingID, m.timeout)
}

func (m *Model) clampCursors() {
	m.listingCursor = clampCursor(m.listingCursor, len(m.listings.Snapshot().Items))
	m.convCursor = clampCursor(m.convCursor, len(m.conversations.Snapshot().Items))
	if m.seller != nil {
		m.sellerCursor = clampCursor(m.sellerCursor, len(m.seller.Snapshot().Items))
	}
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func cardAt(items []models.ListingCard, cursor int) (models.ListingCard, bool) {
	if cursor < 0 || cursor >= len(items) {
		return models.ListingCard{}, false
	}
	return items[cursor], true
}

// Команды. Каждая выполняет один сетевой вызов под своим таймаутом и
// возвращает сообщение об успехе либо об ошибке.

func loadFirstCmd[T feed.Entity](f *feed.Feed[T], kind feedKind, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := f.LoadFirst(ctx); err != nil {
			return feedErrorMsg{kind: kind, err: err}
		}
		return feedUpdatedMsg{kind: kind}
	}
}

func refreshCmd[T feed.Entity](f *feed.Feed[T], kind feedKind, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := f.Refresh(ctx); err != nil {
			return feedErrorMsg{kind: kind, err: err}
		}
		return feedUpdatedMsg{kind: kind}
	}
}

func loadNextCmd[T feed.Entity](f *feed.Feed[T], kind feedKind, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := f.LoadNext(ctx); err != nil {
			return feedErrorMsg{kind: kind, err: err}
		}
		return feedUpdatedMsg{kind: kind}
	}
}

func fetchListingCmd(service Service, id string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		listing, err := service.Listing(ctx, id)
		if err != nil {
			return listingErrorMsg{err: err}
		}
		return listingLoadedMsg{listing: listing}
	}
}

func fetchProfileCmd(service Service, userID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		profile, err := service.Profile(ctx, userID)
		if err != nil {
			return profileErrorMsg{err: err}
		}
		return profileLoadedMsg{profile: profile}
	}
}

func startConversationCmd(service Service, listingID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		conv, err := service.StartConversation(ctx, listingID)
		if err != nil {
			return conversationErrorMsg{err: err}
		}
		return conversationStartedMsg{conv: *conv}
	}
}

func sendMessageCmd(service Service, conversationID, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		sent, err := service.SendMessage(ctx, conversationID, text)
		if err != nil {
			return sendErrorMsg{err: err}
		}
		return messageSentMsg{sent: *sent}
	}
}

func markReadCmd(service Service, conversationID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := service.MarkRead(ctx, conversationID); err != nil {
			return markReadErrorMsg{err: err}
		}
		return markReadDoneMsg{conversationID: conversationID}
	}
}

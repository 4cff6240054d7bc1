package tui

import (
	"fmt"
	"strings"

	"github.com/pribylovaa/go-campus-market/internal/models"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("Campus Market\n")

	if m.showHelp {
		b.WriteString("Help (? to close)\n\n")
		b.WriteString(m.helpView())
		b.WriteString("\n\n")
		b.WriteString(m.messagePanel())
		b.WriteString("\n")
		b.WriteString(m.footer())
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.hints())
	b.WriteString("\n\n")

	switch m.screen {
	case screenDetail:
		b.WriteString(m.detailView())
	case screenProfile:
		b.WriteString(m.profileView())
	case screenConversations:
		b.WriteString(m.conversationsView())
	case screenMessages:
		b.WriteString(m.messagesView())
	default:
		b.WriteString(m.listingsView())
	}

	b.WriteString("\n")
	b.WriteString(m.messagePanel())
	b.WriteString("\n")
	b.WriteString(m.footer())
	b.WriteString("\n")

	return b.String()
}

func (m Model) hints() string {
	switch m.screen {
	case screenDetail:
		return "j/k: scroll | p: seller | m: message | c: inbox | esc: back | q: quit"
	case screenProfile:
		return "j/k: move | enter: open | n: more | r: refresh | m: message | esc: back | q: quit"
	case screenConversations:
		return "j/k: move | enter: open | n: more | r: refresh | esc: back | q: quit"
	case screenMessages:
		return "type + enter: send | pgup: older | ctrl+r: refresh | esc: back | ctrl+c: quit"
	default:
		return "j/k: move | enter: open | n: more | r: refresh | p: seller | m: message | c: inbox | ?: help | q: quit"
	}
}

func (m Model) listingsView() string {
	snap := m.listings.Snapshot()
	if len(snap.Items) == 0 {
		if snap.Loading {
			return "Loading listings...\n"
		}
		return "No listings yet. Press r to refresh.\n"
	}
	return m.cardRows(snap.Items, m.listingCursor)
}

// cardRows — строки объявлений; общий рендер для общей ленты и ленты продавца.
func (m Model) cardRows(items []models.ListingCard, cursor int) string {
	now := m.nowFn()
	width := m.contentWidth()

	var b strings.Builder
	for i, card := range items {
		marker := " "
		if i == cursor {
			marker = ">"
		}

		line := fmt.Sprintf("%s %2d. %s [%s] %s (%s)",
			marker, i+1,
			formatPrice(card.Price), card.Condition,
			truncate(card.Title, width-30),
			relTime(now, card.UpdatedAt),
		)
		b.WriteString(renderRow(i == cursor, line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) detailView() string {
	if m.detail == nil {
		return "Loading listing...\n"
	}

	lines := m.detailLines()
	top := m.detailTop
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	if top < 0 {
		top = 0
	}
	end := len(lines)
	if h := m.bodyHeight(); top+h < end {
		end = top + h
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

func (m Model) detailLines() []string {
	if m.detail == nil {
		return nil
	}

	l := m.detail
	width := m.contentWidth()
	now := m.nowFn()

	lines := make([]string, 0, 16)
	lines = append(lines, wrapText(l.Title, width)...)
	lines = append(lines, strings.Repeat("=", minInt(width, len([]rune(l.Title)))))
	lines = append(lines, fmt.Sprintf("Price: %s [%s]", formatPrice(l.Price), l.Condition))
	lines = append(lines, "Seller: "+l.SellerID)
	lines = append(lines, "Updated: "+relTime(now, l.UpdatedAt))

	if thumb := models.CardFromListing(*l).ThumbnailURL; thumb != "" {
		lines = append(lines, "Photo: "+thumb)
	}

	if l.Description != "" {
		lines = append(lines, "")
		lines = append(lines, wrapText(l.Description, width)...)
	}

	if len(l.Images) > 0 {
		lines = append(lines, "", "Images:")
		for _, img := range l.Images {
			lines = append(lines, wrapText(fmt.Sprintf("- [%d] %s", img.Position, img.URL), width)...)
		}
	}

	return lines
}

func (m Model) profileView() string {
	width := m.contentWidth()

	var b strings.Builder
	if m.profile == nil {
		b.WriteString("Loading profile of " + m.profileID + "...\n")
	} else {
		p := m.profile
		b.WriteString(fmt.Sprintf("Seller: %s (%s)\n", p.Username, p.UserID))
		b.WriteString("Member since: " + p.CreatedAt.Format("02.01.2006") + "\n")
		if p.Bio != "" {
			b.WriteString(strings.Join(wrapText(p.Bio, width), "\n") + "\n")
		}
		if p.AvatarURL != "" {
			b.WriteString("Avatar: " + p.AvatarURL + "\n")
		}
	}
	b.WriteString("\nListings:\n")

	snap := m.seller.Snapshot()
	if len(snap.Items) == 0 {
		if snap.Loading {
			b.WriteString("Loading...\n")
		} else {
			b.WriteString("Nothing for sale right now.\n")
		}
		return b.String()
	}
	b.WriteString(m.cardRows(snap.Items, m.sellerCursor))
	return b.String()
}

func (m Model) conversationsView() string {
	snap := m.conversations.Snapshot()
	if len(snap.Items) == 0 {
		if snap.Loading {
			return "Loading inbox...\n"
		}
		return "Inbox is empty. Press m on a listing to message its seller.\n"
	}

	now := m.nowFn()
	width := m.contentWidth()

	var b strings.Builder
	for i, conv := range snap.Items {
		marker := " "
		if i == m.convCursor {
			marker = ">"
		}
		badge := "   "
		if conv.UnreadCount > 0 {
			badge = fmt.Sprintf("[%d]", conv.UnreadCount)
		}

		line := fmt.Sprintf("%s %2d. %s %s / %s: %s (%s)",
			marker, i+1, badge,
			truncate(conv.ListingTitle, 24),
			conv.PeerName,
			truncate(conv.LastMessageText, width-48),
			relTime(now, conv.LastMessageAt),
		)
		b.WriteString(renderRow(i == m.convCursor, line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) messagesView() string {
	width := m.contentWidth()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Chat: %s / %s\n", m.conv.ListingTitle, m.conv.PeerName))
	if m.conv.ListingThumbnailURL != "" {
		b.WriteString("Listing photo: " + m.conv.ListingThumbnailURL + "\n")
	}
	b.WriteString("\n")

	snap := m.messages.Snapshot()
	switch {
	case len(snap.Items) == 0 && snap.Loading:
		b.WriteString("Loading messages...\n")
	case len(snap.Items) == 0:
		b.WriteString("No messages yet. Type and press enter.\n")
	default:
		if !snap.Exhausted {
			b.WriteString("-- pgup: older messages --\n")
		}
		// Лента отдаёт сообщения от новых к старым, экран показывает
		// хронологию сверху вниз.
		for i := len(snap.Items) - 1; i >= 0; i-- {
			msg := snap.Items[i]
			sender := m.senderLabel(msg.SenderID)
			prefix := fmt.Sprintf("[%s] %s: ", msg.CreatedAt.Local().Format("02.01 15:04"), sender)
			for j, line := range wrapText(msg.Text, width-len([]rune(prefix))) {
				if j == 0 {
					b.WriteString(prefix + line + "\n")
					continue
				}
				b.WriteString(strings.Repeat(" ", len([]rune(prefix))) + line + "\n")
			}
		}
	}

	b.WriteString("\n> " + m.input)
	b.WriteString("\n")
	return b.String()
}

func (m Model) senderLabel(senderID string) string {
	if senderID == m.service.CurrentUserID() {
		return "you"
	}
	if m.conv.PeerName != "" {
		return m.conv.PeerName
	}
	return senderID
}

// messagePanel — служебная строка: статус, ошибка, признак активного запроса.
func (m Model) messagePanel() string {
	status := "-"
	if m.status != "" {
		status = m.status
	}

	errText := "-"
	if m.err != nil {
		errText = m.err.Error()
	}

	state := "idle"
	if m.busy || m.currentSnapshotLoading() {
		state = "loading"
	}

	return fmt.Sprintf("Status: %s | Error: %s | State: %s", status, errText, state)
}

func (m Model) footer() string {
	count, exhausted := m.currentFeedState()
	more := "yes"
	if exhausted {
		more = "no"
	}
	return fmt.Sprintf("Mode: %s | Shown: %d | More: %s | User: %s",
		m.screen, count, more, m.service.CurrentUserID())
}

// currentFeedState — счётчик и исчерпанность ленты активного экрана.
// Экран карточки наследует состояние ленты, из которой открыт список.
func (m Model) currentFeedState() (int, bool) {
	switch m.screen {
	case screenProfile:
		snap := m.seller.Snapshot()
		return len(snap.Items), snap.Exhausted
	case screenConversations:
		snap := m.conversations.Snapshot()
		return len(snap.Items), snap.Exhausted
	case screenMessages:
		snap := m.messages.Snapshot()
		return len(snap.Items), snap.Exhausted
	default:
		snap := m.listings.Snapshot()
		return len(snap.Items), snap.Exhausted
	}
}

func (m Model) currentSnapshotLoading() bool {
	switch m.screen {
	case screenProfile:
		return m.seller.Snapshot().Loading
	case screenConversations:
		return m.conversations.Snapshot().Loading
	case screenMessages:
		return m.messages.Snapshot().Loading
	default:
		return m.listings.Snapshot().Loading
	}
}

func (m Model) helpView() string {
	lines := []string{
		"Listings:",
		"  j/k move, g/G jump, enter opens a listing, n loads the next page, r refreshes",
		"  p opens the seller profile, m starts a conversation about the listing",
		"Inbox (c):",
		"  j/k move, enter opens the chat and marks it read, n/r page and refresh",
		"Chat:",
		"  type and press enter to send, pgup loads older messages, ctrl+r refreshes",
		"Everywhere:",
		"  esc goes back, ? toggles help, q or ctrl+c quits",
	}
	return strings.Join(lines, "\n")
}

func (m Model) contentWidth() int {
	if m.width > 2 {
		return m.width - 2
	}
	return 78
}

func (m Model) bodyHeight() int {
	if m.height > 0 {
		if h := m.height - 8; h > 5 {
			return h
		}
		return 5
	}
	return 18
}

func renderRow(active bool, line string) string {
	if !active {
		return line
	}
	return "\x1b[7m" + line + "\x1b[0m"
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

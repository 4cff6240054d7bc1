package store

import (
	"fmt"
	"time"

	"github.com/pribylovaa/go-campus-market/internal/models"
)

type seedMessage struct {
	id     string
	sender string
	text   string
}

type seedConversation struct {
	id        string
	listingID string
	buyerID   string
	start     time.Time
	messages  []seedMessage
	unread    map[string]int
}

// Seed наполняет схему демо-данными кампуса: два пользователя, семнадцать
// объявлений и три беседы с историей.
//
// Набор детерминирован: фиксированные идентификаторы и метки времени,
// тесты могут полагаться на точный состав страниц. Последняя метка сида
// запоминается, чтобы stamp() продолжил монотонную последовательность.
func (s *Store) Seed(schema string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.ensureSchema(schema)

	base := time.Date(2025, time.August, 18, 9, 0, 0, 0, time.UTC)

	touch := func(t time.Time) {
		if t.After(s.last) {
			s.last = t
		}
	}

	d.profiles["u-masha"] = &models.Profile{
		UserID:    "u-masha",
		Username:  "masha",
		AvatarURL: "https://img.campus.local/avatars/masha.png",
		Bio:       "3 курс, прикладная математика. Отдаю вещи из общежития.",
		CreatedAt: base.Add(-40 * 24 * time.Hour),
	}
	d.profiles["u-artem"] = &models.Profile{
		UserID:    "u-artem",
		Username:  "artem",
		AvatarURL: "https://img.campus.local/avatars/artem.png",
		Bio:       "Магистратура, ИВТ. Продаю технику после апгрейда.",
		CreatedAt: base.Add(-55 * 24 * time.Hour),
	}

	img := func(listingID string, positions ...int) []models.ListingImage {
		out := make([]models.ListingImage, 0, len(positions))
		for _, p := range positions {
			out = append(out, models.ListingImage{
				Position: p,
				URL:      fmt.Sprintf("https://img.campus.local/%s/%d.jpg", listingID, p),
			})
		}
		return out
	}

	listings := []struct {
		id        string
		title     string
		desc      string
		price     int64
		condition string
		seller    string
		images    []models.ListingImage
		cats      []string
	}{
		{"l-01", "Велосипед Stels Navigator", "Катал два сезона, тормоза перебраны.", 750000, models.ConditionUsed, "u-artem", img("l-01", 0, 1), []string{"bikes"}},
		{"l-02", "Конспекты по матанализу, 1 курс", "Полный семестр, разборчивый почерк.", 30000, models.ConditionUsed, "u-artem", img("l-02", 0), []string{"books"}},
		{"l-03", "Ноутбук Lenovo ThinkPad X230", "i5/8GB/SSD 256, батарея держит три часа.", 1200000, models.ConditionUsed, "u-artem", img("l-03", 2, 0, 5), []string{"electronics"}},
		{"l-04", "Настольная лампа", "Тёплый свет, длинный провод.", 50000, models.ConditionUsed, "u-artem", img("l-04", 0), []string{"dorm"}},
		{"l-05", "Микроволновка Samsung", "Работает тихо, забирать из общежития №4.", 250000, models.ConditionUsed, "u-artem", img("l-05", 1, 0), []string{"dorm", "appliances"}},
		{"l-06", "Задачник Сканави", "Издание 2019, без пометок.", 40000, models.ConditionUsed, "u-artem", nil, []string{"books"}},
		{"l-07", "Гитара акустическая Yamaha F310", "Струны новые, чехол в комплекте.", 800000, models.ConditionUsed, "u-artem", img("l-07", 0, 1, 2), []string{"music"}},
		{"l-08", "Кофемашина DeLonghi", "Капсульная, декальцинирована.", 450000, models.ConditionUsed, "u-artem", img("l-08", 0), []string{"appliances"}},
		{"l-09", "Монитор Dell 24\"", "IPS, без битых пикселей, кабели в комплекте.", 700000, models.ConditionUsed, "u-artem", img("l-09", 3, 1), []string{"electronics"}},
		{"l-10", "Куртка зимняя, р-р M", "Носила один сезон, тёплая.", 300000, models.ConditionUsed, "u-masha", img("l-10", 0), []string{"clothes"}},
		{"l-11", "Электрочайник Bosch", "Новый, подарили второй.", 150000, models.ConditionNew, "u-masha", img("l-11", 0), []string{"dorm", "appliances"}},
		{"l-12", "Самокат Xiaomi M365", "Пробег небольшой, заряд держит.", 1100000, models.ConditionUsed, "u-masha", img("l-12", 1, 0), []string{"electronics"}},
		{"l-13", "Худи с символикой универа, L", "Ни разу не надевала.", 120000, models.ConditionNew, "u-masha", img("l-13", 0), []string{"clothes"}},
		{"l-14", "Принтер HP LaserJet + картридж", "Печатает ровно, картридж почти полный.", 350000, models.ConditionUsed, "u-masha", nil, []string{"electronics"}},
		{"l-15", "Книги по Go и алгоритмам", "Три книги одним лотом.", 90000, models.ConditionUsed, "u-masha", img("l-15", 0, 2), []string{"books"}},
		{"l-16", "Настольный футбол (мини)", "Весёлый, немного скрипит.", 180000, models.ConditionUsed, "u-masha", img("l-16", 0), []string{"hobby"}},
		{"l-17", "Холодильник Саратов (малый)", "Морозит отлично, под стол в комнате.", 600000, models.ConditionUsed, "u-masha", img("l-17", 0, 1), []string{"dorm", "appliances"}},
	}

	for i, sl := range listings {
		ts := base.Add(time.Duration(i) * 7 * time.Minute)
		touch(ts)

		d.listings[sl.id] = &models.Listing{
			ID:          sl.id,
			Title:       sl.title,
			Description: sl.desc,
			Price:       sl.price,
			Condition:   sl.condition,
			Images:      sl.images,
			SellerID:    sl.seller,
			CategoryIDs: sl.cats,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}
	}

	conversations := []seedConversation{
		{
			id: "c-001", listingID: "l-07", buyerID: "u-masha",
			start: base.Add(3 * time.Hour),
			messages: []seedMessage{
				{"m-c1-01", "u-masha", "Гитара в наличии? Лады не звенят?"},
				{"m-c1-02", "u-artem", "В наличии, всё ок. Могу скинуть видео."},
			},
			unread: map[string]int{"u-masha": 1},
		},
		{
			id: "c-002", listingID: "l-12", buyerID: "u-artem",
			start: base.Add(4 * time.Hour),
			messages: []seedMessage{
				{"m-c2-01", "u-artem", "Самокат ещё у тебя? Заберу в выходные."},
			},
			unread: map[string]int{"u-masha": 1},
		},
		{
			id: "c-003", listingID: "l-03", buyerID: "u-masha",
			start: base.Add(5 * time.Hour),
			messages: []seedMessage{
				{"m-c3-01", "u-masha", "Привет! Ноутбук ещё продаётся?"},
				{"m-c3-02", "u-artem", "Привет, да. Царапин почти нет."},
				{"m-c3-03", "u-masha", "Можно посмотреть сегодня после пар?"},
				{"m-c3-04", "u-artem", "Давай в 18:00 у второго корпуса."},
				{"m-c3-05", "u-masha", "Подходит. Зарядка в комплекте?"},
				{"m-c3-06", "u-artem", "Да, и сумка в подарок."},
				{"m-c3-07", "u-masha", "Отлично, до встречи!"},
			},
			unread: map[string]int{"u-artem": 1},
		},
	}

	for _, sc := range conversations {
		l := d.listings[sc.listingID]
		card := models.CardFromListing(cloneListing(l))

		c := &conversation{
			id:           sc.id,
			listingID:    l.ID,
			listingTitle: l.Title,
			listingThumb: card.ThumbnailURL,
			buyerID:      sc.buyerID,
			sellerID:     l.SellerID,
			unread:       sc.unread,
		}

		for i, sm := range sc.messages {
			ts := sc.start.Add(time.Duration(i) * 5 * time.Minute)
			touch(ts)

			d.messages[c.id] = append(d.messages[c.id], models.Message{
				ID:             sm.id,
				ConversationID: c.id,
				SenderID:       sm.sender,
				Text:           sm.text,
				CreatedAt:      ts,
			})

			c.lastText = sm.text
			c.lastAt = ts
		}

		d.convs = append(d.convs, c)
		d.convByPair[pairKey(c.buyerID, c.listingID)] = c
	}
}

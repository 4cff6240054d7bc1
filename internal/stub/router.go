// stub — дев-бекенд campus-market: chi-роутер, мидлвары и хендлеры поверх
// in-memory хранилища. Реализует тот же wire-контракт, что и боевой бекенд,
// чтобы TUI-клиент и тесты работали без внешних сервисов.
package stub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-campus-market/internal/stub/handlers"
	"github.com/pribylovaa/go-campus-market/internal/stub/middleware"
	"github.com/pribylovaa/go-campus-market/internal/stub/store"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(st *store.Store, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(st)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// liveness: по нему TUI ждёт готовности стаба при старте.
	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// listings
	r.Get("/listings", h.ListListings)
	r.Post("/listings", h.CreateListing)
	r.Get("/listings/{id}", h.GetListing)
	r.Put("/listings/{id}", h.UpdateListing)
	r.Delete("/listings/{id}", h.DeleteListing)

	// conversations
	r.Get("/conversations", h.ListConversations)
	r.Post("/conversations", h.StartConversation)
	r.Get("/conversations/{id}/messages", h.ListMessages)
	r.Post("/conversations/{id}/messages", h.SendMessage)
	r.Post("/conversations/{id}/read", h.MarkRead)

	// users
	r.Get("/users/{id}", h.GetProfile)
	r.Get("/users/{id}/listings", h.ListSellerListings)
}

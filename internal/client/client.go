// client — типизированный REST-клиент бекенда campus-market.
//
// Особенности:
//   - вся конфигурация задаётся явно через Config, никакого ambient-состояния:
//     адрес, схема кампуса и текущий пользователь приходят снаружи;
//   - schema добавляется query-параметром к каждому запросу, X-User-Id —
//     заголовком через транспортную цепочку (см. transport.go);
//   - курсор пагинации непрозрачен: клиент передаёт бекенду lastTimestamp
//     предыдущей страницы как есть, не разбирая его.
//
// Ошибки:
//   - классифицируются тремя видами — ErrNetwork, ErrStatus, ErrDecode
//     (см. errors.go); каждая оборачивается op-контекстом вызова.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apierrors "github.com/pribylovaa/go-campus-market/internal/errors"
)

// Config — явные параметры клиента.
type Config struct {
	// BaseURL — адрес бекенда, например "http://localhost:50080".
	BaseURL string
	// Schema — имя схемы кампуса; уходит query-параметром schema.
	Schema string
	// UserID — идентификатор текущего пользователя; уходит заголовком
	// X-User-Id. Пустое значение допустимо для анонимного просмотра,
	// но операции бесед и создания объявлений бекенд отклонит.
	UserID string
	// UserAgent — подпись клиента.
	UserAgent string
	// Timeout — дефолтный таймаут вызова, когда у контекста ещё нет дедлайна.
	// Существующий дедлайн не переопределяется. <= 0 — без таймаута.
	Timeout time.Duration
	// HTTPClient — переопределение HTTP-клиента (тесты, пулы соединений);
	// его Transport оборачивается транспортной цепочкой. nil — собственный.
	HTTPClient *http.Client
	// Logger — базовый логгер исходящих вызовов; nil — slog.Default().
	Logger *slog.Logger
}

// Client — потокобезопасен; один экземпляр на всё приложение.
type Client struct {
	baseURL *url.URL
	schema  string
	userID  string
	timeout time.Duration
	httpc   *http.Client
}

// New валидирует конфигурацию и собирает клиента с транспортной цепочкой
// metadata -> logging поверх переданного (или дефолтного) транспорта.
func New(cfg Config) (*Client, error) {
	const op = "client.New"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute, got %q", op, cfg.BaseURL)
	}

	if cfg.Schema == "" {
		return nil, fmt.Errorf("%s: empty schema", op)
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	httpc.Transport = newTransport(httpc.Transport, cfg.UserAgent, cfg.UserID, cfg.Logger)

	return &Client{
		baseURL: base,
		schema:  cfg.Schema,
		userID:  cfg.UserID,
		timeout: cfg.Timeout,
		httpc:   httpc,
	}, nil
}

// Schema возвращает схему кампуса, с которой работает клиент.
func (c *Client) Schema() string { return c.schema }

// UserID возвращает идентификатор текущего пользователя.
func (c *Client) UserID() string { return c.userID }

// Ping проверяет живость бекенда (GET /livez). Используется стартовым
// wait-циклом терминального клиента.
func (c *Client) Ping(ctx context.Context) error {
	const op = "client.Ping"

	if err := c.do(ctx, http.MethodGet, "/livez", nil, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListOptions — параметры списочного запроса.
//
// Особенности:
//   - Cursor == "" — первая страница;
//   - Limit <= 0 — параметр не отправляется, бекенд применит свой default.
type ListOptions struct {
	Cursor string
	Limit  int
}

// listQuery — общие query-параметры списочных запросов.
func (c *Client) listQuery(opts ListOptions) url.Values {
	q := url.Values{}
	q.Set("schema", c.schema)

	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	return q
}

// do выполняет один HTTP-вызов: собирает URL, применяет таймаут (если у
// контекста нет дедлайна), кодирует body и разбирает ответ в out (если не nil).
//
// Возвращаемые ошибки уже классифицированы (ErrNetwork/ErrStatus/ErrDecode);
// вызывающие методы добавляют свой op-контекст.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return nil
}

// statusError строит *StatusError из не-2xx ответа.
// Конверт ошибки разбирается best-effort; request id добирается из
// заголовка ответа, если конверт его не принёс.
func statusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var env apierrors.ErrorResponse
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil {
			se.Code = env.Error.Code
			se.Message = env.Error.Message
			se.RequestID = env.Error.RequestID
		}
	}

	if se.RequestID == "" {
		se.RequestID = resp.Header.Get("X-Request-Id")
	}

	return se
}

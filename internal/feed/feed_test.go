package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// item — минимальная сущность ленты для тестов.
type item struct{ id string }

func (i item) Key() string { return i.id }

func items(ids ...string) []item {
	out := make([]item, 0, len(ids))
	for _, id := range ids {
		out = append(out, item{id: id})
	}
	return out
}

func keys(items []item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Key())
	}
	return out
}

type result struct {
	page Page[item]
	err  error
}

func ok(items []item, cursor string) result {
	return result{page: Page[item]{Items: items, NextCursor: cursor}}
}

// scriptSource — источник с заранее заданной очередью ответов.
// Курсоры и лимиты всех вызовов записываются для проверок.
type scriptSource struct {
	mu      sync.Mutex
	replies []result
	cursors []string
	limits  []int
}

func (s *scriptSource) fn() Source[item] {
	return func(_ context.Context, cursor string, limit int) (Page[item], error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.cursors = append(s.cursors, cursor)
		s.limits = append(s.limits, limit)

		if len(s.replies) == 0 {
			return Page[item]{}, errors.New("script exhausted")
		}

		r := s.replies[0]
		s.replies = s.replies[1:]
		return r.page, r.err
	}
}

func (s *scriptSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cursors)
}

// rpc — один вызов блокирующего источника: тест отвечает через reply,
// управляя порядком завершения конкурентных запросов.
type rpc struct {
	cursor string
	limit  int
	reply  chan result
}

func blockingSource() (Source[item], chan rpc) {
	calls := make(chan rpc, 8)

	src := func(_ context.Context, cursor string, limit int) (Page[item], error) {
		r := rpc{cursor: cursor, limit: limit, reply: make(chan result, 1)}
		calls <- r
		res := <-r.reply
		return res.page, res.err
	}

	return src, calls
}

func awaitCall(t *testing.T, calls chan rpc) rpc {
	t.Helper()

	select {
	case c := <-calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("source call did not arrive")
		return rpc{}
	}
}

func awaitErr(t *testing.T, ch chan error) error {
	t.Helper()

	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not finish")
		return nil
	}
}

func TestFeed_LoadFirst_ReplacesItems(t *testing.T) {
	t.Parallel()

	src := &scriptSource{replies: []result{
		ok(items("a", "b"), "t1"),
		ok(items("x", "y"), "r1"),
	}}
	f := New(src.fn(), 2)

	require.NoError(t, f.LoadFirst(context.Background()))

	snap := f.Snapshot()
	require.Equal(t, []string{"a", "b"}, keys(snap.Items))
	require.Equal(t, "t1", snap.Cursor)
	require.False(t, snap.Exhausted)
	require.False(t, snap.Loading)

	// Повторная загрузка первой страницы заменяет элементы, не дописывает.
	require.NoError(t, f.Refresh(context.Background()))
	snap = f.Snapshot()
	require.Equal(t, []string{"x", "y"}, keys(snap.Items))
	require.Equal(t, "r1", snap.Cursor)
}

// Сценарий «12+5»: бекенд держит 17 элементов, размер страницы 12.
// Вторая страница короткая — лента исчерпана, дальнейшие LoadNext не ходят в сеть.
func TestFeed_Exhaustion_TwelvePlusFive(t *testing.T) {
	t.Parallel()

	full := make([]item, 0, 12)
	for r := 'a'; r < 'a'+12; r++ {
		full = append(full, item{id: string(r)})
	}
	short := items("n", "o", "p", "q", "r")

	src := &scriptSource{replies: []result{
		ok(full, "t12"),
		ok(short, "t17"),
	}}
	f := New(src.fn(), 12)

	require.NoError(t, f.LoadFirst(context.Background()))
	require.False(t, f.Snapshot().Exhausted)

	applied, err := f.LoadNext(context.Background())
	require.NoError(t, err)
	require.True(t, applied)

	snap := f.Snapshot()
	require.Len(t, snap.Items, 17)
	require.True(t, snap.Exhausted)
	require.Equal(t, "t17", snap.Cursor)

	// Исчерпанная лента: no-op без обращения к источнику.
	for i := 0; i < 2; i++ {
		applied, err = f.LoadNext(context.Background())
		require.NoError(t, err)
		require.False(t, applied)
	}
	require.Equal(t, 2, src.calls())
}

func TestFeed_EmptyFirstPage_Exhausts(t *testing.T) {
	t.Parallel()

	src := &scriptSource{replies: []result{ok(nil, "")}}
	f := New(src.fn(), 12)

	require.NoError(t, f.LoadFirst(context.Background()))

	snap := f.Snapshot()
	require.Empty(t, snap.Items)
	require.True(t, snap.Exhausted)
	require.Equal(t, "", snap.Cursor)
}

// Курсор уходит источнику verbatim, лимит всегда равен pageSize.
func TestFeed_CursorOpaque_PassedVerbatim(t *testing.T) {
	t.Parallel()

	const cursor = "2025-03-10T12:00:00.000000001Z"

	src := &scriptSource{replies: []result{
		ok(items("a", "b", "c"), cursor),
		ok(items("d"), "t2"),
	}}
	f := New(src.fn(), 3)

	require.NoError(t, f.LoadFirst(context.Background()))
	_, err := f.LoadNext(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"", cursor}, src.cursors)
	require.Equal(t, []int{3, 3}, src.limits)
}

func TestFeed_Refresh_ResetsExhausted(t *testing.T) {
	t.Parallel()

	src := &scriptSource{replies: []result{
		ok(items("a"), "t1"), // короткая страница -> исчерпана
		ok(items("x", "y"), "r1"),
		ok(items("z"), "r2"),
	}}
	f := New(src.fn(), 2)

	require.NoError(t, f.LoadFirst(context.Background()))
	require.True(t, f.Snapshot().Exhausted)

	require.NoError(t, f.Refresh(context.Background()))
	snap := f.Snapshot()
	require.False(t, snap.Exhausted)

	applied, err := f.LoadNext(context.Background())
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, []string{"x", "y", "z"}, keys(f.Snapshot().Items))
}

// Ошибка загрузки не трогает durable-состояние; повторный LoadNext уходит
// с тем же курсором.
func TestFeed_FetchError_LeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	src := &scriptSource{replies: []result{
		ok(items("a", "b"), "t1"),
		{err: boom},
		ok(items("c"), "t2"),
	}}
	f := New(src.fn(), 2)

	require.NoError(t, f.LoadFirst(context.Background()))

	applied, err := f.LoadNext(context.Background())
	require.ErrorIs(t, err, boom)
	require.False(t, applied)

	snap := f.Snapshot()
	require.Equal(t, []string{"a", "b"}, keys(snap.Items))
	require.Equal(t, "t1", snap.Cursor)
	require.False(t, snap.Exhausted)
	require.False(t, snap.Loading)

	// Ретрай — решение вызывающего; курсор не сдвинулся.
	applied, err = f.LoadNext(context.Background())
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, []string{"", "t1", "t1"}, src.cursors)
}

func TestFeed_LoadNext_NoopWhileLoading(t *testing.T) {
	t.Parallel()

	src, calls := blockingSource()
	f := New(src, 2)

	resCh := make(chan error, 1)
	go func() {
		_, err := f.LoadNext(context.Background())
		resCh <- err
	}()

	c1 := awaitCall(t, calls)
	require.True(t, f.Snapshot().Loading)

	// Пока первый запрос в полёте, второй LoadNext — мгновенный no-op.
	applied, err := f.LoadNext(context.Background())
	require.NoError(t, err)
	require.False(t, applied)

	select {
	case extra := <-calls:
		t.Fatalf("unexpected source call with cursor %q", extra.cursor)
	default:
	}

	c1.reply <- ok(items("a", "b"), "t1")
	require.NoError(t, awaitErr(t, resCh))
	require.Equal(t, []string{"a", "b"}, keys(f.Snapshot().Items))
}

// Refresh обгоняет LoadNext в полёте: результат LoadNext отбрасывается целиком.
func TestFeed_Refresh_SupersedesInflightLoadNext(t *testing.T) {
	t.Parallel()

	src, calls := blockingSource()
	f := New(src, 2)

	// Предзагрузка.
	firstCh := make(chan error, 1)
	go func() { firstCh <- f.LoadFirst(context.Background()) }()
	awaitCall(t, calls).reply <- ok(items("a", "b"), "t1")
	require.NoError(t, awaitErr(t, firstCh))

	// LoadNext завис в источнике.
	nextApplied := make(chan bool, 1)
	nextErr := make(chan error, 1)
	go func() {
		applied, err := f.LoadNext(context.Background())
		nextApplied <- applied
		nextErr <- err
	}()
	cNext := awaitCall(t, calls)
	require.Equal(t, "t1", cNext.cursor)

	// Refresh принят поверх и завершился первым.
	refreshCh := make(chan error, 1)
	go func() { refreshCh <- f.Refresh(context.Background()) }()
	cRefresh := awaitCall(t, calls)
	require.Equal(t, "", cRefresh.cursor)

	cRefresh.reply <- ok(items("x", "y"), "r1")
	require.NoError(t, awaitErr(t, refreshCh))

	// Устаревший LoadNext завершается без следа в состоянии.
	cNext.reply <- ok(items("c", "d"), "t2")
	require.NoError(t, awaitErr(t, nextErr))
	require.False(t, <-nextApplied)

	snap := f.Snapshot()
	require.Equal(t, []string{"x", "y"}, keys(snap.Items))
	require.Equal(t, "r1", snap.Cursor)
	require.False(t, snap.Loading)
}

// Два Refresh подряд: состояние соответствует принятому последним,
// независимо от порядка завершения.
func TestFeed_RefreshTwice_LastRequestWins(t *testing.T) {
	t.Parallel()

	src, calls := blockingSource()
	f := New(src, 2)

	ch1 := make(chan error, 1)
	go func() { ch1 <- f.Refresh(context.Background()) }()
	c1 := awaitCall(t, calls)

	ch2 := make(chan error, 1)
	go func() { ch2 <- f.Refresh(context.Background()) }()
	c2 := awaitCall(t, calls)

	// Второй завершился раньше — применяется.
	c2.reply <- ok(items("second"), "s1")
	require.NoError(t, awaitErr(t, ch2))

	// Первый доехал позже — отброшен.
	c1.reply <- ok(items("first"), "f1")
	require.NoError(t, awaitErr(t, ch1))

	snap := f.Snapshot()
	require.Equal(t, []string{"second"}, keys(snap.Items))
	require.Equal(t, "s1", snap.Cursor)
	require.False(t, snap.Loading)
}

// Ошибка обогнанного запроса уходит только его вызывающему и не гасит
// loading актуального запроса.
func TestFeed_StaleError_KeepsCurrentRequestInflight(t *testing.T) {
	t.Parallel()

	src, calls := blockingSource()
	f := New(src, 2)

	ch1 := make(chan error, 1)
	go func() { ch1 <- f.Refresh(context.Background()) }()
	c1 := awaitCall(t, calls)

	ch2 := make(chan error, 1)
	go func() { ch2 <- f.Refresh(context.Background()) }()
	c2 := awaitCall(t, calls)

	boom := errors.New("boom")
	c1.reply <- result{err: boom}
	require.ErrorIs(t, awaitErr(t, ch1), boom)

	// Актуальный запрос всё ещё в полёте.
	require.True(t, f.Snapshot().Loading)

	c2.reply <- ok(items("x"), "r1")
	require.NoError(t, awaitErr(t, ch2))

	snap := f.Snapshot()
	require.Equal(t, []string{"x"}, keys(snap.Items))
	require.False(t, snap.Loading)
}

func TestFeed_DefaultPageSize(t *testing.T) {
	t.Parallel()

	src := &scriptSource{}
	require.Equal(t, DefaultPageSize, New(src.fn(), 0).PageSize())
	require.Equal(t, 7, New(src.fn(), 7).PageSize())
}

func TestFeed_Snapshot_IsACopy(t *testing.T) {
	t.Parallel()

	src := &scriptSource{replies: []result{ok(items("a", "b"), "t1")}}
	f := New(src.fn(), 2)
	require.NoError(t, f.LoadFirst(context.Background()))

	snap := f.Snapshot()
	snap.Items[0] = item{id: "mutated"}

	require.Equal(t, []string{"a", "b"}, keys(f.Snapshot().Items))
}

func TestMerge_Replace_ReturnsIncoming(t *testing.T) {
	t.Parallel()

	existing := items("a", "b")
	incoming := items("x")

	require.Equal(t, incoming, Merge(existing, incoming, Replace))
}

// Защита от бекенда, повторившего граничный элемент страницы.
func TestMerge_Append_DropsDuplicateBoundary(t *testing.T) {
	t.Parallel()

	existing := items("a", "b")
	incoming := items("b", "c")

	got := Merge(existing, incoming, Append)
	require.Equal(t, []string{"a", "b", "c"}, keys(got))
}

func TestMerge_Append_DropsDuplicatesInsideIncoming(t *testing.T) {
	t.Parallel()

	got := Merge(items("a"), items("b", "b", "c"), Append)
	require.Equal(t, []string{"a", "b", "c"}, keys(got))
}

func TestMerge_Append_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	existing := items("a", "b")
	incoming := items("b", "c")

	_ = Merge(existing, incoming, Append)

	require.Equal(t, []string{"a", "b"}, keys(existing))
	require.Equal(t, []string{"b", "c"}, keys(incoming))
}

func TestMerge_Append_EmptyInputs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"a"}, keys(Merge(nil, items("a"), Append)))
	require.Equal(t, []string{"a"}, keys(Merge(items("a"), nil, Append)))
	require.Empty(t, Merge[item](nil, nil, Append))
}

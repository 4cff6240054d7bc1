// feed реализует курсорную пагинацию лент campus-market.
//
// Feed — универсальная машина состояний «лента с подгрузкой»: единственная
// реализация, параметризованная типом элемента, обслуживает объявления,
// объявления продавца, беседы и историю сообщений. Источник страниц (Source) —
// граница сети; под своим мьютексом Feed в сеть не ходит.
//
// Правила:
//   - durable-состояние (items, cursor, exhausted) меняется только успешным
//     результатом актуального запроса; ошибка не меняет ничего, автоматических
//     повторов нет — решение о ретрае за вызывающим;
//   - курсор непрозрачен: это lastTimestamp бекенда, передаваемый как есть;
//   - exhausted становится true ровно тогда, когда страница вернула меньше
//     pageSize элементов; сбрасывается только перезагрузкой;
//   - LoadNext при loading или exhausted — мгновенный no-op;
//   - Refresh принимается всегда и обгоняет незавершённые запросы: номера
//     запросов монотонно растут, состояние применяет только запрос, принятый
//     последним, остальные результаты отбрасываются целиком.
package feed

import (
	"context"
	"fmt"
	"sync"
)

// DefaultPageSize — размер страницы по умолчанию.
const DefaultPageSize = 12

// Entity — элемент ленты с устойчивым ключом для дедупликации.
type Entity interface {
	Key() string
}

// Page — страница, отданная источником.
// NextCursor — непрозрачный курсор продолжения; "" — продолжения нет.
type Page[T Entity] struct {
	Items      []T
	NextCursor string
}

// Source — загрузчик одной страницы. cursor == "" означает первую страницу.
type Source[T Entity] func(ctx context.Context, cursor string, limit int) (Page[T], error)

// MergeMode — режим слияния страницы с текущими элементами.
type MergeMode int

const (
	// Replace — страница полностью заменяет текущие элементы.
	Replace MergeMode = iota
	// Append — страница дописывается в конец; дубликаты по Key отбрасываются.
	Append
)

// Merge сливает incoming с existing по режиму mode.
//
// Особенности:
//   - Replace возвращает incoming как есть;
//   - Append отбрасывает элементы incoming, чей Key уже встречается в existing
//     или раньше в самой incoming: защита от бекенда, повторившего граничный
//     элемент страницы;
//   - входные слайсы не модифицируются.
func Merge[T Entity](existing, incoming []T, mode MergeMode) []T {
	if mode == Replace {
		return incoming
	}

	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item.Key()] = struct{}{}
	}

	out := make([]T, 0, len(existing)+len(incoming))
	out = append(out, existing...)

	for _, item := range incoming {
		if _, ok := seen[item.Key()]; ok {
			continue
		}

		seen[item.Key()] = struct{}{}
		out = append(out, item)
	}

	return out
}

// Feed — состояние одной ленты. Все методы потокобезопасны.
type Feed[T Entity] struct {
	src      Source[T]
	pageSize int

	mu        sync.Mutex
	items     []T
	cursor    string
	exhausted bool
	loading   bool
	seq       uint64 // номер последнего принятого запроса
}

// Snapshot — копия состояния ленты на момент вызова.
type Snapshot[T Entity] struct {
	Items     []T
	Cursor    string
	Exhausted bool
	Loading   bool
}

// New создаёт ленту с фиксированным размером страницы.
// pageSize <= 0 приводится к DefaultPageSize.
func New[T Entity](src Source[T], pageSize int) *Feed[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Feed[T]{src: src, pageSize: pageSize}
}

// PageSize возвращает размер страницы ленты.
func (f *Feed[T]) PageSize() int { return f.pageSize }

// LoadFirst загружает первую страницу, заменяя текущие элементы.
// Семантически эквивалентен Refresh и существует ради читаемости на старте
// экрана.
func (f *Feed[T]) LoadFirst(ctx context.Context) error {
	return f.reload(ctx, "feed.LoadFirst")
}

// Refresh перезагружает ленту с первой страницы.
//
// Вызов принимается всегда, в том числе поверх незавершённого запроса:
// обогнанный запрос при завершении отбрасывает свой результат целиком,
// его ошибка (если была) уходит только его вызывающему.
func (f *Feed[T]) Refresh(ctx context.Context) error {
	return f.reload(ctx, "feed.Refresh")
}

func (f *Feed[T]) reload(ctx context.Context, op string) error {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.loading = true
	f.mu.Unlock()

	page, err := f.src(ctx, "", f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.seq {
		// Запрос обогнали более новым: результат устарел, состояние не трогаем.
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	f.loading = false

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f.apply(page, Replace)
	return nil
}

// LoadNext догружает следующую страницу за текущим курсором.
//
// Возвращает (false, nil) сразу, если лента исчерпана или запрос уже в полёте:
// повторный вызов в этих состояниях — не ошибка. (true, nil) — страница
// получена и применена.
func (f *Feed[T]) LoadNext(ctx context.Context) (bool, error) {
	const op = "feed.LoadNext"

	f.mu.Lock()
	if f.loading || f.exhausted {
		f.mu.Unlock()
		return false, nil
	}
	f.seq++
	seq := f.seq
	f.loading = true
	cursor := f.cursor
	f.mu.Unlock()

	page, err := f.src(ctx, cursor, f.pageSize)

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.seq {
		if err != nil {
			return false, fmt.Errorf("%s: %w", op, err)
		}
		return false, nil
	}

	f.loading = false

	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	f.apply(page, Append)
	return true, nil
}

// apply фиксирует успешный результат актуального запроса. Вызывается под mu.
func (f *Feed[T]) apply(page Page[T], mode MergeMode) {
	f.items = Merge(f.items, page.Items, mode)
	f.cursor = page.NextCursor
	f.exhausted = len(page.Items) < f.pageSize
}

// Snapshot возвращает копию состояния; элементы копируются, так что
// вызывающий может читать срез без синхронизации с лентой.
func (f *Feed[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]T, len(f.items))
	copy(items, f.items)

	return Snapshot[T]{
		Items:     items,
		Cursor:    f.cursor,
		Exhausted: f.exhausted,
		Loading:   f.loading,
	}
}

package warehouse

import (
	"context"
	"fmt"
	"sync"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
)

// Session — подключение к хранилищу, привязанное к одной
// пользовательской сессии. Открывается через Open, освобождается
// детерминированно через Close; глобального процессного подключения
// нет. Методы безопасны для конкурентного вызова, Close идемпотентен.
type Session struct {
	adapter Adapter
	cfg     Config

	mu     sync.Mutex
	closed bool
}

// Open создает адаптер через глобальную фабрику и возвращает сессию,
// владеющую этим подключением
func Open(ctx context.Context, cfg Config) (*Session, error) {
	adapter, err := New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("warehouse: open session: %w", err)
	}
	return &Session{adapter: adapter, cfg: cfg}, nil
}

// Close освобождает подключение. Повторные вызовы — no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.adapter.Close(ctx)
}

// Type возвращает тип хранилища сессии
func (s *Session) Type() string {
	return s.adapter.DatabaseType()
}

// Ping проверяет живость подключения
func (s *Session) Ping(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.adapter.Ping(ctx)
}

// Tables возвращает список таблиц
func (s *Session) Tables(ctx context.Context) ([]string, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.adapter.ListTables(ctx)
}

// Columns возвращает список колонок таблицы
func (s *Session) Columns(ctx context.Context, table string) ([]string, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.adapter.ListColumns(ctx, table)
}

// Fetch выбирает строки по спецификации. Перед запросом проверяется
// инвариант диапазона: при start > end ничего не вычисляется и
// возвращается series.ErrInvalidRange.
func (s *Session) Fetch(ctx context.Context, spec FetchSpec) ([]series.Row, int, error) {
	if err := s.guard(); err != nil {
		return nil, 0, err
	}
	if err := spec.Range.Validate(); err != nil {
		return nil, 0, err
	}
	return s.adapter.FetchRows(ctx, spec)
}

func (s *Session) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("warehouse: session is closed")
	}
	return nil
}

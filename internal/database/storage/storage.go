package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/jmoiron/sqlx"
)

// PostgresStorage реализует ports.Storage поверх sqlx.
// Запросы пишутся с плейсхолдерами "?" и переводятся в синтаксис драйвера через Rebind.
type PostgresStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ ports.Storage = (*PostgresStorage)(nil)

func NewPostgresStorage(db *sqlx.DB, logger *slog.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

// withTx выполняет fn в транзакции: коммит при успехе, откат при любой ошибке
func (s *PostgresStorage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// in раскрывает слайсы в "IN (?)" и переводит плейсхолдеры под драйвер
func (s *PostgresStorage) in(query string, args ...any) (string, []any, error) {
	q, a, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	return s.db.Rebind(q), a, nil
}

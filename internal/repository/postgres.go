// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrSessionNotFound возвращается, если сессии нет или она удалена.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists возвращается при повторном создании сессии с тем же идентификатором.
	ErrSessionExists = errors.New("session already exists")
)

// Session описывает набор токенов пользователя, привязанный к cookie сессии.
type Session struct {
	ID           uuid.UUID
	Subject      string
	AccessToken  string
	RefreshToken string
	IDToken      string
	TokenType    string
	Expiry       time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PostgresRepository предоставляет доступ к хранилищу сессий в PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет fn при конфликтах сериализации, дедлоках и обрывах соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error

	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil || !retryable(err) || i == len(r.delays) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delays[i]):
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Ping проверяет доступность базы.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// CreateSession сохраняет новую сессию.
func (r *PostgresRepository) CreateSession(ctx context.Context, s Session) error {
	err := r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (id, subject, access_token, refresh_token, id_token, token_type, expiry)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.ID, s.Subject, s.AccessToken, s.RefreshToken, s.IDToken, s.TokenType, s.Expiry,
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrSessionExists, s.ID)
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession возвращает сессию по идентификатору.
func (r *PostgresRepository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var s Session
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, subject, access_token, refresh_token, id_token, token_type, expiry, created_at, updated_at
			 FROM sessions
			 WHERE id = $1`,
			id,
		).Scan(&s.ID, &s.Subject, &s.AccessToken, &s.RefreshToken, &s.IDToken, &s.TokenType, &s.Expiry, &s.CreatedAt, &s.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// UpdateTokens записывает обновлённый набор токенов.
func (r *PostgresRepository) UpdateTokens(ctx context.Context, s Session) error {
	var affected int64
	err := r.withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE sessions
			 SET access_token = $2, refresh_token = $3, id_token = $4, token_type = $5, expiry = $6, updated_at = now()
			 WHERE id = $1`,
			s.ID, s.AccessToken, s.RefreshToken, s.IDToken, s.TokenType, s.Expiry,
		)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update session tokens: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession удаляет сессию вместе с сохранёнными срезами UI.
func (r *PostgresRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteStaleSessions удаляет сессии, не обновлявшиеся дольше maxAge.
func (r *PostgresRepository) DeleteStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE updated_at < $1`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LoadSlices возвращает сохранённые срезы UI-стора сессии.
func (r *PostgresRepository) LoadSlices(ctx context.Context, sessionID string) (map[string][]byte, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT name, data FROM store_slices WHERE session_id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("select store slices: %w", err)
	}
	defer rows.Close()

	res := make(map[string][]byte)
	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan store slice: %w", err)
		}
		res[name] = data
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// SaveSlices перезаписывает срезы UI-стора сессии одной транзакцией.
func (r *PostgresRepository) SaveSlices(ctx context.Context, sessionID string, data map[string][]byte) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		batch := &pgx.Batch{}
		for name, value := range data {
			batch.Queue(
				`INSERT INTO store_slices (session_id, name, data) VALUES ($1, $2, $3)
				 ON CONFLICT (session_id, name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
				id, name, value,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return ErrSessionNotFound
			}
			return fmt.Errorf("upsert store slices: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

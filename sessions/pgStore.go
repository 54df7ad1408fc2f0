package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps sessions in the user_sessions table of a Postgres database.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Migrate creates the session table if it does not exist yet.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_sessions (
			sid VARCHAR(128) PRIMARY KEY,
			user_id BIGINT NOT NULL,
			expire TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_user_sessions_expire ON user_sessions (expire);
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_sessions: %w", err)
	}
	return nil
}

func (s *PGStore) Create(ctx context.Context, userID uint, ttl time.Duration) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}

	session := Session{ID: id, UserID: userID, Expires: time.Now().Add(ttl).UTC()}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO user_sessions (sid, user_id, expire) VALUES ($1, $2, $3)",
		session.ID, int64(session.UserID), session.Expires,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return &session, nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*Session, error) {
	var (
		session Session
		userID  int64
	)
	err := s.pool.QueryRow(ctx,
		"SELECT sid, user_id, expire FROM user_sessions WHERE sid = $1 AND expire > NOW()",
		id,
	).Scan(&session.ID, &userID, &session.Expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	session.UserID = uint(userID)
	return &session, nil
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM user_sessions WHERE sid = $1", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// StartPruning runs Prune every interval until ctx is done.
func (s *PGStore) StartPruning(ctx context.Context, interval time.Duration) {
	go runPruner(ctx, interval, s.Prune)
}

// Prune deletes expired rows.
func (s *PGStore) Prune(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM user_sessions WHERE expire <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

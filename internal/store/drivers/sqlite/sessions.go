package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Undertone0809/ecjtu/internal/domain"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) Upsert(ctx context.Context, s domain.StoredSession) error {
	cookies, err := json.Marshal(s.Cookies)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (student_id, access_token, cookies, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (student_id) DO UPDATE SET
			access_token = excluded.access_token,
			cookies      = excluded.cookies,
			updated_at   = excluded.updated_at
	`, s.StudentID, s.AccessToken, string(cookies), now, now)
	return err
}

func (r *sessionsRepo) GetByStudentID(ctx context.Context, studentID string) (domain.StoredSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT student_id, access_token, cookies, created_at, updated_at
		FROM sessions
		WHERE student_id = ?
	`, studentID)
	return scanSession(row)
}

func (r *sessionsRepo) GetByAccessToken(ctx context.Context, token string) (domain.StoredSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT student_id, access_token, cookies, created_at, updated_at
		FROM sessions
		WHERE access_token = ?
	`, token)
	return scanSession(row)
}

func scanSession(row *sql.Row) (domain.StoredSession, error) {
	var (
		s       domain.StoredSession
		cookies string
	)
	if err := row.Scan(&s.StudentID, &s.AccessToken, &cookies, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.StoredSession{}, mapNotFound(err)
	}
	if err := json.Unmarshal([]byte(cookies), &s.Cookies); err != nil {
		return domain.StoredSession{}, fmt.Errorf("decode cookies: %w", err)
	}
	return s, nil
}

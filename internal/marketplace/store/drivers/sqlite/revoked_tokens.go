package sqlite

import (
	"context"
	"database/sql"
	"time"
)

type revokedTokensRepo struct {
	db *sql.DB
}

func (r *revokedTokensRepo) RevokeToken(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (fingerprint, expires_at, revoked_at) VALUES (?, ?, ?)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		fingerprint, toMillis(expiresAt), toMillis(time.Now()),
	)
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, fingerprint string, now time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM revoked_tokens WHERE fingerprint = ? AND expires_at > ?`,
		fingerprint, toMillis(now),
	).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

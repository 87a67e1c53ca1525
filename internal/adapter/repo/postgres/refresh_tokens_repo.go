package postgres

import (
	"time"

	"github.com/fairyhunter13/jobtrackr/internal/domain"
)

// RefreshTokenRepo persists refresh tokens.
type RefreshTokenRepo struct{ Pool PgxPool }

// NewRefreshTokenRepo constructs a RefreshTokenRepo with the given pool.
func NewRefreshTokenRepo(p PgxPool) *RefreshTokenRepo { return &RefreshTokenRepo{Pool: p} }

// Add inserts a new refresh token.
func (r *RefreshTokenRepo) Add(ctx domain.Context, t *domain.RefreshToken) error {
	ctx, span := startSpan(ctx, "refresh_tokens", "Add", "INSERT")
	defer span.End()
	q := `INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at) VALUES ($1,$2,$3,$4,$5)`
	if _, err := r.Pool.Exec(ctx, q, t.ID, t.Token, t.UserID, t.ExpiresAt, t.CreatedAt); err != nil {
		return wrapErr("refresh_token.add", err)
	}
	return nil
}

// DeleteExpired removes tokens that expired at or before cutoff.
func (r *RefreshTokenRepo) DeleteExpired(ctx domain.Context, cutoff time.Time) (int64, error) {
	ctx, span := startSpan(ctx, "refresh_tokens", "DeleteExpired", "DELETE")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, wrapDeleteErr("refresh_token.delete_expired", err)
	}
	return tag.RowsAffected(), nil
}

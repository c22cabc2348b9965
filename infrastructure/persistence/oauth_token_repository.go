package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"youtube-auto-post/domain/model"
)

// OAuthTokenRepository stores the cached token in PostgreSQL, one row per
// (account, platform).
type OAuthTokenRepository struct {
	db        *sql.DB
	accountID string
	platform  string
}

func NewOAuthTokenRepository(db *sql.DB) *OAuthTokenRepository {
	return &OAuthTokenRepository{db: db, accountID: model.DefaultTokenAccountID, platform: model.PlatformYouTube}
}

func (r *OAuthTokenRepository) Load(ctx context.Context) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, account_id, platform, access_token, refresh_token, token_type, expires_at, scopes, created_at, updated_at
		FROM oauth_tokens WHERE account_id=$1 AND platform=$2`, r.accountID, r.platform)
	tok, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load oauth token: %w", err)
	}
	return tok, nil
}

func (r *OAuthTokenRepository) Save(ctx context.Context, t *model.OAuthToken) error {
	stampToken(t, r.accountID, r.platform)
	q := `INSERT INTO oauth_tokens (account_id, platform, access_token, refresh_token, token_type, expires_at, scopes, created_at, updated_at)
		  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		  ON CONFLICT (account_id, platform) DO UPDATE SET
			access_token=EXCLUDED.access_token,
			refresh_token=EXCLUDED.refresh_token,
			token_type=EXCLUDED.token_type,
			expires_at=EXCLUDED.expires_at,
			scopes=EXCLUDED.scopes,
			updated_at=EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, q, t.AccountID, t.Platform, t.AccessToken, t.RefreshToken, t.TokenType,
		nullTime(t.ExpiresAt), t.Scopes, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save oauth token: %w", err)
	}
	return nil
}

func stampToken(t *model.OAuthToken, accountID, platform string) {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	t.AccountID = accountID
	t.Platform = platform
}

func scanToken(row rowScanner) (*model.OAuthToken, error) {
	tok := &model.OAuthToken{}
	var exp sql.NullTime
	if err := row.Scan(&tok.ID, &tok.AccountID, &tok.Platform, &tok.AccessToken, &tok.RefreshToken, &tok.TokenType,
		&exp, &tok.Scopes, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		return nil, err
	}
	tok.ExpiresAt = timePtr(exp)
	return tok, nil
}

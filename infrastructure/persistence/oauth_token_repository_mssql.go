package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"youtube-auto-post/domain/model"
)

type OAuthTokenRepositoryMSSQL struct {
	db        *sql.DB
	accountID string
	platform  string
}

func NewOAuthTokenRepositoryMSSQL(db *sql.DB) *OAuthTokenRepositoryMSSQL {
	return &OAuthTokenRepositoryMSSQL{db: db, accountID: model.DefaultTokenAccountID, platform: model.PlatformYouTube}
}

// EnsureOAuthTokenSchemaMSSQL creates the oauth_tokens table for SQL Server if it does not exist.
func EnsureOAuthTokenSchemaMSSQL(db *sql.DB) error {
	ddl := `IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.oauth_tokens') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.[oauth_tokens] (
        id BIGINT IDENTITY(1,1) PRIMARY KEY,
        account_id NVARCHAR(128) NOT NULL,
        platform NVARCHAR(64) NOT NULL,
        access_token NVARCHAR(MAX) NOT NULL,
        refresh_token NVARCHAR(MAX) NOT NULL DEFAULT '',
        token_type NVARCHAR(32) NOT NULL DEFAULT '',
        expires_at DATETIME2 NULL,
        scopes NVARCHAR(MAX) NOT NULL DEFAULT '',
        created_at DATETIME2 NOT NULL,
        updated_at DATETIME2 NOT NULL
    );
    CREATE UNIQUE INDEX UX_oauth_tokens_account_platform ON dbo.[oauth_tokens](account_id, platform);
END`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("create oauth_tokens (mssql): %w", err)
	}
	return nil
}

func (r *OAuthTokenRepositoryMSSQL) Load(ctx context.Context) (*model.OAuthToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, account_id, platform, access_token, refresh_token, token_type, expires_at, scopes, created_at, updated_at
FROM dbo.[oauth_tokens] WHERE account_id=@p1 AND platform=@p2`, r.accountID, r.platform)
	tok, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load oauth token (mssql): %w", err)
	}
	return tok, nil
}

func (r *OAuthTokenRepositoryMSSQL) Save(ctx context.Context, t *model.OAuthToken) error {
	stampToken(t, r.accountID, r.platform)
	q := `MERGE dbo.[oauth_tokens] AS target
USING (VALUES (@p1, @p2)) AS src(account_id, platform)
ON target.account_id = src.account_id AND target.platform = src.platform
WHEN MATCHED THEN UPDATE SET
    access_token=@p3,
    refresh_token=@p4,
    token_type=@p5,
    expires_at=@p6,
    scopes=@p7,
    updated_at=@p9
WHEN NOT MATCHED THEN
    INSERT (account_id, platform, access_token, refresh_token, token_type, expires_at, scopes, created_at, updated_at)
    VALUES (@p1,@p2,@p3,@p4,@p5,@p6,@p7,@p8,@p9);`
	if _, err := r.db.ExecContext(ctx, q, t.AccountID, t.Platform, t.AccessToken, t.RefreshToken, t.TokenType,
		nullTime(t.ExpiresAt), t.Scopes, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save oauth token (mssql): %w", err)
	}
	return nil
}

package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsersTable, downCreateUsersTable)
}

func upCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE users (
	  id BIGSERIAL PRIMARY KEY,
	  name TEXT NOT NULL,
	  email TEXT UNIQUE NOT NULL,
	  password_hash BYTEA,
	  google_id TEXT,
	  avatar_url TEXT,
	  is_verified BOOLEAN NOT NULL DEFAULT FALSE,
	  verification_token_hash TEXT,
	  reset_token_hash TEXT,
	  reset_token_expires_at TIMESTAMP WITH TIME ZONE,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  last_login TIMESTAMP WITH TIME ZONE
	);

	CREATE UNIQUE INDEX users_google_id_idx ON users (google_id) WHERE google_id IS NOT NULL;
	CREATE INDEX users_reset_token_hash_idx ON users (reset_token_hash) WHERE reset_token_hash IS NOT NULL;
	CREATE INDEX users_verification_token_hash_idx ON users (verification_token_hash) WHERE verification_token_hash IS NOT NULL;
	`

	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

func downCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS users;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}

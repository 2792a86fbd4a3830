package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth_service/internal/config"
	"auth_service/internal/models"
	"auth_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const userColumns = `
	id, name, email, password_hash, google_id, avatar_url,
	is_verified, verification_token_hash,
	reset_token_hash, reset_token_expires_at,
	created_at, last_login
`

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(
	ctx context.Context,
	name, email string,
	passHash []byte,
	verificationTokenHash string,
) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (name, email, password_hash, verification_token_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, name, email, passHash, verificationTokenHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

// SaveOAuthUser creates a password-less, pre-verified user for a first-time
// Google login.
func (r *PostgresRepo) SaveOAuthUser(
	ctx context.Context,
	name, email, googleID string,
	avatarURL *string,
) (models.User, error) {
	const op = "storage.postgres.SaveOAuthUser"

	query := `
		INSERT INTO users (name, email, google_id, avatar_url, is_verified, last_login)
		VALUES ($1, $2, $3, $4, TRUE, now())
		RETURNING ` + userColumns

	u, err := r.scanUser(r.pool.QueryRow(ctx, query, name, email, googleID, avatarURL))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrUserExists
		}

		return models.User{}, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`

	u, err := r.scanUser(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, err
}

func (r *PostgresRepo) UserByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1;`

	u, err := r.scanUser(r.pool.QueryRow(ctx, query, googleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, err
}

func (r *PostgresRepo) UpdateLastLogin(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_login = now() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, userID)

	return err
}

func (r *PostgresRepo) SetResetToken(
	ctx context.Context,
	userID int64,
	tokenHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2
		WHERE id = $3
	`

	_, err := r.pool.Exec(ctx, query, tokenHash, expiresAt, userID)

	return err
}

// ConsumeResetToken replaces the password and clears the reset fields in a
// single conditional update. Matching on the hash and an unexpired deadline
// in the same statement means two concurrent consumers cannot both succeed.
func (r *PostgresRepo) ConsumeResetToken(
	ctx context.Context,
	tokenHash string,
	newPassHash []byte,
) (models.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL
		WHERE reset_token_hash = $1 AND reset_token_expires_at > now()
		RETURNING ` + userColumns

	u, err := r.scanUser(r.pool.QueryRow(ctx, query, tokenHash, newPassHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrTokenNotFound
	}

	return u, err
}

// ConsumeVerificationToken marks the matching user verified and clears the
// stored hash; same single-statement consume as ConsumeResetToken, without
// an expiry condition.
func (r *PostgresRepo) ConsumeVerificationToken(ctx context.Context, tokenHash string) (models.User, error) {
	query := `
		UPDATE users
		SET is_verified = TRUE, verification_token_hash = NULL
		WHERE verification_token_hash = $1
		RETURNING ` + userColumns

	u, err := r.scanUser(r.pool.QueryRow(ctx, query, tokenHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrTokenNotFound
	}

	return u, err
}

// LinkGoogleAccount attaches a Google identity to an existing user. The
// password hash is untouched; the avatar is only filled in when the account
// has none yet.
func (r *PostgresRepo) LinkGoogleAccount(
	ctx context.Context,
	userID int64,
	googleID string,
	avatarURL *string,
) (models.User, error) {
	const op = "storage.postgres.LinkGoogleAccount"

	query := `
		UPDATE users
		SET google_id = $2,
		    avatar_url = COALESCE(avatar_url, $3),
		    is_verified = TRUE,
		    last_login = now()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := r.scanUser(r.pool.QueryRow(ctx, query, userID, googleID, avatarURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PassHash,
		&u.GoogleID,
		&u.AvatarURL,
		&u.IsVerified,
		&u.VerificationTokenHash,
		&u.ResetTokenHash,
		&u.ResetTokenExpiresAt,
		&u.CreatedAt,
		&u.LastLogin,
	)

	return u, err
}

// * DSN is shared with the goose migration runner in cmd/authd.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}

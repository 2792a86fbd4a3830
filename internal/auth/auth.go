package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"auth_service/internal/lib/jwt"
	sl "auth_service/internal/lib/logger"
	"auth_service/internal/lib/onetime"
	"auth_service/internal/lib/passhash"
	"auth_service/internal/models"
	"auth_service/internal/oauth"
	"auth_service/internal/storage"
)

var (
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrSocialOnlyAccount     = errors.New("account uses social login")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidOrExpiredToken = errors.New("reset token is invalid or expired")
	ErrInvalidToken          = errors.New("verification token is invalid")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	usrUpdater  UserUpdater
	mail        MailPublisher
	tokens      *jwt.Issuer
	resetTTL    time.Duration
	frontendURL string
}

type UserSaver interface {
	SaveUser(ctx context.Context, name, email string, passHash []byte, verificationTokenHash string) (int64, error)
	SaveOAuthUser(ctx context.Context, name, email, googleID string, avatarURL *string) (models.User, error)
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByGoogleID(ctx context.Context, googleID string) (models.User, error)
}

type UserUpdater interface {
	UpdateLastLogin(ctx context.Context, userID int64) error
	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, tokenHash string, newPassHash []byte) (models.User, error)
	ConsumeVerificationToken(ctx context.Context, tokenHash string) (models.User, error)
	LinkGoogleAccount(ctx context.Context, userID int64, googleID string, avatarURL *string) (models.User, error)
}

type MailPublisher interface {
	SendMessage(ctx context.Context, msg models.MailMessage) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	userUpdater UserUpdater,
	mail MailPublisher,
	tokens *jwt.Issuer,
	resetTTL time.Duration,
	frontendURL string,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		usrUpdater:  userUpdater,
		mail:        mail,
		tokens:      tokens,
		resetTTL:    resetTTL,
		frontendURL: frontendURL,
	}
}

// Register creates a password account, mails a verification link and returns
// the new user together with a session token. The verification token is
// stored hashed on the user row; its plaintext leaves this method only inside
// the mailed link.
func (a *Auth) Register(ctx context.Context, name, email, password string) (models.User, string, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := passhash.Hash(password)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	verifyToken, err := onetime.New()
	if err != nil {
		log.Error("failed to generate verification token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, name, email, passHash, onetime.HashToken(verifyToken))
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("email already registered")
			return models.User{}, "", ErrEmailTaken
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	a.dispatchMail(ctx, log, models.MailMessage{
		Email:   email,
		Name:    name,
		Link:    fmt.Sprintf("%s/verify-email/%s", a.frontendURL, verifyToken),
		Purpose: models.MailPurposeVerifyEmail,
	})

	sessionToken, err := a.tokens.Issue(email)
	if err != nil {
		log.Error("failed to issue session token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", id))

	user := models.User{
		ID:       id,
		Name:     name,
		Email:    email,
		PassHash: passHash,
	}

	return user, sessionToken, nil
}

// Login checks credentials and returns the user with a fresh session token.
// Accounts created through Google login have no password hash and are
// rejected with ErrSocialOnlyAccount before any password comparison.
func (a *Auth) Login(ctx context.Context, email, password string) (models.User, string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return models.User{}, "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	if user.PassHash == nil {
		log.Warn("password login for social-only account")
		return models.User{}, "", ErrSocialOnlyAccount
	}

	if !passhash.Verify(password, user.PassHash) {
		log.Info("invalid credentials")
		return models.User{}, "", ErrInvalidCredentials
	}

	if err := a.usrUpdater.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Error("failed to update last login", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	sessionToken, err := a.tokens.Issue(user.Email)
	if err != nil {
		log.Error("failed to issue session token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.Int64("uid", user.ID))

	return user, sessionToken, nil
}

// ForgotPassword stores a hashed reset token valid for the configured window
// and mails the plaintext link. An unknown email is reported to the caller;
// that discloses account existence, which is the documented API behaviour.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	resetToken, err := onetime.New()
	if err != nil {
		log.Error("failed to generate reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	expiresAt := time.Now().Add(a.resetTTL)

	if err := a.usrUpdater.SetResetToken(ctx, user.ID, onetime.HashToken(resetToken), expiresAt); err != nil {
		log.Error("failed to store reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	a.dispatchMail(ctx, log, models.MailMessage{
		Email:   user.Email,
		Name:    user.Name,
		Link:    fmt.Sprintf("%s/reset-password/%s", a.frontendURL, resetToken),
		Purpose: models.MailPurposePasswordReset,
	})

	log.Info("reset token issued", slog.Int64("uid", user.ID))

	return nil
}

// ResetPassword consumes a reset token and installs the new password. The
// store clears hash and expiry in the same conditional update that matches
// them, so a token can be spent exactly once.
func (a *Auth) ResetPassword(ctx context.Context, token, newPassword string) (models.User, string, error) {
	const op = "auth.ResetPassword"

	log := a.log.With(slog.String("op", op))

	newPassHash, err := passhash.Hash(newPassword)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.usrUpdater.ConsumeResetToken(ctx, onetime.HashToken(token), newPassHash)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Warn("reset token invalid or expired")
			return models.User{}, "", ErrInvalidOrExpiredToken
		}

		log.Error("failed to consume reset token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	sessionToken, err := a.tokens.Issue(user.Email)
	if err != nil {
		log.Error("failed to issue session token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password reset", slog.Int64("uid", user.ID))

	return user, sessionToken, nil
}

// VerifyEmail consumes a verification token. No expiry: the token stays valid
// until spent.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	const op = "auth.VerifyEmail"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrUpdater.ConsumeVerificationToken(ctx, onetime.HashToken(token))
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			log.Warn("verification token invalid")
			return models.User{}, ErrInvalidToken
		}

		log.Error("failed to consume verification token", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("email verified", slog.Int64("uid", user.ID))

	return user, nil
}

// ResolveOAuth maps a Google identity onto a local account: an already linked
// google id wins, then an email match gets the identity linked to it, and
// otherwise a password-less pre-verified account is created. An existing
// password hash is never touched on the linking path.
func (a *Auth) ResolveOAuth(ctx context.Context, profile oauth.Profile) (models.User, string, error) {
	const op = "auth.ResolveOAuth"

	log := a.log.With(slog.String("op", op))

	user, err := a.resolveOAuthUser(ctx, log, profile)
	if err != nil {
		return models.User{}, "", err
	}

	sessionToken, err := a.tokens.Issue(user.Email)
	if err != nil {
		log.Error("failed to issue session token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("oauth login resolved", slog.Int64("uid", user.ID))

	return user, sessionToken, nil
}

func (a *Auth) resolveOAuthUser(ctx context.Context, log *slog.Logger, profile oauth.Profile) (models.User, error) {
	const op = "auth.resolveOAuthUser"

	var avatarURL *string
	if profile.AvatarURL != "" {
		avatarURL = &profile.AvatarURL
	}

	user, err := a.usrProvider.UserByGoogleID(ctx, profile.ID)
	if err == nil {
		if err := a.usrUpdater.UpdateLastLogin(ctx, user.ID); err != nil {
			log.Error("failed to update last login", sl.Err(err))
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
		return user, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to look up google id", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err = a.usrProvider.UserByEmail(ctx, profile.Email)
	if err == nil {
		linked, err := a.usrUpdater.LinkGoogleAccount(ctx, user.ID, profile.ID, avatarURL)
		if err != nil {
			log.Error("failed to link google account", sl.Err(err))
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}

		log.Info("google account linked", slog.Int64("uid", linked.ID))
		return linked, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		log.Error("failed to look up email", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := a.usrSaver.SaveOAuthUser(ctx, profile.Name, profile.Email, profile.ID, avatarURL)
	if err != nil {
		log.Error("failed to create oauth user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("oauth user created", slog.Int64("uid", created.ID))
	return created, nil
}

// dispatchMail is best-effort: once the token row is persisted the flow must
// succeed even when the queue is down, so a publish failure is only logged.
func (a *Auth) dispatchMail(ctx context.Context, log *slog.Logger, msg models.MailMessage) {
	if err := a.mail.SendMessage(ctx, msg); err != nil {
		log.Error("failed to publish mail message", sl.Err(err))
	}
}

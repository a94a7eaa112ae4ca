package services

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"
	"time"

	"icarus-bknd/internal/apperrors"
	"icarus-bknd/internal/auth"
	"icarus-bknd/internal/config"
	"icarus-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const maxActiveSessions = 2

type AuthService struct {
	db      *bun.DB
	jwt     *auth.JWTManager
	revoked RevocationStore
	cfg     *config.Config
	logr    *zap.Logger
}

func NewAuthService(db *bun.DB, jwt *auth.JWTManager, revoked RevocationStore, cfg *config.Config, logr *zap.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, revoked: revoked, cfg: cfg, logr: logr}
}

// HashPassword uses bcrypt
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Tokens *auth.TokenPair
	User   *models.User
}

// Register creates an unconfirmed account with a fresh external uuid.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, apperrors.InvalidCriteria("name", "Name is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidCriteria("email", "A valid email is required.")
	}
	if len(password) < 8 {
		return nil, apperrors.InvalidCriteria("password", "Password must be at least 8 characters.")
	}

	exists, err := s.db.NewSelect().Model((*models.User)(nil)).Where("email = ?", email).Exists(ctx)
	if err != nil {
		return nil, apperrors.StoreUnavailable("could not register account", err)
	}
	if exists {
		return nil, apperrors.InvalidCriteria("email", "An account with that email already exists.")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal("hash password", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		UUID:         uuid.New(),
		RegisteredOn: now,
		LastActive:   now,
	}
	if _, err := s.db.NewInsert().Model(u).Exec(ctx); err != nil {
		if isIntegrityViolation(err) {
			return nil, apperrors.InvalidCriteria("email", "An account with that email already exists.")
		}
		return nil, apperrors.StoreUnavailable("could not register account", err)
	}

	s.logr.Info("account registered", zap.String("user_uuid", u.UUID.String()))
	return u, nil
}

// LoginLocal checks email and password and issues a token pair.
func (s *AuthService) LoginLocal(ctx context.Context, email, password, deviceInfo string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u models.User
	err := s.db.NewSelect().Model(&u).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthenticated("There is no account associated with that email")
		}
		return nil, apperrors.StoreUnavailable("could not log in", err)
	}
	if err := ComparePassword(u.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthenticated("Invalid Credentials!")
	}

	u.LastActive = time.Now().UTC()
	if _, err := s.db.NewUpdate().Model(&u).Column("last_active").WherePK().Exec(ctx); err != nil {
		s.logr.Warn("failed to update last_active", zap.Error(err), zap.Int64("user_id", u.ID))
	}

	pair, err := s.issue(ctx, &u, deviceInfo)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: pair, User: &u}, nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User, deviceInfo string) (*auth.TokenPair, error) {
	pair, err := s.jwt.GenerateTokenPair(u.UUID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion)
	if err != nil {
		return nil, apperrors.Internal("sign tokens", err)
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp, pair.RefreshJTI, deviceInfo); err != nil {
		return nil, apperrors.StoreUnavailable("could not store session", err)
	}
	return pair, nil
}

// storeRefreshToken stores the refresh token hashed and keeps at most maxActiveSessions per user.
func (s *AuthService) storeRefreshToken(ctx context.Context, userID int64, refreshToken string, expiresAt time.Time, jti, deviceInfo string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.RefreshToken)(nil)).
			Where("user_id = ? AND expires_at < now()", userID).
			Exec(ctx); err != nil {
			return err
		}

		count, err := tx.NewSelect().Model((*models.RefreshToken)(nil)).
			Where("user_id = ? AND revoked = false", userID).
			Count(ctx)
		if err != nil {
			return err
		}
		if count >= maxActiveSessions {
			oldest := tx.NewSelect().Model((*models.RefreshToken)(nil)).
				Column("id").
				Where("user_id = ? AND revoked = false", userID).
				Order("created_at ASC").
				Limit(count - maxActiveSessions + 1)
			if _, err := tx.NewDelete().Model((*models.RefreshToken)(nil)).
				Where("id IN (?)", oldest).
				Exec(ctx); err != nil {
				return err
			}
		}

		rt := &models.RefreshToken{
			UserID:     userID,
			JTI:        jti,
			TokenHash:  auth.HashToken(refreshToken),
			DeviceInfo: &deviceInfo,
			CreatedAt:  time.Now().UTC(),
			ExpiresAt:  expiresAt,
		}
		_, err = tx.NewInsert().Model(rt).Exec(ctx)
		return err
	})
}

// Refresh verifies a refresh token, revokes its row and issues a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, deviceInfo string) (*auth.TokenPair, error) {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}
	if claims.Kind != auth.RefreshToken {
		return nil, apperrors.Unauthenticated("not a refresh token")
	}

	var rt models.RefreshToken
	err = s.db.NewSelect().Model(&rt).
		Where("jti = ? AND token_hash = ? AND revoked = false AND expires_at > now()", claims.JTI, auth.HashToken(refreshToken)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthenticated("refresh token not found or revoked")
		}
		return nil, apperrors.StoreUnavailable("could not refresh session", err)
	}

	var u models.User
	if err := s.db.NewSelect().Model(&u).Where("id = ?", rt.UserID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthenticated("account no longer exists")
		}
		return nil, apperrors.StoreUnavailable("could not refresh session", err)
	}
	if u.TokenVersion != claims.Version {
		return nil, apperrors.Unauthenticated("refresh token revoked")
	}

	if _, err := s.db.NewUpdate().Model((*models.RefreshToken)(nil)).
		Set("revoked = true").
		Where("id = ?", rt.ID).
		Exec(ctx); err != nil {
		return nil, apperrors.StoreUnavailable("could not refresh session", err)
	}

	return s.issue(ctx, &u, deviceInfo)
}

// Logout revokes the caller's access token and, when given, its refresh token.
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if access != nil {
		if err := s.revoked.Revoke(ctx, access.JTI, access.ExpiresAt); err != nil {
			return apperrors.StoreUnavailable("could not log out", err)
		}
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		// an expired or foreign refresh token has nothing left to revoke
		s.logr.Debug("ignoring unusable refresh token on logout", zap.Error(err))
		return nil
	}
	if _, err := s.db.NewUpdate().Model((*models.RefreshToken)(nil)).
		Set("revoked = true").
		Where("jti = ?", claims.JTI).
		Exec(ctx); err != nil {
		return apperrors.StoreUnavailable("could not log out", err)
	}
	return nil
}

// Authenticate validates an access token and returns its claims. It rejects refresh
// tokens, revoked ids and tokens issued before the account's token version changed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwt.VerifyToken(token)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid or expired token")
	}
	if claims.Kind != auth.AccessToken {
		return nil, apperrors.Unauthenticated("not an access token")
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, apperrors.StoreUnavailable("could not verify token", err)
	}
	if revoked {
		return nil, apperrors.Unauthenticated("token revoked")
	}

	valid, err := s.CheckTokenVersion(ctx, claims.Subject, claims.Version)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperrors.Unauthenticated("token revoked or invalid")
	}
	return claims, nil
}

func (s *AuthService) CheckTokenVersion(ctx context.Context, userUUID string, tokenVersion int) (bool, error) {
	var version int
	err := s.db.NewSelect().Model((*models.User)(nil)).
		Column("token_version").
		Where("uuid = ?", userUUID).
		Scan(ctx, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, apperrors.StoreUnavailable("could not verify token", err)
	}
	return version == tokenVersion, nil
}

// Me loads the account behind the caller's uuid.
func (s *AuthService) Me(ctx context.Context, userUUID string) (*models.User, error) {
	var u models.User
	err := s.db.NewSelect().Model(&u).Where("uuid = ?", userUUID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Unauthenticated("Invalid access credentials.")
		}
		return nil, apperrors.StoreUnavailable("could not load account", err)
	}
	return &u, nil
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/auth"
	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
)

const bcryptCost = 10

// TokenPair is an issued access/refresh token couple.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessTokenID, refreshToken string) error
	Register(ctx context.Context, actor *Identity, email, password string, role model.Role, workerID *uuid.UUID) (*model.User, error)
	ChangePassword(ctx context.Context, id Identity, current, next string) error
}

type authService struct {
	userRepo   repository.UserRepository
	workerRepo repository.WorkerRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	log        zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	workerRepo repository.WorkerRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	log zerolog.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		workerRepo: workerRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		log:        log,
	}
}

func (s *authService) issuePair(ctx context.Context, user *model.User) (*TokenPair, error) {
	_, accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refreshID, refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, refreshID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return nil, apperr.Internal(err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login authenticates a user and returns a fresh token pair.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, apperr.Unauthorized(apperr.MsgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperr.Unauthorized(apperr.MsgInvalidCredentials)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh rotates a refresh token: the presented token is validated against
// the store, consumed, and a brand new pair is issued. A replayed token fails.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID != claims.UserID {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}

	// Single use: consume before reissuing.
	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.UserID, claims.ID); err != nil {
		return nil, apperr.Internal(err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized(apperr.MsgInvalidToken)
	}
	return s.issuePair(ctx, user)
}

// Logout revokes the presented refresh token and blacklists the current
// access token for its remaining lifetime.
func (s *authService) Logout(ctx context.Context, accessTokenID, refreshToken string) error {
	if accessTokenID != "" {
		if err := s.tokenStore.BlacklistAccessToken(ctx, accessTokenID, auth.AccessTokenExpiry); err != nil {
			s.log.Warn().Err(err).Msg("auth: blacklist access token")
		}
	}

	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return apperr.Unauthorized(apperr.MsgInvalidToken)
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.UserID, claims.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Register provisions a user account. The very first account may be created
// unauthenticated (bootstrap); afterwards only an ADMIN may provision.
func (s *authService) Register(ctx context.Context, actor *Identity, email, password string, role model.Role, workerID *uuid.UUID) (*model.User, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if total > 0 && (actor == nil || actor.Role != model.RoleAdmin) {
		return nil, apperr.Forbidden(apperr.MsgAccessDenied)
	}
	if !role.Valid() {
		return nil, apperr.Validation(apperr.MsgValidationFailed, map[string]string{"role": "Rôle invalide"})
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperr.Conflict(apperr.MsgEmailTaken)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	if workerID != nil {
		if _, err := s.workerRepo.FindByID(ctx, *workerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound(apperr.MsgWorkerNotFound)
			}
			return nil, apperr.Internal(err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		WorkerID:     workerID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every live refresh token of the user.
func (s *authService) ChangePassword(ctx context.Context, id Identity, current, next string) error {
	user, err := s.userRepo.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(apperr.MsgUserNotFound)
		}
		return apperr.Internal(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperr.Unauthorized(apperr.MsgInvalidCredentials)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	user.PasswordHash = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperr.Internal(err)
	}

	if err := s.tokenStore.RevokeAll(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("auth: revoke sessions after password change")
	}
	return nil
}

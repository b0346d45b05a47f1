package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/auth"
	"fieldtrack/internal/model"
)

func newAuthService() (AuthService, *MockUserRepository, *MockWorkerRepository, *MockTokenStore, *auth.JWTService) {
	userRepo := new(MockUserRepository)
	workerRepo := new(MockWorkerRepository)
	tokenStore := new(MockTokenStore)
	jwtService := auth.NewJWTService("test-secret")
	svc := NewAuthService(userRepo, workerRepo, jwtService, tokenStore, zerolog.Nop())
	return svc, userRepo, workerRepo, tokenStore, jwtService
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError bool
	}{
		{
			name:     "successful login",
			email:    "admin@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
				userID := uuid.New()
				mRepo.On("FindByEmail", mock.Anything, "admin@example.com").Return(&model.User{
					ID:           userID,
					Email:        "admin@example.com",
					PasswordHash: string(hashed),
					Role:         model.RoleAdmin,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: true,
		},
		{
			name:     "wrong password",
			email:    "admin@example.com",
			password: "wrongpass",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
				mRepo.On("FindByEmail", mock.Anything, "admin@example.com").Return(&model.User{
					ID:           uuid.New(),
					Email:        "admin@example.com",
					PasswordHash: string(hashed),
				}, nil)
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo, _, tokenStore, _ := newAuthService()
			tt.setupMock(userRepo, tokenStore)

			pair, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError {
				assertKind(t, err, apperr.KindAuthentication)
				assert.Equal(t, apperr.MsgInvalidCredentials, apperr.From(err).Message)
				assert.Nil(t, pair)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, pair.AccessToken)
				assert.NotEmpty(t, pair.RefreshToken)
				assert.Equal(t, tt.email, user.Email)
			}

			userRepo.AssertExpectations(t)
			tokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("valid token is rotated", func(t *testing.T) {
		svc, userRepo, _, tokenStore, jwtService := newAuthService()
		user := &model.User{ID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin}
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
		assert.NoError(t, err)

		tokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(user.ID, nil)
		tokenStore.On("DeleteRefreshToken", mock.Anything, user.ID, tokenID).Return(nil)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		tokenStore.On("StoreRefreshToken", mock.Anything, mock.Anything, user.ID, auth.RefreshTokenExpiry).Return(nil)

		pair, err := svc.Refresh(context.Background(), refreshToken)

		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEqual(t, refreshToken, pair.RefreshToken)
		// The consumed ID must be deleted before the new pair is stored.
		tokenStore.AssertCalled(t, "DeleteRefreshToken", mock.Anything, user.ID, tokenID)
	})

	t.Run("replayed token is refused", func(t *testing.T) {
		svc, _, _, tokenStore, jwtService := newAuthService()
		user := &model.User{ID: uuid.New(), Email: "admin@example.com"}
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
		assert.NoError(t, err)

		// Already consumed: the store no longer knows it.
		tokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, assert.AnError)

		pair, err := svc.Refresh(context.Background(), refreshToken)

		assertKind(t, err, apperr.KindAuthentication)
		assert.Nil(t, pair)
		tokenStore.AssertNotCalled(t, "DeleteRefreshToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("garbage token is refused", func(t *testing.T) {
		svc, _, _, _, _ := newAuthService()

		pair, err := svc.Refresh(context.Background(), "not-a-jwt")

		assertKind(t, err, apperr.KindAuthentication)
		assert.Nil(t, pair)
	})

	t.Run("token owned by another user is refused", func(t *testing.T) {
		svc, _, _, tokenStore, jwtService := newAuthService()
		user := &model.User{ID: uuid.New(), Email: "admin@example.com"}
		tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
		assert.NoError(t, err)

		tokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.New(), nil)

		_, err = svc.Refresh(context.Background(), refreshToken)

		assertKind(t, err, apperr.KindAuthentication)
	})
}

func TestAuthService_Register(t *testing.T) {
	adminActor := &Identity{UserID: uuid.New(), Role: model.RoleAdmin}

	tests := []struct {
		name         string
		actor        *Identity
		email        string
		role         model.Role
		workerID     *uuid.UUID
		setupMock    func(*MockUserRepository, *MockWorkerRepository)
		wantErr      bool
		expectedKind apperr.Kind
	}{
		{
			name:  "bootstrap: first account without an actor",
			actor: nil,
			email: "admin@example.com",
			role:  model.RoleAdmin,
			setupMock: func(mUser *MockUserRepository, mWorker *MockWorkerRepository) {
				mUser.On("Count", mock.Anything).Return(int64(0), nil)
				mUser.On("FindByEmail", mock.Anything, "admin@example.com").Return(nil, gorm.ErrRecordNotFound)
				mUser.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "anonymous provisioning is refused once users exist",
			actor: nil,
			email: "new@example.com",
			role:  model.RoleMonteur,
			setupMock: func(mUser *MockUserRepository, mWorker *MockWorkerRepository) {
				mUser.On("Count", mock.Anything).Return(int64(3), nil)
			},
			wantErr:      true,
			expectedKind: apperr.KindAuthorization,
		},
		{
			name:  "supervisor cannot provision",
			actor: &Identity{UserID: uuid.New(), Role: model.RoleSuperviseur},
			email: "new@example.com",
			role:  model.RoleMonteur,
			setupMock: func(mUser *MockUserRepository, mWorker *MockWorkerRepository) {
				mUser.On("Count", mock.Anything).Return(int64(3), nil)
			},
			wantErr:      true,
			expectedKind: apperr.KindAuthorization,
		},
		{
			name:  "email already used",
			actor: adminActor,
			email: "taken@example.com",
			role:  model.RoleMonteur,
			setupMock: func(mUser *MockUserRepository, mWorker *MockWorkerRepository) {
				mUser.On("Count", mock.Anything).Return(int64(3), nil)
				mUser.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
			},
			wantErr:      true,
			expectedKind: apperr.KindConflict,
		},
		{
			name:  "invalid role",
			actor: adminActor,
			email: "new@example.com",
			role:  "CHEF",
			setupMock: func(mUser *MockUserRepository, mWorker *MockWorkerRepository) {
				mUser.On("Count", mock.Anything).Return(int64(3), nil)
			},
			wantErr:      true,
			expectedKind: apperr.KindValidation,
		},
		{
			name:     "unknown linked worker",
			actor:    adminActor,
			email:    "new@example.com",
			role:     model.RoleMonteur,
			workerID: ptrUUID(uuid.New()),
			setupMock: func(mUser *MockUserRepository, mWorker *MockWorkerRepository) {
				mUser.On("Count", mock.Anything).Return(int64(3), nil)
				mUser.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				mWorker.On("FindByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr:      true,
			expectedKind: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, userRepo, workerRepo, _, _ := newAuthService()
			tt.setupMock(userRepo, workerRepo)

			user, err := svc.Register(context.Background(), tt.actor, tt.email, "password123", tt.role, tt.workerID)

			if tt.wantErr {
				assertKind(t, err, tt.expectedKind)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, "password123", user.PasswordHash)
			}

			userRepo.AssertExpectations(t)
			workerRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("wrong current password", func(t *testing.T) {
		svc, userRepo, _, _, _ := newAuthService()
		hashed, _ := bcrypt.GenerateFromPassword([]byte("current123"), 10)
		id := Identity{UserID: uuid.New()}
		userRepo.On("FindByID", mock.Anything, id.UserID).Return(&model.User{
			ID: id.UserID, PasswordHash: string(hashed),
		}, nil)

		err := svc.ChangePassword(context.Background(), id, "wrong", "next12345")

		assertKind(t, err, apperr.KindAuthentication)
	})

	t.Run("success revokes every session", func(t *testing.T) {
		svc, userRepo, _, tokenStore, _ := newAuthService()
		hashed, _ := bcrypt.GenerateFromPassword([]byte("current123"), 10)
		id := Identity{UserID: uuid.New()}
		userRepo.On("FindByID", mock.Anything, id.UserID).Return(&model.User{
			ID: id.UserID, PasswordHash: string(hashed),
		}, nil)
		userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("next12345")) == nil
		})).Return(nil)
		tokenStore.On("RevokeAll", mock.Anything, id.UserID).Return(nil)

		err := svc.ChangePassword(context.Background(), id, "current123", "next12345")

		assert.NoError(t, err)
		tokenStore.AssertExpectations(t)
	})
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, _, tokenStore, jwtService := newAuthService()
	user := &model.User{ID: uuid.New(), Email: "admin@example.com"}
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(user)
	assert.NoError(t, err)

	tokenStore.On("BlacklistAccessToken", mock.Anything, "access-jti", auth.AccessTokenExpiry).Return(nil)
	tokenStore.On("DeleteRefreshToken", mock.Anything, user.ID, tokenID).Return(nil)

	err = svc.Logout(context.Background(), "access-jti", refreshToken)

	assert.NoError(t, err)
	tokenStore.AssertExpectations(t)
}

func ptrUUID(id uuid.UUID) *uuid.UUID {
	return &id
}

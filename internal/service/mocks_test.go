package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fieldtrack/internal/mailer"
	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
)

// MockWorkSheetRepository is a mock implementation of WorkSheetRepository.
type MockWorkSheetRepository struct {
	mock.Mock
}

func (m *MockWorkSheetRepository) Create(ctx context.Context, sheet *model.WorkSheet) error {
	args := m.Called(ctx, sheet)
	return args.Error(0)
}

func (m *MockWorkSheetRepository) Update(ctx context.Context, sheet *model.WorkSheet) error {
	args := m.Called(ctx, sheet)
	return args.Error(0)
}

func (m *MockWorkSheetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkSheetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkSheet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkSheet), args.Error(1)
}

func (m *MockWorkSheetRepository) Find(ctx context.Context, filter repository.SheetFilter, offset, limit int) ([]model.WorkSheet, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkSheet), args.Error(1)
}

func (m *MockWorkSheetRepository) Count(ctx context.Context, filter repository.SheetFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWorkSheetRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to model.SheetStatus, changes map[string]interface{}) (bool, error) {
	args := m.Called(ctx, id, from, to, changes)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkSheetRepository) SiteStats(ctx context.Context, siteID uuid.UUID) (*repository.SiteStats, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SiteStats), args.Error(1)
}

func (m *MockWorkSheetRepository) WorkerMonthStats(ctx context.Context, workerID uuid.UUID, month, year int) (*repository.WorkerStats, error) {
	args := m.Called(ctx, workerID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.WorkerStats), args.Error(1)
}

func (m *MockWorkSheetRepository) FindStaleDrafts(ctx context.Context, olderThan time.Time) ([]model.WorkSheet, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkSheet), args.Error(1)
}

func (m *MockWorkSheetRepository) RollupSince(ctx context.Context, since time.Time) (*repository.WeeklyRollup, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.WeeklyRollup), args.Error(1)
}

// MockWorkerRepository is a mock implementation of WorkerRepository.
type MockWorkerRepository struct {
	mock.Mock
}

func (m *MockWorkerRepository) Create(ctx context.Context, worker *model.Worker) error {
	args := m.Called(ctx, worker)
	return args.Error(0)
}

func (m *MockWorkerRepository) Update(ctx context.Context, worker *model.Worker) error {
	args := m.Called(ctx, worker)
	return args.Error(0)
}

func (m *MockWorkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Worker), args.Error(1)
}

func (m *MockWorkerRepository) FindByEmail(ctx context.Context, email string) (*model.Worker, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Worker), args.Error(1)
}

func (m *MockWorkerRepository) FindByCode(ctx context.Context, code string) (*model.Worker, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Worker), args.Error(1)
}

func (m *MockWorkerRepository) List(ctx context.Context, actifOnly bool, offset, limit int) ([]model.Worker, error) {
	args := m.Called(ctx, actifOnly, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Worker), args.Error(1)
}

func (m *MockWorkerRepository) Count(ctx context.Context, actifOnly bool) (int64, error) {
	args := m.Called(ctx, actifOnly)
	return args.Get(0).(int64), args.Error(1)
}

// MockSiteRepository is a mock implementation of SiteRepository.
type MockSiteRepository struct {
	mock.Mock
}

func (m *MockSiteRepository) Create(ctx context.Context, site *model.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteRepository) Update(ctx context.Context, site *model.Site) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockSiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Site), args.Error(1)
}

func (m *MockSiteRepository) FindByReference(ctx context.Context, reference string) (*model.Site, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Site), args.Error(1)
}

func (m *MockSiteRepository) List(ctx context.Context, actifOnly bool, offset, limit int) ([]model.Site, error) {
	args := m.Called(ctx, actifOnly, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Site), args.Error(1)
}

func (m *MockSiteRepository) Count(ctx context.Context, actifOnly bool) (int64, error) {
	args := m.Called(ctx, actifOnly)
	return args.Get(0).(int64), args.Error(1)
}

// MockExpenseRepository is a mock implementation of ExpenseRepository.
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListByWorkSheet(ctx context.Context, sheetID uuid.UUID) ([]model.Expense, error) {
	args := m.Called(ctx, sheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Expense), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByRoles(ctx context.Context, roles ...model.Role) ([]model.User, error) {
	callArgs := make([]interface{}, 0, len(roles)+1)
	callArgs = append(callArgs, ctx)
	for _, r := range roles {
		callArgs = append(callArgs, r)
	}
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string) error {
	args := m.Called(ctx, userID, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenStore) PruneUserSet(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifySubmission(sheet *model.WorkSheet, supervisorEmails []string) mailer.Result {
	args := m.Called(sheet, supervisorEmails)
	return args.Get(0).(mailer.Result)
}

func (m *MockNotifier) NotifyValidation(sheet *model.WorkSheet, validatorLabel string) mailer.Result {
	args := m.Called(sheet, validatorLabel)
	return args.Get(0).(mailer.Result)
}

func (m *MockNotifier) NotifyRejection(sheet *model.WorkSheet, rejectorLabel, reason string) mailer.Result {
	args := m.Called(sheet, rejectorLabel, reason)
	return args.Get(0).(mailer.Result)
}

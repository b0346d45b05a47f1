package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/mailer"
	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
)

type sheetServiceMocks struct {
	sheetRepo   *MockWorkSheetRepository
	workerRepo  *MockWorkerRepository
	siteRepo    *MockSiteRepository
	expenseRepo *MockExpenseRepository
	userRepo    *MockUserRepository
	notifier    *MockNotifier
}

func newSheetService() (WorkSheetService, *sheetServiceMocks) {
	m := &sheetServiceMocks{
		sheetRepo:   new(MockWorkSheetRepository),
		workerRepo:  new(MockWorkerRepository),
		siteRepo:    new(MockSiteRepository),
		expenseRepo: new(MockExpenseRepository),
		userRepo:    new(MockUserRepository),
		notifier:    new(MockNotifier),
	}
	svc := NewWorkSheetService(m.sheetRepo, m.workerRepo, m.siteRepo, m.expenseRepo, m.userRepo, m.notifier, zerolog.Nop())
	return svc, m
}

func adminIdentity() Identity {
	return Identity{UserID: uuid.New(), Email: "admin@example.com", Role: model.RoleAdmin}
}

func monteurIdentity(workerID uuid.UUID) Identity {
	return Identity{UserID: uuid.New(), Email: "monteur@example.com", Role: model.RoleMonteur, WorkerID: &workerID}
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	assert.Error(t, err)
	assert.Equal(t, kind, apperr.From(err).Kind)
}

func TestWorkSheetService_Create(t *testing.T) {
	workerID := uuid.New()
	siteID := uuid.New()

	validInput := CreateSheetInput{
		WorkerID:    workerID,
		SiteID:      siteID,
		DateTravail: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		HeureDebut:  "08:00",
		HeureFin:    "16:30",
		Description: "Tirage de câbles",
	}

	tests := []struct {
		name         string
		identity     Identity
		input        CreateSheetInput
		setupMock    func(*sheetServiceMocks)
		wantErr      bool
		expectedKind apperr.Kind
		checkSheet   func(*testing.T, *model.WorkSheet)
	}{
		{
			name:     "admin creates a draft",
			identity: adminIdentity(),
			input:    validInput,
			setupMock: func(m *sheetServiceMocks) {
				m.workerRepo.On("FindByID", mock.Anything, workerID).Return(&model.Worker{ID: workerID}, nil)
				m.siteRepo.On("FindByID", mock.Anything, siteID).Return(&model.Site{ID: siteID}, nil)
				m.sheetRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.WorkSheet")).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*model.WorkSheet).ID = uuid.New()
				})
				m.sheetRepo.On("FindByID", mock.Anything, mock.Anything).Return(&model.WorkSheet{
					WorkerID: workerID, SiteID: siteID, Statut: model.StatusBrouillon, HeuresTotal: 8.5,
				}, nil)
			},
			checkSheet: func(t *testing.T, sheet *model.WorkSheet) {
				assert.Equal(t, model.StatusBrouillon, sheet.Statut)
				assert.Equal(t, 8.5, sheet.HeuresTotal)
			},
		},
		{
			name:     "monteur is forced onto its own worker",
			identity: monteurIdentity(workerID),
			input: CreateSheetInput{
				WorkerID:    uuid.New(), // someone else's, must be overridden
				SiteID:      siteID,
				DateTravail: validInput.DateTravail,
				HeureDebut:  "08:00",
				HeureFin:    "12:00",
			},
			setupMock: func(m *sheetServiceMocks) {
				m.workerRepo.On("FindByID", mock.Anything, workerID).Return(&model.Worker{ID: workerID}, nil)
				m.siteRepo.On("FindByID", mock.Anything, siteID).Return(&model.Site{ID: siteID}, nil)
				m.sheetRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *model.WorkSheet) bool {
					return s.WorkerID == workerID
				})).Return(nil)
				m.sheetRepo.On("FindByID", mock.Anything, mock.Anything).Return(&model.WorkSheet{
					WorkerID: workerID, SiteID: siteID, Statut: model.StatusBrouillon, HeuresTotal: 4,
				}, nil)
			},
			checkSheet: func(t *testing.T, sheet *model.WorkSheet) {
				assert.Equal(t, workerID, sheet.WorkerID)
			},
		},
		{
			name:         "monteur without linked worker is refused",
			identity:     Identity{UserID: uuid.New(), Role: model.RoleMonteur},
			input:        validInput,
			setupMock:    func(m *sheetServiceMocks) {},
			wantErr:      true,
			expectedKind: apperr.KindAuthorization,
		},
		{
			name:     "unknown worker",
			identity: adminIdentity(),
			input:    validInput,
			setupMock: func(m *sheetServiceMocks) {
				m.workerRepo.On("FindByID", mock.Anything, workerID).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr:      true,
			expectedKind: apperr.KindNotFound,
		},
		{
			name:     "malformed start time",
			identity: adminIdentity(),
			input: CreateSheetInput{
				WorkerID: workerID, SiteID: siteID, DateTravail: validInput.DateTravail,
				HeureDebut: "8h00", HeureFin: "16:30",
			},
			setupMock: func(m *sheetServiceMocks) {
				m.workerRepo.On("FindByID", mock.Anything, workerID).Return(&model.Worker{ID: workerID}, nil)
				m.siteRepo.On("FindByID", mock.Anything, siteID).Return(&model.Site{ID: siteID}, nil)
			},
			wantErr:      true,
			expectedKind: apperr.KindValidation,
		},
		{
			name:     "end before start",
			identity: adminIdentity(),
			input: CreateSheetInput{
				WorkerID: workerID, SiteID: siteID, DateTravail: validInput.DateTravail,
				HeureDebut: "16:30", HeureFin: "08:00",
			},
			setupMock: func(m *sheetServiceMocks) {
				m.workerRepo.On("FindByID", mock.Anything, workerID).Return(&model.Worker{ID: workerID}, nil)
				m.siteRepo.On("FindByID", mock.Anything, siteID).Return(&model.Site{ID: siteID}, nil)
			},
			wantErr:      true,
			expectedKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSheetService()
			tt.setupMock(m)

			sheet, err := svc.Create(context.Background(), tt.identity, tt.input)

			if tt.wantErr {
				assertKind(t, err, tt.expectedKind)
				assert.Nil(t, sheet)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, sheet)
				if tt.checkSheet != nil {
					tt.checkSheet(t, sheet)
				}
			}
			m.sheetRepo.AssertExpectations(t)
			m.workerRepo.AssertExpectations(t)
		})
	}
}

func TestWorkSheetService_Submit(t *testing.T) {
	sheetID := uuid.New()
	workerID := uuid.New()
	draft := func() *model.WorkSheet {
		return &model.WorkSheet{ID: sheetID, WorkerID: workerID, Statut: model.StatusBrouillon}
	}

	t.Run("draft is submitted and supervisors notified", func(t *testing.T) {
		svc, m := newSheetService()
		persisted := draft()
		persisted.Statut = model.StatusSoumis
		persisted.UpdatedAt = time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(draft(), nil).Once()
		m.sheetRepo.On("UpdateStatusIf", mock.Anything, sheetID, model.StatusBrouillon, model.StatusSoumis, mock.Anything).Return(true, nil)
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(persisted, nil).Once()
		m.userRepo.On("FindByRoles", mock.Anything, model.RoleAdmin, model.RoleSuperviseur).Return([]model.User{
			{Email: "chef@example.com"},
		}, nil)
		m.notifier.On("NotifySubmission", persisted, []string{"chef@example.com"}).Return(mailer.Result{Sent: true})

		sheet, err := svc.Submit(context.Background(), monteurIdentity(workerID), sheetID)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusSoumis, sheet.Statut)
		// The re-read row comes back, not the pre-transition copy.
		assert.Equal(t, persisted.UpdatedAt, sheet.UpdatedAt)
		m.notifier.AssertExpectations(t)
	})

	t.Run("already submitted sheet cannot be submitted again", func(t *testing.T) {
		svc, m := newSheetService()
		submitted := draft()
		submitted.Statut = model.StatusSoumis
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(submitted, nil)
		m.sheetRepo.On("UpdateStatusIf", mock.Anything, sheetID, model.StatusBrouillon, model.StatusSoumis, mock.Anything).Return(false, nil)

		sheet, err := svc.Submit(context.Background(), monteurIdentity(workerID), sheetID)

		assertKind(t, err, apperr.KindInvalidTransition)
		assert.Nil(t, sheet)
		m.notifier.AssertNotCalled(t, "NotifySubmission", mock.Anything, mock.Anything)
	})

	t.Run("monteur cannot submit another worker's sheet", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(draft(), nil)

		_, err := svc.Submit(context.Background(), monteurIdentity(uuid.New()), sheetID)

		assertKind(t, err, apperr.KindAuthorization)
		m.sheetRepo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("notification failure does not fail the transition", func(t *testing.T) {
		svc, m := newSheetService()
		persisted := draft()
		persisted.Statut = model.StatusSoumis
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(draft(), nil).Once()
		m.sheetRepo.On("UpdateStatusIf", mock.Anything, sheetID, model.StatusBrouillon, model.StatusSoumis, mock.Anything).Return(true, nil)
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(persisted, nil).Once()
		m.userRepo.On("FindByRoles", mock.Anything, model.RoleAdmin, model.RoleSuperviseur).Return(nil, assert.AnError)
		m.notifier.On("NotifySubmission", mock.Anything, mock.Anything).Return(mailer.Result{Err: assert.AnError})

		sheet, err := svc.Submit(context.Background(), monteurIdentity(workerID), sheetID)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusSoumis, sheet.Statut)
	})
}

func TestWorkSheetService_Validate(t *testing.T) {
	sheetID := uuid.New()
	submitted := func() *model.WorkSheet {
		return &model.WorkSheet{ID: sheetID, WorkerID: uuid.New(), Statut: model.StatusSoumis}
	}

	t.Run("supervisor validates a submitted sheet", func(t *testing.T) {
		svc, m := newSheetService()
		id := Identity{UserID: uuid.New(), Email: "chef@example.com", Role: model.RoleSuperviseur}
		validatorID := id.UserID
		persisted := submitted()
		persisted.Statut = model.StatusValide
		persisted.ValidatedByID = &validatorID
		persisted.ValidatedBy = &model.User{ID: validatorID, Email: id.Email}
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(submitted(), nil).Once()
		m.sheetRepo.On("UpdateStatusIf", mock.Anything, sheetID, model.StatusSoumis, model.StatusValide,
			map[string]interface{}{"validated_by_id": id.UserID}).Return(true, nil)
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(persisted, nil).Once()
		m.notifier.On("NotifyValidation", persisted, "chef@example.com").Return(mailer.Result{Sent: true})

		sheet, err := svc.Validate(context.Background(), id, sheetID)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusValide, sheet.Statut)
		assert.NotNil(t, sheet.ValidatedByID)
		assert.Equal(t, id.UserID, *sheet.ValidatedByID)
		// The validator relation is loaded on the returned sheet.
		assert.NotNil(t, sheet.ValidatedBy)
	})

	t.Run("monteur cannot validate", func(t *testing.T) {
		svc, m := newSheetService()

		_, err := svc.Validate(context.Background(), monteurIdentity(uuid.New()), sheetID)

		assertKind(t, err, apperr.KindAuthorization)
		m.sheetRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("draft cannot be validated", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{ID: sheetID, Statut: model.StatusBrouillon}, nil)
		m.sheetRepo.On("UpdateStatusIf", mock.Anything, sheetID, model.StatusSoumis, model.StatusValide, mock.Anything).Return(false, nil)

		_, err := svc.Validate(context.Background(), adminIdentity(), sheetID)

		assertKind(t, err, apperr.KindInvalidTransition)
	})
}

func TestWorkSheetService_Reject(t *testing.T) {
	sheetID := uuid.New()

	t.Run("rejection records the reason", func(t *testing.T) {
		svc, m := newSheetService()
		id := adminIdentity()
		rejectorID := id.UserID
		persisted := &model.WorkSheet{
			ID: sheetID, Statut: model.StatusRejete,
			ValidatedByID: &rejectorID, MotifRejet: "Heures incohérentes",
		}
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{ID: sheetID, Statut: model.StatusSoumis}, nil).Once()
		m.sheetRepo.On("UpdateStatusIf", mock.Anything, sheetID, model.StatusSoumis, model.StatusRejete,
			map[string]interface{}{"validated_by_id": id.UserID, "motif_rejet": "Heures incohérentes"}).Return(true, nil)
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(persisted, nil).Once()
		m.notifier.On("NotifyRejection", persisted, id.Email, "Heures incohérentes").Return(mailer.Result{Sent: true})

		sheet, err := svc.Reject(context.Background(), id, sheetID, "Heures incohérentes")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusRejete, sheet.Statut)
		assert.Equal(t, "Heures incohérentes", sheet.MotifRejet)
	})

	t.Run("validated sheet cannot be rejected", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{ID: sheetID, Statut: model.StatusValide}, nil)
		m.sheetRepo.On("UpdateStatusIf", mock.Anything, sheetID, model.StatusSoumis, model.StatusRejete, mock.Anything).Return(false, nil)

		_, err := svc.Reject(context.Background(), adminIdentity(), sheetID, "motif")

		assertKind(t, err, apperr.KindInvalidTransition)
	})
}

func TestWorkSheetService_Update(t *testing.T) {
	sheetID := uuid.New()
	workerID := uuid.New()

	t.Run("validated sheet is immutable", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{
			ID: sheetID, WorkerID: workerID, Statut: model.StatusValide,
		}, nil)

		desc := "nouvelle description"
		_, err := svc.Update(context.Background(), adminIdentity(), sheetID, UpdateSheetInput{Description: &desc})

		assertKind(t, err, apperr.KindAuthorization)
		m.sheetRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("changing one bound recomputes the total", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{
			ID: sheetID, WorkerID: workerID, Statut: model.StatusBrouillon,
			HeureDebut: "08:00", HeureFin: "16:00", HeuresTotal: 8,
		}, nil)
		m.sheetRepo.On("Update", mock.Anything, mock.MatchedBy(func(s *model.WorkSheet) bool {
			return s.HeureFin == "17:30" && s.HeuresTotal == 9.5
		})).Return(nil)

		fin := "17:30"
		_, err := svc.Update(context.Background(), monteurIdentity(workerID), sheetID, UpdateSheetInput{HeureFin: &fin})

		assert.NoError(t, err)
		m.sheetRepo.AssertExpectations(t)
	})

	t.Run("rejected sheet stays editable", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{
			ID: sheetID, WorkerID: workerID, Statut: model.StatusRejete,
			HeureDebut: "08:00", HeureFin: "16:00",
		}, nil)
		m.sheetRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

		desc := "reprise après rejet"
		_, err := svc.Update(context.Background(), monteurIdentity(workerID), sheetID, UpdateSheetInput{Description: &desc})

		assert.NoError(t, err)
	})
}

func TestWorkSheetService_List(t *testing.T) {
	ownWorkerID := uuid.New()

	t.Run("monteur filter is forced onto its own worker", func(t *testing.T) {
		svc, m := newSheetService()
		requested := uuid.New()
		m.sheetRepo.On("Count", mock.Anything, mock.MatchedBy(func(f repository.SheetFilter) bool {
			return f.WorkerID != nil && *f.WorkerID == ownWorkerID
		})).Return(int64(1), nil)
		m.sheetRepo.On("Find", mock.Anything, mock.MatchedBy(func(f repository.SheetFilter) bool {
			return f.WorkerID != nil && *f.WorkerID == ownWorkerID
		}), 0, 10).Return([]model.WorkSheet{{WorkerID: ownWorkerID}}, nil)

		sheets, meta, err := svc.List(context.Background(), monteurIdentity(ownWorkerID),
			repository.SheetFilter{WorkerID: &requested}, 1, 10, 0)

		assert.NoError(t, err)
		assert.Len(t, sheets, 1)
		assert.Equal(t, int64(1), meta.Total)
	})

	t.Run("unlinked monteur gets an empty page", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("Count", mock.Anything, mock.MatchedBy(func(f repository.SheetFilter) bool {
			return f.MatchNone
		})).Return(int64(0), nil)
		m.sheetRepo.On("Find", mock.Anything, mock.MatchedBy(func(f repository.SheetFilter) bool {
			return f.MatchNone
		}), 0, 10).Return([]model.WorkSheet{}, nil)

		sheets, meta, err := svc.List(context.Background(), Identity{UserID: uuid.New(), Role: model.RoleMonteur},
			repository.SheetFilter{}, 1, 10, 0)

		assert.NoError(t, err)
		assert.Empty(t, sheets)
		assert.Equal(t, int64(0), meta.Total)
	})

	t.Run("admin filters pass through untouched", func(t *testing.T) {
		svc, m := newSheetService()
		siteID := uuid.New()
		statut := model.StatusSoumis
		filter := repository.SheetFilter{SiteID: &siteID, Statut: &statut}
		m.sheetRepo.On("Count", mock.Anything, filter).Return(int64(2), nil)
		m.sheetRepo.On("Find", mock.Anything, filter, 0, 10).Return([]model.WorkSheet{{}, {}}, nil)

		sheets, _, err := svc.List(context.Background(), adminIdentity(), filter, 1, 10, 0)

		assert.NoError(t, err)
		assert.Len(t, sheets, 2)
	})
}

func TestWorkSheetService_AddExpense(t *testing.T) {
	sheetID := uuid.New()
	workerID := uuid.New()
	draft := func() *model.WorkSheet {
		return &model.WorkSheet{ID: sheetID, WorkerID: workerID, Statut: model.StatusBrouillon}
	}

	t.Run("expense is attached to the sheet", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(draft(), nil)
		m.expenseRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Expense) bool {
			return e.WorkSheetID == sheetID && e.Categorie == model.CategoryTransport
		})).Return(nil)

		expense, err := svc.AddExpense(context.Background(), monteurIdentity(workerID), sheetID, ExpenseInput{
			Categorie: model.CategoryTransport,
			Montant:   decimal.NewFromFloat(23.40),
		})

		assert.NoError(t, err)
		assert.True(t, expense.Montant.Equal(decimal.NewFromFloat(23.40)))
	})

	t.Run("invalid category and amount are both reported", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(draft(), nil)

		_, err := svc.AddExpense(context.Background(), monteurIdentity(workerID), sheetID, ExpenseInput{
			Categorie: "LOISIRS",
			Montant:   decimal.NewFromInt(-5),
		})

		assertKind(t, err, apperr.KindValidation)
		appErr := apperr.From(err)
		assert.Contains(t, appErr.Fields, "categorie")
		assert.Contains(t, appErr.Fields, "montant")
		m.expenseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validated sheet refuses new expenses", func(t *testing.T) {
		svc, m := newSheetService()
		finalized := draft()
		finalized.Statut = model.StatusValide
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(finalized, nil)

		_, err := svc.AddExpense(context.Background(), adminIdentity(), sheetID, ExpenseInput{
			Categorie: model.CategoryRepas,
			Montant:   decimal.NewFromInt(10),
		})

		assertKind(t, err, apperr.KindAuthorization)
	})
}

func TestWorkSheetService_DeleteExpense(t *testing.T) {
	sheetID := uuid.New()
	expenseID := uuid.New()
	workerID := uuid.New()

	t.Run("expense of another sheet is not found", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{
			ID: sheetID, WorkerID: workerID, Statut: model.StatusBrouillon,
		}, nil)
		m.expenseRepo.On("FindByID", mock.Anything, expenseID).Return(&model.Expense{
			ID: expenseID, WorkSheetID: uuid.New(),
		}, nil)

		err := svc.DeleteExpense(context.Background(), adminIdentity(), sheetID, expenseID)

		assertKind(t, err, apperr.KindNotFound)
		m.expenseRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestWorkSheetService_ListExpenses(t *testing.T) {
	sheetID := uuid.New()
	workerID := uuid.New()

	t.Run("returns the sheet's expenses", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{
			ID: sheetID, WorkerID: workerID, Statut: model.StatusBrouillon,
		}, nil)
		m.expenseRepo.On("ListByWorkSheet", mock.Anything, sheetID).Return([]model.Expense{
			{ID: uuid.New(), WorkSheetID: sheetID, Categorie: model.CategoryTransport, Montant: decimal.NewFromFloat(12.50)},
			{ID: uuid.New(), WorkSheetID: sheetID, Categorie: model.CategoryRepas, Montant: decimal.NewFromFloat(9.90)},
		}, nil)

		expenses, err := svc.ListExpenses(context.Background(), monteurIdentity(workerID), sheetID)

		assert.NoError(t, err)
		assert.Len(t, expenses, 2)
	})

	t.Run("monteur cannot read another worker's expenses", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("FindByID", mock.Anything, sheetID).Return(&model.WorkSheet{
			ID: sheetID, WorkerID: workerID, Statut: model.StatusBrouillon,
		}, nil)

		_, err := svc.ListExpenses(context.Background(), monteurIdentity(uuid.New()), sheetID)

		assertKind(t, err, apperr.KindAuthorization)
		m.expenseRepo.AssertNotCalled(t, "ListByWorkSheet", mock.Anything, mock.Anything)
	})
}

func TestWorkSheetService_WorkerStats(t *testing.T) {
	ownWorkerID := uuid.New()

	t.Run("defaults to the current month", func(t *testing.T) {
		svc, m := newSheetService()
		svc.(*workSheetService).now = func() time.Time {
			return time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
		}
		m.sheetRepo.On("WorkerMonthStats", mock.Anything, ownWorkerID, 8, 2025).Return(&repository.WorkerStats{
			Mois: 8, Annee: 2025, HeuresTotal: 42,
		}, nil)

		stats, err := svc.WorkerStats(context.Background(), adminIdentity(), ownWorkerID, 0, 0)

		assert.NoError(t, err)
		assert.Equal(t, 8, stats.Mois)
		assert.Equal(t, float64(42), stats.HeuresTotal)
	})

	t.Run("monteur always gets its own stats", func(t *testing.T) {
		svc, m := newSheetService()
		m.sheetRepo.On("WorkerMonthStats", mock.Anything, ownWorkerID, 3, 2025).Return(&repository.WorkerStats{
			Mois: 3, Annee: 2025,
		}, nil)

		_, err := svc.WorkerStats(context.Background(), monteurIdentity(ownWorkerID), uuid.New(), 3, 2025)

		assert.NoError(t, err)
		m.sheetRepo.AssertExpectations(t)
	})

	t.Run("unlinked monteur gets zeroed stats", func(t *testing.T) {
		svc, m := newSheetService()

		stats, err := svc.WorkerStats(context.Background(), Identity{UserID: uuid.New(), Role: model.RoleMonteur}, uuid.New(), 3, 2025)

		assert.NoError(t, err)
		assert.Equal(t, 3, stats.Mois)
		assert.Equal(t, 2025, stats.Annee)
		assert.Equal(t, float64(0), stats.HeuresTotal)
		assert.True(t, stats.FraisTotal.IsZero())
		m.sheetRepo.AssertNotCalled(t, "WorkerMonthStats", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWorkSheetService_SiteStats(t *testing.T) {
	siteID := uuid.New()

	t.Run("unknown site", func(t *testing.T) {
		svc, m := newSheetService()
		m.siteRepo.On("FindByID", mock.Anything, siteID).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.SiteStats(context.Background(), siteID)

		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("aggregates are passed through", func(t *testing.T) {
		svc, m := newSheetService()
		m.siteRepo.On("FindByID", mock.Anything, siteID).Return(&model.Site{ID: siteID}, nil)
		m.sheetRepo.On("SiteStats", mock.Anything, siteID).Return(&repository.SiteStats{
			HeuresTotal:    120.5,
			NombreFeuilles: 14,
			FraisTotal:     decimal.NewFromFloat(312.80),
			NombreMonteurs: 3,
		}, nil)

		stats, err := svc.SiteStats(context.Background(), siteID)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), stats.NombreMonteurs)
		assert.True(t, stats.FraisTotal.Equal(decimal.NewFromFloat(312.80)))
	})
}

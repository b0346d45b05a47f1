package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/mailer"
	"fieldtrack/internal/model"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/repository"
)

// Notifier dispatches workflow emails. Every method is best-effort: the
// returned Result is logged by the engine and never fails a transition.
type Notifier interface {
	NotifySubmission(sheet *model.WorkSheet, supervisorEmails []string) mailer.Result
	NotifyValidation(sheet *model.WorkSheet, validatorLabel string) mailer.Result
	NotifyRejection(sheet *model.WorkSheet, rejectorLabel, reason string) mailer.Result
}

// CreateSheetInput carries the fields of a new work sheet.
type CreateSheetInput struct {
	WorkerID    uuid.UUID
	SiteID      uuid.UUID
	DateTravail time.Time
	HeureDebut  string
	HeureFin    string
	Description string
}

// UpdateSheetInput carries a partial edit; nil fields stay unchanged.
type UpdateSheetInput struct {
	SiteID      *uuid.UUID
	DateTravail *time.Time
	HeureDebut  *string
	HeureFin    *string
	Description *string
}

// ExpenseInput carries the fields of a new expense.
type ExpenseInput struct {
	Categorie      model.ExpenseCategory
	Montant        decimal.Decimal
	Description    string
	JustificatifID *uuid.UUID
}

// WorkSheetService is the work-sheet workflow engine: it owns the status
// state machine, the authorization-scoped queries and the statistics views.
type WorkSheetService interface {
	Create(ctx context.Context, id Identity, in CreateSheetInput) (*model.WorkSheet, error)
	Update(ctx context.Context, id Identity, sheetID uuid.UUID, in UpdateSheetInput) (*model.WorkSheet, error)
	Delete(ctx context.Context, id Identity, sheetID uuid.UUID) error
	Get(ctx context.Context, id Identity, sheetID uuid.UUID) (*model.WorkSheet, error)
	List(ctx context.Context, id Identity, filter repository.SheetFilter, page, limit, offset int) ([]model.WorkSheet, *pagination.Meta, error)

	Submit(ctx context.Context, id Identity, sheetID uuid.UUID) (*model.WorkSheet, error)
	Validate(ctx context.Context, id Identity, sheetID uuid.UUID) (*model.WorkSheet, error)
	Reject(ctx context.Context, id Identity, sheetID uuid.UUID, reason string) (*model.WorkSheet, error)

	AddExpense(ctx context.Context, id Identity, sheetID uuid.UUID, in ExpenseInput) (*model.Expense, error)
	ListExpenses(ctx context.Context, id Identity, sheetID uuid.UUID) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, id Identity, sheetID, expenseID uuid.UUID) error

	SiteStats(ctx context.Context, siteID uuid.UUID) (*repository.SiteStats, error)
	WorkerStats(ctx context.Context, id Identity, workerID uuid.UUID, month, year int) (*repository.WorkerStats, error)
}

type workSheetService struct {
	sheetRepo   repository.WorkSheetRepository
	workerRepo  repository.WorkerRepository
	siteRepo    repository.SiteRepository
	expenseRepo repository.ExpenseRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	log         zerolog.Logger
	now         func() time.Time
}

// NewWorkSheetService creates the workflow engine.
func NewWorkSheetService(
	sheetRepo repository.WorkSheetRepository,
	workerRepo repository.WorkerRepository,
	siteRepo repository.SiteRepository,
	expenseRepo repository.ExpenseRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	log zerolog.Logger,
) WorkSheetService {
	return &workSheetService{
		sheetRepo:   sheetRepo,
		workerRepo:  workerRepo,
		siteRepo:    siteRepo,
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
	}
}

// computeHours validates the "HH:MM" pair and returns the worked hours.
// Malformed values are a schema-level validation failure; a well-formed pair
// with end before start is the distinct time-ordering domain failure.
func computeHours(debut, fin string) (float64, error) {
	start, err := model.ParseTimeOfDay(debut)
	if err != nil {
		return 0, apperr.Validation(apperr.MsgBadTimeFormat, map[string]string{"heureDebut": apperr.MsgBadTimeFormat})
	}
	end, err := model.ParseTimeOfDay(fin)
	if err != nil {
		return 0, apperr.Validation(apperr.MsgBadTimeFormat, map[string]string{"heureFin": apperr.MsgBadTimeFormat})
	}
	if end <= start {
		return 0, apperr.Validation(apperr.MsgEndBeforeStart, nil)
	}
	return float64(end-start) / 60.0, nil
}

func (s *workSheetService) Create(ctx context.Context, id Identity, in CreateSheetInput) (*model.WorkSheet, error) {
	// A MONTEUR only ever creates sheets for its own linked worker.
	if id.Role == model.RoleMonteur {
		if id.WorkerID == nil {
			return nil, apperr.Forbidden(apperr.MsgAccessDenied)
		}
		in.WorkerID = *id.WorkerID
	}

	if _, err := s.workerRepo.FindByID(ctx, in.WorkerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.MsgWorkerNotFound)
		}
		return nil, apperr.Internal(err)
	}
	if _, err := s.siteRepo.FindByID(ctx, in.SiteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.MsgSiteNotFound)
		}
		return nil, apperr.Internal(err)
	}

	hours, err := computeHours(in.HeureDebut, in.HeureFin)
	if err != nil {
		return nil, err
	}

	sheet := &model.WorkSheet{
		WorkerID:    in.WorkerID,
		SiteID:      in.SiteID,
		DateTravail: in.DateTravail,
		HeureDebut:  in.HeureDebut,
		HeureFin:    in.HeureFin,
		HeuresTotal: hours,
		Description: in.Description,
		Statut:      model.StatusBrouillon,
	}
	if err := s.sheetRepo.Create(ctx, sheet); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.fetch(ctx, sheet.ID)
}

// fetch loads a sheet with its relations, translating the missing-row error.
func (s *workSheetService) fetch(ctx context.Context, sheetID uuid.UUID) (*model.WorkSheet, error) {
	sheet, err := s.sheetRepo.FindByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.MsgSheetNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return sheet, nil
}

// authorize enforces per-sheet visibility: a MONTEUR only touches sheets of
// its own linked worker.
func (s *workSheetService) authorize(id Identity, sheet *model.WorkSheet) error {
	if id.Role == model.RoleMonteur && !id.OwnsWorker(sheet.WorkerID) {
		return apperr.Forbidden(apperr.MsgAccessDenied)
	}
	return nil
}

func (s *workSheetService) Update(ctx context.Context, id Identity, sheetID uuid.UUID, in UpdateSheetInput) (*model.WorkSheet, error) {
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(id, sheet); err != nil {
		return nil, err
	}
	if sheet.Statut.Final() {
		return nil, apperr.Forbidden(apperr.MsgSheetFinalized)
	}

	if in.SiteID != nil {
		if _, err := s.siteRepo.FindByID(ctx, *in.SiteID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound(apperr.MsgSiteNotFound)
			}
			return nil, apperr.Internal(err)
		}
		sheet.SiteID = *in.SiteID
	}
	if in.DateTravail != nil {
		sheet.DateTravail = *in.DateTravail
	}
	if in.Description != nil {
		sheet.Description = *in.Description
	}

	timesChanged := false
	if in.HeureDebut != nil {
		sheet.HeureDebut = *in.HeureDebut
		timesChanged = true
	}
	if in.HeureFin != nil {
		sheet.HeureFin = *in.HeureFin
		timesChanged = true
	}
	if timesChanged {
		hours, err := computeHours(sheet.HeureDebut, sheet.HeureFin)
		if err != nil {
			return nil, err
		}
		sheet.HeuresTotal = hours
	}

	if err := s.sheetRepo.Update(ctx, sheet); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.fetch(ctx, sheetID)
}

func (s *workSheetService) Delete(ctx context.Context, id Identity, sheetID uuid.UUID) error {
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return err
	}
	if err := s.authorize(id, sheet); err != nil {
		return err
	}
	if sheet.Statut.Final() {
		return apperr.Forbidden(apperr.MsgSheetFinalized)
	}
	if err := s.sheetRepo.Delete(ctx, sheetID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *workSheetService) Get(ctx context.Context, id Identity, sheetID uuid.UUID) (*model.WorkSheet, error) {
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(id, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *workSheetService) List(ctx context.Context, id Identity, filter repository.SheetFilter, page, limit, offset int) ([]model.WorkSheet, *pagination.Meta, error) {
	filter = ScopeSheetFilter(id, filter)

	total, err := s.sheetRepo.Count(ctx, filter)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	sheets, err := s.sheetRepo.Find(ctx, filter, offset, limit)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return sheets, pagination.NewMeta(page, limit, total), nil
}

func (s *workSheetService) Submit(ctx context.Context, id Identity, sheetID uuid.UUID) (*model.WorkSheet, error) {
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(id, sheet); err != nil {
		return nil, err
	}

	moved, err := s.sheetRepo.UpdateStatusIf(ctx, sheetID, model.StatusBrouillon, model.StatusSoumis, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !moved {
		// The sheet exists but is not in BROUILLON. A REJETE sheet lands here
		// too: resubmission has no transition of its own (see DESIGN.md).
		return nil, apperr.InvalidTransition(apperr.MsgSubmitNotDraft)
	}

	// Re-read so the caller gets the persisted state, not the pre-transition
	// copy with a patched status.
	sheet, err = s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	s.logResult("submission", sheet.ID, s.notifier.NotifySubmission(sheet, s.supervisorEmails(ctx)))
	return sheet, nil
}

func (s *workSheetService) Validate(ctx context.Context, id Identity, sheetID uuid.UUID) (*model.WorkSheet, error) {
	if !id.Role.CanValidateSheets() {
		return nil, apperr.Forbidden(apperr.MsgAccessDenied)
	}
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	moved, err := s.sheetRepo.UpdateStatusIf(ctx, sheetID, model.StatusSoumis, model.StatusValide,
		map[string]interface{}{"validated_by_id": id.UserID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !moved {
		return nil, apperr.InvalidTransition(apperr.MsgValidateNotSubmit)
	}

	sheet, err = s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	s.logResult("validation", sheet.ID, s.notifier.NotifyValidation(sheet, id.Email))
	return sheet, nil
}

func (s *workSheetService) Reject(ctx context.Context, id Identity, sheetID uuid.UUID, reason string) (*model.WorkSheet, error) {
	if !id.Role.CanValidateSheets() {
		return nil, apperr.Forbidden(apperr.MsgAccessDenied)
	}
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	moved, err := s.sheetRepo.UpdateStatusIf(ctx, sheetID, model.StatusSoumis, model.StatusRejete,
		map[string]interface{}{"validated_by_id": id.UserID, "motif_rejet": reason})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !moved {
		return nil, apperr.InvalidTransition(apperr.MsgRejectNotSubmit)
	}

	sheet, err = s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}

	s.logResult("rejection", sheet.ID, s.notifier.NotifyRejection(sheet, id.Email, reason))
	return sheet, nil
}

func (s *workSheetService) AddExpense(ctx context.Context, id Identity, sheetID uuid.UUID, in ExpenseInput) (*model.Expense, error) {
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(id, sheet); err != nil {
		return nil, err
	}
	if sheet.Statut.Final() {
		return nil, apperr.Forbidden(apperr.MsgSheetFinalized)
	}

	fields := map[string]string{}
	if !in.Categorie.Valid() {
		fields["categorie"] = "Catégorie invalide"
	}
	if !in.Montant.IsPositive() {
		fields["montant"] = "Le montant doit être positif"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(apperr.MsgValidationFailed, fields)
	}

	expense := &model.Expense{
		WorkSheetID:    sheetID,
		Categorie:      in.Categorie,
		Montant:        in.Montant,
		Description:    in.Description,
		JustificatifID: in.JustificatifID,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, apperr.Internal(err)
	}
	return expense, nil
}

func (s *workSheetService) ListExpenses(ctx context.Context, id Identity, sheetID uuid.UUID) ([]model.Expense, error) {
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(id, sheet); err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.ListByWorkSheet(ctx, sheetID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return expenses, nil
}

func (s *workSheetService) DeleteExpense(ctx context.Context, id Identity, sheetID, expenseID uuid.UUID) error {
	sheet, err := s.fetch(ctx, sheetID)
	if err != nil {
		return err
	}
	if err := s.authorize(id, sheet); err != nil {
		return err
	}
	if sheet.Statut.Final() {
		return apperr.Forbidden(apperr.MsgSheetFinalized)
	}

	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(apperr.MsgExpenseNotFound)
		}
		return apperr.Internal(err)
	}
	if expense.WorkSheetID != sheetID {
		return apperr.NotFound(apperr.MsgExpenseNotFound)
	}

	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *workSheetService) SiteStats(ctx context.Context, siteID uuid.UUID) (*repository.SiteStats, error) {
	if _, err := s.siteRepo.FindByID(ctx, siteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.MsgSiteNotFound)
		}
		return nil, apperr.Internal(err)
	}
	stats, err := s.sheetRepo.SiteStats(ctx, siteID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

func (s *workSheetService) WorkerStats(ctx context.Context, id Identity, workerID uuid.UUID, month, year int) (*repository.WorkerStats, error) {
	now := s.now()
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	if year <= 0 {
		year = now.Year()
	}

	// MONTEUR always gets its own stats, whatever id was asked for. Unlinked
	// MONTEUR and unknown worker ids both yield zeroed aggregates.
	if id.Role == model.RoleMonteur {
		if id.WorkerID == nil {
			return &repository.WorkerStats{Mois: month, Annee: year, FraisTotal: decimal.Zero}, nil
		}
		workerID = *id.WorkerID
	}

	stats, err := s.sheetRepo.WorkerMonthStats(ctx, workerID, month, year)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

// supervisorEmails lists every ADMIN and SUPERVISEUR address for submission
// alerts. Failures degrade to an empty list; a notification is never worth a
// failed transition.
func (s *workSheetService) supervisorEmails(ctx context.Context) []string {
	users, err := s.userRepo.FindByRoles(ctx, model.RoleAdmin, model.RoleSuperviseur)
	if err != nil {
		s.log.Warn().Err(err).Msg("worksheet: list supervisors for notification")
		return nil
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		emails = append(emails, u.Email)
	}
	return emails
}

func (s *workSheetService) logResult(event string, sheetID uuid.UUID, res mailer.Result) {
	if res.Err != nil {
		s.log.Warn().Err(res.Err).Str("sheet_id", sheetID.String()).Msg(fmt.Sprintf("worksheet: %s notification failed", event))
		return
	}
	if res.Sent {
		s.log.Debug().Str("sheet_id", sheetID.String()).Msg(fmt.Sprintf("worksheet: %s notification sent", event))
	}
}

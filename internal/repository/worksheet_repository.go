package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fieldtrack/internal/model"
)

// SheetFilter is the combined filter applied to work-sheet listing and
// counting. MatchNone short-circuits to an empty result set; it is produced
// by the authorization scope for a MONTEUR with no linked worker.
type SheetFilter struct {
	WorkerID  *uuid.UUID
	SiteID    *uuid.UUID
	Statut    *model.SheetStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	MatchNone bool
}

// SiteStats aggregates a site's logged work.
type SiteStats struct {
	HeuresTotal    float64         `json:"heuresTotal"`
	NombreFeuilles int64           `json:"nombreFeuilles"`
	FraisTotal     decimal.Decimal `json:"fraisTotal"`
	NombreMonteurs int64           `json:"nombreMonteurs"`
}

// WorkerStats aggregates a worker's logged work over one calendar month.
type WorkerStats struct {
	Mois           int             `json:"mois"`
	Annee          int             `json:"annee"`
	HeuresTotal    float64         `json:"heuresTotal"`
	NombreFeuilles int64           `json:"nombreFeuilles"`
	FraisTotal     decimal.Decimal `json:"fraisTotal"`
}

// WeeklyRollup summarizes recent activity for the reporting job.
type WeeklyRollup struct {
	HeuresTotal    float64
	NombreFeuilles int64
}

// WorkSheetRepository defines work-sheet persistence operations.
type WorkSheetRepository interface {
	Create(ctx context.Context, sheet *model.WorkSheet) error
	Update(ctx context.Context, sheet *model.WorkSheet) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.WorkSheet, error)
	Find(ctx context.Context, filter SheetFilter, offset, limit int) ([]model.WorkSheet, error)
	Count(ctx context.Context, filter SheetFilter) (int64, error)

	// UpdateStatusIf performs the transition as a single conditional update
	// and reports whether a row actually moved. changes may carry extra
	// columns set atomically with the status (validator, rejection reason).
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to model.SheetStatus, changes map[string]interface{}) (bool, error)

	SiteStats(ctx context.Context, siteID uuid.UUID) (*SiteStats, error)
	WorkerMonthStats(ctx context.Context, workerID uuid.UUID, month, year int) (*WorkerStats, error)
	FindStaleDrafts(ctx context.Context, olderThan time.Time) ([]model.WorkSheet, error)
	RollupSince(ctx context.Context, since time.Time) (*WeeklyRollup, error)
}

type workSheetRepository struct {
	db *gorm.DB
}

// NewWorkSheetRepository builds a GORM-backed repository.
func NewWorkSheetRepository(db *gorm.DB) WorkSheetRepository {
	return &workSheetRepository{db: db}
}

func (r *workSheetRepository) Create(ctx context.Context, sheet *model.WorkSheet) error {
	return r.db.WithContext(ctx).Create(sheet).Error
}

func (r *workSheetRepository) Update(ctx context.Context, sheet *model.WorkSheet) error {
	return r.db.WithContext(ctx).Save(sheet).Error
}

func (r *workSheetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.WorkSheet{}, "id = ?", id).Error
}

func (r *workSheetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.WorkSheet, error) {
	var sheet model.WorkSheet
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("Site").
		Preload("ValidatedBy").
		Preload("Frais").
		Preload("Fichiers").
		Where("id = ?", id).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

func (r *workSheetRepository) applyFilter(q *gorm.DB, filter SheetFilter) *gorm.DB {
	if filter.WorkerID != nil {
		q = q.Where("worker_id = ?", *filter.WorkerID)
	}
	if filter.SiteID != nil {
		q = q.Where("site_id = ?", *filter.SiteID)
	}
	if filter.Statut != nil {
		q = q.Where("statut = ?", *filter.Statut)
	}
	if filter.DateFrom != nil {
		q = q.Where("date_travail >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("date_travail <= ?", *filter.DateTo)
	}
	return q
}

func (r *workSheetRepository) Find(ctx context.Context, filter SheetFilter, offset, limit int) ([]model.WorkSheet, error) {
	if filter.MatchNone {
		return []model.WorkSheet{}, nil
	}
	var sheets []model.WorkSheet
	q := r.applyFilter(r.db.WithContext(ctx).Model(&model.WorkSheet{}), filter)
	err := q.Preload("Worker").
		Preload("Site").
		Order("date_travail DESC, created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sheets).Error
	if err != nil {
		return nil, err
	}
	return sheets, nil
}

func (r *workSheetRepository) Count(ctx context.Context, filter SheetFilter) (int64, error) {
	if filter.MatchNone {
		return 0, nil
	}
	var n int64
	q := r.applyFilter(r.db.WithContext(ctx).Model(&model.WorkSheet{}), filter)
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *workSheetRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to model.SheetStatus, changes map[string]interface{}) (bool, error) {
	if changes == nil {
		changes = map[string]interface{}{}
	}
	changes["statut"] = to
	res := r.db.WithContext(ctx).
		Model(&model.WorkSheet{}).
		Where("id = ? AND statut = ?", id, from).
		Updates(changes)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *workSheetRepository) SiteStats(ctx context.Context, siteID uuid.UUID) (*SiteStats, error) {
	stats := &SiteStats{FraisTotal: decimal.Zero}

	err := r.db.WithContext(ctx).
		Model(&model.WorkSheet{}).
		Select("COALESCE(SUM(heures_total), 0) AS heures_total, COUNT(*) AS nombre_feuilles, COUNT(DISTINCT worker_id) AS nombre_monteurs").
		Where("site_id = ?", siteID).
		Scan(stats).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("COALESCE(SUM(expenses.montant), 0)").
		Joins("JOIN work_sheets ON work_sheets.id = expenses.work_sheet_id").
		Where("work_sheets.site_id = ? AND work_sheets.deleted_at IS NULL", siteID).
		Scan(&stats.FraisTotal).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *workSheetRepository) WorkerMonthStats(ctx context.Context, workerID uuid.UUID, month, year int) (*WorkerStats, error) {
	stats := &WorkerStats{Mois: month, Annee: year, FraisTotal: decimal.Zero}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	err := r.db.WithContext(ctx).
		Model(&model.WorkSheet{}).
		Select("COALESCE(SUM(heures_total), 0) AS heures_total, COUNT(*) AS nombre_feuilles").
		Where("worker_id = ? AND date_travail >= ? AND date_travail < ?", workerID, start, end).
		Scan(stats).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("COALESCE(SUM(expenses.montant), 0)").
		Joins("JOIN work_sheets ON work_sheets.id = expenses.work_sheet_id").
		Where("work_sheets.worker_id = ? AND work_sheets.date_travail >= ? AND work_sheets.date_travail < ? AND work_sheets.deleted_at IS NULL",
			workerID, start, end).
		Scan(&stats.FraisTotal).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *workSheetRepository) FindStaleDrafts(ctx context.Context, olderThan time.Time) ([]model.WorkSheet, error) {
	var sheets []model.WorkSheet
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Where("statut = ? AND updated_at < ?", model.StatusBrouillon, olderThan).
		Find(&sheets).Error
	if err != nil {
		return nil, err
	}
	return sheets, nil
}

func (r *workSheetRepository) RollupSince(ctx context.Context, since time.Time) (*WeeklyRollup, error) {
	rollup := &WeeklyRollup{}
	err := r.db.WithContext(ctx).
		Model(&model.WorkSheet{}).
		Select("COALESCE(SUM(heures_total), 0) AS heures_total, COUNT(*) AS nombre_feuilles").
		Where("statut IN ? AND updated_at >= ?", []model.SheetStatus{model.StatusSoumis, model.StatusValide}, since).
		Scan(rollup).Error
	if err != nil {
		return nil, err
	}
	return rollup, nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldtrack/internal/model"
)

// WorkerRepository defines worker persistence operations.
type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	FindByEmail(ctx context.Context, email string) (*model.Worker, error)
	FindByCode(ctx context.Context, code string) (*model.Worker, error)
	List(ctx context.Context, actifOnly bool, offset, limit int) ([]model.Worker, error)
	Count(ctx context.Context, actifOnly bool) (int64, error)
}

type workerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository builds a GORM-backed repository.
func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Create(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).Create(worker).Error
}

func (r *workerRepository) Update(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).Save(worker).Error
}

func (r *workerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Worker{}, "id = ?", id).Error
}

func (r *workerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	var worker model.Worker
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&worker).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) FindByEmail(ctx context.Context, email string) (*model.Worker, error) {
	var worker model.Worker
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&worker).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) FindByCode(ctx context.Context, code string) (*model.Worker, error) {
	var worker model.Worker
	if err := r.db.WithContext(ctx).Where("code_identification = ?", code).First(&worker).Error; err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) List(ctx context.Context, actifOnly bool, offset, limit int) ([]model.Worker, error) {
	q := r.db.WithContext(ctx).Model(&model.Worker{})
	if actifOnly {
		q = q.Where("actif = ?", true)
	}
	var workers []model.Worker
	if err := q.Order("nom, prenom").Offset(offset).Limit(limit).Find(&workers).Error; err != nil {
		return nil, err
	}
	return workers, nil
}

func (r *workerRepository) Count(ctx context.Context, actifOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Worker{})
	if actifOnly {
		q = q.Where("actif = ?", true)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

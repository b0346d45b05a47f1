package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/model"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/repository"
)

// WorkerInput carries the fields of a worker create or update.
type WorkerInput struct {
	Nom                string
	Prenom             string
	Email              string
	Telephone          string
	DateEmbauche       time.Time
	CodeIdentification string
}

// WorkerService handles worker management.
type WorkerService interface {
	Create(ctx context.Context, in WorkerInput) (*model.Worker, error)
	Update(ctx context.Context, id uuid.UUID, in WorkerInput) (*model.Worker, error)
	SetActive(ctx context.Context, id uuid.UUID, actif bool) (*model.Worker, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	List(ctx context.Context, actifOnly bool, page, limit, offset int) ([]model.Worker, *pagination.Meta, error)
}

type workerService struct {
	workerRepo repository.WorkerRepository
}

// NewWorkerService creates a new worker service.
func NewWorkerService(workerRepo repository.WorkerRepository) WorkerService {
	return &workerService{workerRepo: workerRepo}
}

// checkUnique enforces email and identification-code uniqueness before any
// write, so conflicts surface as precise 409 messages. exclude skips the
// record being updated.
func (s *workerService) checkUnique(ctx context.Context, email, code string, exclude *uuid.UUID) error {
	existing, err := s.workerRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil && (exclude == nil || existing.ID != *exclude) {
		return apperr.Conflict(apperr.MsgEmailTaken)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal(err)
	}

	existing, err = s.workerRepo.FindByCode(ctx, code)
	if err == nil && existing != nil && (exclude == nil || existing.ID != *exclude) {
		return apperr.Conflict(apperr.MsgCodeTaken)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal(err)
	}
	return nil
}

func (s *workerService) Create(ctx context.Context, in WorkerInput) (*model.Worker, error) {
	if err := s.checkUnique(ctx, in.Email, in.CodeIdentification, nil); err != nil {
		return nil, err
	}

	worker := &model.Worker{
		Nom:                in.Nom,
		Prenom:             in.Prenom,
		Email:              in.Email,
		Telephone:          in.Telephone,
		DateEmbauche:       in.DateEmbauche,
		CodeIdentification: in.CodeIdentification,
		Actif:              true,
	}
	if err := s.workerRepo.Create(ctx, worker); err != nil {
		return nil, apperr.Internal(err)
	}
	return worker, nil
}

func (s *workerService) Update(ctx context.Context, id uuid.UUID, in WorkerInput) (*model.Worker, error) {
	worker, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in.Email, in.CodeIdentification, &id); err != nil {
		return nil, err
	}

	worker.Nom = in.Nom
	worker.Prenom = in.Prenom
	worker.Email = in.Email
	worker.Telephone = in.Telephone
	worker.DateEmbauche = in.DateEmbauche
	worker.CodeIdentification = in.CodeIdentification

	if err := s.workerRepo.Update(ctx, worker); err != nil {
		return nil, apperr.Internal(err)
	}
	return worker, nil
}

func (s *workerService) SetActive(ctx context.Context, id uuid.UUID, actif bool) (*model.Worker, error) {
	worker, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	worker.Actif = actif
	if err := s.workerRepo.Update(ctx, worker); err != nil {
		return nil, apperr.Internal(err)
	}
	return worker, nil
}

func (s *workerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.workerRepo.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *workerService) Get(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	worker, err := s.workerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.MsgWorkerNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return worker, nil
}

func (s *workerService) List(ctx context.Context, actifOnly bool, page, limit, offset int) ([]model.Worker, *pagination.Meta, error) {
	total, err := s.workerRepo.Count(ctx, actifOnly)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	workers, err := s.workerRepo.List(ctx, actifOnly, offset, limit)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return workers, pagination.NewMeta(page, limit, total), nil
}

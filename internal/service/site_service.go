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

// SiteInput carries the fields of a site create or update.
type SiteInput struct {
	Nom         string
	Adresse     string
	Client      string
	Reference   string
	DateDebut   time.Time
	DateFin     *time.Time
	Description string
}

// SiteService handles site management.
type SiteService interface {
	Create(ctx context.Context, in SiteInput) (*model.Site, error)
	Update(ctx context.Context, id uuid.UUID, in SiteInput) (*model.Site, error)
	SetActive(ctx context.Context, id uuid.UUID, actif bool) (*model.Site, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Site, error)
	List(ctx context.Context, actifOnly bool, page, limit, offset int) ([]model.Site, *pagination.Meta, error)
}

type siteService struct {
	siteRepo repository.SiteRepository
}

// NewSiteService creates a new site service.
func NewSiteService(siteRepo repository.SiteRepository) SiteService {
	return &siteService{siteRepo: siteRepo}
}

func (s *siteService) checkUnique(ctx context.Context, reference string, exclude *uuid.UUID) error {
	existing, err := s.siteRepo.FindByReference(ctx, reference)
	if err == nil && existing != nil && (exclude == nil || existing.ID != *exclude) {
		return apperr.Conflict(apperr.MsgReferenceTaken)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Internal(err)
	}
	return nil
}

func (s *siteService) Create(ctx context.Context, in SiteInput) (*model.Site, error) {
	if err := s.checkUnique(ctx, in.Reference, nil); err != nil {
		return nil, err
	}

	site := &model.Site{
		Nom:         in.Nom,
		Adresse:     in.Adresse,
		Client:      in.Client,
		Reference:   in.Reference,
		DateDebut:   in.DateDebut,
		DateFin:     in.DateFin,
		Description: in.Description,
		Actif:       true,
	}
	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, apperr.Internal(err)
	}
	return site, nil
}

func (s *siteService) Update(ctx context.Context, id uuid.UUID, in SiteInput) (*model.Site, error) {
	site, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in.Reference, &id); err != nil {
		return nil, err
	}

	site.Nom = in.Nom
	site.Adresse = in.Adresse
	site.Client = in.Client
	site.Reference = in.Reference
	site.DateDebut = in.DateDebut
	site.DateFin = in.DateFin
	site.Description = in.Description

	if err := s.siteRepo.Update(ctx, site); err != nil {
		return nil, apperr.Internal(err)
	}
	return site, nil
}

func (s *siteService) SetActive(ctx context.Context, id uuid.UUID, actif bool) (*model.Site, error) {
	site, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	site.Actif = actif
	if err := s.siteRepo.Update(ctx, site); err != nil {
		return nil, apperr.Internal(err)
	}
	return site, nil
}

func (s *siteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.siteRepo.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *siteService) Get(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	site, err := s.siteRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.MsgSiteNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return site, nil
}

func (s *siteService) List(ctx context.Context, actifOnly bool, page, limit, offset int) ([]model.Site, *pagination.Meta, error) {
	total, err := s.siteRepo.Count(ctx, actifOnly)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	sites, err := s.siteRepo.List(ctx, actifOnly, offset, limit)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return sites, pagination.NewMeta(page, limit, total), nil
}

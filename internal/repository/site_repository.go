package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldtrack/internal/model"
)

// SiteRepository defines site persistence operations.
type SiteRepository interface {
	Create(ctx context.Context, site *model.Site) error
	Update(ctx context.Context, site *model.Site) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error)
	FindByReference(ctx context.Context, reference string) (*model.Site, error)
	List(ctx context.Context, actifOnly bool, offset, limit int) ([]model.Site, error)
	Count(ctx context.Context, actifOnly bool) (int64, error)
}

type siteRepository struct {
	db *gorm.DB
}

// NewSiteRepository builds a GORM-backed repository.
func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepository{db: db}
}

func (r *siteRepository) Create(ctx context.Context, site *model.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *siteRepository) Update(ctx context.Context, site *model.Site) error {
	return r.db.WithContext(ctx).Save(site).Error
}

func (r *siteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Site{}, "id = ?", id).Error
}

func (r *siteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	var site model.Site
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) FindByReference(ctx context.Context, reference string) (*model.Site, error) {
	var site model.Site
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepository) List(ctx context.Context, actifOnly bool, offset, limit int) ([]model.Site, error) {
	q := r.db.WithContext(ctx).Model(&model.Site{})
	if actifOnly {
		q = q.Where("actif = ?", true)
	}
	var sites []model.Site
	if err := q.Order("nom").Offset(offset).Limit(limit).Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *siteRepository) Count(ctx context.Context, actifOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Site{})
	if actifOnly {
		q = q.Where("actif = ?", true)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

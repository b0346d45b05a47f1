package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldtrack/internal/model"
)

// AttachmentRepository defines attachment persistence operations.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.Attachment) error
	Update(ctx context.Context, attachment *model.Attachment) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
	List(ctx context.Context, offset, limit int) ([]model.Attachment, error)
	Count(ctx context.Context) (int64, error)
	FindOrphansBefore(ctx context.Context, cutoff time.Time) ([]model.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository builds a GORM-backed repository.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) Update(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Save(attachment).Error
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	var attachment model.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) List(ctx context.Context, offset, limit int) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Attachment{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *attachmentRepository) FindOrphansBefore(ctx context.Context, cutoff time.Time) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.db.WithContext(ctx).
		Where("work_sheet_id IS NULL AND created_at < ?", cutoff).
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

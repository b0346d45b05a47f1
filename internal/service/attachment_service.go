package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"fieldtrack/internal/apperr"
	"fieldtrack/internal/model"
	"fieldtrack/internal/pagination"
	"fieldtrack/internal/repository"
	"fieldtrack/internal/storage"
)

const attachmentFolder = "fichiers"

// AttachmentService handles file uploads and their work-sheet links.
type AttachmentService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, description string, sheetID *uuid.UUID) (*model.Attachment, error)
	UploadMultiple(ctx context.Context, files []*multipart.FileHeader, sheetID *uuid.UUID) ([]model.Attachment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
	List(ctx context.Context, page, limit, offset int) ([]model.Attachment, *pagination.Meta, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Attach(ctx context.Context, id, sheetID uuid.UUID) (*model.Attachment, error)
	Detach(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

type attachmentService struct {
	attachmentRepo repository.AttachmentRepository
	sheetRepo      repository.WorkSheetRepository
	store          storage.Storage
	log            zerolog.Logger
}

// NewAttachmentService creates a new attachment service.
func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	sheetRepo repository.WorkSheetRepository,
	store storage.Storage,
	log zerolog.Logger,
) AttachmentService {
	return &attachmentService{
		attachmentRepo: attachmentRepo,
		sheetRepo:      sheetRepo,
		store:          store,
		log:            log,
	}
}

func (s *attachmentService) checkSheet(ctx context.Context, sheetID uuid.UUID) error {
	if _, err := s.sheetRepo.FindByID(ctx, sheetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(apperr.MsgSheetNotFound)
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *attachmentService) Upload(ctx context.Context, file *multipart.FileHeader, description string, sheetID *uuid.UUID) (*model.Attachment, error) {
	if sheetID != nil {
		if err := s.checkSheet(ctx, *sheetID); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.store.Upload(ctx, file, attachmentFolder)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	attachment := &model.Attachment{
		Nom:         uploaded.OriginalName,
		Cle:         uploaded.Key,
		URL:         uploaded.URL,
		TypeMime:    uploaded.MimeType,
		Taille:      uploaded.Size,
		Description: description,
		WorkSheetID: sheetID,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		// The row failed; do not leave the object stranded in storage.
		if delErr := s.store.Delete(ctx, uploaded.Key); delErr != nil {
			s.log.Warn().Err(delErr).Str("key", uploaded.Key).Msg("attachment: cleanup after failed insert")
		}
		return nil, apperr.Internal(err)
	}
	return attachment, nil
}

func (s *attachmentService) UploadMultiple(ctx context.Context, files []*multipart.FileHeader, sheetID *uuid.UUID) ([]model.Attachment, error) {
	attachments := make([]model.Attachment, 0, len(files))
	for _, file := range files {
		a, err := s.Upload(ctx, file, "", sheetID)
		if err != nil {
			return attachments, err
		}
		attachments = append(attachments, *a)
	}
	return attachments, nil
}

// Get returns the attachment with a freshly resolved URL. Presigned S3 URLs
// expire, so the stored one cannot be trusted.
func (s *attachmentService) Get(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	attachment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if url, err := s.store.ResolveURL(ctx, attachment.Cle); err == nil {
		attachment.URL = url
	}
	return attachment, nil
}

func (s *attachmentService) find(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(apperr.MsgAttachmentNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return attachment, nil
}

func (s *attachmentService) List(ctx context.Context, page, limit, offset int) ([]model.Attachment, *pagination.Meta, error) {
	total, err := s.attachmentRepo.Count(ctx)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	attachments, err := s.attachmentRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, nil, apperr.Internal(err)
	}
	return attachments, pagination.NewMeta(page, limit, total), nil
}

func (s *attachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, attachment.Cle); err != nil {
		s.log.Warn().Err(err).Str("key", attachment.Cle).Msg("attachment: storage delete")
	}
	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *attachmentService) Attach(ctx context.Context, id, sheetID uuid.UUID) (*model.Attachment, error) {
	attachment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	attachment.WorkSheetID = &sheetID
	if err := s.attachmentRepo.Update(ctx, attachment); err != nil {
		return nil, apperr.Internal(err)
	}
	return attachment, nil
}

func (s *attachmentService) Detach(ctx context.Context, id uuid.UUID) (*model.Attachment, error) {
	attachment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	attachment.WorkSheetID = nil
	if err := s.attachmentRepo.Update(ctx, attachment); err != nil {
		return nil, apperr.Internal(err)
	}
	return attachment, nil
}

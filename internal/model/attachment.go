package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is a stored file's metadata. The work-sheet link is nullable:
// files may be uploaded standalone and attached later.
type Attachment struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Nom         string         `json:"nom" gorm:"size:255;not null"`
	Cle         string         `json:"-" gorm:"size:500;not null"`
	URL         string         `json:"url" gorm:"size:1000;not null"`
	TypeMime    string         `json:"typeMime" gorm:"size:100"`
	Taille      int64          `json:"taille"`
	Description string         `json:"description,omitempty" gorm:"size:500"`
	WorkSheetID *uuid.UUID     `json:"feuilleId,omitempty" gorm:"type:char(36);index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

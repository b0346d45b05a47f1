package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Site is a job location (chantier) against which work and expenses are logged.
type Site struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Nom         string         `json:"nom" gorm:"size:255;not null"`
	Adresse     string         `json:"adresse" gorm:"size:500;not null"`
	Client      string         `json:"client" gorm:"size:255;not null"`
	Reference   string         `json:"reference" gorm:"uniqueIndex;size:50;not null"`
	DateDebut   time.Time      `json:"dateDebut" gorm:"type:date"`
	DateFin     *time.Time     `json:"dateFin,omitempty" gorm:"type:date"`
	Description string         `json:"description" gorm:"type:text"`
	Actif       bool           `json:"actif" gorm:"default:true;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	WorkSheets []WorkSheet `json:"feuilles,omitempty" gorm:"foreignKey:SiteID"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Site) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

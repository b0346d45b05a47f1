package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Worker is a field employee (monteur) tracked for hours and identification.
type Worker struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Nom                string         `json:"nom" gorm:"size:100;not null"`
	Prenom             string         `json:"prenom" gorm:"size:100;not null"`
	Email              string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Telephone          string         `json:"telephone" gorm:"size:30"`
	DateEmbauche       time.Time      `json:"dateEmbauche" gorm:"type:date"`
	CodeIdentification string         `json:"codeIdentification" gorm:"uniqueIndex;size:50;not null"`
	Actif              bool           `json:"actif" gorm:"default:true;index"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	WorkSheets []WorkSheet `json:"feuilles,omitempty" gorm:"foreignKey:WorkerID"`
}

// BeforeCreate sets UUID before creating the record.
func (w *Worker) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// FullName returns "Prenom Nom" for notification templates.
func (w *Worker) FullName() string {
	return w.Prenom + " " + w.Nom
}

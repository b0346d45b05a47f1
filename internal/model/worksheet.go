package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SheetStatus represents the approval status of a work sheet.
type SheetStatus string

const (
	StatusBrouillon SheetStatus = "BROUILLON"
	StatusSoumis    SheetStatus = "SOUMIS"
	StatusValide    SheetStatus = "VALIDE"
	StatusRejete    SheetStatus = "REJETE"
)

// Valid reports whether the status is one of the known values.
func (s SheetStatus) Valid() bool {
	switch s {
	case StatusBrouillon, StatusSoumis, StatusValide, StatusRejete:
		return true
	}
	return false
}

// Final reports whether the sheet is locked against any mutation.
// Only VALIDE freezes a sheet; REJETE stays editable for rework.
func (s SheetStatus) Final() bool {
	return s == StatusValide
}

// WorkSheet is one day of logged work for one worker on one site, subject to
// the submit/validate/reject approval workflow.
type WorkSheet struct {
	ID            uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	WorkerID      uuid.UUID      `json:"monteurId" gorm:"type:char(36);not null;index"`
	SiteID        uuid.UUID      `json:"chantierId" gorm:"type:char(36);not null;index"`
	DateTravail   time.Time      `json:"dateTravail" gorm:"type:date;not null;index"`
	HeureDebut    string         `json:"heureDebut" gorm:"size:5;not null"`
	HeureFin      string         `json:"heureFin" gorm:"size:5;not null"`
	HeuresTotal   float64        `json:"heuresTotal" gorm:"type:decimal(5,2);not null"`
	Description   string         `json:"description" gorm:"type:text"`
	Statut        SheetStatus    `json:"statut" gorm:"type:varchar(20);not null;default:'BROUILLON';index"`
	ValidatedByID *uuid.UUID     `json:"valideParId,omitempty" gorm:"type:char(36)"`
	MotifRejet    string         `json:"motifRejet,omitempty" gorm:"size:500"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Worker      *Worker      `json:"monteur,omitempty" gorm:"foreignKey:WorkerID"`
	Site        *Site        `json:"chantier,omitempty" gorm:"foreignKey:SiteID"`
	ValidatedBy *User        `json:"validePar,omitempty" gorm:"foreignKey:ValidatedByID"`
	Frais       []Expense    `json:"frais,omitempty" gorm:"foreignKey:WorkSheetID"`
	Fichiers    []Attachment `json:"fichiers,omitempty" gorm:"foreignKey:WorkSheetID"`
}

// BeforeCreate sets UUID before creating the record.
func (ws *WorkSheet) BeforeCreate(tx *gorm.DB) error {
	if ws.ID == uuid.Nil {
		ws.ID = uuid.New()
	}
	return nil
}

// ParseTimeOfDay parses a "HH:MM" value into minutes since midnight. All five
// bytes are checked, so values with stray characters are rejected.
func ParseTimeOfDay(v string) (int, error) {
	if len(v) != 5 || v[2] != ':' {
		return 0, fmt.Errorf("parse time of day %q: want HH:MM", v)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if v[i] < '0' || v[i] > '9' {
			return 0, fmt.Errorf("parse time of day %q: want HH:MM", v)
		}
	}
	h := int(v[0]-'0')*10 + int(v[1]-'0')
	m := int(v[3]-'0')*10 + int(v[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("parse time of day %q: out of range", v)
	}
	return h*60 + m, nil
}

// ComputeHours returns the worked hours between two "HH:MM" values. The end
// must be strictly after the start.
func ComputeHours(debut, fin string) (float64, error) {
	start, err := ParseTimeOfDay(debut)
	if err != nil {
		return 0, err
	}
	end, err := ParseTimeOfDay(fin)
	if err != nil {
		return 0, err
	}
	if end <= start {
		return 0, fmt.Errorf("end %q not after start %q", fin, debut)
	}
	return float64(end-start) / 60.0, nil
}

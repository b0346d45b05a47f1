package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseCategory is the closed set of expense categories.
type ExpenseCategory string

const (
	CategoryTransport ExpenseCategory = "TRANSPORT"
	CategoryMateriel  ExpenseCategory = "MATERIEL"
	CategoryRepas     ExpenseCategory = "REPAS"
	CategoryAutres    ExpenseCategory = "AUTRES"
)

// Valid reports whether the category is one of the known values.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryTransport, CategoryMateriel, CategoryRepas, CategoryAutres:
		return true
	}
	return false
}

// Expense is a reimbursable cost item attached to a work sheet.
type Expense struct {
	ID             uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	WorkSheetID    uuid.UUID       `json:"feuilleId" gorm:"type:char(36);not null;index"`
	Categorie      ExpenseCategory `json:"categorie" gorm:"type:varchar(20);not null"`
	Montant        decimal.Decimal `json:"montant" gorm:"type:decimal(10,2);not null"`
	Description    string          `json:"description" gorm:"size:500"`
	JustificatifID *uuid.UUID      `json:"justificatifId,omitempty" gorm:"type:char(36)"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Justificatif *Attachment `json:"justificatif,omitempty" gorm:"foreignKey:JustificatifID"`
}

// BeforeCreate sets UUID before creating the record.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleSuperviseur Role = "SUPERVISEUR"
	RoleMonteur     Role = "MONTEUR"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSuperviseur, RoleMonteur:
		return true
	}
	return false
}

// CanValidateSheets reports whether the role may validate or reject a
// submitted work sheet.
func (r Role) CanValidateSheets() bool {
	return r == RoleAdmin || r == RoleSuperviseur
}

// CanManageResources reports whether the role may create, update or delete
// workers and sites.
func (r Role) CanManageResources() bool {
	return r == RoleAdmin || r == RoleSuperviseur
}

// CanViewAllSheets reports whether the role sees every work sheet. MONTEUR
// is always restricted to its own linked worker.
func (r Role) CanViewAllSheets() bool {
	return r == RoleAdmin || r == RoleSuperviseur
}

// CanManageJobs reports whether the role may inspect and drive the scheduled
// job registry.
func (r Role) CanManageJobs() bool {
	return r == RoleAdmin
}

// User represents an authenticated account, optionally linked to a worker
// profile for self-service access.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         Role           `json:"role" gorm:"type:varchar(20);not null;default:'MONTEUR';index"`
	WorkerID     *uuid.UUID     `json:"monteurId,omitempty" gorm:"type:char(36);index"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Worker *Worker `json:"monteur,omitempty" gorm:"foreignKey:WorkerID"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

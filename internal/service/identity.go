package service

import (
	"github.com/google/uuid"

	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
)

// Identity is the authenticated caller as seen by the service layer.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	Role     model.Role
	WorkerID *uuid.UUID
}

// OwnsWorker reports whether the identity's linked worker is the given one.
func (id Identity) OwnsWorker(workerID uuid.UUID) bool {
	return id.WorkerID != nil && *id.WorkerID == workerID
}

// ScopeSheetFilter combines caller-supplied filters with the caller's role
// into the single filter fed to the repository.
//
// MONTEUR callers have any worker filter force-overridden with their own
// linked worker; a MONTEUR with no linked worker gets a match-none filter
// (valid empty page, never an error). ADMIN and SUPERVISEUR pass filters
// through untouched. Status, site and date filters apply to every role.
func ScopeSheetFilter(id Identity, filter repository.SheetFilter) repository.SheetFilter {
	if id.Role == model.RoleMonteur {
		if id.WorkerID == nil {
			filter.MatchNone = true
			filter.WorkerID = nil
		} else {
			workerID := *id.WorkerID
			filter.WorkerID = &workerID
		}
	}
	return filter
}

package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fieldtrack/internal/auth"
	"fieldtrack/internal/mailer"
	"fieldtrack/internal/repository"
	"fieldtrack/internal/storage"
)

// Job names, fixed at registration.
const (
	JobStaleDraftReminder      = "stale-draft-reminder"
	JobOrphanAttachmentPurge   = "orphan-attachment-purge"
	JobRefreshTokenMaintenance = "refresh-token-maintenance"
	JobWeeklyRollup            = "weekly-rollup"
)

// NewStaleDraftReminder reminds workers of BROUILLON sheets untouched for
// staleDays. Runs every morning.
func NewStaleDraftReminder(sheetRepo repository.WorkSheetRepository, m *mailer.Mailer, staleDays int, log zerolog.Logger) Job {
	return Job{
		Name:     JobStaleDraftReminder,
		Schedule: "0 8 * * *",
		Run: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -staleDays)
			sheets, err := sheetRepo.FindStaleDrafts(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("find stale drafts: %w", err)
			}
			for i := range sheets {
				res := m.NotifyStaleDraft(&sheets[i])
				if res.Err != nil {
					log.Warn().Err(res.Err).Str("sheet_id", sheets[i].ID.String()).Msg("jobs: stale draft reminder")
				}
			}
			log.Info().Int("count", len(sheets)).Msg("jobs: stale drafts scanned")
			return nil
		},
	}
}

// NewOrphanAttachmentPurge deletes attachments that were never linked to a
// work sheet and are older than the retention window. Nightly.
func NewOrphanAttachmentPurge(attachmentRepo repository.AttachmentRepository, store storage.Storage, retentionDays int, log zerolog.Logger) Job {
	return Job{
		Name:     JobOrphanAttachmentPurge,
		Schedule: "30 2 * * *",
		Run: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			orphans, err := attachmentRepo.FindOrphansBefore(ctx, cutoff)
			if err != nil {
				return fmt.Errorf("find orphan attachments: %w", err)
			}
			purged := 0
			for _, orphan := range orphans {
				if err := store.Delete(ctx, orphan.Cle); err != nil {
					log.Warn().Err(err).Str("key", orphan.Cle).Msg("jobs: orphan purge storage delete")
					continue
				}
				if err := attachmentRepo.Delete(ctx, orphan.ID); err != nil {
					log.Warn().Err(err).Str("id", orphan.ID.String()).Msg("jobs: orphan purge row delete")
					continue
				}
				purged++
			}
			log.Info().Int("purged", purged).Int("found", len(orphans)).Msg("jobs: orphan attachments purged")
			return nil
		},
	}
}

// NewRefreshTokenMaintenance prunes dangling refresh-token IDs from the
// per-user session sets. The token keys expire on their own; the sets do not.
func NewRefreshTokenMaintenance(tokenStore *auth.TokenStore, log zerolog.Logger) Job {
	return Job{
		Name:     JobRefreshTokenMaintenance,
		Schedule: "0 3 * * *",
		Run: func(ctx context.Context) error {
			keys, err := tokenStore.UserSetKeys(ctx)
			if err != nil {
				return fmt.Errorf("list user token sets: %w", err)
			}
			removed := 0
			for _, key := range keys {
				idx := strings.LastIndex(key, ":")
				if idx < 0 {
					continue
				}
				userID, err := uuid.Parse(key[idx+1:])
				if err != nil {
					continue
				}
				n, err := tokenStore.PruneUserSet(ctx, userID)
				if err != nil {
					log.Warn().Err(err).Str("user_id", userID.String()).Msg("jobs: token set prune")
					continue
				}
				removed += n
			}
			log.Info().Int("removed", removed).Int("sets", len(keys)).Msg("jobs: refresh token maintenance")
			return nil
		},
	}
}

// NewWeeklyRollup logs hours and sheet counts submitted over the past week.
// Monday mornings.
func NewWeeklyRollup(sheetRepo repository.WorkSheetRepository, log zerolog.Logger) Job {
	return Job{
		Name:     JobWeeklyRollup,
		Schedule: "0 6 * * 1",
		Run: func(ctx context.Context) error {
			rollup, err := sheetRepo.RollupSince(ctx, time.Now().AddDate(0, 0, -7))
			if err != nil {
				return fmt.Errorf("weekly rollup: %w", err)
			}
			log.Info().
				Float64("heures_total", rollup.HeuresTotal).
				Int64("nombre_feuilles", rollup.NombreFeuilles).
				Msg("jobs: weekly rollup")
			return nil
		},
	}
}

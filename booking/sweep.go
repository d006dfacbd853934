package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/bookably/booking-app/metrics"
	"github.com/bookably/booking-app/models"
)

// SweepResult summarizes one sweep pass. A single appointment's failure is
// non-fatal: it lands in Errors and the pass continues.
type SweepResult struct {
	Completed int      `json:"completed"`
	Cancelled int      `json:"cancelled"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

// SweepOnce applies the automatic lifecycle transitions as of now:
//
//   - a pending appointment whose business requires email confirmation and
//     whose confirmation window has lapsed is cancelled;
//   - a confirmed appointment past its end plus the grace period is
//     completed (completedAutomatically=true) when the business opts in;
//   - a pending appointment past its end plus the grace period is cancelled.
//
// Eligibility is computed from a batch read, but every write is conditional
// on the status still being what the batch saw, so the sweep never tramples
// a concurrent manual transition. Already-terminal rows are filtered out by
// the read, which is what makes back-to-back runs idempotent.
func (s *Service) SweepOnce(ctx context.Context, now time.Time) SweepResult {
	metrics.IncSweepRun()
	var result SweepResult

	candidates, err := s.store.ListByStatuses(ctx, []models.AppointmentStatus{
		models.StatusPending,
		models.StatusConfirmed,
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("list candidates: %v", err))
		return result
	}

	settingsByBusiness := map[uint]models.BusinessSettings{}
	settingsFor := func(businessID uint) (models.BusinessSettings, error) {
		if cached, ok := settingsByBusiness[businessID]; ok {
			return cached, nil
		}
		business, err := s.dir.Business(ctx, businessID)
		if err != nil {
			return models.BusinessSettings{}, err
		}
		settingsByBusiness[businessID] = business.Settings
		return business.Settings, nil
	}

	for i := range candidates {
		appt := &candidates[i]
		settings, err := settingsFor(appt.BusinessID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("appointment %d: %v", appt.ID, err))
			continue
		}

		switch {
		case s.confirmationExpired(appt, settings, now):
			s.sweepCancel(ctx, appt, models.CancelReasonConfirmationExpired, &result)
		case s.pastGrace(appt, settings, now):
			if appt.Status == models.StatusConfirmed && settings.AutoCompleteAppointments {
				s.sweepComplete(ctx, appt, &result)
			} else if appt.Status == models.StatusPending {
				s.sweepCancel(ctx, appt, models.CancelReasonAutoCancelled, &result)
			} else {
				result.Skipped++
			}
		default:
			result.Skipped++
		}
	}

	s.log.Info().
		Int("completed", result.Completed).
		Int("cancelled", result.Cancelled).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("sweep finished")
	return result
}

func (s *Service) confirmationExpired(appt *models.Appointment, settings models.BusinessSettings, now time.Time) bool {
	if appt.Status != models.StatusPending || !settings.RequireEmailConfirmation {
		return false
	}
	timeout := time.Duration(settings.EmailConfirmationTimeout) * time.Minute
	return now.After(appt.CreatedAt.Add(timeout))
}

func (s *Service) pastGrace(appt *models.Appointment, settings models.BusinessSettings, now time.Time) bool {
	endsAt, err := appt.EndsAt(settings.Location())
	if err != nil {
		return false
	}
	grace := time.Duration(settings.AutoCompleteGraceHours) * time.Hour
	return now.After(endsAt.Add(grace))
}

func (s *Service) sweepCancel(ctx context.Context, appt *models.Appointment, reason string, result *SweepResult) {
	ok, err := s.store.UpdateStatusIfCurrent(ctx, appt.ID, appt.Status, models.StatusCancelled, map[string]any{
		"cancellation_reason": reason,
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cancel appointment %d: %v", appt.ID, err))
		return
	}
	if !ok {
		// Someone confirmed or cancelled it since the batch read.
		result.Skipped++
		return
	}
	result.Cancelled++
	metrics.IncTransition(string(models.StatusCancelled), "sweep")
	if s.cache != nil {
		s.cache.Invalidate(ctx, appt.ResourceRef(), appt.Date)
		s.cache.Invalidate(ctx, models.BusinessRef(appt.BusinessID), appt.Date)
	}
	s.log.Info().Uint("appointment_id", appt.ID).Str("reason", reason).Msg("sweep cancelled appointment")
}

func (s *Service) sweepComplete(ctx context.Context, appt *models.Appointment, result *SweepResult) {
	ok, err := s.store.UpdateStatusIfCurrent(ctx, appt.ID, models.StatusConfirmed, models.StatusCompleted, map[string]any{
		"completed_automatically": true,
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("complete appointment %d: %v", appt.ID, err))
		return
	}
	if !ok {
		result.Skipped++
		return
	}
	result.Completed++
	metrics.IncTransition(string(models.StatusCompleted), "sweep")
	s.log.Info().Uint("appointment_id", appt.ID).Msg("sweep completed appointment")
}

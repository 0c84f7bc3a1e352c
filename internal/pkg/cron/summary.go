package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/summary"
)

type SummaryJobs struct {
	summaryRepo summary.AttendanceSummaryRepository
	summarySvc  summary.Service
	now         func() time.Time
}

func NewSummaryJobs(summaryRepo summary.AttendanceSummaryRepository, summarySvc summary.Service) *SummaryJobs {
	return &SummaryJobs{
		summaryRepo: summaryRepo,
		summarySvc:  summarySvc,
		now:         time.Now,
	}
}

func (j *SummaryJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) error {
	return scheduler.AddJob("recalculate_current_month_summaries", interval, interval, j.RecalculateCurrentMonth)
}

// RecalculateCurrentMonth refreshes every company that already has summaries
// for the current month. A failing company does not stop the others.
func (j *SummaryJobs) RecalculateCurrentMonth(ctx context.Context) error {
	now := j.now().UTC()
	month, year := int(now.Month()), now.Year()

	periods, err := j.summaryRepo.ListPeriods(ctx, month, year)
	if err != nil {
		return fmt.Errorf("failed to list summary periods: %w", err)
	}

	if len(periods) == 0 {
		slog.Info("Cron: No attendance summaries to recalculate", "month", month, "year", year)
		return nil
	}

	var errs []error
	updated := 0
	for _, p := range periods {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := j.summarySvc.RecalculatePeriod(ctx, p)
		if err != nil {
			if errors.Is(err, summary.ErrNoSummariesToRecalculate) {
				continue
			}
			slog.Error("Cron: Failed to recalculate summaries", "period", p.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		updated += result.Updated
	}

	slog.Info("Cron: Recalculated attendance summaries",
		"month", month,
		"year", year,
		"periods", len(periods),
		"failed", len(errs),
		"rows_updated", updated,
	)

	return errors.Join(errs...)
}

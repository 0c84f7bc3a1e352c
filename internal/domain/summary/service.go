package summary

import (
	"context"
	"io"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/period"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/sse"
)

type Service interface {
	BuildSummaries(ctx context.Context, req period.Request) (BuildResult, error)
	Recalculate(ctx context.Context, req period.Request) (RecalculateResult, error)
	// RecalculatePeriod recalculates without a caller identity, for background jobs.
	RecalculatePeriod(ctx context.Context, p period.Period) (RecalculateResult, error)

	ListSummaries(ctx context.Context, filter SummaryFilter) (ListSummaryResponse, error)
	GetSummary(ctx context.Context, id string) (SummaryResponse, error)
	UpdateSummary(ctx context.Context, req UpdateSummaryRequest) (SummaryResponse, error)
	DeleteSummary(ctx context.Context, id string) error
	Exists(ctx context.Context, req period.Request) (ExistsResponse, error)

	Export(ctx context.Context, req period.Request) (ExportFile, error)
	// ExportPDF renders the same rows as a printable report.
	ExportPDF(ctx context.Context, req period.Request) (ExportFile, error)
	Import(ctx context.Context, file io.Reader, filename string) (ImportResult, error)

	// Subscribe streams the change events of the caller's tenant until cleanup is called.
	Subscribe(ctx context.Context) (<-chan sse.Event, func(), error)
}

package ports

import (
	"context"
	"time"

	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

// ReportText carries the localized strings a workbook needs besides the
// presentation itself.
type ReportText struct {
	SummarySheet   string
	TotalsSheet    string
	NarrativeSheet string
	GeneratedAt    string
}

type ExcelGenerator interface {
	GenerateSummaryReport(ctx context.Context, p *stats.Presentation, text ReportText, generatedAt time.Time) ([]byte, error)
}

type ChartRenderer interface {
	RenderBar(points []stats.ChartPoint, title string) ([]byte, error)
}

package ports

import "manifest-diff/internal/types"

type ReportRendererPort interface {
	Render(result types.ComparisonResult, labels types.ReportLabels) string
}

type OutputPort interface {
	WriteReport(text string) error
}

package dto

import "time"

// CalendarRequest scopes the reconciled calendar read for one provider.
type CalendarRequest struct {
	ProviderID string    `json:"provider_id" validate:"required"`
	From       time.Time `json:"from" validate:"required"`
	To         time.Time `json:"to" validate:"required,gtfield=From"`
}

// Export formats supported by the agenda export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// AgendaExportRequest asks for a provider agenda document.
type AgendaExportRequest struct {
	ProviderID string    `json:"provider_id" validate:"required"`
	From       time.Time `json:"from" validate:"required"`
	To         time.Time `json:"to" validate:"required,gtfield=From"`
	Format     string    `json:"format" validate:"required,oneof=csv pdf"`
}

package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
	"github.com/GAMA-00/gato-app-sub001/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// AgendaExport is a rendered provider agenda ready to stream.
type AgendaExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// AgendaExportService renders the reconciled provider calendar as a CSV or
// PDF document.
type AgendaExportService struct {
	calendar  *CalendarService
	listings  listingReader
	csv       csvRenderer
	pdf       pdfRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAgendaExportService constructs the exporter.
func NewAgendaExportService(calendar *CalendarService, listings listingReader, csv csvRenderer, pdf pdfRenderer, validate *validator.Validate, logger *zap.Logger) *AgendaExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AgendaExportService{
		calendar:  calendar,
		listings:  listings,
		csv:       csv,
		pdf:       pdf,
		validator: validate,
		logger:    logger,
	}
}

var agendaHeaders = []string{"Date", "Start", "End", "Service", "Status", "Source"}

// Generate builds the agenda document for the requested range.
func (s *AgendaExportService) Generate(ctx context.Context, req dto.AgendaExportRequest) (*AgendaExport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	occurrences, err := s.calendar.Occurrences(ctx, dto.CalendarRequest{
		ProviderID: req.ProviderID,
		From:       req.From,
		To:         req.To,
	})
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: agendaHeaders,
		Rows:    make([]map[string]string, 0, len(occurrences)),
	}
	titles := make(map[string]string)
	for _, occ := range occurrences {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    occ.StartTime.Format("2006-01-02"),
			"Start":   occ.StartTime.Format("15:04"),
			"End":     occ.EndTime.Format("15:04"),
			"Service": s.listingTitle(ctx, titles, occ.ListingID),
			"Status":  occ.Status,
			"Source":  occ.Source.String(),
		})
	}

	stamp := req.From.Format("2006-01-02")
	switch req.Format {
	case dto.ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, fmt.Errorf("render agenda csv: %w", err)
		}
		return &AgendaExport{
			Filename:    fmt.Sprintf("agenda-%s-%s.csv", req.ProviderID, stamp),
			ContentType: "text/csv",
			Payload:     payload,
		}, nil
	case dto.ExportFormatPDF:
		title := fmt.Sprintf("Agenda %s a %s", req.From.Format("2006-01-02"), req.To.Format("2006-01-02"))
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, fmt.Errorf("render agenda pdf: %w", err)
		}
		return &AgendaExport{
			Filename:    fmt.Sprintf("agenda-%s-%s.pdf", req.ProviderID, stamp),
			ContentType: "application/pdf",
			Payload:     payload,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+req.Format)
	}
}

// listingTitle resolves a listing name with a per-request memo; lookups that
// fail fall back to the placeholder so the export never aborts on labels.
func (s *AgendaExportService) listingTitle(ctx context.Context, memo map[string]string, listingID string) string {
	if listingID == "" {
		return models.PlaceholderListing("", 0).Title
	}
	if title, ok := memo[listingID]; ok {
		return title
	}
	title := models.PlaceholderListing(listingID, 0).Title
	if s.listings != nil {
		if listing, err := s.listings.GetByID(ctx, listingID); err == nil && listing != nil && listing.Title != "" {
			title = listing.Title
		}
	}
	memo[listingID] = title
	return title
}

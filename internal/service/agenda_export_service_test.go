package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

func exportSvc(appts *mockConflictAppointmentRepo, listings *mockListingRepo) *AgendaExportService {
	calendar := NewCalendarService(appts, &mockInstanceRepo{}, &mockConflictRuleRepo{}, nil, nil, nil)
	return NewAgendaExportService(calendar, listings, nil, nil, nil, nil)
}

func TestAgendaExportCSV(t *testing.T) {
	appts := &mockConflictAppointmentRepo{appointments: []models.Appointment{{
		ID: "appt-1", ProviderID: "prov-1", ListingID: "listing-1",
		StartTime: day(10, 0), EndTime: day(11, 0),
		Status: models.AppointmentStatusConfirmed,
	}}}
	listings := &mockListingRepo{listing: &models.Listing{ID: "listing-1", Title: "Limpieza profunda"}}

	out, err := exportSvc(appts, listings).Generate(context.Background(), dto.AgendaExportRequest{
		ProviderID: "prov-1",
		From:       day(0, 0),
		To:         day(0, 0).AddDate(0, 0, 7),
		Format:     dto.ExportFormatCSV,
	})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", out.ContentType)
	assert.Equal(t, "agenda-prov-1-2025-03-10.csv", out.Filename)

	body := string(out.Payload)
	assert.Contains(t, body, "Date,Start,End,Service,Status,Source")
	assert.Contains(t, body, "2025-03-10,10:00,11:00,Limpieza profunda,confirmed,regular")
}

func TestAgendaExportPDF(t *testing.T) {
	appts := &mockConflictAppointmentRepo{appointments: []models.Appointment{{
		ID: "appt-1", ProviderID: "prov-1",
		StartTime: day(10, 0), EndTime: day(11, 0),
		Status: models.AppointmentStatusConfirmed,
	}}}

	out, err := exportSvc(appts, &mockListingRepo{}).Generate(context.Background(), dto.AgendaExportRequest{
		ProviderID: "prov-1",
		From:       day(0, 0),
		To:         day(0, 0).AddDate(0, 0, 7),
		Format:     dto.ExportFormatPDF,
	})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, strings.HasPrefix(string(out.Payload), "%PDF"))
}

func TestAgendaExportRejectsUnknownFormat(t *testing.T) {
	svc := exportSvc(&mockConflictAppointmentRepo{}, &mockListingRepo{})

	_, err := svc.Generate(context.Background(), dto.AgendaExportRequest{
		ProviderID: "prov-1",
		From:       day(0, 0),
		To:         day(0, 0).AddDate(0, 0, 7),
		Format:     "xlsx",
	})
	require.Error(t, err)
}

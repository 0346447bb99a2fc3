package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	"github.com/GAMA-00/gato-app-sub001/internal/middleware"
	"github.com/GAMA-00/gato-app-sub001/internal/models"
)

type fakeAvailabilitySrv struct {
	slots   []dto.Slot
	err     error
	lastReq dto.AvailabilityRequest
}

func (f *fakeAvailabilitySrv) GenerateSlots(_ context.Context, req dto.AvailabilityRequest) ([]dto.Slot, error) {
	f.lastReq = req
	return f.slots, f.err
}

func TestAvailabilityHandlerRequiresListing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(&fakeAvailabilitySrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "prov-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/providers/prov-1/availability", nil)

	handler.Slots(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailabilityHandlerParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAvailabilitySrv{slots: []dto.Slot{{
		Date: "2025-03-10", Time: "10:00",
		Start:       time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC),
		IsAvailable: true,
	}}}
	handler := NewAvailabilityHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "prov-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/providers/prov-1/availability?listingId=listing-1&duration=120&week=1", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "client-1", Role: models.RoleClient, ResidenceID: "res-1"})

	handler.Slots(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Equal(t, "prov-1", srv.lastReq.ProviderID)
	assert.Equal(t, "listing-1", srv.lastReq.ListingID)
	assert.Equal(t, 120, srv.lastReq.ServiceDurationMinutes)
	assert.Equal(t, 1, srv.lastReq.WeekIndex)
	assert.Equal(t, "res-1", srv.lastReq.ResidenceID)
}

func TestAvailabilityHandlerRejectsBadDuration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAvailabilityHandler(&fakeAvailabilitySrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "prov-1"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/providers/prov-1/availability?listingId=listing-1&duration=zero", nil)

	handler.Slots(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

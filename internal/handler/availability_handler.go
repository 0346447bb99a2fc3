package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GAMA-00/gato-app-sub001/internal/dto"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
	"github.com/GAMA-00/gato-app-sub001/pkg/response"
)

type availabilityService interface {
	GenerateSlots(ctx context.Context, req dto.AvailabilityRequest) ([]dto.Slot, error)
}

// AvailabilityHandler serves the provider availability read path.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Slots godoc
// @Summary Bookable slots for a provider listing
// @Tags Availability
// @Produce json
// @Param id path string true "Provider ID"
// @Param listingId query string true "Listing ID"
// @Param duration query int false "Service duration in minutes"
// @Param week query int false "Week offset from the current week"
// @Success 200 {object} response.Envelope
// @Router /providers/{id}/availability [get]
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	req := dto.AvailabilityRequest{
		ProviderID: c.Param("id"),
		ListingID:  strings.TrimSpace(c.Query("listingId")),
	}
	if req.ListingID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "listingId is required"))
		return
	}
	if raw := c.Query("duration"); raw != "" {
		duration, err := strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration must be a positive integer"))
			return
		}
		req.ServiceDurationMinutes = duration
	}
	if raw := c.Query("week"); raw != "" {
		week, err := strconv.Atoi(raw)
		if err != nil || week < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week must be a non-negative integer"))
			return
		}
		req.WeekIndex = week
	}
	if claims := claimsFromContext(c); claims != nil {
		req.ResidenceID = claims.ResidenceID
	}

	slots, err := h.service.GenerateSlots(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, slots, len(slots))
}

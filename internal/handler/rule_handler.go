package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GAMA-00/gato-app-sub001/internal/models"
	appErrors "github.com/GAMA-00/gato-app-sub001/pkg/errors"
	"github.com/GAMA-00/gato-app-sub001/pkg/response"
)

type ruleService interface {
	ListForProvider(ctx context.Context, providerID string) ([]models.RecurringRule, error)
	ListForClient(ctx context.Context, clientID string) ([]models.RecurringRule, error)
	Get(ctx context.Context, id, callerID string) (*models.RecurringRule, error)
	Deactivate(ctx context.Context, id, callerID string) error
}

// RuleHandler serves recurring rule reads and cancellation.
type RuleHandler struct {
	service ruleService
}

// NewRuleHandler constructs the handler.
func NewRuleHandler(service ruleService) *RuleHandler {
	return &RuleHandler{service: service}
}

// List godoc
// @Summary Recurring rules of the calling user
// @Tags RecurringRules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /recurring-rules [get]
func (h *RuleHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var (
		rules []models.RecurringRule
		err   error
	)
	if claims.Role == models.RoleProvider {
		rules, err = h.service.ListForProvider(c.Request.Context(), claims.UserID)
	} else {
		rules, err = h.service.ListForClient(c.Request.Context(), claims.UserID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, rules, len(rules))
}

// Get godoc
// @Summary One recurring rule
// @Tags RecurringRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} response.Envelope
// @Router /recurring-rules/{id} [get]
func (h *RuleHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rule, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// Deactivate godoc
// @Summary Stop a recurring rule
// @Tags RecurringRules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 204 "No Content"
// @Router /recurring-rules/{id} [delete]
func (h *RuleHandler) Deactivate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

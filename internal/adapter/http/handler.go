package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/areacheck/property-insight-service/internal/httpkit"
	"github.com/areacheck/property-insight-service/internal/insight"
	"github.com/areacheck/property-insight-service/internal/validation"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// InsightService is the query surface the handlers expose.
type InsightService interface {
	// Streets lists street names for a civic number; remote failure yields
	// an empty list.
	Streets(ctx context.Context, civicNumber int) []string

	// Report runs a full insight query for an address.
	Report(ctx context.Context, civicNumber int, streetName, unitNumber string) (*insight.Report, error)
}

// Handler handles the dashboard API requests.
type Handler struct {
	svc    InsightService
	val    *validation.Validator
	logger *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc InsightService, val *validation.Validator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, val: val, logger: logger}
}

// StreetsRequest is the query for the street-name dropdown.
type StreetsRequest struct {
	CivicNumber int `form:"civic_number" validate:"required,gt=0"`
}

// StreetsResponse lists the matching street names.
type StreetsResponse struct {
	Streets []string `json:"streets"`
}

// Streets returns the street names with tax records for a civic number.
// GET /api/v1/streets?civic_number=N
func (h *Handler) Streets(c *gin.Context) {
	var req StreetsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	httpkit.OK(c, StreetsResponse{Streets: h.svc.Streets(c.Request.Context(), req.CivicNumber)})
}

// InsightRequest is the query for a full property insight report.
type InsightRequest struct {
	CivicNumber int    `form:"civic_number" validate:"required,gt=0"`
	StreetName  string `form:"street_name" validate:"required"`
	UnitNumber  string `form:"unit_number"`
}

// Insights returns the report for an address: summary card, history, and
// figure specifications.
// GET /api/v1/insights?civic_number=N&street_name=S[&unit_number=U]
func (h *Handler) Insights(c *gin.Context) {
	var req InsightRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed)
		return
	}

	report, err := h.svc.Report(c.Request.Context(), req.CivicNumber, req.StreetName, req.UnitNumber)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

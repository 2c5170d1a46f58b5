package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"stayledger/internal/errors"
	"stayledger/internal/service"
)

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	ledger     service.LedgerService
	reconciler service.ReconcileService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(ledger service.LedgerService, reconciler service.ReconcileService) *AdminHandler {
	return &AdminHandler{ledger: ledger, reconciler: reconciler}
}

// SeedResponse represents the seed response.
type SeedResponse struct {
	Message string `json:"message"`
	Created int    `json:"created"`
}

// SeedLedgers godoc
// @Summary Seed the dummy ledgers
// @Description Creates the given accounts, or the built-in dummy accounts when the body is empty. Existing accounts are left untouched.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body []service.SeedAccount false "Accounts to seed"
// @Success 200 {object} SeedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/seed [post]
func (h *AdminHandler) SeedLedgers(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	var accounts []service.SeedAccount
	if len(body) > 0 {
		if err := json.Unmarshal(body, &accounts); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid request body",
				Code:  "INVALID_REQUEST",
			})
		}
		for i := range accounts {
			if err := c.Validate(&accounts[i]); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
					Error: err.Error(),
					Code:  "VALIDATION_ERROR",
				})
			}
		}
	} else {
		if accounts, err = service.DefaultSeedAccounts(); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "INTERNAL_ERROR",
			})
		}
	}

	created, err := h.ledger.Seed(c.Request().Context(), accounts)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, SeedResponse{
		Message: "Ledgers seeded successfully",
		Created: created,
	})
}

// Reconcile godoc
// @Summary Run a reconciliation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ReconciliationReport
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/reconcile [post]
func (h *AdminHandler) Reconcile(c echo.Context) error {
	report, err := h.reconciler.Run(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, report)
}

// LatestReconciliation godoc
// @Summary Get the latest reconciliation report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ReconciliationReport
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/reconcile/latest [get]
func (h *AdminHandler) LatestReconciliation(c echo.Context) error {
	report, err := h.reconciler.Latest(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if report == nil {
		return echo.NewHTTPError(http.StatusNotFound, errors.ErrorResponse{
			Error: "no reconciliation has run yet",
			Code:  "NOT_FOUND",
		})
	}
	return c.JSON(http.StatusOK, report)
}

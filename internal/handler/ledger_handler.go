package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"stayledger/internal/errors"
	"stayledger/internal/service"
)

// LedgerHandler handles ledger endpoints.
type LedgerHandler struct {
	ledger service.LedgerService
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// BalanceResponse represents a balance response.
type BalanceResponse struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

// GetCentralBalance godoc
// @Summary Get the central account balance
// @Tags ledger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /ledger/central [get]
func (h *LedgerHandler) GetCentralBalance(c echo.Context) error {
	balance, err := h.ledger.CentralBalance(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, BalanceResponse{
		Account: "central",
		Balance: balance.StringFixed(2),
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stayledger/internal/errors"
	"stayledger/internal/model"
	"stayledger/internal/service"
)

// StrategyBuilder builds the settlement strategy for a request.
type StrategyBuilder interface {
	New(method model.PaymentMethod, creds service.Credentials) (service.Strategy, error)
}

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	payments   service.PaymentService
	strategies StrategyBuilder
	bookings   service.BookingService
	logger     *zap.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments service.PaymentService, strategies StrategyBuilder, bookings service.BookingService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:   payments,
		strategies: strategies,
		bookings:   bookings,
		logger:     logger.Named("http"),
	}
}

// PaymentRequest represents a pay-for-booking request. Amount defaults to the booking total.
type PaymentRequest struct {
	PaymentID      string `json:"payment_id" validate:"omitempty,max=64"`
	BookingID      string `json:"booking_id" validate:"required,max=64"`
	Amount         string `json:"amount" validate:"omitempty,numeric"`
	Method         string `json:"method" validate:"required,oneof=card paypal bank"`
	CardNumber     string `json:"card_number" validate:"required_if=Method card"`
	CardholderName string `json:"cardholder_name" validate:"required_if=Method card"`
	CardExpiry     string `json:"card_expiry" validate:"required_if=Method card"`
	CVV            string `json:"cvv" validate:"required_if=Method card"`
	Email          string `json:"email" validate:"required_if=Method paypal,omitempty,email"`
	Password       string `json:"password" validate:"required_if=Method paypal"`
	AccountNumber  string `json:"account_number" validate:"required_if=Method bank"`
	BankCode       string `json:"bank_code" validate:"required_if=Method bank"`
}

func (r PaymentRequest) credentials() service.Credentials {
	return service.Credentials{
		CardNumber:     r.CardNumber,
		CardholderName: r.CardholderName,
		CardExpiry:     r.CardExpiry,
		CVV:            r.CVV,
		Email:          r.Email,
		Password:       r.Password,
		AccountNumber:  r.AccountNumber,
		BankCode:       r.BankCode,
	}
}

// PaymentResponse represents the outcome of a payment operation.
type PaymentResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Receipt   string `json:"receipt"`
}

// ReceiptResponse carries a rendered receipt.
type ReceiptResponse struct {
	PaymentID string `json:"payment_id"`
	Receipt   string `json:"receipt"`
}

func newPaymentResponse(payment *model.Payment, success bool, message string) PaymentResponse {
	return PaymentResponse{
		PaymentID: payment.PaymentID,
		Status:    string(payment.Status),
		Success:   success,
		Message:   message,
		Receipt:   service.FormatReceipt(payment),
	}
}

// CreatePayment godoc
// @Summary Pay for a booking
// @Description Creates a payment for the booking and settles it from the given instrument into the central account.
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param request body PaymentRequest true "Payment data"
// @Success 200 {object} PaymentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 402 {object} PaymentResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	ctx := c.Request().Context()
	method := model.PaymentMethod(req.Method)

	var amount decimal.Decimal
	if req.Amount != "" {
		parsed, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid amount",
				Code:  "INVALID_AMOUNT",
			})
		}
		amount = parsed
	} else {
		due, err := h.bookings.AmountDue(ctx, req.BookingID)
		if err != nil {
			return h.fail(err)
		}
		amount = due
	}

	strategy, err := h.strategies.New(method, req.credentials())
	if err != nil {
		return h.fail(err)
	}

	payment, err := h.payments.Create(ctx, req.PaymentID, req.BookingID, amount, method)
	if err != nil {
		return h.fail(err)
	}

	payment, err = h.payments.Process(ctx, payment.PaymentID, strategy)
	if err != nil {
		if payment == nil {
			return h.fail(err)
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, newPaymentResponse(payment, false, httpErr.Message))
	}

	return c.JSON(http.StatusOK, newPaymentResponse(payment, true, "Payment processed successfully"))
}

// RefundPayment godoc
// @Summary Refund a payment
// @Description Returns the amount of a successful payment out of the central account.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Success 200 {object} PaymentResponse
// @Failure 402 {object} PaymentResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} PaymentResponse
// @Router /payments/{id}/refund [post]
func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	payment, err := h.payments.Refund(c.Request().Context(), c.Param("id"))
	if err != nil {
		if payment == nil {
			return h.fail(err)
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, newPaymentResponse(payment, false, httpErr.Message))
	}
	return c.JSON(http.StatusOK, newPaymentResponse(payment, true, "Payment refunded"))
}

// GetPayment godoc
// @Summary Get a payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} model.Payment
// @Failure 404 {object} errors.ErrorResponse
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	payment, err := h.payments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, payment)
}

// GetReceipt godoc
// @Summary Get a payment receipt
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} ReceiptResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) GetReceipt(c echo.Context) error {
	id := c.Param("id")
	receipt, err := h.payments.Receipt(c.Request().Context(), id)
	if err != nil {
		return h.fail(err)
	}
	return c.JSON(http.StatusOK, ReceiptResponse{PaymentID: id, Receipt: receipt})
}

func (h *PaymentHandler) fail(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

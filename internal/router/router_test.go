package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stayledger/internal/access"
	"stayledger/internal/auth"
	"stayledger/internal/handler"
	"stayledger/internal/metrics"
	"stayledger/internal/notify"
	"stayledger/internal/repository"
	"stayledger/internal/service"
	"stayledger/internal/testdb"
)

const testSecret = "router-test-secret"

type testServer struct {
	e      *echo.Echo
	tokens map[access.Role]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testdb.Open(t)
	logger := zap.NewNop()

	ledgerRepo := repository.NewLedgerRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	txm := repository.NewTxManager(db)
	m := metrics.NewPayments()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m))

	payments := service.NewPaymentService(paymentRepo, repository.NewPaymentLogRepository(db), ledgerRepo, txm, nil, notify.NewLogNotifier(logger), m, logger)
	t.Cleanup(payments.Close)
	ledger := service.NewLedgerService(ledgerRepo, txm, nil, logger)
	reconciler := service.NewReconcileService(ledgerRepo, paymentRepo, repository.NewReconciliationRepository(db), txm, m, time.Hour, logger)

	e := echo.New()
	Register(e, Deps{
		JWTSecret:      testSecret,
		Gatherer:       reg,
		Logger:         logger,
		PaymentHandler: handler.NewPaymentHandler(payments, service.NewStrategyFactory(ledgerRepo, txm, logger), service.NewBookingService(repository.NewBookingRepository(db)), logger),
		LedgerHandler:  handler.NewLedgerHandler(ledger),
		AdminHandler:   handler.NewAdminHandler(ledger, reconciler),
	})

	jwtService := auth.NewJWTService(testSecret)
	tokens := map[access.Role]string{}
	for _, role := range []access.Role{access.RoleGuest, access.RoleHost, access.RoleAdmin} {
		token, err := jwtService.GenerateToken("test-"+string(role), role, time.Minute)
		require.NoError(t, err)
		tokens[role] = token
	}

	return &testServer{e: e, tokens: tokens}
}

func (s *testServer) do(method, path string, role access.Role, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token, ok := s.tokens[role]; ok {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_PaymentLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/admin/seed", access.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/payments", access.RoleGuest,
		`{"payment_id":"pay-1","booking_id":"b-1","amount":"250","method":"card","card_number":"1234 5678 9012 3456","cardholder_name":"John Doe","card_expiry":"12/25","cvv":"123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paid handler.PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &paid))
	assert.True(t, paid.Success)
	assert.Equal(t, "Receipt: Payment ID pay-1, Amount $250.00, Status: success", paid.Receipt)

	rec = s.do(http.MethodGet, "/api/ledger/central", access.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account":"central","balance":"250.00"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/payments/pay-1/refund", access.RoleGuest, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/payments/pay-1/refund", access.RoleHost, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/payments/pay-1/receipt", access.RoleHost, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Status: refunded")

	rec = s.do(http.MethodPost, "/api/admin/reconcile", access.RoleAdmin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		AccountsChecked    int `json:"accounts_checked"`
		MismatchedAccounts int `json:"mismatched_accounts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 7, report.AccountsChecked)
	assert.Zero(t, report.MismatchedAccounts)
}

func TestRouter_DeclinedPayment(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/admin/seed", access.RoleAdmin, "").Code)

	rec := s.do(http.MethodPost, "/api/payments", access.RoleGuest,
		`{"payment_id":"pay-1","booking_id":"b-1","amount":"10","method":"paypal","email":"ghost@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	var resp handler.PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "failed", resp.Status)
}

func TestRouter_Auth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/ledger/central", "", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/ledger/central", access.RoleHost, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/admin/seed", access.RoleGuest, "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", "", "").Code)
}

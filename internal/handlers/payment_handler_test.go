package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csedclub/club-payments/internal/adapters/razorpay"
	"github.com/csedclub/club-payments/internal/core/domain"
	"github.com/csedclub/club-payments/internal/core/service"
	"github.com/csedclub/club-payments/internal/handlers"
)

const (
	keyID  = "rzp_test_key"
	secret = "test_secret"
)

type fakeGateway struct {
	srv   *httptest.Server
	calls atomic.Int32
}

// newFakeGateway serves POST /v1/orders, answering with status and body.
func newFakeGateway(t *testing.T, status int, body string) *fakeGateway {
	t.Helper()
	g := &fakeGateway{}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(g.srv.Close)
	return g
}

type notifierFunc func(domain.Ticket)

func (f notifierFunc) Notify(t domain.Ticket) { f(t) }

func setupRouter(t *testing.T, gw *fakeGateway, creds service.Credentials, notify notifierFunc) *gin.Engine {
	t.Helper()
	logger := zerolog.Nop()

	client := razorpay.NewClient(gw.srv.URL, creds.KeyID, creds.KeySecret, 2*time.Second)
	clock := service.WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	})
	svc := service.NewPaymentService(client, razorpay.NewSignatureVerifier(), notify, creds, &logger, clock)

	return handlers.SetupRouter(handlers.NewPaymentHandler(svc), gin.TestMode, &logger, []string{"*"})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const orderJSON = `{"id":"order_abc","entity":"order","amount":49900,"currency":"INR","receipt":"rcpt_1","status":"created"}`

func confirmBody(signature string) map[string]any {
	return map[string]any{
		"razorpay_order_id":   "order_abc",
		"razorpay_payment_id": "pay_123",
		"razorpay_signature":  signature,
		"name":                "Asha",
		"email":               "asha@example.com",
		"event": map[string]any{
			"id":    "ignite-2025",
			"title": "Ignite",
			"date":  "2025-03-14",
			"price": 49900,
		},
	}
}

var validCreds = service.Credentials{KeyID: keyID, KeySecret: secret}

func TestCheckoutFlow(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, orderJSON)
	var notified []domain.Ticket
	r := setupRouter(t, gw, validCreds, func(tk domain.Ticket) { notified = append(notified, tk) })

	w := doJSON(t, r, http.MethodPost, "/create-order", map[string]any{
		"amount": 49900, "currency": "INR", "receipt": "rcpt_1",
		"notes": map[string]string{"eventId": "ignite-2025"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	order := decode(t, w)
	assert.Equal(t, "order_abc", order["id"])
	assert.Equal(t, float64(49900), order["amount"])
	assert.Equal(t, "INR", order["currency"])
	assert.Equal(t, "rcpt_1", order["receipt"])
	assert.Equal(t, keyID, order["keyId"])
	assert.NotContains(t, w.Body.String(), secret)

	w = doJSON(t, r, http.MethodPost, "/confirm", confirmBody(razorpay.Sign("order_abc", "pay_123", secret)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode(t, w)
	assert.Equal(t, true, res["ok"])
	tk, ok := res["ticket"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "TICKET-order_abc-1740823200000", tk["id"])
	assert.Equal(t, "ignite-2025", tk["event"].(map[string]any)["id"])
	assert.Equal(t, map[string]any{"id": "pay_123", "orderId": "order_abc"}, tk["payment"])
	assert.Equal(t, "asha@example.com", tk["purchaser"].(map[string]any)["email"])

	require.Len(t, notified, 1)
	assert.Equal(t, "TICKET-order_abc-1740823200000", notified[0].ID)
}

func TestConfirm_TamperedSignature(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, orderJSON)
	var notified int
	r := setupRouter(t, gw, validCreds, func(domain.Ticket) { notified++ })

	sig := []byte(razorpay.Sign("order_abc", "pay_123", secret))
	if sig[0] == 'a' {
		sig[0] = 'b'
	} else {
		sig[0] = 'a'
	}

	w := doJSON(t, r, http.MethodPost, "/confirm", confirmBody(string(sig)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid payment signature"}`, w.Body.String())
	assert.Zero(t, notified)
}

func TestConfirm_SignatureFromOtherPayment(t *testing.T) {
	r := setupRouter(t, newFakeGateway(t, http.StatusOK, orderJSON), validCreds, func(domain.Ticket) {})

	w := doJSON(t, r, http.MethodPost, "/confirm", confirmBody(razorpay.Sign("order_abc", "pay_999", secret)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "ticket")
}

func TestConfirm_MissingSecret(t *testing.T) {
	r := setupRouter(t, newFakeGateway(t, http.StatusOK, orderJSON), service.Credentials{KeyID: keyID}, func(domain.Ticket) {})

	w := doJSON(t, r, http.MethodPost, "/confirm", confirmBody(razorpay.Sign("order_abc", "pay_123", secret)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Missing RAZORPAY_KEY_SECRET on server"}`, w.Body.String())
}

func TestConfirm_IncompletePayload(t *testing.T) {
	r := setupRouter(t, newFakeGateway(t, http.StatusOK, orderJSON), validCreds, func(domain.Ticket) {})

	body := confirmBody(razorpay.Sign("order_abc", "pay_123", secret))
	delete(body, "email")

	w := doJSON(t, r, http.MethodPost, "/confirm", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "email")
}

func TestCreateOrder_Validation(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, orderJSON)
	r := setupRouter(t, gw, validCreds, func(domain.Ticket) {})

	for name, body := range map[string]any{
		"missing amount":   map[string]any{"currency": "INR"},
		"missing currency": map[string]any{"amount": 100},
		"zero amount":      map[string]any{"amount": 0, "currency": "INR"},
		"malformed json":   `{"amount":`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/create-order", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}
	assert.Zero(t, gw.calls.Load(), "gateway must not be reached")
}

func TestCreateOrder_MissingCredentials(t *testing.T) {
	gw := newFakeGateway(t, http.StatusOK, orderJSON)
	r := setupRouter(t, gw, service.Credentials{}, func(domain.Ticket) {})

	w := doJSON(t, r, http.MethodPost, "/create-order", map[string]any{"amount": 100, "currency": "INR"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["error"], "RAZORPAY_KEY_ID")
	assert.Zero(t, gw.calls.Load())
}

func TestCreateOrder_UpstreamRejection(t *testing.T) {
	gw := newFakeGateway(t, http.StatusUnauthorized, `{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`)
	r := setupRouter(t, gw, validCreds, func(domain.Ticket) {})

	w := doJSON(t, r, http.MethodPost, "/create-order", map[string]any{"amount": 100, "currency": "INR"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	msg, _ := decode(t, w)["error"].(string)
	assert.Contains(t, msg, "failed to create order: 401")
	assert.Contains(t, msg, "Authentication failed")
	assert.Equal(t, int32(1), gw.calls.Load())
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, newFakeGateway(t, http.StatusOK, orderJSON), validCreds, func(domain.Ticket) {})

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"club-payments"}`, w.Body.String())
}

func TestMiddleware_RequestIDAndCORS(t *testing.T) {
	r := setupRouter(t, newFakeGateway(t, http.StatusOK, orderJSON), validCreds, func(domain.Ticket) {})

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodOptions, "/confirm", nil)
	req.Header.Set("Origin", "https://csed.club")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCORSMiddleware_AllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers.CORSMiddleware([]string{"https://csed.club"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://csed.club")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://csed.club", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

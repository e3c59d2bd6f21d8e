package fedapay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"busbenin/internal/domain"
)

const testKey = "sk_sandbox_0123456789abcdef0123"

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(testKey, "sandbox", 5*time.Second)
	c.baseURL = srv.URL
	return c, srv
}

func TestCreateTransactionParsesEnvelope(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody createRequest

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"v1/transaction":{"id":184747,"payment_token":"TOK1","status":"pending"}}`))
	})

	tx, err := c.CreateTransaction(context.Background(), TransactionParams{
		Amount:        2000,
		Description:   "Réservation Cotonou - Parakou",
		CustomerName:  "Awa Dossou",
		CustomerEmail: "awa@example.com",
		CustomerPhone: "+2290197000001",
		Operator:      "mtn",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if gotPath != "/transactions" {
		t.Errorf("path = %q, want /transactions", gotPath)
	}
	if gotAuth != "Bearer "+testKey {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotBody.Currency.ISO != "XOF" {
		t.Errorf("currency = %q, want XOF", gotBody.Currency.ISO)
	}
	if gotBody.Customer.PhoneNumber.Country != "BJ" {
		t.Errorf("phone country = %q, want BJ", gotBody.Customer.PhoneNumber.Country)
	}
	if gotBody.Customer.Firstname != "Awa" || gotBody.Customer.Lastname != "Dossou" {
		t.Errorf("customer = %q %q", gotBody.Customer.Firstname, gotBody.Customer.Lastname)
	}
	if gotBody.Mode != "mtn" {
		t.Errorf("mode = %q, want mtn", gotBody.Mode)
	}

	if tx.ID != "184747" {
		t.Errorf("id = %q, want 184747", tx.ID)
	}
	if tx.PaymentToken != "TOK1" {
		t.Errorf("token = %q, want TOK1", tx.PaymentToken)
	}
	if want := "https://sandbox-process.fedapay.com/TOK1"; tx.PaymentURL != want {
		t.Errorf("payment url = %q, want %q", tx.PaymentURL, want)
	}
}

func TestCreateTransactionLegacyEnvelopeKey(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"transaction":{"id":"T1","payment_token":"TOK1","status":"pending"}}`))
	})

	tx, err := c.CreateTransaction(context.Background(), TransactionParams{
		Amount:        1000,
		CustomerPhone: "+2290197000001",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.ID != "T1" {
		t.Errorf("id = %q, want T1", tx.ID)
	}
}

func TestCreateTransactionGatewayErrorMessage(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Le numéro de téléphone est invalide"}`))
	})

	_, err := c.CreateTransaction(context.Background(), TransactionParams{
		Amount:        1000,
		CustomerPhone: "+2290197000001",
	})
	if !domain.IsGateway(err) {
		t.Fatalf("want GatewayError, got %v", err)
	}
	if !strings.Contains(err.Error(), "numéro de téléphone") {
		t.Errorf("gateway message lost: %v", err)
	}
	if !strings.Contains(err.Error(), "422") {
		t.Errorf("status lost: %v", err)
	}
}

func TestCreateTransactionShortKeyIsConfigError(t *testing.T) {
	called := false
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	c.secretKey = "short"

	_, err := c.CreateTransaction(context.Background(), TransactionParams{
		Amount:        1000,
		CustomerPhone: "+2290197000001",
	})
	if !domain.IsConfig(err) {
		t.Fatalf("want ConfigError, got %v", err)
	}
	if called {
		t.Error("no request should leave the process with a placeholder key")
	}
}

func TestCreateTransactionRejectsBadInputLocally(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	})

	if _, err := c.CreateTransaction(context.Background(), TransactionParams{Amount: 0, CustomerPhone: "+2290197000001"}); !domain.IsValidation(err) {
		t.Errorf("zero amount: want ValidationError, got %v", err)
	}
	if _, err := c.CreateTransaction(context.Background(), TransactionParams{Amount: 1000}); !domain.IsValidation(err) {
		t.Errorf("missing phone: want ValidationError, got %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	calls := 0
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/transactions/T1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"v1/transaction":{"id":"T1","status":"approved"}}`))
	})

	for i := 0; i < 2; i++ {
		status, err := c.CheckStatus(context.Background(), "T1")
		if err != nil {
			t.Fatalf("CheckStatus: %v", err)
		}
		if status != StatusApproved {
			t.Errorf("status = %q, want approved", status)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestCheckStatusMissingTransaction(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	if _, err := c.CheckStatus(context.Background(), "T1"); !domain.IsGateway(err) {
		t.Errorf("want GatewayError, got %v", err)
	}
}

func TestSendPaymentWithToken(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	err := c.SendPaymentWithToken(context.Background(), "mtn", "TOK1", &PhoneNumber{Number: "+2290197000001", Country: "BJ"})
	if err != nil {
		t.Fatalf("SendPaymentWithToken: %v", err)
	}
	if gotPath != "/transactions/mtn" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["token"] != "TOK1" {
		t.Errorf("token = %v", gotBody["token"])
	}
	if _, ok := gotBody["phone_number"]; !ok {
		t.Error("phone_number missing from body")
	}
}

func TestPaymentURL(t *testing.T) {
	sandbox := NewClient(testKey, "sandbox", time.Second)
	live := NewClient(testKey, "live", time.Second)

	if got := sandbox.PaymentURL("TOK1"); got != "https://sandbox-process.fedapay.com/TOK1" {
		t.Errorf("sandbox url = %q", got)
	}
	if got := live.PaymentURL("TOK1"); got != "https://process.fedapay.com/TOK1" {
		t.Errorf("live url = %q", got)
	}
	if got := live.PaymentURL("https://example.com/pay"); got != "https://example.com/pay" {
		t.Errorf("full url should pass through, got %q", got)
	}
}

func TestEnvironmentBaseURL(t *testing.T) {
	if c := NewClient(testKey, "sandbox", time.Second); c.baseURL != baseSandbox {
		t.Errorf("sandbox base = %q", c.baseURL)
	}
	if c := NewClient(testKey, "live", time.Second); c.baseURL != baseLive {
		t.Errorf("live base = %q", c.baseURL)
	}
	if c := NewClient(testKey, "production", time.Second); c.baseURL != baseLive {
		t.Errorf("production base = %q", c.baseURL)
	}
}

// Package fedapay wraps the FedaPay REST API (mobile-money payments for
// Benin). It is a stateless request/response client: no retries, no
// background polling. Callers decide whether to re-invoke.
package fedapay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"busbenin/internal/domain"

	circuit "github.com/rubyist/circuitbreaker"
)

const (
	baseSandbox = "https://sandbox-api.fedapay.com/v1"
	baseLive    = "https://api.fedapay.com/v1"

	processSandbox = "https://sandbox-process.fedapay.com"
	processLive    = "https://process.fedapay.com"

	// FedaPay secret keys are sk_sandbox_/sk_live_ prefixed and well over
	// this length; anything shorter is a placeholder, not a credential.
	minKeyLength = 20

	// Outbound calls trip the breaker after this many consecutive failures.
	breakerThreshold = 5
)

// Canonical transaction statuses returned by the gateway.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
	StatusCanceled = "canceled"
)

type Client struct {
	secretKey   string
	environment string
	baseURL     string
	http        *circuit.HTTPClient
}

// NewClient builds a client for the given environment ("sandbox" or
// "live"/"production"). The key is validated lazily so that construction
// never fails; operations return a ConfigError instead.
func NewClient(secretKey, environment string, timeout time.Duration) *Client {
	base := baseSandbox
	if environment == "live" || environment == "production" {
		base = baseLive
	}
	return &Client{
		secretKey:   strings.TrimSpace(secretKey),
		environment: environment,
		baseURL:     base,
		http:        circuit.NewHTTPClient(timeout, breakerThreshold, nil),
	}
}

// TransactionParams carries everything needed to create a transaction.
// Amount is in FCFA (XOF has no minor unit).
type TransactionParams struct {
	Amount        int64
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Operator      string // "mtn", "moov", "celtiis"
	CallbackURL   string
}

// Transaction is the subset of the gateway's transaction object the flow
// needs. ID is kept as a string: it is an opaque correlation identifier.
type Transaction struct {
	ID           string
	PaymentToken string
	PaymentURL   string
	Status       string
}

type PhoneNumber struct {
	Number  string `json:"number"`
	Country string `json:"country"`
}

type wireCustomer struct {
	Firstname   string      `json:"firstname"`
	Lastname    string      `json:"lastname"`
	Email       string      `json:"email,omitempty"`
	PhoneNumber PhoneNumber `json:"phone_number"`
}

type wireCurrency struct {
	ISO string `json:"iso"`
}

type createRequest struct {
	Description string       `json:"description"`
	Amount      int64        `json:"amount"`
	Currency    wireCurrency `json:"currency"`
	Customer    wireCustomer `json:"customer"`
	CallbackURL string       `json:"callback_url,omitempty"`
	Mode        string       `json:"mode,omitempty"`
}

type wireTransaction struct {
	ID           json.Number `json:"id"`
	PaymentToken string      `json:"payment_token"`
	PaymentURL   string      `json:"payment_url"`
	Status       string      `json:"status"`
}

// FedaPay nests the object under "v1/transaction" (with a slash); older
// deployments used "transaction".
type envelope struct {
	V1Transaction *wireTransaction `json:"v1/transaction"`
	Transaction   *wireTransaction `json:"transaction"`
	Message       string           `json:"message"`
	ErrorMsg      string           `json:"error"`
}

func (e envelope) transaction() *wireTransaction {
	if e.V1Transaction != nil {
		return e.V1Transaction
	}
	return e.Transaction
}

func (e envelope) errorMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorMsg
}

func (c *Client) checkKey() error {
	if len(c.secretKey) < minKeyLength {
		return domain.ConfigError{Msg: "clé API FedaPay non configurée"}
	}
	return nil
}

// CreateTransaction creates a payment transaction on the gateway. Not
// idempotent: calling it twice creates two transactions.
func (c *Client) CreateTransaction(ctx context.Context, p TransactionParams) (Transaction, error) {
	if err := c.checkKey(); err != nil {
		return Transaction{}, err
	}
	if p.Amount <= 0 {
		return Transaction{}, domain.ValidationError{Field: "amount", Msg: "le montant doit être positif"}
	}
	if strings.TrimSpace(p.CustomerPhone) == "" {
		return Transaction{}, domain.ValidationError{Field: "phone", Msg: "le téléphone du client est requis"}
	}

	firstname, lastname := splitName(p.CustomerName)
	body := createRequest{
		Description: p.Description,
		Amount:      p.Amount,
		Currency:    wireCurrency{ISO: "XOF"},
		Customer: wireCustomer{
			Firstname: firstname,
			Lastname:  lastname,
			Email:     p.CustomerEmail,
			PhoneNumber: PhoneNumber{
				Number:  p.CustomerPhone,
				Country: "BJ",
			},
		},
		Mode: p.Operator,
	}
	if strings.HasPrefix(p.CallbackURL, "http://") || strings.HasPrefix(p.CallbackURL, "https://") {
		body.CallbackURL = p.CallbackURL
	}

	var env envelope
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &env); err != nil {
		return Transaction{}, err
	}

	tx := env.transaction()
	if tx == nil {
		return Transaction{}, domain.GatewayError{Msg: "réponse FedaPay sans transaction"}
	}

	out := Transaction{
		ID:           tx.ID.String(),
		PaymentToken: tx.PaymentToken,
		PaymentURL:   c.PaymentURL(firstNonEmpty(tx.PaymentURL, tx.PaymentToken)),
		Status:       tx.Status,
	}
	return out, nil
}

// CheckStatus reads the current status of a transaction. Pure read, safe to
// call repeatedly.
func (c *Client) CheckStatus(ctx context.Context, transactionID string) (string, error) {
	if err := c.checkKey(); err != nil {
		return "", err
	}
	if strings.TrimSpace(transactionID) == "" {
		return "", domain.ValidationError{Field: "transaction_id", Msg: "identifiant requis"}
	}

	var env envelope
	if err := c.do(ctx, http.MethodGet, "/transactions/"+transactionID, nil, &env); err != nil {
		return "", err
	}

	tx := env.transaction()
	if tx == nil || tx.Status == "" {
		return "", domain.GatewayError{Msg: "réponse FedaPay sans statut"}
	}
	return tx.Status, nil
}

// SendPaymentWithToken triggers a redirect-free Mobile Money payment
// ("send payment to user"): POST /transactions/{mode} with the payment
// token. The phone override is optional.
func (c *Client) SendPaymentWithToken(ctx context.Context, mode, token string, phone *PhoneNumber) error {
	if err := c.checkKey(); err != nil {
		return err
	}
	if mode == "" || token == "" {
		return domain.ValidationError{Field: "mode", Msg: "mode de paiement ou token manquant"}
	}

	body := map[string]any{"token": token}
	if phone != nil && phone.Number != "" && phone.Country != "" {
		body["phone_number"] = phone
	}

	var env envelope
	return c.do(ctx, http.MethodPost, "/transactions/"+mode, body, &env)
}

// PaymentURL builds the hosted payment page URL from a token. Full URLs
// pass through unchanged.
func (c *Client) PaymentURL(tokenOrURL string) string {
	if strings.HasPrefix(tokenOrURL, "http://") || strings.HasPrefix(tokenOrURL, "https://") {
		return tokenOrURL
	}
	base := processSandbox
	if c.environment == "live" || c.environment == "production" {
		base = processLive
	}
	return base + "/" + tokenOrURL
}

func (c *Client) do(ctx context.Context, method, path string, body any, out *envelope) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return domain.InternalError{Msg: "encodage requête FedaPay", Err: err}
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.InternalError{Msg: "construction requête FedaPay", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.GatewayError{Msg: "appel FedaPay échoué", Err: err}
	}
	defer resp.Body.Close()

	// Some endpoints answer with an empty body; keep the decode error aside
	// and let the HTTP status decide first.
	decErr := json.NewDecoder(resp.Body).Decode(out)
	if decErr == io.EOF {
		decErr = nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := out.errorMessage()
		if msg == "" {
			msg = "erreur FedaPay"
		}
		return domain.GatewayError{Msg: msg, Status: resp.StatusCode}
	}
	if decErr != nil {
		return domain.GatewayError{Msg: "réponse FedaPay illisible", Err: decErr}
	}
	return nil
}

func splitName(full string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(full))
	if len(fields) == 0 {
		return "Client", "BusBenin"
	}
	if len(fields) == 1 {
		return fields[0], "BusBenin"
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

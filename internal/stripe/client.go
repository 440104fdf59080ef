package stripe

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/yaknet/monkeysync/internal/model"
)

// DefaultAPIURL is the public Stripe API.
const DefaultAPIURL = "https://api.stripe.com"

// ClientConfig configures the Stripe API client.
type ClientConfig struct {
	APIURL   string // Default: DefaultAPIURL
	APIKey   string
	Timeout  time.Duration // Default: 30 seconds
	PageSize int           // Default: 100, the Stripe maximum
	Log      zerolog.Logger
}

// Client reads balance transactions, charges and customers.
type Client struct {
	api        *client.API
	httpClient *http.Client
	baseURL    string
	pageSize   int64
}

// APIError is a non-2xx response from Stripe.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("stripe API error (status %d, %s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("stripe API error (status %d): %s", e.StatusCode, e.Message)
}

// NewClient creates a Stripe client authenticated with the secret key.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := strings.TrimRight(config.APIURL, "/")
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	pageSize := int64(config.PageSize)
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	httpClient := &http.Client{Timeout: timeout}
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		URL:               stripego.String(baseURL),
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     leveledLogger{log: config.Log},
	})
	api := &client.API{}
	api.Init(config.APIKey, &stripego.Backends{API: backend, Connect: backend, Uploads: backend})

	return &Client{
		api:        api,
		httpClient: httpClient,
		baseURL:    baseURL,
		pageSize:   pageSize,
	}
}

// Transactions lists balance transactions created inside w, newest
// first. Pages are fetched as the sequence is consumed.
func (c *Client) Transactions(ctx context.Context, w Window) iter.Seq2[model.RawTransaction, error] {
	return func(yield func(model.RawTransaction, error) bool) {
		params := &stripego.BalanceTransactionListParams{CreatedRange: w.Range()}
		params.Context = ctx
		params.Limit = stripego.Int64(c.pageSize)

		it := c.api.BalanceTransactions.List(params)
		for it.Next() {
			if !yield(balanceTransaction(it.BalanceTransaction()), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, fmt.Errorf("listing balance transactions: %w", apiError(err)))
		}
	}
}

// Customers lists customers created inside w.
func (c *Client) Customers(ctx context.Context, w Window) iter.Seq2[map[string]any, error] {
	return func(yield func(map[string]any, error) bool) {
		params := &stripego.CustomerListParams{CreatedRange: w.Range()}
		params.Context = ctx
		params.Limit = stripego.Int64(c.pageSize)

		it := c.api.Customers.List(params)
		for it.Next() {
			if !yield(customer(it.Customer()), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, fmt.Errorf("listing customers: %w", apiError(err)))
		}
	}
}

// Charge fetches a single charge.
func (c *Client) Charge(ctx context.Context, id string) (model.RawTransaction, error) {
	params := &stripego.ChargeParams{}
	params.Context = ctx
	ch, err := c.api.Charges.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("fetching charge %s: %w", id, apiError(err))
	}

	raw := model.RawTransaction{model.FieldID: ch.ID}
	setString(raw, model.FieldDescription, ch.Description)
	if ch.BillingDetails != nil {
		details := map[string]any{}
		setString(details, "email", ch.BillingDetails.Email)
		setString(details, "name", ch.BillingDetails.Name)
		setString(details, "phone", ch.BillingDetails.Phone)
		if addr := address(ch.BillingDetails.Address); addr != nil {
			details["address"] = addr
		}
		raw[model.FieldBillingDetails] = details
	}
	return raw, nil
}

// balanceTransaction flattens the SDK struct into the raw map the
// normalizer reads. Amounts stay in minor units and times in unix seconds.
func balanceTransaction(bt *stripego.BalanceTransaction) model.RawTransaction {
	raw := model.RawTransaction{
		model.FieldID:      bt.ID,
		model.FieldType:    string(bt.Type),
		model.FieldAmount:  bt.Amount,
		model.FieldFee:     bt.Fee,
		model.FieldNet:     bt.Net,
		model.FieldCreated: bt.Created,
	}
	setString(raw, model.FieldDescription, bt.Description)
	setString(raw, "currency", string(bt.Currency))
	setString(raw, "status", string(bt.Status))
	if bt.AvailableOn != 0 {
		raw[model.FieldAvailableOn] = bt.AvailableOn
	}
	if bt.Source != nil {
		setString(raw, model.FieldSource, bt.Source.ID)
	}
	return raw
}

func customer(cu *stripego.Customer) map[string]any {
	m := map[string]any{model.FieldID: cu.ID}
	setString(m, "email", cu.Email)
	setString(m, "name", cu.Name)
	setString(m, "phone", cu.Phone)
	if addr := address(cu.Address); addr != nil {
		m["address"] = addr
	}
	return m
}

func address(a *stripego.Address) map[string]any {
	if a == nil {
		return nil
	}
	m := map[string]any{}
	setString(m, "line1", a.Line1)
	setString(m, "line2", a.Line2)
	setString(m, "city", a.City)
	setString(m, "state", a.State)
	setString(m, "postal_code", a.PostalCode)
	setString(m, "country", a.Country)
	if len(m) == 0 {
		return nil
	}
	return m
}

func setString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// apiError turns an SDK error into an APIError.
func apiError(err error) error {
	var se *stripego.Error
	if errors.As(err, &se) {
		return &APIError{StatusCode: se.HTTPStatusCode, Type: string(se.Type), Message: se.Msg}
	}
	return err
}

// leveledLogger routes SDK logs through zerolog.
type leveledLogger struct {
	log zerolog.Logger
}

func (l leveledLogger) Debugf(format string, v ...interface{}) { l.log.Debug().Msgf(format, v...) }
func (l leveledLogger) Infof(format string, v ...interface{})  { l.log.Debug().Msgf(format, v...) }
func (l leveledLogger) Warnf(format string, v ...interface{})  { l.log.Warn().Msgf(format, v...) }
func (l leveledLogger) Errorf(format string, v ...interface{}) { l.log.Error().Msgf(format, v...) }

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var (
	ErrIntentNotFound = errors.New("payment intent not found")
	ErrUpstream       = errors.New("payment provider unavailable")
)

// Intent is the provider-agnostic view of a payment intent. The server is a
// thin pass-through: no payment state is persisted and there is no webhook
// reconciliation.
type Intent struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

// StripeGateway talks to the Stripe PaymentIntents API. Used in staging/production.
type StripeGateway struct {
	api *client.API
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}

	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		ClientSecret: pi.ClientSecret,
	}
}

// LogGateway fakes payment intents in memory and logs them. Used in ENV=local.
type LogGateway struct {
	logger *slog.Logger

	mu      sync.Mutex
	intents map[string]*Intent
}

func (g *LogGateway) CreateIntent(_ context.Context, amount int64, currency string) (*Intent, error) {
	intent := &Intent{
		ID:           "pi_local_" + uuid.NewString(),
		Amount:       amount,
		Currency:     currency,
		Status:       "requires_payment_method",
		ClientSecret: "secret_local_" + uuid.NewString(),
	}
	g.mu.Lock()
	g.intents[intent.ID] = intent
	g.mu.Unlock()
	g.logger.Info("payment intent created (local dev)",
		"intent_id", intent.ID, "amount", amount, "currency", currency)
	return intent, nil
}

func (g *LogGateway) GetIntent(_ context.Context, id string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	return intent, nil
}

// NewGateway returns a LogGateway for ENV=local, StripeGateway otherwise.
func NewGateway(env, apiKey string, logger *slog.Logger) Gateway {
	if env == "local" {
		return &LogGateway{logger: logger, intents: make(map[string]*Intent)}
	}

	api := &client.API{}
	api.Init(apiKey, &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			MaxNetworkRetries: stripe.Int64(0), // failures surface to the caller, nothing is retried
		}),
	})
	return &StripeGateway{api: api}
}

package services

import (
	"context"
	"net/url"

	"subbridge/internal/core"
	"subbridge/internal/wallos"
)

// EntityReader reads the entity lists the resolver matches names against.
type EntityReader interface {
	Categories(ctx context.Context) ([]core.Category, error)
	Currencies(ctx context.Context) ([]core.Currency, int, error)
	PaymentMethods(ctx context.Context) ([]core.PaymentMethod, error)
	Household(ctx context.Context) ([]core.Member, error)
}

// EntityWriter creates referenced entities on the fly.
type EntityWriter interface {
	CreateCategory(ctx context.Context, name string) (int, error)
	CreatePaymentMethod(ctx context.Context, name string) (int, error)
	CreateCurrency(ctx context.Context, name, symbol, code string) (int, error)
	CreateMember(ctx context.Context, name, email string) (int, error)
}

// SubscriptionReader re-fetches the canonical subscription records.
type SubscriptionReader interface {
	Subscriptions(ctx context.Context, filter core.SubscriptionFilter) ([]core.Subscription, error)
}

// SubscriptionWriter submits subscription create/edit forms.
type SubscriptionWriter interface {
	EnsureSession(ctx context.Context) error
	SubmitSubscription(ctx context.Context, action wallos.SubscriptionAction, form url.Values) (core.Ack, error)
}

// Backend is the full surface the mutation engine needs from the
// remote client.
type Backend interface {
	EntityReader
	EntityWriter
	SubscriptionReader
	SubscriptionWriter
}

// Ensure the wallos client satisfies the engine's ports.
var _ Backend = (*wallos.Client)(nil)

package services

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync"

	"subbridge/internal/core"
	"subbridge/internal/log"
	"subbridge/internal/wallos"
)

// fakeBackend is an in-memory Backend that records every create and
// submission so tests can assert on exactly what went over the wire.
type fakeBackend struct {
	mu sync.Mutex

	categories   []core.Category
	currencies   []core.Currency
	mainCurrency int
	methods      []core.PaymentMethod
	members      []core.Member
	subs         []core.Subscription

	nextID int

	createdCategories []string
	createdCurrencies []core.Currency
	createdMethods    []string
	createdMembers    []core.Member

	sessionCalls int
	submissions  []submission

	// onSubmit, when set, mutates backend state to simulate the write
	// landing (e.g. appending the created subscription).
	onSubmit func(f *fakeBackend, action wallos.SubscriptionAction, form url.Values)
}

type submission struct {
	action wallos.SubscriptionAction
	form   url.Values
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		currencies:   []core.Currency{{ID: 2, Name: "Euro", Symbol: "€", Code: "EUR"}},
		mainCurrency: 2,
		members:      []core.Member{{ID: 1, Name: "Alice"}, {ID: 4, Name: "Bob"}},
		nextID:       100,
	}
}

func (f *fakeBackend) Categories(context.Context) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Category(nil), f.categories...), nil
}

func (f *fakeBackend) Currencies(context.Context) ([]core.Currency, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Currency(nil), f.currencies...), f.mainCurrency, nil
}

func (f *fakeBackend) PaymentMethods(context.Context) ([]core.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.PaymentMethod(nil), f.methods...), nil
}

func (f *fakeBackend) Household(context.Context) ([]core.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Member(nil), f.members...), nil
}

func (f *fakeBackend) Subscriptions(context.Context, core.SubscriptionFilter) ([]core.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Subscription(nil), f.subs...), nil
}

func (f *fakeBackend) CreateCategory(_ context.Context, name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.categories = append(f.categories, core.Category{ID: f.nextID, Name: name})
	f.createdCategories = append(f.createdCategories, name)
	return f.nextID, nil
}

func (f *fakeBackend) CreatePaymentMethod(_ context.Context, name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.methods = append(f.methods, core.PaymentMethod{ID: f.nextID, Name: name})
	f.createdMethods = append(f.createdMethods, name)
	return f.nextID, nil
}

func (f *fakeBackend) CreateCurrency(_ context.Context, name, symbol, code string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := core.Currency{ID: f.nextID, Name: name, Symbol: symbol, Code: code}
	f.currencies = append(f.currencies, c)
	f.createdCurrencies = append(f.createdCurrencies, c)
	return f.nextID, nil
}

func (f *fakeBackend) CreateMember(_ context.Context, name, email string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m := core.Member{ID: f.nextID, Name: name, Email: email}
	f.members = append(f.members, m)
	f.createdMembers = append(f.createdMembers, m)
	return f.nextID, nil
}

func (f *fakeBackend) EnsureSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionCalls++
	return nil
}

func (f *fakeBackend) SubmitSubscription(_ context.Context, action wallos.SubscriptionAction, form url.Values) (core.Ack, error) {
	f.mu.Lock()
	f.submissions = append(f.submissions, submission{action: action, form: form})
	f.mu.Unlock()
	if f.onSubmit != nil {
		f.onSubmit(f, action, form)
	}
	return core.Ack{Success: true, Message: "ok", Raw: []byte(`{"success":true}`)}, nil
}

func (f *fakeBackend) lastForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.submissions) == 0 {
		return nil
	}
	return f.submissions[len(f.submissions)-1].form
}

func discardLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestEngine(f *fakeBackend) (*Resolver, *Submitter) {
	resolver := NewResolver(f, discardLogger(), "wallos.local")
	submitter := NewSubmitter(f, resolver, discardLogger())
	return resolver, submitter
}

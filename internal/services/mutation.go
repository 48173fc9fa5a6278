package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"subbridge/internal/core"
	"subbridge/internal/log"
	"subbridge/internal/wallos"
)

// CreateInput describes a subscription to create. Name and Price are
// required; everything else is optional with the documented defaults.
type CreateInput struct {
	Name  string
	Price float64

	CurrencyID   int
	CurrencyCode string

	CategoryID   int
	CategoryName string

	PaymentMethodID   int
	PaymentMethodName string

	PayerID   int
	PayerName string

	// BillingPeriod is free-form ("monthly", "quarterly", "2 weeks",
	// a bare cycle ordinal, ...). Frequency, when positive, overrides
	// the multiplier the period implies.
	BillingPeriod string
	Frequency     int

	StartDate   string
	NextPayment string

	// AutoRenew defaults to true when nil.
	AutoRenew *bool

	Notify           bool
	NotifyDaysBefore int
	Notes            string
	URL              string
}

// EditInput is a partial subscription update. Only non-nil fields are
// sent; an empty edit carries nothing but the target id.
type EditInput struct {
	ID int

	Name  *string
	Price *float64

	CurrencyID   *int
	CurrencyCode *string

	CategoryID   *int
	CategoryName *string

	PaymentMethodID   *int
	PaymentMethodName *string

	PayerID   *int
	PayerName *string

	BillingPeriod *string
	Frequency     *int

	StartDate   *string
	NextPayment *string

	AutoRenew        *bool
	Notify           *bool
	NotifyDaysBefore *int
	Notes            *string
	URL              *string
	Inactive         *bool
}

// MutationResult is the engine's success output: the normalized backend
// acknowledgement plus, where the re-fetch located it, the fresh
// canonical record.
type MutationResult struct {
	Ack          core.Ack
	Subscription *core.Subscription
}

// Submitter orchestrates authentication, entity resolution, schedule
// normalization, and subscription writes.
type Submitter struct {
	backend  Backend
	resolver *Resolver
	log      *log.Logger

	// now is swapped out in tests.
	now func() time.Time
}

// NewSubmitter creates a submitter over the given backend and resolver.
func NewSubmitter(backend Backend, resolver *Resolver, logger *log.Logger) *Submitter {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Submitter{
		backend:  backend,
		resolver: resolver,
		log:      logger.WithComponent("submitter"),
		now:      time.Now,
	}
}

// CreateSubscription resolves every reference on the input, submits the
// create, and returns the acknowledgement merged with the freshest
// matching record.
func (s *Submitter) CreateSubscription(ctx context.Context, in CreateInput) (*MutationResult, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, core.Errorf(core.KindInvalidInput, "subscription name is required")
	}
	if in.Price <= 0 {
		return nil, core.Errorf(core.KindInvalidInput, "subscription price must be positive")
	}

	if err := s.backend.EnsureSession(ctx); err != nil {
		return nil, err
	}

	currencyID, err := s.resolver.CurrencyID(ctx, in.CurrencyID, in.CurrencyCode)
	if err != nil {
		return nil, err
	}
	categoryID, err := s.resolver.CategoryID(ctx, in.CategoryID, in.CategoryName)
	if err != nil {
		return nil, err
	}
	if categoryID == 0 {
		// The backend files uncategorized subscriptions under its
		// reserved default category.
		categoryID = core.ProtectedCategoryID
	}
	paymentMethodID, err := s.resolver.PaymentMethodID(ctx, in.PaymentMethodID, in.PaymentMethodName)
	if err != nil {
		return nil, err
	}
	if paymentMethodID == 0 {
		paymentMethodID = 1
	}
	payerID, err := s.resolver.PayerID(ctx, in.PayerID, in.PayerName)
	if err != nil {
		return nil, err
	}

	cycle, frequency, fellBack := core.ParseBillingPeriod(in.BillingPeriod, in.Frequency)
	if fellBack {
		s.log.WarnContext(ctx, "unrecognized billing period, defaulting to monthly",
			"billing_period", in.BillingPeriod)
	}

	startDate, nextPayment, err := core.Schedule(in.StartDate, in.NextPayment, cycle, frequency, s.now())
	if err != nil {
		return nil, core.WrapErr(core.KindInvalidInput, err, "invalid subscription dates")
	}

	autoRenew := true
	if in.AutoRenew != nil {
		autoRenew = *in.AutoRenew
	}

	form := url.Values{}
	form.Set("name", strings.TrimSpace(in.Name))
	form.Set("price", formatPrice(in.Price))
	form.Set("currency_id", strconv.Itoa(currencyID))
	form.Set("category_id", strconv.Itoa(categoryID))
	form.Set("payment_method_id", strconv.Itoa(paymentMethodID))
	form.Set("payer_user_id", strconv.Itoa(payerID))
	form.Set("cycle", strconv.Itoa(int(cycle)))
	form.Set("frequency", strconv.Itoa(frequency))
	form.Set("start_date", startDate)
	form.Set("next_payment", nextPayment)
	form.Set("auto_renew", formatFlag(autoRenew))
	form.Set("notify", formatFlag(in.Notify))
	if in.Notify && in.NotifyDaysBefore > 0 {
		form.Set("notify_days_before", strconv.Itoa(in.NotifyDaysBefore))
	}
	if in.Notes != "" {
		form.Set("notes", in.Notes)
	}
	if in.URL != "" {
		form.Set("url", in.URL)
	}

	ack, err := s.backend.SubmitSubscription(ctx, wallos.SubscriptionAdd, form)
	if err != nil {
		return nil, err
	}

	fresh, err := s.freshestByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "subscription created", "name", in.Name, "id", fresh.ID)
	return &MutationResult{Ack: ack, Subscription: fresh}, nil
}

// EditSubscription submits a partial update. Only fields explicitly
// present on the input appear in the outgoing request.
func (s *Submitter) EditSubscription(ctx context.Context, in EditInput) (*MutationResult, error) {
	if in.ID <= 0 {
		return nil, core.Errorf(core.KindInvalidInput, "subscription id is required for edit")
	}

	if err := s.backend.EnsureSession(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("id", strconv.Itoa(in.ID))

	if in.Name != nil {
		form.Set("name", strings.TrimSpace(*in.Name))
	}
	if in.Price != nil {
		form.Set("price", formatPrice(*in.Price))
	}

	if in.CurrencyID != nil || in.CurrencyCode != nil {
		id, code := 0, ""
		if in.CurrencyID != nil {
			id = *in.CurrencyID
		}
		if in.CurrencyCode != nil {
			code = *in.CurrencyCode
		}
		resolved, err := s.resolver.CurrencyID(ctx, id, code)
		if err != nil {
			return nil, err
		}
		form.Set("currency_id", strconv.Itoa(resolved))
	}

	if in.CategoryID != nil || in.CategoryName != nil {
		id, name := 0, ""
		if in.CategoryID != nil {
			id = *in.CategoryID
		}
		if in.CategoryName != nil {
			name = *in.CategoryName
		}
		resolved, err := s.resolver.CategoryID(ctx, id, name)
		if err != nil {
			return nil, err
		}
		form.Set("category_id", strconv.Itoa(resolved))
	}

	if in.PaymentMethodID != nil || in.PaymentMethodName != nil {
		id, name := 0, ""
		if in.PaymentMethodID != nil {
			id = *in.PaymentMethodID
		}
		if in.PaymentMethodName != nil {
			name = *in.PaymentMethodName
		}
		resolved, err := s.resolver.PaymentMethodID(ctx, id, name)
		if err != nil {
			return nil, err
		}
		form.Set("payment_method_id", strconv.Itoa(resolved))
	}

	if in.PayerID != nil || in.PayerName != nil {
		id, name := 0, ""
		if in.PayerID != nil {
			id = *in.PayerID
		}
		if in.PayerName != nil {
			name = *in.PayerName
		}
		resolved, err := s.resolver.PayerID(ctx, id, name)
		if err != nil {
			return nil, err
		}
		form.Set("payer_user_id", strconv.Itoa(resolved))
	}

	if in.BillingPeriod != nil {
		freq := 0
		if in.Frequency != nil {
			freq = *in.Frequency
		}
		cycle, frequency, fellBack := core.ParseBillingPeriod(*in.BillingPeriod, freq)
		if fellBack {
			s.log.WarnContext(ctx, "unrecognized billing period, defaulting to monthly",
				"billing_period", *in.BillingPeriod)
		}
		form.Set("cycle", strconv.Itoa(int(cycle)))
		form.Set("frequency", strconv.Itoa(frequency))
	} else if in.Frequency != nil {
		form.Set("frequency", strconv.Itoa(*in.Frequency))
	}

	if in.StartDate != nil {
		if _, err := time.Parse(core.DateLayout, *in.StartDate); err != nil {
			return nil, core.Errorf(core.KindInvalidInput, "invalid start date %q: expected YYYY-MM-DD", *in.StartDate)
		}
		form.Set("start_date", *in.StartDate)
	}
	if in.NextPayment != nil {
		if _, err := time.Parse(core.DateLayout, *in.NextPayment); err != nil {
			return nil, core.Errorf(core.KindInvalidInput, "invalid next payment date %q: expected YYYY-MM-DD", *in.NextPayment)
		}
		form.Set("next_payment", *in.NextPayment)
	}

	if in.AutoRenew != nil {
		form.Set("auto_renew", formatFlag(*in.AutoRenew))
	}
	if in.Notify != nil {
		form.Set("notify", formatFlag(*in.Notify))
	}
	if in.NotifyDaysBefore != nil {
		form.Set("notify_days_before", strconv.Itoa(*in.NotifyDaysBefore))
	}
	if in.Notes != nil {
		form.Set("notes", *in.Notes)
	}
	if in.URL != nil {
		form.Set("url", *in.URL)
	}
	if in.Inactive != nil {
		form.Set("inactive", formatFlag(*in.Inactive))
	}

	ack, err := s.backend.SubmitSubscription(ctx, wallos.SubscriptionEdit, form)
	if err != nil {
		return nil, err
	}

	fresh, err := s.byID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "subscription updated", "id", in.ID)
	return &MutationResult{Ack: ack, Subscription: fresh}, nil
}

// freshestByName re-fetches the subscription list and returns the
// newest record carrying the submitted name.
func (s *Submitter) freshestByName(ctx context.Context, name string) (*core.Subscription, error) {
	subs, err := s.backend.Subscriptions(ctx, core.SubscriptionFilter{})
	if err != nil {
		return nil, err
	}
	var fresh *core.Subscription
	for i := range subs {
		if !core.NameEquals(subs[i].Name, name) {
			continue
		}
		if fresh == nil || subs[i].ID > fresh.ID {
			fresh = &subs[i]
		}
	}
	if fresh == nil {
		return nil, core.Errorf(core.KindUnknownEntity,
			"subscription %q acknowledged but not found on re-fetch", name)
	}
	return fresh, nil
}

func (s *Submitter) byID(ctx context.Context, id int) (*core.Subscription, error) {
	subs, err := s.backend.Subscriptions(ctx, core.SubscriptionFilter{})
	if err != nil {
		return nil, err
	}
	for i := range subs {
		if subs[i].ID == id {
			return &subs[i], nil
		}
	}
	return nil, core.Errorf(core.KindUnknownEntity,
		"subscription %d acknowledged but not found on re-fetch", id)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

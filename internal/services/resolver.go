package services

import (
	"context"
	"strings"
	"sync"

	"subbridge/internal/core"
	"subbridge/internal/log"
)

// Resolver turns name-or-id entity references into canonical backend
// ids, creating missing entities on the fly. Find-or-create sequences
// for the same entity kind and name are serialized through a named
// mutex so concurrent calls do not race into duplicate creates.
type Resolver struct {
	backend interface {
		EntityReader
		EntityWriter
	}
	log *log.Logger

	// EmailDomain is the local domain suffix used when synthesizing a
	// household member email.
	emailDomain string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewResolver creates a resolver over the given backend. emailDomain
// may be empty; a fixed default applies.
func NewResolver(backend Backend, logger *log.Logger, emailDomain string) *Resolver {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if emailDomain == "" {
		emailDomain = "wallos.local"
	}
	return &Resolver{
		backend:     backend,
		log:         logger.WithComponent("resolver"),
		emailDomain: emailDomain,
		locks:       make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one (kind, name) find-or-create
// sequence.
func (r *Resolver) lockFor(kind, name string) *sync.Mutex {
	key := kind + "\x00" + strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	return m
}

// CategoryID resolves a category reference. A supplied name takes
// priority over a simultaneously supplied id; with neither, zero is
// returned and the caller applies its own default.
func (r *Resolver) CategoryID(ctx context.Context, id int, name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return id, nil
	}
	lock := r.lockFor("category", name)
	lock.Lock()
	defer lock.Unlock()

	cats, err := r.backend.Categories(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range cats {
		if core.NameEquals(c.Name, name) {
			return c.ID, nil
		}
	}

	r.log.InfoContext(ctx, "creating category", "name", name)
	newID, err := r.backend.CreateCategory(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		return r.refetchCategory(ctx, name)
	}
	return newID, nil
}

// refetchCategory recovers the id when a create acknowledgement did not
// carry one.
func (r *Resolver) refetchCategory(ctx context.Context, name string) (int, error) {
	cats, err := r.backend.Categories(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range cats {
		if core.NameEquals(c.Name, name) {
			return c.ID, nil
		}
	}
	return 0, core.Errorf(core.KindUnknownEntity, "category %q created but not found on re-fetch", name)
}

// PaymentMethodID resolves a payment method reference with the same
// precedence as CategoryID.
func (r *Resolver) PaymentMethodID(ctx context.Context, id int, name string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return id, nil
	}
	lock := r.lockFor("payment_method", name)
	lock.Lock()
	defer lock.Unlock()

	methods, err := r.backend.PaymentMethods(ctx)
	if err != nil {
		return 0, err
	}
	for _, m := range methods {
		if core.NameEquals(m.Name, name) {
			return m.ID, nil
		}
	}

	r.log.InfoContext(ctx, "creating payment method", "name", name)
	newID, err := r.backend.CreatePaymentMethod(ctx, strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		methods, err = r.backend.PaymentMethods(ctx)
		if err != nil {
			return 0, err
		}
		for _, m := range methods {
			if core.NameEquals(m.Name, name) {
				return m.ID, nil
			}
		}
		return 0, core.Errorf(core.KindUnknownEntity, "payment method %q created but not found on re-fetch", name)
	}
	return newID, nil
}

// CurrencyID resolves a currency reference. An explicit id wins; a code
// is matched case-insensitively against existing currencies and created
// from the well-known code table when absent. With neither, the
// backend's main currency id applies.
func (r *Resolver) CurrencyID(ctx context.Context, id int, code string) (int, error) {
	if id > 0 {
		return id, nil
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		_, mainID, err := r.backend.Currencies(ctx)
		if err != nil {
			return 0, err
		}
		if mainID == 0 {
			return 0, core.Errorf(core.KindUnknownEntity, "backend reports no main currency")
		}
		return mainID, nil
	}

	lock := r.lockFor("currency", code)
	lock.Lock()
	defer lock.Unlock()

	currencies, _, err := r.backend.Currencies(ctx)
	if err != nil {
		return 0, err
	}
	for _, c := range currencies {
		if strings.EqualFold(c.Code, code) {
			return c.ID, nil
		}
	}

	name, symbol := currencyDefaults(code)
	r.log.InfoContext(ctx, "creating currency", "code", code, "name", name)
	newID, err := r.backend.CreateCurrency(ctx, name, symbol, code)
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		currencies, _, err = r.backend.Currencies(ctx)
		if err != nil {
			return 0, err
		}
		for _, c := range currencies {
			if strings.EqualFold(c.Code, code) {
				return c.ID, nil
			}
		}
		return 0, core.Errorf(core.KindUnknownEntity, "currency %q created but not found on re-fetch", code)
	}
	return newID, nil
}

// PayerID resolves a payer reference. Unlike the other kinds, a payer
// name that matches nothing does not create a member: the engine falls
// back to the first household member, the main user. The same default
// applies when no reference is given at all.
func (r *Resolver) PayerID(ctx context.Context, id int, name string) (int, error) {
	if id > 0 {
		return id, nil
	}

	members, err := r.backend.Household(ctx)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, core.Errorf(core.KindUnknownEntity, "backend reports no household members")
	}

	if strings.TrimSpace(name) != "" {
		for _, m := range members {
			if core.NameEquals(m.Name, name) {
				return m.ID, nil
			}
		}
		r.log.WarnContext(ctx, "payer not found, falling back to main user",
			"payer", name, "main_user", members[0].Name)
	}
	return members[0].ID, nil
}

// MemberID resolves a household member reference with create-if-absent
// semantics, synthesizing an email when none is supplied.
func (r *Resolver) MemberID(ctx context.Context, id int, name, email string) (int, error) {
	if strings.TrimSpace(name) == "" {
		return id, nil
	}
	lock := r.lockFor("member", name)
	lock.Lock()
	defer lock.Unlock()

	members, err := r.backend.Household(ctx)
	if err != nil {
		return 0, err
	}
	for _, m := range members {
		if core.NameEquals(m.Name, name) {
			return m.ID, nil
		}
	}

	if email == "" {
		email = r.synthesizeEmail(name)
	}
	r.log.InfoContext(ctx, "creating household member", "name", name, "email", email)
	newID, err := r.backend.CreateMember(ctx, strings.TrimSpace(name), email)
	if err != nil {
		return 0, err
	}
	if newID == 0 {
		members, err = r.backend.Household(ctx)
		if err != nil {
			return 0, err
		}
		for _, m := range members {
			if core.NameEquals(m.Name, name) {
				return m.ID, nil
			}
		}
		return 0, core.Errorf(core.KindUnknownEntity, "household member %q created but not found on re-fetch", name)
	}
	return newID, nil
}

// synthesizeEmail builds a placeholder address from the lower-cased,
// dot-joined member name.
func (r *Resolver) synthesizeEmail(name string) string {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	local := strings.Join(parts, ".")
	if local == "" {
		local = "member"
	}
	return local + "@" + r.emailDomain
}

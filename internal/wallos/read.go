package wallos

import (
	"context"
	"net/url"

	"subbridge/internal/core"
)

const (
	categoriesPath     = "/api/categories/get_categories.php"
	currenciesPath     = "/api/currencies/get_currencies.php"
	paymentMethodsPath = "/api/payment_methods/get_payment_methods.php"
	householdPath      = "/api/household/get_household.php"
	subscriptionsPath  = "/api/subscriptions/get_subscriptions.php"
)

// readEnvelope is the common wrapper on every read endpoint.
type readEnvelope struct {
	Success flexBool `json:"success"`
	Title   string   `json:"title"`
	Notes   []string `json:"notes"`
}

func (e readEnvelope) check(what string) error {
	if !bool(e.Success) {
		msg := e.Title
		if msg == "" {
			msg = "read rejected"
		}
		return core.Errorf(core.KindRemoteValidation, "%s: %s", what, msg)
	}
	return nil
}

type categoryPayload struct {
	ID    flexInt  `json:"id"`
	Name  string   `json:"name"`
	InUse flexBool `json:"in_use"`
}

// Categories lists all spending categories.
func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	query, err := c.apiKeyQuery(ctx, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		readEnvelope
		Categories []categoryPayload `json:"categories"`
	}
	if err := c.getJSON(ctx, categoriesPath, query, false, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("list categories"); err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(resp.Categories))
	for _, p := range resp.Categories {
		out = append(out, core.Category{ID: int(p.ID), Name: p.Name, InUse: bool(p.InUse)})
	}
	return out, nil
}

type currencyPayload struct {
	ID     flexInt  `json:"id"`
	Name   string   `json:"name"`
	Symbol string   `json:"symbol"`
	Code   string   `json:"code"`
	Rate   string   `json:"rate"`
	InUse  flexBool `json:"in_use"`
}

// Currencies lists all currencies and reports the backend's configured
// main currency id.
func (c *Client) Currencies(ctx context.Context) ([]core.Currency, int, error) {
	query, err := c.apiKeyQuery(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	var resp struct {
		readEnvelope
		MainCurrency flexInt           `json:"main_currency"`
		Currencies   []currencyPayload `json:"currencies"`
	}
	if err := c.getJSON(ctx, currenciesPath, query, false, &resp); err != nil {
		return nil, 0, err
	}
	if err := resp.check("list currencies"); err != nil {
		return nil, 0, err
	}
	out := make([]core.Currency, 0, len(resp.Currencies))
	for _, p := range resp.Currencies {
		out = append(out, core.Currency{
			ID:     int(p.ID),
			Name:   p.Name,
			Symbol: p.Symbol,
			Code:   p.Code,
			Rate:   p.Rate,
			InUse:  bool(p.InUse),
		})
	}
	return out, int(resp.MainCurrency), nil
}

type paymentMethodPayload struct {
	ID      flexInt  `json:"id"`
	Name    string   `json:"name"`
	Enabled flexBool `json:"enabled"`
	InUse   flexBool `json:"in_use"`
}

// PaymentMethods lists all payment methods.
func (c *Client) PaymentMethods(ctx context.Context) ([]core.PaymentMethod, error) {
	query, err := c.apiKeyQuery(ctx, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		readEnvelope
		PaymentMethods []paymentMethodPayload `json:"payment_methods"`
	}
	if err := c.getJSON(ctx, paymentMethodsPath, query, false, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("list payment methods"); err != nil {
		return nil, err
	}
	out := make([]core.PaymentMethod, 0, len(resp.PaymentMethods))
	for _, p := range resp.PaymentMethods {
		out = append(out, core.PaymentMethod{
			ID:      int(p.ID),
			Name:    p.Name,
			Enabled: bool(p.Enabled),
			InUse:   bool(p.InUse),
		})
	}
	return out, nil
}

type memberPayload struct {
	ID    flexInt  `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	InUse flexBool `json:"in_use"`
}

// Household lists household members. The first member is the main user.
func (c *Client) Household(ctx context.Context) ([]core.Member, error) {
	query, err := c.apiKeyQuery(ctx, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		readEnvelope
		Household []memberPayload `json:"household"`
	}
	if err := c.getJSON(ctx, householdPath, query, false, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("list household"); err != nil {
		return nil, err
	}
	out := make([]core.Member, 0, len(resp.Household))
	for _, p := range resp.Household {
		out = append(out, core.Member{ID: int(p.ID), Name: p.Name, Email: p.Email, InUse: bool(p.InUse)})
	}
	return out, nil
}

type subscriptionPayload struct {
	ID               flexInt   `json:"id"`
	Name             string    `json:"name"`
	Price            flexFloat `json:"price"`
	CurrencyID       flexInt   `json:"currency_id"`
	Cycle            flexInt   `json:"cycle"`
	Frequency        flexInt   `json:"frequency"`
	CategoryID       flexInt   `json:"category_id"`
	PaymentMethodID  flexInt   `json:"payment_method_id"`
	PayerUserID      flexInt   `json:"payer_user_id"`
	StartDate        string    `json:"start_date"`
	NextPayment      string    `json:"next_payment"`
	AutoRenew        flexBool  `json:"auto_renew"`
	Notify           flexBool  `json:"notify"`
	NotifyDaysBefore flexInt   `json:"notify_days_before"`
	Notes            string    `json:"notes"`
	URL              string    `json:"url"`
	Inactive         flexBool  `json:"inactive"`
}

// Subscriptions lists subscriptions, optionally narrowed by filter.
func (c *Client) Subscriptions(ctx context.Context, filter core.SubscriptionFilter) ([]core.Subscription, error) {
	query := url.Values{}
	if len(filter.MemberIDs) > 0 {
		query.Set("member_ids", joinIDs(filter.MemberIDs))
	}
	if len(filter.CategoryIDs) > 0 {
		query.Set("category_ids", joinIDs(filter.CategoryIDs))
	}
	if len(filter.PaymentMethodIDs) > 0 {
		query.Set("payment_ids", joinIDs(filter.PaymentMethodIDs))
	}
	if filter.Active != nil {
		// Backend convention: state 0 is active, 1 is inactive.
		if *filter.Active {
			query.Set("state", "0")
		} else {
			query.Set("state", "1")
		}
	}
	if filter.Sort != "" {
		query.Set("sort", filter.Sort)
	}
	if filter.DisabledToBottom {
		query.Set("disabled_to_bottom", "true")
	}
	if filter.ConvertCurrency {
		query.Set("convert_currency", "true")
	}

	query, err := c.apiKeyQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	var resp struct {
		readEnvelope
		Subscriptions []subscriptionPayload `json:"subscriptions"`
	}
	if err := c.getJSON(ctx, subscriptionsPath, query, false, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("list subscriptions"); err != nil {
		return nil, err
	}
	out := make([]core.Subscription, 0, len(resp.Subscriptions))
	for _, p := range resp.Subscriptions {
		out = append(out, core.Subscription{
			ID:               int(p.ID),
			Name:             p.Name,
			Price:            float64(p.Price),
			CurrencyID:       int(p.CurrencyID),
			Cycle:            core.Cycle(p.Cycle),
			Frequency:        int(p.Frequency),
			CategoryID:       int(p.CategoryID),
			PaymentMethodID:  int(p.PaymentMethodID),
			PayerUserID:      int(p.PayerUserID),
			StartDate:        p.StartDate,
			NextPayment:      p.NextPayment,
			AutoRenew:        bool(p.AutoRenew),
			Notify:           bool(p.Notify),
			NotifyDaysBefore: int(p.NotifyDaysBefore),
			Notes:            p.Notes,
			URL:              p.URL,
			Inactive:         bool(p.Inactive),
		})
	}
	return out, nil
}

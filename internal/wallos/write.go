package wallos

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"subbridge/internal/core"
)

const (
	categoryPath         = "/endpoints/categories/category.php"
	paymentMethodPath    = "/endpoints/payments/add.php"
	currencyPath         = "/endpoints/currencies/add.php"
	householdWritePath   = "/endpoints/household/household.php"
	subscriptionAddPath  = "/endpoints/subscription/add.php"
	subscriptionEditPath = "/endpoints/subscription/edit.php"
)

// SubscriptionAction selects the subscription write endpoint.
type SubscriptionAction string

const (
	SubscriptionAdd  SubscriptionAction = "add"
	SubscriptionEdit SubscriptionAction = "edit"
)

// writeGet performs a session-authenticated GET-with-query write (the
// backend's convention for simple entity mutations) and normalizes the
// acknowledgement.
func (c *Client) writeGet(ctx context.Context, path string, query url.Values, operation string) (core.Ack, error) {
	if err := c.EnsureSession(ctx); err != nil {
		return core.Ack{}, err
	}
	var raw json.RawMessage
	if err := c.getJSON(ctx, path, query, true, &raw); err != nil {
		return core.Ack{}, err
	}
	ack, err := decodeAck(raw)
	if err != nil {
		return core.Ack{}, err
	}
	if !ack.Success {
		return ack, ackError(ack, operation)
	}
	return ack, nil
}

// createdID digs the new entity id out of a create acknowledgement.
// Different endpoints name the field differently; zero means the
// backend did not report one.
func createdID(ack core.Ack) int {
	var probe struct {
		ID         flexInt `json:"id"`
		CategoryID flexInt `json:"categoryId"`
		PaymentID  flexInt `json:"paymentId"`
		CurrencyID flexInt `json:"currencyId"`
		MemberID   flexInt `json:"memberId"`
	}
	if err := json.Unmarshal(ack.Raw, &probe); err != nil {
		return 0
	}
	for _, id := range []flexInt{probe.ID, probe.CategoryID, probe.PaymentID, probe.CurrencyID, probe.MemberID} {
		if id != 0 {
			return int(id)
		}
	}
	return 0
}

// CreateCategory creates a category and returns its id, or zero when
// the backend acknowledged without reporting one.
func (c *Client) CreateCategory(ctx context.Context, name string) (int, error) {
	query := url.Values{}
	query.Set("action", "add")
	query.Set("name", name)
	ack, err := c.writeGet(ctx, categoryPath, query, "create category "+strconv.Quote(name))
	if err != nil {
		return 0, err
	}
	return createdID(ack), nil
}

// EditCategory renames a category. The reserved default category is
// rejected before any network call.
func (c *Client) EditCategory(ctx context.Context, id int, name string) error {
	if id == core.ProtectedCategoryID {
		return core.Errorf(core.KindProtectedEntity,
			"category %d is the reserved default category and cannot be edited", id)
	}
	query := url.Values{}
	query.Set("action", "edit")
	query.Set("categoryId", strconv.Itoa(id))
	query.Set("name", name)
	_, err := c.writeGet(ctx, categoryPath, query, "edit category "+strconv.Itoa(id))
	return err
}

// DeleteCategory removes a category. The reserved default category is
// rejected before any network call.
func (c *Client) DeleteCategory(ctx context.Context, id int) error {
	if id == core.ProtectedCategoryID {
		return core.Errorf(core.KindProtectedEntity,
			"category %d is the reserved default category and cannot be deleted", id)
	}
	query := url.Values{}
	query.Set("action", "delete")
	query.Set("categoryId", strconv.Itoa(id))
	_, err := c.writeGet(ctx, categoryPath, query, "delete category "+strconv.Itoa(id))
	return err
}

// CreatePaymentMethod creates a payment method and returns its id.
func (c *Client) CreatePaymentMethod(ctx context.Context, name string) (int, error) {
	query := url.Values{}
	query.Set("name", name)
	ack, err := c.writeGet(ctx, paymentMethodPath, query, "create payment method "+strconv.Quote(name))
	if err != nil {
		return 0, err
	}
	return createdID(ack), nil
}

// CreateCurrency creates a currency and returns its id.
func (c *Client) CreateCurrency(ctx context.Context, name, symbol, code string) (int, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("symbol", symbol)
	query.Set("code", code)
	ack, err := c.writeGet(ctx, currencyPath, query, "create currency "+strconv.Quote(code))
	if err != nil {
		return 0, err
	}
	return createdID(ack), nil
}

// CreateMember adds a household member and returns their id.
func (c *Client) CreateMember(ctx context.Context, name, email string) (int, error) {
	query := url.Values{}
	query.Set("action", "add")
	query.Set("name", name)
	query.Set("email", email)
	ack, err := c.writeGet(ctx, householdWritePath, query, "create household member "+strconv.Quote(name))
	if err != nil {
		return 0, err
	}
	return createdID(ack), nil
}

// SubmitSubscription posts a subscription create or edit form and
// normalizes the acknowledgement. A rejected acknowledgement is
// returned alongside the error so callers can surface the raw payload.
func (c *Client) SubmitSubscription(ctx context.Context, action SubscriptionAction, form url.Values) (core.Ack, error) {
	if err := c.EnsureSession(ctx); err != nil {
		return core.Ack{}, err
	}
	path := subscriptionAddPath
	if action == SubscriptionEdit {
		path = subscriptionEditPath
	}
	body, err := c.postForm(ctx, path, form)
	if err != nil {
		return core.Ack{}, err
	}
	ack, err := decodeAck(body)
	if err != nil {
		return core.Ack{}, err
	}
	if !ack.Success {
		return ack, ackError(ack, string(action)+" subscription")
	}
	return ack, nil
}

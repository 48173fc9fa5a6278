package core

import "encoding/json"

// Ack is the normalized write acknowledgement. The backend has two
// historical envelope shapes (a status string and a boolean success
// flag); both are decoded into this one type at the network boundary.
type Ack struct {
	Success bool
	Message string
	// Raw preserves the untouched backend response for callers that
	// surface it alongside the normalized fields.
	Raw json.RawMessage
}

// SubscriptionFilter narrows a subscription list read.
type SubscriptionFilter struct {
	MemberIDs        []int
	CategoryIDs      []int
	PaymentMethodIDs []int
	// Active filters by state when set: true for active rows only,
	// false for inactive rows only.
	Active           *bool
	Sort             string
	DisabledToBottom bool
	ConvertCurrency  bool
}

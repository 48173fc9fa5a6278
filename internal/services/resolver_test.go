package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subbridge/internal/core"
)

func TestCategoryIDFindsExistingCaseInsensitively(t *testing.T) {
	f := newFakeBackend()
	f.categories = []core.Category{{ID: 5, Name: "Entertainment"}}
	resolver, _ := newTestEngine(f)

	id, err := resolver.CategoryID(context.Background(), 0, "entertainment")
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	assert.Empty(t, f.createdCategories, "existing category must not be re-created")
}

func TestCategoryIDCreatesMissing(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.CategoryID(context.Background(), 0, "Streaming")
	require.NoError(t, err)
	assert.Equal(t, 101, id)
	assert.Equal(t, []string{"Streaming"}, f.createdCategories)
}

func TestCategoryIDNameTakesPriorityOverID(t *testing.T) {
	f := newFakeBackend()
	f.categories = []core.Category{{ID: 5, Name: "Entertainment"}}
	resolver, _ := newTestEngine(f)

	id, err := resolver.CategoryID(context.Background(), 9, "Entertainment")
	require.NoError(t, err)
	assert.Equal(t, 5, id, "name resolution wins over a simultaneously supplied id")
}

func TestCategoryIDPassesThroughDirectID(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.CategoryID(context.Background(), 7, "")
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Empty(t, f.createdCategories)
}

func TestPaymentMethodIDFindOrCreate(t *testing.T) {
	f := newFakeBackend()
	f.methods = []core.PaymentMethod{{ID: 3, Name: "PayPal"}}
	resolver, _ := newTestEngine(f)
	ctx := context.Background()

	id, err := resolver.PaymentMethodID(ctx, 0, "paypal")
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	id, err = resolver.PaymentMethodID(ctx, 0, "Credit Card")
	require.NoError(t, err)
	assert.Equal(t, 101, id)
	assert.Equal(t, []string{"Credit Card"}, f.createdMethods)
}

func TestCurrencyIDExplicitIDWins(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.CurrencyID(context.Background(), 8, "USD")
	require.NoError(t, err)
	assert.Equal(t, 8, id)
	assert.Empty(t, f.createdCurrencies)
}

func TestCurrencyIDMatchesCodeCaseInsensitively(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.CurrencyID(context.Background(), 0, "eur")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Empty(t, f.createdCurrencies)
}

func TestCurrencyIDCreatesWellKnownCode(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.CurrencyID(context.Background(), 0, "usd")
	require.NoError(t, err)
	assert.Equal(t, 101, id)
	require.Len(t, f.createdCurrencies, 1)
	assert.Equal(t, "US Dollar", f.createdCurrencies[0].Name)
	assert.Equal(t, "$", f.createdCurrencies[0].Symbol)
	assert.Equal(t, "USD", f.createdCurrencies[0].Code)
}

func TestCurrencyIDUnknownCodeFallsBackToCode(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	_, err := resolver.CurrencyID(context.Background(), 0, "XYZ")
	require.NoError(t, err)
	require.Len(t, f.createdCurrencies, 1)
	assert.Equal(t, "XYZ", f.createdCurrencies[0].Name)
	assert.Equal(t, "XYZ", f.createdCurrencies[0].Symbol)
}

func TestCurrencyIDDefaultsToMainCurrency(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.CurrencyID(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}

func TestCurrencyIDNoMainCurrency(t *testing.T) {
	f := newFakeBackend()
	f.mainCurrency = 0
	resolver, _ := newTestEngine(f)

	_, err := resolver.CurrencyID(context.Background(), 0, "")
	require.Error(t, err)
	assert.Equal(t, core.KindUnknownEntity, core.KindOf(err))
}

func TestPayerIDDirectID(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.PayerID(context.Background(), 4, "")
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestPayerIDByName(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.PayerID(context.Background(), 0, "bob")
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestPayerIDUnknownNameFallsBackToMainUser(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.PayerID(context.Background(), 0, "Charlie")
	require.NoError(t, err)
	assert.Equal(t, 1, id, "unknown payer falls back to the first household member")
	assert.Empty(t, f.createdMembers, "payer resolution never creates members")
}

func TestPayerIDNoReferenceDefaultsToMainUser(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	id, err := resolver.PayerID(context.Background(), 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestPayerIDEmptyHousehold(t *testing.T) {
	f := newFakeBackend()
	f.members = nil
	resolver, _ := newTestEngine(f)

	_, err := resolver.PayerID(context.Background(), 0, "")
	require.Error(t, err)
	assert.Equal(t, core.KindUnknownEntity, core.KindOf(err))
}

func TestMemberIDSynthesizesEmail(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	_, err := resolver.MemberID(context.Background(), 0, "John Ronald Doe", "")
	require.NoError(t, err)
	require.Len(t, f.createdMembers, 1)
	assert.Equal(t, "john.ronald.doe@wallos.local", f.createdMembers[0].Email)
}

func TestMemberIDKeepsSuppliedEmail(t *testing.T) {
	f := newFakeBackend()
	resolver, _ := newTestEngine(f)

	_, err := resolver.MemberID(context.Background(), 0, "Dana", "dana@example.com")
	require.NoError(t, err)
	require.Len(t, f.createdMembers, 1)
	assert.Equal(t, "dana@example.com", f.createdMembers[0].Email)
}

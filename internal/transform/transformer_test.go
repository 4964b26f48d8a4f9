package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

func testOrder() domain.LocalOrder {
	return domain.LocalOrder{
		Ref: "SO-1001",
		Lines: []domain.OrderLineItem{
			{LocalProductID: "local-tee", Title: "Classic Tee", Quantity: 2},
			{LocalProductID: "local-mug", Title: "Mug", Quantity: 1},
		},
		Shipping: domain.ShippingAddress{
			RecipientName: "Maria de la Cruz",
			Email:         "maria@example.com",
			Street1:       "12 Harbor St",
			Street2:       "Apt 4",
			City:          "Lisbon",
			StateCode:     "",
			Zip:           "1100-001",
			CountryCode:   "PT",
		},
	}
}

func strPtr(s string) *string { return &s }

func testMappings() []domain.ProductMapping {
	return []domain.ProductMapping{
		{
			LocalProductID:    "local-tee",
			ProviderCode:      domain.ProviderPrintify,
			ExternalProductID: "prod-1",
			ExternalVariantID: strPtr("101"),
			IsActive:          true,
		},
		{
			LocalProductID:    "local-mug",
			ProviderCode:      domain.ProviderGelato,
			ExternalProductID: "gel-prod-1",
			ExternalVariantID: strPtr("gel-var-1"),
			IsActive:          true,
		},
	}
}

func TestTransformValidatesRequiredFields(t *testing.T) {
	tr := NewTransformer(zap.NewNop())

	cases := []struct {
		name      string
		mutate    func(*domain.LocalOrder)
		wantField string
	}{
		{"no lines", func(o *domain.LocalOrder) { o.Lines = nil }, "line_items"},
		{"missing street", func(o *domain.LocalOrder) { o.Shipping.Street1 = "" }, "street1"},
		{"missing city", func(o *domain.LocalOrder) { o.Shipping.City = "" }, "city"},
		{"missing country", func(o *domain.LocalOrder) { o.Shipping.CountryCode = "" }, "country_code"},
		{"missing email", func(o *domain.LocalOrder) { o.Shipping.Email = "" }, "email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := testOrder()
			tc.mutate(&order)

			_, err := tr.Transform(order, testMappings(), domain.ProviderPrintify)
			require.Error(t, err)

			var vErr *apperrors.ErrValidation
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestTransformRejectsNonPositiveQuantity(t *testing.T) {
	tr := NewTransformer(zap.NewNop())
	order := testOrder()
	order.Lines[0].Quantity = 0

	_, err := tr.Transform(order, testMappings(), domain.ProviderPrintify)
	require.Error(t, err)

	var vErr *apperrors.ErrValidation
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "quantity", vErr.Field)
}

func TestTransformExcludesOtherProvidersLines(t *testing.T) {
	tr := NewTransformer(zap.NewNop())

	payload, err := tr.Transform(testOrder(), testMappings(), domain.ProviderPrintify)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderPrintify, payload.Provider)

	body, ok := payload.Body.(PrintifyOrder)
	require.True(t, ok)
	// The mug maps to Gelato; only the tee survives.
	require.Len(t, body.LineItems, 1)
	assert.Equal(t, "prod-1", body.LineItems[0].ProductID)
	assert.Equal(t, "101", body.LineItems[0].VariantID)
	assert.Equal(t, 2, body.LineItems[0].Quantity)
}

func TestTransformFailsClosedWithoutMappedLines(t *testing.T) {
	tr := NewTransformer(zap.NewNop())

	// Every mapping targets another provider.
	_, err := tr.Transform(testOrder(), testMappings(), domain.ProviderPrintful)
	require.Error(t, err)

	var vErr *apperrors.ErrValidation
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "line_items", vErr.Field)
	assert.Contains(t, vErr.Message, "no printful mappings found")
}

func TestTransformIgnoresInactiveMappings(t *testing.T) {
	tr := NewTransformer(zap.NewNop())
	mappings := testMappings()
	mappings[0].IsActive = false

	_, err := tr.Transform(testOrder(), mappings, domain.ProviderPrintify)
	require.Error(t, err)

	var vErr *apperrors.ErrValidation
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "line_items", vErr.Field)
}

func TestBuildPrintifyOrderShape(t *testing.T) {
	tr := NewTransformer(zap.NewNop())

	payload, err := tr.Transform(testOrder(), testMappings(), domain.ProviderPrintify)
	require.NoError(t, err)

	body := payload.Body.(PrintifyOrder)
	assert.Equal(t, "SO-1001", body.ExternalID)
	assert.Equal(t, 1, body.ShippingMethod)
	// Name splits on the first space; the compound last name survives.
	assert.Equal(t, "Maria", body.AddressTo.FirstName)
	assert.Equal(t, "de la Cruz", body.AddressTo.LastName)
	assert.Equal(t, "12 Harbor St", body.AddressTo.Address1)
	assert.Equal(t, "Apt 4", body.AddressTo.Address2)
	assert.Equal(t, "PT", body.AddressTo.Country)
}

func TestBuildGelatoOrderShape(t *testing.T) {
	tr := NewTransformer(zap.NewNop())

	payload, err := tr.Transform(testOrder(), testMappings(), domain.ProviderGelato)
	require.NoError(t, err)

	body, ok := payload.Body.(GelatoOrder)
	require.True(t, ok)
	assert.Equal(t, "SO-1001", body.OrderReferenceID)
	assert.Equal(t, "order", body.OrderType)
	assert.Equal(t, "maria@example.com", body.CustomerEmail)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "gel-prod-1", body.Items[0].ProductUID)
	assert.Equal(t, "gel-var-1", body.Items[0].VariantUID)
	assert.Equal(t, "1100-001", body.ShippingAddress.PostCode)
	assert.Equal(t, "maria@example.com", body.ShippingAddress.Email)
}

func TestBuildPrintfulOrderShape(t *testing.T) {
	tr := NewTransformer(zap.NewNop())
	mappings := testMappings()
	mappings[1].ProviderCode = domain.ProviderPrintful
	mappings[1].ExternalVariantID = strPtr("3011")

	payload, err := tr.Transform(testOrder(), mappings, domain.ProviderPrintful)
	require.NoError(t, err)

	body, ok := payload.Body.(PrintfulOrder)
	require.True(t, ok)
	assert.Equal(t, "SO-1001", body.ExternalID)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "3011", body.Items[0].SyncVariantID)
	// Printful takes the recipient name unsplit.
	assert.Equal(t, "Maria de la Cruz", body.Recipient.Name)
	assert.Equal(t, "PT", body.Recipient.CountryCode)
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"Maria de la Cruz", "Maria", "de la Cruz"},
		{"Cher", "Cher", ""},
		{"  Ana Silva  ", "Ana", "Silva"},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := splitName(tc.in)
		assert.Equal(t, tc.first, first, "first of %q", tc.in)
		assert.Equal(t, tc.last, last, "last of %q", tc.in)
	}
}

package services_test

import (
	"math"
	"testing"

	"github.com/Saroj9823Dangol/event-management-sub001/models"
	"github.com/Saroj9823Dangol/event-management-sub001/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ga(qty int, price float64) models.TicketSelection {
	return models.TicketSelection{LineupID: "l1", TierID: "GA", Quantity: qty, UnitPrice: price}
}

func TestComputeTotal_PercentageDiscount(t *testing.T) {
	b := services.ComputeTotal(testEvent(), []models.TicketSelection{ga(2, 50)}, percentOff(10))

	require.True(t, b.Ready)
	assert.Equal(t, 100.0, b.Subtotal)
	assert.Equal(t, 10.0, b.Discount)
	assert.Equal(t, 90.0, b.Total)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, 100.0, b.Lines[0].LineTotal)
}

func TestComputeTotal_NoDiscount(t *testing.T) {
	sel := []models.TicketSelection{
		ga(2, 50),
		{LineupID: "l1", TierID: "VIP", Quantity: 1, UnitPrice: 120},
	}
	b := services.ComputeTotal(testEvent(), sel, nil)

	assert.Equal(t, 220.0, b.Subtotal)
	assert.Equal(t, 0.0, b.Discount)
	assert.Equal(t, 220.0, b.Total)
	assert.Len(t, b.Lines, 2)
}

func TestComputeTotal_FixedDiscountNeverNegative(t *testing.T) {
	fixed := &models.DiscountDescriptor{Type: models.DiscountTypeFixed, Value: 150, EventID: "evt-1"}
	b := services.ComputeTotal(testEvent(), []models.TicketSelection{ga(2, 50)}, fixed)

	assert.Equal(t, 0.0, b.Total)
	assert.Equal(t, 100.0, b.Discount)
}

func TestComputeTotal_FixedDiscount(t *testing.T) {
	fixed := &models.DiscountDescriptor{Type: models.DiscountTypeFixed, Value: 12.5, EventID: "evt-1"}
	b := services.ComputeTotal(testEvent(), []models.TicketSelection{ga(2, 50)}, fixed)

	assert.InDelta(t, 87.5, b.Total, 1e-9)
	assert.InDelta(t, 12.5, b.Discount, 1e-9)
}

func TestComputeTotal_PercentageRoundsHalfUp(t *testing.T) {
	cases := []struct {
		name     string
		sel      []models.TicketSelection
		percent  float64
		expected float64
	}{
		{"19.99 at 15%", []models.TicketSelection{ga(1, 19.99)}, 15, 16.99},
		{"9.99 at 50%", []models.TicketSelection{ga(3, 3.33)}, 50, 5.00},
		{"100 at 100%", []models.TicketSelection{ga(2, 50)}, 100, 0},
		{"clamped above 100", []models.TicketSelection{ga(2, 50)}, 250, 0},
		{"negative ignored", []models.TicketSelection{ga(2, 50)}, -5, 100},
		{"fractional percent", []models.TicketSelection{ga(1, 10)}, 12.5, 8.75},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := services.ComputeTotal(testEvent(), tc.sel, percentOff(tc.percent))
			assert.InDelta(t, tc.expected, b.Total, 1e-9)
			assert.InDelta(t, b.Subtotal-b.Total, b.Discount, 1e-9)
		})
	}
}

func TestComputeTotal_DiscountForOtherEventIgnored(t *testing.T) {
	other := &models.DiscountDescriptor{Type: models.DiscountTypePercentage, Value: 10, EventID: "evt-2"}
	b := services.ComputeTotal(testEvent(), []models.TicketSelection{ga(2, 50)}, other)

	assert.Equal(t, 100.0, b.Total)
	assert.Equal(t, 0.0, b.Discount)
}

func TestComputeTotal_EmptySelection(t *testing.T) {
	for _, sel := range [][]models.TicketSelection{nil, {ga(0, 50)}} {
		b := services.ComputeTotal(testEvent(), sel, percentOff(10))
		assert.False(t, b.Ready)
		assert.Empty(t, b.Lines)
		assert.Equal(t, 0.0, b.Total)
		assert.Equal(t, "USD", b.Currency)
	}
}

func TestComputeTotal_ZeroQuantityLinesSkipped(t *testing.T) {
	sel := []models.TicketSelection{ga(0, 50), {LineupID: "l1", TierID: "VIP", Quantity: 1, UnitPrice: 120}}
	b := services.ComputeTotal(testEvent(), sel, nil)

	require.Len(t, b.Lines, 1)
	assert.Equal(t, "VIP", b.Lines[0].TierID)
}

func TestComputeTotal_CurrencyPrecision(t *testing.T) {
	jpy := &models.Event{ID: "evt-1", Currency: "JPY"}
	b := services.ComputeTotal(jpy, []models.TicketSelection{ga(2, 1234.5)}, nil)
	assert.Equal(t, 1235.0, b.Lines[0].UnitPrice)
	assert.Equal(t, 2470.0, b.Total)

	kwd := &models.Event{ID: "evt-1", Currency: "KWD"}
	b = services.ComputeTotal(kwd, []models.TicketSelection{ga(1, 1.2345)}, nil)
	assert.InDelta(t, 1.235, b.Total, 1e-9)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, 0, services.MinorUnits("JPY"))
	assert.Equal(t, 0, services.MinorUnits("krw"))
	assert.Equal(t, 3, services.MinorUnits("BHD"))
	assert.Equal(t, 2, services.MinorUnits("USD"))
	assert.Equal(t, 2, services.MinorUnits("XXX"))
	assert.Equal(t, 2, services.MinorUnits(""))
}

func TestComputeTotal_SaturatesHugeAmounts(t *testing.T) {
	sel := []models.TicketSelection{
		ga(math.MaxInt, 50),
		{LineupID: "l1", TierID: "VIP", Quantity: math.MaxInt, UnitPrice: math.Inf(1)},
	}
	b := services.ComputeTotal(testEvent(), sel, nil)

	require.True(t, b.Ready)
	assert.Equal(t, 1e12, b.Subtotal)
	assert.Equal(t, 1e12, b.Total)
	for _, line := range b.Lines {
		assert.Positive(t, line.LineTotal)
	}
}

func TestComputeTotal_HugeFixedDiscountNeverRaisesTotal(t *testing.T) {
	off := &models.DiscountDescriptor{Type: models.DiscountTypeFixed, Value: 1e300, EventID: "evt-1"}
	b := services.ComputeTotal(testEvent(), []models.TicketSelection{ga(2, 50)}, off)

	assert.Equal(t, 100.0, b.Subtotal)
	assert.Equal(t, 100.0, b.Discount)
	assert.Equal(t, 0.0, b.Total)

	nan := &models.DiscountDescriptor{Type: models.DiscountTypeFixed, Value: math.NaN(), EventID: "evt-1"}
	b = services.ComputeTotal(testEvent(), []models.TicketSelection{ga(2, 50)}, nan)
	assert.Equal(t, 100.0, b.Total)
}

package services

import (
	"math"
	"strings"

	"github.com/Saroj9823Dangol/event-management-sub001/models"
)

// minorUnits lists currencies whose minor unit is not 2 decimals.
var minorUnits = map[string]int{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0, "KRW": 0,
	"PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// MinorUnits returns the number of decimals for a currency; unknown codes use 2.
func MinorUnits(currency string) int {
	if d, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return d
	}
	return 2
}

// maxMinorAmount bounds every amount in minor units so that line totals,
// subtotals and the basis-point product stay inside int64.
const maxMinorAmount int64 = 1e14

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

// toMinor rounds a non-negative major amount half-up into minor units,
// saturating at maxMinorAmount.
func toMinor(amount float64, decimals int) int64 {
	if amount <= 0 || math.IsNaN(amount) {
		return 0
	}
	scaled := amount * float64(pow10(decimals))
	if scaled >= float64(maxMinorAmount) {
		return maxMinorAmount
	}
	// absorb binary representation error (19.99*100 = 1998.9999999999998)
	return int64(math.Floor(scaled + 0.5 + 1e-9))
}

func toMajor(minor int64, decimals int) float64 {
	return float64(minor) / float64(pow10(decimals))
}

// ComputeTotal prices the positive selections and applies the discount when
// it is scoped to event. It has no side effects.
func ComputeTotal(event *models.Event, selections []models.TicketSelection, discount *models.DiscountDescriptor) models.PriceBreakdown {
	currency := ""
	eventID := ""
	if event != nil {
		currency = event.Currency
		eventID = event.ID
	}
	decimals := MinorUnits(currency)

	breakdown := models.PriceBreakdown{
		Currency: currency,
		Lines:    []models.PriceLine{},
	}

	var subtotal int64
	for _, sel := range models.PositiveSelections(selections) {
		unit := toMinor(sel.UnitPrice, decimals)
		line := mulCapped(unit, int64(sel.Quantity))
		subtotal = addCapped(subtotal, line)
		breakdown.Lines = append(breakdown.Lines, models.PriceLine{
			TierID:    sel.TierID,
			Quantity:  sel.Quantity,
			UnitPrice: toMajor(unit, decimals),
			LineTotal: toMajor(line, decimals),
		})
	}

	if len(breakdown.Lines) == 0 {
		return breakdown
	}

	total := subtotal
	if discount != nil && discount.EventID == eventID {
		total = applyDiscount(subtotal, *discount, decimals)
	}

	breakdown.Subtotal = toMajor(subtotal, decimals)
	breakdown.Discount = toMajor(subtotal-total, decimals)
	breakdown.Total = toMajor(total, decimals)
	breakdown.Ready = true
	return breakdown
}

func mulCapped(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if b > maxMinorAmount/a {
		return maxMinorAmount
	}
	return a * b
}

func addCapped(a, b int64) int64 {
	if a > maxMinorAmount-b {
		return maxMinorAmount
	}
	return a + b
}

// applyDiscount returns the discounted total in minor units, never negative.
func applyDiscount(subtotal int64, d models.DiscountDescriptor, decimals int) int64 {
	switch d.Type {
	case models.DiscountTypePercentage:
		// percentage carried as basis points so the division stays exact
		bp := int64(math.Round(d.Value * 100))
		if bp < 0 {
			bp = 0
		}
		if bp > 10000 {
			bp = 10000
		}
		// round half-up on the amount charged
		return (subtotal*(10000-bp) + 5000) / 10000
	case models.DiscountTypeFixed:
		off := toMinor(d.Value, decimals)
		if off > subtotal {
			off = subtotal
		}
		return subtotal - off
	default:
		return subtotal
	}
}

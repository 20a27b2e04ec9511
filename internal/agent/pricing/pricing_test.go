package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalheights/agent-core/internal/agent/model"
)

func testConfig() model.PricingConfig {
	return model.PricingConfig{
		BaseDeliveryCost: 50,
		WeekendSurcharge: 1.2,
		Currency:         "USD",
	}
}

func oneLine(subtotal float64) []model.SelectedEquipment {
	return []model.SelectedEquipment{{
		EquipmentID:   "eq-andamio-multi-10",
		EquipmentName: "Andamio Multidireccional",
		EquipmentType: "andamio",
		Quantity:      1,
		Subtotal:      subtotal,
	}}
}

func TestQuote_ComponentBreakdown(t *testing.T) {
	e := NewEngine(testConfig())

	info := e.Quote(oneLine(450), &model.ProjectDetails{Location: "Bogotá centro"})

	subtotal := 450.0
	delivery := 50.0 // central zone, no surcharge
	setup := 100.0   // andamio rate x1
	insurance := subtotal * 0.05
	tax := (subtotal + delivery + setup) * 0.19

	assert.Equal(t, subtotal, info.EquipmentSubtotal)
	assert.Equal(t, delivery, info.DeliveryCost)
	assert.Equal(t, setup, info.SetupCost)
	assert.Equal(t, round2(insurance), info.InsuranceCost)
	assert.Equal(t, round2(tax), info.TaxAmount)
	assert.Equal(t, round2(subtotal+delivery+setup+insurance+tax), info.TotalAmount)
	assert.Equal(t, "USD", info.Currency)
}

func TestQuote_DeliveryZones(t *testing.T) {
	e := NewEngine(testConfig())

	tests := []struct {
		location string
		want     float64
	}{
		{"Bogotá centro", 50},
		{"barrio Chapinero", 75},
		{"Soacha", 100},
		{"", 50},
	}

	for _, tt := range tests {
		info := e.Quote(nil, &model.ProjectDetails{Location: tt.location})
		assert.Equal(t, tt.want, info.DeliveryCost, "location %q", tt.location)
	}
}

func TestQuote_SetupRates(t *testing.T) {
	e := NewEngine(testConfig())

	lines := []model.SelectedEquipment{
		{EquipmentType: "plataforma_elevadora", Quantity: 2},
		{EquipmentType: "escalera", Quantity: 1},
		{EquipmentType: "desconocido", Quantity: 1},
	}

	info := e.Quote(lines, nil)
	// 150x2 + 50 + default 75
	assert.Equal(t, 425.0, info.SetupCost)
}

func TestQuote_WeekendSurcharge(t *testing.T) {
	e := NewEngine(testConfig())
	saturday := time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Saturday, saturday.Weekday())

	details := &model.ProjectDetails{Location: "Bogotá centro", DurationDays: 10, StartDate: &saturday}
	info := e.Quote(oneLine(450), details)

	subtotal := 450.0
	delivery := 50.0
	setup := 100.0
	insurance := subtotal * 0.05
	tax := (subtotal + delivery + setup) * 0.19
	want := round2((subtotal + delivery + setup + insurance + tax) * 1.2)

	assert.Equal(t, want, info.TotalAmount)
}

func TestQuote_WeekdayNoSurcharge(t *testing.T) {
	e := NewEngine(testConfig())
	wednesday := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Wednesday, wednesday.Weekday())

	details := &model.ProjectDetails{StartDate: &wednesday}
	withDate := e.Quote(oneLine(450), details)
	without := e.Quote(oneLine(450), &model.ProjectDetails{})

	assert.Equal(t, without.TotalAmount, withDate.TotalAmount)
}

func TestQuote_Idempotent(t *testing.T) {
	e := NewEngine(testConfig())
	details := &model.ProjectDetails{Location: "norte", DurationDays: 12}

	a := e.Quote(oneLine(333.33), details)
	b := e.Quote(oneLine(333.33), details)

	// identical apart from valid_until
	a.ValidUntil, b.ValidUntil = nil, nil
	assert.Equal(t, a, b)
}

func TestQuote_ValidUntilSevenDaysOut(t *testing.T) {
	e := NewEngine(testConfig())

	before := time.Now().UTC().Add(quoteValidity)
	info := e.Quote(nil, nil)
	after := time.Now().UTC().Add(quoteValidity)

	require.NotNil(t, info.ValidUntil)
	assert.False(t, info.ValidUntil.Before(before))
	assert.False(t, info.ValidUntil.After(after))
}

func TestQuote_ComponentsRoundedIndependently(t *testing.T) {
	e := NewEngine(testConfig())

	// subtotal chosen so insurance and tax carry sub-cent fractions
	info := e.Quote(oneLine(333.333), &model.ProjectDetails{Location: "centro"})

	assert.Equal(t, round2(333.333), info.EquipmentSubtotal)
	assert.Equal(t, round2(333.333*0.05), info.InsuranceCost)
	assert.Equal(t, round2((333.333+50+100)*0.19), info.TaxAmount)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.234))
	assert.Equal(t, 1.24, round2(1.238))
	assert.Equal(t, -1.23, round2(-1.234))
}

// Package pricing computes quote breakdowns from selected equipment lines and
// project details. The computation is deterministic apart from the quote
// validity date, which is always seven days from call time.
package pricing

import (
	"math"
	"strings"
	"time"

	"github.com/rentalheights/agent-core/internal/agent/model"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

const (
	insuranceRate = 0.05
	taxRate       = 0.19

	quoteValidity = 7 * 24 * time.Hour
)

// Zone surcharges added to the base delivery cost. Locations matching no zone
// keyword default to the highest zone.
const (
	zoneCentralSurcharge = 0.0
	zoneMidSurcharge     = 25.0
	zoneOuterSurcharge   = 50.0
)

var (
	zoneCentralKeywords = []string{"centro", "downtown", "bogotá centro"}
	zoneMidKeywords     = []string{"norte", "sur", "chapinero", "zona rosa"}
)

// setupRates is the per-unit installation rate by equipment type.
var setupRates = map[string]float64{
	"andamio":              100,
	"plataforma_elevadora": 150,
	"escalera":             50,
	"grua":                 300,
	"montacargas":          200,
}

const defaultSetupRate = 75.0

type Engine struct {
	cfg model.PricingConfig
}

func NewEngine(cfg model.PricingConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Quote builds the full pricing breakdown. Each component and the total are
// rounded to two decimals independently, so the reported total can drift from
// the sum of the reported components by a cent or two; that is intentional.
func (e *Engine) Quote(lines []model.SelectedEquipment, details *model.ProjectDetails) model.PricingInfo {
	var equipmentSubtotal float64
	for _, line := range lines {
		equipmentSubtotal += line.Subtotal
	}

	var location string
	var startDate *time.Time
	if details != nil {
		location = details.Location
		startDate = details.StartDate
	}

	deliveryCost := e.deliveryCost(location)
	setupCost := setupCost(lines)
	insuranceCost := equipmentSubtotal * insuranceRate
	taxAmount := (equipmentSubtotal + deliveryCost + setupCost) * taxRate

	multiplier := e.dateSurchargeMultiplier(startDate)
	totalAmount := (equipmentSubtotal + deliveryCost + setupCost + insuranceCost + taxAmount) * multiplier

	validUntil := time.Now().UTC().Add(quoteValidity)

	logx.Debug().
		Float64("equipment_subtotal", equipmentSubtotal).
		Float64("delivery_cost", deliveryCost).
		Float64("setup_cost", setupCost).
		Float64("surcharge_multiplier", multiplier).
		Msg("quote computed")

	return model.PricingInfo{
		EquipmentSubtotal: round2(equipmentSubtotal),
		DeliveryCost:      round2(deliveryCost),
		SetupCost:         round2(setupCost),
		InsuranceCost:     round2(insuranceCost),
		TaxAmount:         round2(taxAmount),
		TotalAmount:       round2(totalAmount),
		Currency:          e.cfg.Currency,
		ValidUntil:        &validUntil,
	}
}

// deliveryCost is the base cost plus a keyword-matched zone surcharge.
func (e *Engine) deliveryCost(location string) float64 {
	if location == "" {
		return e.cfg.BaseDeliveryCost
	}

	loc := strings.ToLower(location)
	surcharge := zoneOuterSurcharge
	switch {
	case containsAny(loc, zoneCentralKeywords):
		surcharge = zoneCentralSurcharge
	case containsAny(loc, zoneMidKeywords):
		surcharge = zoneMidSurcharge
	}

	return e.cfg.BaseDeliveryCost + surcharge
}

func setupCost(lines []model.SelectedEquipment) float64 {
	total := 0.0
	for _, line := range lines {
		rate, ok := setupRates[line.EquipmentType]
		if !ok {
			rate = defaultSetupRate
		}
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		total += rate * float64(quantity)
	}
	return total
}

// dateSurchargeMultiplier applies the weekend rate when the project starts on
// a Saturday or Sunday. Holiday rates would slot in here.
func (e *Engine) dateSurchargeMultiplier(startDate *time.Time) float64 {
	if startDate == nil {
		return 1.0
	}
	switch startDate.Weekday() {
	case time.Saturday, time.Sunday:
		return e.cfg.WeekendSurcharge
	default:
		return 1.0
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

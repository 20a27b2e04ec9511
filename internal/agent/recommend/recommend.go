// Package recommend scores and ranks catalog equipment against the primary
// stated need and the site conditions.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rentalheights/agent-core/internal/agent/model"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// maxRecommendations bounds the ranked result list.
const maxRecommendations = 3

// surfaceCompatibility is the fixed equipment-type to surface-type table used
// for the suitability bonus.
var surfaceCompatibility = map[string][]string{
	"andamio":              {"concreto", "asfalto", "baldosa"},
	"plataforma_elevadora": {"concreto", "asfalto"},
	"escalera":             {"concreto", "asfalto", "baldosa", "cesped"},
}

type Recommender struct {
	catalog model.Catalog
}

func New(catalog model.Catalog) *Recommender {
	return &Recommender{catalog: catalog}
}

// Recommend returns up to three ranked candidates for the primary need, or an
// empty slice when nothing qualifies. Only the first need is consulted.
func (r *Recommender) Recommend(
	ctx context.Context,
	needs []*model.EquipmentNeed,
	conditions *model.SiteConditions,
	details *model.ProjectDetails,
) ([]model.SelectedEquipment, error) {
	if len(needs) == 0 {
		return nil, nil
	}
	primary := needs[0]

	items, err := r.catalog.Available(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	quantity := primary.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	days := 1
	if details != nil && details.DurationDays > 0 {
		days = details.DurationDays
	}

	candidates := make([]model.SelectedEquipment, 0, len(items))
	for _, eq := range items {
		if !r.qualifies(eq, primary) {
			continue
		}
		candidates = append(candidates, model.SelectedEquipment{
			EquipmentID:      eq.ID,
			EquipmentName:    eq.Name,
			EquipmentType:    eq.EquipmentType,
			MaxHeight:        eq.MaxHeight,
			MaxCapacity:      eq.MaxCapacity,
			DailyRate:        eq.DailyRate,
			Quantity:         quantity,
			TotalDays:        days,
			Subtotal:         LineSubtotal(eq, days, quantity),
			SuitabilityScore: r.suitabilityScore(eq, primary, conditions),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SuitabilityScore > candidates[j].SuitabilityScore
	})
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}

	logx.Debug().
		Int("candidates", len(candidates)).
		Float64("height_needed", primary.HeightNeeded).
		Str("equipment_type", primary.EquipmentType).
		Msg("equipment recommendations computed")

	return candidates, nil
}

// qualifies applies the hard filters. Each filter only applies when the
// corresponding need field is set.
func (r *Recommender) qualifies(eq model.Equipment, need *model.EquipmentNeed) bool {
	if !eq.IsAvailable || eq.QuantityAvailable <= 0 {
		return false
	}
	if need.HeightNeeded > 0 && eq.MaxHeight < need.HeightNeeded {
		return false
	}
	if need.CapacityNeeded > 0 && eq.MaxCapacity < need.CapacityNeeded {
		return false
	}
	if need.EquipmentType != "" && eq.EquipmentType != need.EquipmentType {
		return false
	}
	return true
}

// suitabilityScore rewards closest-fit over oversized equipment, exact type
// matches, surface compatibility and stock coverage. Floored at zero.
func (r *Recommender) suitabilityScore(eq model.Equipment, need *model.EquipmentNeed, conditions *model.SiteConditions) float64 {
	score := 0.0

	if need.HeightNeeded > 0 && eq.MaxHeight > 0 {
		if eq.MaxHeight >= need.HeightNeeded {
			score += (need.HeightNeeded / eq.MaxHeight) * 30
		} else {
			score -= 20
		}
	}

	if need.CapacityNeeded > 0 && eq.MaxCapacity > 0 {
		if eq.MaxCapacity >= need.CapacityNeeded {
			score += (need.CapacityNeeded / eq.MaxCapacity) * 25
		} else {
			score -= 15
		}
	}

	if need.EquipmentType != "" && eq.EquipmentType == need.EquipmentType {
		score += 20
	}

	if conditions != nil && conditions.SurfaceType != "" && surfaceSuitable(eq.EquipmentType, conditions.SurfaceType) {
		score += 15
	}

	quantity := need.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if eq.QuantityAvailable >= quantity {
		score += 10
	}

	if score < 0 {
		score = 0
	}
	return score
}

func surfaceSuitable(equipmentType, surfaceType string) bool {
	for _, s := range surfaceCompatibility[equipmentType] {
		if s == surfaceType {
			return true
		}
	}
	return false
}

// LineSubtotal applies the rate tiering rule: the monthly rate when the rental
// runs 30 days or more and one exists, the weekly rate from 7 days, otherwise
// the daily rate times days. Multiplied by quantity.
func LineSubtotal(eq model.Equipment, durationDays, quantity int) float64 {
	if durationDays <= 0 {
		durationDays = 1
	}
	if quantity <= 0 {
		quantity = 1
	}

	var rate float64
	switch {
	case durationDays >= 30 && eq.MonthlyRate > 0:
		rate = eq.MonthlyRate * float64(durationDays) / 30
	case durationDays >= 7 && eq.WeeklyRate > 0:
		rate = eq.WeeklyRate * float64(durationDays) / 7
	default:
		rate = eq.DailyRate * float64(durationDays)
	}

	return rate * float64(quantity)
}

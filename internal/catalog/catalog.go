// Package catalog provides an in-memory implementation of the equipment
// catalog capability, seeded with the rental inventory. The relational catalog
// store lives outside this module; this implementation backs local runs and
// tests.
package catalog

import (
	"context"

	"github.com/rentalheights/agent-core/internal/agent/model"
	errx "github.com/rentalheights/agent-core/internal/core/error"
)

type InMemory struct {
	items []model.Equipment
}

// NewInMemory returns a catalog over the given items. Pass nil to use the seed
// inventory.
func NewInMemory(items []model.Equipment) *InMemory {
	if items == nil {
		items = SeedInventory()
	}
	return &InMemory{items: items}
}

func (c *InMemory) Available(ctx context.Context) ([]model.Equipment, error) {
	out := make([]model.Equipment, 0, len(c.items))
	for _, it := range c.items {
		if it.IsAvailable {
			out = append(out, it)
		}
	}
	return out, nil
}

func (c *InMemory) ByID(ctx context.Context, id string) (*model.Equipment, error) {
	for i := range c.items {
		if c.items[i].ID == id {
			item := c.items[i]
			return &item, nil
		}
	}
	return nil, errx.New(nil, errx.StatusNotFound, "equipment not found")
}

var _ model.Catalog = (*InMemory)(nil)

// SeedInventory is the default rental fleet.
func SeedInventory() []model.Equipment {
	return []model.Equipment{
		{
			ID:                "eq-andamio-multi-10",
			Name:              "Andamio Multidireccional 10m",
			EquipmentType:     "andamio",
			MaxHeight:         10.0,
			MaxCapacity:       300.0,
			DailyRate:         45.0,
			WeeklyRate:        270.0,
			MonthlyRate:       1000.0,
			PlatformSize:      "3x2m",
			Description:       "Andamio multidireccional ideal para construcción y mantenimiento",
			QuantityAvailable: 5,
			IsAvailable:       true,
		},
		{
			ID:                "eq-tijera-8",
			Name:              "Plataforma Elevadora Tijera 8m",
			EquipmentType:     "plataforma_elevadora",
			MaxHeight:         8.0,
			MaxCapacity:       227.0,
			DailyRate:         85.0,
			WeeklyRate:        510.0,
			MonthlyRate:       1900.0,
			PlatformSize:      "2.4x1.2m",
			Description:       "Plataforma elevadora eléctrica para interiores",
			QuantityAvailable: 3,
			IsAvailable:       true,
		},
		{
			ID:                "eq-escalera-tele-6",
			Name:              "Escalera Telescópica 6m",
			EquipmentType:     "escalera",
			MaxHeight:         6.0,
			MaxCapacity:       136.0,
			DailyRate:         15.0,
			WeeklyRate:        90.0,
			MonthlyRate:       350.0,
			PlatformSize:      "N/A",
			Description:       "Escalera telescópica de fibra de vidrio",
			QuantityAvailable: 10,
			IsAvailable:       true,
		},
		{
			ID:                "eq-torre-movil-8",
			Name:              "Andamio Torre Móvil 8m",
			EquipmentType:     "andamio",
			MaxHeight:         8.0,
			MaxCapacity:       200.0,
			DailyRate:         55.0,
			WeeklyRate:        330.0,
			MonthlyRate:       1200.0,
			PlatformSize:      "2x1.4m",
			Description:       "Torre móvil con ruedas para trabajos ligeros",
			QuantityAvailable: 4,
			IsAvailable:       true,
		},
		{
			ID:                "eq-articulada-12",
			Name:              "Plataforma Articulada 12m",
			EquipmentType:     "plataforma_elevadora",
			MaxHeight:         12.0,
			MaxCapacity:       227.0,
			DailyRate:         125.0,
			WeeklyRate:        750.0,
			MonthlyRate:       2800.0,
			PlatformSize:      "1.8x0.9m",
			Description:       "Plataforma articulada para espacios reducidos",
			QuantityAvailable: 2,
			IsAvailable:       true,
		},
	}
}

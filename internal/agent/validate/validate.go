// Package validate enforces the business-rule ranges on extracted fields.
// Each field is validated independently; one bad field never aborts the rest,
// and failures are collected as human-readable strings.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/rentalheights/agent-core/internal/agent/model"
)

// Business-rule bounds.
const (
	MinHeightMeters = 2.0
	MaxHeightMeters = 50.0

	MinCapacityKg = 100.0
	MaxCapacityKg = 2000.0

	MinRentalDays = 1
	MaxRentalDays = 365

	MinLocationLen = 3
	MaxLocationLen = 200

	MaxEmailLen = 100
	MinNameLen  = 2
	MaxNameLen  = 100
)

var (
	digitsOnlyLocation = regexp.MustCompile(`^[\d\s\-_.,]+$`)
	nameCharacters     = regexp.MustCompile(`^[a-zA-ZáéíóúñÁÉÍÓÚÑ\s\-.]+$`)
	phoneDigits        = regexp.MustCompile(`[\s\-()+.]`)
)

// Height checks the requested working height.
func Height(height float64) error {
	return validation.Validate(height,
		validation.Min(MinHeightMeters).Error(fmt.Sprintf("la altura mínima es %.0f metros", MinHeightMeters)),
		validation.Max(MaxHeightMeters).Error(fmt.Sprintf("la altura máxima es %.0f metros", MaxHeightMeters)),
	)
}

// Capacity checks the requested load capacity.
func Capacity(capacity float64) error {
	return validation.Validate(capacity,
		validation.Min(MinCapacityKg).Error(fmt.Sprintf("la capacidad mínima es %.0f kg", MinCapacityKg)),
		validation.Max(MaxCapacityKg).Error(fmt.Sprintf("la capacidad máxima es %.0f kg", MaxCapacityKg)),
	)
}

// Duration checks the rental duration in days.
func Duration(days int) error {
	return validation.Validate(days,
		validation.Min(MinRentalDays).Error(fmt.Sprintf("la duración mínima es %d día", MinRentalDays)),
		validation.Max(MaxRentalDays).Error(fmt.Sprintf("la duración máxima es %d días", MaxRentalDays)),
	)
}

// Location checks the project location string.
func Location(location string) error {
	if err := validation.Validate(strings.TrimSpace(location),
		validation.Required.Error("la ubicación es obligatoria"),
		validation.Length(MinLocationLen, MaxLocationLen).Error(
			fmt.Sprintf("la ubicación debe tener entre %d y %d caracteres", MinLocationLen, MaxLocationLen)),
	); err != nil {
		return err
	}
	if digitsOnlyLocation.MatchString(strings.TrimSpace(location)) {
		return fmt.Errorf("la ubicación debe incluir nombres de lugares")
	}
	return nil
}

// StartDate checks the project start date: not in the past (one day of grace)
// and at most a year out.
func StartDate(start time.Time, now time.Time) error {
	if start.Before(now.AddDate(0, 0, -1)) {
		return fmt.Errorf("la fecha de inicio no puede ser en el pasado")
	}
	if start.After(now.AddDate(1, 0, 0)) {
		return fmt.Errorf("la fecha de inicio no puede ser más de 1 año en el futuro")
	}
	return nil
}

// Phone checks a contact phone number; empty is allowed (the field is optional).
func Phone(phone string) error {
	if phone == "" {
		return nil
	}
	clean := phoneDigits.ReplaceAllString(phone, "")
	if err := validation.Validate(clean, is.Digit.Error("el teléfono debe contener solo números")); err != nil {
		return err
	}
	if len(clean) < 7 || len(clean) > 15 {
		return fmt.Errorf("el teléfono debe tener entre 7 y 15 dígitos")
	}
	return nil
}

// Email checks a contact email; empty is allowed.
func Email(email string) error {
	if email == "" {
		return nil
	}
	return validation.Validate(email,
		is.EmailFormat.Error("el formato del email no es válido"),
		validation.Length(0, MaxEmailLen).Error(fmt.Sprintf("el email es muy largo (máximo %d caracteres)", MaxEmailLen)),
	)
}

// Name checks a contact name; empty is allowed.
func Name(name string) error {
	if name == "" {
		return nil
	}
	if err := validation.Validate(strings.TrimSpace(name),
		validation.Length(MinNameLen, MaxNameLen).Error(
			fmt.Sprintf("el nombre debe tener entre %d y %d caracteres", MinNameLen, MaxNameLen)),
	); err != nil {
		return err
	}
	if !nameCharacters.MatchString(name) {
		return fmt.Errorf("el nombre contiene caracteres no válidos")
	}
	return nil
}

// CollectErrors validates every populated field of the state independently and
// returns the collected messages. An empty slice means everything in range.
func CollectErrors(s *model.ConversationState) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if s.ProjectDetails != nil {
		if s.ProjectDetails.DurationDays != 0 {
			add(Duration(s.ProjectDetails.DurationDays))
		}
		if s.ProjectDetails.Location != "" {
			add(Location(s.ProjectDetails.Location))
		}
		if s.ProjectDetails.StartDate != nil {
			add(StartDate(*s.ProjectDetails.StartDate, time.Now()))
		}
	}

	if len(s.EquipmentNeeds) > 0 {
		need := s.EquipmentNeeds[0]
		if need.HeightNeeded != 0 {
			add(Height(need.HeightNeeded))
		}
		if need.CapacityNeeded != 0 {
			add(Capacity(need.CapacityNeeded))
		}
	}

	if s.ClientInfo != nil {
		add(Phone(s.ClientInfo.Phone))
		add(Email(s.ClientInfo.Email))
		add(Name(s.ClientInfo.Name))
	}

	return errs
}

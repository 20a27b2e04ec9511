// Package extract pulls structured fields out of free-text customer messages.
// A deterministic pattern pass runs first; an optional LLM-assisted pass can
// recover free-form values the patterns miss. Within a turn the first writer
// wins: neither pass overwrites a field that already holds a value.
package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rentalheights/agent-core/internal/agent/model"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// Field names shared with the information gatherer's missing-info lists and
// the contextual question table.
const (
	FieldProjectType   = "project_type"
	FieldLocation      = "location"
	FieldDuration      = "duration"
	FieldHeight        = "height"
	FieldCapacity      = "capacity"
	FieldEquipmentType = "equipment_type"
	FieldSurfaceType   = "surface_type"
)

// FieldQueryOrder is the fixed list of fields the LLM-assisted pass may query,
// in query order. The set is static so the number and order of extraction
// calls is testable, not emergent.
var FieldQueryOrder = []string{
	FieldProjectType,
	FieldLocation,
	FieldEquipmentType,
	FieldSurfaceType,
	FieldDuration,
	FieldHeight,
	FieldCapacity,
}

var (
	heightPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:metros?|mts?|m)`)
	weightPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:kg|kilos?|kilogramos?|toneladas?|t)`)
	daysPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:días?|dias?|day|days)`)
	phonePattern  = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	emailPattern  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	intToken = regexp.MustCompile(`\d+`)
)

// Engine fills previously-unset structured fields from a message. It mutates
// equipment_needs[0] (creating it when absent), project_details,
// site_conditions and client_info in place.
type Engine struct {
	fields model.FieldExtractor
}

// NewEngine builds an extraction engine. fields may be nil, in which case only
// the pattern pass runs.
func NewEngine(fields model.FieldExtractor) *Engine {
	return &Engine{fields: fields}
}

// Apply runs both passes against the state's last message. Repeated calls with
// the same message are idempotent after the first successful extraction.
func (e *Engine) Apply(ctx context.Context, s *model.ConversationState) {
	text := s.LastMessage
	e.applyPatterns(s, text)
	if e.fields != nil {
		e.applyFieldExtractor(ctx, s, text)
	}
	s.Touch()
}

// applyPatterns extracts the fixed-format fields; first match wins.
func (e *Engine) applyPatterns(s *model.ConversationState, text string) {
	if m := heightPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			need := s.PrimaryNeed()
			if need.HeightNeeded == 0 {
				need.HeightNeeded = v
			}
		}
	}

	if m := weightPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			need := s.PrimaryNeed()
			if need.CapacityNeeded == 0 {
				need.CapacityNeeded = v
			}
		}
	}

	if m := daysPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && s.ProjectDetails.DurationDays == 0 {
			s.ProjectDetails.DurationDays = v
		}
	}

	if m := phonePattern.FindString(text); m != "" && s.ClientInfo.Phone == "" {
		s.ClientInfo.Phone = strings.TrimSpace(m)
	}

	if m := emailPattern.FindString(text); m != "" && s.ClientInfo.Email == "" {
		s.ClientInfo.Email = m
	}
}

// applyFieldExtractor runs the LLM-assisted pass over the fixed field list,
// skipping every field that already holds a value.
func (e *Engine) applyFieldExtractor(ctx context.Context, s *model.ConversationState, text string) {
	for _, field := range FieldQueryOrder {
		if e.fieldSet(s, field) {
			continue
		}

		value, ok := e.fields.ExtractField(ctx, field, text)
		value = strings.TrimSpace(value)
		if !ok || value == "" || strings.EqualFold(value, "none") {
			continue
		}

		e.setField(s, field, value)
	}
}

func (e *Engine) fieldSet(s *model.ConversationState, field string) bool {
	switch field {
	case FieldProjectType:
		return s.ProjectDetails.ProjectType != ""
	case FieldLocation:
		return s.ProjectDetails.Location != ""
	case FieldDuration:
		return s.ProjectDetails.DurationDays != 0
	case FieldHeight:
		return len(s.EquipmentNeeds) > 0 && s.EquipmentNeeds[0].HeightNeeded != 0
	case FieldCapacity:
		return len(s.EquipmentNeeds) > 0 && s.EquipmentNeeds[0].CapacityNeeded != 0
	case FieldEquipmentType:
		return len(s.EquipmentNeeds) > 0 && s.EquipmentNeeds[0].EquipmentType != ""
	case FieldSurfaceType:
		return s.SiteConditions.SurfaceType != ""
	}
	return true
}

func (e *Engine) setField(s *model.ConversationState, field, value string) {
	switch field {
	case FieldProjectType:
		s.ProjectDetails.ProjectType = strings.ToLower(value)
	case FieldLocation:
		s.ProjectDetails.Location = value
	case FieldDuration:
		// Duration answers may carry prose ("21 días aproximadamente");
		// only the embedded integer token counts.
		if tok := intToken.FindString(value); tok != "" {
			if v, err := strconv.Atoi(tok); err == nil {
				s.ProjectDetails.DurationDays = v
			}
		}
	case FieldHeight:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			s.PrimaryNeed().HeightNeeded = v
		} else {
			logx.Debug().Str("field", field).Str("value", value).Msg("discarding non-numeric extraction result")
		}
	case FieldCapacity:
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			s.PrimaryNeed().CapacityNeeded = v
		} else {
			logx.Debug().Str("field", field).Str("value", value).Msg("discarding non-numeric extraction result")
		}
	case FieldEquipmentType:
		s.PrimaryNeed().EquipmentType = strings.ToLower(value)
	case FieldSurfaceType:
		s.SiteConditions.SurfaceType = strings.ToLower(value)
	}
}

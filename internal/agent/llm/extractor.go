package llm

import (
	"context"
	"strings"

	"github.com/rentalheights/agent-core/internal/agent/extract"
	"github.com/rentalheights/agent-core/internal/agent/model"
	logx "github.com/rentalheights/agent-core/pkg/logger"
)

// fieldInstructions maps each extractable field to its constrained system
// instruction. The model must answer with the bare value or the literal
// "none"; everything else is treated as prose and coerced by the caller.
var fieldInstructions = map[string]string{
	extract.FieldProjectType: "Extrae el tipo de trabajo del mensaje del cliente (por ejemplo: construccion, mantenimiento, limpieza, pintura, renovacion, industrial). " +
		"Responde únicamente con el valor, o con la palabra none si no aparece.",
	extract.FieldLocation: "Extrae la ciudad o zona donde será el proyecto. " +
		"Responde únicamente con el valor, o con la palabra none si no aparece.",
	extract.FieldEquipmentType: "Extrae el tipo de equipo mencionado (andamio, plataforma_elevadora, escalera, grua, montacargas). " +
		"Responde únicamente con el valor, o con la palabra none si no aparece.",
	extract.FieldSurfaceType: "Extrae el tipo de superficie del sitio (concreto, asfalto, tierra, cesped, grava, baldosa). " +
		"Responde únicamente con el valor, o con la palabra none si no aparece.",
	extract.FieldDuration: "Extrae la duración del alquiler en días como número entero. Convierte semanas o meses a días. " +
		"Responde únicamente con el número, o con la palabra none si no aparece.",
	extract.FieldHeight: "Extrae la altura de trabajo necesaria en metros como número. " +
		"Responde únicamente con el número, o con la palabra none si no aparece.",
	extract.FieldCapacity: "Extrae la capacidad de carga necesaria en kilogramos como número. " +
		"Responde únicamente con el número, o con la palabra none si no aparece.",
}

// FieldExtractor answers one extraction request per field through the text
// completion capability. Errors are logged and reported as not-found; they
// never abort the extraction pass.
type FieldExtractor struct {
	completer model.TextCompleter
}

func NewFieldExtractor(completer model.TextCompleter) *FieldExtractor {
	return &FieldExtractor{completer: completer}
}

func (x *FieldExtractor) ExtractField(ctx context.Context, field, text string) (string, bool) {
	instruction, ok := fieldInstructions[field]
	if !ok {
		return "", false
	}

	out, err := x.completer.Complete(ctx, instruction, text)
	if err != nil {
		logx.Warn().Err(err).Str("field", field).Msg("field extraction call failed")
		return "", false
	}

	out = strings.TrimSpace(out)
	if out == "" || strings.EqualFold(out, "none") {
		return "", false
	}
	return out, true
}

var _ model.FieldExtractor = (*FieldExtractor)(nil)

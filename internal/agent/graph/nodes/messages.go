package nodes

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rentalheights/agent-core/internal/agent/extract"
	"github.com/rentalheights/agent-core/internal/agent/model"
)

// Keyword families the message router classifies against, checked in this
// order; the first family with a hit decides the route.
var (
	quoteKeywords     = []string{"cotización", "cotizacion", "precio", "costo", "cuanto cuesta", "presupuesto"}
	technicalKeywords = []string{"altura", "andamio", "plataforma", "escalera", "metros", "kg"}
	contactKeywords   = []string{"contacto", "teléfono", "telefono", "email", "dirección", "direccion"}
)

// contextualQuestions maps a missing field to the question asked for it.
var contextualQuestions = map[string]string{
	extract.FieldProjectType:   "¿Qué tipo de trabajo vas a realizar? (construcción, mantenimiento, limpieza, etc.)",
	extract.FieldLocation:      "¿En qué ciudad o zona será el proyecto?",
	extract.FieldDuration:      "¿Por cuántos días aproximadamente necesitas el equipo?",
	extract.FieldHeight:        "¿A qué altura necesitas llegar?",
	extract.FieldEquipmentType: "¿Qué tipo de equipo prefieres? (andamio, plataforma elevadora, escalera)",
	extract.FieldSurfaceType:   "¿Qué tipo de superficie tienes en el lugar? (concreto, asfalto, tierra, etc.)",
}

const fallbackQuestion = "¿Podrías darme más detalles sobre tu proyecto?"

// contextualQuestion returns the question for the first missing field.
func contextualQuestion(field string) string {
	if q, ok := contextualQuestions[field]; ok {
		return q
	}
	return fallbackQuestion
}

const (
	basicInfoCompleteMessage = "Perfecto! Ahora necesito algunos detalles técnicos para recomendarte el mejor equipo."
	allInfoCompleteMessage   = "Excelente! Con esta información puedo recomendarte los equipos más adecuados."

	noEquipmentMessage = "Lo siento, no tengo equipos disponibles que cumplan exactamente con tus requisitos.\n" +
		"Te voy a conectar con uno de nuestros especialistas para revisar opciones alternativas."
)

// FormatRecommendations renders the ranked candidates as the advisor's reply.
func FormatRecommendations(recs []model.SelectedEquipment) string {
	var sb strings.Builder
	sb.WriteString("Basado en tus necesidades, te recomiendo:\n\n")

	for i, eq := range recs {
		fmt.Fprintf(&sb, "**%d. %s**\n", i+1, eq.EquipmentName)
		fmt.Fprintf(&sb, "   • Altura máxima: %gm\n", eq.MaxHeight)
		fmt.Fprintf(&sb, "   • Capacidad: %gkg\n", eq.MaxCapacity)
		fmt.Fprintf(&sb, "   • Precio por día: $%.2f\n\n", eq.DailyRate)
	}

	sb.WriteString("¿Te gustaría que prepare una cotización con alguno de estos equipos?")
	return sb.String()
}

// FormatQuote renders the pricing breakdown as the calculator's reply. Each
// quote carries a short reference number derived from a fresh UUID.
func FormatQuote(info model.PricingInfo, lines []model.SelectedEquipment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 **COTIZACIÓN %s**\n\n", quoteNumber())

	sb.WriteString("**Equipos:**\n")
	for _, line := range lines {
		fmt.Fprintf(&sb, "• %s x%d - $%.2f\n", line.EquipmentName, line.Quantity, line.Subtotal)
	}

	sb.WriteString("\n**Resumen:**\n")
	fmt.Fprintf(&sb, "• Subtotal equipos: $%.2f\n", info.EquipmentSubtotal)
	fmt.Fprintf(&sb, "• Costo de entrega: $%.2f\n", info.DeliveryCost)
	fmt.Fprintf(&sb, "• Seguro: $%.2f\n", info.InsuranceCost)
	fmt.Fprintf(&sb, "• **Total: $%.2f %s**\n\n", info.TotalAmount, info.Currency)
	if info.ValidUntil != nil {
		fmt.Fprintf(&sb, "Cotización válida hasta: %s\n\n", info.ValidUntil.Format("02/01/2006"))
	}
	sb.WriteString("¿Te interesa proceder con esta cotización?")
	return sb.String()
}

func quoteNumber() string {
	return "COT-" + strings.ToUpper(uuid.NewString()[:8])
}

// FormatHandoff renders the human hand-off message with contact details.
func FormatHandoff(cfg model.PromptConfig) string {
	return fmt.Sprintf(`Te voy a conectar con uno de nuestros especialistas que podrá ayudarte mejor con tu consulta.

📞 Puedes llamarnos al: %s
📧 O escribirnos a: %s

Mientras tanto, ¿hay algo más en lo que pueda ayudarte?`, cfg.SupportPhone, cfg.SupportEmail)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

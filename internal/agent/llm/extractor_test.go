package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rentalheights/agent-core/internal/agent/extract"
)

type stubCompleter struct {
	reply string
	err   error

	lastSystem string
	lastUser   string
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userMessage
	return s.reply, s.err
}

func TestExtractField_ReturnsValue(t *testing.T) {
	stub := &stubCompleter{reply: "mantenimiento"}
	x := NewFieldExtractor(stub)

	got, ok := x.ExtractField(context.Background(), extract.FieldProjectType, "es un trabajo de mantenimiento")

	assert.True(t, ok)
	assert.Equal(t, "mantenimiento", got)
	assert.Equal(t, "es un trabajo de mantenimiento", stub.lastUser)
	assert.Contains(t, stub.lastSystem, "tipo de trabajo")
}

func TestExtractField_TrimsWhitespace(t *testing.T) {
	stub := &stubCompleter{reply: "  Chapinero \n"}
	x := NewFieldExtractor(stub)

	got, ok := x.ExtractField(context.Background(), extract.FieldLocation, "estamos en chapinero")

	assert.True(t, ok)
	assert.Equal(t, "Chapinero", got)
}

func TestExtractField_NoneAnswers(t *testing.T) {
	for _, reply := range []string{"none", "None", "NONE", "", "   "} {
		stub := &stubCompleter{reply: reply}
		x := NewFieldExtractor(stub)

		_, ok := x.ExtractField(context.Background(), extract.FieldHeight, "hola")
		assert.False(t, ok, "reply %q", reply)
	}
}

func TestExtractField_UnknownField(t *testing.T) {
	stub := &stubCompleter{reply: "whatever"}
	x := NewFieldExtractor(stub)

	_, ok := x.ExtractField(context.Background(), "favorite_color", "azul")

	assert.False(t, ok)
	assert.Empty(t, stub.lastUser, "unknown fields must not reach the model")
}

func TestExtractField_CompletionErrorIsNotFound(t *testing.T) {
	stub := &stubCompleter{err: errors.New("model unavailable")}
	x := NewFieldExtractor(stub)

	_, ok := x.ExtractField(context.Background(), extract.FieldDuration, "10 días")
	assert.False(t, ok)
}

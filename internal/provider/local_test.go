package provider

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapfield/conversation-intelligence/internal/extractor"
	"github.com/zapfield/conversation-intelligence/internal/model"
)

func TestExtractLeadInfo_AccentedText(t *testing.T) {
	// Accented runes before the need prefix shrink under normalization; the
	// extracted slices must still line up with the original text.
	p := NewLocalProvider(extractor.DefaultWeights())
	msgs := []model.Message{
		{
			Content:   "Olá, tô parado aqui! preciso de célula de carga urgente",
			Direction: model.DirectionReceived,
			Type:      model.TypeText,
			Timestamp: time.Now(),
		},
		{
			Content:   "Não tô conseguindo, é sério, preciso de um motor novo",
			Direction: model.DirectionReceived,
			Type:      model.TypeText,
			Timestamp: time.Now(),
		},
	}

	lead, err := p.ExtractLeadInfo(context.Background(), msgs, Meta{})
	require.NoError(t, err)

	assert.Equal(t, "preciso de célula de carga urgente", lead.MainNeed)
	assert.True(t, utf8.ValidString(lead.MainNeed))
	assert.Equal(t, []string{"célula de carga urgente", "um motor novo"}, lead.Products)
	for _, prod := range lead.Products {
		assert.True(t, utf8.ValidString(prod))
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	long := strings.Repeat("atenção ", 40)

	got := truncate(long, 140)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 140)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "curto", truncate("curto", 120))
}

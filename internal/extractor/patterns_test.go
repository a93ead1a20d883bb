package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPatterns_Currency(t *testing.T) {
	p := ExtractPatterns("Motor sai por R$ 3.500,00, parcelado em 10x")

	require.Len(t, p.Amounts, 1)
	assert.InDelta(t, 3500.00, p.Amounts[0], 0.001)
	assert.Equal(t, []string{"R$ 3.500,00"}, p.MonetaryValues)
	assert.Empty(t, p.Emails)
	assert.Empty(t, p.Phones)
}

func TestExtractPatterns_MixedSignals(t *testing.T) {
	text := "Me chama no (11) 98765-4321 ou contato@oficina.com.br, fechamos por R$ 1.200,00 com 10% de entrada"
	p := ExtractPatterns(text)

	assert.Equal(t, []string{"contato@oficina.com.br"}, p.Emails)
	require.Len(t, p.Phones, 1)
	require.Len(t, p.Amounts, 1)
	assert.InDelta(t, 1200.00, p.Amounts[0], 0.001)
	assert.Equal(t, []string{"10%"}, p.Percentages)
}

func TestExtractPatterns_MultipleAmountsTotal(t *testing.T) {
	p := ExtractPatterns("A peça fica R$ 450,00 e a mão de obra R$ 150,00")

	require.Len(t, p.Amounts, 2)
	assert.InDelta(t, 600.00, p.Total, 0.001)
}

func TestExtractPatterns_MalformedInput(t *testing.T) {
	for _, text := range []string{"", "R$", "@@@", "R$ abc", "55 nada a ver 99"} {
		p := ExtractPatterns(text)
		assert.NotNil(t, p.Emails)
		assert.NotNil(t, p.Amounts)
		assert.Empty(t, p.Amounts, "input %q", text)
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"R$ 3.500,00", 3500.00, true},
		{"R$99,90", 99.90, true},
		{"R$ 1.234.567,89", 1234567.89, true},
		{"R$ 500", 500, true},
		{"R$ ,,", 0, false},
	}
	for _, tt := range tests {
		v, ok := ParseCurrency(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.InDelta(t, tt.want, v, 0.001, tt.raw)
		}
	}
}

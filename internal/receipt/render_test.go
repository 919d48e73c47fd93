package receipt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/rates"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("text"))
	assert.NotNil(t, r.Get("JSON"))
	assert.Nil(t, r.Get("png"))
	assert.Equal(t, []string{"json", "text"}, r.Formats())
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(TextRenderer{})
	assert.Panics(t, func() { r.Register(TextRenderer{}) })
}

func TestTextRenderer(t *testing.T) {
	table := rates.Table{"eur": decimal.RequireFromString("0.20")}
	rc := Build(salary(), currency.EUR, table, generatedAt)

	var buf bytes.Buffer
	require.NoError(t, TextRenderer{}.Render(&buf, rc))
	out := buf.String()

	for _, want := range []string{
		"ReactBank",
		"Transaction Receipt",
		"Amount (EUR)",
		"+€300.00",
		"≈ Original: RM 1,500.00",
		"[INCOMING]",
		"Reference ID    123ABC",
		"Date            15 Oct 2024, 12:34 PM",
		"Recipient Name  John Doe",
		"Transfer Type   Salary Payment",
		"Receipt No.     " + rc.Number,
		"Generated on 3 Feb 2025, 04:05 PM",
		"Powered by ReactBank",
	} {
		assert.Contains(t, out, want)
	}
}

func TestTextRenderer_BaseHasNoOriginal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TextRenderer{}.Render(&buf, Build(refund(), currency.MYR, nil, generatedAt)))
	assert.NotContains(t, buf.String(), "Original")
	assert.Contains(t, buf.String(), "[OUTGOING]")
	assert.True(t, strings.HasSuffix(buf.String(), "Powered by ReactBank\n"))
}

func TestJSONRenderer(t *testing.T) {
	rc := Build(refund(), currency.MYR, nil, generatedAt)

	var buf bytes.Buffer
	require.NoError(t, JSONRenderer{}.Render(&buf, rc))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "789GHI", got["ref_id"])
	assert.Equal(t, "MYR", got["currency"])
	assert.Equal(t, "OUTGOING", got["badge"])
	assert.Equal(t, "outgoing", got["direction"])
	assert.Equal(t, map[string]any{"display": "-RM 500.00", "is_negative": true}, got["amount"])
	assert.NotContains(t, got, "original")
}

package receipt

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Renderer writes a receipt in one output format.
type Renderer interface {
	Render(w io.Writer, r Receipt) error
	Format() string
	Ext() string
}

// Registry holds named renderers.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds a renderer. Panics on duplicate format.
func (r *Registry) Register(rd Renderer) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.renderers[key]; ok {
		panic("duplicate renderer format: " + key)
	}
	r.renderers[key] = rd
}

// Get returns the renderer for format, or nil.
func (r *Registry) Get(format string) Renderer {
	return r.renderers[strings.ToLower(format)]
}

// Formats lists registered format names in order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.renderers))
	for k := range r.renderers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with the text and json renderers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TextRenderer{})
	r.Register(JSONRenderer{})
	return r
}

const (
	textWidth  = 40
	labelWidth = 16
)

// TextRenderer prints a plain-text receipt.
type TextRenderer struct{}

func (TextRenderer) Format() string { return "text" }
func (TextRenderer) Ext() string    { return "txt" }

func (TextRenderer) Render(w io.Writer, r Receipt) error {
	heavy := strings.Repeat("=", textWidth)
	perforated := strings.Repeat("- ", textWidth/2)
	light := strings.Repeat("-", textWidth)

	var b strings.Builder
	fmt.Fprintln(&b, heavy)
	fmt.Fprintf(&b, "  %s\n", Brand)
	fmt.Fprintln(&b, "  Transaction Receipt")
	fmt.Fprintln(&b, heavy)
	fmt.Fprintf(&b, "  Amount (%s)\n", r.Currency)
	fmt.Fprintf(&b, "  %s\n", r.Amount.Value)
	if r.Original != nil {
		fmt.Fprintf(&b, "  ≈ Original: %s\n", r.Original.Value)
	}
	fmt.Fprintf(&b, "  [%s]\n", r.Badge)
	fmt.Fprintln(&b, strings.TrimRight(perforated, " "))
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "  %-*s%s\n", labelWidth, row.Label, row.Value)
	}
	fmt.Fprintln(&b, light)
	fmt.Fprintf(&b, "  %-*s%s\n", labelWidth, "Receipt No.", r.Number)
	fmt.Fprintf(&b, "  %s\n", r.GeneratedOn())
	fmt.Fprintf(&b, "  Powered by %s\n", Brand)

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONRenderer writes the receipt as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Format() string { return "json" }
func (JSONRenderer) Ext() string    { return "json" }

func (JSONRenderer) Render(w io.Writer, r Receipt) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	return nil
}

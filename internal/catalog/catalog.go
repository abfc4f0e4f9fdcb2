// Package catalog models the operator-edited offer file: two ordered pools,
// a priority queue consumed once per selection and a general rotation reused
// indefinitely.
package catalog

import (
	"encoding/json"
	"strings"
)

// Offer is one catalog entry describing a product or promotion to announce.
// Every field is optional; malformed records render with empty parts instead
// of failing the dispatch pipeline.
type Offer struct {
	Name          string `json:"nome,omitempty"`
	Price         string `json:"preco,omitempty"`
	DiscountPrice string `json:"precoDesconto,omitempty"`
	Link          string `json:"link,omitempty"`
	Image         string `json:"caminho,omitempty"`
	// LegacyImage is the older spelling of the image field still present in
	// hand-edited files.
	LegacyImage  string `json:"imagem,omitempty"`
	FreeShipping Truthy `json:"freteGratis,omitempty"`
}

// ImageRef returns the image reference, preferring the current field name
// over the legacy alias. First non-empty wins.
func (o Offer) ImageRef() string {
	if ref := strings.TrimSpace(o.Image); ref != "" {
		return ref
	}
	return strings.TrimSpace(o.LegacyImage)
}

// Truthy is a boolean that also accepts the string spellings operators type
// into the catalog file ("sim", "yes", "true", "frete grátis").
type Truthy bool

// Bool returns the plain boolean value.
func (t Truthy) Bool() bool {
	return bool(t)
}

// UnmarshalJSON accepts booleans and truthy string variants. Anything else
// decodes as false rather than rejecting the record.
func (t *Truthy) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Truthy(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Truthy(truthyString(s))
		return nil
	}

	*t = false
	return nil
}

// MarshalJSON writes the normalized boolean form.
func (t Truthy) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(t))
}

func truthyString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "yes", "sim", "1":
		return true
	}
	// Shipping phrases like "frete grátis" count as an affirmative
	return strings.Contains(s, "frete")
}

// Catalog is the in-memory form of the persisted offer file.
type Catalog struct {
	// Priority offers are shown once and removed upon selection.
	Priority []Offer
	// General offers are a recurring rotation, never removed.
	General []Offer
	// Dirty is set when a legacy key was merged during load and the file
	// should be rewritten in the canonical shape.
	Dirty bool
}

// IsEmpty reports whether both pools are empty.
func (c Catalog) IsEmpty() bool {
	return len(c.Priority) == 0 && len(c.General) == 0
}

package model

// Field is one of the canonical holding field names.
type Field string

const (
	FieldSymbol       Field = "symbol"
	FieldCurrentValue Field = "currentValue"
	FieldPctOfAccount Field = "pctOfAccount"
	FieldQuantity     Field = "quantity"
	FieldCostBasis    Field = "costBasis"
)

// Fields lists every canonical field in output order.
var Fields = []Field{
	FieldSymbol,
	FieldCurrentValue,
	FieldPctOfAccount,
	FieldQuantity,
	FieldCostBasis,
}

// RawField is a single observed cell value, keyed by the column identifier
// it was seen under (a broker-specific attribute value or a header label).
type RawField struct {
	Key   string
	Value string
}

// RawRecord is one logical row as observed by a parsing strategy. Fields keep
// scan order so that later alias resolution and merging stay deterministic.
type RawRecord struct {
	Key    string
	Fields []RawField
}

// Add appends a field. Empty values are dropped at the source.
func (r *RawRecord) Add(key, value string) {
	if value == "" {
		return
	}
	r.Fields = append(r.Fields, RawField{Key: key, Value: value})
}

// Has reports whether a field with the given key was already observed.
func (r *RawRecord) Has(key string) bool {
	for _, f := range r.Fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Holding is one normalized brokerage position. Values keep the source's
// original formatting; only the symbol is canonicalized.
type Holding struct {
	Symbol       string `json:"symbol"`
	CurrentValue string `json:"currentValue,omitempty"`
	PctOfAccount string `json:"pctOfAccount,omitempty"`
	Quantity     string `json:"quantity,omitempty"`
	CostBasis    string `json:"costBasis,omitempty"`
}

// Get returns the value of a canonical field.
func (h *Holding) Get(f Field) string {
	switch f {
	case FieldSymbol:
		return h.Symbol
	case FieldCurrentValue:
		return h.CurrentValue
	case FieldPctOfAccount:
		return h.PctOfAccount
	case FieldQuantity:
		return h.Quantity
	case FieldCostBasis:
		return h.CostBasis
	}
	return ""
}

// SetIfEmpty sets a canonical field unless it already holds a value.
// Merging is first-write-wins across duplicate records for one symbol.
func (h *Holding) SetIfEmpty(f Field, v string) {
	if v == "" || h.Get(f) != "" {
		return
	}
	switch f {
	case FieldSymbol:
		h.Symbol = v
	case FieldCurrentValue:
		h.CurrentValue = v
	case FieldPctOfAccount:
		h.PctOfAccount = v
	case FieldQuantity:
		h.Quantity = v
	case FieldCostBasis:
		h.CostBasis = v
	}
}

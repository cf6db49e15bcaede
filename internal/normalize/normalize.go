package normalize

import (
	"strings"

	"FolioScraper/internal/model"
)

// Normalizer resolves raw field keys to canonical fields and merges raw
// records into deduplicated holdings. All steps are total: malformed input is
// dropped, never raised.
type Normalizer struct {
	aliases map[string]model.Field
	skip    map[string]bool
}

// New builds a Normalizer from an alias table (canonical field name -> source
// column ids) and a skip-symbol list. Canonical field names always resolve to
// themselves; alias keys match case-insensitively.
func New(aliases map[string][]string, skipSymbols []string) *Normalizer {
	n := &Normalizer{
		aliases: make(map[string]model.Field),
		skip:    make(map[string]bool),
	}
	for _, f := range model.Fields {
		n.aliases[strings.ToLower(string(f))] = f
	}
	for canonical, keys := range aliases {
		f := model.Field(canonical)
		if !knownField(f) {
			continue
		}
		for _, k := range keys {
			n.aliases[strings.ToLower(strings.TrimSpace(k))] = f
		}
	}
	for _, s := range skipSymbols {
		n.skip[skipKey(s)] = true
	}
	return n
}

func knownField(f model.Field) bool {
	for _, known := range model.Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Resolve maps a source column identifier to its canonical field.
func (n *Normalizer) Resolve(key string) (model.Field, bool) {
	f, ok := n.aliases[strings.ToLower(strings.TrimSpace(key))]
	return f, ok
}

// CanonicalSymbol trims, upper-cases, and strips internal whitespace.
func CanonicalSymbol(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// skipKey is the comparison form for skip-set matching: lower-cased with all
// whitespace stripped, so "Account Total" still matches after symbol
// canonicalization removed the space.
func skipKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Normalize turns raw records into deduplicated holdings. Unresolvable keys
// are discarded, skip-set symbols are dropped, and duplicate symbols merge
// field-wise with first-observed-value-wins semantics. Output order is the
// first-appearance order of each symbol, so the result is deterministic for
// a fixed input sequence.
func (n *Normalizer) Normalize(records []model.RawRecord) []model.Holding {
	var order []string
	merged := make(map[string]*model.Holding)

	for _, rec := range records {
		var h model.Holding
		for _, rf := range rec.Fields {
			f, ok := n.Resolve(rf.Key)
			if !ok {
				continue
			}
			v := strings.TrimSpace(rf.Value)
			if v == "" {
				continue
			}
			if f == model.FieldSymbol {
				v = CanonicalSymbol(v)
			}
			h.SetIfEmpty(f, v)
		}
		if h.Symbol == "" || n.skip[skipKey(h.Symbol)] {
			continue
		}
		cur, ok := merged[h.Symbol]
		if !ok {
			hh := h
			merged[h.Symbol] = &hh
			order = append(order, h.Symbol)
			continue
		}
		for _, f := range model.Fields {
			cur.SetIfEmpty(f, h.Get(f))
		}
	}

	out := make([]model.Holding, 0, len(order))
	for _, sym := range order {
		out = append(out, *merged[sym])
	}
	return out
}

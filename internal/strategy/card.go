package strategy

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FolioScraper/internal/dom"
	"FolioScraper/internal/model"
	"FolioScraper/internal/page"
)

// Card extracts positions from attribute-encoded card elements. Missing
// quantity/value fields are supplemented from descendant accessible labels,
// and as a last resort the first currency-like token of the card's text.
type Card struct {
	Attr           string
	SymbolPrefix   string
	QuantityLabels []string
	ValueLabels    []string
}

func (c *Card) Name() string { return "card" }

func (c *Card) Extract(docs []page.Document) []model.RawRecord {
	var out []model.RawRecord
	for di, doc := range docs {
		doc.Root.Find("[" + c.Attr + "]").Each(func(i int, el *goquery.Selection) {
			payload, _ := el.Attr(c.Attr)
			rec := model.RawRecord{Key: fmt.Sprintf("%d#%d", di, i)}
			rec.Fields = dom.DecodePairs(payload)

			if !rec.Has(string(model.FieldSymbol)) && c.SymbolPrefix != "" &&
				strings.HasPrefix(payload, c.SymbolPrefix) {
				sym, _, _ := strings.Cut(strings.TrimPrefix(payload, c.SymbolPrefix), ";")
				rec.Add(string(model.FieldSymbol), strings.TrimSpace(sym))
			}
			if !rec.Has(string(model.FieldQuantity)) {
				rec.Add(string(model.FieldQuantity), dom.LabelValue(el, c.QuantityLabels))
			}
			if !rec.Has(string(model.FieldCurrentValue)) {
				if v := dom.LabelValue(el, c.ValueLabels); v != "" {
					rec.Add(string(model.FieldCurrentValue), v)
				} else {
					rec.Add(string(model.FieldCurrentValue), dom.CurrencyToken(el.Text()))
				}
			}

			if len(rec.Fields) > 0 {
				out = append(out, rec)
			}
		})
	}
	return out
}

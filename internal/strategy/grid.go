package strategy

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"FolioScraper/internal/dom"
	"FolioScraper/internal/model"
	"FolioScraper/internal/page"
)

// Grid extracts positions from grid-widget rows. Grid widgets render pinned
// and scrollable columns as separate row elements sharing one row-index
// attribute; grouping by that index reassembles the logical row.
type Grid struct {
	RowSelector  string
	RowIndexAttr string
	ColIDAttr    string
	// Resolve maps a column id to its canonical field so the record carries
	// both the raw id and the friendly name, mirroring the source markup.
	Resolve func(string) (model.Field, bool)
}

func (g *Grid) Name() string { return "grid" }

func (g *Grid) Extract(docs []page.Document) []model.RawRecord {
	var order []string
	byKey := make(map[string]*model.RawRecord)

	for di, doc := range docs {
		doc.Root.Find(g.RowSelector).Each(func(_ int, row *goquery.Selection) {
			idx, ok := row.Attr(g.RowIndexAttr)
			if !ok {
				return // row fragment without an index cannot be grouped
			}
			key := fmt.Sprintf("%d#%s", di, idx)
			rec, ok := byKey[key]
			if !ok {
				rec = &model.RawRecord{Key: key}
				byKey[key] = rec
				order = append(order, key)
			}
			row.Find("[" + g.ColIDAttr + "]").Each(func(_ int, cell *goquery.Selection) {
				colID, ok := cell.Attr(g.ColIDAttr)
				if !ok || colID == "" {
					return
				}
				val := dom.FirstLine(cell.Text())
				if val == "" {
					return
				}
				if !rec.Has(colID) {
					rec.Add(colID, val)
				}
				if g.Resolve == nil {
					return
				}
				if f, ok := g.Resolve(colID); ok && !rec.Has(string(f)) {
					rec.Add(string(f), val)
				}
			})
		})
	}

	out := make([]model.RawRecord, 0, len(order))
	for _, key := range order {
		if rec := byKey[key]; len(rec.Fields) > 0 {
			out = append(out, *rec)
		}
	}
	return out
}

package strategy

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"FolioScraper/internal/dom"
	"FolioScraper/internal/model"
	"FolioScraper/internal/page"
)

// EncodedRow extracts positions from table rows carrying one attribute with a
// semicolon-separated key=value payload.
type EncodedRow struct {
	Attr string
}

func (e *EncodedRow) Name() string { return "encoded" }

func (e *EncodedRow) Extract(docs []page.Document) []model.RawRecord {
	var out []model.RawRecord
	for di, doc := range docs {
		doc.Root.Find("tr[" + e.Attr + "]").Each(func(i int, row *goquery.Selection) {
			payload, _ := row.Attr(e.Attr)
			fields := dom.DecodePairs(payload)
			if len(fields) == 0 {
				return
			}
			out = append(out, model.RawRecord{
				Key:    fmt.Sprintf("%d#%d", di, i),
				Fields: fields,
			})
		})
	}
	return out
}

package strategy

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FolioScraper/internal/dom"
	"FolioScraper/internal/model"
	"FolioScraper/internal/page"
)

// HeaderTable extracts positions from conventional HTML tables by mapping
// free-form header text to canonical fields. Tables without headers, or whose
// headers map to nothing, are skipped.
type HeaderTable struct{}

func (h *HeaderTable) Name() string { return "table" }

func (h *HeaderTable) Extract(docs []page.Document) []model.RawRecord {
	var out []model.RawRecord
	for di, doc := range docs {
		doc.Root.Find("table").Each(func(ti int, table *goquery.Selection) {
			out = append(out, h.extractTable(fmt.Sprintf("%d#%d", di, ti), table)...)
		})
	}
	return out
}

func (h *HeaderTable) extractTable(keyPrefix string, table *goquery.Selection) []model.RawRecord {
	headers := table.Find("thead tr").First().Find("th,td")
	headerIsFirstRow := false
	if headers.Length() == 0 {
		headers = table.Find("tr").First().Find("th")
		headerIsFirstRow = headers.Length() > 0
	}
	if headers.Length() == 0 {
		return nil
	}

	colMap := make(map[int]model.Field)
	headers.Each(func(i int, cell *goquery.Selection) {
		if f, ok := headerField(cell.Text()); ok {
			colMap[i] = f
		}
	})
	if len(colMap) == 0 {
		return nil
	}

	// The HTML parser moves stray body rows into an implicit tbody, so select
	// every row outside thead and skip the header row when it doubled as one.
	rows := table.Find("tr").Not("thead tr")

	var out []model.RawRecord
	rows.Each(func(ri int, row *goquery.Selection) {
		if headerIsFirstRow && ri == 0 {
			return
		}
		rec := model.RawRecord{Key: keyPrefix + "#" + fmt.Sprint(ri)}
		row.Find("td,th").Each(func(ci int, cell *goquery.Selection) {
			f, ok := colMap[ci]
			if !ok {
				return
			}
			rec.Add(string(f), dom.FirstLine(cell.Text()))
		})
		if len(rec.Fields) > 0 {
			out = append(out, rec)
		}
	})
	return out
}

// normalizeHeader lower-cases the header, strips everything but letters,
// digits, '%' and spaces, and collapses whitespace.
func normalizeHeader(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '%':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// headerField maps a normalized header to a canonical field via substring
// rules. Returns false for headers with no canonical meaning.
func headerField(header string) (model.Field, bool) {
	hdr := normalizeHeader(header)
	if hdr == "" {
		return "", false
	}
	switch {
	case strings.Contains(hdr, "symbol"), strings.Contains(hdr, "ticker"):
		return model.FieldSymbol, true
	case strings.Contains(hdr, "% of"), strings.Contains(hdr, "allocation"), strings.Contains(hdr, "weight"):
		return model.FieldPctOfAccount, true
	case strings.Contains(hdr, "quantity"), strings.Contains(hdr, "shares"), strings.Contains(hdr, "qty"):
		return model.FieldQuantity, true
	case strings.Contains(hdr, "cost basis"), strings.Contains(hdr, "cost"):
		return model.FieldCostBasis, true
	case strings.Contains(hdr, "market value"), strings.Contains(hdr, "current value"), strings.Contains(hdr, "value"):
		return model.FieldCurrentValue, true
	}
	return "", false
}

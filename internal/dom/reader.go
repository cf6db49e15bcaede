package dom

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"FolioScraper/internal/model"
)

// FirstLine returns the first non-blank line of a cell's text, trimmed.
// Grid cells often render "TICKER\nCompany Name" in one element.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// DecodePairs parses a "key=value;key=value" attribute payload into ordered
// fields. Values are percent-decoded when decodable; malformed segments are
// dropped rather than failing the whole payload.
func DecodePairs(payload string) []model.RawField {
	var fields []model.RawField
	for _, seg := range strings.Split(payload, ";") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, value, ok := strings.Cut(seg, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		fields = append(fields, model.RawField{Key: key, Value: value})
	}
	return fields
}

var currencyRe = regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d+)?`)

// CurrencyToken returns the first currency-like token in s, or "".
func CurrencyToken(s string) string {
	return currencyRe.FindString(s)
}

// LabelValue searches descendants of sel for an accessible label starting
// with one of the given prefixes (case-insensitive) and returns the label's
// remainder, falling back to the labelled element's own text.
func LabelValue(sel *goquery.Selection, prefixes []string) string {
	var out string
	sel.Find("[aria-label]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label, _ := s.Attr("aria-label")
		for _, p := range prefixes {
			if len(label) < len(p) || !strings.EqualFold(label[:len(p)], p) {
				continue
			}
			rest := strings.TrimSpace(strings.TrimLeft(label[len(p):], " \t:-"))
			if rest == "" {
				rest = FirstLine(s.Text())
			}
			if rest != "" {
				out = rest
				return false
			}
		}
		return true
	})
	return out
}

package page

import (
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is one parsed, inspectable document context.
type Document struct {
	Label string
	Root  *goquery.Document
}

// Enumerate parses a captured page into documents: the main document first,
// then captured frames, then inline srcdoc frames in DOM order. A frame whose
// content cannot be parsed is skipped without aborting enumeration.
func Enumerate(p *Page) []Document {
	var docs []Document

	main, err := goquery.NewDocumentFromReader(strings.NewReader(p.Main))
	if err != nil {
		log.Printf("[WARN] parse main document: %v", err)
		main = nil
	} else {
		docs = append(docs, Document{Label: "main", Root: main})
	}

	for i, f := range p.Frames {
		d, err := goquery.NewDocumentFromReader(strings.NewReader(f.HTML))
		if err != nil {
			log.Printf("[WARN] skip frame %q: %v", f.Label, err)
			continue
		}
		label := f.Label
		if label == "" {
			label = fmt.Sprintf("frame[%d]", i)
		}
		docs = append(docs, Document{Label: label, Root: d})
	}

	if main != nil {
		main.Find("iframe[srcdoc]").Each(func(i int, s *goquery.Selection) {
			src, _ := s.Attr("srcdoc")
			if strings.TrimSpace(src) == "" {
				return
			}
			d, err := goquery.NewDocumentFromReader(strings.NewReader(src))
			if err != nil {
				log.Printf("[WARN] skip srcdoc frame %d: %v", i, err)
				return
			}
			docs = append(docs, Document{Label: fmt.Sprintf("srcdoc[%d]", i), Root: d})
		})
	}

	return docs
}

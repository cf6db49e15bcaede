package broker

import (
	"strings"

	"FolioScraper/internal/model"
)

// Rule binds hostname substrings to one broker tag.
type Rule struct {
	Name    model.Broker
	Domains []string
}

// Detector classifies a page by hostname against a static rule table.
type Detector struct {
	rules []Rule
}

// NewDetector creates a detector from an ordered rule table.
func NewDetector(rules []Rule) *Detector {
	return &Detector{rules: rules}
}

// Detect returns the broker tag for a hostname, or BrokerUnknown when no
// rule matches. Pure and idempotent; safe to call from debug surfaces.
func (d *Detector) Detect(hostname string) model.Broker {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return model.BrokerUnknown
	}
	for _, r := range d.rules {
		for _, domain := range r.Domains {
			if strings.Contains(host, strings.ToLower(domain)) {
				return r.Name
			}
		}
	}
	return model.BrokerUnknown
}

package page

import "context"

// Frame is one embedded frame's captured content. Frames whose content could
// not be read (cross-origin) are never captured in the first place.
type Frame struct {
	Label string `json:"label"`
	HTML  string `json:"html"`
}

// Page is a raw snapshot of one browsing context: the main document's markup
// plus every readable embedded frame, in DOM order.
type Page struct {
	Hostname string
	Main     string
	Frames   []Frame
}

// Source captures the current state of a positions page.
type Source interface {
	Capture(ctx context.Context) (*Page, error)
	Name() string
}

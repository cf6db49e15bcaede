package recorder

import (
	"time"

	"FolioScraper/internal/model"
)

// Snapshot holds everything worth keeping from one extraction invocation.
type Snapshot struct {
	ID       string
	Broker   model.Broker
	Attempts int
	Duration time.Duration
	Holdings []model.Holding
}

// Recorder persists extraction history for later analysis.
type Recorder interface {
	RecordExtraction(snap *Snapshot) error
	Close() error
}

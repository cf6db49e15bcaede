package scheduler

import (
	"context"
	"errors"
	"testing"

	"FolioScraper/internal/extract"
	"FolioScraper/internal/model"
	"FolioScraper/internal/recorder"
)

type stubPipeline struct {
	res   *extract.Result
	err   error
	calls int
}

func (s *stubPipeline) Extract(_ context.Context) (*extract.Result, error) {
	s.calls++
	return s.res, s.err
}

type memRecorder struct {
	snaps []*recorder.Snapshot
}

func (m *memRecorder) RecordExtraction(snap *recorder.Snapshot) error {
	m.snaps = append(m.snaps, snap)
	return nil
}
func (m *memRecorder) Close() error { return nil }

func TestRunNow_RecordsNonEmptyResult(t *testing.T) {
	p := &stubPipeline{res: &extract.Result{
		ID:       "watch-1",
		Broker:   model.BrokerVanguard,
		Attempts: 1,
		Holdings: []model.Holding{{Symbol: "VTI", Quantity: "10"}},
	}}
	rec := &memRecorder{}
	s := NewScheduler(context.Background(), p, rec, nil)

	s.RunNow()

	if p.calls != 1 {
		t.Fatalf("expected 1 pipeline call, got %d", p.calls)
	}
	if len(rec.snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(rec.snaps))
	}
	if rec.snaps[0].ID != "watch-1" || rec.snaps[0].Broker != model.BrokerVanguard {
		t.Errorf("unexpected snapshot: %+v", rec.snaps[0])
	}
}

func TestRunNow_EmptyResultNotRecorded(t *testing.T) {
	p := &stubPipeline{res: &extract.Result{Attempts: 5, Holdings: []model.Holding{}}}
	rec := &memRecorder{}
	s := NewScheduler(context.Background(), p, rec, nil)

	s.RunNow()

	if len(rec.snaps) != 0 {
		t.Errorf("empty result must not be recorded, got %+v", rec.snaps)
	}
}

func TestRunNow_PipelineErrorIsSwallowed(t *testing.T) {
	p := &stubPipeline{err: errors.New("capture page: browser gone")}
	rec := &memRecorder{}
	s := NewScheduler(context.Background(), p, rec, nil)

	// Watch mode logs and moves on; the next tick will try again.
	s.RunNow()

	if len(rec.snaps) != 0 {
		t.Errorf("failed extraction must not be recorded, got %+v", rec.snaps)
	}
}

func TestRegister_BadCronSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &stubPipeline{}, &memRecorder{}, nil)
	if err := s.Register("not a cron spec"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
	if err := s.Register("0 */5 * * * *"); err != nil {
		t.Errorf("valid cron spec rejected: %v", err)
	}
}

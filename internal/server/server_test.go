package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"FolioScraper/internal/broker"
	"FolioScraper/internal/extract"
	"FolioScraper/internal/model"
	"FolioScraper/internal/recorder"
)

type stubPipeline struct {
	res *extract.Result
	err error
}

func (s *stubPipeline) Extract(_ context.Context) (*extract.Result, error) {
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

func testDetector() *broker.Detector {
	return broker.NewDetector([]broker.Rule{
		{Name: model.BrokerFidelity, Domains: []string{"fidelity.com"}},
	})
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHandleExtract_Success(t *testing.T) {
	rec := &memRecorder{}
	p := &stubPipeline{res: &extract.Result{
		ID:       "test-id",
		Broker:   model.BrokerFidelity,
		Attempts: 2,
		Holdings: []model.Holding{{Symbol: "AAPL", CurrentValue: "$1,000"}},
	}}
	s := New(p, testDetector(), rec, nil)

	w := doRequest(t, s, http.MethodPost, "/api/extract")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}

	var resp struct {
		Data  []model.Holding `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "" {
		t.Errorf("unexpected error field: %q", resp.Error)
	}
	if len(resp.Data) != 1 || resp.Data[0].Symbol != "AAPL" {
		t.Errorf("unexpected data: %+v", resp.Data)
	}
	if len(rec.snaps) != 1 || rec.snaps[0].ID != "test-id" {
		t.Errorf("expected one recorded snapshot, got %+v", rec.snaps)
	}
}

func TestHandleExtract_EmptyIsNotAnError(t *testing.T) {
	rec := &memRecorder{}
	p := &stubPipeline{res: &extract.Result{Holdings: []model.Holding{}, Attempts: 5}}
	s := New(p, testDetector(), rec, nil)

	w := doRequest(t, s, http.MethodPost, "/api/extract")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	body := w.Body.String()
	if body == "" || !json.Valid([]byte(body)) {
		t.Fatalf("invalid body: %q", body)
	}
	var resp map[string]json.RawMessage
	json.Unmarshal([]byte(body), &resp)
	if string(resp["data"]) != "[]" {
		t.Errorf(`expected "data":[], got %s`, resp["data"])
	}
	if _, ok := resp["error"]; ok {
		t.Error("empty result must not carry an error field")
	}
	if len(rec.snaps) != 0 {
		t.Errorf("empty result must not be recorded, got %+v", rec.snaps)
	}
}

func TestHandleExtract_PipelineError(t *testing.T) {
	p := &stubPipeline{err: errors.New("capture page: browser gone")}
	s := New(p, testDetector(), &memRecorder{}, nil)

	w := doRequest(t, s, http.MethodPost, "/api/extract")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp struct {
		Data  []model.Holding `json:"data"`
		Error string          `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected error field on pipeline failure")
	}
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected empty data array, got %+v", resp.Data)
	}
}

func TestHandleBroker(t *testing.T) {
	s := New(&stubPipeline{}, testDetector(), &memRecorder{}, nil)

	w := doRequest(t, s, http.MethodGet, "/api/broker?hostname=digital.fidelity.com")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["broker"] != "fidelity" {
		t.Errorf("broker: got %q", resp["broker"])
	}

	w = doRequest(t, s, http.MethodGet, "/api/broker")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing hostname must 400, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := New(&stubPipeline{}, testDetector(), &memRecorder{}, nil)
	w := doRequest(t, s, http.MethodGet, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["ok"] {
		t.Error("expected ok=true")
	}
}

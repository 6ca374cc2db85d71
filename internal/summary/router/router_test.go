package router

import (
	"context"
	"testing"
	"time"

	"makesense-backend/internal/summary/domain"
	"makesense-backend/pkg/instantdb"
)

// fakeRepo lets each test script the outcome of every operation.
type fakeRepo struct {
	upsertAck  instantdb.Ack
	upsertErr  error
	list       []domain.Summary
	listErr    error
	deleteErr  error
	byVideoID  *domain.Summary
	byVideoErr error
	panicOn    string
}

func (f *fakeRepo) Upsert(ctx context.Context, fields domain.SummaryFields) (instantdb.Ack, error) {
	if f.panicOn == ActionSaveSummary {
		panic("repo exploded")
	}
	return f.upsertAck, f.upsertErr
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.Summary, error) {
	return f.list, f.listErr
}

func (f *fakeRepo) GetByVideoID(ctx context.Context, videoID string) (*domain.Summary, error) {
	return f.byVideoID, f.byVideoErr
}

func (f *fakeRepo) Delete(ctx context.Context, id string) (instantdb.Ack, error) {
	return instantdb.Ack{"ok": true}, f.deleteErr
}

var allActions = []Request{
	{Action: ActionSaveSummary, Data: &domain.SummaryFields{VideoID: "v"}},
	{Action: ActionQuerySummaries},
	{Action: ActionDeleteSummary, ID: "some-id"},
	{Action: ActionGetSummaryByVideoID, VideoID: "v"},
}

func TestConfigurationGate(t *testing.T) {
	rt := NewRouter(nil)

	for _, req := range allActions {
		resp := rt.Dispatch(context.Background(), req)
		if resp.Success {
			t.Errorf("%s: success without a configured store", req.Action)
		}
		if resp.Error != "Database not initialized" {
			t.Errorf("%s: error = %q, want %q", req.Action, resp.Error, "Database not initialized")
		}
	}
}

func TestEnvelopeUniformity(t *testing.T) {
	repo := &fakeRepo{
		upsertAck: instantdb.Ack{"ok": true},
		list:      []domain.Summary{{ID: "a", VideoID: "v"}},
		byVideoID: &domain.Summary{ID: "a", VideoID: "v"},
	}
	rt := NewRouter(repo)

	successKeys := map[string]string{
		ActionSaveSummary:         "result",
		ActionQuerySummaries:      "summaries",
		ActionDeleteSummary:       "result",
		ActionGetSummaryByVideoID: "summary",
	}

	for _, req := range allActions {
		envelope := rt.Dispatch(context.Background(), req).Envelope()
		if envelope["success"] != true {
			t.Fatalf("%s: envelope = %v", req.Action, envelope)
		}
		want := successKeys[req.Action]
		if _, ok := envelope[want]; !ok {
			t.Errorf("%s: missing %q field in %v", req.Action, want, envelope)
		}
		if len(envelope) != 2 {
			t.Errorf("%s: envelope has extra fields: %v", req.Action, envelope)
		}
	}
}

func TestFailureEnvelope(t *testing.T) {
	storeErr := &instantdb.StoreError{Op: "query", Status: 500, Message: "down"}
	repo := &fakeRepo{upsertErr: storeErr, listErr: storeErr, deleteErr: storeErr, byVideoErr: storeErr}
	rt := NewRouter(repo)

	for _, req := range allActions {
		envelope := rt.Dispatch(context.Background(), req).Envelope()
		if envelope["success"] != false {
			t.Errorf("%s: envelope = %v, want failure", req.Action, envelope)
		}
		msg, ok := envelope["error"].(string)
		if !ok || msg == "" {
			t.Errorf("%s: error is not a plain message string: %v", req.Action, envelope)
		}
	}
}

func TestGetSummaryNotFoundIsNullNotError(t *testing.T) {
	rt := NewRouter(&fakeRepo{byVideoID: nil})

	resp := rt.Dispatch(context.Background(), Request{Action: ActionGetSummaryByVideoID, VideoID: "missing"})
	if !resp.Success {
		t.Fatalf("not-found surfaced as an error: %q", resp.Error)
	}
	envelope := resp.Envelope()
	summary, present := envelope["summary"]
	if !present {
		t.Fatalf("envelope missing summary field: %v", envelope)
	}
	if summary != (*domain.Summary)(nil) {
		t.Errorf("summary = %v, want explicit null", summary)
	}
}

func TestQueryTimeoutSurfacedDistinctly(t *testing.T) {
	rt := NewRouter(&fakeRepo{listErr: instantdb.ErrQueryTimeout})

	resp := rt.Dispatch(context.Background(), Request{Action: ActionQuerySummaries})
	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.Error != instantdb.ErrQueryTimeout.Error() {
		t.Errorf("error = %q, want the timeout message", resp.Error)
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	rt := NewRouter(&fakeRepo{panicOn: ActionSaveSummary})

	resp := rt.Dispatch(context.Background(), Request{Action: ActionSaveSummary, Data: &domain.SummaryFields{VideoID: "v"}})
	if resp.Success {
		t.Fatal("panic escaped as success")
	}
	if resp.Error == "" {
		t.Error("panic produced an empty error message")
	}
}

func TestUnknownActionFails(t *testing.T) {
	rt := NewRouter(&fakeRepo{})

	resp := rt.Dispatch(context.Background(), Request{Action: "openHistory"})
	if resp.Success {
		t.Error("unknown action dispatched successfully")
	}
}

func TestConcurrentDispatchesAreIndependent(t *testing.T) {
	repo := &fakeRepo{list: []domain.Summary{{ID: "a"}}}
	rt := NewRouter(repo)

	done := make(chan Response, 16)
	for i := 0; i < 16; i++ {
		go func() {
			done <- rt.Dispatch(context.Background(), Request{Action: ActionQuerySummaries})
		}()
	}
	deadline := time.After(2 * time.Second)
	for i := 0; i < 16; i++ {
		select {
		case resp := <-done:
			if !resp.Success {
				t.Errorf("concurrent dispatch failed: %q", resp.Error)
			}
		case <-deadline:
			t.Fatal("concurrent dispatches did not all complete")
		}
	}
}

package instantdb

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSubscription feeds queryOnce from a hand-controlled channel and counts
// Unsubscribe calls.
type fakeSubscription struct {
	ch           chan QueryResult
	unsubscribes int32
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{ch: make(chan QueryResult, 4)}
}

func (f *fakeSubscription) Updates() <-chan QueryResult { return f.ch }

func (f *fakeSubscription) Unsubscribe() { atomic.AddInt32(&f.unsubscribes, 1) }

func TestQueryOnceResolvesWithFirstDelivery(t *testing.T) {
	sub := newFakeSubscription()
	sub.ch <- QueryResult{Records: []Record{{"id": "a"}}}
	// A late duplicate must be discarded, not delivered to the caller.
	sub.ch <- QueryResult{Records: []Record{{"id": "stale"}}}

	records, err := queryOnce(context.Background(), sub, time.Second)
	if err != nil {
		t.Fatalf("queryOnce: %v", err)
	}
	if len(records) != 1 || records[0]["id"] != "a" {
		t.Errorf("records = %v, want first delivery", records)
	}
	if n := atomic.LoadInt32(&sub.unsubscribes); n != 1 {
		t.Errorf("Unsubscribe called %d times, want exactly 1", n)
	}
}

func TestQueryOnceRejectsWithErrorDelivery(t *testing.T) {
	sub := newFakeSubscription()
	storeErr := &StoreError{Op: "query", Status: 500, Message: "boom"}
	sub.ch <- QueryResult{Err: storeErr}

	_, err := queryOnce(context.Background(), sub, time.Second)
	var got *StoreError
	if !errors.As(err, &got) || got.Status != 500 {
		t.Errorf("err = %v, want the delivered store error", err)
	}
	if n := atomic.LoadInt32(&sub.unsubscribes); n != 1 {
		t.Errorf("Unsubscribe called %d times, want exactly 1", n)
	}
}

func TestQueryOnceTimesOut(t *testing.T) {
	sub := newFakeSubscription() // never responds

	start := time.Now()
	_, err := queryOnce(context.Background(), sub, 50*time.Millisecond)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrQueryTimeout) {
		t.Fatalf("err = %v, want ErrQueryTimeout", err)
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("timed out after %v, before the deadline", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("timed out after %v, long past the deadline", elapsed)
	}
	if n := atomic.LoadInt32(&sub.unsubscribes); n != 1 {
		t.Errorf("Unsubscribe called %d times, want exactly 1", n)
	}
}

func TestQueryOnceHonorsContextCancellation(t *testing.T) {
	sub := newFakeSubscription()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := queryOnce(ctx, sub, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSubscribeDeliversAndStops(t *testing.T) {
	hits := int32(0)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"summaries": [{"id": "a"}]}`))
	})
	c.pollInterval = 10 * time.Millisecond

	sub := c.Subscribe(context.Background(), "summaries")

	res := <-sub.Updates()
	if res.Err != nil || len(res.Records) != 1 {
		t.Fatalf("first delivery = %+v", res)
	}
	res = <-sub.Updates()
	if res.Err != nil {
		t.Fatalf("second delivery = %+v", res)
	}

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	seen := atomic.LoadInt32(&hits)
	time.Sleep(50 * time.Millisecond)
	// Allow one query that was already in flight when we unsubscribed.
	if after := atomic.LoadInt32(&hits); after > seen+1 {
		t.Errorf("poll goroutine kept querying after Unsubscribe: %d -> %d", seen, after)
	}
}

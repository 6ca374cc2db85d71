package instantdb

import (
	"context"
	"sync"
	"time"
)

// DefaultQueryTimeout bounds one-shot reads when the caller has no opinion.
const DefaultQueryTimeout = 10 * time.Second

// QueryResult is one delivery from a subscription: either a snapshot of the
// namespace or an error. Never both.
type QueryResult struct {
	Records []Record
	Err     error
}

// Subscription is a continuous read of a namespace. It delivers an initial
// snapshot immediately and then re-delivers on every poll interval until
// Unsubscribe is called.
type Subscription struct {
	updates chan QueryResult
	stop    chan struct{}
	once    sync.Once
}

// Updates returns the delivery channel.
func (s *Subscription) Updates() <-chan QueryResult {
	return s.updates
}

// Unsubscribe tears the subscription down. Safe to call more than once;
// pending deliveries are dropped rather than blocking the poll goroutine.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { close(s.stop) })
}

func (s *Subscription) deliver(res QueryResult) {
	select {
	case s.updates <- res:
	case <-s.stop:
	}
}

// Subscribe starts a subscription-style read of the namespace.
func (c *Client) Subscribe(ctx context.Context, namespace string) *Subscription {
	sub := &Subscription{
		updates: make(chan QueryResult),
		stop:    make(chan struct{}),
	}

	go func() {
		records, err := c.Query(ctx, namespace)
		sub.deliver(QueryResult{Records: records, Err: err})

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sub.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				records, err := c.Query(ctx, namespace)
				sub.deliver(QueryResult{Records: records, Err: err})
			}
		}
	}()

	return sub
}

// subscription is the surface queryOnce needs; *Subscription satisfies it.
type subscription interface {
	Updates() <-chan QueryResult
	Unsubscribe()
}

// QueryOnce wraps a subscription in a one-shot, timeout-bounded read. The
// first delivery wins: data resolves with the record set, an error delivery
// fails with that error, and silence past the timeout fails with
// ErrQueryTimeout. The subscription is torn down on every exit path.
func (c *Client) QueryOnce(ctx context.Context, namespace string, timeout time.Duration) ([]Record, error) {
	return queryOnce(ctx, c.Subscribe(ctx, namespace), timeout)
}

func queryOnce(ctx context.Context, sub subscription, timeout time.Duration) ([]Record, error) {
	defer sub.Unsubscribe()

	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-sub.Updates():
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Records, nil
	case <-timer.C:
		return nil, ErrQueryTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"makesense-backend/internal/summary/domain"
	"makesense-backend/pkg/instantdb"

	"golang.org/x/sync/singleflight"
)

// Store is the slice of the InstantDB client the repository needs.
// *instantdb.Client satisfies it.
type Store interface {
	Transact(ctx context.Context, ops []instantdb.Op) (instantdb.Ack, error)
	QueryOnce(ctx context.Context, namespace string, timeout time.Duration) ([]instantdb.Record, error)
}

// SummaryRepository defines the persistence operations for summary records.
type SummaryRepository interface {
	// Upsert creates a record for fields.VideoID, or updates the existing one.
	Upsert(ctx context.Context, fields domain.SummaryFields) (instantdb.Ack, error)
	// List returns the full current set of summaries.
	List(ctx context.Context) ([]domain.Summary, error)
	// GetByVideoID returns the summary for a video, or (nil, nil) when absent.
	GetByVideoID(ctx context.Context, videoID string) (*domain.Summary, error)
	// Delete removes a record by its store-assigned id.
	Delete(ctx context.Context, id string) (instantdb.Ack, error)
}

// summaryRepository implements SummaryRepository over the InstantDB client.
type summaryRepository struct {
	store   Store
	timeout time.Duration
	group   singleflight.Group
	now     func() int64
}

// NewSummaryRepository creates a new instance of summaryRepository.
func NewSummaryRepository(store Store) SummaryRepository {
	return &summaryRepository{
		store:   store,
		timeout: instantdb.DefaultQueryTimeout,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// Upsert approximates natural-key uniqueness with a read-before-write check:
// the store has no upsert-by-secondary-key primitive. Concurrent calls for
// the same videoId are collapsed through a single-flight gate so they cannot
// both observe "not found"; saves racing from another process can still
// produce duplicates.
func (r *summaryRepository) Upsert(ctx context.Context, fields domain.SummaryFields) (instantdb.Ack, error) {
	ack, err, _ := r.group.Do(fields.VideoID, func() (interface{}, error) {
		return r.upsert(ctx, fields)
	})
	if err != nil {
		return nil, err
	}
	return ack.(instantdb.Ack), nil
}

func (r *summaryRepository) upsert(ctx context.Context, fields domain.SummaryFields) (instantdb.Ack, error) {
	existing, err := r.GetByVideoID(ctx, fields.VideoID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// The wire write is create-or-replace, so merge the new fields over
		// the prior record here and stamp updatedAt. createdAt is preserved.
		merged := *existing
		applyFields(&merged, fields)
		merged.UpdatedAt = r.now()
		return r.store.Transact(ctx, []instantdb.Op{
			instantdb.UpdateOp(domain.Collection, existing.ID, recordValue(merged)),
		})
	}

	record := domain.Summary{CreatedAt: r.now()}
	applyFields(&record, fields)
	return r.store.Transact(ctx, []instantdb.Op{
		instantdb.UpdateOp(domain.Collection, instantdb.NewID(), recordValue(record)),
	})
}

func (r *summaryRepository) List(ctx context.Context) ([]domain.Summary, error) {
	records, err := r.store.QueryOnce(ctx, domain.Collection, r.timeout)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.Summary, 0, len(records))
	for _, record := range records {
		summary, err := decodeRecord(record)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *summaryRepository) GetByVideoID(ctx context.Context, videoID string) (*domain.Summary, error) {
	summaries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].VideoID == videoID {
			return &summaries[i], nil
		}
	}
	return nil, nil
}

func (r *summaryRepository) Delete(ctx context.Context, id string) (instantdb.Ack, error) {
	return r.store.Transact(ctx, []instantdb.Op{
		instantdb.DeleteOp(domain.Collection, id),
	})
}

func applyFields(s *domain.Summary, fields domain.SummaryFields) {
	s.VideoID = fields.VideoID
	s.VideoTitle = fields.VideoTitle
	s.VideoURL = fields.VideoURL
	s.ThumbnailURL = fields.ThumbnailURL
	s.Summary = fields.Summary
	s.Model = fields.Model
}

// recordValue is the field mapping written to the store. The id lives in the
// operation, not the value.
func recordValue(s domain.Summary) map[string]interface{} {
	value := map[string]interface{}{
		"videoId":      s.VideoID,
		"videoTitle":   s.VideoTitle,
		"videoUrl":     s.VideoURL,
		"thumbnailUrl": s.ThumbnailURL,
		"summary":      s.Summary,
		"model":        s.Model,
		"createdAt":    s.CreatedAt,
	}
	if s.UpdatedAt != 0 {
		value["updatedAt"] = s.UpdatedAt
	}
	return value
}

func decodeRecord(record instantdb.Record) (domain.Summary, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("encoding summary record: %w", err)
	}
	var summary domain.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return domain.Summary{}, fmt.Errorf("decoding summary record: %w", err)
	}
	return summary, nil
}

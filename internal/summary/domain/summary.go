package domain

// Collection is the InstantDB namespace that holds summary records.
const Collection = "summaries"

// Summary is a persisted AI-generated video summary. The remote store is the
// source of truth; any local list is a disposable cache.
type Summary struct {
	ID           string `json:"id"`
	VideoID      string `json:"videoId"`
	VideoTitle   string `json:"videoTitle"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Summary      string `json:"summary"`
	Model        string `json:"model"`
	CreatedAt    int64  `json:"createdAt"`           // epoch millis, set once at creation
	UpdatedAt    int64  `json:"updatedAt,omitempty"` // epoch millis, set on the update path only
}

// SummaryFields is the caller-supplied portion of a summary record. The
// repository owns id and timestamp assignment.
type SummaryFields struct {
	VideoID      string `json:"videoId" binding:"required"`
	VideoTitle   string `json:"videoTitle"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Summary      string `json:"summary"`
	Model        string `json:"model"`
}

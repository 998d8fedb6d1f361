package types

import "github.com/google/uuid"

// BatchItemStatus tags the outcome of one item of a batch write.
type BatchItemStatus string

const (
	BatchItemCreated BatchItemStatus = "created"
	BatchItemFailed  BatchItemStatus = "failed"
)

// BatchItemResult reports what happened to the item at Index.
type BatchItemResult struct {
	Index  int             `json:"index"`
	Status BatchItemStatus `json:"status"`
	ID     *uuid.UUID      `json:"id,omitempty"`
	Label  string          `json:"label,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Errors []string        `json:"errors,omitempty"`
}

// BatchResult aggregates per-item outcomes so callers can tell
// "3 of 5 created" from "5 of 5 created".
type BatchResult struct {
	Items        []BatchItemResult `json:"items"`
	CreatedCount int               `json:"created_count"`
	FailedCount  int               `json:"failed_count"`
	IDs          []uuid.UUID       `json:"ids"`
}

func NewBatchResult(capacity int) *BatchResult {
	return &BatchResult{
		Items: make([]BatchItemResult, 0, capacity),
		IDs:   make([]uuid.UUID, 0, capacity),
	}
}

func (b *BatchResult) AddCreated(index int, id uuid.UUID, label string) {
	idCopy := id
	b.Items = append(b.Items, BatchItemResult{Index: index, Status: BatchItemCreated, ID: &idCopy, Label: label})
	b.IDs = append(b.IDs, id)
	b.CreatedCount++
}

func (b *BatchResult) AddFailed(index int, label, reason string, errs ...string) {
	b.Items = append(b.Items, BatchItemResult{Index: index, Status: BatchItemFailed, Label: label, Reason: reason, Errors: errs})
	b.FailedCount++
}

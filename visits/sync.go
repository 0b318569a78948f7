package visits

import (
	"context"
	"errors"
	"fmt"

	"github.com/healthhive/registry/access"
)

// BulkSync reconciles a batch of field-collected visits. Items are
// processed sequentially and independently; every item lands in exactly
// one of the success, errors or conflicts lists.
func (s *service) BulkSync(ctx context.Context, caller access.Caller, batch []*Visit) (*BulkSyncResult, error) {
	result := &BulkSyncResult{
		Success:   []*Visit{},
		Errors:    []BulkSyncError{},
		Conflicts: []BulkSyncConflict{},
	}

	for i, visit := range batch {
		s.syncOne(ctx, caller, i, visit, result)
	}

	s.logger.Infow("bulk sync completed",
		"total", len(batch),
		"success", len(result.Success),
		"errors", len(result.Errors),
		"conflicts", len(result.Conflicts),
	)
	return result, nil
}

func (s *service) syncOne(ctx context.Context, caller access.Caller, index int, visit *Visit, result *BulkSyncResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("panic while syncing visit",
				"index", index,
				"visitId", visit.VisitId,
				"panic", r,
			)
			result.Errors = append(result.Errors, BulkSyncError{
				Index:   index,
				VisitId: visit.VisitId,
				Message: fmt.Sprintf("internal error: %v", r),
			})
		}
	}()

	// A device resubmitting an already-synced visit is a conflict, not
	// an error; the existing record is returned for reconciliation.
	if visit.VisitId != "" {
		existing, err := s.repo.Get(ctx, visit.VisitId)
		switch {
		case err == nil:
			result.Conflicts = append(result.Conflicts, BulkSyncConflict{
				Index:    index,
				VisitId:  visit.VisitId,
				Existing: existing,
			})
			return
		case !errors.Is(err, ErrNotFound):
			// A read failure leaves the item unresolved; recording it
			// anyway could duplicate an existing visit.
			result.Errors = append(result.Errors, BulkSyncError{
				Index:   index,
				VisitId: visit.VisitId,
				Message: err.Error(),
			})
			return
		}
	}

	recorded, err := s.record(ctx, caller, visit)
	if err != nil {
		result.Errors = append(result.Errors, BulkSyncError{
			Index:   index,
			VisitId: visit.VisitId,
			Message: err.Error(),
		})
		return
	}

	result.Success = append(result.Success, recorded.Visit)
}

package analytics

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/healthhive/registry/store"
	"github.com/healthhive/registry/visits"
)

// VisitAggregator answers the group-by style questions analytics asks
// of the visit collection. Two backends exist: a native aggregation
// pipeline and an in-memory fallback over plain finds for stores
// without pipeline support. Their results must be identical.
type VisitAggregator interface {
	LatestPerPatient(ctx context.Context, patientIds []string) (map[string]*visits.Visit, error)
	TrendBuckets(ctx context.Context, patientIds []string, diagnoses mapset.Set[string], since time.Time) ([]TrendBucket, error)
	DistinctPatientsWithVisitSince(ctx context.Context, patientIds []string, since time.Time) (int, error)
}

// NewVisitAggregator selects the backend from configuration.
func NewVisitAggregator(repo Repository, cfg *store.Config) (VisitAggregator, error) {
	if cfg.AggregationMode == store.AggregationModeMemory {
		return &memoryAggregator{repo: repo}, nil
	}
	return &pipelineAggregator{repo: repo}, nil
}

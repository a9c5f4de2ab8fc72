package app

import (
	"context"

	"claimsight/domain/anomaly"
	"claimsight/ports"
)

// AnomalyService derives the fixed anomaly panels from store aggregates.
type AnomalyService struct {
	store ports.ClaimStore
}

// NewAnomalyService creates an anomaly service.
func NewAnomalyService(store ports.ClaimStore) *AnomalyService {
	return &AnomalyService{store: store}
}

// Report gathers the anomaly input series for one entity and assembles the
// six panels. The panels always contrast with/without the flagged drug, so
// only the entity matters here, not the rest of the filter set.
func (s *AnomalyService) Report(ctx context.Context, entityID int) (anomaly.Report, error) {
	in, err := s.store.AnomalyInputs(ctx, entityID)
	if err != nil {
		return anomaly.Report{}, err
	}
	return anomaly.BuildReport(in), nil
}

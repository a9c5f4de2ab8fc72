package app

import (
	"context"
	"fmt"

	"claimsight/domain/claims"
	"claimsight/domain/insight"
)

// InsightService runs the insight rule engine over fresh dashboard data.
type InsightService struct {
	dashboards *DashboardService
}

// NewInsightService creates an insight service.
func NewInsightService(dashboards *DashboardService) *InsightService {
	return &InsightService{dashboards: dashboards}
}

// Cards evaluates the templates for the given view against live data and
// returns up to max matching cards in priority order.
func (s *InsightService) Cards(ctx context.Context, f claims.FilterParams, view string, max int) ([]insight.Card, error) {
	ictx := insight.Context{Filters: f, View: view}

	switch view {
	case insight.ViewOverview:
		data, err := s.dashboards.Overview(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to load overview data: %w", err)
		}
		ictx.Overview = data
	case insight.ViewExplorer:
		data, err := s.dashboards.Explorer(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to load explorer data: %w", err)
		}
		ictx.Explorer = data
	default:
		return nil, fmt.Errorf("unknown insight view %q", view)
	}

	return insight.Generate(ictx, max), nil
}

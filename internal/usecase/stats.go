package usecase

import (
	"context"
	"fmt"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

const topReporterLimit = 3

var urgencyChart = []struct {
	priority domain.Priority
	name     string
	color    string
}{
	{domain.PriorityLow, "Low", "#4ade80"},
	{domain.PriorityMedium, "Medium", "#fbbf24"},
	{domain.PriorityHigh, "High", "#f87171"},
	{domain.PriorityCritical, "Critical", "#ef4444"},
}

// StatsService aggregates the admin dashboard.
type StatsService struct {
	stats ports.StatsRepository
}

// NewStatsService constructs the service.
func NewStatsService(stats ports.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

// Dashboard returns ticket counters, the top reporters and the urgency breakdown.
func (s *StatsService) Dashboard(ctx context.Context) (domain.AdminStats, error) {
	kpi, err := s.stats.TicketKPI(ctx)
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("ticket kpi: %w", err)
	}

	reporters, err := s.stats.TopReporters(ctx, topReporterLimit)
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("top reporters: %w", err)
	}
	if reporters == nil {
		reporters = []domain.ReporterCount{}
	}
	for i := range reporters {
		if reporters[i].Name == "" {
			reporters[i].Name = "Unknown"
		}
		reporters[i].Avatar = AvatarURL(reporters[i].Name)
	}

	counts, err := s.stats.PriorityCounts(ctx)
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("priority counts: %w", err)
	}
	urgency := make([]domain.UrgencySlice, 0, len(urgencyChart))
	for _, bar := range urgencyChart {
		urgency = append(urgency, domain.UrgencySlice{Name: bar.name, Value: counts[bar.priority], Color: bar.color})
	}

	return domain.AdminStats{KPI: kpi, TopReporters: reporters, UrgencyData: urgency}, nil
}

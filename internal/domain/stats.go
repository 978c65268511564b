package domain

// TicketKPI aggregates ticket counters for the admin dashboard.
type TicketKPI struct {
	TotalTickets    int `json:"totalTickets"`
	ActiveTickets   int `json:"activeTickets"`
	ResolvedTickets int `json:"resolvedTickets"`
	CriticalTickets int `json:"criticalTickets"`
}

// ReporterCount is the number of tickets filed by one user.
type ReporterCount struct {
	UserID int64  `json:"-"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Count  int    `json:"count"`
	Avatar string `json:"avatar,omitempty"`
}

// UrgencySlice is one bar of the urgency breakdown chart.
type UrgencySlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// AdminStats is the dashboard payload.
type AdminStats struct {
	KPI          TicketKPI       `json:"kpi"`
	TopReporters []ReporterCount `json:"topReporters"`
	UrgencyData  []UrgencySlice  `json:"urgencyData"`
}

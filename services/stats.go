package services

import (
	"context"
	"time"

	"rhombick-backend/repositories"
)

const statsMonths = 6

type Stats struct {
	TotalCustomers int64                         `json:"totalCustomers"`
	TotalInvoices  int64                         `json:"totalInvoices"`
	TotalRevenue   float64                       `json:"totalRevenue"`
	Monthly        []repositories.MonthlyRevenue `json:"monthly"`
}

type StatsService struct {
	customers repositories.CustomerRepository
	invoices  repositories.InvoiceRepository
	now       func() time.Time
}

func NewStatsService(customers repositories.CustomerRepository, invoices repositories.InvoiceRepository) *StatsService {
	return &StatsService{customers: customers, invoices: invoices, now: time.Now}
}

// Get returns dashboard totals and revenue for the current and previous five months.
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	customers, err := s.customers.Count(ctx, repositories.ListQuery{})
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1-statsMonths, 0)
	inv, err := s.invoices.Stats(ctx, since)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalCustomers: customers,
		TotalInvoices:  inv.TotalInvoices,
		TotalRevenue:   inv.TotalRevenue,
		Monthly:        inv.Monthly,
	}, nil
}

package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rhombick-backend/billing"
	"rhombick-backend/config"
	"rhombick-backend/database"
	"rhombick-backend/metrics"
	"rhombick-backend/models"
	"rhombick-backend/repositories"
	"rhombick-backend/services"
	"rhombick-backend/utils"
)

type fixture struct {
	customers *services.CustomerService
	invoices  *services.InvoiceService
	stats     *services.StatsService
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	customerRepo := repositories.NewCustomerRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	m := metrics.New()
	return &fixture{
		customers: services.NewCustomerService(customerRepo, zap.NewNop()),
		invoices:  services.NewInvoiceService(invoiceRepo, customerRepo, billing.DefaultTaxPolicy(), m, zap.NewNop()),
		stats:     services.NewStatsService(customerRepo, invoiceRepo),
		metrics:   m,
	}
}

func (f *fixture) customer(t *testing.T, code, state string) *models.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), &models.Customer{
		CustomerCode: code,
		CustomerName: "Acme " + code,
		Email:        code + "@acme.com",
		PhoneNumber:  "9876543210",
		Address:      models.Address{State: state},
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) invoice(t *testing.T, no string, customer *models.Customer, items ...models.LineItem) *models.Invoice {
	t.Helper()
	inv, err := f.invoices.Create(context.Background(), &models.Invoice{
		InvoiceNo:  no,
		CustomerID: customer.ID,
		Items:      items,
	})
	require.NoError(t, err)
	return inv
}

func widget(qty, rate float64) models.LineItem {
	return models.LineItem{Description: "Widget", Quantity: qty, Rate: rate}
}

func requireInvariants(t *testing.T, inv *models.Invoice) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range inv.Items {
		sum = sum.Add(utils.Dec(it.Quantity).Mul(utils.Dec(it.Rate)))
	}
	subtotal := utils.Dec(inv.Subtotal)
	tax := utils.Dec(inv.TaxAmount)
	rates := utils.Dec(inv.CGSTRate).Add(utils.Dec(inv.SGSTRate)).Add(utils.Dec(inv.IGSTRate))
	require.True(t, sum.Equal(subtotal), "subtotal %s, lines sum to %s", subtotal, sum)
	require.True(t, utils.Percent(subtotal, rates).Equal(tax), "tax %s on subtotal %s at %s%%", tax, subtotal, rates)
	require.True(t, subtotal.Add(tax).Equal(utils.Dec(inv.TotalAmount)), "total %v", inv.TotalAmount)
	require.True(t, (inv.IGSTRate == 0) != (inv.CGSTRate == 0 && inv.SGSTRate == 0),
		"exactly one tax branch is non-zero")
}

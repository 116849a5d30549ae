package repositories_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rhombick-backend/config"
	"rhombick-backend/database"
	"rhombick-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: "sqlite", Path: ":memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func sampleCustomer(code, name, state string) *models.Customer {
	return &models.Customer{
		CustomerCode: code,
		CustomerName: name,
		Email:        code + "@example.com",
		PhoneNumber:  "9876543210",
		Address:      models.Address{City: "Bengaluru", State: state},
	}
}

func sampleInvoice(no, customerID string, items ...models.LineItem) *models.Invoice {
	return &models.Invoice{
		InvoiceNo:  no,
		CustomerID: customerID,
		Items:      items,
	}
}

package database

import (
	"fmt"

	"gorm.io/gorm"

	"rhombick-backend/models"
)

// AutoMigrate creates or updates every table. It is idempotent. On postgres it also adds
// CHECK constraints that GORM tags cannot express.
func AutoMigrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Customer{},
			&models.Invoice{},
			&models.LineItem{},
			&models.InvoiceVersion{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		checks := []struct{ table, name, expr string }{
			{"invoice_items", "chk_invoice_items_quantity_min", "quantity >= 1"},
			{"invoice_items", "chk_invoice_items_rate_nonneg", "rate >= 0"},
			{"invoice_items", "chk_invoice_items_amount_nonneg", "amount >= 0"},
			{"invoices", "chk_invoices_total_nonneg", "total_amount >= 0"},
			{"invoices", "chk_invoices_status", "status IN ('draft','issued','paid','cancelled')"},
		}
		for _, c := range checks {
			stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%s'::regclass
		  AND conname  = '%s'
	) THEN
		ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
	END IF;
END $$;`, c.table, c.name, c.table, c.name, c.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint %s failed: %w", c.name, err)
			}
		}
		return nil
	})
}

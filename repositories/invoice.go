package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rhombick-backend/models"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// InvoiceRepository is the storage contract for invoice aggregates. Every write stores the
// invoice row, its items and a version snapshot in one transaction.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	Find(ctx context.Context, q ListQuery) ([]models.Invoice, error)
	Count(ctx context.Context, q ListQuery) (int64, error)
	Insert(ctx context.Context, invoice *models.Invoice) error
	Replace(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, id string) (bool, error)
	Versions(ctx context.Context, id string) ([]models.InvoiceVersion, error)
	Stats(ctx context.Context, since time.Time) (*InvoiceStats, error)
	ExistsByNumber(ctx context.Context, invoiceNo, excludeID string) (bool, error)
}

// InvoiceStats aggregates invoice totals for the dashboard.
type InvoiceStats struct {
	TotalInvoices int64
	TotalRevenue  float64
	Monthly       []MonthlyRevenue
}

// MonthlyRevenue is one calendar month bucket, keyed "2006-01".
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Count   int64   `json:"count"`
}

var invoiceSortColumns = map[string]string{
	"invoiceNo":   "invoice_no",
	"invoiceDate": "invoice_date",
	"poNo":        "po_no",
	"dcNo":        "dc_no",
	"status":      "status",
	"subtotal":    "subtotal",
	"taxAmount":   "tax_amount",
	"totalAmount": "total_amount",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func withAggregate(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *invoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).Scopes(withAggregate).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "invoice "+id)
	}
	return &invoice, nil
}

func (r *invoiceRepository) Find(ctx context.Context, q ListQuery) ([]models.Invoice, error) {
	q = q.Normalize()
	order, err := orderClause(q.Sort, invoiceSortColumns)
	if err != nil {
		return nil, err
	}
	invoices := []models.Invoice{}
	err = r.db.WithContext(ctx).
		Scopes(withAggregate, invoiceSearch(q.Search)).
		Order(order).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&invoices).Error
	if err != nil {
		return nil, translateError(err, "list invoices")
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, q ListQuery) (int64, error) {
	q = q.Normalize()
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).Scopes(invoiceSearch(q.Search)).Count(&total).Error
	return total, translateError(err, "count invoices")
}

func (r *invoiceRepository) Insert(ctx context.Context, invoice *models.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return err
		}
		if err := insertItems(tx, invoice); err != nil {
			return err
		}
		return appendVersion(tx, invoice, OperationCreate)
	})
	return translateError(err, "invoice "+invoice.InvoiceNo)
}

func (r *invoiceRepository) Replace(ctx context.Context, invoice *models.Invoice) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Invoice{ID: invoice.ID}).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(invoice)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		if err := insertItems(tx, invoice); err != nil {
			return err
		}
		return appendVersion(tx, invoice, OperationUpdate)
	})
	return translateError(err, "invoice "+invoice.ID)
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceVersion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Invoice{}, "id = ?", id)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, translateError(err, "invoice "+id)
	}
	return deleted > 0, nil
}

func (r *invoiceRepository) Versions(ctx context.Context, id string) ([]models.InvoiceVersion, error) {
	versions := []models.InvoiceVersion{}
	err := r.db.WithContext(ctx).Where("invoice_id = ?", id).Order("version_no ASC").Find(&versions).Error
	return versions, translateError(err, "versions of invoice "+id)
}

func (r *invoiceRepository) ExistsByNumber(ctx context.Context, invoiceNo, excludeID string) (bool, error) {
	var n int64
	tx := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("invoice_no = ?", invoiceNo)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&n).Error; err != nil {
		return false, translateError(err, "invoice lookup")
	}
	return n > 0, nil
}

// Stats returns totals over all invoices and per-month figures for invoices dated on or after since.
func (r *invoiceRepository) Stats(ctx context.Context, since time.Time) (*InvoiceStats, error) {
	db := r.db.WithContext(ctx)
	stats := &InvoiceStats{}

	var totals struct {
		Count   int64
		Revenue float64
	}
	err := db.Model(&models.Invoice{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Scan(&totals).Error
	if err != nil {
		return nil, translateError(err, "invoice stats")
	}
	stats.TotalInvoices = totals.Count
	stats.TotalRevenue = totals.Revenue

	// Bucketed in Go so the query stays portable across drivers.
	var rows []struct {
		InvoiceDate time.Time
		TotalAmount float64
	}
	err = db.Model(&models.Invoice{}).
		Select("invoice_date, total_amount").
		Where("invoice_date >= ?", since).
		Scan(&rows).Error
	if err != nil {
		return nil, translateError(err, "invoice stats")
	}

	buckets := map[string]*MonthlyRevenue{}
	start := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := start; !m.After(time.Now().UTC()); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		stats.Monthly = append(stats.Monthly, MonthlyRevenue{Month: key})
		buckets[key] = &stats.Monthly[len(stats.Monthly)-1]
	}
	for _, row := range rows {
		if b, ok := buckets[row.InvoiceDate.UTC().Format("2006-01")]; ok {
			b.Revenue += row.TotalAmount
			b.Count++
		}
	}
	return stats, nil
}

func insertItems(tx *gorm.DB, invoice *models.Invoice) error {
	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		invoice.Items[i].Position = i
	}
	if len(invoice.Items) == 0 {
		return nil
	}
	return tx.Create(&invoice.Items).Error
}

func appendVersion(tx *gorm.DB, invoice *models.Invoice, operation string) error {
	var last int
	err := tx.Model(&models.InvoiceVersion{}).
		Where("invoice_id = ?", invoice.ID).
		Select("COALESCE(MAX(version_no), 0)").
		Scan(&last).Error
	if err != nil {
		return err
	}
	snapshot, err := json.Marshal(invoice)
	if err != nil {
		return fmt.Errorf("marshal invoice snapshot: %w", err)
	}
	return tx.Create(&models.InvoiceVersion{
		InvoiceID: invoice.ID,
		VersionNo: last + 1,
		Operation: operation,
		Snapshot:  datatypes.JSON(snapshot),
	}).Error
}

func invoiceSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		return db.Where(`LOWER(invoices.invoice_no) LIKE @q ESCAPE '!' OR LOWER(invoices.po_no) LIKE @q ESCAPE '!'
			OR LOWER(invoices.dc_no) LIKE @q ESCAPE '!' OR LOWER(invoices.status) LIKE @q ESCAPE '!'
			OR EXISTS (SELECT 1 FROM invoice_items ii WHERE ii.invoice_id = invoices.id
				AND (LOWER(ii.description) LIKE @q ESCAPE '!' OR LOWER(ii.hsn_sac) LIKE @q ESCAPE '!'))
			OR EXISTS (SELECT 1 FROM customers c WHERE c.id = invoices.customer_id
				AND LOWER(c.customer_name) LIKE @q ESCAPE '!')`,
			sql.Named("q", likePattern(search)))
	}
}

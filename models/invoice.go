package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusIssued    = "issued"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// Invoice is the aggregate root: header fields, its owned items and the derived money fields.
type Invoice struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	InvoiceNo   string     `json:"invoiceNo" gorm:"size:64;not null;uniqueIndex" validate:"required,max=64"`
	InvoiceDate time.Time  `json:"invoiceDate"`
	PONo        string     `json:"poNo" gorm:"column:po_no;size:64"`
	PODate      *time.Time `json:"poDate" gorm:"column:po_date"`
	DCNo        string     `json:"dcNo" gorm:"column:dc_no;size:64"`
	DCDate      *time.Time `json:"dcDate" gorm:"column:dc_date"`
	Status      string     `json:"status" gorm:"size:20;not null" validate:"oneof=draft issued paid cancelled"`

	CustomerID string    `json:"customerRef" gorm:"size:36;not null;index" validate:"required,uuid"`
	Customer   *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`

	Items []LineItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" validate:"min=1,dive"`

	// Derived; always overwritten by billing.Recompute.
	CGSTRate    float64 `json:"cgstRate" gorm:"column:cgst_rate"`
	SGSTRate    float64 `json:"sgstRate" gorm:"column:sgst_rate"`
	IGSTRate    float64 `json:"igstRate" gorm:"column:igst_rate"`
	Subtotal    float64 `json:"subtotal"`
	TaxAmount   float64 `json:"taxAmount"`
	TotalAmount float64 `json:"totalAmount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	if invoice.InvoiceDate.IsZero() {
		invoice.InvoiceDate = time.Now().UTC()
	}
	if invoice.Status == "" {
		invoice.Status = StatusDraft
	}
	return
}

// LineItem is one billable row. Its id, not its position, identifies it.
type LineItem struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	InvoiceID   string  `json:"-" gorm:"size:36;not null;index"`
	Position    int     `json:"-" gorm:"not null"`
	Description string  `json:"description" gorm:"not null" validate:"required"`
	HSNSAC      string  `json:"hsnSac" gorm:"column:hsn_sac;size:16" validate:"omitempty,hsnsac"`
	Quantity    float64 `json:"quantity" validate:"gte=1"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	Amount      float64 `json:"amount"`
}

func (LineItem) TableName() string { return "invoice_items" }

func (item *LineItem) BeforeCreate(tx *gorm.DB) (err error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return
}

// InvoiceVersion is an immutable snapshot of an invoice taken after each write.
type InvoiceVersion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	InvoiceID string         `json:"invoiceId" gorm:"size:36;not null;index:idx_invoice_versions_invoice_id_version_no,unique,priority:1"`
	VersionNo int            `json:"versionNo" gorm:"not null;index:idx_invoice_versions_invoice_id_version_no,unique,priority:2"`
	Operation string         `json:"operation" gorm:"size:20"`
	Snapshot  datatypes.JSON `json:"snapshot"`
	CreatedAt time.Time      `json:"createdAt"`
}

package documents

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"rhombick-backend/billing"
	"rhombick-backend/models"
)

const invoiceSheet = "Invoices"

var exportHeader = []any{
	"Invoice No", "Invoice Date", "Customer", "Customer GSTIN", "Place of Supply", "Status",
	"PO No", "DC No", "Items", "Subtotal", "CGST", "SGST", "IGST", "Tax", "Total",
}

// InvoicesXLSX writes one row per invoice with its tax breakdown.
func InvoicesXLSX(invoices []models.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), invoiceSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(invoiceSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(invoiceSheet, 1, 1, bold); err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	for i, inv := range invoices {
		var name, gstin, place string
		if inv.Customer != nil {
			name = inv.Customer.CustomerName
			gstin = inv.Customer.GSTNumber
			place = billing.Jurisdiction(inv.Customer)
		}
		cgst, sgst, igst := billing.Breakdown(inv)
		row := []any{
			inv.InvoiceNo, inv.InvoiceDate.Format("2006-01-02"), name, gstin, place, inv.Status,
			inv.PONo, inv.DCNo, len(inv.Items), inv.Subtotal, cgst, sgst, igst, inv.TaxAmount, inv.TotalAmount,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(invoiceSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row for %s: %w", inv.InvoiceNo, err)
		}
	}
	if len(invoices) > 0 {
		last, _ := excelize.CoordinatesToCellName(15, len(invoices)+1)
		if err := f.SetCellStyle(invoiceSheet, "J2", last, money); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(invoiceSheet, "A", "C", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

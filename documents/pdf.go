package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"rhombick-backend/billing"
	"rhombick-backend/models"
	"rhombick-backend/utils"
)

// Seller is the issuing business printed in the invoice header.
type Seller struct {
	Name    string
	Address string
	GSTIN   string
	Email   string
	Phone   string
}

const dateLayout = "02 Jan 2006"

// InvoicePDF renders a tax invoice. The invoice must have its customer loaded.
func InvoicePDF(seller Seller, invoice *models.Invoice) ([]byte, error) {
	if invoice.Customer == nil {
		return nil, fmt.Errorf("invoice %s has no customer loaded: %w", invoice.ID, models.ErrPreconditionFailed)
	}
	customer := invoice.Customer

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, seller.Name, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, "TAX INVOICE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(18,
		col.New(8).Add(
			text.New(seller.Address, props.Text{Size: 9}),
			text.New(joinNonEmpty(" | ", prefixed("GSTIN: ", seller.GSTIN), seller.Email, seller.Phone), props.Text{Size: 9, Top: 5}),
		),
		col.New(4).Add(
			text.New("Invoice No: "+invoice.InvoiceNo, props.Text{Size: 9, Align: align.Right}),
			text.New("Date: "+invoice.InvoiceDate.Format(dateLayout), props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New("Status: "+strings.ToUpper(invoice.Status), props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)
	m.AddRow(2, line.NewCol(12))

	m.AddRow(30,
		col.New(6).Add(
			text.New("Bill to", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.New(customer.CustomerName, props.Text{Size: 9, Top: 5}),
			text.New(formatAddress(customer.Address), props.Text{Size: 9, Top: 10}),
			text.New(prefixed("GSTIN: ", customer.GSTNumber), props.Text{Size: 9, Top: 20}),
		),
		col.New(6).Add(
			text.New(prefixed("PO No: ", invoice.PONo)+optionalDate(" dated ", invoice.PODate), props.Text{Size: 9, Align: align.Right}),
			text.New(prefixed("DC No: ", invoice.DCNo)+optionalDate(" dated ", invoice.DCDate), props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New("Place of supply: "+billing.Jurisdiction(customer), props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)

	header := props.Text{Size: 9, Style: fontstyle.Bold}
	right := props.Text{Size: 9, Align: align.Right}
	m.AddRow(8,
		text.NewCol(1, "#", header),
		text.NewCol(5, "Description", header),
		text.NewCol(2, "HSN/SAC", header),
		text.NewCol(1, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(1, "Rate", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(1, line.NewCol(12))
	for i, item := range invoice.Items {
		m.AddRow(7,
			text.NewCol(1, fmt.Sprintf("%d", i+1), props.Text{Size: 9}),
			text.NewCol(5, item.Description, props.Text{Size: 9}),
			text.NewCol(2, item.HSNSAC, props.Text{Size: 9}),
			text.NewCol(1, utils.Dec(item.Quantity).String(), right),
			text.NewCol(1, money(item.Rate), right),
			text.NewCol(2, money(item.Amount), right),
		)
	}
	m.AddRow(1, line.NewCol(12))

	cgst, sgst, igst := billing.Breakdown(*invoice)
	totals := [][2]string{{"Subtotal", money(invoice.Subtotal)}}
	if invoice.IGSTRate > 0 {
		totals = append(totals, [2]string{fmt.Sprintf("IGST @ %s%%", utils.Dec(invoice.IGSTRate)), money(igst)})
	} else {
		totals = append(totals,
			[2]string{fmt.Sprintf("CGST @ %s%%", utils.Dec(invoice.CGSTRate)), money(cgst)},
			[2]string{fmt.Sprintf("SGST @ %s%%", utils.Dec(invoice.SGSTRate)), money(sgst)},
		)
	}
	for _, t := range totals {
		m.AddRow(6,
			col.New(8),
			text.NewCol(2, t[0], props.Text{Size: 9}),
			text.NewCol(2, t[1], right),
		)
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", header),
		text.NewCol(2, money(invoice.TotalAmount), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// money formats an amount for the PDF core fonts, which cannot draw the rupee sign.
func money(x float64) string {
	return "Rs. " + strings.Replace(utils.FormatINR(x), "₹", "", 1)
}

func formatAddress(a models.Address) string {
	return joinNonEmpty(", ", a.Street, a.City, a.State, a.PostalCode, a.Country)
}

func optionalDate(prefix string, d *time.Time) string {
	if d == nil {
		return ""
	}
	return prefix + d.Format(dateLayout)
}

func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rhombick-backend/models"
	"rhombick-backend/utils"
)

// Recompute derives item amounts, subtotal, the tax triple, tax amount and total from the
// invoice's items and its customer. It does not mutate its input; the returned invoice is
// what gets persisted. The customer must be the one the invoice references.
//
// Derived fields are exact: nothing is rounded here. Rounding to paise happens only when
// amounts are rendered (Breakdown, documents).
func Recompute(invoice models.Invoice, customer *models.Customer, policy TaxPolicy) (models.Invoice, error) {
	if customer == nil || customer.ID == "" {
		return invoice, fmt.Errorf("recompute invoice %s: customer %s not loaded: %w",
			invoice.InvoiceNo, invoice.CustomerID, models.ErrPreconditionFailed)
	}
	if customer.ID != invoice.CustomerID {
		return invoice, fmt.Errorf("recompute invoice %s: loaded customer %s does not match reference %s: %w",
			invoice.InvoiceNo, customer.ID, invoice.CustomerID, models.ErrPreconditionFailed)
	}

	out := invoice
	out.Items = make([]models.LineItem, len(invoice.Items))

	subtotal := decimal.Zero
	for i, item := range invoice.Items {
		line := utils.Dec(item.Quantity).Mul(utils.Dec(item.Rate))
		subtotal = subtotal.Add(line)

		item.Position = i
		item.InvoiceID = invoice.ID
		item.Amount = line.InexactFloat64()
		out.Items[i] = item
	}

	rates, err := policy.Classify(customer)
	if err != nil {
		return invoice, fmt.Errorf("recompute invoice %s: %w", invoice.InvoiceNo, err)
	}
	out.CGSTRate = rates.CGST
	out.SGSTRate = rates.SGST
	out.IGSTRate = rates.IGST

	rateSum := utils.Dec(rates.CGST).Add(utils.Dec(rates.SGST)).Add(utils.Dec(rates.IGST))
	tax := utils.Percent(subtotal, rateSum)

	out.Subtotal = subtotal.InexactFloat64()
	out.TaxAmount = tax.InexactFloat64()
	out.TotalAmount = subtotal.Add(tax).InexactFloat64()
	out.Customer = customer
	return out, nil
}

// Breakdown splits an invoice's tax amount into its CGST, SGST and IGST parts for display.
// Each part is rounded to 2 places and the parts add up to TaxAmount rounded to 2 places;
// any rounding remainder lands on the last non-zero component.
func Breakdown(invoice models.Invoice) (cgst, sgst, igst float64) {
	subtotal := utils.Dec(invoice.Subtotal)
	c := utils.Percent(subtotal, utils.Dec(invoice.CGSTRate)).Round(2)
	s := utils.Percent(subtotal, utils.Dec(invoice.SGSTRate)).Round(2)
	g := utils.Percent(subtotal, utils.Dec(invoice.IGSTRate)).Round(2)

	remainder := utils.Dec(invoice.TaxAmount).Round(2).Sub(c.Add(s).Add(g))
	switch {
	case !g.IsZero():
		g = g.Add(remainder)
	case !s.IsZero():
		s = s.Add(remainder)
	default:
		c = c.Add(remainder)
	}
	return utils.Float(c), utils.Float(s), utils.Float(g)
}

package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhombick-backend/billing"
	"rhombick-backend/models"
	"rhombick-backend/utils"
)

func invoiceFor(customer *models.Customer, items ...models.LineItem) models.Invoice {
	return models.Invoice{ID: "inv-1", InvoiceNo: "INV-001", CustomerID: customer.ID, Items: items}
}

func item(desc string, qty, rate float64) models.LineItem {
	return models.LineItem{Description: desc, Quantity: qty, Rate: rate}
}

func assertInvariants(t *testing.T, inv models.Invoice) {
	t.Helper()
	sum := decimal.Zero
	for _, it := range inv.Items {
		sum = sum.Add(utils.Dec(it.Quantity).Mul(utils.Dec(it.Rate)))
	}
	subtotal := utils.Dec(inv.Subtotal)
	tax := utils.Dec(inv.TaxAmount)
	rates := utils.Dec(inv.CGSTRate).Add(utils.Dec(inv.SGSTRate)).Add(utils.Dec(inv.IGSTRate))
	assert.True(t, sum.Equal(subtotal), "subtotal %s, lines sum to %s", subtotal, sum)
	assert.True(t, utils.Percent(subtotal, rates).Equal(tax), "tax %s on subtotal %s at %s%%", tax, subtotal, rates)
	assert.True(t, subtotal.Add(tax).Equal(utils.Dec(inv.TotalAmount)), "total %v", inv.TotalAmount)
	assert.True(t, (inv.IGSTRate == 0) != (inv.CGSTRate+inv.SGSTRate == 0), "exactly one tax branch")
}

func TestRecompute_LocalCustomer(t *testing.T) {
	customer := customerIn("Karnataka")

	out, err := billing.Recompute(invoiceFor(customer, item("Widget", 2, 100)), customer, billing.DefaultTaxPolicy())

	require.NoError(t, err)
	assert.Equal(t, 200.0, out.Subtotal)
	assert.Equal(t, 9.0, out.CGSTRate)
	assert.Equal(t, 9.0, out.SGSTRate)
	assert.Equal(t, 0.0, out.IGSTRate)
	assert.Equal(t, 36.0, out.TaxAmount)
	assert.Equal(t, 236.0, out.TotalAmount)
	assert.Equal(t, 200.0, out.Items[0].Amount)
	assertInvariants(t, out)
}

func TestRecompute_InterstateCustomer(t *testing.T) {
	customer := customerIn("Maharashtra")

	out, err := billing.Recompute(invoiceFor(customer, item("Widget", 2, 100)), customer, billing.DefaultTaxPolicy())

	require.NoError(t, err)
	assert.Equal(t, 18.0, out.IGSTRate)
	assert.Equal(t, 0.0, out.CGSTRate+out.SGSTRate)
	assert.Equal(t, 36.0, out.TaxAmount)
	assert.Equal(t, 236.0, out.TotalAmount)
	assertInvariants(t, out)
}

func TestRecompute_DistinctRatesDisambiguateBranches(t *testing.T) {
	policy := billing.TaxPolicy{HomeJurisdiction: "Karnataka", LocalRateA: 2.5, LocalRateB: 2.5, InterstateRate: 12}
	local := customerIn("Karnataka")
	remote := customerIn("Kerala")
	remote.ID = "c2"

	a, err := billing.Recompute(invoiceFor(local, item("Bolt", 4, 25)), local, policy)
	require.NoError(t, err)
	b, err := billing.Recompute(invoiceFor(remote, item("Bolt", 4, 25)), remote, policy)
	require.NoError(t, err)

	assert.Equal(t, 5.0, a.TaxAmount)
	assert.Equal(t, 105.0, a.TotalAmount)
	assert.Equal(t, 12.0, b.TaxAmount)
	assert.Equal(t, 112.0, b.TotalAmount)
}

func TestRecompute_OverwritesStaleDerivedFields(t *testing.T) {
	customer := customerIn("Karnataka")
	inv := invoiceFor(customer, item("A", 1, 10), item("B", 3, 50))
	inv.IGSTRate = 28
	inv.Subtotal = 999
	inv.TotalAmount = 1

	out, err := billing.Recompute(inv, customer, billing.DefaultTaxPolicy())

	require.NoError(t, err)
	assert.Equal(t, 0.0, out.IGSTRate)
	assert.Equal(t, 160.0, out.Subtotal)
	assert.Equal(t, 188.8, out.TotalAmount)
	assertInvariants(t, out)
}

func TestRecompute_DoesNotMutateInput(t *testing.T) {
	customer := customerIn("Karnataka")
	inv := invoiceFor(customer, item("A", 2, 10))

	_, err := billing.Recompute(inv, customer, billing.DefaultTaxPolicy())

	require.NoError(t, err)
	assert.Equal(t, 0.0, inv.Subtotal)
	assert.Equal(t, 0.0, inv.Items[0].Amount)
}

func TestRecompute_FractionalAmountsAreReproducible(t *testing.T) {
	customer := customerIn("Kerala")
	inv := invoiceFor(customer, item("A", 1.5, 33.33), item("B", 3, 0.1), item("C", 7, 19.99))

	first, err := billing.Recompute(inv, customer, billing.DefaultTaxPolicy())
	require.NoError(t, err)
	second, err := billing.Recompute(first, customer, billing.DefaultTaxPolicy())
	require.NoError(t, err)

	assert.Equal(t, first.Subtotal, second.Subtotal)
	assert.Equal(t, first.TotalAmount, second.TotalAmount)
	assert.Equal(t, 190.225, first.Subtotal)
	assertInvariants(t, first)
}

func TestRecompute_FractionalLineIsNotRounded(t *testing.T) {
	customer := customerIn("Kerala")

	out, err := billing.Recompute(invoiceFor(customer, item("A", 1.5, 33.33)), customer, billing.DefaultTaxPolicy())

	require.NoError(t, err)
	assert.Equal(t, 49.995, out.Items[0].Amount)
	assert.Equal(t, 49.995, out.Subtotal)
	assert.Equal(t, 8.9991, out.TaxAmount)
	assert.Equal(t, 58.9941, out.TotalAmount)
	assertInvariants(t, out)
}

func TestRecompute_EmptyItemsYieldZeroTotals(t *testing.T) {
	customer := customerIn("Karnataka")

	out, err := billing.Recompute(invoiceFor(customer), customer, billing.DefaultTaxPolicy())

	require.NoError(t, err)
	assert.Zero(t, out.Subtotal)
	assert.Zero(t, out.TotalAmount)
}

func TestRecompute_UnresolvedCustomer(t *testing.T) {
	customer := customerIn("Karnataka")
	inv := invoiceFor(customer, item("A", 1, 1))

	_, err := billing.Recompute(inv, nil, billing.DefaultTaxPolicy())
	assert.ErrorIs(t, err, models.ErrPreconditionFailed)

	other := customerIn("Karnataka")
	other.ID = "someone-else"
	_, err = billing.Recompute(inv, other, billing.DefaultTaxPolicy())
	assert.ErrorIs(t, err, models.ErrPreconditionFailed)
}

func TestBreakdown_SplitsTaxAmount(t *testing.T) {
	customer := customerIn("Karnataka")
	out, err := billing.Recompute(invoiceFor(customer, item("A", 3, 33.33)), customer, billing.DefaultTaxPolicy())
	require.NoError(t, err)

	cgst, sgst, igst := billing.Breakdown(out)

	assert.Equal(t, 17.9982, out.TaxAmount)
	assert.Zero(t, igst)
	assert.Equal(t, 9.0, cgst)
	assert.Equal(t, 9.0, sgst)
	assert.InDelta(t, utils.Round2(out.TaxAmount), cgst+sgst, 0.0001)
}

func TestBreakdown_PartsAddUpToRoundedTax(t *testing.T) {
	customer := customerIn("Karnataka")
	out, err := billing.Recompute(invoiceFor(customer, item("A", 1, 0.05)), customer, billing.DefaultTaxPolicy())
	require.NoError(t, err)

	cgst, sgst, igst := billing.Breakdown(out)

	assert.Equal(t, 0.009, out.TaxAmount)
	assert.Zero(t, igst)
	assert.InDelta(t, 0.01, cgst+sgst, 0.0001)
}

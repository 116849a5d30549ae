package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhombick-backend/models"
	"rhombick-backend/repositories"
	"rhombick-backend/utils"
)

func TestInvoiceService_CreateLocalCustomerAppliesLocalPair(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "CUST001", "Karnataka")

	inv := f.invoice(t, "INV-001", c, widget(2, 100))

	assert.Equal(t, 200.0, inv.Subtotal)
	assert.Equal(t, 9.0, inv.CGSTRate)
	assert.Equal(t, 9.0, inv.SGSTRate)
	assert.Zero(t, inv.IGSTRate)
	assert.Equal(t, 36.0, inv.TaxAmount)
	assert.Equal(t, 236.0, inv.TotalAmount)
	requireInvariants(t, inv)

	stored, err := f.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 236.0, stored.TotalAmount)
	require.NotNil(t, stored.Customer)
	assert.Equal(t, "CUST001", stored.Customer.CustomerCode)
}

func TestInvoiceService_CreateInterstateCustomerAppliesIGST(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "CUST002", "Maharashtra")

	inv := f.invoice(t, "INV-002", c, widget(2, 100))

	assert.Zero(t, inv.CGSTRate)
	assert.Zero(t, inv.SGSTRate)
	assert.Equal(t, 18.0, inv.IGSTRate)
	assert.Equal(t, 36.0, inv.TaxAmount)
	assert.Equal(t, 236.0, inv.TotalAmount)
	requireInvariants(t, inv)
}

func TestInvoiceService_AddItemRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invoice(t, "INV-001", f.customer(t, "CUST001", "Karnataka"), widget(2, 100))

	updated, err := f.invoices.AddItem(ctx, inv.ID, models.LineItem{Description: "Gasket", Quantity: 3, Rate: 50})
	require.NoError(t, err)

	assert.Equal(t, 350.0, updated.Subtotal)
	assert.Equal(t, 63.0, updated.TaxAmount)
	assert.Equal(t, 413.0, updated.TotalAmount)
	requireInvariants(t, updated)

	added := updated.Items[1]
	got, err := f.invoices.GetItem(ctx, inv.ID, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gasket", got.Description)
	assert.Equal(t, 3.0, got.Quantity)
	assert.Equal(t, 50.0, got.Rate)
	assert.Equal(t, 150.0, got.Amount)

	again, err := f.invoices.GetItem(ctx, inv.ID, added.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestInvoiceService_RemoveUnknownItemLeavesInvoiceUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invoice(t, "INV-001", f.customer(t, "CUST001", "Karnataka"), widget(2, 100))

	_, err := f.invoices.RemoveItem(ctx, inv.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := f.invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, 236.0, stored.TotalAmount)
}

func TestInvoiceService_SearchMatchesItemDescription(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "CUST001", "Karnataka")
	f.invoice(t, "INV-001", c, widget(2, 100))
	f.invoice(t, "INV-002", c, models.LineItem{Description: "Bracket", Quantity: 1, Rate: 10})

	found, total, err := f.invoices.List(context.Background(), repositories.ListQuery{Search: "wIdGeT"})
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "INV-001", found[0].InvoiceNo)
}

func TestInvoiceService_FractionalLineSurvivesStorageExactly(t *testing.T) {
	f := newFixture(t)
	inv := f.invoice(t, "INV-003", f.customer(t, "CUST003", "Kerala"),
		models.LineItem{Description: "Cable", Quantity: 1.5, Rate: 33.33})

	stored, err := f.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, 49.995, stored.Subtotal)
	assert.Equal(t, 8.9991, stored.TaxAmount)
	assert.Equal(t, 58.9941, stored.TotalAmount)
	requireInvariants(t, stored)
}

func TestInvoiceService_RemoveAndUpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invoice(t, "INV-001", f.customer(t, "CUST001", "Karnataka"),
		widget(2, 100), models.LineItem{Description: "Bolt", HSNSAC: "7318", Quantity: 1, Rate: 10})

	updated, err := f.invoices.UpdateItem(ctx, inv.ID, inv.Items[0].ID, models.LineItemPatch{
		Quantity: utils.Some(4.0),
	})
	require.NoError(t, err)
	assert.Equal(t, 410.0, updated.Subtotal)
	assert.Equal(t, "Widget", updated.Items[0].Description, "absent fields are unchanged")
	requireInvariants(t, updated)

	updated, err = f.invoices.UpdateItem(ctx, inv.ID, inv.Items[1].ID, models.LineItemPatch{
		HSNSAC: utils.Null[string](),
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Items[1].HSNSAC)

	_, err = f.invoices.UpdateItem(ctx, inv.ID, inv.Items[1].ID, models.LineItemPatch{
		Description: utils.Null[string](),
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "description")

	removed, err := f.invoices.RemoveItem(ctx, inv.ID, inv.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, removed.Items, 1)
	assert.Equal(t, 10.0, removed.Subtotal)
	assert.Equal(t, inv.Items[1].ID, removed.Items[0].ID, "remaining item keeps its id")
	requireInvariants(t, removed)
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "CUST001", "Karnataka")

	_, err := f.invoices.Create(ctx, &models.Invoice{InvoiceNo: "INV-1", CustomerID: c.ID})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")

	_, err = f.invoices.Create(ctx, &models.Invoice{
		InvoiceNo:  "INV-1",
		CustomerID: "11111111-1111-1111-1111-111111111111",
		Items:      []models.LineItem{widget(1, 1)},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "customerRef")

	_, err = f.invoices.Create(ctx, &models.Invoice{
		InvoiceNo:  "INV-1",
		CustomerID: c.ID,
		Items:      []models.LineItem{widget(0.5, 1)},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items[0].quantity")
}

func TestInvoiceService_DuplicateNumberIsConflict(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "CUST001", "Karnataka")
	f.invoice(t, "INV-001", c, widget(1, 1))

	_, err := f.invoices.Create(context.Background(), &models.Invoice{
		InvoiceNo: "INV-001", CustomerID: c.ID, Items: []models.LineItem{widget(1, 1)},
	})

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestInvoiceService_UpdateSwitchesCustomerAndRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	local := f.customer(t, "CUST001", "Karnataka")
	remote := f.customer(t, "CUST002", "Kerala")
	inv := f.invoice(t, "INV-001", local, widget(2, 100))

	updated, err := f.invoices.Update(ctx, inv.ID, models.InvoicePatch{
		Customer: utils.Some(remote.ID),
		PONo:     utils.Some("PO-42"),
		PODate:   utils.Some("2025-03-01"),
	})
	require.NoError(t, err)

	assert.Equal(t, remote.ID, updated.CustomerID)
	assert.Equal(t, 18.0, updated.IGSTRate)
	assert.Zero(t, updated.CGSTRate)
	assert.Equal(t, "PO-42", updated.PONo)
	require.NotNil(t, updated.PODate)
	assert.Equal(t, "2025-03-01", updated.PODate.Format("2006-01-02"))
	requireInvariants(t, updated)

	updated, err = f.invoices.Update(ctx, inv.ID, models.InvoicePatch{PODate: utils.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.PODate)
	assert.Equal(t, "PO-42", updated.PONo)

	versions, err := f.invoices.Versions(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 3, "one version per write")
}

func TestInvoiceService_UpdateReplacesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invoice(t, "INV-001", f.customer(t, "CUST001", "Karnataka"), widget(2, 100))
	keptID := inv.Items[0].ID

	updated, err := f.invoices.Update(ctx, inv.ID, models.InvoicePatch{
		Items: utils.Some([]models.LineItem{
			{ID: keptID, Description: "Widget", Quantity: 1, Rate: 100},
			{Description: "Spring", Quantity: 2, Rate: 5},
		}),
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, keptID, updated.Items[0].ID)
	assert.NotEmpty(t, updated.Items[1].ID)
	assert.Equal(t, 110.0, updated.Subtotal)
	requireInvariants(t, updated)
}

func TestInvoiceService_UpdateRejectsTakenNumber(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "CUST001", "Karnataka")
	f.invoice(t, "INV-001", c, widget(1, 1))
	second := f.invoice(t, "INV-002", c, widget(1, 1))

	_, err := f.invoices.Update(context.Background(), second.ID, models.InvoicePatch{InvoiceNo: utils.Some("INV-001")})

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestInvoiceService_CustomerChangeAppliesOnNextMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "CUST001", "Karnataka")
	inv := f.invoice(t, "INV-001", c, widget(2, 100))

	_, err := f.customers.Update(ctx, c.ID, models.CustomerPatch{
		Address: &models.AddressPatch{State: utils.Some("Tamil Nadu")},
	})
	require.NoError(t, err)

	stored, err := f.invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.0, stored.CGSTRate, "stored invoices are not rewritten")

	updated, err := f.invoices.AddItem(ctx, inv.ID, models.LineItem{Description: "Nut", Quantity: 1, Rate: 0})
	require.NoError(t, err)
	assert.Equal(t, 18.0, updated.IGSTRate)
	assert.Zero(t, updated.CGSTRate)
}

func TestInvoiceService_DeleteAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.invoice(t, "INV-001", f.customer(t, "CUST001", "Karnataka"), widget(1, 1))

	require.NoError(t, f.invoices.Delete(ctx, inv.ID))
	assert.ErrorIs(t, f.invoices.Delete(ctx, inv.ID), models.ErrNotFound)

	_, err := f.invoices.AddItem(ctx, inv.ID, widget(1, 1))
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.invoices.Versions(ctx, inv.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

package models

import (
	"time"

	"rhombick-backend/utils"
)

// LineItemPatch is the body of an item update. Absent fields are left unchanged,
// null clears optional fields and is rejected for required ones.
type LineItemPatch struct {
	Description utils.Optional[string]  `json:"description"`
	HSNSAC      utils.Optional[string]  `json:"hsnSac"`
	Quantity    utils.Optional[float64] `json:"quantity"`
	Rate        utils.Optional[float64] `json:"rate"`
}

// ApplyTo merges the patch into item and validates the merged result.
func (p LineItemPatch) ApplyTo(item *LineItem) error {
	verr := &ValidationError{}
	rejectNull(verr, "description", p.Description.Set && p.Description.Null)
	rejectNull(verr, "quantity", p.Quantity.Set && p.Quantity.Null)
	rejectNull(verr, "rate", p.Rate.Set && p.Rate.Null)
	if !verr.Empty() {
		return verr
	}

	merged := *item
	p.Description.Merge(&merged.Description)
	p.HSNSAC.Merge(&merged.HSNSAC)
	p.Quantity.Merge(&merged.Quantity)
	p.Rate.Merge(&merged.Rate)
	if err := Validate(merged); err != nil {
		return err
	}
	*item = merged
	return nil
}

// CustomerPatch updates a customer field by field. Address and manager are merged per sub-field.
type CustomerPatch struct {
	CustomerCode utils.Optional[string] `json:"customerId"`
	CustomerName utils.Optional[string] `json:"customerName"`
	Email        utils.Optional[string] `json:"email"`
	PhoneNumber  utils.Optional[string] `json:"phoneNumber"`
	Address      *AddressPatch          `json:"address"`
	Manager      *ManagerPatch          `json:"manager"`
	GSTNumber    utils.Optional[string] `json:"gstNumber"`
}

type AddressPatch struct {
	Street     utils.Optional[string] `json:"street"`
	City       utils.Optional[string] `json:"city"`
	State      utils.Optional[string] `json:"state"`
	PostalCode utils.Optional[string] `json:"postalCode"`
	Country    utils.Optional[string] `json:"country"`
}

type ManagerPatch struct {
	FirstName utils.Optional[string] `json:"firstName"`
	LastName  utils.Optional[string] `json:"lastName"`
}

// ApplyTo merges the patch into customer and validates the merged result.
func (p CustomerPatch) ApplyTo(customer *Customer) error {
	verr := &ValidationError{}
	rejectNull(verr, "customerId", p.CustomerCode.Set && p.CustomerCode.Null)
	rejectNull(verr, "customerName", p.CustomerName.Set && p.CustomerName.Null)
	rejectNull(verr, "email", p.Email.Set && p.Email.Null)
	rejectNull(verr, "phoneNumber", p.PhoneNumber.Set && p.PhoneNumber.Null)
	if !verr.Empty() {
		return verr
	}

	merged := *customer
	p.CustomerCode.Merge(&merged.CustomerCode)
	p.CustomerName.Merge(&merged.CustomerName)
	p.Email.Merge(&merged.Email)
	p.PhoneNumber.Merge(&merged.PhoneNumber)
	p.GSTNumber.Merge(&merged.GSTNumber)
	if a := p.Address; a != nil {
		a.Street.Merge(&merged.Address.Street)
		a.City.Merge(&merged.Address.City)
		a.State.Merge(&merged.Address.State)
		a.PostalCode.Merge(&merged.Address.PostalCode)
		a.Country.Merge(&merged.Address.Country)
		if merged.Address.Country == "" {
			merged.Address.Country = DefaultCountry
		}
	}
	if m := p.Manager; m != nil {
		m.FirstName.Merge(&merged.Manager.FirstName)
		m.LastName.Merge(&merged.Manager.LastName)
	}
	if err := Validate(merged); err != nil {
		return err
	}
	*customer = merged
	return nil
}

// InvoicePatch updates invoice header fields and, when Items is present, replaces the item list.
// Derived money and rate fields are not patchable.
type InvoicePatch struct {
	InvoiceNo   utils.Optional[string]     `json:"invoiceNo"`
	InvoiceDate utils.Optional[string]     `json:"invoiceDate"`
	PONo        utils.Optional[string]     `json:"poNo"`
	PODate      utils.Optional[string]     `json:"poDate"`
	DCNo        utils.Optional[string]     `json:"dcNo"`
	DCDate      utils.Optional[string]     `json:"dcDate"`
	Status      utils.Optional[string]     `json:"status"`
	Customer    utils.Optional[string]     `json:"customerRef"`
	Items       utils.Optional[[]LineItem] `json:"items"`
}

// ApplyTo merges header fields into invoice. Item ids are kept when supplied and
// assigned by the caller otherwise.
func (p InvoicePatch) ApplyTo(invoice *Invoice) error {
	verr := &ValidationError{}
	rejectNull(verr, "invoiceNo", p.InvoiceNo.Set && p.InvoiceNo.Null)
	rejectNull(verr, "invoiceDate", p.InvoiceDate.Set && p.InvoiceDate.Null)
	rejectNull(verr, "status", p.Status.Set && p.Status.Null)
	rejectNull(verr, "customerRef", p.Customer.Set && p.Customer.Null)
	rejectNull(verr, "items", p.Items.Set && p.Items.Null)
	if !verr.Empty() {
		return verr
	}

	merged := *invoice
	p.InvoiceNo.Merge(&merged.InvoiceNo)
	p.PONo.Merge(&merged.PONo)
	p.DCNo.Merge(&merged.DCNo)
	if p.InvoiceDate.HasValue() {
		d, err := utils.ParseDate(p.InvoiceDate.Value)
		if err != nil {
			verr.Add("invoiceDate", "must be a date (YYYY-MM-DD or RFC 3339)")
		}
		merged.InvoiceDate = d
	}
	mergeOptionalDate(verr, "poDate", p.PODate, &merged.PODate)
	mergeOptionalDate(verr, "dcDate", p.DCDate, &merged.DCDate)
	if !verr.Empty() {
		return verr
	}
	p.Status.Merge(&merged.Status)
	if p.Customer.Merge(&merged.CustomerID) && merged.CustomerID != invoice.CustomerID {
		merged.Customer = nil
	}
	if p.Items.HasValue() {
		merged.Items = append([]LineItem(nil), p.Items.Value...)
	}
	if err := Validate(merged); err != nil {
		return err
	}
	*invoice = merged
	return nil
}

func mergeOptionalDate(verr *ValidationError, field string, o utils.Optional[string], dst **time.Time) {
	switch {
	case !o.Set:
	case o.Null || o.Value == "":
		*dst = nil
	default:
		d, err := utils.ParseDate(o.Value)
		if err != nil {
			verr.Add(field, "must be a date (YYYY-MM-DD or RFC 3339)")
			return
		}
		*dst = &d
	}
}

func rejectNull(verr *ValidationError, field string, isNull bool) {
	if isNull {
		verr.Add(field, "cannot be null")
	}
}

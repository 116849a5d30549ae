package controllers

import (
	"rhombick-backend/models"
	"rhombick-backend/utils"
)

// InvoiceInput is the create body. Derived money and rate fields are not accepted.
type InvoiceInput struct {
	InvoiceNo   string      `json:"invoiceNo" validate:"required,max=64"`
	InvoiceDate string      `json:"invoiceDate"`
	PONo        string      `json:"poNo" validate:"max=64"`
	PODate      string      `json:"poDate"`
	DCNo        string      `json:"dcNo" validate:"max=64"`
	DCDate      string      `json:"dcDate"`
	Status      string      `json:"status" validate:"omitempty,oneof=draft issued paid cancelled"`
	CustomerRef string      `json:"customerRef" validate:"required,uuid"`
	Items       []ItemInput `json:"items" validate:"min=1,dive"`
}

type ItemInput struct {
	Description string  `json:"description" validate:"required"`
	HSNSAC      string  `json:"hsnSac" validate:"omitempty,hsnsac"`
	Quantity    float64 `json:"quantity" validate:"gte=1"`
	Rate        float64 `json:"rate" validate:"gte=0"`
}

func (in ItemInput) toModel() models.LineItem {
	return models.LineItem{
		Description: in.Description,
		HSNSAC:      in.HSNSAC,
		Quantity:    in.Quantity,
		Rate:        in.Rate,
	}
}

func (in InvoiceInput) toModel() (*models.Invoice, error) {
	verr := &models.ValidationError{}
	invoice := &models.Invoice{
		InvoiceNo:  in.InvoiceNo,
		PONo:       in.PONo,
		DCNo:       in.DCNo,
		Status:     in.Status,
		CustomerID: in.CustomerRef,
	}
	if in.InvoiceDate != "" {
		d, err := utils.ParseDate(in.InvoiceDate)
		if err != nil {
			verr.Add("invoiceDate", "must be a date (YYYY-MM-DD or RFC 3339)")
		}
		invoice.InvoiceDate = d
	}
	var err error
	if invoice.PODate, err = utils.ParseOptionalDate(in.PODate); err != nil {
		verr.Add("poDate", "must be a date (YYYY-MM-DD or RFC 3339)")
	}
	if invoice.DCDate, err = utils.ParseOptionalDate(in.DCDate); err != nil {
		verr.Add("dcDate", "must be a date (YYYY-MM-DD or RFC 3339)")
	}
	for _, item := range in.Items {
		invoice.Items = append(invoice.Items, item.toModel())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return invoice, nil
}

// CustomerInput is the create body for a customer.
type CustomerInput struct {
	CustomerID   string         `json:"customerId" validate:"required,max=64"`
	CustomerName string         `json:"customerName" validate:"required"`
	Email        string         `json:"email" validate:"required,email"`
	PhoneNumber  string         `json:"phoneNumber" validate:"required,max=32"`
	Address      models.Address `json:"address"`
	Manager      models.Manager `json:"manager"`
	GSTNumber    string         `json:"gstNumber" validate:"omitempty,gstin"`
}

func (in CustomerInput) toModel() *models.Customer {
	return &models.Customer{
		CustomerCode: in.CustomerID,
		CustomerName: in.CustomerName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		Address:      in.Address,
		Manager:      in.Manager,
		GSTNumber:    in.GSTNumber,
	}
}

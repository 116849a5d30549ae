package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"rhombick-backend/documents"
	"rhombick-backend/middlewares"
	"rhombick-backend/models"
	"rhombick-backend/repositories"
	"rhombick-backend/services"
	"rhombick-backend/utils"
)

type InvoiceController struct {
	invoices *services.InvoiceService
	seller   documents.Seller
}

func NewInvoiceController(invoices *services.InvoiceService, seller documents.Seller) *InvoiceController {
	return &InvoiceController{invoices: invoices, seller: seller}
}

func (h *InvoiceController) GetInvoices(c *fiber.Ctx) error {
	q := listQuery(c)
	invoices, total, err := h.invoices.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return utils.RespondPage(c, invoices, pagination(q, total))
}

func (h *InvoiceController) GetInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "invoiceId")
	if err != nil {
		return err
	}
	invoice, err := h.invoices.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, invoice, "")
}

func (h *InvoiceController) CreateInvoice(c *fiber.Ctx) error {
	var in InvoiceInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	input, err := in.toModel()
	if err != nil {
		return err
	}
	invoice, err := h.invoices.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusCreated, invoice, "invoice created")
}

func (h *InvoiceController) UpdateInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "invoiceId")
	if err != nil {
		return err
	}
	var patch models.InvoicePatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}
	invoice, err := h.invoices.Update(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, invoice, "invoice updated")
}

func (h *InvoiceController) DeleteInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "invoiceId")
	if err != nil {
		return err
	}
	if err := h.invoices.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, nil, "invoice deleted")
}

func (h *InvoiceController) GetInvoiceVersions(c *fiber.Ctx) error {
	id, err := pathID(c, "invoiceId")
	if err != nil {
		return err
	}
	versions, err := h.invoices.Versions(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, versions, "")
}

func (h *InvoiceController) GetInvoicePDF(c *fiber.Ctx) error {
	id, err := pathID(c, "invoiceId")
	if err != nil {
		return err
	}
	invoice, err := h.invoices.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	pdf, err := documents.InvoicePDF(h.seller, invoice)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, fileName(invoice.InvoiceNo)))
	return c.Send(pdf)
}

// ExportInvoices downloads the searched and sorted invoice list as a spreadsheet.
// Paging is ignored; the export is capped at maxExportRows.
func (h *InvoiceController) ExportInvoices(c *fiber.Ctx) error {
	q := listQuery(c)
	var all []models.Invoice
	for page := 1; len(all) < maxExportRows; page++ {
		q.Page, q.Limit = page, repositories.MaxLimit
		batch, _, err := h.invoices.List(c.UserContext(), q)
		if err != nil {
			return err
		}
		all = append(all, batch...)
		if len(batch) < q.Limit {
			break
		}
	}
	data, err := documents.InvoicesXLSX(all)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="invoices.xlsx"`)
	return c.Send(data)
}

const maxExportRows = 10000

package controllers

import (
	"github.com/gofiber/fiber/v2"

	"rhombick-backend/middlewares"
	"rhombick-backend/models"
	"rhombick-backend/utils"
)

// Item endpoints address a line item by (invoiceId, itemId) and answer with the
// recomputed invoice after every mutation.

func (h *InvoiceController) AddItem(c *fiber.Ctx) error {
	invoiceID, err := pathID(c, "invoiceId")
	if err != nil {
		return err
	}
	var in ItemInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	invoice, err := h.invoices.AddItem(c.UserContext(), invoiceID, in.toModel())
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusCreated, invoice, "item added")
}

func (h *InvoiceController) GetItem(c *fiber.Ctx) error {
	invoiceID, itemID, err := itemPath(c)
	if err != nil {
		return err
	}
	item, err := h.invoices.GetItem(c.UserContext(), invoiceID, itemID)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, item, "")
}

func (h *InvoiceController) UpdateItem(c *fiber.Ctx) error {
	invoiceID, itemID, err := itemPath(c)
	if err != nil {
		return err
	}
	var patch models.LineItemPatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}
	invoice, err := h.invoices.UpdateItem(c.UserContext(), invoiceID, itemID, patch)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, invoice, "item updated")
}

func (h *InvoiceController) DeleteItem(c *fiber.Ctx) error {
	invoiceID, itemID, err := itemPath(c)
	if err != nil {
		return err
	}
	invoice, err := h.invoices.RemoveItem(c.UserContext(), invoiceID, itemID)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, invoice, "item removed")
}

func itemPath(c *fiber.Ctx) (string, string, error) {
	invoiceID, err := pathID(c, "invoiceId")
	if err != nil {
		return "", "", err
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return "", "", err
	}
	return invoiceID, itemID, nil
}

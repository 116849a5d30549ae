package controllers

import (
	"github.com/gofiber/fiber/v2"

	"rhombick-backend/middlewares"
	"rhombick-backend/models"
	"rhombick-backend/services"
	"rhombick-backend/utils"
)

type CustomerController struct {
	customers *services.CustomerService
}

func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{customers: customers}
}

func (h *CustomerController) GetCustomers(c *fiber.Ctx) error {
	q := listQuery(c)
	customers, total, err := h.customers.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return utils.RespondPage(c, customers, pagination(q, total))
}

func (h *CustomerController) GetCustomer(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.customers.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, customer, "")
}

func (h *CustomerController) CreateCustomer(c *fiber.Ctx) error {
	var in CustomerInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	customer, err := h.customers.Create(c.UserContext(), in.toModel())
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusCreated, customer, "customer created")
}

func (h *CustomerController) UpdateCustomer(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch models.CustomerPatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}
	customer, err := h.customers.Update(c.UserContext(), id, patch)
	if err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, customer, "customer updated")
}

func (h *CustomerController) DeleteCustomer(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.customers.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return utils.Respond(c, fiber.StatusOK, nil, "customer deleted")
}

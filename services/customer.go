package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rhombick-backend/logger"
	"rhombick-backend/models"
	"rhombick-backend/repositories"
)

type CustomerService struct {
	customers repositories.CustomerRepository
	log       *zap.Logger
}

func NewCustomerService(customers repositories.CustomerRepository, log *zap.Logger) *CustomerService {
	return &CustomerService{customers: customers, log: log.Named("customers")}
}

func (s *CustomerService) List(ctx context.Context, q repositories.ListQuery) ([]models.Customer, int64, error) {
	customers, err := s.customers.Find(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customers.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	customer.ID = ""
	customer.GSTNumber = strings.ToUpper(customer.GSTNumber)
	if customer.Address.Country == "" {
		customer.Address.Country = models.DefaultCountry
	}
	if err := models.Validate(customer); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, customer, ""); err != nil {
		return nil, err
	}
	if err := s.customers.Insert(ctx, customer); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("customer created",
		zap.String("customer_id", customer.ID), zap.String("code", customer.CustomerCode))
	return customer, nil
}

// Update merges patch into the stored customer. Invoices referencing it are not rewritten;
// their rates follow the customer on their next mutation.
func (s *CustomerService) Update(ctx context.Context, id string, patch models.CustomerPatch) (*models.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.ApplyTo(customer); err != nil {
		return nil, err
	}
	customer.GSTNumber = strings.ToUpper(customer.GSTNumber)
	if err := s.checkUnique(ctx, customer, id); err != nil {
		return nil, err
	}
	if err := s.customers.Replace(ctx, customer); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("customer updated", zap.String("customer_id", id))
	return customer, nil
}

// Delete refuses to remove a customer that invoices still reference.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	n, err := s.customers.CountInvoices(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("customer %s is referenced by %d invoice(s): %w", id, n, models.ErrConflict)
	}
	deleted, err := s.customers.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	logger.FromContext(ctx, s.log).Info("customer deleted", zap.String("customer_id", id))
	return nil
}

func (s *CustomerService) checkUnique(ctx context.Context, customer *models.Customer, excludeID string) error {
	checks := []struct{ column, field, value string }{
		{"customer_code", "customerId", customer.CustomerCode},
		{"email", "email", customer.Email},
	}
	for _, c := range checks {
		exists, err := s.customers.ExistsBy(ctx, c.column, c.value, excludeID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s %q already in use: %w", c.field, c.value, models.ErrConflict)
		}
	}
	return nil
}

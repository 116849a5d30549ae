package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rhombick-backend/billing"
	"rhombick-backend/logger"
	"rhombick-backend/metrics"
	"rhombick-backend/models"
	"rhombick-backend/repositories"
)

// InvoiceService runs every invoice mutation as load, apply, recompute, then a single write.
type InvoiceService struct {
	invoices  repositories.InvoiceRepository
	customers repositories.CustomerRepository
	policy    billing.TaxPolicy
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewInvoiceService(
	invoices repositories.InvoiceRepository,
	customers repositories.CustomerRepository,
	policy billing.TaxPolicy,
	m *metrics.Metrics,
	log *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		customers: customers,
		policy:    policy,
		metrics:   m,
		log:       log.Named("invoices"),
	}
}

func (s *InvoiceService) List(ctx context.Context, q repositories.ListQuery) ([]models.Invoice, int64, error) {
	invoices, err := s.invoices.Find(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoices.Count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

// Create stores a new invoice. Items and the customer reference are required up front.
func (s *InvoiceService) Create(ctx context.Context, input *models.Invoice) (*models.Invoice, error) {
	invoice := *input
	invoice.ID = uuid.NewString()
	invoice.Customer = nil
	if invoice.Status == "" {
		invoice.Status = models.StatusDraft
	}
	invoice.Items = append([]models.LineItem(nil), input.Items...)
	for i := range invoice.Items {
		invoice.Items[i].ID = ""
	}
	if err := models.Validate(invoice); err != nil {
		return nil, err
	}
	if err := s.checkNumber(ctx, invoice.InvoiceNo, ""); err != nil {
		return nil, err
	}
	customer, err := s.referencedCustomer(ctx, invoice.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := billing.AssignItemIDs(&invoice); err != nil {
		return nil, err
	}
	return s.persist(ctx, &invoice, customer, repositories.OperationCreate, s.invoices.Insert)
}

// Update applies a header patch and, when present, a full replacement of the item list.
func (s *InvoiceService) Update(ctx context.Context, id string, patch models.InvoicePatch) (*models.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousNo := invoice.InvoiceNo
	if err := patch.ApplyTo(invoice); err != nil {
		return nil, err
	}
	if invoice.InvoiceNo != previousNo {
		if err := s.checkNumber(ctx, invoice.InvoiceNo, id); err != nil {
			return nil, err
		}
	}
	if patch.Items.HasValue() {
		if err := billing.AssignItemIDs(invoice); err != nil {
			return nil, err
		}
	}
	customer := invoice.Customer
	if customer == nil || customer.ID != invoice.CustomerID {
		if customer, err = s.referencedCustomer(ctx, invoice.CustomerID); err != nil {
			return nil, err
		}
	}
	return s.persist(ctx, invoice, customer, repositories.OperationUpdate, s.invoices.Replace)
}

func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	deleted, err := s.invoices.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("invoice %s: %w", id, models.ErrNotFound)
	}
	logger.FromContext(ctx, s.log).Info("invoice deleted", zap.String("invoice_id", id))
	return nil
}

func (s *InvoiceService) Versions(ctx context.Context, id string) ([]models.InvoiceVersion, error) {
	if _, err := s.invoices.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.invoices.Versions(ctx, id)
}

func (s *InvoiceService) AddItem(ctx context.Context, invoiceID string, item models.LineItem) (*models.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if _, err := billing.AddItem(invoice, item); err != nil {
		return nil, err
	}
	return s.persist(ctx, invoice, invoice.Customer, repositories.OperationUpdate, s.invoices.Replace)
}

func (s *InvoiceService) GetItem(ctx context.Context, invoiceID, itemID string) (*models.LineItem, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	item, err := billing.GetItem(invoice, itemID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *InvoiceService) UpdateItem(ctx context.Context, invoiceID, itemID string, patch models.LineItemPatch) (*models.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if _, err := billing.UpdateItem(invoice, itemID, patch); err != nil {
		return nil, err
	}
	return s.persist(ctx, invoice, invoice.Customer, repositories.OperationUpdate, s.invoices.Replace)
}

func (s *InvoiceService) RemoveItem(ctx context.Context, invoiceID, itemID string) (*models.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := billing.RemoveItem(invoice, itemID); err != nil {
		return nil, err
	}
	return s.persist(ctx, invoice, invoice.Customer, repositories.OperationUpdate, s.invoices.Replace)
}

// persist recomputes the derived fields and hands the result to a single repository write.
func (s *InvoiceService) persist(
	ctx context.Context,
	invoice *models.Invoice,
	customer *models.Customer,
	operation string,
	write func(context.Context, *models.Invoice) error,
) (*models.Invoice, error) {
	log := logger.FromContext(ctx, s.log)
	out, err := billing.Recompute(*invoice, customer, s.policy)
	if err != nil {
		if errors.Is(err, models.ErrPreconditionFailed) {
			s.metrics.ObserveRecomputeFailure("precondition_failed")
			log.Error("invoice recomputation refused", zap.String("invoice_id", invoice.ID), zap.Error(err))
		}
		return nil, err
	}
	if err := write(ctx, &out); err != nil {
		return nil, err
	}
	s.metrics.ObserveInvoiceWrite(operation, out.TotalAmount)
	log.Info("invoice saved",
		zap.String("operation", operation),
		zap.String("invoice_id", out.ID),
		zap.String("invoice_no", out.InvoiceNo),
		zap.Float64("total", out.TotalAmount))
	return &out, nil
}

// referencedCustomer resolves a client-supplied customer reference.
func (s *InvoiceService) referencedCustomer(ctx context.Context, id string) (*models.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NewValidationError("customerRef", "does not reference an existing customer")
	}
	return customer, err
}

func (s *InvoiceService) checkNumber(ctx context.Context, invoiceNo, excludeID string) error {
	exists, err := s.invoices.ExistsByNumber(ctx, invoiceNo, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("invoiceNo %q already in use: %w", invoiceNo, models.ErrConflict)
	}
	return nil
}

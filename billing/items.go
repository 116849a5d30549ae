package billing

import (
	"fmt"

	"github.com/google/uuid"

	"rhombick-backend/models"
)

// FindItem returns the item with id and its index in the stored order.
func FindItem(invoice *models.Invoice, id string) (*models.LineItem, int, error) {
	for i := range invoice.Items {
		if invoice.Items[i].ID == id {
			return &invoice.Items[i], i, nil
		}
	}
	return nil, -1, fmt.Errorf("item %s: %w", id, models.ErrNotFound)
}

// GetItem is a pure lookup returning a copy of the item.
func GetItem(invoice *models.Invoice, id string) (models.LineItem, error) {
	item, _, err := FindItem(invoice, id)
	if err != nil {
		return models.LineItem{}, err
	}
	return *item, nil
}

// AddItem validates item, gives it a fresh id and appends it to the invoice.
func AddItem(invoice *models.Invoice, item models.LineItem) (models.LineItem, error) {
	if err := models.Validate(item); err != nil {
		return models.LineItem{}, err
	}
	item.ID = uuid.NewString()
	item.InvoiceID = invoice.ID
	item.Position = len(invoice.Items)
	invoice.Items = append(invoice.Items, item)
	return item, nil
}

// UpdateItem merges patch into the item with id. The invoice is left untouched on error.
func UpdateItem(invoice *models.Invoice, id string, patch models.LineItemPatch) (models.LineItem, error) {
	item, _, err := FindItem(invoice, id)
	if err != nil {
		return models.LineItem{}, err
	}
	if err := patch.ApplyTo(item); err != nil {
		return models.LineItem{}, err
	}
	return *item, nil
}

// RemoveItem drops the item with id, keeping the order of the rest.
func RemoveItem(invoice *models.Invoice, id string) error {
	kept := make([]models.LineItem, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(invoice.Items) {
		return fmt.Errorf("item %s: %w", id, models.ErrNotFound)
	}
	invoice.Items = kept
	return nil
}

// AssignItemIDs gives ids to items that arrive without one (create, full replacement) and
// rejects duplicate ids within the list.
func AssignItemIDs(invoice *models.Invoice) error {
	seen := make(map[string]struct{}, len(invoice.Items))
	for i := range invoice.Items {
		item := &invoice.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		} else if _, err := uuid.Parse(item.ID); err != nil {
			return models.NewValidationError(fmt.Sprintf("items[%d].id", i), "must be a valid identifier")
		}
		if _, dup := seen[item.ID]; dup {
			return models.NewValidationError(fmt.Sprintf("items[%d].id", i), "is duplicated")
		}
		seen[item.ID] = struct{}{}
		item.InvoiceID = invoice.ID
	}
	return nil
}

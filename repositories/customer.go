package repositories

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"rhombick-backend/models"
)

// CustomerRepository is the storage contract for customers.
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Customer, error)
	Find(ctx context.Context, q ListQuery) ([]models.Customer, error)
	Count(ctx context.Context, q ListQuery) (int64, error)
	Insert(ctx context.Context, customer *models.Customer) error
	Replace(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id string) (bool, error)
	CountInvoices(ctx context.Context, customerID string) (int64, error)
	ExistsBy(ctx context.Context, column, value, excludeID string) (bool, error)
}

var customerSortColumns = map[string]string{
	"customerId":   "customer_code",
	"customerName": "customer_name",
	"email":        "email",
	"phoneNumber":  "phone_number",
	"gstNumber":    "gst_number",
	"city":         "address_city",
	"state":        "address_state",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "customer "+id)
	}
	return &customer, nil
}

func (r *customerRepository) Find(ctx context.Context, q ListQuery) ([]models.Customer, error) {
	q = q.Normalize()
	order, err := orderClause(q.Sort, customerSortColumns)
	if err != nil {
		return nil, err
	}
	customers := []models.Customer{}
	err = r.db.WithContext(ctx).
		Scopes(customerSearch(q.Search)).
		Order(order).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&customers).Error
	if err != nil {
		return nil, translateError(err, "list customers")
	}
	return customers, nil
}

func (r *customerRepository) Count(ctx context.Context, q ListQuery) (int64, error) {
	q = q.Normalize()
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Scopes(customerSearch(q.Search)).Count(&total).Error
	return total, translateError(err, "count customers")
}

func (r *customerRepository) Insert(ctx context.Context, customer *models.Customer) error {
	return translateError(r.db.WithContext(ctx).Create(customer).Error, "customer "+customer.CustomerCode)
}

func (r *customerRepository) Replace(ctx context.Context, customer *models.Customer) error {
	res := r.db.WithContext(ctx).
		Model(&models.Customer{ID: customer.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(customer)
	if res.Error != nil {
		return translateError(res.Error, "customer "+customer.ID)
	}
	if res.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "customer "+customer.ID)
	}
	return nil
}

func (r *customerRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return false, translateError(res.Error, "customer "+id)
	}
	return res.RowsAffected > 0, nil
}

func (r *customerRepository) CountInvoices(ctx context.Context, customerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("customer_id = ?", customerID).Count(&n).Error
	return n, translateError(err, "count invoices of customer "+customerID)
}

// ExistsBy reports whether another customer already uses value in a unique column.
func (r *customerRepository) ExistsBy(ctx context.Context, column, value, excludeID string) (bool, error) {
	if _, ok := map[string]bool{"customer_code": true, "email": true}[column]; !ok {
		return false, models.NewValidationError(column, "is not a unique column")
	}
	var n int64
	tx := r.db.WithContext(ctx).Model(&models.Customer{}).Where("LOWER("+column+") = LOWER(?)", value)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&n).Error; err != nil {
		return false, translateError(err, "customer lookup")
	}
	return n > 0, nil
}

func customerSearch(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		return db.Where(`LOWER(customer_code) LIKE @q ESCAPE '!' OR LOWER(customer_name) LIKE @q ESCAPE '!'
			OR LOWER(email) LIKE @q ESCAPE '!' OR LOWER(phone_number) LIKE @q ESCAPE '!' OR LOWER(gst_number) LIKE @q ESCAPE '!'
			OR LOWER(address_city) LIKE @q ESCAPE '!' OR LOWER(address_state) LIKE @q ESCAPE '!'`,
			sql.Named("q", likePattern(search)))
	}
}

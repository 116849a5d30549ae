package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCountry is applied to customer addresses that leave the country blank.
const DefaultCountry = "India"

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Manager struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Customer struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	CustomerCode string    `json:"customerId" gorm:"column:customer_code;size:64;not null;uniqueIndex" validate:"required,max=64"`
	CustomerName string    `json:"customerName" gorm:"not null" validate:"required"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex" validate:"required,email"`
	PhoneNumber  string    `json:"phoneNumber" gorm:"size:32;not null" validate:"required,max=32"`
	Address      Address   `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Manager      Manager   `json:"manager" gorm:"embedded;embeddedPrefix:manager_"`
	GSTNumber    string    `json:"gstNumber" gorm:"column:gst_number;size:15" validate:"omitempty,gstin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (customer *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if customer.Address.Country == "" {
		customer.Address.Country = DefaultCountry
	}
	return
}

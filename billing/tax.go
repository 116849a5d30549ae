package billing

import (
	"fmt"
	"strings"

	"rhombick-backend/models"
)

// TaxRates is the GST triple applied to an invoice, in percent.
// Either the local pair (CGST+SGST) or IGST is non-zero, never both.
type TaxRates struct {
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
	IGST float64 `json:"igst"`
}

// Sum returns the combined rate in percent.
func (r TaxRates) Sum() float64 {
	return r.CGST + r.SGST + r.IGST
}

// Interstate reports whether the interstate branch applies.
func (r TaxRates) Interstate() bool {
	return r.IGST != 0
}

// TaxPolicy classifies a customer as intra-state (local pair) or interstate.
type TaxPolicy struct {
	HomeJurisdiction string
	LocalRateA       float64
	LocalRateB       float64
	InterstateRate   float64
}

// DefaultTaxPolicy is the seller in Karnataka charging 9% CGST + 9% SGST locally and 18% IGST otherwise.
func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{
		HomeJurisdiction: "Karnataka",
		LocalRateA:       9,
		LocalRateB:       9,
		InterstateRate:   18,
	}
}

// Validate rejects policies that cannot produce a well-formed triple.
func (p TaxPolicy) Validate() error {
	switch {
	case strings.TrimSpace(p.HomeJurisdiction) == "":
		return fmt.Errorf("tax policy: home jurisdiction is required")
	case p.LocalRateA < 0 || p.LocalRateB < 0 || p.InterstateRate < 0:
		return fmt.Errorf("tax policy: rates must not be negative")
	case p.LocalRateA+p.LocalRateB == 0 && p.InterstateRate == 0:
		return fmt.Errorf("tax policy: at least one branch must carry a rate")
	}
	return nil
}

// Classify returns the rate triple for customer. An unresolved customer or one without any
// jurisdiction information fails with models.ErrPreconditionFailed instead of picking a branch.
func (p TaxPolicy) Classify(customer *models.Customer) (TaxRates, error) {
	if customer == nil {
		return TaxRates{}, fmt.Errorf("tax classification: customer not resolved: %w", models.ErrPreconditionFailed)
	}
	j := Jurisdiction(customer)
	if j == "" {
		return TaxRates{}, fmt.Errorf("tax classification: customer %s has no state: %w", customer.ID, models.ErrPreconditionFailed)
	}
	if strings.EqualFold(j, strings.TrimSpace(p.HomeJurisdiction)) {
		return TaxRates{CGST: p.LocalRateA, SGST: p.LocalRateB}, nil
	}
	return TaxRates{IGST: p.InterstateRate}, nil
}

// Jurisdiction is the customer's state. A blank state falls back to the state encoded
// in the first two digits of the GSTIN.
func Jurisdiction(customer *models.Customer) string {
	if s := strings.TrimSpace(customer.Address.State); s != "" {
		return s
	}
	gstin := strings.TrimSpace(customer.GSTNumber)
	if len(gstin) >= 2 {
		return gstStateCodes[gstin[:2]]
	}
	return ""
}

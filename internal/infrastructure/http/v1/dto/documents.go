package dto

import (
	"time"

	"rxledger/internal/core/id"
)

// DocumentListQuery extends ListQuery with document journal filters.
type DocumentListQuery struct {
	ListQuery

	SupplierID string     `form:"supplierId"`
	InvoiceID  string     `form:"invoiceId"`
	PaymentID  string     `form:"paymentId"`
	Status     string     `form:"status"`
	Reason     string     `form:"reason"`
	Posted     *bool      `form:"posted"`
	DateFrom   *time.Time `form:"dateFrom" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"dateTo" time_format:"2006-01-02"`
}

// SupplierIDRef parses the supplier filter, nil when absent.
func (q DocumentListQuery) SupplierIDRef() *id.ID {
	return parseIDRef(q.SupplierID)
}

// InvoiceIDRef parses the invoice filter, nil when absent.
func (q DocumentListQuery) InvoiceIDRef() *id.ID {
	return parseIDRef(q.InvoiceID)
}

// PaymentIDRef parses the payment filter, nil when absent.
func (q DocumentListQuery) PaymentIDRef() *id.ID {
	return parseIDRef(q.PaymentID)
}

func parseIDRef(s string) *id.ID {
	if s == "" {
		return nil
	}
	parsed, err := id.Parse(s)
	if err != nil {
		return nil
	}
	return &parsed
}

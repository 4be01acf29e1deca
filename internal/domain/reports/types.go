// Package reports provides report generation services.
package reports

import (
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// --- Supplier Outstanding Report ---

// SupplierOutstandingFilter defines filter for the supplier outstanding report.
type SupplierOutstandingFilter struct {
	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	// Filters
	SupplierIDs []id.ID

	// Exclude fully settled invoices
	ExcludeSettled bool

	// Pagination
	Limit  int
	Offset int
}

// SupplierOutstandingItem represents one open invoice in the outstanding report.
type SupplierOutstandingItem struct {
	SupplierID            id.ID       `json:"supplierId"`
	SupplierName          string      `json:"supplierName"`
	InvoiceID             id.ID       `json:"invoiceId"`
	InvoiceNumber         string      `json:"invoiceNumber"`
	SupplierInvoiceNumber string      `json:"supplierInvoiceNumber"`
	InvoiceDate           time.Time   `json:"invoiceDate"`
	GrandTotal            types.Money `json:"grandTotal"`
	Paid                  types.Money `json:"paid"`
	Credited              types.Money `json:"credited"`
	Balance               types.Money `json:"balance"`
	AgeDays               int         `json:"ageDays"`
	AgingBucket           string      `json:"agingBucket"` // "0-30", "31-60", "61-90", "90+"
}

// SupplierOutstandingReport represents the full outstanding report.
type SupplierOutstandingReport struct {
	AsOfDate   time.Time                 `json:"asOfDate"`
	Items      []SupplierOutstandingItem `json:"items"`
	TotalItems int                       `json:"totalItems"`

	// Summary
	TotalOutstanding types.Money            `json:"totalOutstanding"`
	ByBucket         map[string]types.Money `json:"byBucket,omitempty"`
}

// AgingBucket classifies an invoice age in days into a reporting bucket.
func AgingBucket(ageDays int) string {
	switch {
	case ageDays <= 30:
		return "0-30"
	case ageDays <= 60:
		return "31-60"
	case ageDays <= 90:
		return "61-90"
	default:
		return "90+"
	}
}

// --- GST Input Summary ---

// GSTInputFilter defines filter for the GST input tax summary.
type GSTInputFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	SupplierIDs []id.ID
	HSNCodes    []string

	// Grouping
	GroupByHSN  bool
	GroupByRate bool

	// Pagination
	Limit  int
	Offset int
}

// GSTInputItem represents one row of the input tax summary.
type GSTInputItem struct {
	HSNCode       string      `json:"hsnCode,omitempty"`
	GSTRate       types.Money `json:"gstRate,omitempty"`
	SupplierGSTIN string      `json:"supplierGstin,omitempty"`
	TaxableValue  types.Money `json:"taxableValue"`
	CGST          types.Money `json:"cgst"`
	SGST          types.Money `json:"sgst"`
	IGST          types.Money `json:"igst"`
	InvoiceCount  int         `json:"invoiceCount"`
}

// GSTInputReport represents the full GST input summary.
type GSTInputReport struct {
	FromDate   time.Time      `json:"fromDate"`
	ToDate     time.Time      `json:"toDate"`
	Items      []GSTInputItem `json:"items"`
	TotalItems int            `json:"totalItems"`

	// Summary totals
	TotalTaxable types.Money `json:"totalTaxable"`
	TotalCGST    types.Money `json:"totalCgst"`
	TotalSGST    types.Money `json:"totalSgst"`
	TotalIGST    types.Money `json:"totalIgst"`
}

// --- Expiring Stock Report ---

// ExpiringStockFilter defines filter for the expiring stock report.
type ExpiringStockFilter struct {
	// WithinDays - include batches expiring within this many days (defaults to 90)
	WithinDays int

	// IncludeExpired includes already expired batches with remaining stock
	IncludeExpired bool

	// Filters
	BranchIDs   []id.ID
	MedicineIDs []id.ID

	// Pagination
	Limit  int
	Offset int
}

// ExpiringStockItem represents one batch in the expiring stock report.
type ExpiringStockItem struct {
	BranchID     id.ID          `json:"branchId"`
	BranchName   string         `json:"branchName"`
	MedicineID   id.ID          `json:"medicineId"`
	MedicineName string         `json:"medicineName"`
	BatchID      id.ID          `json:"batchId"`
	BatchNumber  string         `json:"batchNumber"`
	ExpiryDate   time.Time      `json:"expiryDate"`
	DaysToExpiry int            `json:"daysToExpiry"`
	Quantity     types.Quantity `json:"quantity"`
	UnitCost     types.Money    `json:"unitCost"`
	StockValue   types.Money    `json:"stockValue"`
}

// ExpiringStockReport represents the full expiring stock report.
type ExpiringStockReport struct {
	AsOfDate   time.Time           `json:"asOfDate"`
	WithinDays int                 `json:"withinDays"`
	Items      []ExpiringStockItem `json:"items"`
	TotalItems int                 `json:"totalItems"`

	TotalValue types.Money `json:"totalValue"`
}

// --- Document Journal ---

// DocumentJournalFilter defines filter for the document journal.
type DocumentJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter (purchase_order, purchase_invoice, payment, credit_note)
	DocumentTypes []string

	// Status filter
	Posted *bool

	// Search by number
	NumberContains string

	// Filters by references
	SupplierIDs []id.ID
	BranchIDs   []id.ID

	// Sorting
	SortBy    string // "date", "number", "type", "amount"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// DocumentJournalItem represents a document in the journal.
type DocumentJournalItem struct {
	ID           id.ID     `json:"id"`
	DocumentType string    `json:"documentType"`
	Number       string    `json:"number"`
	Date         time.Time `json:"date"`
	Posted       bool      `json:"posted"`

	SupplierID   *id.ID `json:"supplierId,omitempty"`
	SupplierName string `json:"supplierName,omitempty"`

	TotalAmount types.Money `json:"totalAmount"`
	Currency    string      `json:"currency"`

	Description  string    `json:"description,omitempty"`
	DeletionMark bool      `json:"deletionMark"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DocumentJournal represents the document journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides count and totals by document type.
type DocumentTypeSummary struct {
	DocumentType string      `json:"documentType"`
	Count        int         `json:"count"`
	PostedCount  int         `json:"postedCount"`
	TotalAmount  types.Money `json:"totalAmount"`
}

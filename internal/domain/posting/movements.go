// Package posting coordinates document posting: it applies the ledger
// and stock effects a document generates, atomically, and flips the
// document's posted flag.
package posting

import (
	"context"
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/registers/batch"
)

// StockIssue requests FIFO consumption of a medicine. The engine
// resolves it into batch-level movements at posting time.
type StockIssue struct {
	BranchID   id.ID
	MedicineID id.ID
	Quantity   types.Quantity
}

// MovementSet collects the effects a document produces when posted.
type MovementSet struct {
	// Ledger is the balanced GL transaction, nil when the document has
	// no financial effect (e.g., purchase order)
	Ledger *ledger.GLTransaction

	// StockReceipts are incoming lots (purchase invoice lines)
	StockReceipts []batch.StockReceipt

	// StockIssues are outgoing quantities allocated FIFO by the engine
	// (credit note returns)
	StockIssues []StockIssue
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// SetLedger attaches the GL transaction.
func (m *MovementSet) SetLedger(glTx *ledger.GLTransaction) {
	m.Ledger = glTx
}

// AddReceipt adds an incoming stock lot.
func (m *MovementSet) AddReceipt(r batch.StockReceipt) {
	m.StockReceipts = append(m.StockReceipts, r)
}

// AddIssue adds an outgoing stock requirement.
func (m *MovementSet) AddIssue(i StockIssue) {
	m.StockIssues = append(m.StockIssues, i)
}

// IsEmpty reports whether the set carries no effects at all.
func (m *MovementSet) IsEmpty() bool {
	return m.Ledger == nil && len(m.StockReceipts) == 0 && len(m.StockIssues) == 0
}

// Postable is implemented by documents that can be posted.
// entity.Document provides defaults for everything except
// GetDocumentType and GenerateMovements.
type Postable interface {
	GetID() id.ID
	GetHospitalID() id.ID
	GetDocumentType() string
	GetDate() time.Time
	GetPostedVersion() int
	IsPosted() bool

	// CanPost validates document readiness for posting
	CanPost(ctx context.Context) error

	// MarkPosted / MarkUnposted flip the posted flag and bump versions
	MarkPosted()
	MarkUnposted()

	// GenerateMovements produces the document's posting effects
	GenerateMovements(ctx context.Context) (*MovementSet, error)
}

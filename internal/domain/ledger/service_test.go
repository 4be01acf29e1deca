package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
)

// passthroughTxManager runs the callback without a real database.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memoryRepo is an in-memory Repository for service tests.
type memoryRepo struct {
	byID       map[id.ID]*GLTransaction
	byDocument map[string]*GLTransaction
	reversed   map[id.ID]id.ID
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		byID:       make(map[id.ID]*GLTransaction),
		byDocument: make(map[string]*GLTransaction),
		reversed:   make(map[id.ID]id.ID),
	}
}

func docKey(docType string, docID id.ID) string {
	return docType + "/" + docID.String()
}

func (r *memoryRepo) Create(ctx context.Context, tx *GLTransaction) error {
	key := docKey(tx.DocumentType, tx.DocumentID)
	if existing, ok := r.byDocument[key]; ok && existing.Posted && tx.EventType != EventReversal {
		return apperror.NewDuplicate("GLTransaction", "document", key)
	}
	tx.Posted = true
	r.byID[tx.ID] = tx
	if tx.EventType != EventReversal {
		r.byDocument[key] = tx
	}
	return nil
}

func (r *memoryRepo) GetByID(ctx context.Context, txID id.ID) (*GLTransaction, error) {
	tx, ok := r.byID[txID]
	if !ok {
		return nil, apperror.NewNotFound("GLTransaction", txID)
	}
	return tx, nil
}

func (r *memoryRepo) GetPostedByDocument(ctx context.Context, docType string, docID id.ID) (*GLTransaction, error) {
	tx, ok := r.byDocument[docKey(docType, docID)]
	if !ok {
		return nil, apperror.NewNotFound("GLTransaction", docID)
	}
	if _, isReversed := r.reversed[tx.ID]; isReversed {
		return nil, apperror.NewNotFound("GLTransaction", docID)
	}
	return tx, nil
}

func (r *memoryRepo) GetEntries(ctx context.Context, txID id.ID) ([]GLEntry, error) {
	tx, err := r.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	return tx.Entries, nil
}

func (r *memoryRepo) MarkReversed(ctx context.Context, txID, reversalID id.ID) error {
	r.reversed[txID] = reversalID
	return nil
}

func (r *memoryRepo) ListByAccount(ctx context.Context, accountID id.ID, filter StatementFilter) ([]StatementLine, error) {
	var lines []StatementLine
	for _, tx := range r.byID {
		for _, e := range tx.Entries {
			if e.AccountID == accountID {
				lines = append(lines, StatementLine{
					TransactionID: tx.ID,
					Date:          tx.Date,
					EventType:     tx.EventType,
					DebitAmount:   e.DebitAmount,
					CreditAmount:  e.CreditAmount,
				})
			}
		}
	}
	return lines, nil
}

func buildTestInvoiceTx(t *testing.T) *GLTransaction {
	t.Helper()
	hospitalID := id.New()
	tx, err := BuildInvoiceTransaction(context.Background(), fullMapping(hospitalID), InvoiceEvent{
		HospitalID:    hospitalID,
		InvoiceID:     id.New(),
		Date:          time.Now(),
		TaxableAmount: types.MustMoney("1000"),
		CGSTAmount:    types.MustMoney("60"),
		SGSTAmount:    types.MustMoney("60"),
		IGSTAmount:    types.Zero(),
		GrandTotal:    types.MustMoney("1120"),
	})
	require.NoError(t, err)
	return tx
}

func TestService_Post(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, passthroughTxManager{})

	glTx := buildTestInvoiceTx(t)
	posted, err := svc.Post(context.Background(), glTx)
	require.NoError(t, err)
	assert.True(t, posted.Posted)
}

func TestService_Post_DuplicateIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, passthroughTxManager{})

	first := buildTestInvoiceTx(t)
	posted, err := svc.Post(context.Background(), first)
	require.NoError(t, err)

	// Same source document, rebuilt transaction: must not create a second
	// posted transaction.
	second := *first
	second.ID = id.New()
	again, err := svc.Post(context.Background(), &second)
	require.NoError(t, err)
	assert.Equal(t, posted.ID, again.ID)
	assert.Len(t, repo.byID, 1)
}

func TestService_Post_RejectsImbalance(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, passthroughTxManager{})

	glTx := buildTestInvoiceTx(t)
	glTx.TotalDebit = glTx.TotalDebit.Add(types.MustMoney("1"))

	_, err := svc.Post(context.Background(), glTx)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeLedgerImbalance, appErr.Code)
	assert.Empty(t, repo.byID, "imbalanced transaction must not persist")
}

func TestService_Reverse(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, passthroughTxManager{})

	original := buildTestInvoiceTx(t)
	posted, err := svc.Post(context.Background(), original)
	require.NoError(t, err)

	reversal, err := svc.Reverse(context.Background(), posted.ID, time.Now())
	require.NoError(t, err)

	assert.Equal(t, EventReversal, reversal.EventType)
	require.NotNil(t, reversal.ReversalOf)
	assert.Equal(t, posted.ID, *reversal.ReversalOf)

	// original still present, untouched
	kept, err := repo.GetByID(context.Background(), posted.ID)
	require.NoError(t, err)
	assert.Equal(t, EventPurchaseInvoice, kept.EventType)
}

func TestService_Reverse_RejectsDoubleReversal(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, passthroughTxManager{})

	original := buildTestInvoiceTx(t)
	posted, err := svc.Post(context.Background(), original)
	require.NoError(t, err)

	reversal, err := svc.Reverse(context.Background(), posted.ID, time.Now())
	require.NoError(t, err)

	_, err = svc.Reverse(context.Background(), reversal.ID, time.Now())
	require.Error(t, err)
}

package posting

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/entity"
	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/registers/batch"
)

// passthroughTxManager runs the callback without a real database.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- in-memory batch repository ---

type memBatchRepo struct {
	batches   map[id.ID]*entity.InventoryBatch
	movements []entity.BatchMovement
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: make(map[id.ID]*entity.InventoryBatch)}
}

func (r *memBatchRepo) CreateMovements(ctx context.Context, movements []entity.BatchMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memBatchRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := r.movements[:0]
	for _, m := range r.movements {
		if m.RecorderID == recorderID && m.RecorderVersion < beforeVersion {
			continue
		}
		kept = append(kept, m)
	}
	r.movements = kept
	return nil
}

func (r *memBatchRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.BatchMovement, error) {
	var out []entity.BatchMovement
	for _, m := range r.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memBatchRepo) CreateBatch(ctx context.Context, b *entity.InventoryBatch) error {
	cp := *b
	r.batches[b.ID] = &cp
	return nil
}

func (r *memBatchRepo) GetBatch(ctx context.Context, batchID id.ID) (entity.InventoryBatch, error) {
	b, ok := r.batches[batchID]
	if !ok {
		return entity.InventoryBatch{}, apperror.NewNotFound("InventoryBatch", batchID)
	}
	return *b, nil
}

func (r *memBatchRepo) GetBatchByNumber(ctx context.Context, branchID, medicineID id.ID, batchNumber string) (entity.InventoryBatch, error) {
	for _, b := range r.batches {
		if b.BranchID == branchID && b.MedicineID == medicineID && b.BatchNumber == batchNumber {
			return *b, nil
		}
	}
	return entity.InventoryBatch{}, apperror.NewNotFound("InventoryBatch", batchNumber)
}

func (r *memBatchRepo) GetAvailableBatches(ctx context.Context, branchID, medicineID id.ID) ([]entity.InventoryBatch, error) {
	var out []entity.InventoryBatch
	for _, b := range r.batches {
		if b.BranchID == branchID && b.MedicineID == medicineID && b.CurrentStock.IsPositive() {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (r *memBatchRepo) GetAvailableBatchesForUpdate(ctx context.Context, branchID, medicineID id.ID) ([]entity.InventoryBatch, error) {
	return r.GetAvailableBatches(ctx, branchID, medicineID)
}

func (r *memBatchRepo) AdjustStock(ctx context.Context, batchID id.ID, delta types.Quantity) error {
	b, ok := r.batches[batchID]
	if !ok {
		return apperror.NewNotFound("InventoryBatch", batchID)
	}
	b.CurrentStock += delta
	return nil
}

func (r *memBatchRepo) GetExpiringBatches(ctx context.Context, branchID id.ID, before time.Time) ([]entity.InventoryBatch, error) {
	var out []entity.InventoryBatch
	for _, b := range r.batches {
		if b.BranchID == branchID && b.ExpiryDate.Before(before) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBatchRepo) GetStockByMedicine(ctx context.Context, branchID, medicineID id.ID) (types.Quantity, error) {
	var total types.Quantity
	for _, b := range r.batches {
		if b.BranchID == branchID && b.MedicineID == medicineID {
			total += b.CurrentStock
		}
	}
	return total, nil
}

var _ batch.Repository = (*memBatchRepo)(nil)

// --- in-memory ledger repository ---

type memLedgerRepo struct {
	byID     map[id.ID]*ledger.GLTransaction
	reversed map[id.ID]id.ID
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{
		byID:     make(map[id.ID]*ledger.GLTransaction),
		reversed: make(map[id.ID]id.ID),
	}
}

func (r *memLedgerRepo) Create(ctx context.Context, tx *ledger.GLTransaction) error {
	if tx.EventType != ledger.EventReversal {
		for _, existing := range r.byID {
			_, isReversed := r.reversed[existing.ID]
			if existing.DocumentType == tx.DocumentType && existing.DocumentID == tx.DocumentID &&
				existing.Posted && !isReversed && existing.EventType != ledger.EventReversal {
				return apperror.NewDuplicate("GLTransaction", "document", tx.DocumentID.String())
			}
		}
	}
	tx.Posted = true
	r.byID[tx.ID] = tx
	return nil
}

func (r *memLedgerRepo) GetByID(ctx context.Context, txID id.ID) (*ledger.GLTransaction, error) {
	tx, ok := r.byID[txID]
	if !ok {
		return nil, apperror.NewNotFound("GLTransaction", txID)
	}
	return tx, nil
}

func (r *memLedgerRepo) GetPostedByDocument(ctx context.Context, docType string, docID id.ID) (*ledger.GLTransaction, error) {
	for _, tx := range r.byID {
		if _, isReversed := r.reversed[tx.ID]; isReversed {
			continue
		}
		if tx.DocumentType == docType && tx.DocumentID == docID && tx.Posted &&
			tx.EventType != ledger.EventReversal {
			return tx, nil
		}
	}
	return nil, apperror.NewNotFound("GLTransaction", docID)
}

func (r *memLedgerRepo) GetEntries(ctx context.Context, txID id.ID) ([]ledger.GLEntry, error) {
	tx, err := r.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	return tx.Entries, nil
}

func (r *memLedgerRepo) MarkReversed(ctx context.Context, txID, reversalID id.ID) error {
	r.reversed[txID] = reversalID
	return nil
}

func (r *memLedgerRepo) ListByAccount(ctx context.Context, accountID id.ID, filter ledger.StatementFilter) ([]ledger.StatementLine, error) {
	return nil, nil
}

var _ ledger.Repository = (*memLedgerRepo)(nil)

// --- fake document ---

type fakeDoc struct {
	entity.Document
	movements *MovementSet
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{
		Document:  entity.NewDocument(id.New(), id.New()),
		movements: NewMovementSet(),
	}
}

func (d *fakeDoc) GetDocumentType() string { return "FakeDoc" }

func (d *fakeDoc) GenerateMovements(ctx context.Context) (*MovementSet, error) {
	return d.movements, nil
}

// --- fixtures ---

type engineFixture struct {
	engine     *Engine
	batchRepo  *memBatchRepo
	ledgerRepo *memLedgerRepo
}

func newEngineFixture() engineFixture {
	batchRepo := newMemBatchRepo()
	ledgerRepo := newMemLedgerRepo()
	txm := passthroughTxManager{}
	return engineFixture{
		engine:     NewEngine(txm, ledger.NewService(ledgerRepo, txm), batch.NewService(batchRepo)),
		batchRepo:  batchRepo,
		ledgerRepo: ledgerRepo,
	}
}

func balancedTx(hospitalID, branchID id.ID, docType string, docID id.ID) *ledger.GLTransaction {
	mapping := ledger.NewAccountMapping(hospitalID).
		Bind(ledger.RoleAccountsPayable, id.New()).
		Bind(ledger.RolePurchaseExpense, id.New()).
		Bind(ledger.RoleCGSTInput, id.New()).
		Bind(ledger.RoleSGSTInput, id.New()).
		Bind(ledger.RoleIGSTInput, id.New())
	tx, err := ledger.BuildInvoiceTransaction(context.Background(), mapping, ledger.InvoiceEvent{
		HospitalID:    hospitalID,
		BranchID:      branchID,
		InvoiceID:     docID,
		Date:          time.Now(),
		TaxableAmount: types.MustMoney("1000"),
		CGSTAmount:    types.MustMoney("60"),
		SGSTAmount:    types.MustMoney("60"),
		GrandTotal:    types.MustMoney("1120"),
	})
	if err != nil {
		panic(err)
	}
	tx.DocumentType = docType
	return tx
}

func noopUpdate(ctx context.Context) error { return nil }

func TestEngine_Post_ReceiptsAndLedger(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture()

	doc := newFakeDoc()
	medicineID := id.New()
	doc.movements.SetLedger(balancedTx(doc.HospitalID, doc.BranchID, "FakeDoc", doc.ID))
	doc.movements.AddReceipt(batch.StockReceipt{
		BranchID:     doc.BranchID,
		MedicineID:   medicineID,
		BatchNumber:  "B-001",
		ExpiryDate:   time.Now().AddDate(1, 0, 0),
		Quantity:     types.NewQuantityFromInt(10),
		PurchaseRate: types.NewMoney(100),
	})

	require.NoError(t, fx.engine.Post(ctx, doc, noopUpdate))

	assert.True(t, doc.Posted)
	assert.Equal(t, 1, doc.PostedVersion)

	stock, err := fx.batchRepo.GetStockByMedicine(ctx, doc.BranchID, medicineID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), stock)

	require.Len(t, fx.batchRepo.movements, 1)
	assert.Equal(t, doc.ID, fx.batchRepo.movements[0].RecorderID)
	assert.Equal(t, entity.RecordTypeReceipt, fx.batchRepo.movements[0].RecordType)

	_, err = fx.ledgerRepo.GetPostedByDocument(ctx, "FakeDoc", doc.ID)
	require.NoError(t, err)
}

func TestEngine_Post_FIFOIssue(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture()

	branchID := id.New()
	medicineID := id.New()

	// Two lots: the earlier expiry must be drained first.
	older := &entity.InventoryBatch{
		ID: id.New(), BranchID: branchID, MedicineID: medicineID,
		BatchNumber: "B-OLD", ExpiryDate: time.Now().AddDate(0, 3, 0),
		CurrentStock: types.NewQuantityFromInt(5),
	}
	newer := &entity.InventoryBatch{
		ID: id.New(), BranchID: branchID, MedicineID: medicineID,
		BatchNumber: "B-NEW", ExpiryDate: time.Now().AddDate(1, 0, 0),
		CurrentStock: types.NewQuantityFromInt(10),
	}
	require.NoError(t, fx.batchRepo.CreateBatch(ctx, older))
	require.NoError(t, fx.batchRepo.CreateBatch(ctx, newer))

	doc := newFakeDoc()
	doc.BranchID = branchID
	doc.movements.AddIssue(StockIssue{
		BranchID:   branchID,
		MedicineID: medicineID,
		Quantity:   types.NewQuantityFromInt(8),
	})

	require.NoError(t, fx.engine.Post(ctx, doc, noopUpdate))

	oldLot, _ := fx.batchRepo.GetBatch(ctx, older.ID)
	newLot, _ := fx.batchRepo.GetBatch(ctx, newer.ID)
	assert.True(t, oldLot.CurrentStock.IsZero(), "older lot drained first")
	assert.Equal(t, types.NewQuantityFromInt(7), newLot.CurrentStock)

	// One expense movement per lot touched.
	require.Len(t, fx.batchRepo.movements, 2)
}

func TestEngine_Post_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture()

	doc := newFakeDoc()
	doc.movements.AddIssue(StockIssue{
		BranchID:   doc.BranchID,
		MedicineID: id.New(),
		Quantity:   types.NewQuantityFromInt(5),
	})

	err := fx.engine.Post(ctx, doc, noopUpdate)
	require.Error(t, err)
	assert.False(t, doc.Posted)
}

func TestEngine_Repost_ReplacesMovements(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture()

	doc := newFakeDoc()
	medicineID := id.New()
	receipt := batch.StockReceipt{
		BranchID:    doc.BranchID,
		MedicineID:  medicineID,
		BatchNumber: "B-001",
		ExpiryDate:  time.Now().AddDate(1, 0, 0),
		Quantity:    types.NewQuantityFromInt(10),
	}
	doc.movements.AddReceipt(receipt)

	require.NoError(t, fx.engine.Post(ctx, doc, noopUpdate))

	// Repost with a corrected quantity.
	receipt.Quantity = types.NewQuantityFromInt(12)
	doc.movements = NewMovementSet()
	doc.movements.AddReceipt(receipt)

	require.NoError(t, fx.engine.Post(ctx, doc, noopUpdate))
	assert.Equal(t, 2, doc.PostedVersion)

	stock, err := fx.batchRepo.GetStockByMedicine(ctx, doc.BranchID, medicineID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(12), stock)
	require.Len(t, fx.batchRepo.movements, 1, "previous iteration's movements replaced")
}

func TestEngine_Unpost(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture()

	doc := newFakeDoc()
	medicineID := id.New()
	doc.movements.SetLedger(balancedTx(doc.HospitalID, doc.BranchID, "FakeDoc", doc.ID))
	doc.movements.AddReceipt(batch.StockReceipt{
		BranchID:    doc.BranchID,
		MedicineID:  medicineID,
		BatchNumber: "B-001",
		ExpiryDate:  time.Now().AddDate(1, 0, 0),
		Quantity:    types.NewQuantityFromInt(10),
	})

	require.NoError(t, fx.engine.Post(ctx, doc, noopUpdate))
	require.NoError(t, fx.engine.Unpost(ctx, doc, noopUpdate))

	assert.False(t, doc.Posted)

	stock, err := fx.batchRepo.GetStockByMedicine(ctx, doc.BranchID, medicineID)
	require.NoError(t, err)
	assert.True(t, stock.IsZero(), "received stock reverted")
	assert.Empty(t, fx.batchRepo.movements)

	// The ledger keeps both the original and its reversal; the original
	// no longer resolves as the document's active transaction.
	_, err = fx.ledgerRepo.GetPostedByDocument(ctx, "FakeDoc", doc.ID)
	require.Error(t, err)
	assert.Len(t, fx.ledgerRepo.byID, 2)
}

func TestEngine_Unpost_StockOnlyDocument(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture()

	doc := newFakeDoc()
	doc.movements.AddReceipt(batch.StockReceipt{
		BranchID:    doc.BranchID,
		MedicineID:  id.New(),
		BatchNumber: "B-001",
		ExpiryDate:  time.Now().AddDate(1, 0, 0),
		Quantity:    types.NewQuantityFromInt(10),
	})

	require.NoError(t, fx.engine.Post(ctx, doc, noopUpdate))
	require.NoError(t, fx.engine.Unpost(ctx, doc, noopUpdate))
	assert.False(t, doc.Posted)
}

func TestEngine_Unpost_NotPosted(t *testing.T) {
	fx := newEngineFixture()
	doc := newFakeDoc()
	require.Error(t, fx.engine.Unpost(context.Background(), doc, noopUpdate))
}

package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rxledger/internal/core/id"
	"rxledger/internal/core/types"
	"rxledger/internal/domain/ledger"
)

func newTestPayment(amount float64) *Payment {
	p := NewPayment(id.New(), id.New(), id.New(), types.NewMoney(amount))
	p.CurrencyID = id.New()
	p.BankAmount = types.NewMoney(amount)
	return p
}

func TestPayment_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		p := newTestPayment(5000)
		require.NoError(t, p.Validate(ctx))
	})

	t.Run("zero amount", func(t *testing.T) {
		p := newTestPayment(0)
		require.Error(t, p.Validate(ctx))
	})

	t.Run("breakdown mismatch", func(t *testing.T) {
		p := newTestPayment(5000)
		p.BankAmount = types.NewMoney(4000)
		require.Error(t, p.Validate(ctx))
	})

	t.Run("split methods", func(t *testing.T) {
		p := newTestPayment(5000)
		p.BankAmount = types.NewMoney(3000)
		p.CashAmount = types.NewMoney(2000)
		require.NoError(t, p.Validate(ctx))
	})

	t.Run("cheque without details", func(t *testing.T) {
		p := newTestPayment(5000)
		p.BankAmount = types.Zero()
		p.ChequeAmount = types.NewMoney(5000)
		require.Error(t, p.Validate(ctx))

		num := "123456"
		date := time.Now()
		p.ChequeNumber = &num
		p.ChequeDate = &date
		require.NoError(t, p.Validate(ctx))
	})

	t.Run("negative method amount", func(t *testing.T) {
		p := newTestPayment(5000)
		p.BankAmount = types.NewMoney(6000)
		p.CashAmount = types.NewMoney(-1000)
		require.Error(t, p.Validate(ctx))
	})
}

func TestPayment_Workflow(t *testing.T) {
	t.Run("submit then approve", func(t *testing.T) {
		p := newTestPayment(50000)
		require.NoError(t, p.SubmitForApproval("large_amount"))
		assert.Equal(t, StatusPendingApproval, p.Status)
		require.NotNil(t, p.MatchedRule)
		assert.Equal(t, "large_amount", *p.MatchedRule)

		require.NoError(t, p.Approve("approver-1"))
		assert.Equal(t, StatusApproved, p.Status)
		require.NotNil(t, p.ApprovedBy)
		assert.Equal(t, "approver-1", *p.ApprovedBy)
	})

	t.Run("submit then reject", func(t *testing.T) {
		p := newTestPayment(50000)
		require.NoError(t, p.SubmitForApproval("large_amount"))
		require.NoError(t, p.Reject("approver-1", "amount mismatch"))
		assert.Equal(t, StatusRejected, p.Status)
		require.NotNil(t, p.RejectionReason)
	})

	t.Run("auto approve skips queue", func(t *testing.T) {
		p := newTestPayment(500)
		require.NoError(t, p.AutoApprove())
		assert.Equal(t, StatusApproved, p.Status)
		assert.Nil(t, p.ApprovedBy)
	})

	t.Run("approve without submit fails", func(t *testing.T) {
		p := newTestPayment(500)
		require.Error(t, p.Approve("approver-1"))
	})

	t.Run("double submit fails", func(t *testing.T) {
		p := newTestPayment(50000)
		require.NoError(t, p.SubmitForApproval("large_amount"))
		require.Error(t, p.SubmitForApproval("large_amount"))
	})

	t.Run("reject approved fails", func(t *testing.T) {
		p := newTestPayment(500)
		require.NoError(t, p.AutoApprove())
		require.Error(t, p.Reject("approver-1", "too late"))
	})
}

func TestPayment_CanPost(t *testing.T) {
	ctx := context.Background()

	p := newTestPayment(5000)
	require.Error(t, p.CanPost(ctx), "draft payments must not post")

	require.NoError(t, p.AutoApprove())
	require.NoError(t, p.CanPost(ctx))
}

func paymentMapping(hospitalID id.ID) *ledger.AccountMapping {
	return ledger.NewAccountMapping(hospitalID).
		Bind(ledger.RoleAccountsPayable, id.New()).
		Bind(ledger.RoleSupplierAdvance, id.New()).
		Bind(ledger.RoleCash, id.New()).
		Bind(ledger.RoleBank, id.New())
}

func TestPayment_GenerateMovements(t *testing.T) {
	ctx := context.Background()

	t.Run("invoice payment debits accounts payable", func(t *testing.T) {
		p := newTestPayment(5000)
		invoiceID := id.New()
		p.InvoiceID = &invoiceID
		p.WithAccounts(paymentMapping(p.HospitalID))

		movements, err := p.GenerateMovements(ctx)
		require.NoError(t, err)
		require.NotNil(t, movements.Ledger)
		assert.Equal(t, ledger.EventPayment, movements.Ledger.EventType)
		assert.True(t, movements.Ledger.TotalDebit.Equal(types.NewMoney(5000)))
		assert.True(t, movements.Ledger.TotalDebit.Equal(movements.Ledger.TotalCredit))
		assert.Empty(t, movements.StockReceipts)
	})

	t.Run("advance payment books supplier advance", func(t *testing.T) {
		p := newTestPayment(3000)
		p.WithAccounts(paymentMapping(p.HospitalID))

		movements, err := p.GenerateMovements(ctx)
		require.NoError(t, err)
		assert.Equal(t, ledger.EventAdvancePayment, movements.Ledger.EventType)
		assert.True(t, movements.Ledger.TotalDebit.Equal(types.NewMoney(3000)))
	})

	t.Run("without mapping", func(t *testing.T) {
		p := newTestPayment(1000)
		_, err := p.GenerateMovements(ctx)
		require.Error(t, err)
	})
}

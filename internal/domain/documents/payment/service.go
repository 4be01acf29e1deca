// Package payment provides the Payment document service.
package payment

import (
	"context"
	"fmt"
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain"
	"rxledger/internal/domain/approval"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/posting"
	"rxledger/pkg/logger"
)

// AccountSource loads the posting role bindings for a hospital.
type AccountSource interface {
	LoadMapping(ctx context.Context, hospitalID id.ID) (*ledger.AccountMapping, error)
}

// PolicySource supplies the hospital's approval policy.
type PolicySource interface {
	PolicyFor(ctx context.Context, hospitalID id.ID) (approval.Policy, error)
}

// InvoiceGuard validates a payment's invoice link.
type InvoiceGuard interface {
	EnsurePostedInvoice(ctx context.Context, invoiceID, supplierID id.ID) error
}

// Service provides business operations for payments.
type Service struct {
	repo          Repository
	invoices      InvoiceGuard
	accounts      AccountSource
	policies      PolicySource
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
	hooks         *domain.HookRegistry[*Payment]
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	invoices InvoiceGuard,
	accounts AccountSource,
	policies PolicySource,
	postingEngine *posting.Engine,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		invoices:      invoices,
		accounts:      accounts,
		policies:      policies,
		postingEngine: postingEngine,
		numerator:     gen,
		txManager:     txManager,
		hooks:         domain.NewHookRegistry[*Payment](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Payment] {
	return s.hooks
}

// Create creates a new draft payment.
func (s *Service) Create(ctx context.Context, doc *Payment) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.InvoiceID != nil {
		if err := s.invoices.EnsurePostedInvoice(ctx, *doc.InvoiceID, doc.SupplierID); err != nil {
			return err
		}
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig("PAY")
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "payment created",
		"id", doc.ID,
		"number", doc.Number,
		"amount", doc.Amount.String(),
		"advance", doc.IsAdvance())

	return nil
}

// GetByID retrieves a payment.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, docID)
}

// Update updates a draft payment.
func (s *Service) Update(ctx context.Context, doc *Payment) error {
	if doc.Status != StatusDraft {
		return doc.invalidTransition(doc.Status)
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// Delete soft-deletes a draft payment.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.Status != StatusDraft {
		return doc.invalidTransition(doc.Status)
	}
	return s.repo.Delete(ctx, docID)
}

// Submit evaluates the hospital's approval policy. Payments matching a
// rule queue for approval; the rest are approved and posted immediately.
func (s *Service) Submit(ctx context.Context, docID id.ID) (*Payment, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	policy, err := s.policies.PolicyFor(ctx, doc.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("load approval policy: %w", err)
	}

	required, ruleName, err := policy.RequiresApproval(s.attributes(doc))
	if err != nil {
		return nil, fmt.Errorf("evaluate approval policy: %w", err)
	}

	if required {
		if err := doc.SubmitForApproval(ruleName); err != nil {
			return nil, err
		}
		if err := s.repo.Update(ctx, doc); err != nil {
			return nil, err
		}

		logger.Info(ctx, "payment queued for approval",
			"id", doc.ID,
			"rule", ruleName)
		return doc, nil
	}

	if err := doc.AutoApprove(); err != nil {
		return nil, err
	}
	if err := s.post(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Approve approves a queued payment and posts it to the ledger.
func (s *Service) Approve(ctx context.Context, docID id.ID, approverID string) (*Payment, error) {
	doc, err := s.repo.GetForUpdate(ctx, docID)
	if err != nil {
		return nil, err
	}

	if err := doc.Approve(approverID); err != nil {
		return nil, err
	}

	if err := s.post(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment approved",
		"id", doc.ID,
		"approved_by", approverID)

	return doc, nil
}

// Reject rejects a queued payment with a reason.
func (s *Service) Reject(ctx context.Context, docID id.ID, rejecterID, reason string) (*Payment, error) {
	doc, err := s.repo.GetForUpdate(ctx, docID)
	if err != nil {
		return nil, err
	}

	if err := doc.Reject(rejecterID, reason); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment rejected",
		"id", doc.ID,
		"rejected_by", rejecterID)

	return doc, nil
}

// Unpost reverses an approved payment's ledger effect.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	updateDoc := func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	}

	return s.postingEngine.Unpost(ctx, doc, updateDoc)
}

// ListPendingApproval retrieves the approval queue.
func (s *Service) ListPendingApproval(ctx context.Context, branchID *id.ID) ([]*Payment, error) {
	return s.repo.ListPendingApproval(ctx, branchID)
}

// List retrieves payments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	return s.repo.List(ctx, filter)
}

// post books the approved payment through the posting engine.
func (s *Service) post(ctx context.Context, doc *Payment) error {
	mapping, err := s.accounts.LoadMapping(ctx, doc.HospitalID)
	if err != nil {
		return fmt.Errorf("load account mapping: %w", err)
	}
	doc.WithAccounts(mapping)

	updateDoc := func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	}

	if err := s.postingEngine.Post(ctx, doc, updateDoc); err != nil {
		return err
	}

	if err := s.hooks.RunAfterPost(ctx, doc); err != nil {
		logger.Warn(ctx, "after-post hook failed", "error", err)
	}

	return nil
}

// attributes maps the payment to the rule evaluation input.
func (s *Service) attributes(doc *Payment) approval.PaymentAttributes {
	return approval.PaymentAttributes{
		Amount:     doc.Amount.InexactFloat64(),
		Cash:       doc.CashAmount.InexactFloat64(),
		Cheque:     doc.ChequeAmount.InexactFloat64(),
		Bank:       doc.BankAmount.InexactFloat64(),
		UPI:        doc.UPIAmount.InexactFloat64(),
		SupplierID: doc.SupplierID.String(),
		BranchID:   doc.BranchID.String(),
		Backdated:  doc.IsBackdated(),
	}
}

// Package purchase_invoice provides the PurchaseInvoice document service.
package purchase_invoice

import (
	"context"
	"fmt"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/posting"
	"rxledger/internal/domain/reconcile"
	"rxledger/pkg/logger"
)

// AccountSource loads the posting role bindings for a hospital.
type AccountSource interface {
	LoadMapping(ctx context.Context, hospitalID id.ID) (*ledger.AccountMapping, error)
}

// Service provides business operations for purchase invoices.
type Service struct {
	repo          Repository
	settlements   SettlementReader
	accounts      AccountSource
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
	hooks         *domain.HookRegistry[*PurchaseInvoice]
}

// NewService creates a new purchase invoice service.
func NewService(
	repo Repository,
	settlements SettlementReader,
	accounts AccountSource,
	postingEngine *posting.Engine,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		settlements:   settlements,
		accounts:      accounts,
		postingEngine: postingEngine,
		numerator:     gen,
		txManager:     txManager,
		hooks:         domain.NewHookRegistry[*PurchaseInvoice](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*PurchaseInvoice] {
	return s.hooks
}

// Create creates a new purchase invoice.
func (s *Service) Create(ctx context.Context, doc *PurchaseInvoice) error {
	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkSupplierInvoiceUnique(ctx, doc); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig("PINV")
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "purchase invoice created",
		"id", doc.ID,
		"number", doc.Number,
		"grand_total", doc.GrandTotal.String())

	return nil
}

// GetByID retrieves an invoice with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseInvoice, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates an unposted invoice.
func (s *Service) Update(ctx context.Context, doc *PurchaseInvoice) error {
	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
}

// Delete soft-deletes an unposted invoice.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if doc.Posted {
		return doc.CanModify()
	}

	return s.repo.Delete(ctx, docID)
}

// Post books the supplier liability and receives stock.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

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

// Unpost reverses the invoice's ledger and stock effects.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	updateDoc := func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	}

	return s.postingEngine.Unpost(ctx, doc, updateDoc)
}

// GetBalance reconciles the invoice against its approved payments and
// posted credit notes.
func (s *Service) GetBalance(ctx context.Context, docID id.ID) (reconcile.Balance, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return reconcile.Balance{}, err
	}

	payments, err := s.settlements.ApprovedPayments(ctx, docID)
	if err != nil {
		return reconcile.Balance{}, fmt.Errorf("load payments: %w", err)
	}

	creditNotes, err := s.settlements.CreditNotes(ctx, docID)
	if err != nil {
		return reconcile.Balance{}, fmt.Errorf("load credit notes: %w", err)
	}

	return reconcile.Reconcile(doc.GrandTotal, payments, creditNotes), nil
}

// EnsurePostedInvoice verifies the invoice exists, belongs to the
// supplier and is posted. Used by payment and credit note services
// before linking.
func (s *Service) EnsurePostedInvoice(ctx context.Context, invoiceID, supplierID id.ID) error {
	doc, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if doc.SupplierID != supplierID {
		return apperror.NewValidation("invoice belongs to a different supplier").
			WithDetail("invoiceId", invoiceID.String())
	}

	if !doc.Posted {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"Cannot settle an unposted invoice").
			WithDetail("invoiceId", invoiceID.String())
	}

	return nil
}

// List retrieves invoices with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseInvoice], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) checkSupplierInvoiceUnique(ctx context.Context, doc *PurchaseInvoice) error {
	existing, err := s.repo.FindBySupplierInvoice(ctx, doc.SupplierID, doc.SupplierInvoiceNumber)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != doc.ID {
		return apperror.NewDuplicate("purchase invoice", "supplierInvoiceNumber", doc.SupplierInvoiceNumber)
	}
	return nil
}

// Package credit_note provides the CreditNote document service.
package credit_note

import (
	"context"
	"fmt"
	"time"

	"rxledger/internal/core/id"
	"rxledger/internal/core/numerator"
	"rxledger/internal/core/tx"
	"rxledger/internal/domain"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/domain/posting"
	"rxledger/pkg/logger"
)

// AccountSource loads the posting role bindings for a hospital.
type AccountSource interface {
	LoadMapping(ctx context.Context, hospitalID id.ID) (*ledger.AccountMapping, error)
}

// InvoiceGuard validates a credit note's invoice link.
type InvoiceGuard interface {
	EnsurePostedInvoice(ctx context.Context, invoiceID, supplierID id.ID) error
}

// Service provides business operations for credit notes.
type Service struct {
	repo          Repository
	invoices      InvoiceGuard
	accounts      AccountSource
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
	hooks         *domain.HookRegistry[*CreditNote]
}

// NewService creates a new credit note service.
func NewService(
	repo Repository,
	invoices InvoiceGuard,
	accounts AccountSource,
	postingEngine *posting.Engine,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		invoices:      invoices,
		accounts:      accounts,
		postingEngine: postingEngine,
		numerator:     gen,
		txManager:     txManager,
		hooks:         domain.NewHookRegistry[*CreditNote](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*CreditNote] {
	return s.hooks
}

// Create creates a new credit note.
func (s *Service) Create(ctx context.Context, doc *CreditNote) error {
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
		cfg := numerator.DefaultConfig("CN")
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
		return s.repo.SaveReturnLines(ctx, doc.ID, doc.ReturnLines)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "credit note created",
		"id", doc.ID,
		"number", doc.Number,
		"reason", string(doc.Reason),
		"amount", doc.CreditAmount.String())

	return nil
}

// GetByID retrieves a credit note with return lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*CreditNote, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetReturnLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get return lines: %w", err)
	}
	doc.ReturnLines = lines

	return doc, nil
}

// Update updates an unposted credit note.
func (s *Service) Update(ctx context.Context, doc *CreditNote) error {
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
		return s.repo.SaveReturnLines(ctx, doc.ID, doc.ReturnLines)
	})
}

// Delete soft-deletes an unposted credit note.
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

// Post books the credit and issues returned stock FIFO.
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

// Unpost reverses the credit note's ledger and stock effects.
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

// List retrieves credit notes with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*CreditNote], error) {
	return s.repo.List(ctx, filter)
}

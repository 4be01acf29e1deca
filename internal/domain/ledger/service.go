// Package ledger provides the general-ledger posting service.
package ledger

import (
	"context"
	"fmt"
	"time"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/core/tx"
	"rxledger/pkg/logger"
)

// Service posts balanced transactions to the general ledger.
// Document services hand it fully built transactions; it owns the
// idempotency and append-only guarantees.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new ledger posting service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Post persists a transaction after re-checking its balance invariant.
// Posting the same source document twice is detected and treated as a
// no-op: the existing transaction is returned.
func (s *Service) Post(ctx context.Context, glTx *GLTransaction) (*GLTransaction, error) {
	// Last line of defense: an unbalanced transaction must never persist.
	if err := glTx.Validate(ctx); err != nil {
		return nil, err
	}

	var result *GLTransaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetPostedByDocument(ctx, glTx.DocumentType, glTx.DocumentID)
		if err == nil {
			logger.Info(ctx, "document already posted to ledger, skipping",
				"document_type", glTx.DocumentType,
				"document_id", glTx.DocumentID,
				"transaction_id", existing.ID)
			result = existing
			return nil
		}
		if !apperror.IsNotFound(err) {
			return fmt.Errorf("check existing posting: %w", err)
		}

		glTx.Posted = true
		// The unique (document_type, document_id) index closes the race
		// between the lookup above and this insert.
		if err := s.repo.Create(ctx, glTx); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		result = glTx
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "posted ledger transaction",
		"transaction_id", result.ID,
		"event_type", result.EventType,
		"total_debit", result.TotalDebit.String())

	return result, nil
}

// Reverse appends a new transaction that undoes txID entry by entry.
// The original transaction is never mutated or deleted.
func (s *Service) Reverse(ctx context.Context, txID id.ID, date time.Time) (*GLTransaction, error) {
	var reversal *GLTransaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		original, err := s.repo.GetByID(ctx, txID)
		if err != nil {
			return err
		}

		if original.EventType == EventReversal {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"Cannot reverse a reversal transaction").
				WithDetail("transaction_id", txID.String())
		}

		reversal = original.Reversed(date)
		if err := reversal.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, reversal); err != nil {
			return fmt.Errorf("create reversal: %w", err)
		}

		if err := s.repo.MarkReversed(ctx, original.ID, reversal.ID); err != nil {
			return fmt.Errorf("mark reversed: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "reversed ledger transaction",
		"original_id", txID,
		"reversal_id", reversal.ID)

	return reversal, nil
}

// GetByDocument returns the posted transaction for a source document.
func (s *Service) GetByDocument(ctx context.Context, docType string, docID id.ID) (*GLTransaction, error) {
	return s.repo.GetPostedByDocument(ctx, docType, docID)
}

// AccountStatement returns the entry lines touching one account.
func (s *Service) AccountStatement(ctx context.Context, accountID id.ID, filter StatementFilter) ([]StatementLine, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.ListByAccount(ctx, accountID, filter)
}

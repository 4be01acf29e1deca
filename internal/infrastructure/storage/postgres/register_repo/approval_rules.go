package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/approval"
	"rxledger/internal/infrastructure/storage/postgres"
)

const approvalRulesTable = "sys_approval_rules"

var approvalRuleColumns = []string{
	"id", "hospital_id", "name", "expression",
	"priority", "is_active", "created_at", "updated_at",
}

// ApprovalRuleRepo implements approval.RuleRepository.
type ApprovalRuleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewApprovalRuleRepo creates a new approval rule repository.
func NewApprovalRuleRepo(txManager *postgres.TxManager) *ApprovalRuleRepo {
	return &ApprovalRuleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ approval.RuleRepository = (*ApprovalRuleRepo)(nil)

// ListActive returns active rules ordered by priority.
func (r *ApprovalRuleRepo) ListActive(ctx context.Context, hospitalID id.ID) ([]approval.RuleRecord, error) {
	q := r.builder.Select(approvalRuleColumns...).
		From(approvalRulesTable).
		Where(squirrel.Eq{
			"hospital_id": hospitalID,
			"is_active":   true,
		}).
		OrderBy("priority", "name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rules []approval.RuleRecord
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}

	return rules, nil
}

// Save upserts a rule by id.
func (r *ApprovalRuleRepo) Save(ctx context.Context, rule *approval.RuleRecord) error {
	q := r.builder.Insert(approvalRulesTable).
		Columns(approvalRuleColumns...).
		Values(
			rule.ID, rule.HospitalID, rule.Name, rule.Expression,
			rule.Priority, rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			expression = EXCLUDED.expression,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("save rule: %w", err)
	}

	return nil
}

// Delete removes a rule.
func (r *ApprovalRuleRepo) Delete(ctx context.Context, hospitalID, ruleID id.ID) error {
	q := r.builder.Delete(approvalRulesTable).
		Where(squirrel.Eq{
			"id":          ruleID,
			"hospital_id": hospitalID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("approval_rule", ruleID.String())
	}

	return nil
}

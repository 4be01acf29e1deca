package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rxledger/internal/core/id"
	"rxledger/pkg/logger"
)

// RuleRecord is a stored approval rule.
type RuleRecord struct {
	ID         id.ID     `db:"id" json:"id"`
	HospitalID id.ID     `db:"hospital_id" json:"hospitalId"`
	Name       string    `db:"name" json:"name"`
	Expression string    `db:"expression" json:"expression"`
	Priority   int       `db:"priority" json:"priority"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// RuleRepository defines rule persistence.
type RuleRepository interface {
	ListActive(ctx context.Context, hospitalID id.ID) ([]RuleRecord, error)
	Save(ctx context.Context, rule *RuleRecord) error
	Delete(ctx context.Context, hospitalID, ruleID id.ID) error
}

// Provider compiles stored rules into per-hospital policies.
// Compiled policies are cached; mutations through the provider invalidate
// the hospital's cache entry.
type Provider struct {
	engine *Engine
	repo   RuleRepository

	// fallback applies when a hospital has no rules of its own
	fallback Policy

	mu    sync.RWMutex
	cache map[id.ID]Policy
}

// NewProvider creates a policy provider.
func NewProvider(engine *Engine, repo RuleRepository, fallback Policy) *Provider {
	return &Provider{
		engine:   engine,
		repo:     repo,
		fallback: fallback,
		cache:    make(map[id.ID]Policy),
	}
}

// PolicyFor returns the compiled policy for a hospital.
func (p *Provider) PolicyFor(ctx context.Context, hospitalID id.ID) (Policy, error) {
	p.mu.RLock()
	if policy, ok := p.cache[hospitalID]; ok {
		p.mu.RUnlock()
		return policy, nil
	}
	p.mu.RUnlock()

	records, err := p.repo.ListActive(ctx, hospitalID)
	if err != nil {
		return Policy{}, fmt.Errorf("list approval rules: %w", err)
	}

	policy := p.fallback
	if len(records) > 0 {
		rules := make([]Rule, 0, len(records))
		for _, rec := range records {
			rule, err := p.engine.Compile(rec.Name, rec.Expression)
			if err != nil {
				// A rule that no longer compiles must not silently
				// disable the rest of the policy.
				logger.Warn(ctx, "skipping approval rule that fails to compile",
					"rule", rec.Name,
					"hospital_id", hospitalID,
					"error", err)
				continue
			}
			rules = append(rules, rule)
		}
		if len(rules) > 0 {
			policy = Policy{Rules: rules}
		}
	}

	p.mu.Lock()
	p.cache[hospitalID] = policy
	p.mu.Unlock()

	return policy, nil
}

// SaveRule validates, stores and activates a rule.
func (p *Provider) SaveRule(ctx context.Context, rule *RuleRecord) error {
	// Reject broken expressions before they reach storage.
	if _, err := p.engine.Compile(rule.Name, rule.Expression); err != nil {
		return err
	}

	if id.IsNil(rule.ID) {
		rule.ID = id.New()
		rule.CreatedAt = time.Now().UTC()
	}
	rule.UpdatedAt = time.Now().UTC()
	rule.IsActive = true

	if err := p.repo.Save(ctx, rule); err != nil {
		return fmt.Errorf("save approval rule: %w", err)
	}

	p.invalidate(rule.HospitalID)

	logger.Info(ctx, "approval rule saved",
		"rule", rule.Name,
		"hospital_id", rule.HospitalID)

	return nil
}

// DeleteRule removes a rule.
func (p *Provider) DeleteRule(ctx context.Context, hospitalID, ruleID id.ID) error {
	if err := p.repo.Delete(ctx, hospitalID, ruleID); err != nil {
		return fmt.Errorf("delete approval rule: %w", err)
	}
	p.invalidate(hospitalID)
	return nil
}

// ListRules returns the hospital's active rules.
func (p *Provider) ListRules(ctx context.Context, hospitalID id.ID) ([]RuleRecord, error) {
	return p.repo.ListActive(ctx, hospitalID)
}

func (p *Provider) invalidate(hospitalID id.ID) {
	p.mu.Lock()
	delete(p.cache, hospitalID)
	p.mu.Unlock()
}

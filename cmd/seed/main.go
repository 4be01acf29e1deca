// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"rxledger/internal/core/id"
	"rxledger/internal/domain/catalogs/account"
	"rxledger/internal/domain/ledger"
	"rxledger/internal/infrastructure/storage/postgres"
	"rxledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	// Hospital scope for everything that follows. A fresh install gets
	// a generated hospital ID that the admin's JWT will carry.
	hospitalID := id.New()
	if raw := os.Getenv("HOSPITAL_ID"); raw != "" {
		hospitalID, err = id.Parse(raw)
		if err != nil {
			log.Fatalw("invalid HOSPITAL_ID", "error", err)
		}
	}
	log.Infow("seeding hospital", "hospital_id", hospitalID)

	if err := seedRoles(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed roles", "error", err)
	}

	if _, err := seedAdminUser(ctx, pool, log, hospitalID); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedDefaultBranch(ctx, pool, log, hospitalID); err != nil {
		log.Fatalw("failed to seed default branch", "error", err)
	}

	if err := seedBaseCurrency(ctx, pool, log, hospitalID); err != nil {
		log.Fatalw("failed to seed base currency", "error", err)
	}

	if err := seedChartOfAccounts(ctx, pool, log, hospitalID); err != nil {
		log.Fatalw("failed to seed chart of accounts", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedRoles(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	roles := []struct {
		code        string
		name        string
		description string
	}{
		{"admin", "Administrator", "Full access to all modules"},
		{"pharmacist", "Pharmacist", "Catalog and stock operations"},
		{"accountant", "Accountant", "Invoices, payments and reports"},
		{"approver", "Payment Approver", "Approves submitted payments"},
	}

	for _, r := range roles {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO sys_roles (id, code, name, description, is_system, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, NOW(), NOW())
			ON CONFLICT (code) DO NOTHING
		`, id.New(), r.code, r.name, r.description)
		if err != nil {
			return fmt.Errorf("insert role %s: %w", r.code, err)
		}
	}

	log.Infow("roles seeded", "count", len(roles))
	return nil
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger, hospitalID id.ID) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@rxledger.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM sys_users WHERE hospital_id = $1 AND email = $2 AND deleted_at IS NULL`,
		hospitalID, adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO sys_users (
			id, hospital_id, email, password_hash, first_name, last_name,
			is_active, is_admin, failed_login_attempts, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, $4, 'System', 'Admin', true, true, 0, $5, $5, 1)
	`, userID, hospitalID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	// Assign admin role
	var adminRoleID id.ID
	err = pool.Pool.QueryRow(ctx,
		`SELECT id FROM sys_roles WHERE code = 'admin'`,
	).Scan(&adminRoleID)
	if err != nil {
		log.Warnw("admin role not found, skipping role assignment", "error", err)
	} else {
		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO sys_user_roles (user_id, role_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, role_id) DO NOTHING
		`, userID, adminRoleID)
		if err != nil {
			log.Warnw("failed to assign admin role", "error", err)
		}
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}

func seedDefaultBranch(ctx context.Context, pool *postgres.Pool, log *logger.Logger, hospitalID id.ID) error {
	branchID := id.New()
	commandTag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_branches (
			id, hospital_id, code, name, active, type, state_code,
			is_default, deletion_mark, version
		)
		VALUES ($1, $2, 'BR-001', 'Main Pharmacy', true, 'main_pharmacy', '29', true, false, 1)
		ON CONFLICT (hospital_id, code) WHERE deletion_mark = FALSE DO NOTHING
	`, branchID, hospitalID)
	if err != nil {
		return fmt.Errorf("insert default branch: %w", err)
	}

	if commandTag.RowsAffected() > 0 {
		log.Infow("default branch created", "branch_id", branchID)
	}
	return nil
}

func seedBaseCurrency(ctx context.Context, pool *postgres.Pool, log *logger.Logger, hospitalID id.ID) error {
	commandTag, err := pool.Pool.Exec(ctx, `
		INSERT INTO cat_currencies (
			id, hospital_id, code, name, active, iso_code, symbol,
			decimal_places, exchange_rate, is_base, deletion_mark, version
		)
		VALUES ($1, $2, 'INR', 'Indian Rupee', true, 'INR', '₹', 2, 1, true, false, 1)
		ON CONFLICT (hospital_id, code) WHERE deletion_mark = FALSE DO NOTHING
	`, id.New(), hospitalID)
	if err != nil {
		return fmt.Errorf("insert base currency: %w", err)
	}

	if commandTag.RowsAffected() > 0 {
		log.Info("base currency created")
	}
	return nil
}

// seedChartOfAccounts creates the minimal Indian pharmacy chart and binds
// the semantic roles the poster resolves during document posting.
func seedChartOfAccounts(ctx context.Context, pool *postgres.Pool, log *logger.Logger, hospitalID id.ID) error {
	accounts := []struct {
		code    string
		name    string
		accType account.AccountType
		role    ledger.AccountRole
	}{
		{"1100", "Cash in Hand", account.TypeAsset, ledger.RoleCash},
		{"1200", "Bank Account", account.TypeAsset, ledger.RoleBank},
		{"1210", "UPI Clearing", account.TypeAsset, ledger.RoleUPI},
		{"1220", "Cheque Clearing", account.TypeAsset, ledger.RoleCheque},
		{"1300", "Supplier Advances", account.TypeAsset, ledger.RoleSupplierAdvance},
		{"1410", "CGST Input Credit", account.TypeAsset, ledger.RoleCGSTInput},
		{"1420", "SGST Input Credit", account.TypeAsset, ledger.RoleSGSTInput},
		{"1430", "IGST Input Credit", account.TypeAsset, ledger.RoleIGSTInput},
		{"2100", "Accounts Payable", account.TypeLiability, ledger.RoleAccountsPayable},
		{"5100", "Medicine Purchases", account.TypeExpense, ledger.RolePurchaseExpense},
		{"5200", "Purchase Returns", account.TypeExpense, ledger.RoleCreditNote},
	}

	for _, a := range accounts {
		accountID := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO cat_accounts (
				id, hospital_id, code, name, active, type, is_group,
				deletion_mark, version
			)
			VALUES ($1, $2, $3, $4, true, $5, false, false, 1)
			ON CONFLICT (hospital_id, code) WHERE deletion_mark = FALSE DO NOTHING
		`, accountID, hospitalID, a.code, a.name, a.accType)
		if err != nil {
			return fmt.Errorf("insert account %s: %w", a.code, err)
		}

		// If it already existed, bind the role to the existing row.
		if commandTag.RowsAffected() == 0 {
			err = pool.Pool.QueryRow(ctx, `
				SELECT id FROM cat_accounts
				WHERE hospital_id = $1 AND code = $2 AND deletion_mark = FALSE
			`, hospitalID, a.code).Scan(&accountID)
			if err != nil {
				return fmt.Errorf("fetch account %s: %w", a.code, err)
			}
		}

		_, err = pool.Pool.Exec(ctx, `
			INSERT INTO cat_account_roles (hospital_id, role, account_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (hospital_id, role) DO UPDATE SET account_id = $3
		`, hospitalID, a.role, accountID)
		if err != nil {
			return fmt.Errorf("bind role %s: %w", a.role, err)
		}
	}

	log.Infow("chart of accounts seeded", "accounts", len(accounts))
	return nil
}

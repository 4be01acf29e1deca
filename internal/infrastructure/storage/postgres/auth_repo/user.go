// Package auth_repo provides PostgreSQL storage for users, roles and tokens.
package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rxledger/internal/core/apperror"
	appctx "rxledger/internal/core/context"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/auth"
	"rxledger/internal/infrastructure/storage/postgres"
)

const (
	usersTable        = "sys_users"
	userRolesTable    = "sys_user_roles"
	userBranchesTable = "sys_user_branches"
)

var userColumns = []string{
	"id", "hospital_id", "email", "password_hash",
	"first_name", "last_name", "is_active", "is_admin",
	"last_login_at", "failed_login_attempts", "locked_until",
	"created_at", "updated_at", "deleted_at", "version",
}

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ auth.UserRepository = (*UserRepo)(nil)

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID, user.HospitalID, user.Email, user.PasswordHash,
			user.FirstName, user.LastName, user.IsActive, user.IsAdmin,
			user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil,
			user.CreatedAt, user.UpdatedAt, user.DeletedAt, user.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.baseSelect(ctx).Where(squirrel.Eq{"id": userID}).Limit(1)
	return r.getOne(ctx, q, userID.String())
}

// GetByEmail retrieves a user by email within the current hospital.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := r.baseSelect(ctx).Where(squirrel.Eq{"email": email}).Limit(1)
	return r.getOne(ctx, q, email)
}

func (r *UserRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*auth.User, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// Update updates user data with optimistic locking.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.builder.Update(usersTable).
		Set("email", user.Email).
		Set("password_hash", user.PasswordHash).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("is_active", user.IsActive).
		Set("is_admin", user.IsAdmin).
		Set("last_login_at", user.LastLoginAt).
		Set("failed_login_attempts", user.FailedLoginAttempts).
		Set("locked_until", user.LockedUntil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{
			"id":      user.ID,
			"version": user.Version,
		}).
		Where(r.hospitalScope(ctx))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("user", user.ID.String())
	}

	user.Version++
	return nil
}

// Delete soft-deletes a user.
func (r *UserRepo) Delete(ctx context.Context, userID id.ID) error {
	q := r.builder.Update(usersTable).
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		Where(r.hospitalScope(ctx)).
		Where("deleted_at IS NULL")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID.String())
	}

	return nil
}

// List retrieves users with filtering.
func (r *UserRepo) List(ctx context.Context, f auth.UserFilter) ([]auth.User, int, error) {
	q := r.baseSelect(ctx)

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
		})
	}
	if f.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *f.IsActive})
	}
	if f.RoleCode != "" {
		q = q.Where(squirrel.Expr(
			`id IN (SELECT ur.user_id FROM `+userRolesTable+` ur
			 JOIN `+rolesTable+` r ON r.id = ur.role_id WHERE r.code = ?)`,
			f.RoleCode,
		))
	}

	countSQL, countArgs, err := r.builder.
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	q = q.OrderBy("email")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var users []auth.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("select users: %w", err)
	}

	return users, total, nil
}

// LoadRoles loads the user's roles.
func (r *UserRepo) LoadRoles(ctx context.Context, userID id.ID) ([]auth.Role, error) {
	q := r.builder.Select(
		"r.id", "r.code", "r.name", "r.description", "r.is_system",
		"r.created_at", "r.updated_at",
	).
		From(rolesTable + " r").
		Join(userRolesTable + " ur ON ur.role_id = r.id").
		Where(squirrel.Eq{"ur.user_id": userID}).
		OrderBy("r.code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var roles []auth.Role
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &roles, sql, args...); err != nil {
		return nil, fmt.Errorf("select roles: %w", err)
	}

	return roles, nil
}

// LoadPermissions loads the user's permission codes, flattened across roles.
func (r *UserRepo) LoadPermissions(ctx context.Context, userID id.ID) ([]string, error) {
	sql := `
		SELECT DISTINCT p.code
		FROM ` + permissionsTable + ` p
		JOIN ` + rolePermissionsTable + ` rp ON rp.permission_id = p.id
		JOIN ` + userRolesTable + ` ur ON ur.role_id = rp.role_id
		WHERE ur.user_id = $1
		ORDER BY p.code
	`

	var codes []string
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &codes, sql, userID); err != nil {
		return nil, fmt.Errorf("select permissions: %w", err)
	}

	return codes, nil
}

// LoadBranches loads the branch IDs the user may access.
func (r *UserRepo) LoadBranches(ctx context.Context, userID id.ID) ([]string, error) {
	q := r.builder.Select("branch_id").
		From(userBranchesTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("branch_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var branches []string
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &branches, sql, args...); err != nil {
		return nil, fmt.Errorf("select branches: %w", err)
	}

	return branches, nil
}

// AssignRole assigns a role to a user. Re-assigning is a no-op.
func (r *UserRepo) AssignRole(ctx context.Context, userID, roleID id.ID, grantedBy id.ID) error {
	q := r.builder.Insert(userRolesTable).
		Columns("user_id", "role_id", "granted_by", "granted_at").
		Values(userID, roleID, grantedBy, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (user_id, role_id) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewNotFound("role", roleID.String())
		}
		return fmt.Errorf("assign role: %w", err)
	}

	return nil
}

// RevokeRole revokes a role from a user.
func (r *UserRepo) RevokeRole(ctx context.Context, userID, roleID id.ID) error {
	q := r.builder.Delete(userRolesTable).
		Where(squirrel.Eq{
			"user_id": userID,
			"role_id": roleID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}

	return nil
}

// GrantBranch grants the user access to a branch.
func (r *UserRepo) GrantBranch(ctx context.Context, userID, branchID id.ID) error {
	q := r.builder.Insert(userBranchesTable).
		Columns("user_id", "branch_id", "granted_at").
		Values(userID, branchID, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (user_id, branch_id) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("grant branch: %w", err)
	}

	return nil
}

// Exists checks if an email is already registered within the hospital.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	q := r.builder.Select("1").
		From(usersTable).
		Where(squirrel.Eq{"email": email}).
		Where(r.hospitalScope(ctx)).
		Where("deleted_at IS NULL").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}

	return true, nil
}

func (r *UserRepo) baseSelect(ctx context.Context) squirrel.SelectBuilder {
	return r.builder.Select(userColumns...).
		From(usersTable).
		Where(r.hospitalScope(ctx)).
		Where("deleted_at IS NULL")
}

func (r *UserRepo) hospitalScope(ctx context.Context) squirrel.Eq {
	return squirrel.Eq{"hospital_id": appctx.GetHospitalID(ctx)}
}

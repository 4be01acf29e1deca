package auth_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"rxledger/internal/core/apperror"
	"rxledger/internal/core/id"
	"rxledger/internal/domain/auth"
	"rxledger/internal/infrastructure/storage/postgres"
)

const (
	rolesTable           = "sys_roles"
	permissionsTable     = "sys_permissions"
	rolePermissionsTable = "sys_role_permissions"
)

var roleColumns = []string{
	"id", "code", "name", "description", "is_system", "created_at", "updated_at",
}

var permissionColumns = []string{
	"id", "code", "name", "description", "resource", "action", "created_at",
}

// RoleRepo implements auth.RoleRepository. Roles are platform-wide,
// not hospital-scoped.
type RoleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRoleRepo creates a new role repository.
func NewRoleRepo(txManager *postgres.TxManager) *RoleRepo {
	return &RoleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ auth.RoleRepository = (*RoleRepo)(nil)

func (r *RoleRepo) Create(ctx context.Context, role *auth.Role) error {
	q := r.builder.Insert(rolesTable).
		Columns(roleColumns...).
		Values(
			role.ID, role.Code, role.Name, role.Description,
			role.IsSystem, role.CreatedAt, role.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("role", "code", role.Code)
		}
		return fmt.Errorf("insert role: %w", err)
	}

	return nil
}

func (r *RoleRepo) GetByID(ctx context.Context, roleID id.ID) (*auth.Role, error) {
	q := r.builder.Select(roleColumns...).
		From(rolesTable).
		Where(squirrel.Eq{"id": roleID}).
		Limit(1)
	return r.getOne(ctx, q, roleID.String())
}

func (r *RoleRepo) GetByCode(ctx context.Context, code string) (*auth.Role, error) {
	q := r.builder.Select(roleColumns...).
		From(rolesTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)
	return r.getOne(ctx, q, code)
}

func (r *RoleRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*auth.Role, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var role auth.Role
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &role, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("role", key)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}

	return &role, nil
}

func (r *RoleRepo) Update(ctx context.Context, role *auth.Role) error {
	q := r.builder.Update(rolesTable).
		Set("name", role.Name).
		Set("description", role.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": role.ID}).
		Where(squirrel.Eq{"is_system": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"system roles cannot be modified")
	}

	return nil
}

// Delete removes a non-system role and its permission bindings.
func (r *RoleRepo) Delete(ctx context.Context, roleID id.ID) error {
	q := r.builder.Delete(rolesTable).
		Where(squirrel.Eq{
			"id":        roleID,
			"is_system": false,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("role is still assigned to users")
		}
		return fmt.Errorf("delete role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"system roles cannot be deleted")
	}

	return nil
}

func (r *RoleRepo) List(ctx context.Context) ([]auth.Role, error) {
	q := r.builder.Select(roleColumns...).
		From(rolesTable).
		OrderBy("code")

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

// LoadPermissions loads the role's permissions.
func (r *RoleRepo) LoadPermissions(ctx context.Context, roleID id.ID) ([]auth.Permission, error) {
	q := r.builder.Select(
		"p.id", "p.code", "p.name", "p.description",
		"p.resource", "p.action", "p.created_at",
	).
		From(permissionsTable + " p").
		Join(rolePermissionsTable + " rp ON rp.permission_id = p.id").
		Where(squirrel.Eq{"rp.role_id": roleID}).
		OrderBy("p.code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var perms []auth.Permission
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &perms, sql, args...); err != nil {
		return nil, fmt.Errorf("select permissions: %w", err)
	}

	return perms, nil
}

func (r *RoleRepo) AssignPermission(ctx context.Context, roleID, permissionID id.ID) error {
	q := r.builder.Insert(rolePermissionsTable).
		Columns("role_id", "permission_id").
		Values(roleID, permissionID).
		Suffix("ON CONFLICT (role_id, permission_id) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewNotFound("permission", permissionID.String())
		}
		return fmt.Errorf("assign permission: %w", err)
	}

	return nil
}

func (r *RoleRepo) RevokePermission(ctx context.Context, roleID, permissionID id.ID) error {
	q := r.builder.Delete(rolePermissionsTable).
		Where(squirrel.Eq{
			"role_id":       roleID,
			"permission_id": permissionID,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("revoke permission: %w", err)
	}

	return nil
}

// PermissionRepo implements auth.PermissionRepository.
type PermissionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPermissionRepo creates a new permission repository.
func NewPermissionRepo(txManager *postgres.TxManager) *PermissionRepo {
	return &PermissionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ auth.PermissionRepository = (*PermissionRepo)(nil)

func (r *PermissionRepo) GetByCode(ctx context.Context, code string) (*auth.Permission, error) {
	q := r.builder.Select(permissionColumns...).
		From(permissionsTable).
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var perm auth.Permission
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &perm, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("permission", code)
		}
		return nil, fmt.Errorf("get permission: %w", err)
	}

	return &perm, nil
}

func (r *PermissionRepo) List(ctx context.Context) ([]auth.Permission, error) {
	return r.list(ctx, squirrel.Eq{})
}

func (r *PermissionRepo) ListByResource(ctx context.Context, resource string) ([]auth.Permission, error) {
	return r.list(ctx, squirrel.Eq{"resource": resource})
}

func (r *PermissionRepo) list(ctx context.Context, where squirrel.Eq) ([]auth.Permission, error) {
	q := r.builder.Select(permissionColumns...).
		From(permissionsTable).
		OrderBy("resource", "action")
	if len(where) > 0 {
		q = q.Where(where)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var perms []auth.Permission
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &perms, sql, args...); err != nil {
		return nil, fmt.Errorf("select permissions: %w", err)
	}

	return perms, nil
}

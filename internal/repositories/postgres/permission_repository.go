package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const permissionColumns = "id, role_id, resource_id, scope, action, kind, created_at, updated_at"

// PostgresPermissionRepository implements PermissionRepository using PostgreSQL
type PostgresPermissionRepository struct {
	db *sql.DB
}

// NewPostgresPermissionRepository creates a new PostgreSQL permission repository
func NewPostgresPermissionRepository(db *sql.DB) repositories.PermissionRepository {
	return &PostgresPermissionRepository{db: db}
}

// Store inserts or updates a permission.
// Rows are keyed on (role_id, resource_id, scope, action), so storing a second
// record for the same scope updates the kind of the existing row instead of
// inserting a duplicate. The persisted ID is written back to p.
func (r *PostgresPermissionRepository) Store(ctx context.Context, p *entities.Permission) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid permission: %w", err)
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	scope, action := entities.ScopeColumns(p.Scope)

	query := `
		INSERT INTO permissions (` + permissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (role_id, resource_id, scope, action)
		DO UPDATE SET kind = EXCLUDED.kind, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.RoleID, p.ResourceID, scope, action, string(p.Kind), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store permission: %w", err)
	}

	return nil
}

// Count returns the number of permissions matching the filter
func (r *PostgresPermissionRepository) Count(ctx context.Context, filter *repositories.PermissionFilter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, fmt.Errorf("invalid permission filter: %w", err)
	}

	where, args := buildFilterClause(filter)
	query := "SELECT COUNT(*) FROM permissions WHERE " + where

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count permissions: %w", err)
	}

	return count, nil
}

// List retrieves permissions matching the filter
func (r *PostgresPermissionRepository) List(ctx context.Context, filter *repositories.PermissionFilter) ([]*entities.Permission, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid permission filter: %w", err)
	}

	where, args := buildFilterClause(filter)
	query := "SELECT " + permissionColumns + " FROM permissions WHERE " + where + " ORDER BY created_at, id"

	return r.query(ctx, query, args...)
}

// ListByResource retrieves every permission defined on a resource
func (r *PostgresPermissionRepository) ListByResource(ctx context.Context, resourceID string) ([]*entities.Permission, error) {
	if resourceID == "" {
		return nil, fmt.Errorf("resource ID is required")
	}

	query := `
		SELECT ` + permissionColumns + `
		FROM permissions
		WHERE resource_id = $1
		ORDER BY role_id, scope, action
	`
	return r.query(ctx, query, resourceID)
}

func (r *PostgresPermissionRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entities.Permission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	permissions := []*entities.Permission{}
	for rows.Next() {
		var p entities.Permission
		var scope, action, kind string

		err := rows.Scan(&p.ID, &p.RoleID, &p.ResourceID, &scope, &action, &kind, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}

		if p.Scope, err = entities.ScopeFromColumns(scope, action); err != nil {
			return nil, fmt.Errorf("invalid permission %s: %w", p.ID, err)
		}
		if p.Kind, err = entities.ParseKind(kind); err != nil {
			return nil, fmt.Errorf("invalid permission %s: %w", p.ID, err)
		}

		permissions = append(permissions, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating permissions: %w", err)
	}

	return permissions, nil
}

// buildFilterClause renders a PermissionFilter as a WHERE clause with positional arguments
func buildFilterClause(filter *repositories.PermissionFilter) (string, []interface{}) {
	clauses := []string{"resource_id = $1"}
	args := []interface{}{filter.ResourceID}
	argIdx := 2

	if filter.RoleID != "" {
		clauses = append(clauses, fmt.Sprintf("role_id = $%d", argIdx))
		args = append(args, filter.RoleID)
		argIdx++
	}

	var branches []string
	if len(filter.ActionKinds) > 0 {
		branches = append(branches, fmt.Sprintf("(scope = '%s' AND action = $%d AND kind = ANY($%d))",
			entities.ScopeAction, argIdx, argIdx+1))
		args = append(args, filter.Action, pq.Array(entities.KindStrings(filter.ActionKinds)))
		argIdx += 2
	}
	if len(filter.BlanketKinds) > 0 {
		branches = append(branches, fmt.Sprintf("(scope = '%s' AND kind = ANY($%d))",
			entities.ScopeBlanket, argIdx))
		args = append(args, pq.Array(entities.KindStrings(filter.BlanketKinds)))
	}
	clauses = append(clauses, "("+strings.Join(branches, " OR ")+")")

	return strings.Join(clauses, " AND "), args
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/asakaida/rolegate/internal/entities"
	"github.com/asakaida/rolegate/internal/repositories"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const permissionColumns = "id, role_id, resource_id, scope, action, kind, created_at, updated_at"

// SQLitePermissionRepository implements PermissionRepository using SQLite
type SQLitePermissionRepository struct {
	db *sql.DB
}

// NewSQLitePermissionRepository creates a new SQLite permission repository
func NewSQLitePermissionRepository(db *sql.DB) repositories.PermissionRepository {
	return &SQLitePermissionRepository{db: db}
}

// Store inserts or updates a permission, keyed on (role_id, resource_id, scope, action)
func (r *SQLitePermissionRepository) Store(ctx context.Context, p *entities.Permission) error {
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (role_id, resource_id, scope, action)
		DO UPDATE SET kind = excluded.kind, updated_at = excluded.updated_at
		RETURNING id, created_at
	`
	// RETURNING columns carry no declared type, so created_at may come back as text
	var createdAt interface{}
	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.RoleID, p.ResourceID, scope, action, string(p.Kind), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &createdAt)
	if err != nil {
		return fmt.Errorf("failed to store permission: %w", err)
	}

	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return fmt.Errorf("failed to read stored creation time: %w", err)
	}

	return nil
}

// Count returns the number of permissions matching the filter
func (r *SQLitePermissionRepository) Count(ctx context.Context, filter *repositories.PermissionFilter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, fmt.Errorf("invalid permission filter: %w", err)
	}

	where, args := buildFilterClause(filter)

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM permissions WHERE "+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count permissions: %w", err)
	}

	return count, nil
}

// List retrieves permissions matching the filter
func (r *SQLitePermissionRepository) List(ctx context.Context, filter *repositories.PermissionFilter) ([]*entities.Permission, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("invalid permission filter: %w", err)
	}

	where, args := buildFilterClause(filter)
	query := "SELECT " + permissionColumns + " FROM permissions WHERE " + where + " ORDER BY created_at, id"

	return r.query(ctx, query, args...)
}

// ListByResource retrieves every permission defined on a resource
func (r *SQLitePermissionRepository) ListByResource(ctx context.Context, resourceID string) ([]*entities.Permission, error) {
	if resourceID == "" {
		return nil, fmt.Errorf("resource ID is required")
	}

	query := `
		SELECT ` + permissionColumns + `
		FROM permissions
		WHERE resource_id = ?
		ORDER BY role_id, scope, action
	`
	return r.query(ctx, query, resourceID)
}

func (r *SQLitePermissionRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entities.Permission, error) {
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

// buildFilterClause renders a PermissionFilter as a WHERE clause with ? placeholders
func buildFilterClause(filter *repositories.PermissionFilter) (string, []interface{}) {
	clauses := []string{"resource_id = ?"}
	args := []interface{}{filter.ResourceID}

	if filter.RoleID != "" {
		clauses = append(clauses, "role_id = ?")
		args = append(args, filter.RoleID)
	}

	var branches []string
	if len(filter.ActionKinds) > 0 {
		branches = append(branches, fmt.Sprintf("(scope = '%s' AND action = ? AND kind IN (%s))",
			entities.ScopeAction, placeholders(len(filter.ActionKinds))))
		args = append(args, filter.Action)
		for _, k := range filter.ActionKinds {
			args = append(args, string(k))
		}
	}
	if len(filter.BlanketKinds) > 0 {
		branches = append(branches, fmt.Sprintf("(scope = '%s' AND kind IN (%s))",
			entities.ScopeBlanket, placeholders(len(filter.BlanketKinds))))
		for _, k := range filter.BlanketKinds {
			args = append(args, string(k))
		}
	}
	clauses = append(clauses, "("+strings.Join(branches, " OR ")+")")

	return strings.Join(clauses, " AND "), args
}

// parseTimestamp converts a timestamp read without a declared column type
func parseTimestamp(v interface{}) (time.Time, error) {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}

	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

package postgres

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) HasRole(ctx context.Context, userID string, role domain.Role) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		userID, string(role),
	).Scan(&exists)
	if err != nil {
		if isBadID(err) {
			return false, nil
		}
		return false, fmt.Errorf("has role: %w", err)
	}
	return exists, nil
}

func (r *RoleRepository) ListForUser(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role::text FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, domain.Role(role))
	}
	return roles, rows.Err()
}

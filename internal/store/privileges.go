package store

import (
	"context"
	"fmt"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PrivilegeStore reads the privilege matrix from Postgres.
type PrivilegeStore struct {
	pool *pgxpool.Pool
}

func NewPrivilegeStore(pool *pgxpool.Pool) *PrivilegeStore {
	return &PrivilegeStore{pool: pool}
}

func (s *PrivilegeStore) PrivilegesForTypes(ctx context.Context, membershipTypes []string) ([]approval.Privilege, error) {
	if len(membershipTypes) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT membership_type, privilege, can_view, can_edit, can_execute
		FROM privileges
		WHERE membership_type = ANY($1)
		ORDER BY membership_type, privilege`,
		membershipTypes)
	if err != nil {
		return nil, fmt.Errorf("querying privileges: %w", err)
	}
	defer rows.Close()

	var privs []approval.Privilege
	for rows.Next() {
		var p approval.Privilege
		if err := rows.Scan(&p.MembershipType, &p.Name, &p.View, &p.Edit, &p.Execute); err != nil {
			return nil, fmt.Errorf("scanning privilege row: %w", err)
		}
		privs = append(privs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading privilege rows: %w", err)
	}
	return privs, nil
}

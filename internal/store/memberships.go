package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/rbac"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoAdminMembership means the principal holds no toggleable admin
// membership row.
var ErrNoAdminMembership = errors.New("no admin membership to toggle")

// MembershipStore reads membership grants from Postgres. Grant params
// are parsed into their scope variant here, once, at the store
// boundary.
type MembershipStore struct {
	pool *pgxpool.Pool
}

func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

// GrantsByPrincipal returns all grants for the principal ordered by
// start date then type. The ordering fixes the tie-break used when
// several grants could justify the same decision.
func (s *MembershipStore) GrantsByPrincipal(ctx context.Context, principal string) ([]approval.Grant, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT email, membership_type, start_date, end_date, params
		FROM memberships
		WHERE email = $1
		ORDER BY start_date, membership_type`,
		principal)
	if err != nil {
		return nil, fmt.Errorf("querying memberships: %w", err)
	}
	defer rows.Close()

	var grants []approval.Grant
	for rows.Next() {
		var (
			g       approval.Grant
			endDate pgtype.Timestamptz
			params  []byte
		)
		if err := rows.Scan(&g.Principal, &g.Type, &g.StartsAt, &endDate, &params); err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		if endDate.Valid {
			end := endDate.Time
			g.EndsAt = &end
		}
		g.Scope = approval.ParseScope(params)
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading membership rows: %w", err)
	}
	return grants, nil
}

// ToggleAdminLevel flips the principal's most recent admin membership
// between ADMIN_L1 and ADMIN_L2 and returns the new type.
func (s *MembershipStore) ToggleAdminLevel(ctx context.Context, principal string) (string, error) {
	var newType string
	err := s.pool.QueryRow(ctx, `
		UPDATE memberships
		SET membership_type = CASE membership_type
			WHEN $2 THEN $3
			ELSE $2
		END
		WHERE id = (
			SELECT id FROM memberships
			WHERE email = $1 AND membership_type IN ($2, $3)
			ORDER BY start_date DESC
			LIMIT 1
		)
		RETURNING membership_type`,
		principal, rbac.TypeAdminL1, rbac.TypeAdminL2).Scan(&newType)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoAdminMembership
	}
	if err != nil {
		return "", fmt.Errorf("toggling admin membership: %w", err)
	}
	return newType, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditStore appends approval audit entries. Writes are best-effort
// from the workflow's point of view; this store just reports errors.
type AuditStore struct {
	pool *pgxpool.Pool
}

func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

func (s *AuditStore) Append(ctx context.Context, entry approval.AuditEntry) error {
	membershipType := pgtype.Text{}
	if entry.MembershipTypeUsed != "" {
		membershipType = pgtype.Text{String: entry.MembershipTypeUsed, Valid: true}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO approval_audit (profile_id, approver_email, membership_type_used, action, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ProfileID, entry.Approver, membershipType, entry.Action, entry.At)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

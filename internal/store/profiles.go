package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEmail means a profile already exists for the email.
var ErrDuplicateEmail = errors.New("profile already exists for this email")

const profileColumns = `
	id, name, email, graduation_year, branch, company, avatar_key,
	status, approved_by, approved_at, created_at`

// ProfileStore is the target registry over Postgres.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// CreateParams holds the fields for a new onboarding profile.
type CreateParams struct {
	Name           string
	Email          string
	GraduationYear int
	Branch         string
	Company        string
	AvatarKey      string
}

func (s *ProfileStore) Create(ctx context.Context, p CreateParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (name, email, graduation_year, branch, company, avatar_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.Name, p.Email, p.GraduationYear, p.Branch, p.Company, p.AvatarKey).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrDuplicateEmail
		}
		return uuid.Nil, fmt.Errorf("inserting profile: %w", err)
	}
	return id, nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*approval.Profile, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+profileColumns+` FROM profiles WHERE id = $1`, id)
	profile, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile by id: %w", err)
	}
	return &profile, nil
}

func (s *ProfileStore) GraduationYearByEmail(ctx context.Context, email string) (int, bool, error) {
	var year int
	err := s.pool.QueryRow(ctx,
		`SELECT graduation_year FROM profiles WHERE email = $1`, email).Scan(&year)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying graduation year: %w", err)
	}
	return year, true, nil
}

func (s *ProfileStore) ListPending(ctx context.Context) ([]approval.Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+profileColumns+`
		FROM profiles
		WHERE status = 'PENDING'
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying pending profiles: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func (s *ProfileStore) ListPendingByYears(ctx context.Context, years []int) ([]approval.Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+profileColumns+`
		FROM profiles
		WHERE status = 'PENDING' AND graduation_year = ANY($1)
		ORDER BY created_at`,
		years)
	if err != nil {
		return nil, fmt.Errorf("querying pending profiles by years: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

// ResolveDecision applies the status transition in a single
// conditional UPDATE keyed on the row still being PENDING. A zero
// rows-affected result means a concurrent request won the race.
func (s *ProfileStore) ResolveDecision(ctx context.Context, id uuid.UUID, status approval.Status, approver string, at time.Time) (bool, error) {
	approvedAt := pgtype.Timestamptz{}
	if status == approval.StatusApproved {
		approvedAt = pgtype.Timestamptz{Time: at, Valid: true}
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles
		SET status = $2, approved_by = $3, approved_at = $4
		WHERE id = $1 AND status = 'PENDING'`,
		id, status, approver, approvedAt)
	if err != nil {
		return false, fmt.Errorf("updating profile status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SearchApproved returns approved profiles for the directory,
// filtered by an optional case-insensitive term over name, branch,
// and company.
func (s *ProfileStore) SearchApproved(ctx context.Context, term string, limit, offset int64) ([]approval.Profile, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+profileColumns+`
		FROM profiles
		WHERE status = 'APPROVED'
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%'
			OR branch ILIKE '%' || $1 || '%'
			OR company ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3`,
		term, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying directory: %w", err)
	}
	defer rows.Close()
	return collectProfiles(rows)
}

func (s *ProfileStore) CountApproved(ctx context.Context, term string) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM profiles
		WHERE status = 'APPROVED'
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%'
			OR branch ILIKE '%' || $1 || '%'
			OR company ILIKE '%' || $1 || '%')`,
		term).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("counting directory: %w", err)
	}
	return total, nil
}

func scanProfile(row pgx.Row) (approval.Profile, error) {
	var (
		p          approval.Profile
		approvedBy pgtype.Text
		approvedAt pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.GraduationYear, &p.Branch,
		&p.Company, &p.AvatarKey, &p.Status, &approvedBy, &approvedAt, &p.CreatedAt)
	if err != nil {
		return approval.Profile{}, err
	}
	if approvedBy.Valid {
		p.ApprovedBy = &approvedBy.String
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		p.ApprovedAt = &t
	}
	return p, nil
}

func collectProfiles(rows pgx.Rows) ([]approval.Profile, error) {
	var profiles []approval.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading profile rows: %w", err)
	}
	return profiles, nil
}

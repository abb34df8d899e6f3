package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"dentallead_backend/platform/apperr"
)

const (
	clinicNotFoundMessage   = "clinic not found"
	coverageNotFoundMessage = "coverage not found"
	uniqueViolationCode     = "23505"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new clinics repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const clinicColumns = `
	id, name, email, phone, city, is_active, last_assigned_at, created_at, updated_at`

func scanClinic(row pgx.Row) (Clinic, error) {
	var c Clinic
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.City,
		&c.IsActive, &c.LastAssignedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateClinic inserts a clinic. City is stored lower-cased because the
// distribution engine matches on the normalized pair.
func (r *Repo) CreateClinic(ctx context.Context, params CreateClinicParams) (Clinic, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clinics (name, email, phone, city)
		VALUES ($1, lower($2), $3, lower($4))
		RETURNING `+clinicColumns,
		params.Name, params.Email, params.Phone, params.City,
	)

	c, err := scanClinic(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Clinic{}, apperr.Conflict("clinic email already registered")
		}
		return Clinic{}, fmt.Errorf("create clinic: %w", err)
	}

	return c, nil
}

// GetClinic retrieves a clinic by ID.
func (r *Repo) GetClinic(ctx context.Context, id uuid.UUID) (Clinic, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clinicColumns+` FROM clinics WHERE id = $1`, id)

	c, err := scanClinic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Clinic{}, apperr.NotFound(clinicNotFoundMessage)
		}
		return Clinic{}, fmt.Errorf("get clinic: %w", err)
	}

	return c, nil
}

// ListClinics returns clinics, newest first.
func (r *Repo) ListClinics(ctx context.Context, page, pageSize int) ([]Clinic, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM clinics`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clinics: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+clinicColumns+` FROM clinics
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list clinics: %w", err)
	}
	defer rows.Close()

	clinics := make([]Clinic, 0, pageSize)
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan clinic: %w", err)
		}
		clinics = append(clinics, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate clinics: %w", err)
	}

	return clinics, total, nil
}

// UpdateClinic patches a clinic. Only non-nil fields change.
func (r *Repo) UpdateClinic(ctx context.Context, id uuid.UUID, params UpdateClinicParams) (Clinic, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	add := func(format string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(format, len(args)))
	}

	if params.Name != nil {
		add("name = $%d", *params.Name)
	}
	if params.Email != nil {
		add("email = lower($%d)", *params.Email)
	}
	if params.Phone != nil {
		add("phone = $%d", *params.Phone)
	}
	if params.City != nil {
		add("city = lower($%d)", *params.City)
	}
	if params.IsActive != nil {
		add("is_active = $%d", *params.IsActive)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE clinics SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+clinicColumns,
		args...,
	)

	c, err := scanClinic(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Clinic{}, apperr.NotFound(clinicNotFoundMessage)
		}
		if isUniqueViolation(err) {
			return Clinic{}, apperr.Conflict("clinic email already registered")
		}
		return Clinic{}, fmt.Errorf("update clinic: %w", err)
	}

	return c, nil
}

const coverageColumns = `id, clinic_id, city, service, is_active, created_at`

func scanCoverage(row pgx.Row) (Coverage, error) {
	var cov Coverage
	err := row.Scan(&cov.ID, &cov.ClinicID, &cov.City, &cov.Service, &cov.IsActive, &cov.CreatedAt)
	return cov, err
}

// CreateCoverage declares a (city, service) pair for a clinic. The pair is
// stored lower-cased to match the engine's normalized lookup.
func (r *Repo) CreateCoverage(ctx context.Context, params CreateCoverageParams) (Coverage, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO coverages (clinic_id, city, service)
		VALUES ($1, lower($2), lower($3))
		RETURNING `+coverageColumns,
		params.ClinicID, params.City, params.Service,
	)

	cov, err := scanCoverage(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Coverage{}, apperr.Conflict("coverage already declared")
		}
		return Coverage{}, fmt.Errorf("create coverage: %w", err)
	}

	return cov, nil
}

// ListCoverages returns a clinic's coverage pairs.
func (r *Repo) ListCoverages(ctx context.Context, clinicID uuid.UUID) ([]Coverage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+coverageColumns+` FROM coverages
		WHERE clinic_id = $1
		ORDER BY city, service`,
		clinicID,
	)
	if err != nil {
		return nil, fmt.Errorf("list coverages: %w", err)
	}
	defer rows.Close()

	var coverages []Coverage
	for rows.Next() {
		cov, err := scanCoverage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coverage: %w", err)
		}
		coverages = append(coverages, cov)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coverages: %w", err)
	}

	return coverages, nil
}

// SetCoverageActive toggles a coverage pair, scoped to its clinic.
func (r *Repo) SetCoverageActive(ctx context.Context, clinicID, coverageID uuid.UUID, active bool) (Coverage, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE coverages SET is_active = $3
		WHERE id = $1 AND clinic_id = $2
		RETURNING `+coverageColumns,
		coverageID, clinicID, active,
	)

	cov, err := scanCoverage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Coverage{}, apperr.NotFound(coverageNotFoundMessage)
		}
		return Coverage{}, fmt.Errorf("toggle coverage: %w", err)
	}

	return cov, nil
}

// DeleteCoverage removes a coverage pair, scoped to its clinic.
func (r *Repo) DeleteCoverage(ctx context.Context, clinicID, coverageID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM coverages WHERE id = $1 AND clinic_id = $2`,
		coverageID, clinicID,
	)
	if err != nil {
		return fmt.Errorf("delete coverage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(coverageNotFoundMessage)
	}

	return nil
}

// GetContact returns the notification contact for a clinic.
func (r *Repo) GetContact(ctx context.Context, id uuid.UUID) (Contact, error) {
	var contact Contact
	err := r.pool.QueryRow(ctx, `SELECT id, name, email FROM clinics WHERE id = $1`, id).
		Scan(&contact.ID, &contact.Name, &contact.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, apperr.NotFound(clinicNotFoundMessage)
		}
		return Contact{}, fmt.Errorf("get clinic contact: %w", err)
	}

	return contact, nil
}

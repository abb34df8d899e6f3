package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dentallead_backend/platform/apperr"
)

const grantNotFoundMessage = "no active subscription for clinic"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new subscriptions repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const subscriptionColumns = `
	id, clinic_id, quota_total, quota_used, status, started_at, expires_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var s Subscription
	err := row.Scan(
		&s.ID, &s.ClinicID, &s.QuotaTotal, &s.QuotaUsed, &s.Status,
		&s.StartedAt, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// List returns grants with optional clinic and status filters, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Subscription, int, error) {
	page, pageSize := normalizePage(params.Page, params.PageSize)

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if params.ClinicID != nil {
		args = append(args, *params.ClinicID)
		where = append(where, "clinic_id = $"+strconv.Itoa(len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM subscriptions`+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count subscriptions: %w", err)
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions` + filter + `
		ORDER BY started_at DESC
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]Subscription, 0, pageSize)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return subs, total, nil
}

// Create inserts a fresh active grant.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Subscription, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (clinic_id, quota_total, expires_at)
		VALUES ($1, $2, $3)
		RETURNING `+subscriptionColumns,
		params.ClinicID, params.QuotaTotal, params.ExpiresAt,
	)

	s, err := scanSubscription(row)
	if err != nil {
		return Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	return s, nil
}

// CurrentGrant returns the clinic's most recent active, non-expired grant.
func (r *Repo) CurrentGrant(ctx context.Context, clinicID uuid.UUID) (Subscription, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE clinic_id = $1 AND status = 'active' AND expires_at > now()
		ORDER BY started_at DESC
		LIMIT 1`,
		clinicID,
	)

	s, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, apperr.NotFound(grantNotFoundMessage)
		}
		return Subscription{}, fmt.Errorf("get current grant: %w", err)
	}

	return s, nil
}

// TopUp adds quota to the clinic's current grant inside a transaction, or
// creates a fresh grant when the clinic has none active.
func (r *Repo) TopUp(ctx context.Context, params TopUpParams) (Subscription, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Subscription{}, false, fmt.Errorf("begin top-up: %w", err)
	}
	defer tx.Rollback(ctx)

	extension := time.Duration(params.ExtendDays) * 24 * time.Hour

	// Lock the current grant so concurrent top-ups serialize instead of
	// both creating fresh rows.
	var grantID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM subscriptions
		WHERE clinic_id = $1 AND status = 'active' AND expires_at > now()
		ORDER BY started_at DESC
		LIMIT 1
		FOR UPDATE`,
		params.ClinicID,
	).Scan(&grantID)

	var sub Subscription
	var created bool

	switch {
	case err == nil:
		row := tx.QueryRow(ctx, `
			UPDATE subscriptions
			SET quota_total = quota_total + $2,
			    expires_at = GREATEST(expires_at, now() + $3::interval),
			    updated_at = now()
			WHERE id = $1
			RETURNING `+subscriptionColumns,
			grantID, params.QuotaAdd, durationToInterval(extension),
		)
		sub, err = scanSubscription(row)
		if err != nil {
			return Subscription{}, false, fmt.Errorf("top up grant: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		row := tx.QueryRow(ctx, `
			INSERT INTO subscriptions (clinic_id, quota_total, expires_at)
			VALUES ($1, $2, now() + $3::interval)
			RETURNING `+subscriptionColumns,
			params.ClinicID, params.QuotaAdd, durationToInterval(extension),
		)
		sub, err = scanSubscription(row)
		if err != nil {
			return Subscription{}, false, fmt.Errorf("create grant from top-up: %w", err)
		}
		created = true
	default:
		return Subscription{}, false, fmt.Errorf("find current grant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Subscription{}, false, fmt.Errorf("commit top-up: %w", err)
	}

	return sub, created, nil
}

// ExpireSweep marks overdue active grants inactive.
func (r *Repo) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscriptions
		SET status = 'inactive', updated_at = now()
		WHERE status = 'active' AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire sweep: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ExpiringWithin returns active grants ending inside the horizon.
func (r *Repo) ExpiringWithin(ctx context.Context, now time.Time, horizon time.Duration) ([]ExpiringGrant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.clinic_id, c.name, c.email, GREATEST(s.quota_total - s.quota_used, 0), s.expires_at
		FROM subscriptions s
		JOIN clinics c ON c.id = s.clinic_id
		WHERE s.status = 'active' AND s.expires_at > $1 AND s.expires_at <= $2
		ORDER BY s.expires_at ASC`,
		now, now.Add(horizon),
	)
	if err != nil {
		return nil, fmt.Errorf("query expiring grants: %w", err)
	}
	defer rows.Close()

	var grants []ExpiringGrant
	for rows.Next() {
		var g ExpiringGrant
		if err := rows.Scan(&g.SubscriptionID, &g.ClinicID, &g.ClinicName, &g.ClinicEmail, &g.QuotaRemaining, &g.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan expiring grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expiring grants: %w", err)
	}

	return grants, nil
}

func durationToInterval(d time.Duration) string {
	return strconv.Itoa(int(d/time.Second)) + " seconds"
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

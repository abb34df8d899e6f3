package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dentallead_backend/internal/leads/domain"
	"dentallead_backend/platform/apperr"
)

const leadNotFoundMessage = "lead not found"

// candidateLimit caps how many clinics one distribution attempt considers.
const candidateLimit = 50

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Distribute persists the lead and routes it inside a single transaction.
// The lead row is always written; assignment, quota consumption, clinic
// fairness timestamp and the audit row all commit together or not at all.
func (r *Repo) Distribute(ctx context.Context, params DistributeParams) (DistributeResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return DistributeResult{}, fmt.Errorf("begin distribution: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	var leadID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO leads (city, service, full_name, phone, email, message, intent, source,
			consent_at, consent_text_version, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		params.City, params.Service, params.FullName, params.Phone, params.Email, params.Message,
		params.Intent, params.Source, params.ConsentAt, params.ConsentTextVersion, params.IP, params.UserAgent,
	).Scan(&leadID)
	if err != nil {
		return DistributeResult{}, fmt.Errorf("insert lead: %w", err)
	}

	candidates, err := fetchCandidates(ctx, tx, params.City, params.Service, now)
	if err != nil {
		return DistributeResult{}, err
	}

	result := DistributeResult{LeadID: leadID}

	for {
		sel := domain.Select(candidates)
		if sel.Winner == nil {
			result.Reason = sel.Reason
			details := map[string]any{"candidateCount": len(candidates)}
			if err := insertLog(ctx, tx, leadID, nil, params.City, params.Service, false, sel.Reason, details); err != nil {
				return DistributeResult{}, err
			}
			break
		}

		winner := *sel.Winner

		// Conditional increment guards against a concurrent attempt spending
		// the same quota slot. Zero rows means we lost the race; the
		// candidate is marked exhausted and selection retries.
		var quotaUsed, quotaTotal int
		err = tx.QueryRow(ctx, `
			UPDATE subscriptions
			SET quota_used = quota_used + 1, updated_at = now()
			WHERE id = $1 AND quota_used < quota_total
			RETURNING quota_used, quota_total`,
			winner.Grant.SubscriptionID,
		).Scan(&quotaUsed, &quotaTotal)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				markExhausted(candidates, winner.Grant.SubscriptionID)
				continue
			}
			return DistributeResult{}, fmt.Errorf("consume quota: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_assignments (lead_id, clinic_id) VALUES ($1, $2)`,
			leadID, winner.ClinicID,
		); err != nil {
			return DistributeResult{}, fmt.Errorf("insert assignment: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE clinics SET last_assigned_at = $2, updated_at = now() WHERE id = $1`,
			winner.ClinicID, now,
		); err != nil {
			return DistributeResult{}, fmt.Errorf("update clinic fairness timestamp: %w", err)
		}

		details := map[string]any{
			"subscriptionId": winner.Grant.SubscriptionID,
			"quotaBefore":    quotaUsed - 1,
			"quotaTotal":     quotaTotal,
		}
		if err := insertLog(ctx, tx, leadID, &winner.ClinicID, params.City, params.Service, true, domain.ReasonAssigned, details); err != nil {
			return DistributeResult{}, err
		}

		clinicID := winner.ClinicID
		subscriptionID := winner.Grant.SubscriptionID
		result.Assigned = true
		result.Reason = domain.ReasonAssigned
		result.ClinicID = &clinicID
		result.SubscriptionID = &subscriptionID
		result.QuotaRemaining = quotaTotal - quotaUsed
		break
	}

	if err := tx.Commit(ctx); err != nil {
		return DistributeResult{}, fmt.Errorf("commit distribution: %w", err)
	}

	return result, nil
}

// fetchCandidates loads every clinic eligible for (city, service): active,
// covering the pair, holding an active non-expired subscription. Each
// candidate carries its most recent such subscription.
func fetchCandidates(ctx context.Context, tx pgx.Tx, city, service string, now time.Time) ([]domain.Candidate, error) {
	rows, err := tx.Query(ctx, `
		SELECT c.id, c.last_assigned_at, s.id, s.quota_total, s.quota_used, s.started_at, s.expires_at
		FROM clinics c
		JOIN LATERAL (
			SELECT id, quota_total, quota_used, started_at, expires_at
			FROM subscriptions
			WHERE clinic_id = c.id AND status = 'active' AND expires_at > $3
			ORDER BY started_at DESC
			LIMIT 1
		) s ON TRUE
		WHERE c.is_active
		  AND EXISTS (
			SELECT 1 FROM coverages cov
			WHERE cov.clinic_id = c.id AND cov.city = $1 AND cov.service = $2 AND cov.is_active
		  )
		ORDER BY c.last_assigned_at ASC NULLS FIRST, c.id ASC
		LIMIT $4`,
		city, service, now, candidateLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(
			&c.ClinicID, &c.LastAssignedAt,
			&c.Grant.SubscriptionID, &c.Grant.QuotaTotal, &c.Grant.QuotaUsed,
			&c.Grant.StartedAt, &c.Grant.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return candidates, nil
}

// markExhausted flags the raced subscription as spent in the local candidate
// set so the selector skips it. Keeping the candidate in the slice preserves
// the NO_QUOTA outcome when everyone ends up spent.
func markExhausted(candidates []domain.Candidate, subscriptionID uuid.UUID) {
	for i := range candidates {
		if candidates[i].Grant.SubscriptionID == subscriptionID {
			candidates[i].Grant.QuotaUsed = candidates[i].Grant.QuotaTotal
		}
	}
}

func insertLog(ctx context.Context, tx pgx.Tx, leadID uuid.UUID, clinicID *uuid.UUID, city, service string, assigned bool, reason domain.Reason, details map[string]any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal log details: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_distribution_logs (lead_id, clinic_id, city, service, assigned, reason, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		leadID, clinicID, city, service, assigned, reason, payload,
	); err != nil {
		return fmt.Errorf("insert distribution log: %w", err)
	}

	return nil
}

const leadColumns = `
	l.id, l.city, l.service, l.full_name, l.phone, l.email, l.message, l.intent, l.source,
	l.status, l.note, l.contacted_at, l.consent_at, l.consent_text_version, a.clinic_id, l.created_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.City, &l.Service, &l.FullName, &l.Phone, &l.Email, &l.Message, &l.Intent, &l.Source,
		&l.Status, &l.Note, &l.ContactedAt, &l.ConsentAt, &l.ConsentTextVersion, &l.AssignedClinicID, &l.CreatedAt,
	)
	return l, err
}

// ListByClinic returns the leads assigned to a clinic, newest first.
func (r *Repo) ListByClinic(ctx context.Context, clinicID uuid.UUID, page, pageSize int) ([]Lead, int, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM lead_assignments WHERE clinic_id = $1`, clinicID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clinic leads: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		JOIN lead_assignments a ON a.lead_id = l.id
		WHERE a.clinic_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3`,
		clinicID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list clinic leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0, pageSize)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan clinic lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate clinic leads: %w", err)
	}

	return leads, total, nil
}

// GetForClinic returns one lead scoped to its assigned clinic.
func (r *Repo) GetForClinic(ctx context.Context, clinicID, leadID uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads l
		JOIN lead_assignments a ON a.lead_id = l.id
		WHERE l.id = $1 AND a.clinic_id = $2`,
		leadID, clinicID,
	)

	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get clinic lead: %w", err)
	}

	return l, nil
}

// UpdateStatus moves an assigned lead through its workflow. The first move
// away from "new" stamps contacted_at.
func (r *Repo) UpdateStatus(ctx context.Context, params UpdateStatusParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads l
		SET status = $3,
		    note = COALESCE($4, l.note),
		    contacted_at = CASE WHEN $3 <> 'new' AND l.contacted_at IS NULL THEN now() ELSE l.contacted_at END
		FROM lead_assignments a
		WHERE l.id = $1 AND a.lead_id = l.id AND a.clinic_id = $2
		RETURNING l.id, l.city, l.service, l.full_name, l.phone, l.email, l.message, l.intent, l.source,
			l.status, l.note, l.contacted_at, l.consent_at, l.consent_text_version, a.clinic_id, l.created_at`,
		params.LeadID, params.ClinicID, params.Status, params.Note,
	)

	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("update lead status: %w", err)
	}

	return l, nil
}

// ListDistributionLogs reads the audit log with optional filters.
func (r *Repo) ListDistributionLogs(ctx context.Context, params ListLogsParams) ([]DistributionLog, int, error) {
	page, pageSize := normalizePage(params.Page, params.PageSize)

	where := make([]string, 0, 5)
	args := make([]any, 0, 7)

	addFilter := func(clause string, value any) {
		args = append(args, value)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}

	if params.City != "" {
		addFilter("city = ", params.City)
	}
	if params.Service != "" {
		addFilter("service = ", params.Service)
	}
	if params.ClinicID != nil {
		addFilter("clinic_id = ", *params.ClinicID)
	}
	if params.Reason != "" {
		addFilter("reason = ", params.Reason)
	}
	if params.Assigned != nil {
		addFilter("assigned = ", *params.Assigned)
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM lead_distribution_logs`+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count distribution logs: %w", err)
	}

	query := `
		SELECT id, lead_id, clinic_id, city, service, assigned, reason, details, created_at
		FROM lead_distribution_logs` + filter + `
		ORDER BY created_at DESC
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list distribution logs: %w", err)
	}
	defer rows.Close()

	logs := make([]DistributionLog, 0, pageSize)
	for rows.Next() {
		var entry DistributionLog
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.ClinicID, &entry.City, &entry.Service,
			&entry.Assigned, &entry.Reason, &entry.Details, &entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan distribution log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate distribution logs: %w", err)
	}

	return logs, total, nil
}

// ListAssignments lists assignments joined with their leads, newest first.
func (r *Repo) ListAssignments(ctx context.Context, params ListAssignmentsParams) ([]AssignmentRecord, int, error) {
	page, pageSize := normalizePage(params.Page, params.PageSize)

	filter := ""
	args := []any{}
	if params.ClinicID != nil {
		filter = " WHERE a.clinic_id = $1"
		args = append(args, *params.ClinicID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM lead_assignments a`+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}

	query := `
		SELECT a.id, a.lead_id, a.clinic_id, c.name, l.city, l.service, l.full_name, a.created_at
		FROM lead_assignments a
		JOIN leads l ON l.id = a.lead_id
		JOIN clinics c ON c.id = a.clinic_id` + filter + `
		ORDER BY a.created_at DESC
		LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	records := make([]AssignmentRecord, 0, pageSize)
	for rows.Next() {
		var rec AssignmentRecord
		if err := rows.Scan(
			&rec.ID, &rec.LeadID, &rec.ClinicID, &rec.ClinicName,
			&rec.City, &rec.Service, &rec.FullName, &rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan assignment: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate assignments: %w", err)
	}

	return records, total, nil
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

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudblitz/enquiry-service/internal/domain"
)

// EnquiryFilter captures listing parameters. CreatedBy and AssignedTo are
// combined with OR when AccessibleBy is set, so non-admin callers see the
// union of owned and assigned records.
type EnquiryFilter struct {
	AccessibleBy *string
	Statuses     []domain.EnquiryStatus
	Priorities   []domain.EnquiryPriority
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// EnquiryRepository encapsulates enquiry persistence. All reads exclude
// soft-deleted rows.
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *domain.Enquiry) error
	Update(ctx context.Context, enquiry *domain.Enquiry) error
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Enquiry, error)
	ListWithFilter(ctx context.Context, filter EnquiryFilter) ([]domain.Enquiry, error)
	// LastAssignedWithin returns the most recently created live enquiry
	// whose assignee is among the given ids, or pgx.ErrNoRows.
	LastAssignedWithin(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error)
}

type enquiryRepository struct {
	pool *pgxpool.Pool
}

// NewEnquiryRepository instantiates the repository.
func NewEnquiryRepository(pool *pgxpool.Pool) EnquiryRepository {
	return &enquiryRepository{pool: pool}
}

const enquiryColumns = `id, customer_name, email, phone, message, status, priority,
               assigned_to, created_by, notes, created_at, updated_at, deleted_at`

func (r *enquiryRepository) Create(ctx context.Context, enquiry *domain.Enquiry) error {
	const query = `
        INSERT INTO enquiries (customer_name, email, phone, message, status, priority, assigned_to, created_by, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if enquiry.Notes == nil {
		enquiry.Notes = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		enquiry.CustomerName,
		enquiry.Email,
		enquiry.Phone,
		enquiry.Message,
		enquiry.Status,
		enquiry.Priority,
		enquiry.AssignedTo,
		enquiry.CreatedBy,
		enquiry.Notes,
	).Scan(&enquiry.ID, &enquiry.CreatedAt, &enquiry.UpdatedAt)
}

func (r *enquiryRepository) Update(ctx context.Context, enquiry *domain.Enquiry) error {
	const query = `
        UPDATE enquiries
        SET customer_name=$1, email=$2, phone=$3, message=$4, status=$5, priority=$6,
            assigned_to=$7, notes=$8, updated_at=NOW()
        WHERE id=$9 AND deleted_at IS NULL`
	if enquiry.Notes == nil {
		enquiry.Notes = []string{}
	}
	cmd, err := r.pool.Exec(ctx, query,
		enquiry.CustomerName,
		enquiry.Email,
		enquiry.Phone,
		enquiry.Message,
		enquiry.Status,
		enquiry.Priority,
		enquiry.AssignedTo,
		enquiry.Notes,
		enquiry.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enquiryRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE enquiries SET deleted_at=NOW(), updated_at=NOW() WHERE id=$1 AND deleted_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enquiryRepository) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	query := `SELECT ` + enquiryColumns + ` FROM enquiries WHERE id=$1 AND deleted_at IS NULL`
	var enquiry domain.Enquiry
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&enquiry.ID,
		&enquiry.CustomerName,
		&enquiry.Email,
		&enquiry.Phone,
		&enquiry.Message,
		&enquiry.Status,
		&enquiry.Priority,
		&enquiry.AssignedTo,
		&enquiry.CreatedBy,
		&enquiry.Notes,
		&enquiry.CreatedAt,
		&enquiry.UpdatedAt,
		&enquiry.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func (r *enquiryRepository) ListWithFilter(ctx context.Context, filter EnquiryFilter) ([]domain.Enquiry, error) {
	base := `SELECT ` + enquiryColumns + ` FROM enquiries`
	clauses := []string{"deleted_at IS NULL"}
	args := []any{}

	if filter.AccessibleBy != nil {
		args = append(args, *filter.AccessibleBy)
		clauses = append(clauses, fmt.Sprintf("(created_by=$%d OR assigned_to=$%d)", len(args), len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(customer_name) LIKE %s OR LOWER(email) LIKE %s OR LOWER(message) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEnquiries(rows)
}

func (r *enquiryRepository) LastAssignedWithin(ctx context.Context, assigneeIDs []string) (*domain.Enquiry, error) {
	if len(assigneeIDs) == 0 {
		return nil, pgx.ErrNoRows
	}
	query := `SELECT ` + enquiryColumns + `
        FROM enquiries
        WHERE deleted_at IS NULL AND assigned_to = ANY($1)
        ORDER BY created_at DESC
        LIMIT 1`

	var enquiry domain.Enquiry
	if err := r.pool.QueryRow(ctx, query, assigneeIDs).Scan(
		&enquiry.ID,
		&enquiry.CustomerName,
		&enquiry.Email,
		&enquiry.Phone,
		&enquiry.Message,
		&enquiry.Status,
		&enquiry.Priority,
		&enquiry.AssignedTo,
		&enquiry.CreatedBy,
		&enquiry.Notes,
		&enquiry.CreatedAt,
		&enquiry.UpdatedAt,
		&enquiry.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &enquiry, nil
}

func scanEnquiries(rows pgx.Rows) ([]domain.Enquiry, error) {
	var result []domain.Enquiry
	for rows.Next() {
		var enquiry domain.Enquiry
		if err := rows.Scan(
			&enquiry.ID,
			&enquiry.CustomerName,
			&enquiry.Email,
			&enquiry.Phone,
			&enquiry.Message,
			&enquiry.Status,
			&enquiry.Priority,
			&enquiry.AssignedTo,
			&enquiry.CreatedBy,
			&enquiry.Notes,
			&enquiry.CreatedAt,
			&enquiry.UpdatedAt,
			&enquiry.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, enquiry)
	}
	return result, rows.Err()
}

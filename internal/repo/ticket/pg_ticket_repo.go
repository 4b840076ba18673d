package ticket_repo

import (
	"context"
	"fmt"

	"ticketrelay/internal/domain/ticket"
	"ticketrelay/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// PgTicketRepo persists tickets in Postgres.
type PgTicketRepo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

var _ ticket.Repo = (*PgTicketRepo)(nil)

func NewPgTicketRepo(pg *postgres.Postgres) *PgTicketRepo {
	return &PgTicketRepo{db: pg.Pool, builder: pg.Builder}
}

// newWithExecutor is used by tests to run against a mock executor.
func newWithExecutor(db postgres.Executor, builder squirrel.StatementBuilderType) *PgTicketRepo {
	return &PgTicketRepo{db: db, builder: builder}
}

// Upsert writes the triple keyed by ticket_id. A repeated attach for the
// same ticket rewrites the row, so webhook retries stay idempotent.
func (r *PgTicketRepo) Upsert(ctx context.Context, req ticket.AttachRequest) error {
	query, args, err := r.builder.Insert("tickets").
		Columns("ticket_id", "order_id", "status", "created_at", "updated_at").
		Values(req.TicketID, req.OrderID, req.Status, squirrel.Expr("NOW()"), squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (ticket_id) DO UPDATE SET order_id = EXCLUDED.order_id, status = EXCLUDED.status, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert ticket: %w", err)
	}
	return nil
}

func (r *PgTicketRepo) GetTickets(ctx context.Context, statusFilter string) ([]ticket.Ticket, error) {
	query := r.builder.Select("ticket_id", "order_id", "status", "created_at", "updated_at").
		From("tickets").
		OrderBy("updated_at DESC")

	if statusFilter != "" {
		query = query.Where("LOWER(status) = LOWER(?)", statusFilter)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tickets query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	return parseTicketRows(rows)
}

func parseTicketRows(rows pgx.Rows) ([]ticket.Ticket, error) {
	var tickets []ticket.Ticket
	for rows.Next() {
		var t ticket.Ticket
		if err := rows.Scan(&t.TicketID, &t.OrderID, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}

	return tickets, nil
}

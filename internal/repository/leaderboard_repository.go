package repository

import (
	"context"
	"fmt"

	"btc-dashboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PgxPool is the subset of *pgxpool.Pool the repository needs.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LeaderboardRepository reads the literal top-trader rows seeded by
// cmd/migrate into leaderboard_entries.
type LeaderboardRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewLeaderboardRepository(pool PgxPool, tracer trace.Tracer) *LeaderboardRepository {
	return &LeaderboardRepository{pool: pool, tracer: tracer}
}

// ListTraders returns up to limit rows for side in rank order.
func (r *LeaderboardRepository) ListTraders(ctx context.Context, side domain.TradeSide, limit int) ([]domain.Trader, error) {
	ctx, span := r.tracer.Start(ctx, "leaderboard-repo.list-traders")
	defer span.End()
	span.SetAttributes(attribute.String("side", string(side)), attribute.Int("limit", limit))

	if side != domain.SideBuy && side != domain.SideSell {
		return nil, fmt.Errorf("unknown trade side %q", side)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT name, amount, price, total
		 FROM leaderboard_entries
		 WHERE side = $1
		 ORDER BY rank ASC
		 LIMIT $2`,
		string(side), limit,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query leaderboard %s: %w", side, err)
	}
	defer rows.Close()

	var traders []domain.Trader
	for rows.Next() {
		var t domain.Trader
		if err := rows.Scan(&t.Name, &t.Amount, &t.Price, &t.Total); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		traders = append(traders, t)
	}
	return traders, rows.Err()
}

package directory

import (
	"context"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/announcements/internal/domain"
)

// Postgres reads members from the members table. Rows are streamed from the
// server as the caller ranges, so memory use does not grow with the audience.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const membersWhere = `
	WHERE active AND ($1 = '` + AllSegment + `' OR segment = $1)`

func (p *Postgres) Recipients(ctx context.Context, audience domain.Audience) iter.Seq2[domain.Recipient, error] {
	return func(yield func(domain.Recipient, error) bool) {
		rows, err := p.pool.Query(ctx, `
			SELECT COALESCE(email, ''), COALESCE(phone, '')
			FROM members`+membersWhere+`
			ORDER BY id`, audience.Segment)
		if err != nil {
			yield(domain.Recipient{}, fmt.Errorf("query members: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var r domain.Recipient
			if err := rows.Scan(&r.Email, &r.Phone); err != nil {
				yield(domain.Recipient{}, fmt.Errorf("scan member: %w", err))
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Recipient{}, fmt.Errorf("iterate members: %w", err))
		}
	}
}

func (p *Postgres) Count(ctx context.Context, audience domain.Audience) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM members`+membersWhere, audience.Segment).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

// Add inserts a member. Used by seeding tools and integration tests.
func (p *Postgres) Add(ctx context.Context, segment string, r domain.Recipient) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO members (segment, email, phone)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))`,
		segment, r.Email, r.Phone)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

var (
	_ Source  = (*Postgres)(nil)
	_ Counter = (*Postgres)(nil)
)

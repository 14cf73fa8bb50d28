package directory

import (
	"context"
	"iter"

	"github.com/notifyhub/announcements/internal/domain"
)

// Static is an in-memory Source that returns the same members for every
// audience. Useful for local runs and tests.
type Static struct {
	members []domain.Recipient
}

func NewStatic(members []domain.Recipient) *Static {
	return &Static{members: members}
}

// DemoMembers is the fixture served by the static backend.
func DemoMembers() []domain.Recipient {
	return []domain.Recipient{
		{Email: "user1@example.com", Phone: "+1234567890"},
		{Email: "user2@example.com", Phone: "+1234567891"},
		{Email: "user3@example.com"},
		{Phone: "+1234567892"},
	}
}

func (s *Static) Recipients(ctx context.Context, _ domain.Audience) iter.Seq2[domain.Recipient, error] {
	return func(yield func(domain.Recipient, error) bool) {
		for _, m := range s.members {
			if err := ctx.Err(); err != nil {
				yield(domain.Recipient{}, err)
				return
			}
			if !yield(m, nil) {
				return
			}
		}
	}
}

func (s *Static) Count(_ context.Context, _ domain.Audience) (int, error) {
	return len(s.members), nil
}

var (
	_ Source  = (*Static)(nil)
	_ Counter = (*Static)(nil)
)

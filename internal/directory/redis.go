package directory

import (
	"context"
	"fmt"
	"iter"

	goredis "github.com/redis/go-redis/v9"

	"github.com/notifyhub/announcements/internal/domain"
)

const scanPageSize = 100

// Redis reads members from Redis. A segment is a set of member IDs stored at
// "segment:{name}"; each member is a hash at "member:{id}" with optional
// "email" and "phone" fields. "segment:all" holds every member.
//
// The segment set is walked with SSCAN, which may return an ID more than once
// if the set is modified while a broadcast is running.
type Redis struct {
	client goredis.UniversalClient
}

func NewRedis(client goredis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func segmentKey(name string) string { return "segment:" + name }
func memberKey(id string) string    { return "member:" + id }

func (d *Redis) Recipients(ctx context.Context, audience domain.Audience) iter.Seq2[domain.Recipient, error] {
	return func(yield func(domain.Recipient, error) bool) {
		key := segmentKey(audience.Segment)
		var cursor uint64
		for {
			ids, next, err := d.client.SScan(ctx, key, cursor, "", scanPageSize).Result()
			if err != nil {
				yield(domain.Recipient{}, fmt.Errorf("scan segment %s: %w", audience.Segment, err))
				return
			}

			members, err := d.load(ctx, ids)
			if err != nil {
				yield(domain.Recipient{}, err)
				return
			}
			for _, m := range members {
				if !yield(m, nil) {
					return
				}
			}

			if next == 0 {
				return
			}
			cursor = next
		}
	}
}

func (d *Redis) load(ctx context.Context, ids []string) ([]domain.Recipient, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := d.client.Pipeline()
	cmds := make([]*goredis.SliceCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HMGet(ctx, memberKey(id), "email", "phone")
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	out := make([]domain.Recipient, len(ids))
	for i, cmd := range cmds {
		vals := cmd.Val()
		out[i] = domain.Recipient{Email: asString(vals, 0), Phone: asString(vals, 1)}
	}
	return out, nil
}

func asString(vals []interface{}, i int) string {
	if i >= len(vals) {
		return ""
	}
	s, _ := vals[i].(string)
	return s
}

func (d *Redis) Count(ctx context.Context, audience domain.Audience) (int, error) {
	n, err := d.client.SCard(ctx, segmentKey(audience.Segment)).Result()
	if err != nil {
		return 0, fmt.Errorf("count segment %s: %w", audience.Segment, err)
	}
	return int(n), nil
}

// Add stores a member and adds it to segment and to the AllSegment set.
func (d *Redis) Add(ctx context.Context, segment, id string, r domain.Recipient) error {
	fields := map[string]interface{}{}
	if r.Email != "" {
		fields["email"] = r.Email
	}
	if r.Phone != "" {
		fields["phone"] = r.Phone
	}

	pipe := d.client.TxPipeline()
	if len(fields) > 0 {
		pipe.HSet(ctx, memberKey(id), fields)
	}
	pipe.SAdd(ctx, segmentKey(segment), id)
	if segment != AllSegment {
		pipe.SAdd(ctx, segmentKey(AllSegment), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add member %s: %w", id, err)
	}
	return nil
}

var (
	_ Source  = (*Redis)(nil)
	_ Counter = (*Redis)(nil)
)

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/coiipa/training-service/internal/config"
	"github.com/AchilleasB/coiipa/training-service/internal/core/domain"
	"github.com/AchilleasB/coiipa/training-service/internal/core/ports"
)

const memberKeyPrefix = "member:"

// MemberCache stores registered members in Redis as JSON. Members never change after
// registration, so entries only expire through the TTL.
type MemberCache struct {
	client redis.Cmdable
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker
}

var _ ports.MemberCache = (*MemberCache)(nil)

func NewMemberCache(client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *MemberCache {
	return &MemberCache{
		client: client,
		ttl:    ttl,
		cb:     config.NewCircuitBreaker("Redis-MemberCache", logger),
	}
}

func memberKey(nationalID string) string {
	return memberKeyPrefix + nationalID
}

// Get returns nil, nil on a cache miss.
func (c *MemberCache) Get(ctx context.Context, nationalID string) (*domain.Member, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, memberKey(nationalID)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil || res == nil {
		return nil, err
	}

	var member domain.Member
	if err := json.Unmarshal(res.([]byte), &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *MemberCache) Set(ctx context.Context, member *domain.Member) error {
	if member == nil {
		return nil
	}
	data, err := json.Marshal(member)
	if err != nil {
		return err
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, memberKey(member.NationalID), data, c.ttl).Err()
	})
	return err
}

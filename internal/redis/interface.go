package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient so repositories depend on an
// interface owned by this package.
type Client interface {
	redis.UniversalClient
}

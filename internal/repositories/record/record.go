// Package record holds the storage-key scheme and the compare-and-swap
// write shared by the Redis repositories. Every mutable record carries
// a modified_at timestamp that doubles as the optimistic-lock token; a
// write against a stale token is rejected, never partially applied.
package record

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"
	redis "github.com/redis/go-redis/v9"

	"github.com/grimoire-rpg/encounter-api/internal/errors"
	redisclient "github.com/grimoire-rpg/encounter-api/internal/redis"
)

// Key builds the storage key for an entity from its type tag and id
func Key(entity core.Entity) string {
	return strings.ToLower(entity.GetType()) + ":" + entity.GetID()
}

// stamp is the minimal view of a stored document needed for the token check
type stamp struct {
	ModifiedAt time.Time `json:"modified_at"`
}

// CompareAndSwap overwrites the document at key only if the stored
// record's modified_at still equals expected. The caller passes the
// fully updated record as next, with its new modified_at already set.
// Returns errors.Aborted when the token no longer matches or another
// writer races the transaction, errors.NotFound when the record is gone.
func CompareAndSwap(ctx context.Context, client redisclient.Client, key string, expected time.Time, next interface{}) error {
	data, err := json.Marshal(next)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal record %s", key)
	}

	err = client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return errors.NotFoundf("record %s not found", key)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to read record %s", key)
		}

		var stored stamp
		if err := json.Unmarshal([]byte(current), &stored); err != nil {
			return errors.Wrapf(err, "failed to decode record %s", key)
		}
		if !stored.ModifiedAt.Equal(expected) {
			return errors.Abortedf("concurrent modification detected on %s", key)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)
	if err == redis.TxFailedErr {
		return errors.Abortedf("concurrent modification detected on %s", key)
	}

	return err
}

package campaigns

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	redisclient "github.com/grimoire-rpg/encounter-api/internal/redis"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/record"
)

const (
	campaignKeyPrefix = "cpn:"
	campaignIndexKey  = "cpn:index"

	errCampaignNil     = "campaign cannot be nil"
	errCampaignIDEmpty = "campaign ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
}

// RedisConfig contains configuration for the Redis campaign repository.
type RedisConfig struct {
	Client redisclient.Client
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed campaign repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &redisRepository{client: cfg.Client}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Campaign == nil {
		return nil, errors.InvalidArgument(errCampaignNil)
	}
	if input.Campaign.ID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	key := record.Key(input.Campaign)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("campaign with ID %s already exists", input.Campaign.ID)
	}

	data, err := json.Marshal(input.Campaign)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal campaign")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, campaignIndexKey, redis.Z{
		Score:  float64(input.Campaign.CreatedAt.UnixNano()),
		Member: input.Campaign.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create campaign")
	}

	return &CreateOutput{Campaign: input.Campaign}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	result, err := r.client.Get(ctx, campaignKeyPrefix+input.ID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("campaign with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get campaign")
	}

	var campaign dnd5e.Campaign
	if err := json.Unmarshal([]byte(result), &campaign); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal campaign")
	}

	return &GetOutput{Campaign: &campaign}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.ZRevRange(ctx, campaignIndexKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list campaigns")
	}

	campaigns := make([]*dnd5e.Campaign, 0, len(ids))
	for _, id := range ids {
		output, err := r.Get(ctx, GetInput{ID: id})
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		campaigns = append(campaigns, output.Campaign)
	}

	return &ListOutput{Campaigns: campaigns}, nil
}

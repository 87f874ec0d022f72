package encounters

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/clock"
	redisclient "github.com/grimoire-rpg/encounter-api/internal/redis"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/record"
)

const (
	encounterKeyPrefix  = "enc:"
	campaignIndexPrefix = "cpn:encounters:"

	errEncounterNil     = "encounter cannot be nil"
	errEncounterIDEmpty = "encounter ID cannot be empty"
	errCampaignIDEmpty  = "campaign ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis encounter repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
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

// NewRedis creates a new Redis-backed encounter repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Encounter == nil {
		return nil, errors.InvalidArgument(errEncounterNil)
	}
	if input.Encounter.ID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}
	if input.Encounter.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	key := record.Key(input.Encounter)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("encounter with ID %s already exists", input.Encounter.ID)
	}

	data, err := json.Marshal(input.Encounter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, campaignIndexPrefix+input.Encounter.CampaignID, redis.Z{
		Score:  float64(input.Encounter.CreatedAt.UnixNano()),
		Member: input.Encounter.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create encounter")
	}

	return &CreateOutput{Encounter: input.Encounter}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	encounter, err := r.fetch(ctx, input.EncounterID)
	if err != nil {
		return nil, err
	}
	if encounter.CampaignID != input.CampaignID {
		return nil, errors.NotFoundf("encounter with ID %s not found in campaign %s", input.EncounterID, input.CampaignID)
	}

	return &GetOutput{Encounter: encounter}, nil
}

func (r *redisRepository) ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	ids, err := r.client.ZRevRange(ctx, campaignIndexPrefix+input.CampaignID, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list campaign encounters")
	}

	encounters := make([]*dnd5e.Encounter, 0, len(ids))
	for _, id := range ids {
		encounter, err := r.fetch(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		encounters = append(encounters, encounter)
	}

	return &ListByCampaignOutput{Encounters: encounters}, nil
}

func (r *redisRepository) GetCurrentByCampaign(ctx context.Context, input GetCurrentByCampaignInput) (*GetCurrentByCampaignOutput, error) {
	listed, err := r.ListByCampaign(ctx, ListByCampaignInput(input))
	if err != nil {
		return nil, err
	}

	// Newest first, so the first non-finished encounter is the current one
	for _, encounter := range listed.Encounters {
		if !encounter.State.IsFinished() {
			return &GetCurrentByCampaignOutput{Encounter: encounter}, nil
		}
	}

	return nil, errors.NotFoundf("campaign %s has no current encounter", input.CampaignID)
}

func (r *redisRepository) UpdateState(ctx context.Context, input UpdateStateInput) (*UpdateStateOutput, error) {
	if input.Encounter == nil {
		return nil, errors.InvalidArgument(errEncounterNil)
	}

	updated := *input.Encounter
	updated.State = input.State
	if input.TurnOrder != nil {
		updated.CharacterIDs = input.TurnOrder
	}
	updated.ModifiedAt = r.clock.Now()

	if err := record.CompareAndSwap(ctx, r.client, record.Key(&updated), input.Encounter.ModifiedAt, &updated); err != nil {
		return nil, err
	}

	return &UpdateStateOutput{Encounter: &updated}, nil
}

func (r *redisRepository) fetch(ctx context.Context, id string) (*dnd5e.Encounter, error) {
	result, err := r.client.Get(ctx, encounterKeyPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("encounter with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get encounter")
	}

	var encounter dnd5e.Encounter
	if err := json.Unmarshal([]byte(result), &encounter); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal encounter")
	}

	return &encounter, nil
}

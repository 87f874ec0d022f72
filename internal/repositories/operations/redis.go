package operations

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
	operationKeyPrefix   = "opr:"
	encounterIndexPrefix = "enc:operations:"

	errOperationNil       = "operation cannot be nil"
	errOperationIDEmpty   = "operation ID cannot be empty"
	errCampaignIDEmpty    = "campaign ID cannot be empty"
	errEncounterIDEmpty   = "encounter ID cannot be empty"
	errInteractionIDEmpty = "interaction ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis operation repository.
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

// NewRedis creates a new Redis-backed operation repository
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
	if input.Operation == nil {
		return nil, errors.InvalidArgument(errOperationNil)
	}
	if input.Operation.ID == "" {
		return nil, errors.InvalidArgument(errOperationIDEmpty)
	}
	if input.Operation.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	key := record.Key(input.Operation)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("operation with ID %s already exists", input.Operation.ID)
	}

	data, err := json.Marshal(input.Operation)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal operation")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	if input.Operation.EncounterID != "" {
		pipe.ZAdd(ctx, encounterIndexPrefix+input.Operation.EncounterID, redis.Z{
			Score:  float64(input.Operation.CreatedAt.UnixNano()),
			Member: input.Operation.ID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create operation")
	}

	return &CreateOutput{Operation: input.Operation}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.OperationID == "" {
		return nil, errors.InvalidArgument(errOperationIDEmpty)
	}

	operation, err := r.fetch(ctx, input.OperationID)
	if err != nil {
		return nil, err
	}
	if operation.CampaignID != input.CampaignID {
		return nil, errors.NotFoundf("operation with ID %s not found in campaign %s", input.OperationID, input.CampaignID)
	}

	return &GetOutput{Operation: operation}, nil
}

func (r *redisRepository) ListByEncounter(ctx context.Context, input ListByEncounterInput) (*ListByEncounterOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	ids, err := r.client.ZRange(ctx, encounterIndexPrefix+input.EncounterID, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list encounter operations")
	}

	listed := make([]*dnd5e.Operation, 0, len(ids))
	for _, id := range ids {
		operation, err := r.fetch(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		listed = append(listed, operation)
	}

	return &ListByEncounterOutput{Operations: listed}, nil
}

func (r *redisRepository) ListByTurn(ctx context.Context, input ListByTurnInput) (*ListByTurnOutput, error) {
	listed, err := r.ListByEncounter(ctx, ListByEncounterInput{EncounterID: input.EncounterID})
	if err != nil {
		return nil, err
	}

	matched := make([]*dnd5e.Operation, 0, len(listed.Operations))
	for _, operation := range listed.Operations {
		if operation.CharacterID != input.CharacterID || operation.EncounterState == nil {
			continue
		}
		round, characterID, ok := operation.EncounterState.AsTurn()
		if !ok || round != input.Round || characterID != input.CharacterID {
			continue
		}
		matched = append(matched, operation)
	}

	return &ListByTurnOutput{Operations: matched}, nil
}

func (r *redisRepository) ResolveInteraction(ctx context.Context, input ResolveInteractionInput) (*ResolveInteractionOutput, error) {
	if input.Operation == nil {
		return nil, errors.InvalidArgument(errOperationNil)
	}
	if input.InteractionID == "" {
		return nil, errors.InvalidArgument(errInteractionIDEmpty)
	}

	updated := *input.Operation
	updated.Interactions = make([]dnd5e.Interaction, len(input.Operation.Interactions))
	copy(updated.Interactions, input.Operation.Interactions)

	index, _ := updated.FindInteraction(input.InteractionID)
	if index < 0 {
		return nil, errors.NotFoundf("interaction with ID %s not found on operation %s", input.InteractionID, updated.ID)
	}
	result := input.Result
	updated.Interactions[index].Result = &result
	updated.Interactions = append(updated.Interactions, input.NewInteractions...)
	updated.ModifiedAt = r.clock.Now()

	if err := record.CompareAndSwap(ctx, r.client, record.Key(&updated), input.Operation.ModifiedAt, &updated); err != nil {
		return nil, err
	}

	return &ResolveInteractionOutput{Operation: &updated}, nil
}

func (r *redisRepository) UpdateLegality(ctx context.Context, input UpdateLegalityInput) (*UpdateLegalityOutput, error) {
	if input.Operation == nil {
		return nil, errors.InvalidArgument(errOperationNil)
	}

	updated := *input.Operation
	updated.Legality = input.Legality
	updated.ModifiedAt = r.clock.Now()

	if err := record.CompareAndSwap(ctx, r.client, record.Key(&updated), input.Operation.ModifiedAt, &updated); err != nil {
		return nil, err
	}

	return &UpdateLegalityOutput{Operation: &updated}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Operation == nil {
		return nil, errors.InvalidArgument(errOperationNil)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, record.Key(input.Operation))
	if input.Operation.EncounterID != "" {
		pipe.ZRem(ctx, encounterIndexPrefix+input.Operation.EncounterID, input.Operation.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete operation")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) fetch(ctx context.Context, id string) (*dnd5e.Operation, error) {
	result, err := r.client.Get(ctx, operationKeyPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("operation with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get operation")
	}

	var operation dnd5e.Operation
	if err := json.Unmarshal([]byte(result), &operation); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal operation")
	}

	return &operation, nil
}

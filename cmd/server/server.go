package main

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/cobra"

	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/handlers/httpapi"
	"github.com/grimoire-rpg/encounter-api/internal/orchestrators/encounter"
	"github.com/grimoire-rpg/encounter-api/internal/orchestrators/operation"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/idgen"
	"github.com/grimoire-rpg/encounter-api/internal/redis"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/campaigns"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/characters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/encounters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/items"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/operations"
)

// serverConfig is loaded from the environment
type serverConfig struct {
	Address       string `env:"SERVER_ADDRESS" envDefault:":8080"`
	RedisEndpoint string `env:"REDIS_ENDPOINT" envDefault:"localhost:6379"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisUseTLS   bool   `env:"REDIS_USE_TLS" envDefault:"false"`
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	Long:  `Start the encounter API HTTP server with all configured services.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := env.ParseAs[serverConfig]()
	if err != nil {
		return errors.Wrap(err, "failed to load server config")
	}

	client, err := redis.NewClient(cfg.RedisEndpoint, &redis.Options{
		PoolSize: cfg.RedisPoolSize,
		UseTLS:   cfg.RedisUseTLS,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create redis client")
	}

	campaignRepo, err := campaigns.NewRedis(&campaigns.RedisConfig{Client: client})
	if err != nil {
		return errors.Wrap(err, "failed to create campaign repository")
	}
	characterRepo, err := characters.NewRedis(&characters.RedisConfig{Client: client})
	if err != nil {
		return errors.Wrap(err, "failed to create character repository")
	}
	encounterRepo, err := encounters.NewRedis(&encounters.RedisConfig{Client: client})
	if err != nil {
		return errors.Wrap(err, "failed to create encounter repository")
	}
	operationRepo, err := operations.NewRedis(&operations.RedisConfig{Client: client})
	if err != nil {
		return errors.Wrap(err, "failed to create operation repository")
	}
	itemRepo, err := items.NewRedis(&items.RedisConfig{Client: client})
	if err != nil {
		return errors.Wrap(err, "failed to create item repository")
	}

	encounterService, err := encounter.NewOrchestrator(&encounter.Config{
		CampaignRepo:  campaignRepo,
		CharacterRepo: characterRepo,
		EncounterRepo: encounterRepo,
		OperationRepo: operationRepo,
		IDGenerator:   idgen.NewPrefixed("enc"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create encounter orchestrator")
	}

	operationService, err := operation.NewOrchestrator(&operation.Config{
		CharacterRepo:          characterRepo,
		EncounterRepo:          encounterRepo,
		OperationRepo:          operationRepo,
		ItemRepo:               itemRepo,
		OperationIDGenerator:   idgen.NewPrefixed("opr"),
		InteractionIDGenerator: idgen.NewPrefixed("itr"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create operation orchestrator")
	}

	handler, err := httpapi.NewHandler(&httpapi.Config{
		EncounterService: encounterService,
		OperationService: operationService,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create http handler")
	}

	h := server.Default(server.WithHostPorts(cfg.Address))
	handler.RegisterRoutes(h)

	slog.Info("encounter api listening",
		"address", cfg.Address,
		"redis_endpoint", cfg.RedisEndpoint,
	)
	h.Spin()

	return nil
}

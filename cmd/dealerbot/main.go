package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/a7motors/dealerbot/bot"
	"github.com/a7motors/dealerbot/catalog"
	"github.com/a7motors/dealerbot/core/bootstrap"
	"github.com/a7motors/dealerbot/core/cmd"
	coreconfig "github.com/a7motors/dealerbot/core/config"
)

type configCarrier struct {
	cfg *coreconfig.Config
}

func (c configCarrier) CoreConfig() *coreconfig.Config { return c.cfg }

// seedInventory creates the inventory document with the configured contact
// card on first run.
func seedInventory(cfg *coreconfig.Config) bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		store, ok := storage.(*catalog.Store)
		if !ok {
			return fmt.Errorf("main: unexpected storage %T", storage)
		}
		cc := cfg.Catalog.Contacts
		return catalog.EnsureDocument(store, catalog.Contacts{
			Phone:     cc.Phone,
			WhatsApp:  cc.WhatsApp,
			Email:     cc.Email,
			Address:   cc.Address,
			WorkHours: cc.WorkHours,
		})
	})
}

var appProvider = bootstrap.TypedServiceProviderFunc[*bot.App](
	func(ctx context.Context, cfg interface{}, storage bootstrap.Storage) (*bot.App, error) {
		coreCfg, ok := cfg.(*coreconfig.Config)
		if !ok {
			return nil, fmt.Errorf("main: unexpected config %T", cfg)
		}
		return bot.New(coreCfg)
	})

func buildApp(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg := carrier.CoreConfig()

	res, err := bootstrap.Run(bootstrap.Options{
		Config: cfg,
		OpenStorage: func(cfg *coreconfig.Config) (bootstrap.Storage, error) {
			return catalog.Open(cfg.Catalog.DataFile), nil
		},
		Modules: bootstrap.Modules{
			Seeders: []bootstrap.Seeder{seedInventory(cfg)},
		},
	})
	if err != nil {
		return nil, err
	}

	return appProvider.ProvideTyped(context.Background(), cfg, res.Storage)
}

func main() {
	// Local development convenience; production relies on real env vars.
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return configCarrier{cfg: cfg}, nil
		},
		Bootstrap: buildApp,
	})
	if err != nil {
		log.Fatalf("dealerbot: %v", err)
	}
}

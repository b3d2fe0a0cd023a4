package main

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"zonagamer/internal/config"
	"zonagamer/internal/http/handlers"
	applog "zonagamer/internal/log"
	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
	"zonagamer/internal/services"
)

// modules wires everything but the listener.
func modules() fx.Option {
	return fx.Options(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.Provide(
			config.Load,
			newLogger,
			newDB,
			newKV,
			newClient,
			newSeedSource,
			newProducts,
			newUsers,
			newCategories,
			newSessions,
			newCatalog,
			services.NewCartService,
			services.NewAuthService,
			services.NewCheckoutService,
			services.NewInventoryService,
			newDeps,
			handlers.NewApp,
		),
	)
}

func newLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	l, err := applog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	applog.Set(l)
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		_ = l.Sync()
		return nil
	}})
	return l, nil
}

func newDB(lc fx.Lifecycle, cfg config.Config) (*sqlx.DB, error) {
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.DBDSN)
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return db.Close() }})
	return db, nil
}

func newKV(db *sqlx.DB) repos.KeyValueStore { return repos.NewSQLiteKV(db) }

func newClient(cfg config.Config) *remote.Client {
	return remote.New(cfg.APIURL, cfg.RemoteTimeout)
}

func newSeedSource(cfg config.Config, client *remote.Client) repos.CatalogSource {
	if cfg.SeedSource == config.SeedRemote {
		return repos.RemoteFirst{Remote: client}
	}
	return repos.BuiltinCatalog{}
}

func newProducts(kv repos.KeyValueStore, src repos.CatalogSource, cfg config.Config) *repos.ProductsCRUD {
	return repos.NewProductsCRUD(kv, src, repos.WithLatency(cfg.StoreLatency))
}

func newUsers(kv repos.KeyValueStore, cfg config.Config) *repos.UsersCRUD {
	return repos.NewUsersCRUD(kv, repos.WithLatency(cfg.StoreLatency))
}

func newCategories(kv repos.KeyValueStore, src repos.CatalogSource, cfg config.Config) *repos.CategoryStore {
	return repos.NewCategoryStore(kv, src, repos.WithLatency(cfg.StoreLatency))
}

func newSessions(kv repos.KeyValueStore) services.Sessions { return services.Sessions{KV: kv} }

func newCatalog(lc fx.Lifecycle, client *remote.Client, products *repos.ProductsCRUD, cats *repos.CategoryStore,
	users *repos.UsersCRUD, log *zap.Logger) *services.CatalogService {
	s := services.NewCatalogService(client, products, cats, users, log.Named("catalog"))
	lc.Append(fx.Hook{OnStop: func(context.Context) error {
		s.Close()
		return nil
	}})
	return s
}

type depsParams struct {
	fx.In

	Config    config.Config
	Client    *remote.Client
	Products  *repos.ProductsCRUD
	Users     *repos.UsersCRUD
	Sessions  services.Sessions
	Catalog   *services.CatalogService
	Carts     *services.CartService
	Auth      *services.AuthService
	Checkout  *services.CheckoutService
	Inventory *services.InventoryService
}

func newDeps(p depsParams) *handlers.Deps {
	return &handlers.Deps{
		Client:     p.Client,
		Products:   p.Products,
		Users:      p.Users,
		Sessions:   p.Sessions,
		Catalog:    p.Catalog,
		Carts:      p.Carts,
		Auth:       p.Auth,
		Checkout:   p.Checkout,
		Inventory:  p.Inventory,
		RemoteWait: p.Config.RemoteWait,
		BodyLimit:  p.Config.BodyLimit,
	}
}

// serve binds the port on start and drains the app on stop. A listener that
// dies after start shuts the whole app down.
func serve(lc fx.Lifecycle, sd fx.Shutdowner, app *fiber.App, cfg config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", ":"+cfg.Port)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", cfg.Port)
			}
			log.Info("listening", zap.String("addr", ln.Addr().String()), zap.String("api_url", cfg.APIURL))
			go func() {
				if err := app.Listener(ln); err != nil {
					log.Error("server stopped", zap.Error(err))
					_ = sd.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// warm seeds the local stores in the background so the first request does
// not pay for it.
func warm(lc fx.Lifecycle, products *repos.ProductsCRUD, users *repos.UsersCRUD, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				if err := products.Initialize(ctx); err != nil {
					log.Warn("product seed failed", zap.Error(err))
				}
				if err := users.Initialize(ctx); err != nil {
					log.Warn("user seed failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

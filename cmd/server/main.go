package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Eerick6/infanps"
	"github.com/Eerick6/infanps/modules/account"
	"github.com/Eerick6/infanps/modules/activity"
	"github.com/Eerick6/infanps/modules/content"
	"github.com/Eerick6/infanps/modules/securityinfo"
	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/config"
	"github.com/Eerick6/infanps/pkg/cookie"
	"github.com/Eerick6/infanps/pkg/httpserver"
	"github.com/Eerick6/infanps/pkg/logger"
	"github.com/Eerick6/infanps/pkg/pg"
	"github.com/Eerick6/infanps/pkg/redis"
	"github.com/Eerick6/infanps/pkg/requestid"
	"github.com/Eerick6/infanps/pkg/secure"
	"github.com/Eerick6/infanps/pkg/session"
	"github.com/Eerick6/infanps/pkg/upload"
)

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`

	// CookieSecrets signs session cookies; first entry signs, the rest
	// still verify so secrets can rotate without logging everyone out.
	CookieSecrets []string `env:"COOKIE_SECRETS,required" envSeparator:","`

	// SessionStore selects the session backend: postgres, redis or memory.
	SessionStore string `env:"SESSION_STORE" envDefault:"postgres"`

	HTTP    httpserver.Config
	PG      pg.Config
	Redis   redis.Config
	Session session.Config
	Secure  secure.Config
	Upload  upload.Config
	OAuth   auth.OAuthConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "infanps"),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer rdb.Close()

	cookieMgr, err := cookie.New(cfg.CookieSecrets)
	if err != nil {
		return fmt.Errorf("cookie manager: %w", err)
	}

	if cfg.Env == "production" {
		cfg.Session.SecureCookies = true
	}

	var store session.Store
	switch cfg.SessionStore {
	case "postgres":
		store = session.NewPostgresStore(pool)
	case "redis":
		store = session.NewRedisStore(rdb)
	case "memory":
		store = session.NewMemoryStore(cfg.Session.CleanupInterval)
	default:
		return fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}

	if ps, ok := store.(*session.PostgresStore); ok && cfg.Session.CleanupInterval > 0 {
		go cleanupExpired(ctx, ps, cfg.Session.CleanupInterval, log)
	}

	transport := session.NewCookieTransport(cookieMgr, cfg.Session.CookieName, cfg.Session.SecureCookies)
	sessions := session.New(transport,
		session.WithStore(store),
		session.WithConfig(cfg.Session),
		session.WithLogger(log),
	)

	users := account.NewPgStorage(pool)
	authSvc := auth.NewService(users, sessions, auth.WithServiceLogger(log))
	local := auth.NewLocalStrategy(users, auth.WithLocalLogger(log))
	authSvc.Register(local)

	var accountOpts []account.Option
	if cfg.OAuth.Enabled() {
		oauthStrategy := auth.NewOAuthStrategy(users, cfg.OAuth, auth.WithOAuthLogger(log))
		authSvc.Register(oauthStrategy)
		accountOpts = append(accountOpts, account.WithOAuth(oauthStrategy))
	}

	uploads, err := upload.New(cfg.Upload, upload.WithLogger(log))
	if err != nil {
		return fmt.Errorf("upload handler: %w", err)
	}

	handler := infanps.New(infanps.Deps{
		Logger:   log,
		Sessions: sessions,
		Auth:     authSvc,
		Uploads:  uploads,
		Secure:   cfg.Secure,
		Healthchecks: map[string]func(context.Context) error{
			"postgres": pg.Healthcheck(pool),
			"redis":    redis.Healthcheck(rdb),
		},
		Groups: []infanps.RouteGroup{
			account.NewService(authSvc, local, log, accountOpts...),
			content.NewService(authSvc, log),
			securityinfo.NewService(),
			activity.NewService(authSvc),
		},
	})

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, handler)
}

// cleanupExpired purges expired session rows on a fixed interval. The
// memory store runs its own janitor; redis expires keys natively.
func cleanupExpired(ctx context.Context, store *session.PostgresStore, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.DeleteExpired(ctx); err != nil {
				log.ErrorContext(ctx, "session cleanup failed", slog.Any("error", err))
			}
		}
	}
}

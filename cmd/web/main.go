package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/petrarun/internal/clock"
	"github.com/myrjola/petrarun/internal/envstruct"
	"github.com/myrjola/petrarun/internal/errors"
	"github.com/myrjola/petrarun/internal/i18n"
	"github.com/myrjola/petrarun/internal/logging"
	"github.com/myrjola/petrarun/internal/prefetch"
	"github.com/myrjola/petrarun/internal/sqlite"
	"github.com/myrjola/petrarun/internal/workout"
	"github.com/yuin/goldmark"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	templateFS     fs.FS
	markdown       goldmark.Markdown
	workoutService *workout.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"PETRARUN_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"PETRARUN_SQLITE_URL" envDefault:"./petrarun.sqlite3"`
	// TemplatePath is the path to the directory containing the HTML templates.
	TemplatePath string `env:"PETRARUN_TEMPLATE_PATH" envDefault:""`
	// TickInterval is how often running workouts count down one second. Tests slow it down to freeze timers.
	TickInterval time.Duration `env:"PETRARUN_TICK_INTERVAL" envDefault:"1s"`
	// VideoBaseURL is where exercise videos are prefetched from. Empty disables prefetching.
	VideoBaseURL string `env:"PETRARUN_VIDEO_BASE_URL" envDefault:""`
	// PrefetchConcurrency limits parallel video downloads per workout.
	PrefetchConcurrency int `env:"PETRARUN_PREFETCH_CONCURRENCY" envDefault:"4"`
	// Language is the language of the motivational messages.
	Language string `env:"PETRARUN_LANGUAGE" envDefault:"en"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	language := i18n.Language(cfg.Language)
	if !i18n.IsSupported(language) {
		return errors.New("unsupported language", slog.String("language", cfg.Language))
	}

	var htmlTemplatePath string
	if htmlTemplatePath, err = uiDir(cfg.TemplatePath, "templates"); err != nil {
		return errors.Wrap(err, "resolve template path")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.Background(), slog.LevelError, "failed to close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	serviceCfg := workout.ServiceConfig{
		Clock:        clock.NewReal(),
		TickInterval: cfg.TickInterval,
		Prefetcher:   nil,
		Motivation: func(c workout.Category) string {
			return i18n.Motivate(language, string(c))
		},
	}
	if cfg.VideoBaseURL != "" {
		prefetcher := prefetch.New(ctx, logger, cfg.VideoBaseURL, cfg.PrefetchConcurrency)
		defer prefetcher.Wait()
		serviceCfg.Prefetcher = prefetcher
	}
	workoutService := workout.NewService(db, logger, serviceCfg)
	// Pending completion writes must land before the database closes.
	defer workoutService.Close()

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite, 24*time.Hour) //nolint:mnd // day
	defer sessionStore.StopCleanup()

	app := application{
		logger:         logger,
		sessionManager: initializeSessionManager(sessionStore),
		templateFS:     os.DirFS(htmlTemplatePath),
		markdown:       goldmark.New(),
		workoutService: workoutService,
	}

	var handler http.Handler
	if handler, err = app.routes(); err != nil {
		return errors.Wrap(err, "setup routes")
	}
	if err = app.configureAndStartServer(ctx, cfg.Addr, handler); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(store scs.Store) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = 12 * time.Hour //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}

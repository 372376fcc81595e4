// Package app wires configuration, stores, blob storage, the activity
// publisher and the HTTP layer into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/csvboard/internal/config"
	"github.com/iliyamo/csvboard/internal/database"
	"github.com/iliyamo/csvboard/internal/handler"
	"github.com/iliyamo/csvboard/internal/middleware"
	"github.com/iliyamo/csvboard/internal/queue"
	"github.com/iliyamo/csvboard/internal/repository"
	"github.com/iliyamo/csvboard/internal/repository/memstore"
	"github.com/iliyamo/csvboard/internal/repository/mongostore"
	"github.com/iliyamo/csvboard/internal/router"
	"github.com/iliyamo/csvboard/internal/service"
	"github.com/iliyamo/csvboard/internal/storage"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// sessionSweepEvery is how often expired MySQL sessions are purged.
const sessionSweepEvery = time.Hour

// Stores groups the store implementations selected by configuration.
type Stores struct {
	Users    repository.UserStore
	Files    repository.FileStore
	Sessions repository.SessionStore
}

// Deps is everything NewServer needs. Tests fill it with memstore and a
// temporary LocalStore.
type Deps struct {
	Config    config.Config
	Log       *zap.Logger
	Stores    Stores
	Blobs     storage.BlobStore
	Events    queue.Publisher
	RateLimit echo.MiddlewareFunc // nil disables rate limiting
}

// App is a configured server plus the resources it must release.
type App struct {
	Echo    *echo.Echo
	cfg     config.Config
	log     *zap.Logger
	closers []func(context.Context) error
	sweeper func(context.Context)
}

// NewServer builds the echo instance with every route registered.
func NewServer(d Deps) (*echo.Echo, error) {
	if d.Events == nil {
		d.Events = queue.NopPublisher{}
	}
	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, err
	}

	authSvc := service.NewAuthService(d.Stores.Users, d.Stores.Sessions, d.Events, d.Log, service.AuthOptions{
		Secret:     d.Config.SessionSecret,
		TTL:        d.Config.SessionTTL,
		BcryptCost: d.Config.BcryptCost,
	})
	fileSvc := service.NewFileService(d.Stores.Files, d.Blobs, d.Events, d.Log)
	uploadSvc := service.NewUploadService(fileSvc, d.Blobs, d.Events, d.Log, d.Config.MaxUploadBytes)
	profileSvc := service.NewProfileService(d.Stores.Users, d.Stores.Files, d.Blobs, d.Events, d.Log, d.Config.BcryptCost)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Log))

	deps := router.NewDeps(authSvc, d.Config.SessionCookie, d.RateLimit, uploadSvc.MaxBytes())
	cookie := handler.CookieOptions{Name: d.Config.SessionCookie, Secure: d.Config.CookieSecure}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc, d.Log, cookie), deps)
	router.RegisterFiles(e, handler.NewFileHandler(uploadSvc, fileSvc, profileSvc, d.Log), deps)
	router.RegisterProfile(e, handler.NewProfileHandler(profileSvc, d.Log, uploadSvc.MaxBytes()), deps)
	return e, nil
}

// New opens every backend named by cfg and builds the server. On error,
// whatever was already opened is closed again.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	stores, err := a.openStores(ctx)
	if err != nil {
		return nil, err
	}

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb != nil {
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	} else {
		log.Warn("redis unavailable: rate limiting disabled")
	}
	if cfg.SessionStore == "redis" {
		if rdb == nil {
			return nil, errors.New("SESSION_STORE=redis but redis is unreachable")
		}
		stores.Sessions = repository.NewRedisSessionRepo(rdb, "csvboard:session")
	}

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitMQURL, cfg.ActivityQueue, log)
	}

	e, err := NewServer(Deps{
		Config:    cfg,
		Log:       log,
		Stores:    stores,
		Blobs:     blobs,
		Events:    events,
		RateLimit: rateLimiter(rdb, log),
	})
	if err != nil {
		return nil, err
	}
	a.Echo = e
	return a, nil
}

func rateLimiter(rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if rdb == nil {
		return nil
	}
	return middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
}

func (a *App) openStores(ctx context.Context) (Stores, error) {
	cfg := a.cfg
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := database.Open(ctx, database.MySQLOptions{
			User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			return Stores{}, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		if err := database.Migrate(ctx, db); err != nil {
			return Stores{}, err
		}
		sessions := repository.NewSessionRepo(db)
		a.sweeper = func(ctx context.Context) { sweepSessions(ctx, sessions, a.log) }
		return Stores{
			Users:    repository.NewUserRepo(db),
			Files:    repository.NewFileRepo(db),
			Sessions: sessions,
		}, nil

	case config.StoreMongo:
		client, err := database.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return Stores{}, err
		}
		a.closers = append(a.closers, client.Disconnect)
		ms := mongostore.New(client.Database(cfg.MongoDB))
		if err := ms.EnsureIndexes(ctx); err != nil {
			return Stores{}, err
		}
		return Stores{Users: ms.Users(), Files: ms.Files(), Sessions: ms.Sessions()}, nil

	case config.StoreMemory:
		a.log.Warn("using in-memory store: data is lost on restart")
		ms := memstore.New()
		return Stores{Users: ms.Users(), Files: ms.Files(), Sessions: ms.Sessions()}, nil
	}
	return Stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openBlobs(ctx context.Context, cfg config.Config) (storage.BlobStore, error) {
	if cfg.BlobDriver == "s3" {
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:       cfg.S3.Bucket,
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			Prefix:       cfg.S3.Prefix,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
	}
	return storage.NewLocalStore(cfg.UploadDir)
}

// sweepSessions deletes expired session rows once at startup and then every
// sessionSweepEvery until ctx is cancelled.
func sweepSessions(ctx context.Context, sessions *repository.SessionRepo, log *zap.Logger) {
	sweepOnce(ctx, sessions, log, time.Now())
	t := time.NewTicker(sessionSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			sweepOnce(ctx, sessions, log, now)
		}
	}
}

func sweepOnce(ctx context.Context, sessions *repository.SessionRepo, log *zap.Logger, now time.Time) {
	n, err := sessions.DeleteExpired(ctx, now)
	if err != nil {
		log.Warn("session sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("expired sessions removed", zap.Int64("count", n))
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// releases every backend.
func (a *App) Run(ctx context.Context) error {
	if a.sweeper != nil {
		go a.sweeper(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.cfg.Port
		a.log.Info("listening", zap.String("addr", addr), zap.String("env", a.cfg.Env))
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutCtx); err != nil {
		a.log.Error("http shutdown failed", zap.Error(err))
	}
	a.close(shutCtx)
	return runErr
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

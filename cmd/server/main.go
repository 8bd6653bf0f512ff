// Command server runs the ayo-portal API: auth, membership approval,
// contact messages, newsletter, and the picture gallery.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zafarimam8588/ayo-portal/modules/auth"
	"github.com/zafarimam8588/ayo-portal/modules/contact"
	"github.com/zafarimam8588/ayo-portal/modules/gallery"
	"github.com/zafarimam8588/ayo-portal/modules/membership"
	"github.com/zafarimam8588/ayo-portal/modules/newsletter"
	"github.com/zafarimam8588/ayo-portal/pkg/config"
	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/file"
	"github.com/zafarimam8588/ayo-portal/pkg/httpserver"
	"github.com/zafarimam8588/ayo-portal/pkg/httpx"
	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
	"github.com/zafarimam8588/ayo-portal/pkg/logger"
	"github.com/zafarimam8588/ayo-portal/pkg/pg"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/redis"
)

type appConfig struct {
	Logger     logger.Config
	Server     httpserver.Config
	Postgres   pg.Config
	Redis      redis.Config
	Email      email.Config
	Auth       auth.Config
	Newsletter newsletter.Config
	S3         file.S3Config

	UploadsDir string `env:"UPLOADS_DIR" envDefault:"./tmp/uploads"`
	UploadsURL string `env:"UPLOADS_URL" envDefault:"/files/"`
}

func main() {
	_ = config.LoadEnv(".env")

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Logger)
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	sender, err := buildSender(cfg, log)
	if err != nil {
		return err
	}

	storage, err := buildStorage(ctx, cfg)
	if err != nil {
		return err
	}

	tokens, err := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	authz := rbac.NewAuthorizer()

	authSvc := auth.NewService(cfg.Auth,
		auth.NewPostgresRepository(pool),
		auth.NewOTPStore(rdb, cfg.Auth.OTPTTL),
		auth.NewRateLimiter(rdb, cfg.Auth.LoginWindow, cfg.Auth.LoginBudget),
		tokens, sender, log)

	membershipSvc := membership.NewService(membership.NewPostgresRepository(pool), authSvc, authz, sender, log)
	contactSvc := contact.NewService(contact.NewPostgresRepository(pool), authz, sender, log)
	newsletterSvc := newsletter.NewService(cfg.Newsletter, newsletter.NewPostgresRepository(pool), authz, sender, log)
	gallerySvc := gallery.NewService(gallery.NewPostgresRepository(pool), storage, authz, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(pg.Healthcheck(pool), redis.Healthcheck(rdb)))

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", auth.NewHandler(authSvc, tokens).Router())
		r.Mount("/membership", membership.NewHandler(membershipSvc, tokens).Router())
		r.Mount("/contact", contact.NewHandler(contactSvc, tokens).Router())
		r.Mount("/newsletter", newsletter.NewHandler(newsletterSvc, tokens).Router())
		r.Mount("/gallery", gallery.NewHandler(gallerySvc, tokens).Router())
	})

	if local, ok := storage.(*file.LocalStorage); ok {
		r.Handle(cfg.UploadsURL+"*", http.StripPrefix(cfg.UploadsURL, local.FileServer()))
	}

	return httpserver.New(cfg.Server, log).Run(ctx, r)
}

// buildSender picks Postmark when a server token is configured, otherwise
// the development sender that writes emails to disk.
func buildSender(cfg appConfig, log *slog.Logger) (email.EmailSender, error) {
	if cfg.Email.PostmarkServerToken != "" {
		return email.NewPostmarkClient(cfg.Email)
	}
	log.Warn("postmark token not set, writing emails to disk", slog.String("dir", cfg.Email.DevOutputDir))
	return email.NewDevSender(cfg.Email.DevOutputDir), nil
}

// buildStorage picks S3 when a bucket is configured, otherwise local disk.
func buildStorage(ctx context.Context, cfg appConfig) (file.Storage, error) {
	if cfg.S3.Bucket != "" {
		return file.NewS3Storage(ctx, cfg.S3, nil)
	}
	return file.NewLocalStorage(cfg.UploadsDir, cfg.UploadsURL)
}

func healthz(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				httpx.ErrorWithMessage(w, httpx.ErrInternalServerError, "dependency unavailable")
				return
			}
		}
		httpx.Message(w, http.StatusOK, "ok")
	}
}

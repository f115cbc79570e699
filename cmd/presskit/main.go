// Package main wires together the site service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/avablackwood/presskit/internal/api"
	"github.com/avablackwood/presskit/internal/assets"
	"github.com/avablackwood/presskit/internal/cms"
	"github.com/avablackwood/presskit/internal/config"
	"github.com/avablackwood/presskit/internal/events"
	"github.com/avablackwood/presskit/internal/imagegen"
	"github.com/avablackwood/presskit/internal/intake"
	"github.com/avablackwood/presskit/internal/logging"
	"github.com/avablackwood/presskit/internal/mail"
	"github.com/avablackwood/presskit/internal/metrics"
	"github.com/avablackwood/presskit/internal/pipeline"
	"github.com/avablackwood/presskit/internal/preview"
	"github.com/avablackwood/presskit/internal/social"
	"github.com/avablackwood/presskit/internal/store"
	"github.com/avablackwood/presskit/internal/textgen"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	cmsStore, err := newContentStore(cfg)
	if err != nil {
		return fmt.Errorf("init content store: %w", err)
	}

	intakeStore, err := store.NewIntakeStore(ctx, store.Config{
		DSN:             cfg.DB.DSN,
		SubscriberTable: cfg.DB.SubscriberTable,
		ContactTable:    cfg.DB.ContactTable,
		MaxConns:        cfg.DB.MaxConns,
	})
	if err != nil {
		return fmt.Errorf("init intake store: %w", err)
	}
	defer intakeStore.Close()

	var mailer mail.Mailer = mail.NoOpMailer{}
	if cfg.Email.APIKey != "" {
		mailer, err = mail.NewResendMailer(mail.Config{
			APIKey:         cfg.Email.APIKey,
			TimeoutSeconds: cfg.Email.TimeoutSeconds,
		})
		if err != nil {
			return fmt.Errorf("init mailer: %w", err)
		}
	} else {
		logger.Warn("email api key not set, notification email disabled")
	}

	intakeSvc, err := intake.NewService(intake.Config{
		SiteName:       cfg.Site.SiteName,
		NewsletterFrom: cfg.Email.NewsletterFrom,
		ContactFrom:    cfg.Email.ContactFrom,
		OwnerAddress:   cfg.Email.OwnerAddress,
	}, intakeStore, mailer, logger.Named("intake"))
	if err != nil {
		return fmt.Errorf("init intake service: %w", err)
	}

	text := textgen.NewClient(textgen.Config{
		APIKey:         cfg.TextGen.APIKey,
		Model:          cfg.TextGen.Model,
		BaseURL:        cfg.TextGen.BaseURL,
		TimeoutSeconds: cfg.TextGen.TimeoutSeconds,
	})

	var providers []imagegen.Provider
	if cfg.ImageGen.OpenAIKey != "" {
		providers = append(providers, imagegen.NewOpenAI(imagegen.OpenAIConfig{
			APIKey:         cfg.ImageGen.OpenAIKey,
			Model:          cfg.ImageGen.OpenAIModel,
			TimeoutSeconds: cfg.ImageGen.TimeoutSeconds,
		}))
	}
	if cfg.ImageGen.GeminiKey != "" {
		providers = append(providers, imagegen.NewGemini(imagegen.GeminiConfig{
			APIKey:         cfg.ImageGen.GeminiKey,
			Model:          cfg.ImageGen.GeminiModel,
			TimeoutSeconds: cfg.ImageGen.TimeoutSeconds,
		}))
	}
	images := imagegen.NewChain(logger.Named("imagegen"), providers...)

	var channels []social.Channel
	if cfg.Webhook.URL != "" {
		webhook, err := social.NewWebhookChannel(cfg.Webhook.URL)
		if err != nil {
			return fmt.Errorf("init webhook channel: %w", err)
		}
		channels = append(channels, webhook)
	}
	if cfg.Social.Enabled {
		x, err := social.NewXChannel(social.OAuth1Credentials{
			ConsumerKey:       cfg.Social.APIKey,
			ConsumerSecret:    cfg.Social.APISecret,
			AccessToken:       cfg.Social.AccessToken,
			AccessTokenSecret: cfg.Social.AccessSecret,
		})
		if err != nil {
			return fmt.Errorf("init x channel: %w", err)
		}
		channels = append(channels, x)
	}
	announcer := social.NewAnnouncer(logger.Named("announce"), channels...)

	cards, err := newCardUploader(ctx, cfg, cmsStore)
	if err != nil {
		return fmt.Errorf("init asset uploader: %w", err)
	}

	publisher, err := newEventPublisher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init event publisher: %w", err)
	}
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Warn("event publisher close failed", zap.Error(closeErr))
		}
	}()

	pipe, err := pipeline.New(pipeline.Config{
		BaseURL:    cfg.Site.BaseURL,
		AuthorName: cfg.Site.AuthorName,
	}, cmsStore, text, images, announcer, cards, publisher, logger.Named("pipeline"))
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	renderer, err := preview.NewRenderer(preview.SiteConfig{
		BaseURL:       cfg.Site.BaseURL,
		SiteName:      cfg.Site.SiteName,
		AuthorName:    cfg.Site.AuthorName,
		TwitterHandle: cfg.Site.TwitterHandle,
	})
	if err != nil {
		return fmt.Errorf("init preview renderer: %w", err)
	}

	apiServer := api.NewServer(cfg, intakeSvc, pipe,
		newPreviewSource(cfg, cmsStore), renderer, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func newContentStore(cfg config.Config) (cms.Store, error) {
	switch cfg.CMS.Provider {
	case "sanity":
		return cms.NewSanityStore(cms.SanityConfig{
			ProjectID:      cfg.CMS.ProjectID,
			Dataset:        cfg.CMS.Dataset,
			APIVersion:     cfg.CMS.APIVersion,
			Token:          cfg.CMS.Token,
			TimeoutSeconds: cfg.CMS.TimeoutSeconds,
		})
	case "noop":
		return cms.NoOpStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cms provider %q", cfg.CMS.Provider)
	}
}

// newPreviewSource picks where preview lookups read from. Without a content
// store the previews come from the built-in static post set.
func newPreviewSource(cfg config.Config, cmsStore cms.Store) preview.PostSource {
	if cfg.CMS.Provider == "noop" {
		return preview.NewStaticSource(preview.StaticPosts())
	}
	return preview.NewStoreSource(cmsStore)
}

func newCardUploader(ctx context.Context, cfg config.Config, cmsStore cms.Store) (assets.Uploader, error) {
	switch cfg.Assets.Provider {
	case "cms":
		return assets.NewCMSUploader(cmsStore)
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		return assets.NewGCSUploader(client, cfg.Assets.GCSBucket, cfg.Assets.Prefix)
	case "noop":
		return assets.NoOpUploader{}, nil
	default:
		return nil, fmt.Errorf("unknown assets provider %q", cfg.Assets.Provider)
	}
}

func newEventPublisher(ctx context.Context, cfg config.Config) (events.Publisher, error) {
	switch cfg.Events.Provider {
	case "pubsub":
		return events.NewPubSubPublisher(ctx, cfg.Events.ProjectID, cfg.Events.TopicID)
	case "noop":
		return events.NoOpPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events provider %q", cfg.Events.Provider)
	}
}

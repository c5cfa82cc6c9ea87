package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/chatrelay/auth"
	"github.com/a-h/chatrelay/chat"
	"github.com/a-h/chatrelay/config"
	"github.com/a-h/chatrelay/db"
	"github.com/a-h/chatrelay/handlers"
	"github.com/a-h/chatrelay/models"
	"github.com/a-h/chatrelay/relay"
	"github.com/a-h/chatrelay/titles"
	"github.com/a-h/chatrelay/upstream"
	"github.com/pluja/pocketbase"
	"github.com/rqlite/gorqlite"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

type ServeCommand struct {
	ConfigFile        string `help:"A YAML file describing the upstreams and model catalogue." env:"CONFIG_FILE" default:""`
	LocalURL          string `help:"The URL of the local inference server, overrides the config file." env:"LOCAL_URL" default:""`
	CloudEndpoint     string `help:"The cloud chat completions URL, overrides the config file." env:"CLOUD_ENDPOINT" default:""`
	CloudProject      string `help:"The Google Cloud project hosting the cloud model." env:"CLOUD_PROJECT" default:""`
	CloudRegion       string `help:"The Google Cloud region hosting the cloud model." env:"CLOUD_REGION" default:""`
	GoogleCredentials string `help:"Base64 encoded service account JSON used to call the cloud model." env:"GOOGLE_CREDENTIALS_BASE64" default:""`
	CloudAPIKey       string `help:"A static bearer token for the cloud model, used when no Google credentials are set." env:"CLOUD_API_KEY" default:""`
	Store             string `help:"Where conversations are stored." env:"STORE" enum:"sqlite,rqlite,pocketbase,memory" default:"sqlite"`
	SQLitePath        string `help:"The path of the embedded database." env:"SQLITE_PATH" default:"chatrelay.db"`
	RqliteURL         string `help:"The URL of the rqlite server." env:"RQLITE_URL" default:"http://localhost:4001"`
	PocketbaseURL     string `help:"The URL of the Pocketbase server." env:"POCKETBASE_URL" default:"http://localhost:8090"`
	TitleModel        string `help:"The local model used to title new conversations, titles are taken from the prompt if empty." env:"TITLE_MODEL" default:""`
	ListenAddr        string `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	TLSCertFile       string `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile        string `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel          string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		return err
	}
	c.applyOverrides(&cfg)

	store, closeStore, err := c.openStore(log)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := &http.Client{}
	providers := map[models.Provider]upstream.Provider{
		models.ProviderLocal: upstream.NewLocal(log, httpClient, cfg.Local.URL),
	}
	log.Info("local upstream configured", slog.String("url", cfg.Local.URL))
	if endpoint := cfg.Cloud.URL(); endpoint != "" {
		credentials, err := c.credentials(ctx)
		if err != nil {
			return err
		}
		extract, err := upstream.ExtractorFor(cfg.Cloud.DeltaPath)
		if err != nil {
			return err
		}
		providers[models.ProviderCloud] = upstream.NewCloud(log, httpClient, endpoint, credentials, cfg.Cloud.Sampling, extract)
		log.Info("cloud upstream configured", slog.String("url", endpoint), slog.String("deltaPath", string(cfg.Cloud.DeltaPath)))
	}

	var titleModel llms.Model
	if c.TitleModel != "" {
		titleModel, err = ollama.New(
			ollama.WithModel(c.TitleModel),
			ollama.WithHTTPClient(httpClient),
			ollama.WithServerURL(cfg.Local.URL))
		if err != nil {
			return fmt.Errorf("failed to create title model: %w", err)
		}
	}

	h := handlers.New(log, handlers.Config{
		Relay:  relay.New(log, providers),
		Store:  store,
		Titler: titles.New(log, titleModel),
		Models: cfg.Models,
	})

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: h,
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}

func (c ServeCommand) applyOverrides(cfg *config.Config) {
	if c.LocalURL != "" {
		cfg.Local.URL = c.LocalURL
	}
	if c.CloudEndpoint != "" {
		cfg.Cloud.Endpoint = c.CloudEndpoint
	}
	if c.CloudProject != "" {
		cfg.Cloud.Project = c.CloudProject
	}
	if c.CloudRegion != "" {
		cfg.Cloud.Region = c.CloudRegion
	}
}

func (c ServeCommand) credentials(ctx context.Context) (auth.Provider, error) {
	if c.GoogleCredentials != "" {
		return auth.NewGoogle(ctx, c.GoogleCredentials)
	}
	if c.CloudAPIKey != "" {
		return auth.Static(c.CloudAPIKey), nil
	}
	return nil, fmt.Errorf("a cloud endpoint is configured, but neither GOOGLE_CREDENTIALS_BASE64 nor CLOUD_API_KEY is set")
}

func (c ServeCommand) openStore(log *slog.Logger) (store chat.Store, closer func(), err error) {
	switch c.Store {
	case "rqlite":
		log.Info("connecting to database", slog.String("url", c.RqliteURL))
		databaseURL, err := db.ParseRqliteURL(c.RqliteURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse rqlite URL: %w", err)
		}
		conn, err := gorqlite.Open(databaseURL.DataSourceName())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open connection: %w", err)
		}
		log.Info("migrating database schema", slog.String("url", databaseURL.MigrateDatabaseURL()))
		if err = db.Migrate(databaseURL); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return db.New(conn), conn.Close, nil
	case "sqlite":
		log.Info("opening database", slog.String("path", c.SQLitePath))
		s, err := db.OpenSQLite(c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "pocketbase":
		log.Info("using pocketbase", slog.String("url", c.PocketbaseURL))
		return db.NewPocketbase(pocketbase.NewClient(c.PocketbaseURL)), func() {}, nil
	case "memory":
		log.Warn("conversations will be lost on exit")
		return chat.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", c.Store)
}

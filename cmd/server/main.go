package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/avolkov/vidquiz/internal/api"
	"github.com/avolkov/vidquiz/internal/config"
	"github.com/avolkov/vidquiz/internal/database"
	"github.com/avolkov/vidquiz/internal/media"
	"github.com/avolkov/vidquiz/internal/pipeline"
	"github.com/avolkov/vidquiz/internal/pubsub"
	"github.com/avolkov/vidquiz/internal/storage"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("initializing storage")
	}

	db, err := database.NewDB(database.Config{
		Type:       cfg.DBType,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Name:       cfg.DBName,
		SQLitePath: cfg.DBPath,
	})
	if err != nil {
		log.WithError(err).Fatal("initializing database")
	}
	defer db.Close()

	if cfg.DBType == "postgres" {
		log.WithField("path", cfg.MigrationsPath).Info("running database migrations")
		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			log.WithError(err).Fatal("running migrations")
		}
	}

	videos := database.NewVideoRepository(db)
	segments := database.NewSegmentRepository(db)
	questions := database.NewQuestionRepository(db)
	broker := pubsub.NewBroker()

	pipe := pipeline.NewService(
		videos, segments, questions, broker,
		media.FFProbe{},
		&pipeline.Transcriber{
			Window: cfg.SegmentWindow,
			Text:   pipeline.NewStubTextSource(cfg.StubDelay),
		},
		&pipeline.Generator{
			Questions: pipeline.NewStubQuestionSource(cfg.StubDelay, cfg.StubSeed),
		},
		pipeline.Config{
			StageTimeout:     cfg.StageTimeout,
			FallbackDuration: cfg.DefaultDuration,
		},
		log,
	)

	app := api.NewApp(log, localStorage, videos, segments, questions, pipe, broker, cfg.MaxUploadSize)
	router := api.NewRouter(app)

	log.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"uploadDir":  cfg.UploadDir,
		"dbType":     cfg.DBType,
		"maxUpload":  cfg.MaxUploadSize,
		"window":     cfg.SegmentWindow,
	}).Info("server starting")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

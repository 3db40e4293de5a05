package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"repairhub/config"
	feedbackRepo "repairhub/database/repository/feedback"
	requestRepo "repairhub/database/repository/request"
)

// Stores bundles the repositories selected by STORE_DRIVER.
type Stores struct {
	Driver   string
	Requests requestRepo.RequestStore
	Feedback feedbackRepo.FeedbackSource

	// Ping reports whether the backing database is reachable.
	Ping  func(ctx context.Context) error
	Close func()
}

// OpenStores connects the configured backend and prepares its indexes.
func OpenStores(ctx context.Context, logger *zap.Logger) (*Stores, error) {
	driver := config.AppConfig.StoreDriver
	switch driver {
	case config.StoreMongo, "":
		client, err := InitDB()
		if err != nil {
			return nil, err
		}
		db := client.Database(config.AppConfig.DatabaseName)
		requests := requestRepo.NewMongoRequestRepo(db, logger.Named("requests"))
		feedback := feedbackRepo.NewMongoFeedbackRepo(db, logger.Named("feedback"))

		ictx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := requests.EnsureIndexes(ictx); err != nil {
			logger.Warn("failed to ensure request indexes", zap.Error(err))
		}
		if err := feedback.EnsureIndexes(ictx); err != nil {
			logger.Warn("failed to ensure feedback indexes", zap.Error(err))
		}

		return &Stores{
			Driver:   config.StoreMongo,
			Requests: requests,
			Feedback: feedback,
			Ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Close: func() {
				cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(cctx)
			},
		}, nil

	case config.StoreFirestore:
		client, err := InitFirestore(ctx)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:   config.StoreFirestore,
			Requests: requestRepo.NewFirestoreRequestRepo(client, logger.Named("requests")),
			Feedback: feedbackRepo.NewFirestoreFeedbackRepo(client, logger.Named("feedback")),
			Ping: func(ctx context.Context) error {
				_, err := client.Collection(requestRepo.CollectionName).Limit(1).Documents(ctx).GetAll()
				return err
			},
			Close: func() { _ = client.Close() },
		}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory stores; data is lost on restart")
		return &Stores{
			Driver:   config.StoreMemory,
			Requests: requestRepo.NewMemoryRequestRepo(),
			Feedback: feedbackRepo.NewMemoryFeedbackRepo(),
			Ping:     func(context.Context) error { return nil },
			Close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
}

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection         = "users"
	donationsCollection     = "donations"
	requestsCollection      = "requests"
	assignmentsCollection   = "assignments"
	notificationsCollection = "notifications"

	defaultTimeout = 5 * time.Second
)

// MongoStore bundles Store with connection management.
type MongoStore interface {
	Store
	Ping() error
	Close()
	EnsureIndexes(ctx context.Context) error
}

type mongoDB struct {
	client *mongo.Client
	db     *mongo.Database
	log    *zap.Logger
}

// NewMongoStore returns mongo-backed persistence operations.
func NewMongoStore(client *mongo.Client, database string, log *zap.Logger) MongoStore {
	return &mongoDB{
		client: client,
		db:     client.Database(database),
		log:    log,
	}
}

func (m *mongoDB) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoDB) Close() {
	m.log.Info("closing mongo db connections")
	_ = m.client.Disconnect(context.Background())
}

// EnsureIndexes creates the indexes the lifecycle invariants rely on. The
// unique (donation, ngo) index on requests is what closes the duplicate
// request race under concurrent creates.
func (m *mongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(donationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "donor", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(requestsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "donation", Value: 1}, {Key: "ngo", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "ngo", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(assignmentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "donation", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "volunteer", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = m.db.Collection(notificationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

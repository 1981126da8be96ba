package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"food-rescue-api-server/internal/models"
)

func (m *mongoDB) InsertRequest(ctx context.Context, r *models.Request) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.RequestedAt.IsZero() {
		r.RequestedAt = now
	}

	result, err := m.db.Collection(requestsCollection).InsertOne(ctx, r)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	r.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *mongoDB) GetRequest(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var r models.Request
	err := m.db.Collection(requestsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (m *mongoDB) UpdateRequest(ctx context.Context, r *models.Request) error {
	r.UpdatedAt = time.Now()
	result, err := m.db.Collection(requestsCollection).ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDB) DeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.db.Collection(requestsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDB) ListRequests(ctx context.Context, f RequestFilter) ([]models.Request, error) {
	filter := bson.M{}
	if f.NGO != nil {
		filter["ngo"] = *f.NGO
	}
	if f.Donation != nil {
		filter["donation"] = *f.Donation
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cursor, err := m.db.Collection(requestsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.Request{}
	}
	return requests, nil
}

func (m *mongoDB) FindRequestByDonationAndNGO(ctx context.Context, donationID, ngoID primitive.ObjectID) (*models.Request, error) {
	var r models.Request
	err := m.db.Collection(requestsCollection).FindOne(ctx, bson.M{
		"donation": donationID,
		"ngo":      ngoID,
	}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

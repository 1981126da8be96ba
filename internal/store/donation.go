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

func (m *mongoDB) InsertDonation(ctx context.Context, d *models.Donation) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	result, err := m.db.Collection(donationsCollection).InsertOne(ctx, d)
	if err != nil {
		return err
	}
	d.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *mongoDB) GetDonation(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var d models.Donation
	err := m.db.Collection(donationsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *mongoDB) UpdateDonation(ctx context.Context, d *models.Donation) error {
	d.UpdatedAt = time.Now()
	result, err := m.db.Collection(donationsCollection).ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDB) DeleteDonation(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.db.Collection(donationsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDB) ListDonations(ctx context.Context, f DonationFilter) ([]models.Donation, error) {
	filter := bson.M{}
	if f.Donor != nil {
		filter["donor"] = *f.Donor
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Unassigned {
		filter["assignedTo"] = nil
	}
	if f.HasAcceptedBy {
		filter["acceptedBy"] = bson.M{"$ne": nil}
	}

	cursor, err := m.db.Collection(donationsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err = cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	if donations == nil {
		donations = []models.Donation{}
	}
	return donations, nil
}

// findOneAndUpdate helper shared by the guarded donation writes.
func (m *mongoDB) guardedDonationUpdate(ctx context.Context, filter, update bson.M) (*models.Donation, error) {
	var d models.Donation
	err := m.db.Collection(donationsCollection).FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoMatch
		}
		return nil, err
	}
	return &d, nil
}

func (m *mongoDB) MarkDonationAccepted(ctx context.Context, id, ngoID primitive.ObjectID) (*models.Donation, error) {
	now := time.Now()
	return m.guardedDonationUpdate(ctx,
		bson.M{"_id": id, "status": models.DonationStatusPending},
		bson.M{"$set": bson.M{
			"status":     models.DonationStatusAccepted,
			"acceptedBy": ngoID,
			"acceptedAt": now,
			"updatedAt":  now,
		}},
	)
}

func (m *mongoDB) AcceptDonationDirect(ctx context.Context, id, actorID primitive.ObjectID) (*models.Donation, error) {
	now := time.Now()
	return m.guardedDonationUpdate(ctx,
		bson.M{"_id": id, "status": models.DonationStatusPending},
		bson.M{"$set": bson.M{
			"status":     models.DonationStatusAccepted,
			"assignedTo": actorID,
			"acceptedAt": now,
			"updatedAt":  now,
		}},
	)
}

func (m *mongoDB) AssignDonation(ctx context.Context, id, volunteerID primitive.ObjectID, fromStatuses []string) (*models.Donation, error) {
	now := time.Now()
	return m.guardedDonationUpdate(ctx,
		bson.M{
			"_id":        id,
			"status":     bson.M{"$in": fromStatuses},
			"assignedTo": nil,
		},
		bson.M{"$set": bson.M{
			"status":     models.DonationStatusAssigned,
			"assignedTo": volunteerID,
			"updatedAt":  now,
		}},
	)
}

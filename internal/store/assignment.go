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

func (m *mongoDB) InsertAssignment(ctx context.Context, a *models.Assignment) error {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.AssignedAt.IsZero() {
		a.AssignedAt = now
	}

	result, err := m.db.Collection(assignmentsCollection).InsertOne(ctx, a)
	if err != nil {
		return err
	}
	a.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *mongoDB) GetAssignment(ctx context.Context, id primitive.ObjectID) (*models.Assignment, error) {
	var a models.Assignment
	err := m.db.Collection(assignmentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (m *mongoDB) UpdateAssignment(ctx context.Context, a *models.Assignment) error {
	a.UpdatedAt = time.Now()
	result, err := m.db.Collection(assignmentsCollection).ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDB) ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	filter := bson.M{}
	if f.Volunteer != nil {
		filter["volunteer"] = *f.Volunteer
	}
	if f.Donation != nil {
		filter["donation"] = *f.Donation
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cursor, err := m.db.Collection(assignmentsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []models.Assignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return assignments, nil
}

func (m *mongoDB) FindActiveAssignment(ctx context.Context, donationID primitive.ObjectID) (*models.Assignment, error) {
	var a models.Assignment
	err := m.db.Collection(assignmentsCollection).FindOne(ctx, bson.M{
		"donation": donationID,
		"status":   bson.M{"$in": models.ActiveAssignmentStatuses},
	}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

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

func (m *mongoDB) InsertNotification(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()

	result, err := m.db.Collection(notificationsCollection).InsertOne(ctx, n)
	if err != nil {
		return err
	}
	n.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *mongoDB) GetNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := m.db.Collection(notificationsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (m *mongoDB) ListNotifications(ctx context.Context, recipient primitive.ObjectID, limit int64) ([]models.Notification, error) {
	cursor, err := m.db.Collection(notificationsCollection).Find(ctx,
		bson.M{"recipient": recipient},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (m *mongoDB) CountUnreadNotifications(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return m.db.Collection(notificationsCollection).CountDocuments(ctx, bson.M{
		"recipient": recipient,
		"isRead":    false,
	})
}

func (m *mongoDB) MarkNotificationRead(ctx context.Context, id primitive.ObjectID) error {
	result, err := m.db.Collection(notificationsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDB) MarkAllNotificationsRead(ctx context.Context, recipient primitive.ObjectID) error {
	_, err := m.db.Collection(notificationsCollection).UpdateMany(ctx,
		bson.M{"recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	return err
}

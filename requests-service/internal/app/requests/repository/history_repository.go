package repository

import (
	"context"
	"fmt"
	"time"

	"expertaid/requests-service/internal/app/requests/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type historyRepository struct {
	collection *mongo.Collection
}

// NewHistoryRepository создает новый репозиторий истории пользователей.
// Автоматически создает индексы по user_id и service_id
func NewHistoryRepository(db *mongo.Database) HistoryRepository {
	collection := db.Collection("user_history")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetName("user_id_idx"),
	}

	_, err := collection.Indexes().CreateOne(ctx, userIndexModel)
	if err != nil {
		// Логируем ошибку, но не прерываем работу - индекс может уже существовать
		fmt.Printf("Warning: failed to create index on user_id: %v\n", err)
	}

	// Уникальный индекс по service_id гарантирует ровно одну запись на заявку
	serviceIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "service_id", Value: 1},
		},
		Options: options.Index().SetName("service_id_idx").SetUnique(true),
	}

	_, err = collection.Indexes().CreateOne(ctx, serviceIndexModel)
	if err != nil {
		fmt.Printf("Warning: failed to create index on service_id: %v\n", err)
	}

	return &historyRepository{
		collection: collection,
	}
}

// Append добавляет запись истории в MongoDB
func (r *historyRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	entry.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	return nil
}

// ListByUser получает записи истории пользователя, свежие первыми
func (r *historyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.HistoryEntry, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find history entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []entity.HistoryEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}

	return entries, nil
}

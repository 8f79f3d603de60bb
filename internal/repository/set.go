package repository

import (
	"go.mongodb.org/mongo-driver/mongo"

	"gruby/internal/database"
)

// Set holds one repository per collection.
type Set struct {
	Users         *UserRepository
	Products      *ProductRepository
	Orders        *OrderRepository
	Favorites     *FavoriteRepository
	Applications  *CreatorApplicationRepository
	Gatherings    *GatheringRepository
	ShoppingLists *ShoppingListRepository
	Notifications *NotificationRepository
	Content       *ContentRepository
	Reports       *ReportRepository
	Feedback      *FeedbackRepository
	Embeddings    *EmbeddingRepository
}

func NewSet(db *mongo.Database) *Set {
	return &Set{
		Users:         NewUserRepository(db.Collection(database.Users)),
		Products:      NewProductRepository(db.Collection(database.Products)),
		Orders:        NewOrderRepository(db.Collection(database.Orders)),
		Favorites:     NewFavoriteRepository(db.Collection(database.Favorites)),
		Applications:  NewCreatorApplicationRepository(db.Collection(database.CreatorApplications)),
		Gatherings:    NewGatheringRepository(db.Collection(database.Gatherings)),
		ShoppingLists: NewShoppingListRepository(db.Collection(database.ShoppingLists)),
		Notifications: NewNotificationRepository(db.Collection(database.Notifications)),
		Content:       NewContentRepository(db.Collection(database.Content)),
		Reports:       NewReportRepository(db.Collection(database.Reports)),
		Feedback:      NewFeedbackRepository(db.Collection(database.Feedback)),
		Embeddings:    NewEmbeddingRepository(db.Collection(database.Embeddings)),
	}
}

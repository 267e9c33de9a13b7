package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irkinnovations/portfolio/internal/database"
	"github.com/irkinnovations/portfolio/internal/domain"
)

// MongoAdminRepository handles administrator data access on MongoDB.
type MongoAdminRepository struct {
	db *database.Handle[*mongo.Database]
}

// NewMongoAdminRepository creates a new MongoAdminRepository.
func NewMongoAdminRepository(db *database.Handle[*mongo.Database]) *MongoAdminRepository {
	return &MongoAdminRepository{db: db}
}

func (r *MongoAdminRepository) findOne(ctx context.Context, filter bson.M) (*domain.Admin, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var admin domain.Admin
	if err := db.Collection(database.AdminsCollection).FindOne(ctx, filter).Decode(&admin); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}

// FindByID retrieves an administrator by ID.
func (r *MongoAdminRepository) FindByID(ctx context.Context, id string) (*domain.Admin, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail retrieves an administrator by email address.
func (r *MongoAdminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// Upsert creates the administrator or replaces the password of the existing one with the same email.
func (r *MongoAdminRepository) Upsert(ctx context.Context, admin domain.Admin) (*domain.Admin, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set": bson.M{
			"passwordHash": admin.PasswordHash,
			"updatedAt":    admin.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":       admin.ID,
			"createdAt": admin.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.Admin
	err = db.Collection(database.AdminsCollection).
		FindOneAndUpdate(ctx, bson.M{"email": admin.Email}, update, opts).
		Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("upsert admin: %w", err)
	}
	return &stored, nil
}

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

// MongoProjectRepository handles project data access on MongoDB.
type MongoProjectRepository struct {
	db *database.Handle[*mongo.Database]
}

// NewMongoProjectRepository creates a new MongoProjectRepository.
func NewMongoProjectRepository(db *database.Handle[*mongo.Database]) *MongoProjectRepository {
	return &MongoProjectRepository{db: db}
}

func (r *MongoProjectRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(database.ProjectsCollection), nil
}

// List returns every project, newest-created first.
func (r *MongoProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]domain.Project, 0, 16)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	for i := range out {
		normalize(&out[i])
	}
	return out, nil
}

// FindByID retrieves a project by its ID.
func (r *MongoProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	var p domain.Project
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	normalize(&p)
	return &p, nil
}

// Create inserts a project whose ID and timestamps are already assigned.
func (r *MongoProjectRepository) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	normalize(&p)
	if _, err := coll.InsertOne(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

// Update replaces every mutable field of the project with p.ID.
func (r *MongoProjectRepository) Update(ctx context.Context, p domain.Project) (*domain.Project, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}

	normalize(&p)
	update := bson.M{"$set": bson.M{
		"title":            p.Title,
		"description":      p.Description,
		"shortDescription": p.ShortDescription,
		"mainImage":        p.MainImage,
		"detailImages":     p.DetailImages,
		"liveLink":         p.LiveLink,
		"updatedAt":        p.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domain.Project
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, update, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project %s: %w", p.ID, err)
	}
	normalize(&updated)
	return &updated, nil
}

// Delete permanently removes a project.
func (r *MongoProjectRepository) Delete(ctx context.Context, id string) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func normalize(p *domain.Project) {
	if p.DetailImages == nil {
		p.DetailImages = []string{}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
}

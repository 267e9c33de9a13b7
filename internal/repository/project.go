package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/irkinnovations/portfolio/internal/database"
	"github.com/irkinnovations/portfolio/internal/domain"
)

const projectColumns = `id, title, description, short_description, main_image, detail_images, live_link, created_at, updated_at`

// ProjectRepository handles project data access on Postgres.
type ProjectRepository struct {
	db *database.Handle[*sqlx.DB]
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *database.Handle[*sqlx.DB]) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// imageList is stored as a JSONB array.
type imageList []string

func (l imageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *imageList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = imageList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan detail_images: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan detail_images: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

type projectRow struct {
	ID               string    `db:"id"`
	Title            string    `db:"title"`
	Description      string    `db:"description"`
	ShortDescription string    `db:"short_description"`
	MainImage        string    `db:"main_image"`
	DetailImages     imageList `db:"detail_images"`
	LiveLink         string    `db:"live_link"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r projectRow) toDomain() domain.Project {
	return domain.Project{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		MainImage:        r.MainImage,
		DetailImages:     []string(r.DetailImages),
		LiveLink:         r.LiveLink,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

// List returns every project, newest-created first.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var rows []projectRow
	err = db.SelectContext(ctx, &rows,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]domain.Project, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// FindByID retrieves a project by its ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var row projectRow
	err = db.GetContext(ctx, &row,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	p := row.toDomain()
	return &p, nil
}

// Create inserts a project whose ID and timestamps are already assigned.
func (r *ProjectRepository) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var row projectRow
	err = db.QueryRowxContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+projectColumns,
		p.ID, p.Title, p.Description, p.ShortDescription, p.MainImage,
		imageList(p.DetailImages), p.LiveLink, p.CreatedAt, p.UpdatedAt,
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	created := row.toDomain()
	return &created, nil
}

// Update replaces every mutable field of the project with p.ID.
func (r *ProjectRepository) Update(ctx context.Context, p domain.Project) (*domain.Project, error) {
	db, err := r.db.Get(ctx)
	if err != nil {
		return nil, err
	}

	var row projectRow
	err = db.QueryRowxContext(ctx,
		`UPDATE projects
		 SET title = $2, description = $3, short_description = $4, main_image = $5,
		     detail_images = $6, live_link = $7, updated_at = $8
		 WHERE id = $1
		 RETURNING `+projectColumns,
		p.ID, p.Title, p.Description, p.ShortDescription, p.MainImage,
		imageList(p.DetailImages), p.LiveLink, p.UpdatedAt,
	).StructScan(&row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project %s: %w", p.ID, err)
	}
	updated := row.toDomain()
	return &updated, nil
}

// Delete permanently removes a project.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	db, err := r.db.Get(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irkinnovations/portfolio/internal/database"
	"github.com/irkinnovations/portfolio/internal/domain"
)

var projectCols = []string{
	"id", "title", "description", "short_description", "main_image",
	"detail_images", "live_link", "created_at", "updated_at",
}

func setupProjectRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	handle := database.Ready("postgres", sqlx.NewDb(db, "pgx"))
	return NewProjectRepository(handle), mock
}

func TestProjectRepository_List(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects ORDER BY created_at DESC, id DESC")).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("b", "B", "desc b", "short b", "https://cdn.test/b.png", []byte(`["https://cdn.test/b1.png"]`), "", newer, newer).
			AddRow("a", "A", "desc a", "short a", "https://cdn.test/a.png", []byte(`[]`), "https://a.test", older, older))

	projects, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)

	assert.Equal(t, "b", projects[0].ID)
	assert.Equal(t, []string{"https://cdn.test/b1.png"}, projects[0].DetailImages)
	assert.Equal(t, "a", projects[1].ID)
	assert.Equal(t, []string{}, projects[1].DetailImages)
	assert.Equal(t, "https://a.test", projects[1].LiveLink)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE id = $1")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "Title", "Desc", "Short", "https://cdn.test/m.png", `["https://cdn.test/1.png","https://cdn.test/2.png"]`, "", now, now))

		p, err := repo.FindByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Title", p.Title)
		assert.Equal(t, "Short", p.ShortDescription)
		assert.Len(t, p.DetailImages, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("timestamps in UTC", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		local := time.Date(2026, 3, 1, 14, 30, 0, 0, time.FixedZone("CET", 3600))
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE id = $1")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "Title", "Desc", "Short", "https://cdn.test/m.png", `[]`, "", local, local))

		p, err := repo.FindByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, time.UTC, p.CreatedAt.Location())
		assert.Equal(t, time.UTC, p.UpdatedAt.Location())
		assert.Equal(t, 13, p.CreatedAt.Hour())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE id = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM projects WHERE id = $1")).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByID(context.Background(), "p1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProjectRepository_Create(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := domain.Project{
		ID:               "p1",
		Title:            "Title",
		Description:      "Desc",
		ShortDescription: "Short",
		MainImage:        "https://cdn.test/m.png",
		DetailImages:     []string{"https://cdn.test/1.png"},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
		WithArgs("p1", "Title", "Desc", "Short", "https://cdn.test/m.png",
			`["https://cdn.test/1.png"]`, "", now, now).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "Title", "Desc", "Short", "https://cdn.test/m.png", `["https://cdn.test/1.png"]`, "", now, now))

	created, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, *created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CreateWithoutGalleryStoresEmptyArray(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects")).
		WithArgs("p1", "T", "D", "S", "https://cdn.test/m.png", "[]", "", now, now).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "T", "D", "S", "https://cdn.test/m.png", `[]`, "", now, now))

	_, err := repo.Create(context.Background(), domain.Project{
		ID: "p1", Title: "T", Description: "D", ShortDescription: "S",
		MainImage: "https://cdn.test/m.png", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Update(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		updated := created.Add(time.Hour)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects")).
			WithArgs("p1", "New", "Desc", "Short", "https://cdn.test/m.png", "[]", "", updated).
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "New", "Desc", "Short", "https://cdn.test/m.png", `[]`, "", created, updated))

		p, err := repo.Update(context.Background(), domain.Project{
			ID: "p1", Title: "New", Description: "Desc", ShortDescription: "Short",
			MainImage: "https://cdn.test/m.png", DetailImages: []string{}, UpdatedAt: updated,
		})
		require.NoError(t, err)
		assert.Equal(t, "New", p.Title)
		assert.Equal(t, created, p.CreatedAt)
		assert.Equal(t, updated, p.UpdatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects")).WillReturnError(sql.ErrNoRows)

		_, err := repo.Update(context.Background(), domain.Project{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProjectRepository_Delete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
			WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), "p1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), domain.ErrNotFound)
	})
}

func TestImageList_Scan(t *testing.T) {
	var l imageList
	require.NoError(t, l.Scan(nil))
	assert.Equal(t, imageList{}, l)

	require.NoError(t, l.Scan(`["x"]`))
	assert.Equal(t, imageList{"x"}, l)

	require.NoError(t, l.Scan([]byte(`null`)))
	assert.Equal(t, imageList{}, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))
}

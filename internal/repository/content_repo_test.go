package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
)

func TestContentRepositoryCRUD(t *testing.T) {
	db := setupTestDB(t, &models.Facility{})
	repo := NewContentRepository[models.Facility](db, ContentRepositoryOptions{
		SearchColumns: []string{"name", "description"},
		OrderBy:       "sort_order ASC, created_at DESC",
	})
	ctx := context.Background()

	masjid := models.Facility{Name: "Masjid", Description: "Masjid jami", SortOrder: 2}
	require.NoError(t, repo.Create(ctx, &masjid))
	require.NotEmpty(t, masjid.ID)

	sekolah := models.Facility{Name: "Sekolah", Description: "Madrasah", SortOrder: 1}
	require.NoError(t, repo.Create(ctx, &sekolah))

	items, total, err := repo.List(ctx, ContentQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "Sekolah", items[0].Name, "sort order wins")

	found, err := repo.GetByID(ctx, masjid.ID)
	require.NoError(t, err)
	require.Equal(t, "Masjid", found.Name)

	found.Name = "Masjid Baru"
	require.NoError(t, repo.Update(ctx, &found))

	reloaded, err := repo.GetByID(ctx, masjid.ID)
	require.NoError(t, err)
	require.Equal(t, "Masjid Baru", reloaded.Name)

	require.NoError(t, repo.Delete(ctx, masjid.ID))
	require.ErrorIs(t, repo.Delete(ctx, masjid.ID), gorm.ErrRecordNotFound)

	_, err = repo.GetByID(ctx, masjid.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestContentRepositorySearchScopesAndPagination(t *testing.T) {
	db := setupTestDB(t, &models.Program{})
	repo := NewContentRepository[models.Program](db, ContentRepositoryOptions{SearchColumns: []string{"name"}})
	ctx := context.Background()

	now := time.Now()
	fixtures := []models.Program{
		{ContentBase: models.ContentBase{CreatedAt: now.Add(-3 * time.Hour)}, Name: "Beasiswa Santri", IsActive: true},
		{ContentBase: models.ContentBase{CreatedAt: now.Add(-2 * time.Hour)}, Name: "Sumur Wakaf", IsActive: true},
		{ContentBase: models.ContentBase{CreatedAt: now.Add(-time.Hour)}, Name: "Beasiswa Yatim", IsActive: false},
	}
	for i := range fixtures {
		require.NoError(t, repo.Create(ctx, &fixtures[i]))
	}

	searched, total, err := repo.List(ctx, ContentQuery{Search: "beasiswa"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "Beasiswa Yatim", searched[0].Name, "newest first by default")

	active := func(db *gorm.DB) *gorm.DB { return db.Where("is_active = ?", true) }
	scoped, total, err := repo.List(ctx, ContentQuery{Scopes: []func(*gorm.DB) *gorm.DB{active}})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, scoped, 2)

	page, total, err := repo.List(ctx, ContentQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	require.Equal(t, "Beasiswa Santri", page[0].Name)
}

func TestContentRepositoryFindByAndTags(t *testing.T) {
	db := setupTestDB(t, &models.Documentation{}, &models.Article{})
	ctx := context.Background()

	docs := NewContentRepository[models.Documentation](db, ContentRepositoryOptions{})
	item := models.Documentation{Title: "Peletakan batu", MediaURL: "https://cdn.example.com/a.jpg", MediaKind: models.MediaKindImage, Tags: []string{" Pembangunan ", "Masjid"}}
	require.NoError(t, docs.Create(ctx, &item))

	stored, err := docs.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"pembangunan", "masjid"}, stored.Tags)

	articles := NewContentRepository[models.Article](db, ContentRepositoryOptions{})
	article := models.Article{Slug: "laporan-wakaf", Title: "Laporan", Body: "isi"}
	require.NoError(t, articles.Create(ctx, &article))

	found, err := articles.FindBy(ctx, "slug", "laporan-wakaf")
	require.NoError(t, err)
	require.Equal(t, article.ID, found.ID)
}

func TestUserRepositoryUpsertAndRoles(t *testing.T) {
	db := setupTestDB(t, &models.AdminUser{}, &models.UserRole{})
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.AdminUser{Email: "Admin@Wakaf.org", PasswordHash: "hash-1"}
	require.NoError(t, repo.Upsert(ctx, &user))
	require.NotEmpty(t, user.ID)

	again := models.AdminUser{Email: "admin@wakaf.org", PasswordHash: "hash-2"}
	require.NoError(t, repo.Upsert(ctx, &again))
	require.Equal(t, user.ID, again.ID)

	stored, err := repo.FindByEmail(ctx, "ADMIN@wakaf.org")
	require.NoError(t, err)
	require.Equal(t, "hash-2", stored.PasswordHash)

	ok, err := repo.HasRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.GrantRole(ctx, user.ID, "Admin"))
	require.NoError(t, repo.GrantRole(ctx, user.ID, models.RoleAdmin), "granting twice is a no-op")

	ok, err = repo.HasRole(ctx, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)
}

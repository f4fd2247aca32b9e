package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/observability"
)

type invalidatorStub struct {
	mu     sync.Mutex
	tables []string
	err    error
}

func (s *invalidatorStub) Invalidate(ctx context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = append(s.tables, table)
	return s.err
}

func (s *invalidatorStub) invalidated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tables...)
}

type adminContentFixture struct {
	svc      AdminContentService
	activity ActivityService
	repo     *memoryActivityRepo
	cache    *invalidatorStub
	diag     *observability.RecordingDiagnostics
}

func newAdminContentFixture(t *testing.T) adminContentFixture {
	t.Helper()
	db := setupServiceDB(t)
	repo := &memoryActivityRepo{}
	diag := &observability.RecordingDiagnostics{}
	activity := newTestActivityService(repo, diag, ActivityServiceOptions{})
	cache := &invalidatorStub{}
	svc := NewAdminContentService(NewContentRepositories(db), activity, cache, validator.New(), testLogger())
	return adminContentFixture{svc: svc, activity: activity, repo: repo, cache: cache, diag: diag}
}

func TestAdminContentUpdateIsLoggedWithBothSnapshots(t *testing.T) {
	f := newAdminContentFixture(t)
	ctx := adminContext()

	created, err := f.svc.Create(ctx, "facilities", []byte(`{"name":"Masjid","description":"Masjid jami"}`))
	require.NoError(t, err)
	facility := created.(models.Facility)
	require.NotEmpty(t, facility.ID)
	f.activity.Wait()

	updated, err := f.svc.Update(ctx, "facilities", facility.ID, []byte(`{"name":"Masjid Baru"}`))
	require.NoError(t, err)
	require.Equal(t, "Masjid Baru", updated.(models.Facility).Name)
	require.Equal(t, "Masjid jami", updated.(models.Facility).Description)
	f.activity.Wait()

	latest, err := f.activity.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)

	entry := latest[0]
	require.Equal(t, models.ActivityUpdate, entry.Action)
	require.Equal(t, TableFacility, entry.TargetTable)
	require.NotNil(t, entry.TargetRecordID)
	require.Equal(t, facility.ID, *entry.TargetRecordID)
	require.Equal(t, adminUser.ID, entry.ActorID)
	require.Equal(t, "Update fasilitas: Masjid Baru", entry.Description)

	oldPayload, err := entry.OldPayload.Map()
	require.NoError(t, err)
	require.Equal(t, "Masjid", oldPayload["name"])
	newPayload, err := entry.NewPayload.Map()
	require.NoError(t, err)
	require.Equal(t, "Masjid Baru", newPayload["name"])

	require.Equal(t, []string{TableFacility, TableFacility}, f.cache.invalidated())
	require.Empty(t, f.diag.Captures())
}

func TestAdminContentCreateAndDeleteSnapshots(t *testing.T) {
	f := newAdminContentFixture(t)
	ctx := adminContext()

	created, err := f.svc.Create(ctx, "programs", []byte(`{"name":"Santunan Yatim","category":"Sosial"}`))
	require.NoError(t, err)
	program := created.(models.Program)
	require.True(t, program.IsActive)
	require.Equal(t, "sosial", program.Category)
	f.activity.Wait()

	require.NoError(t, f.svc.Delete(ctx, "programs", program.ID))
	f.activity.Wait()

	entries := f.repo.snapshot()
	require.Len(t, entries, 2)

	require.Equal(t, models.ActivityCreate, entries[0].Action)
	require.True(t, entries[0].OldPayload.IsZero())
	require.False(t, entries[0].NewPayload.IsZero())
	require.Equal(t, "Tambah program: Santunan Yatim", entries[0].Description)

	require.Equal(t, models.ActivityDelete, entries[1].Action)
	require.False(t, entries[1].OldPayload.IsZero())
	require.True(t, entries[1].NewPayload.IsZero())
	require.Equal(t, "Hapus program: Santunan Yatim", entries[1].Description)

	_, err = f.svc.Get(ctx, "programs", program.ID)
	require.ErrorIs(t, err, ErrContentNotFound)
}

func TestAdminContentFailedWritesAreNotLogged(t *testing.T) {
	f := newAdminContentFixture(t)
	ctx := adminContext()

	_, err := f.svc.Create(ctx, "facilities", []byte(`{"description":"tanpa nama"}`))
	require.ErrorIs(t, err, ErrContentInvalid)

	_, err = f.svc.Update(ctx, "facilities", "missing", []byte(`{"name":"X"}`))
	require.ErrorIs(t, err, ErrContentNotFound)

	require.ErrorIs(t, f.svc.Delete(ctx, "facilities", "missing"), ErrContentNotFound)

	_, err = f.svc.Create(ctx, "facilities", []byte(`{not json`))
	require.ErrorIs(t, err, ErrContentInvalid)

	f.activity.Wait()
	require.Empty(t, f.repo.snapshot())
	require.Empty(t, f.cache.invalidated())
}

func TestAdminContentUnknownTable(t *testing.T) {
	f := newAdminContentFixture(t)

	_, err := f.svc.List(adminContext(), "donations", dto.ContentListRequest{})
	require.ErrorIs(t, err, ErrUnknownContentTable)

	_, err = f.svc.Create(adminContext(), "donations", []byte(`{}`))
	require.ErrorIs(t, err, ErrUnknownContentTable)
}

func TestAdminContentCacheFailureDoesNotFailWrite(t *testing.T) {
	f := newAdminContentFixture(t)
	f.cache.err = errors.New("redis down")

	_, err := f.svc.Create(adminContext(), "facilities", []byte(`{"name":"Aula"}`))
	require.NoError(t, err)
	f.activity.Wait()
	require.Len(t, f.repo.snapshot(), 1)
}

func TestAdminContentArticleSlugsAreUniqueAndBodySanitised(t *testing.T) {
	f := newAdminContentFixture(t)
	ctx := adminContext()

	first, err := f.svc.Create(ctx, "articles", []byte(`{"title":"Laporan Wakaf 2024","body":"<p>Isi</p><script>alert(1)</script>"}`))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, "articles", []byte(`{"title":"Laporan Wakaf 2024","body":"<p>Isi kedua</p>"}`))
	require.NoError(t, err)

	require.Equal(t, "laporan-wakaf-2024", first.(models.Article).Slug)
	require.Equal(t, "laporan-wakaf-2024-2", second.(models.Article).Slug)
	require.Equal(t, "<p>Isi</p>", first.(models.Article).Body)
	f.activity.Wait()
}

func TestAdminContentListPaginatesAndSearches(t *testing.T) {
	f := newAdminContentFixture(t)
	ctx := adminContext()

	for _, name := range []string{"Masjid", "Aula", "Perpustakaan", "Klinik"} {
		_, err := f.svc.Create(ctx, "facilities", []byte(`{"name":"`+name+`"}`))
		require.NoError(t, err)
	}
	f.activity.Wait()

	page, err := f.svc.List(ctx, "facilities", dto.ContentListRequest{Page: 1, PageSize: 3})
	require.NoError(t, err)
	require.Equal(t, TableFacility, page.Table)
	require.Len(t, page.Items.([]models.Facility), 3)
	require.Equal(t, int64(4), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	found, err := f.svc.List(ctx, "facilities", dto.ContentListRequest{Search: "klin"})
	require.NoError(t, err)
	require.Len(t, found.Items.([]models.Facility), 1)
}

func TestAdminContentTablesAreOrdered(t *testing.T) {
	f := newAdminContentFixture(t)
	routes := make([]string, 0)
	for _, table := range f.svc.Tables() {
		routes = append(routes, table.Route)
	}
	require.Equal(t, []string{"profile", "facilities", "programs", "articles", "announcements", "documentation"}, routes)
}

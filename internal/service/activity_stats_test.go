package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wakaf-cms-api/internal/models"
	"github.com/noah-isme/wakaf-cms-api/internal/observability"
	"github.com/noah-isme/wakaf-cms-api/internal/repository"
	"github.com/noah-isme/wakaf-cms-api/pkg/identity"
)

func TestAggregationsAreGroupBys(t *testing.T) {
	day := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	stats := []models.ActivityStat{
		{ID: "1", CreatedAt: day, Action: models.ActivityCreate, TargetTable: "facility"},
		{ID: "2", CreatedAt: day.Add(2 * time.Hour), Action: models.ActivityUpdate, TargetTable: "facility"},
		{ID: "3", CreatedAt: day.Add(24 * time.Hour), Action: models.ActivityCreate, TargetTable: "article"},
		{ID: "4", CreatedAt: day.Add(72 * time.Hour), Action: models.ActivityLogin, TargetTable: "auth"},
	}

	daily := DailyCounts(stats, time.UTC)
	require.Len(t, daily, 3)
	require.Equal(t, "2026-10-01", daily[0].Day)
	require.Equal(t, 2, daily[0].Count)
	require.Equal(t, "2026-10-04", daily[2].Day)

	require.Equal(t, map[models.ActivityAction]int{models.ActivityCreate: 2, models.ActivityUpdate: 1, models.ActivityLogin: 1}, ActionDistribution(stats))
	require.Equal(t, map[string]int{"facility": 2, "article": 1, "auth": 1}, TableDistribution(stats))

	jakarta := time.FixedZone("WIB", 7*60*60)
	late := []models.ActivityStat{{CreatedAt: time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)}}
	require.Equal(t, "2026-10-02", DailyCounts(late, jakarta)[0].Day)
}

func TestFilterEntriesOverFetchedPage(t *testing.T) {
	entries := []models.ActivityLog{
		{ID: "1", Action: models.ActivityCreate, TargetTable: "facility"},
		{ID: "2", Action: models.ActivityUpdate, TargetTable: "facility"},
		{ID: "3", Action: models.ActivityCreate, TargetTable: "article"},
	}

	require.Len(t, FilterEntries(entries, "", ""), 3)
	require.Len(t, FilterEntries(entries, "create", ""), 2)
	require.Len(t, FilterEntries(entries, "", "Facility"), 2)

	both := FilterEntries(entries, "CREATE", "article")
	require.Len(t, both, 1)
	require.Equal(t, "3", both[0].ID)
}

func TestStatsSinceTwelveEntriesOverSevenDays(t *testing.T) {
	db := setupServiceDB(t)
	repo := repository.NewActivityLogRepository(db)
	svc := NewActivityService(repo, identity.NewContextProvider(nil), &observability.RecordingDiagnostics{}, ActivityServiceOptions{}, testLogger())

	now := time.Now().UTC()
	actions := map[models.ActivityAction]int{models.ActivityCreate: 5, models.ActivityUpdate: 4, models.ActivityDelete: 3}
	i := 0
	for action, count := range actions {
		for n := 0; n < count; n++ {
			entry := models.ActivityLog{
				CreatedAt:   now.Add(-time.Duration(i%6+1) * 24 * time.Hour),
				ActorID:     adminUser.ID,
				ActorEmail:  adminUser.Email,
				Action:      action,
				TargetTable: "program",
				Description: "seed",
			}
			require.NoError(t, repo.Create(context.Background(), &entry))
			i++
		}
	}
	old := models.ActivityLog{
		CreatedAt:   now.AddDate(0, 0, -10),
		ActorID:     adminUser.ID,
		ActorEmail:  adminUser.Email,
		Action:      models.ActivityCreate,
		TargetTable: "program",
		Description: "outside window",
	}
	require.NoError(t, repo.Create(context.Background(), &old))

	stats, err := svc.StatsSince(context.Background(), now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, stats, 12)
	for j := 1; j < len(stats); j++ {
		require.False(t, stats[j].CreatedAt.Before(stats[j-1].CreatedAt), "oldest first")
	}

	distribution := ActionDistribution(stats)
	require.Equal(t, map[models.ActivityAction]int{models.ActivityCreate: 5, models.ActivityUpdate: 4, models.ActivityDelete: 3}, distribution)

	total := 0
	for _, point := range DailyCounts(stats, time.UTC) {
		total += point.Count
	}
	require.Equal(t, 12, total)
}

type statsActivityStub struct {
	ActivityService
	calls int
	since time.Time
	stats []models.ActivityStat
}

func (s *statsActivityStub) StatsSince(ctx context.Context, since time.Time) ([]models.ActivityStat, error) {
	s.calls++
	s.since = since
	return s.stats, nil
}

func TestActivityStatsSummaryUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	stub := &statsActivityStub{stats: []models.ActivityStat{
		{ID: "a", CreatedAt: now.Add(-48 * time.Hour), Action: models.ActivityCreate, TargetTable: "facility"},
		{ID: "b", CreatedAt: now.Add(-time.Hour), Action: models.ActivityDelete, TargetTable: "article"},
	}}
	svc := NewActivityStatsService(stub, client, time.Minute, time.UTC, testLogger()).(*activityStatsService)
	svc.now = func() time.Time { return now }

	first, err := svc.Summary(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, 2, first.Total)
	require.True(t, stub.since.Equal(now.AddDate(0, 0, -7)))
	require.Len(t, first.Daily, 8)
	require.Equal(t, 1, first.Actions[models.ActivityDelete])
	require.Equal(t, 1, first.Tables["facility"])

	second, err := svc.Summary(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, 1, stub.calls)
	require.Equal(t, first.Total, second.Total)
}

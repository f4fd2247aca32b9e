package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/wakaf-cms-api/internal/dto"
	"github.com/noah-isme/wakaf-cms-api/internal/models"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 90
	dayLayout        = "2006-01-02"
)

// DailyCounts groups stats by calendar day in loc, oldest day first.
func DailyCounts(stats []models.ActivityStat, loc *time.Location) []dto.DailyCountPoint {
	if loc == nil {
		loc = time.UTC
	}
	counts := make(map[string]int)
	for _, stat := range stats {
		counts[stat.CreatedAt.In(loc).Format(dayLayout)]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	points := make([]dto.DailyCountPoint, 0, len(days))
	for _, day := range days {
		points = append(points, dto.DailyCountPoint{Day: day, Count: counts[day]})
	}
	return points
}

// ActionDistribution counts stats per action.
func ActionDistribution(stats []models.ActivityStat) map[models.ActivityAction]int {
	out := make(map[models.ActivityAction]int)
	for _, stat := range stats {
		out[stat.Action]++
	}
	return out
}

// TableDistribution counts stats per target table.
func TableDistribution(stats []models.ActivityStat) map[string]int {
	out := make(map[string]int)
	for _, stat := range stats {
		out[stat.TargetTable]++
	}
	return out
}

// FilterEntries narrows an already fetched page by action and table. Empty filters match all.
func FilterEntries(entries []models.ActivityLog, action, table string) []models.ActivityLog {
	action = strings.ToUpper(strings.TrimSpace(action))
	table = strings.ToLower(strings.TrimSpace(table))
	if action == "" && table == "" {
		return entries
	}

	filtered := make([]models.ActivityLog, 0, len(entries))
	for _, entry := range entries {
		if action != "" && string(entry.Action) != action {
			continue
		}
		if table != "" && entry.TargetTable != table {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

// ActivityStatsService builds the statistics screen summary.
type ActivityStatsService interface {
	Summary(ctx context.Context, days int) (dto.ActivityStatsResponse, error)
}

type activityStatsService struct {
	activity ActivityService
	cache    *redis.Client
	cacheTTL time.Duration
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time
}

// NewActivityStatsService constructs the statistics service. cache may be nil.
func NewActivityStatsService(activity ActivityService, cache *redis.Client, ttl time.Duration, location *time.Location, logger zerolog.Logger) ActivityStatsService {
	if location == nil {
		location = time.UTC
	}
	return &activityStatsService{
		activity: activity,
		cache:    cache,
		cacheTTL: ttl,
		location: location,
		logger:   logger.With().Str("component", "activity_stats_service").Logger(),
		now:      time.Now,
	}
}

func (s *activityStatsService) Summary(ctx context.Context, days int) (dto.ActivityStatsResponse, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > maxStatsDays {
		days = maxStatsDays
	}

	cacheKey := fmt.Sprintf("activity:stats:%d", days)
	tracer := otel.Tracer("github.com/noah-isme/wakaf-cms-api/internal/service/activity_stats")
	ctx, span := tracer.Start(ctx, "activity.summary")
	span.SetAttributes(attribute.String("activity.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.ActivityStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("activity.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read activity stats cache")
			span.RecordError(err)
		}
	}

	now := s.now()
	since := now.AddDate(0, 0, -days)
	stats, err := s.activity.StatsSince(ctx, since)
	if err != nil {
		span.RecordError(err)
		return dto.ActivityStatsResponse{}, err
	}

	summary := dto.ActivityStatsResponse{
		Days:        days,
		Since:       since,
		Total:       len(stats),
		Daily:       fillDays(DailyCounts(stats, s.location), since, now, s.location),
		Actions:     ActionDistribution(stats),
		Tables:      TableDistribution(stats),
		GeneratedAt: now,
	}
	span.SetAttributes(attribute.Int("activity.total", summary.Total))

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store activity stats cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

// fillDays pads the sparse daily series with zero buckets so charts get one point per day.
func fillDays(points []dto.DailyCountPoint, from, to time.Time, loc *time.Location) []dto.DailyCountPoint {
	counts := make(map[string]int, len(points))
	for _, point := range points {
		counts[point.Day] = point.Count
	}

	start := from.In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	end := to.In(loc)

	filled := make([]dto.DailyCountPoint, 0, len(points))
	for !day.After(end) {
		key := day.Format(dayLayout)
		filled = append(filled, dto.DailyCountPoint{Day: key, Count: counts[key]})
		day = day.AddDate(0, 0, 1)
	}
	return filled
}

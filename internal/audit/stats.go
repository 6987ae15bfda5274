package audit

import (
	"context"
	"sort"
	"time"

	dErrors "custodian/pkg/domain-errors"
)

const (
	defaultStatsWindow = 7 * 24 * time.Hour
	topActorsLimit     = 10
)

// Statistics aggregates entries in the requested range, by default the
// trailing seven days bucketed per day.
func (l *Logger) Statistics(ctx context.Context, req StatsRequest) (Statistics, error) {
	if err := l.checkOpen(); err != nil {
		return Statistics{}, err
	}

	end := l.now().UTC()
	if req.End != nil {
		end = req.End.UTC()
	}
	start := end.Add(-defaultStatsWindow)
	if req.Start != nil {
		start = req.Start.UTC()
	}
	if end.Before(start) {
		return Statistics{}, dErrors.New(dErrors.CodeValidation, "end must not be before start")
	}
	gran := req.Granularity
	if gran == "" {
		gran = GranularityDay
	}
	switch gran {
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth:
	default:
		return Statistics{}, dErrors.New(dErrors.CodeValidation, "granularity must be one of [hour day week month]")
	}

	stats := Statistics{
		Start:       start,
		End:         end,
		Granularity: gran,
		ByCategory:  make(map[Category]int),
		ByRisk:      make(map[RiskLevel]int),
		TopActors:   []ActorCount{},
		Trend:       []TrendBucket{},
	}
	actors := make(map[string]int)
	buckets := make(map[time.Time]*TrendBucket)

	err := l.eachEntry(ctx, Filter{Start: &start, End: &end}, func(e Entry) error {
		stats.Summary.Total++
		if e.Success {
			stats.Summary.Success++
		} else {
			stats.Summary.Failure++
		}
		if e.Risk.AtLeastHigh() {
			stats.Summary.HighRisk++
		}
		stats.ByCategory[e.Category]++
		stats.ByRisk[e.Risk]++
		actors[e.Actor]++

		key := bucketStart(e.Timestamp, gran)
		b, ok := buckets[key]
		if !ok {
			b = &TrendBucket{Start: key}
			buckets[key] = b
		}
		b.Total++
		if !e.Success {
			b.Failure++
		}
		if e.Risk.AtLeastHigh() {
			b.HighRisk++
		}
		return nil
	})
	if err != nil {
		return Statistics{}, err
	}

	for actor, n := range actors {
		stats.TopActors = append(stats.TopActors, ActorCount{Actor: actor, Count: n})
	}
	sort.Slice(stats.TopActors, func(i, j int) bool {
		if stats.TopActors[i].Count != stats.TopActors[j].Count {
			return stats.TopActors[i].Count > stats.TopActors[j].Count
		}
		return stats.TopActors[i].Actor < stats.TopActors[j].Actor
	})
	if len(stats.TopActors) > topActorsLimit {
		stats.TopActors = stats.TopActors[:topActorsLimit]
	}

	for _, b := range buckets {
		stats.Trend = append(stats.Trend, *b)
	}
	sort.Slice(stats.Trend, func(i, j int) bool { return stats.Trend[i].Start.Before(stats.Trend[j].Start) })
	return stats, nil
}

// bucketStart truncates ts to the start of its bucket in UTC. Weeks start on Monday.
func bucketStart(ts time.Time, gran Granularity) time.Time {
	ts = ts.UTC()
	switch gran {
	case GranularityHour:
		return ts.Truncate(time.Hour)
	case GranularityWeek:
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	}
}

package stats

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"cinehub/models"
)

const (
	defaultWindowDays = 7
	maxWindowDays     = 365
	topGenreCount     = 6
	topContentCount   = 5

	// resolveWorkers bounds parallel content lookups while building a
	// summary.
	resolveWorkers = 5
)

// ProfileLister provides the user's profiles.
type ProfileLister interface {
	ListByUser(userID string) []models.Profile
}

// ContentResolver resolves catalog items referenced from history.
type ContentResolver interface {
	FindByID(id string) (*models.Content, error)
}

// HabitCounter exposes the liked counts kept in the viewing-habit
// records.
type HabitCounter interface {
	CountLiked(profileID string) (int, error)
}

// Service derives dashboard statistics from the profiles' watched
// history. A user with no profiles or no history yields a valid zeroed
// summary rather than an error.
type Service struct {
	profiles ProfileLister
	content  ContentResolver
	habits   HabitCounter
}

// NewService constructs the aggregator.
func NewService(profiles ProfileLister, content ContentResolver, habits HabitCounter) *Service {
	return &Service{profiles: profiles, content: content, habits: habits}
}

// viewEvent is one flattened (profile, content, timestamp, duration)
// tuple; entries with several accumulated timestamps become several
// events.
type viewEvent struct {
	profileID string
	contentID string
	watchedAt time.Time
	duration  float64
}

// Summary aggregates the trailing window ending now.
func (s *Service) Summary(userID string, days int) (models.StatisticsSummary, error) {
	return s.summaryAt(userID, days, time.Now().UTC())
}

func (s *Service) summaryAt(userID string, days int, now time.Time) (models.StatisticsSummary, error) {
	if days < 1 {
		days = defaultWindowDays
	}
	if days > maxWindowDays {
		days = maxWindowDays
	}

	summary := models.StatisticsSummary{
		Days:         days,
		DailyViews:   []models.DailyViews{},
		ContentTypes: map[string]int{},
		Profiles:     []models.ProfileRef{},
		ProfileStats: []models.ProfileStats{},
		TopGenres:    []models.GenreStats{},
	}

	profiles := s.profiles.ListByUser(userID)
	if len(profiles) == 0 {
		return summary, nil
	}

	cutoff := now.AddDate(0, 0, -days)

	var events []viewEvent
	for _, profile := range profiles {
		summary.Profiles = append(summary.Profiles, models.ProfileRef{ID: profile.ID, Name: profile.Name})
		for _, entry := range profile.WatchedHistory {
			for _, ts := range entry.WatchedAt {
				if ts.Before(cutoff) || ts.After(now) {
					continue
				}
				events = append(events, viewEvent{
					profileID: profile.ID,
					contentID: entry.ContentID,
					watchedAt: ts,
					duration:  entry.Duration,
				})
			}
		}
	}

	resolved := s.resolveContent(events)

	// Overview counters
	unique := make(map[string]struct{})
	for _, ev := range events {
		summary.TotalViews++
		summary.TotalHours += ev.duration / 3600
		unique[ev.contentID] = struct{}{}
		if item, ok := resolved[ev.contentID]; ok {
			summary.ContentTypes[item.Type]++
		}
	}
	summary.UniqueContent = len(unique)

	summary.DailyViews = bucketByDay(events, profiles, cutoff, now)

	// Per-profile totals; favorites come from the viewing-habit records.
	for _, profile := range profiles {
		stat := models.ProfileStats{ProfileID: profile.ID, Name: profile.Name}
		for _, ev := range events {
			if ev.profileID != profile.ID {
				continue
			}
			stat.Views++
			stat.Hours += ev.duration / 3600
		}
		favorites, err := s.habits.CountLiked(profile.ID)
		if err != nil {
			log.Printf("[stats] liked count for profile %s: %v", profile.ID, err)
		} else {
			stat.Favorites = favorites
		}
		summary.LikedContent += stat.Favorites
		summary.ProfileStats = append(summary.ProfileStats, stat)
	}

	summary.TopGenres = rankGenres(events, resolved)

	return summary, nil
}

// resolveContent looks up every distinct content id referenced by the
// events; ids that no longer resolve are simply absent from the result.
func (s *Service) resolveContent(events []viewEvent) map[string]models.Content {
	ids := make(map[string]struct{})
	for _, ev := range events {
		ids[ev.contentID] = struct{}{}
	}

	var mu sync.Mutex
	resolved := make(map[string]models.Content, len(ids))

	p := pool.New().WithMaxGoroutines(resolveWorkers)
	for id := range ids {
		id := id // pre-1.22 loop-variable capture; required while building with Go 1.21
		p.Go(func() {
			item, err := s.content.FindByID(id)
			if err != nil || item == nil {
				return
			}
			mu.Lock()
			resolved[id] = *item
			mu.Unlock()
		})
	}
	p.Wait()

	return resolved
}

// bucketByDay produces one row per calendar day of the window, oldest
// first, with a per-profile count for every profile.
func bucketByDay(events []viewEvent, profiles []models.Profile, cutoff, now time.Time) []models.DailyViews {
	counts := make(map[string]map[string]int) // day key -> profileID -> count
	for _, ev := range events {
		key := ev.watchedAt.Format("2006-01-02")
		if counts[key] == nil {
			counts[key] = make(map[string]int)
		}
		counts[key][ev.profileID]++
	}

	out := make([]models.DailyViews, 0)
	for day := cutoff.Truncate(24 * time.Hour); !day.After(now); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		row := models.DailyViews{Date: day.Format("Jan 2")}
		for _, profile := range profiles {
			row.Profiles = append(row.Profiles, models.ProfileDayCount{
				ProfileID: profile.ID,
				Count:     counts[key][profile.ID],
			})
		}
		out = append(out, row)
	}

	return out
}

// rankGenres attributes each viewed, active content item's view count to
// every genre tag it carries, then keeps the top genres and, within each,
// the top content items.
func rankGenres(events []viewEvent, resolved map[string]models.Content) []models.GenreStats {
	viewsByContent := make(map[string]int)
	for _, ev := range events {
		item, ok := resolved[ev.contentID]
		if !ok || !item.IsActive {
			continue
		}
		viewsByContent[item.ID]++
	}

	type genreBucket struct {
		total   int
		content []models.GenreContentStats
	}
	buckets := make(map[string]*genreBucket)

	for contentID, views := range viewsByContent {
		item := resolved[contentID]
		for _, genre := range item.Genres {
			bucket := buckets[genre]
			if bucket == nil {
				bucket = &genreBucket{}
				buckets[genre] = bucket
			}
			bucket.total += views
			bucket.content = append(bucket.content, models.GenreContentStats{
				ContentID:  item.ID,
				Title:      item.Title,
				Views:      views,
				Popularity: item.Popularity,
			})
		}
	}

	genres := make([]models.GenreStats, 0, len(buckets))
	for genre, bucket := range buckets {
		sort.Slice(bucket.content, func(i, j int) bool {
			if bucket.content[i].Views != bucket.content[j].Views {
				return bucket.content[i].Views > bucket.content[j].Views
			}
			if bucket.content[i].Popularity != bucket.content[j].Popularity {
				return bucket.content[i].Popularity > bucket.content[j].Popularity
			}
			return bucket.content[i].Title < bucket.content[j].Title
		})
		top := bucket.content
		if len(top) > topContentCount {
			top = top[:topContentCount]
		}
		genres = append(genres, models.GenreStats{
			Genre:      genre,
			TotalViews: bucket.total,
			TopContent: top,
		})
	}

	sort.Slice(genres, func(i, j int) bool {
		if genres[i].TotalViews != genres[j].TotalViews {
			return genres[i].TotalViews > genres[j].TotalViews
		}
		return genres[i].Genre < genres[j].Genre
	})
	if len(genres) > topGenreCount {
		genres = genres[:topGenreCount]
	}

	return genres
}

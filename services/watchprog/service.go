package watchprog

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cinehub/models"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrContentNotFound   = errors.New("content not found")
	ErrProfileIDRequired = errors.New("profile id is required")
	ErrContentIDRequired = errors.New("content id is required")
	ErrNegativePosition  = errors.New("position must not be negative")
)

// completionTailSeconds is how close to the end of the final episode a
// viewer must get for the series to count as finished.
const completionTailSeconds = 5

// DefaultContinueWatchingLimit bounds the continue-watching shelf.
const DefaultContinueWatchingLimit = 10

// ProfileStore provides whole-document access to profiles. FindByID
// returns a copy and Save replaces the stored document; the reconciler's
// read-modify-write cycle across the two calls is deliberately not
// protected against concurrent writers (last writer wins).
type ProfileStore interface {
	FindByID(id string) (*models.Profile, error)
	Save(profile models.Profile) error
}

// ContentRepository resolves catalog items and series episodes.
type ContentRepository interface {
	FindByID(id string) (*models.Content, error)
	Episodes(seriesID string) ([]models.Content, error)
}

// Service reconciles playback events against a profile's embedded watch
// state: the progress map, the liked set, the completed-series set, and
// the watched-history list.
type Service struct {
	profiles ProfileStore
	content  ContentRepository
}

// NewService constructs the reconciler on top of the profile and content
// repositories.
func NewService(profiles ProfileStore, content ContentRepository) *Service {
	return &Service{profiles: profiles, content: content}
}

// RecordProgress overwrites the stored playback position for the content.
// When the content is an episode it also refreshes the derived
// series-completion flag.
func (s *Service) RecordProgress(profileID, contentID string, position float64) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return ErrContentIDRequired
	}
	if position < 0 {
		return ErrNegativePosition
	}

	profile, err := s.loadProfile(profileID)
	if err != nil {
		return err
	}

	profile.WatchProgress[contentID] = position

	if item, err := s.content.FindByID(contentID); err == nil && item != nil && item.IsEpisode() && item.SeriesID != "" {
		s.refreshSeriesCompletion(profile, item.SeriesID)
	}

	return s.profiles.Save(*profile)
}

// Progress returns the stored position (0 when absent) and the current
// liked state for the pair.
func (s *Service) Progress(profileID, contentID string) (float64, bool, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return 0, false, ErrContentIDRequired
	}

	profile, err := s.loadProfile(profileID)
	if err != nil {
		return 0, false, err
	}

	return profile.WatchProgress[contentID], profile.Likes(contentID), nil
}

// ResetProgress removes the stored position, used for "watch from
// beginning". Completion derived from that episode is withdrawn.
func (s *Service) ResetProgress(profileID, contentID string) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return ErrContentIDRequired
	}

	profile, err := s.loadProfile(profileID)
	if err != nil {
		return err
	}

	delete(profile.WatchProgress, contentID)

	if item, err := s.content.FindByID(contentID); err == nil && item != nil && item.IsEpisode() && item.SeriesID != "" {
		s.refreshSeriesCompletion(profile, item.SeriesID)
	}

	return s.profiles.Save(*profile)
}

// ResetSeriesProgress zeroes progress for every supplied episode as one
// logical operation. It is best effort: if resolving an episode's series
// fails midway, the positions zeroed so far are still persisted and the
// error is returned.
func (s *Service) ResetSeriesProgress(profileID string, episodeIDs []string) error {
	profile, err := s.loadProfile(profileID)
	if err != nil {
		return err
	}

	seriesSeen := make(map[string]struct{})
	var lookupErr error

	for _, episodeID := range episodeIDs {
		episodeID = strings.TrimSpace(episodeID)
		if episodeID == "" {
			continue
		}

		profile.WatchProgress[episodeID] = 0

		item, err := s.content.FindByID(episodeID)
		if err != nil {
			lookupErr = fmt.Errorf("resolve episode %s: %w", episodeID, err)
			log.Printf("[watchprog] series reset for profile %s partially applied: %v", profile.ID, lookupErr)
			break
		}
		if item != nil && item.SeriesID != "" {
			seriesSeen[item.SeriesID] = struct{}{}
		}
	}

	for seriesID := range seriesSeen {
		s.refreshSeriesCompletion(profile, seriesID)
	}

	if err := s.profiles.Save(*profile); err != nil {
		return err
	}

	return lookupErr
}

// ToggleLike flips membership of the content in the liked set and returns
// the resulting state.
func (s *Service) ToggleLike(profileID, contentID string) (bool, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return false, ErrContentIDRequired
	}

	profile, err := s.loadProfile(profileID)
	if err != nil {
		return false, err
	}

	liked := false
	if profile.Likes(contentID) {
		kept := profile.LikedContent[:0]
		for _, id := range profile.LikedContent {
			if id != contentID {
				kept = append(kept, id)
			}
		}
		profile.LikedContent = kept
	} else {
		profile.LikedContent = append(profile.LikedContent, contentID)
		liked = true
	}

	if err := s.profiles.Save(*profile); err != nil {
		return false, err
	}

	return liked, nil
}

// TrackWatch records that a watch event occurred now. Episodes are
// attributed to their parent series so statistics and continue watching
// aggregate at the series level; repeat watches append a timestamp to the
// existing entry instead of duplicating it.
func (s *Service) TrackWatch(profileID, contentID string) error {
	profile, target, err := s.loadPair(profileID, contentID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if entry := profile.HistoryEntry(target); entry != nil {
		entry.WatchedAt = append(entry.WatchedAt, now)
	} else {
		profile.WatchedHistory = append(profile.WatchedHistory, models.WatchedHistoryEntry{
			ContentID: target,
			WatchedAt: []time.Time{now},
		})
	}

	return s.profiles.Save(*profile)
}

// MarkWatched explicitly sets or clears the watched flag for the content.
// The same series resolution as TrackWatch applies, so episode ids mark
// their parent series. Marking watched refreshes the entry's timestamp
// and overwrites the session duration when one is given; marking
// unwatched removes the entry and is a no-op when none exists.
func (s *Service) MarkWatched(profileID, contentID string, watched bool, duration float64) error {
	profile, target, err := s.loadPair(profileID, contentID)
	if err != nil {
		return err
	}

	if !watched {
		profile.RemoveHistoryEntry(target)
		return s.profiles.Save(*profile)
	}

	now := time.Now().UTC()
	if entry := profile.HistoryEntry(target); entry != nil {
		entry.WatchedAt = append(entry.WatchedAt, now)
		if duration > 0 {
			entry.Duration = duration
		}
	} else {
		profile.WatchedHistory = append(profile.WatchedHistory, models.WatchedHistoryEntry{
			ContentID: target,
			WatchedAt: []time.Time{now},
			Duration:  duration,
		})
	}

	return s.profiles.Save(*profile)
}

// ContinueWatching returns up to limit recently watched titles, newest
// watch first, skipping inactive content, bare episodes, and series the
// profile has finished.
func (s *Service) ContinueWatching(profileID string, limit int) ([]models.Content, error) {
	if limit < 1 {
		limit = DefaultContinueWatchingLimit
	}

	profile, err := s.loadProfile(profileID)
	if err != nil {
		return nil, err
	}

	items := make([]models.Content, 0, limit)
	for _, entry := range profile.HistoryByRecency() {
		if profile.HasCompletedSeries(entry.ContentID) {
			continue
		}

		item, err := s.content.FindByID(entry.ContentID)
		if err != nil {
			return nil, err
		}
		if item == nil || !item.IsActive || item.IsEpisode() {
			continue
		}

		items = append(items, *item)
		if len(items) >= limit {
			break
		}
	}

	return items, nil
}

// SeriesFinished reports whether the profile has completed the series,
// derived from the final episode's stored progress.
func (s *Service) SeriesFinished(profileID, seriesID string) (bool, error) {
	profile, err := s.loadProfile(profileID)
	if err != nil {
		return false, err
	}
	return s.seriesCompleted(profile, seriesID), nil
}

// LastWatchedEpisode returns the id of the latest episode with any
// recorded progress, or "" when the profile has not started the series.
func (s *Service) LastWatchedEpisode(profileID, seriesID string) (string, error) {
	profile, err := s.loadProfile(profileID)
	if err != nil {
		return "", err
	}

	episodes, err := s.content.Episodes(seriesID)
	if err != nil {
		return "", err
	}

	for i := len(episodes) - 1; i >= 0; i-- {
		if profile.WatchProgress[episodes[i].ID] > 0 {
			return episodes[i].ID, nil
		}
	}

	return "", nil
}

func (s *Service) loadProfile(profileID string) (*models.Profile, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, ErrProfileIDRequired
	}

	profile, err := s.profiles.FindByID(profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	return profile, nil
}

// loadPair loads the profile and resolves the history target for the
// content: episodes with a parent series resolve to the series id.
func (s *Service) loadPair(profileID, contentID string) (*models.Profile, string, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return nil, "", ErrContentIDRequired
	}

	profile, err := s.loadProfile(profileID)
	if err != nil {
		return nil, "", err
	}

	item, err := s.content.FindByID(contentID)
	if err != nil {
		return nil, "", err
	}
	if item == nil {
		return nil, "", ErrContentNotFound
	}

	target := item.ID
	if item.IsEpisode() && item.SeriesID != "" {
		target = item.SeriesID
	}

	return profile, target, nil
}

// refreshSeriesCompletion recomputes the derived completed flag for the
// series from the final episode's stored progress.
func (s *Service) refreshSeriesCompletion(profile *models.Profile, seriesID string) {
	completed := s.seriesCompleted(profile, seriesID)

	if completed && !profile.HasCompletedSeries(seriesID) {
		profile.CompletedSeries = append(profile.CompletedSeries, seriesID)
		return
	}
	if !completed && profile.HasCompletedSeries(seriesID) {
		kept := profile.CompletedSeries[:0]
		for _, id := range profile.CompletedSeries {
			if id != seriesID {
				kept = append(kept, id)
			}
		}
		profile.CompletedSeries = kept
	}
}

func (s *Service) seriesCompleted(profile *models.Profile, seriesID string) bool {
	episodes, err := s.content.Episodes(seriesID)
	if err != nil || len(episodes) == 0 {
		return false
	}

	last := episodes[len(episodes)-1]
	threshold := float64(last.Duration*60 - completionTailSeconds)
	if threshold < 0 {
		threshold = 0
	}

	return profile.WatchProgress[last.ID] >= threshold
}

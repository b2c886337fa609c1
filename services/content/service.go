package content

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinehub/models"
)

var (
	ErrContentNotFound   = errors.New("content not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrGenreRequired     = errors.New("at least one genre is required")
	ErrInvalidRating     = errors.New("unknown content rating")
	ErrInvalidType       = errors.New("unknown content type")
	ErrInvalidDuration   = errors.New("duration must be at least one minute")
	ErrInvalidYear       = errors.New("year is out of range")
	ErrSeriesRequired    = errors.New("episodes must reference a series")
	ErrSeriesNotFound    = errors.New("referenced series does not exist")
	ErrNotASeries        = errors.New("referenced content is not a series")
	ErrDescriptionNeeded = errors.New("description is required")
)

// Filter narrows and pages a catalog query. Zero values are ignored.
type Filter struct {
	Genres []string
	Type   string
	Year   int
	Search string
	Sort   string // "-createdAt" (default), "createdAt", "-year", "year", "title", "-popularity"
	Page   int
	Limit  int
}

// Service is the catalog repository backed by sqlite. Only active content
// is visible to Find and the shelf queries; FindByID returns soft-deleted
// rows so admin views can still resolve them.
type Service struct {
	db *sql.DB
}

// NewService wraps the shared database connection.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

const contentColumns = `id, title, description, genres, year, duration, rating, type,
	episode_number, series_id, director, cast_list, video_url, trailer_url, image_url,
	star_rating, popularity, is_active, created_at, updated_at`

// Create validates and inserts a new catalog item.
func (s *Service) Create(input models.ContentUpsert) (models.Content, error) {
	item, err := s.buildContent(input)
	if err != nil {
		return models.Content{}, err
	}

	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.IsActive = true
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.insert(item); err != nil {
		return models.Content{}, err
	}

	return item, nil
}

// Update validates and replaces the mutable fields of an existing item.
func (s *Service) Update(id string, input models.ContentUpsert) (models.Content, error) {
	id = strings.TrimSpace(id)
	existing, err := s.FindByID(id)
	if err != nil {
		return models.Content{}, err
	}
	if existing == nil {
		return models.Content{}, ErrContentNotFound
	}

	item, err := s.buildContent(input)
	if err != nil {
		return models.Content{}, err
	}

	item.ID = existing.ID
	item.IsActive = existing.IsActive
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()

	genres, cast := mustJSON(item.Genres), mustJSON(item.Cast)
	res, err := s.db.Exec(`UPDATE content SET title = ?, description = ?, genres = ?, year = ?,
		duration = ?, rating = ?, type = ?, episode_number = ?, series_id = ?, director = ?,
		cast_list = ?, video_url = ?, trailer_url = ?, image_url = ?, star_rating = ?,
		popularity = ?, updated_at = ? WHERE id = ?`,
		item.Title, item.Description, genres, item.Year, item.Duration, item.Rating,
		item.Type, nullableInt(item.EpisodeNumber), nullableString(item.SeriesID),
		item.Director, cast, item.VideoURL, item.TrailerURL, item.ImageURL,
		item.StarRating, item.Popularity, item.UpdatedAt, item.ID)
	if err != nil {
		return models.Content{}, fmt.Errorf("update content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Content{}, ErrContentNotFound
	}

	return item, nil
}

// SoftDelete marks the item inactive. The row remains so history and
// statistics can still skip over it by flag.
func (s *Service) SoftDelete(id string) error {
	res, err := s.db.Exec(`UPDATE content SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("soft delete content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrContentNotFound
	}
	return nil
}

// FindByID returns the item or nil when no row exists.
func (s *Service) FindByID(id string) (*models.Content, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	row := s.db.QueryRow(`SELECT `+contentColumns+` FROM content WHERE id = ?`, id)
	item, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	return &item, nil
}

// Find returns a filtered, sorted page of active content.
func (s *Service) Find(filter Filter) (models.ContentPage, error) {
	where := []string{"is_active = 1"}
	var args []any

	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, filter.Type)
	}
	if filter.Year > 0 {
		where = append(where, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Search != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	if len(filter.Genres) > 0 {
		clauses := make([]string, 0, len(filter.Genres))
		for _, genre := range filter.Genres {
			clauses = append(clauses, "genres LIKE ?")
			args = append(args, `%"`+genre+`"%`)
		}
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	}

	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM content WHERE "+whereSQL, args...).Scan(&total); err != nil {
		return models.ContentPage{}, fmt.Errorf("count content: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s FROM content WHERE %s ORDER BY %s LIMIT ? OFFSET ?",
		contentColumns, whereSQL, orderBy(filter.Sort))
	rows, err := s.db.Query(query, append(args, limit, offset)...)
	if err != nil {
		return models.ContentPage{}, fmt.Errorf("query content: %w", err)
	}
	defer rows.Close()

	items, err := collectContent(rows)
	if err != nil {
		return models.ContentPage{}, err
	}

	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	return models.ContentPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Episodes returns the active episodes of a series ordered by episode
// number.
func (s *Service) Episodes(seriesID string) ([]models.Content, error) {
	rows, err := s.db.Query(`SELECT `+contentColumns+` FROM content
		WHERE series_id = ? AND is_active = 1 ORDER BY episode_number`, strings.TrimSpace(seriesID))
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()
	return collectContent(rows)
}

// MostPopular returns active movies and series ranked by popularity.
func (s *Service) MostPopular(limit int) ([]models.Content, error) {
	return s.shelf(`SELECT `+contentColumns+` FROM content
		WHERE is_active = 1 AND type IN ('movie', 'series')
		ORDER BY popularity DESC, star_rating DESC LIMIT ?`, limit)
}

// NewestMovies returns active movies, newest catalog additions first.
func (s *Service) NewestMovies(limit int) ([]models.Content, error) {
	return s.shelf(`SELECT `+contentColumns+` FROM content
		WHERE is_active = 1 AND type = 'movie' ORDER BY created_at DESC LIMIT ?`, limit)
}

// NewestSeries returns active series, newest catalog additions first.
func (s *Service) NewestSeries(limit int) ([]models.Content, error) {
	return s.shelf(`SELECT `+contentColumns+` FROM content
		WHERE is_active = 1 AND type = 'series' ORDER BY created_at DESC LIMIT ?`, limit)
}

// ByGenre returns active content carrying the genre tag, newest release
// year first.
func (s *Service) ByGenre(genre string) ([]models.Content, error) {
	rows, err := s.db.Query(`SELECT `+contentColumns+` FROM content
		WHERE is_active = 1 AND genres LIKE ? ORDER BY year DESC`, `%"`+strings.TrimSpace(genre)+`"%`)
	if err != nil {
		return nil, fmt.Errorf("query by genre: %w", err)
	}
	defer rows.Close()
	return collectContent(rows)
}

// Similar returns up to limit active movies or series sharing at least
// one genre with the given item, excluding the item itself.
func (s *Service) Similar(id string, limit int) ([]models.Content, error) {
	item, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrContentNotFound
	}
	if limit < 1 {
		limit = 5
	}

	where := []string{"is_active = 1", "id != ?", "type IN ('movie', 'series')"}
	args := []any{item.ID}
	clauses := make([]string, 0, len(item.Genres))
	for _, genre := range item.Genres {
		clauses = append(clauses, "genres LIKE ?")
		args = append(args, `%"`+genre+`"%`)
	}
	if len(clauses) > 0 {
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	}

	query := fmt.Sprintf("SELECT %s FROM content WHERE %s ORDER BY popularity DESC LIMIT ?",
		contentColumns, strings.Join(where, " AND "))
	rows, err := s.db.Query(query, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query similar: %w", err)
	}
	defer rows.Close()
	return collectContent(rows)
}

func (s *Service) shelf(query string, limit int) ([]models.Content, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query shelf: %w", err)
	}
	defer rows.Close()
	return collectContent(rows)
}

func (s *Service) buildContent(input models.ContentUpsert) (models.Content, error) {
	item := models.Content{
		Title:         strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Genres:        trimAll(input.Genres),
		Year:          input.Year,
		Duration:      input.Duration,
		Rating:        strings.TrimSpace(input.Rating),
		Type:          strings.ToLower(strings.TrimSpace(input.Type)),
		EpisodeNumber: input.EpisodeNumber,
		SeriesID:      strings.TrimSpace(input.SeriesID),
		Director:      strings.TrimSpace(input.Director),
		Cast:          trimAll(input.Cast),
		VideoURL:      strings.TrimSpace(input.VideoURL),
		TrailerURL:    strings.TrimSpace(input.TrailerURL),
		ImageURL:      strings.TrimSpace(input.ImageURL),
		StarRating:    input.StarRating,
		Popularity:    input.Popularity,
	}

	if item.Title == "" {
		return models.Content{}, ErrTitleRequired
	}
	if item.Description == "" {
		return models.Content{}, ErrDescriptionNeeded
	}
	if len(item.Genres) == 0 {
		return models.Content{}, ErrGenreRequired
	}
	if item.Year < 1900 || item.Year > time.Now().Year()+5 {
		return models.Content{}, ErrInvalidYear
	}
	if item.Duration < 1 {
		return models.Content{}, ErrInvalidDuration
	}
	if item.Rating == "" {
		item.Rating = "TV-14"
	}
	if !models.ValidRating(item.Rating) {
		return models.Content{}, ErrInvalidRating
	}
	if item.Type == "" {
		item.Type = models.ContentTypeMovie
	}
	if !models.ValidContentType(item.Type) {
		return models.Content{}, ErrInvalidType
	}
	if item.StarRating == 0 {
		item.StarRating = 3
	}
	if item.StarRating < 1 || item.StarRating > 5 {
		return models.Content{}, fmt.Errorf("star rating must be between 1 and 5")
	}
	if item.Popularity == 0 {
		item.Popularity = 1
	}
	if item.Popularity < 1 || item.Popularity > 5 {
		return models.Content{}, fmt.Errorf("popularity must be between 1 and 5")
	}

	if item.Type == models.ContentTypeEpisode {
		if item.SeriesID == "" {
			return models.Content{}, ErrSeriesRequired
		}
		series, err := s.FindByID(item.SeriesID)
		if err != nil {
			return models.Content{}, err
		}
		if series == nil {
			return models.Content{}, ErrSeriesNotFound
		}
		if series.Type != models.ContentTypeSeries {
			return models.Content{}, ErrNotASeries
		}
		if item.EpisodeNumber < 1 {
			item.EpisodeNumber = 1
		}
	} else {
		item.EpisodeNumber = 0
		item.SeriesID = ""
	}

	return item, nil
}

func (s *Service) insert(item models.Content) error {
	_, err := s.db.Exec(`INSERT INTO content (`+contentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Description, mustJSON(item.Genres), item.Year,
		item.Duration, item.Rating, item.Type, nullableInt(item.EpisodeNumber),
		nullableString(item.SeriesID), item.Director, mustJSON(item.Cast),
		item.VideoURL, item.TrailerURL, item.ImageURL, item.StarRating,
		item.Popularity, item.IsActive, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (models.Content, error) {
	var (
		item          models.Content
		genres, cast  string
		episodeNumber sql.NullInt64
		seriesID      sql.NullString
	)

	err := row.Scan(&item.ID, &item.Title, &item.Description, &genres, &item.Year,
		&item.Duration, &item.Rating, &item.Type, &episodeNumber, &seriesID,
		&item.Director, &cast, &item.VideoURL, &item.TrailerURL, &item.ImageURL,
		&item.StarRating, &item.Popularity, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return models.Content{}, err
	}

	if episodeNumber.Valid {
		item.EpisodeNumber = int(episodeNumber.Int64)
	}
	if seriesID.Valid {
		item.SeriesID = seriesID.String
	}
	if err := json.Unmarshal([]byte(genres), &item.Genres); err != nil {
		return models.Content{}, fmt.Errorf("decode genres: %w", err)
	}
	if err := json.Unmarshal([]byte(cast), &item.Cast); err != nil {
		return models.Content{}, fmt.Errorf("decode cast: %w", err)
	}

	return item, nil
}

func collectContent(rows *sql.Rows) ([]models.Content, error) {
	items := make([]models.Content, 0)
	for rows.Next() {
		item, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return items, nil
}

func orderBy(sort string) string {
	switch sort {
	case "createdAt":
		return "created_at"
	case "-year":
		return "year DESC"
	case "year":
		return "year"
	case "title":
		return "title"
	case "-popularity":
		return "popularity DESC"
	default:
		return "created_at DESC"
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mustJSON(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

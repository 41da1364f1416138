package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sourcegraph/conc/pool"

	"streamix/models"
	"streamix/services/parental"
)

// ErrUnknownKind rejects requests for a catalog half that does not exist.
var ErrUnknownKind = errors.New("unknown catalog kind")

// Row is one shelf on the home screen: a category plus the items it holds.
// Exactly one of Movies, Series or Channels is populated, matching the
// requested kind.
type Row struct {
	Category models.Category     `json:"category"`
	Movies   []models.VodStream  `json:"movies,omitempty"`
	Series   []models.Series     `json:"series,omitempty"`
	Channels []models.LiveStream `json:"channels,omitempty"`
}

// HomeView is the assembled browse payload. Hero is the featured title,
// chosen after maturity filtering so a kid profile never sees a blocked
// title promoted.
type HomeView struct {
	Kind models.CatalogKind `json:"kind"`
	Hero *models.VodStream  `json:"hero,omitempty"`
	Rows []Row              `json:"rows"`
}

// Service assembles browse views from the portal, applying the profile's
// maturity policy before anything is surfaced.
type Service struct {
	client      *Client
	parental    *parental.Service
	concurrency int
}

func NewService(client *Client, parentalSvc *parental.Service, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		client:      client,
		parental:    parentalSvc,
		concurrency: concurrency,
	}
}

// Client exposes the underlying portal client for direct lookups.
func (s *Service) Client() *Client {
	return s.client
}

// Browse fetches the categories for one catalog half and fans out per
// category, collecting rows in category order. Items blocked by the
// profile's maturity policy are dropped before hero selection; empty rows
// are dropped entirely.
func (s *Service) Browse(ctx context.Context, kind models.CatalogKind, isKid bool) (HomeView, error) {
	switch kind {
	case models.KindLive, models.KindVod, models.KindSeries:
	default:
		return HomeView{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	categories, err := s.client.Categories(ctx, kind)
	if err != nil {
		return HomeView{}, fmt.Errorf("fetch %s categories: %w", kind, err)
	}

	rows := make([]Row, len(categories))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.concurrency)
	for i, category := range categories {
		i, category := i, category // pre-Go 1.22 toolchain: capture per iteration
		p.Go(func(ctx context.Context) error {
			row, err := s.fetchRow(ctx, kind, category, isKid)
			if err != nil {
				// One bad category does not sink the whole view.
				log.Printf("[catalog] fetch category %s: %v", category.CategoryID, err)
				return nil
			}
			rows[i] = row
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return HomeView{}, err
	}

	view := HomeView{Kind: kind, Rows: make([]Row, 0, len(rows))}
	for _, row := range rows {
		if len(row.Movies) == 0 && len(row.Series) == 0 && len(row.Channels) == 0 {
			continue
		}
		view.Rows = append(view.Rows, row)
	}
	view.Hero = pickHero(view.Rows)
	return view, nil
}

// SeriesDetail returns the seasons and episodes for one series.
func (s *Service) SeriesDetail(ctx context.Context, seriesID int) (*models.SeriesInfo, error) {
	return s.client.SeriesInfo(ctx, seriesID)
}

func (s *Service) fetchRow(ctx context.Context, kind models.CatalogKind, category models.Category, isKid bool) (Row, error) {
	row := Row{Category: category}
	switch kind {
	case models.KindVod:
		movies, err := s.client.VodStreams(ctx, category.CategoryID)
		if err != nil {
			return Row{}, err
		}
		row.Movies = parental.Filter(s.parental, isKid, movies, func(m models.VodStream) string {
			return m.AgeRating
		})
	case models.KindSeries:
		series, err := s.client.SeriesList(ctx, category.CategoryID)
		if err != nil {
			return Row{}, err
		}
		row.Series = parental.Filter(s.parental, isKid, series, func(sr models.Series) string {
			return sr.AgeRating
		})
	case models.KindLive:
		// Channel listings carry no age rating, so the policy has nothing
		// to filter on.
		channels, err := s.client.LiveStreams(ctx, category.CategoryID)
		if err != nil {
			return Row{}, err
		}
		row.Channels = channels
	}
	return row, nil
}

// pickHero selects the first movie carrying a backdrop from the already
// filtered rows, falling back to the very first movie.
func pickHero(rows []Row) *models.VodStream {
	var fallback *models.VodStream
	for i := range rows {
		for j := range rows[i].Movies {
			movie := &rows[i].Movies[j]
			if fallback == nil {
				fallback = movie
			}
			if len(movie.BackdropPath) > 0 {
				return movie
			}
		}
	}
	return fallback
}

package search

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"streamix/models"
	"streamix/services/catalog"
	"streamix/services/parental"
)

var (
	ErrQueryTooShort = errors.New("query below minimum length")
	ErrSuperseded    = errors.New("search superseded by a newer query")
)

// Result holds the matches of one search across the three catalog halves.
type Result struct {
	Query    string              `json:"query"`
	Movies   []models.VodStream  `json:"movies"`
	Series   []models.Series     `json:"series"`
	Channels []models.LiveStream `json:"channels"`
}

// Service runs catalog-wide searches. The three halves are queried
// concurrently and joined before anything is returned; a search finishing
// after a newer one has started is discarded, so results can never regress
// to an older query.
type Service struct {
	client   *catalog.Client
	parental *parental.Service
	minLen   int
	token    atomic.Uint64
}

func NewService(client *catalog.Client, parentalSvc *parental.Service, minQueryLength int) *Service {
	if minQueryLength <= 0 {
		minQueryLength = 3
	}
	return &Service{
		client:   client,
		parental: parentalSvc,
		minLen:   minQueryLength,
	}
}

// MinQueryLength returns the shortest query the service will run.
func (s *Service) MinQueryLength() int {
	return s.minLen
}

// Search fans out across live, movie and series listings, joins the three
// result sets and applies the profile's maturity policy. It returns
// ErrQueryTooShort below the minimum length and ErrSuperseded when a newer
// search started while this one was in flight.
func (s *Service) Search(ctx context.Context, query string, isKid bool) (Result, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < s.minLen {
		return Result{}, ErrQueryTooShort
	}

	token := s.token.Add(1)
	needle := strings.ToLower(query)

	var (
		movies   []models.VodStream
		series   []models.Series
		channels []models.LiveStream
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := s.client.VodStreams(ctx, "")
		if err != nil {
			return err
		}
		for _, m := range all {
			if matches(m.Name, needle) {
				movies = append(movies, m)
			}
		}
		return nil
	})
	g.Go(func() error {
		all, err := s.client.SeriesList(ctx, "")
		if err != nil {
			return err
		}
		for _, sr := range all {
			if matches(sr.Name, needle) {
				series = append(series, sr)
			}
		}
		return nil
	})
	g.Go(func() error {
		all, err := s.client.LiveStreams(ctx, "")
		if err != nil {
			return err
		}
		for _, ch := range all {
			if matches(ch.Name, needle) {
				channels = append(channels, ch)
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// All three halves have landed; a partial set is never surfaced. Only
	// the newest in-flight search may publish.
	if s.token.Load() != token {
		return Result{}, ErrSuperseded
	}

	result := Result{
		Query: query,
		Movies: parental.Filter(s.parental, isKid, movies, func(m models.VodStream) string {
			return m.AgeRating
		}),
		Series: parental.Filter(s.parental, isKid, series, func(sr models.Series) string {
			return sr.AgeRating
		}),
		Channels: channels,
	}
	if result.Movies == nil {
		result.Movies = []models.VodStream{}
	}
	if result.Series == nil {
		result.Series = []models.Series{}
	}
	if result.Channels == nil {
		result.Channels = []models.LiveStream{}
	}
	return result, nil
}

func matches(name, needle string) bool {
	return strings.Contains(strings.ToLower(name), needle)
}

package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"streamix/models"
	"streamix/services/catalog"
	"streamix/services/parental"
	"streamix/services/search"
)

func searchPortal(t *testing.T, gate <-chan struct{}) (*catalog.Client, *sync.WaitGroup) {
	t.Helper()

	var arrived sync.WaitGroup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gate != nil {
			arrived.Done()
			<-gate
		}
		switch r.URL.Query().Get("action") {
		case "get_vod_streams":
			json.NewEncoder(w).Encode([]models.VodStream{
				{Name: "Midnight Run", StreamID: 1, AgeRating: "14"},
				{Name: "Midnight City", StreamID: 2, AgeRating: "18"},
				{Name: "Daylight", StreamID: 3, AgeRating: "L"},
			})
		case "get_series":
			json.NewEncoder(w).Encode([]models.Series{
				{Name: "Midnight Diner", SeriesID: 10, AgeRating: "12"},
			})
		case "get_live_streams":
			json.NewEncoder(w).Encode([]models.LiveStream{
				{Name: "Midnight News", StreamID: 20},
				{Name: "Morning Show", StreamID: 21},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return catalog.NewClient(server.URL, "u", "p", 5*time.Second, 1), &arrived
}

func TestSearchJoinsAllThreeHalves(t *testing.T) {
	client, _ := searchPortal(t, nil)
	svc := search.NewService(client, parental.NewService(), 3)

	result, err := svc.Search(context.Background(), "midnight", false)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}

	if len(result.Movies) != 2 {
		t.Fatalf("expected two movie matches, got %d", len(result.Movies))
	}
	if len(result.Series) != 1 || result.Series[0].Name != "Midnight Diner" {
		t.Fatalf("unexpected series matches: %+v", result.Series)
	}
	if len(result.Channels) != 1 || result.Channels[0].Name != "Midnight News" {
		t.Fatalf("unexpected channel matches: %+v", result.Channels)
	}
}

func TestSearchAppliesMaturityPolicy(t *testing.T) {
	client, _ := searchPortal(t, nil)
	svc := search.NewService(client, parental.NewService(), 3)

	result, err := svc.Search(context.Background(), "midnight", true)
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}

	for _, m := range result.Movies {
		if m.AgeRating == "18" {
			t.Fatalf("mature title %q leaked into kid results", m.Name)
		}
	}
	if len(result.Movies) != 1 || result.Movies[0].Name != "Midnight Run" {
		t.Fatalf("unexpected kid movie matches: %+v", result.Movies)
	}
}

func TestSearchRejectsShortQueries(t *testing.T) {
	client, _ := searchPortal(t, nil)
	svc := search.NewService(client, parental.NewService(), 3)

	for _, q := range []string{"", "a", "ab", "  ab  "} {
		if _, err := svc.Search(context.Background(), q, false); !errors.Is(err, search.ErrQueryTooShort) {
			t.Fatalf("expected ErrQueryTooShort for %q, got %v", q, err)
		}
	}
}

func TestStaleSearchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	client, arrived := searchPortal(t, gate)
	svc := search.NewService(client, parental.NewService(), 3)

	// First search blocks inside the portal.
	arrived.Add(3)
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), "midnight", false)
		firstErr <- err
	}()
	arrived.Wait()

	// Second search starts while the first is still in flight.
	arrived.Add(3)
	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.Search(context.Background(), "daylight", false)
		secondErr <- err
	}()
	arrived.Wait()

	close(gate)

	if err := <-firstErr; !errors.Is(err, search.ErrSuperseded) {
		t.Fatalf("expected first search to be superseded, got %v", err)
	}
	if err := <-secondErr; err != nil {
		t.Fatalf("expected newest search to succeed, got %v", err)
	}
}

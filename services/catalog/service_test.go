package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"streamix/models"
	"streamix/services/catalog"
	"streamix/services/parental"
)

// vodPortal serves two categories whose first movies carry mature ratings.
func vodPortal(t *testing.T) *catalog.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "get_vod_categories":
			json.NewEncoder(w).Encode([]models.Category{
				{CategoryID: "1", CategoryName: "Action"},
				{CategoryID: "2", CategoryName: "Family"},
			})
		case "get_vod_streams":
			switch r.URL.Query().Get("category_id") {
			case "1":
				json.NewEncoder(w).Encode([]models.VodStream{
					{Name: "Gritty Thriller", StreamID: 1, AgeRating: "18", BackdropPath: []string{"b1.jpg"}},
					{Name: "Heist Night", StreamID: 2, AgeRating: "16"},
				})
			case "2":
				json.NewEncoder(w).Encode([]models.VodStream{
					{Name: "Paper Boats", StreamID: 3, AgeRating: "L"},
					{Name: "Summer Camp", StreamID: 4, AgeRating: "10", BackdropPath: []string{"b4.jpg"}},
				})
			default:
				json.NewEncoder(w).Encode([]models.VodStream{})
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return catalog.NewClient(server.URL, "u", "p", 5*time.Second, 1)
}

func TestBrowseAssemblesRowsInCategoryOrder(t *testing.T) {
	svc := catalog.NewService(vodPortal(t), parental.NewService(), 2)

	view, err := svc.Browse(context.Background(), models.KindVod, false)
	if err != nil {
		t.Fatalf("browse returned error: %v", err)
	}

	if len(view.Rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(view.Rows))
	}
	if view.Rows[0].Category.CategoryName != "Action" || view.Rows[1].Category.CategoryName != "Family" {
		t.Fatalf("expected rows in category order, got %q then %q",
			view.Rows[0].Category.CategoryName, view.Rows[1].Category.CategoryName)
	}
	if view.Hero == nil || view.Hero.Name != "Gritty Thriller" {
		t.Fatalf("expected first backdrop movie as hero, got %+v", view.Hero)
	}
}

func TestBrowseFiltersBeforeHeroSelection(t *testing.T) {
	svc := catalog.NewService(vodPortal(t), parental.NewService(), 2)

	view, err := svc.Browse(context.Background(), models.KindVod, true)
	if err != nil {
		t.Fatalf("browse returned error: %v", err)
	}

	// The whole Action row is mature, so only Family survives.
	if len(view.Rows) != 1 {
		t.Fatalf("expected one row for kid profile, got %d", len(view.Rows))
	}
	if view.Rows[0].Category.CategoryName != "Family" {
		t.Fatalf("expected Family row, got %q", view.Rows[0].Category.CategoryName)
	}
	if view.Hero == nil || view.Hero.Name != "Summer Camp" {
		t.Fatalf("hero must be chosen after filtering, got %+v", view.Hero)
	}
	for _, row := range view.Rows {
		for _, movie := range row.Movies {
			if movie.AgeRating == "16" || movie.AgeRating == "18" {
				t.Fatalf("mature title %q leaked into kid view", movie.Name)
			}
		}
	}
}

func TestBrowseUnknownKind(t *testing.T) {
	svc := catalog.NewService(vodPortal(t), parental.NewService(), 2)

	_, err := svc.Browse(context.Background(), models.CatalogKind("radio"), false)
	if !errors.Is(err, catalog.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestBrowseLiveChannels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "get_live_categories":
			json.NewEncoder(w).Encode([]models.Category{
				{CategoryID: "1", CategoryName: "News"},
				{CategoryID: "2", CategoryName: "Sports"},
			})
		case "get_live_streams":
			switch r.URL.Query().Get("category_id") {
			case "1":
				json.NewEncoder(w).Encode([]models.LiveStream{
					{Name: "Midnight News", StreamID: 20},
					{Name: "Morning Show", StreamID: 21},
				})
			default:
				json.NewEncoder(w).Encode([]models.LiveStream{})
			}
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client := catalog.NewClient(server.URL, "u", "p", 5*time.Second, 1)
	svc := catalog.NewService(client, parental.NewService(), 2)

	view, err := svc.Browse(context.Background(), models.KindLive, false)
	if err != nil {
		t.Fatalf("browse returned error: %v", err)
	}

	// The empty Sports category is dropped; the News channels come through.
	if len(view.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(view.Rows))
	}
	if len(view.Rows[0].Channels) != 2 || view.Rows[0].Channels[0].Name != "Midnight News" {
		t.Fatalf("unexpected channels: %+v", view.Rows[0].Channels)
	}
	if view.Hero != nil {
		t.Fatalf("live browsing has no hero, got %+v", view.Hero)
	}
}

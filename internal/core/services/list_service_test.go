package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports/mocks"
	"github.com/tunedinout/esfiddle/pkg/encoding"
)

func seedFiles(store *mocks.MockDatastore, files ...domain.FileRecord) {
	for _, f := range files {
		f.Data = string(encoding.Encode(f.Data))
		store.Seed(f)
	}
}

func newTestListService(files ...domain.FileRecord) *ListService {
	store := mocks.NewMockDatastore()
	seedFiles(store, files...)
	return NewListService(NewFileRepository(store, nil, fixedClock(1)))
}

var listFixture = []domain.FileRecord{
	{ID: "aaaa-1", Name: "main.js", Timestamp: 300},
	{ID: "bbbb-2", Name: "index.html", Timestamp: 100},
	{ID: "cccc-3", Name: "Style.css", Timestamp: 200},
	{ID: "abcd-4", Name: "helpers.js", Timestamp: 50},
}

func TestListService_Execute(t *testing.T) {
	tests := []struct {
		name    string
		request ListRequest
		wantIDs []string
	}{
		{
			name:    "default sorts newest first",
			request: ListRequest{},
			wantIDs: []string{"aaaa-1", "cccc-3", "bbbb-2", "abcd-4"},
		},
		{
			name:    "reverse date",
			request: ListRequest{SortBy: "date", Reverse: true},
			wantIDs: []string{"abcd-4", "bbbb-2", "cccc-3", "aaaa-1"},
		},
		{
			name:    "by name case-insensitive",
			request: ListRequest{SortBy: "name"},
			wantIDs: []string{"abcd-4", "bbbb-2", "aaaa-1", "cccc-3"},
		},
		{
			name:    "filter by kind",
			request: ListRequest{Kind: domain.KindJavaScript},
			wantIDs: []string{"aaaa-1", "abcd-4"},
		},
		{
			name:    "filter with no matches",
			request: ListRequest{Kind: domain.KindText},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestListService(listFixture...)
			resp := svc.Execute(context.Background(), tt.request)
			if resp.Total != len(tt.wantIDs) {
				t.Fatalf("Total = %d, want %d", resp.Total, len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if resp.Files[i].ID != id {
					t.Errorf("position %d: got %s, want %s", i, resp.Files[i].ID, id)
				}
			}
		})
	}
}

func TestListService_ExecuteEmpty(t *testing.T) {
	resp := newTestListService().Execute(context.Background(), ListRequest{})
	if resp.Total != 0 || len(resp.Files) != 0 {
		t.Errorf("expected empty response, got %+v", resp)
	}
}

func TestListService_Search(t *testing.T) {
	svc := newTestListService(listFixture...)
	ctx := context.Background()

	results := svc.Search(ctx, "main")
	if len(results) == 0 || results[0].Name != "main.js" {
		t.Errorf("expected main.js first, got %+v", results)
	}

	results = svc.Search(ctx, "hlp")
	if len(results) != 1 || results[0].Name != "helpers.js" {
		t.Errorf("expected fuzzy match on helpers.js, got %+v", results)
	}

	if results := svc.Search(ctx, "   "); len(results) != len(listFixture) {
		t.Errorf("blank query should return everything, got %d", len(results))
	}

	if results := svc.Search(ctx, "zzzz"); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestListService_ResolveFullIDUsesDirectLookup(t *testing.T) {
	store := mocks.NewMockDatastore()
	seedFiles(store, listFixture...)
	svc := NewListService(NewFileRepository(store, nil, fixedClock(1)))
	store.SetShouldFail("getAll", errors.New("index unavailable"))

	rec, err := svc.Resolve(context.Background(), "cccc-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Name != "Style.css" {
		t.Errorf("got %s, want Style.css", rec.Name)
	}

	// prefixes still need the full listing
	if _, err := svc.Resolve(context.Background(), "cccc"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound with listing down, got %v", err)
	}
}

func TestListService_Resolve(t *testing.T) {
	svc := newTestListService(listFixture...)
	ctx := context.Background()

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"full id", "bbbb-2", "bbbb-2", nil},
		{"unique prefix", "cccc", "cccc-3", nil},
		{"name", "style.css", "cccc-3", nil},
		{"ambiguous prefix", "a", "", ErrAmbiguousRef},
		{"unknown", "nothing", "", domain.ErrNotFound},
		{"empty", " ", "", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := svc.Resolve(ctx, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.ID != tt.wantID {
				t.Errorf("got %s, want %s", rec.ID, tt.wantID)
			}
		})
	}
}

func TestFuzzyMatchScore(t *testing.T) {
	tests := []struct {
		text, query string
		wantMatch   bool
	}{
		{"main.js", "main.js", true},
		{"main.js", "MAIN", true},
		{"helpers.js", "hjs", true},
		{"index.html", "xyz", false},
		{"", "a", false},
	}
	for _, tt := range tests {
		score := fuzzyMatchScore(tt.text, tt.query)
		if (score > 0) != tt.wantMatch {
			t.Errorf("fuzzyMatchScore(%q, %q) = %d", tt.text, tt.query, score)
		}
	}

	if fuzzyMatchScore("main.js", "main.js") <= fuzzyMatchScore("main.js", "mjs") {
		t.Error("exact match should outrank fuzzy match")
	}
}

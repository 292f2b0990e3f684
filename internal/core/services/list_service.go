package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/tunedinout/esfiddle/internal/core/domain"
	"github.com/tunedinout/esfiddle/internal/core/ports"
)

// ErrAmbiguousRef is returned by Resolve when a reference matches several files
var ErrAmbiguousRef = errors.New("reference matches more than one file")

// ListService handles listing, searching and resolving stored files
type ListService struct {
	files ports.FileStore
}

// NewListService creates a new list service
func NewListService(files ports.FileStore) *ListService {
	return &ListService{
		files: files,
	}
}

// ListRequest represents a request to list files
type ListRequest struct {
	Kind    domain.Kind // Filter by kind (optional)
	SortBy  string      // "date", "name" (default: date)
	Reverse bool        // Reverse sort order
}

// ListResponse represents the response from listing files
type ListResponse struct {
	Files []domain.FileRecord
	Total int
}

// Execute lists files with optional filtering and sorting
func (s *ListService) Execute(ctx context.Context, req ListRequest) *ListResponse {
	files := s.files.GetAllFiles(ctx)

	if req.Kind != "" {
		files = filterByKind(files, req.Kind)
	}

	sortFiles(files, req.SortBy, req.Reverse)

	return &ListResponse{
		Files: files,
		Total: len(files),
	}
}

func filterByKind(files []domain.FileRecord, kind domain.Kind) []domain.FileRecord {
	filtered := make([]domain.FileRecord, 0, len(files))
	for _, f := range files {
		if f.Kind() == kind {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

func sortFiles(files []domain.FileRecord, sortBy string, reverse bool) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if reverse {
			a, b = b, a
		}
		switch sortBy {
		case "name":
			if !strings.EqualFold(a.Name, b.Name) {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		default: // "date", newest first
			if a.Timestamp != b.Timestamp {
				return a.Timestamp > b.Timestamp
			}
		}
		return a.ID < b.ID
	})
}

// Search performs fuzzy search on names and ids
func (s *ListService) Search(ctx context.Context, query string) []domain.FileRecord {
	files := s.files.GetAllFiles(ctx)
	query = strings.TrimSpace(query)
	if query == "" {
		sortFiles(files, "date", false)
		return files
	}

	type scored struct {
		file  domain.FileRecord
		score int
	}

	var matches []scored
	for _, f := range files {
		// Name matches outrank id matches
		if score := fuzzyMatchScore(f.Name, query); score > 0 {
			matches = append(matches, scored{file: f, score: score + 1000})
			continue
		}
		if score := fuzzyMatchScore(f.ID, query); score > 0 {
			matches = append(matches, scored{file: f, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].file.Timestamp > matches[j].file.Timestamp
	})

	result := make([]domain.FileRecord, len(matches))
	for i, m := range matches {
		result[i] = m.file
	}
	return result
}

// Resolve finds the file a command-line reference points at. The reference may
// be a full id, a unique id prefix, or an exact (case-insensitive) name.
func (s *ListService) Resolve(ctx context.Context, ref string) (*domain.FileRecord, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", domain.ErrNotFound)
	}

	if rec := s.files.GetRecord(ctx, ref); rec != nil {
		return rec, nil
	}

	var byPrefix, byName []domain.FileRecord
	for _, f := range s.files.GetAllFiles(ctx) {
		if strings.HasPrefix(f.ID, ref) {
			byPrefix = append(byPrefix, f)
		}
		if strings.EqualFold(f.Name, ref) {
			byName = append(byName, f)
		}
	}

	for _, candidates := range [][]domain.FileRecord{byPrefix, byName} {
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return &candidates[0], nil
		default:
			return nil, fmt.Errorf("%w: '%s' (%d files)", ErrAmbiguousRef, ref, len(candidates))
		}
	}

	return nil, fmt.Errorf("%w: '%s'", domain.ErrNotFound, ref)
}

// fuzzyMatchScore calculates a score for fuzzy matching query against text
// Returns 0 if no match, higher scores for better matches
func fuzzyMatchScore(text, query string) int {
	if text == "" || query == "" {
		return 0
	}

	textLower := strings.ToLower(text)
	queryLower := strings.ToLower(query)

	// Exact match gets highest score
	if text == query {
		return 10000
	}

	// Case-insensitive exact match
	if textLower == queryLower {
		return 9000
	}

	// Substring match (contains)
	if strings.Contains(textLower, queryLower) {
		score := 5000
		// Bonus for match at start
		if strings.HasPrefix(textLower, queryLower) {
			score += 2000
		}
		return score
	}

	// Fuzzy character-by-character matching
	score := 0
	textRunes := []rune(textLower)
	queryRunes := []rune(queryLower)

	queryIdx := 0
	consecutiveMatches := 0
	lastMatchIdx := -1

	for textIdx := 0; textIdx < len(textRunes) && queryIdx < len(queryRunes); textIdx++ {
		if textRunes[textIdx] == queryRunes[queryIdx] {
			// Base score for each matched character
			score += 100

			// Bonus for consecutive matches
			if textIdx == lastMatchIdx+1 {
				consecutiveMatches++
				score += consecutiveMatches * 50 // Increasing bonus for consecutive chars
			} else {
				consecutiveMatches = 0
			}

			// Bonus for matching at word boundary
			if textIdx == 0 || unicode.IsSpace(textRunes[textIdx-1]) || strings.ContainsRune("-_./", textRunes[textIdx-1]) {
				score += 200
			}

			// Bonus for matching at start of string
			if textIdx == 0 {
				score += 300
			}

			lastMatchIdx = textIdx
			queryIdx++
		}
	}

	// All query characters must be matched
	if queryIdx != len(queryRunes) {
		return 0
	}

	// Penalty for gaps between matches
	if lastMatchIdx >= 0 {
		matchSpan := lastMatchIdx + 1
		penalty := (matchSpan - len(queryRunes)) * 10
		score -= penalty
	}

	return score
}

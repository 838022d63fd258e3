package service

import (
	"context"
	"strings"

	"github.com/lostfound/backend/internal/api/objects"
	"github.com/lostfound/backend/internal/query"
	"github.com/lostfound/backend/pkg/telemetry"
)

// SearchPage is a page of posts plus the term that produced it
type SearchPage struct {
	query.Page[objects.Post]
	Query string `json:"query"`
}

// SearchService runs free-text post searches
type SearchService struct {
	posts *PostService
}

// NewSearchService creates a new search service
func NewSearchService(posts *PostService) *SearchService {
	return &SearchService{posts: posts}
}

// Posts matches the term across title, description, tags and location
func (s *SearchService) Posts(ctx context.Context, term string, params query.Params, viewer string) (SearchPage, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Posts")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return SearchPage{}, &ValidationError{Field: "q", Message: "is required"}
	}

	page, err := s.posts.page(ctx, span, query.SearchPredicate(term), params, viewer)
	if err != nil {
		return SearchPage{}, err
	}
	return SearchPage{Page: page, Query: term}, nil
}

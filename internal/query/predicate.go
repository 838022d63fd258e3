package query

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

// Predicate is a WHERE condition over posts joined to categories
type Predicate = sq.Sqlizer

// ErrInvalidFilter is returned when a filter value cannot be parsed
var ErrInvalidFilter = errors.New("invalid filter")

// dateLayouts are the accepted startDate/endDate formats, tried in order
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostFilter holds the optional post filters. Zero values mean "not set".
type PostFilter struct {
	Category  string
	Status    string
	Location  string
	StartDate *time.Time
	EndDate   *time.Time
	HasReward *bool
	Tags      []string
	Search    string
}

// Predicate composes the set filters into an AND of independent clauses,
// always in field order. It returns nil when no filter is set.
func (f PostFilter) Predicate() Predicate {
	var clauses sq.And

	if f.Category != "" {
		clauses = append(clauses, sq.Expr("LOWER(categories.name) = LOWER(?)", f.Category))
	}
	if f.Status != "" {
		clauses = append(clauses, sq.Eq{"posts.status": strings.ToUpper(f.Status)})
	}
	if f.Location != "" {
		clauses = append(clauses, containsAny(f.Location, "posts.city", "posts.state", "posts.country"))
	}
	if f.StartDate != nil {
		clauses = append(clauses, sq.GtOrEq{"posts.created_at": *f.StartDate})
	}
	if f.EndDate != nil {
		clauses = append(clauses, sq.LtOrEq{"posts.created_at": *f.EndDate})
	}
	if f.HasReward != nil {
		if *f.HasReward {
			clauses = append(clauses, sq.Gt{"posts.reward": 0})
		} else {
			clauses = append(clauses, sq.Eq{"posts.reward": nil})
		}
	}
	if len(f.Tags) > 0 {
		clauses = append(clauses, sq.Expr("posts.tags && ?", pq.StringArray(f.Tags)))
	}
	if f.Search != "" {
		clauses = append(clauses, sq.Or{
			sq.ILike{"posts.title": contains(f.Search)},
			sq.ILike{"posts.description": contains(f.Search)},
			hasTag(f.Search),
		})
	}

	if len(clauses) == 0 {
		return nil
	}
	return clauses
}

// SearchPredicate matches the term against title, description, tags and the
// location fields.
func SearchPredicate(term string) Predicate {
	return sq.Or{
		sq.ILike{"posts.title": contains(term)},
		sq.ILike{"posts.description": contains(term)},
		hasTag(term),
		sq.ILike{"posts.city": contains(term)},
		sq.ILike{"posts.state": contains(term)},
		sq.ILike{"posts.country": contains(term)},
	}
}

// AuthorPredicate selects a user's posts, optionally narrowed to one status
func AuthorPredicate(userID, status string) Predicate {
	clauses := sq.And{sq.Eq{"posts.author_id": userID}}
	if status != "" {
		clauses = append(clauses, sq.Eq{"posts.status": strings.ToUpper(status)})
	}
	return clauses
}

// FilterFromValues reads a PostFilter from query parameters. Missing or
// blank keys are left unset.
func FilterFromValues(values url.Values) (PostFilter, error) {
	f := PostFilter{
		Category: strings.TrimSpace(values.Get("category")),
		Status:   strings.TrimSpace(values.Get("status")),
		Location: strings.TrimSpace(values.Get("location")),
		Search:   strings.TrimSpace(values.Get("search")),
		Tags:     ParseTags(values["tags"]...),
	}

	var err error
	if f.StartDate, err = parseDate("startDate", values.Get("startDate")); err != nil {
		return PostFilter{}, err
	}
	if f.EndDate, err = parseDate("endDate", values.Get("endDate")); err != nil {
		return PostFilter{}, err
	}

	if raw := strings.TrimSpace(values.Get("hasReward")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return PostFilter{}, fmt.Errorf("%w: hasReward %q", ErrInvalidFilter, raw)
		}
		f.HasReward = &b
	}

	return f, nil
}

// ParseTags flattens repeated and comma-separated tag values, trimming
// whitespace and dropping empty entries.
func ParseTags(raw ...string) []string {
	var tags []string
	for _, value := range raw {
		for _, tag := range strings.Split(value, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func parseDate(key, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", ErrInvalidFilter, key, raw)
}

func containsAny(term string, columns ...string) sq.Or {
	or := make(sq.Or, 0, len(columns))
	for _, column := range columns {
		or = append(or, sq.ILike{column: contains(term)})
	}
	return or
}

func contains(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func hasTag(term string) sq.Sqlizer {
	return sq.Expr("? = ANY(posts.tags)", term)
}

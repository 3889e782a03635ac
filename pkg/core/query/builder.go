package query

import (
	"encoding/json"
	"errors"
	"strings"
)

// NoMatchSentinel is an id no row can have. Used to constrain a retrieval to
// nothing when a tag filter matched no bookmark.
const NoMatchSentinel int64 = -1

// ErrMissingOwner is returned when a query is built without an owner.
var ErrMissingOwner = errors.New("query: owner is required")

// BookmarkQuery describes one list retrieval. Column references use the
// alias "b" for the bookmarks table.
type BookmarkQuery struct {
	OwnerID string
	Tags    TagFilterResult
	Keyword string

	// Fold names a SQL function that lowercases text the same way
	// strings.ToLower does. When empty the keyword is matched with plain
	// LIKE, which only ignores ASCII case.
	Fold string
}

func NewBookmarkQuery(ownerID string) BookmarkQuery {
	return BookmarkQuery{OwnerID: ownerID}
}

func (q BookmarkQuery) WithTagFilter(r TagFilterResult) BookmarkQuery {
	q.Tags = r
	return q
}

// WithKeyword sets the search term. Surrounding whitespace is ignored, so an
// empty and an absent keyword behave the same.
func (q BookmarkQuery) WithKeyword(kw string) BookmarkQuery {
	q.Keyword = strings.TrimSpace(kw)
	return q
}

// WithFold sets the store's Unicode lowercase function.
func (q BookmarkQuery) WithFold(fn string) BookmarkQuery {
	q.Fold = fn
	return q
}

// Predicate is one SQL condition and its bind args.
type Predicate struct {
	SQL  string
	Args []interface{}
}

// Predicates returns the conditions in application order. The owner
// predicate is always first.
func (q BookmarkQuery) Predicates() ([]Predicate, error) {
	if strings.TrimSpace(q.OwnerID) == "" {
		return nil, ErrMissingOwner
	}

	preds := []Predicate{
		{SQL: "b.user_id = ?", Args: []interface{}{q.OwnerID}},
		{SQL: "b.deleted_at IS NULL"},
	}

	if q.Tags.Applied {
		ids := q.Tags.IDs
		if len(ids) == 0 {
			ids = []int64{NoMatchSentinel}
		}
		// One bind variable however many ids matched.
		list, err := json.Marshal(ids)
		if err != nil {
			return nil, err
		}
		preds = append(preds, Predicate{
			SQL:  "b.id IN (SELECT value FROM json_each(?))",
			Args: []interface{}{string(list)},
		})
	}

	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		col := func(expr string) string { return expr }
		if q.Fold != "" {
			kw = strings.ToLower(kw)
			col = func(expr string) string { return q.Fold + "(" + expr + ")" }
		}
		pattern := "%" + escapeLike(kw) + "%"
		preds = append(preds, Predicate{
			SQL: "(" + col("COALESCE(b.title, '')") + " LIKE ? ESCAPE '\\'" +
				" OR " + col("COALESCE(b.description, '')") + " LIKE ? ESCAPE '\\'" +
				" OR " + col("b.url") + " LIKE ? ESCAPE '\\')",
			Args: []interface{}{pattern, pattern, pattern},
		})
	}

	return preds, nil
}

// Where joins the predicates with AND.
func (q BookmarkQuery) Where() (string, []interface{}, error) {
	preds, err := q.Predicates()
	if err != nil {
		return "", nil, err
	}
	conds := make([]string, 0, len(preds))
	var args []interface{}
	for _, p := range preds {
		conds = append(conds, p.SQL)
		args = append(args, p.Args...)
	}
	return strings.Join(conds, " AND "), args, nil
}

// OrderBy is most recently updated first; id breaks ties so paging is stable.
func (q BookmarkQuery) OrderBy() string {
	return "b.updated_at DESC, b.id DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

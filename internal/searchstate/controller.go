package searchstate

import (
	"log"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"estate-cms/internal/models"
	"estate-cms/internal/search"
)

// DefaultDebounce is the quiescence window before a filter mutation is
// written to the URL and re-queried.
const DefaultDebounce = 300 * time.Millisecond

// Navigator receives URL writes. Replace semantics: the current history entry
// is overwritten so keystrokes never pollute history.
type Navigator interface {
	ReplaceURL(query string)
}

// Searcher runs the full filtered property query.
type Searcher interface {
	Search(p search.FilterParams) ([]models.Property, error)
}

// Suggester serves the lightweight autocomplete path.
type Suggester interface {
	Suggest(query string, limit int64) ([]search.Suggestion, error)
}

// Controller owns the canonical filter state. Every mutation restarts a
// debounce timer; when it fires the state is written to the URL and the query
// re-runs. The autocomplete path has its own independent debounce timer.
type Controller struct {
	mu sync.Mutex

	state       FilterState
	searchInput string // uncommitted text in the search box

	nav       Navigator
	searcher  Searcher
	suggester Suggester
	debounce  time.Duration

	syncTimer    *time.Timer
	suggestTimer *time.Timer

	loading     bool
	results     []models.Property
	suggestions []search.Suggestion
	cursor      int // -1 when no suggestion is highlighted

	onResults     func([]models.Property)
	onSuggestions func([]search.Suggestion)
}

func NewController(nav Navigator, searcher Searcher, suggester Suggester) *Controller {
	return &Controller{
		state:     DefaultFilterState(),
		nav:       nav,
		searcher:  searcher,
		suggester: suggester,
		debounce:  DefaultDebounce,
		cursor:    -1,
	}
}

// SetDebounce overrides the debounce window; tests shorten it.
func (c *Controller) SetDebounce(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debounce = d
}

// OnResults registers a listener invoked after each completed query.
func (c *Controller) OnResults(fn func([]models.Property)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onResults = fn
}

// OnSuggestions registers a listener for autocomplete updates.
func (c *Controller) OnSuggestions(fn func([]search.Suggestion)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSuggestions = fn
}

// Hydrate initializes filter state from URL query parameters and runs the
// initial query immediately, without debouncing or writing the URL back.
func (c *Controller) Hydrate(v url.Values) {
	c.mu.Lock()
	c.state = DecodeQuery(v)
	c.searchInput = c.state.Query
	c.loading = true
	c.mu.Unlock()

	c.runQuery()
}

// Update applies a filter mutation and schedules the debounced URL write and
// re-query. Rapid successive mutations collapse into one of each.
func (c *Controller) Update(mutate func(*FilterState)) {
	c.mu.Lock()
	mutate(&c.state)
	c.loading = true
	c.scheduleSyncLocked()
	c.mu.Unlock()
}

// ClearFilters resets every dimension to its default atomically and triggers
// exactly one URL write and one re-query.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	c.state = DefaultFilterState()
	c.searchInput = ""
	c.suggestions = nil
	c.cursor = -1
	c.loading = true
	if c.syncTimer != nil {
		c.syncTimer.Stop()
		c.syncTimer = nil
	}
	c.mu.Unlock()

	c.sync()
}

// Flush runs any pending debounced sync immediately.
func (c *Controller) Flush() {
	c.mu.Lock()
	pending := c.syncTimer != nil
	if pending {
		c.syncTimer.Stop()
		c.syncTimer = nil
	}
	c.mu.Unlock()

	if pending {
		c.sync()
	}
}

func (c *Controller) scheduleSyncLocked() {
	if c.syncTimer != nil {
		c.syncTimer.Stop()
	}
	c.syncTimer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.syncTimer = nil
		c.mu.Unlock()
		c.sync()
	})
}

// sync writes the state to the URL and re-runs the query.
func (c *Controller) sync() {
	c.mu.Lock()
	qs := c.state.QueryString()
	nav := c.nav
	c.mu.Unlock()

	if nav != nil {
		nav.ReplaceURL(qs)
	}
	c.runQuery()
}

func (c *Controller) runQuery() {
	c.mu.Lock()
	params := c.state.Params()
	c.mu.Unlock()

	results, err := c.searcher.Search(params)
	if err != nil {
		// Degrade to an empty result set; the page shows its empty state.
		log.Printf("SearchState: query failed: %v", err)
		results = nil
	}

	c.mu.Lock()
	c.results = results
	c.loading = false
	fn := c.onResults
	c.mu.Unlock()

	if fn != nil {
		fn(results)
	}
}

// State returns a copy of the current filter state.
func (c *Controller) State() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Results returns the last completed result set; empty is a valid outcome,
// not an error.
func (c *Controller) Results() []models.Property {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// SetSearchInput tracks the search box as the user types. Input longer than
// the suggestion gate schedules a debounced autocomplete query; anything
// shorter clears the suggestion list. The committed query is untouched until
// SubmitSearch.
func (c *Controller) SetSearchInput(s string) {
	c.mu.Lock()
	c.searchInput = s
	if c.suggestTimer != nil {
		c.suggestTimer.Stop()
		c.suggestTimer = nil
	}

	if utf8.RuneCountInString(s) <= search.MinSuggestLen {
		c.suggestions = nil
		c.cursor = -1
		c.mu.Unlock()
		return
	}

	c.suggestTimer = time.AfterFunc(c.debounce, func() {
		c.fetchSuggestions(s)
	})
	c.mu.Unlock()
}

func (c *Controller) fetchSuggestions(q string) {
	c.mu.Lock()
	sg := c.suggester
	c.mu.Unlock()
	if sg == nil {
		return
	}

	suggestions, err := sg.Suggest(q, search.DefaultSuggestLimit)
	if err != nil {
		log.Printf("SearchState: suggestion query failed: %v", err)
		return
	}

	c.mu.Lock()
	// Stale responses are dropped: the input may have moved on.
	if c.searchInput != q {
		c.mu.Unlock()
		return
	}
	c.suggestions = suggestions
	c.cursor = -1
	fn := c.onSuggestions
	c.mu.Unlock()

	if fn != nil {
		fn(suggestions)
	}
}

// Suggestions returns the current autocomplete list.
func (c *Controller) Suggestions() []search.Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suggestions
}

// Cursor returns the highlighted suggestion index, -1 for none.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// MoveCursorDown advances the highlight, stopping at the last suggestion.
func (c *Controller) MoveCursorDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.suggestions) == 0 {
		return
	}
	if c.cursor < len(c.suggestions)-1 {
		c.cursor++
	}
}

// MoveCursorUp moves the highlight back, stopping at the first suggestion.
func (c *Controller) MoveCursorUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cursor > 0 {
		c.cursor--
	}
}

// Confirm resolves the enter key: a highlighted suggestion yields its slug as
// a navigation target; otherwise the typed input is committed as a full
// search submission and no target is returned.
func (c *Controller) Confirm() (slug string, ok bool) {
	c.mu.Lock()
	if c.cursor >= 0 && c.cursor < len(c.suggestions) {
		slug = c.suggestions[c.cursor].Slug
		c.suggestions = nil
		c.cursor = -1
		c.mu.Unlock()
		return slug, true
	}
	c.mu.Unlock()

	c.SubmitSearch()
	return "", false
}

// Dismiss clears the suggestion list without committing anything.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.suggestTimer != nil {
		c.suggestTimer.Stop()
		c.suggestTimer = nil
	}
	c.suggestions = nil
	c.cursor = -1
}

// SubmitSearch commits the search box text as the query dimension and syncs
// immediately.
func (c *Controller) SubmitSearch() {
	c.mu.Lock()
	c.state.Query = c.searchInput
	c.suggestions = nil
	c.cursor = -1
	c.loading = true
	if c.syncTimer != nil {
		c.syncTimer.Stop()
		c.syncTimer = nil
	}
	c.mu.Unlock()

	c.sync()
}

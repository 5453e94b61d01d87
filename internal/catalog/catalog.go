// Package catalog holds the static list of one-time tasks a waitlist user can
// claim. The catalog is configuration: it is loaded once at process start and
// bonus recomputation always runs against the current version, so a task id
// removed from the catalog stops contributing entries.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

type Intent string

const (
	IntentFollow  Intent = "follow"
	IntentTweet   Intent = "tweet"
	IntentLike    Intent = "like"
	IntentRetweet Intent = "retweet"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentFollow, IntentTweet, IntentLike, IntentRetweet:
		return true
	}
	return false
}

type Task struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Entries int    `json:"entries"`
	Intent  Intent `json:"intent"`
	TweetID string `json:"tweet_id,omitempty"`
}

type Catalog struct {
	tasks []Task
	byID  map[string]Task
}

// Default is the launch catalog.
func Default() *Catalog {
	c, _ := New([]Task{
		{ID: "follow", Title: "Follow @fliproyale", Entries: 1, Intent: IntentFollow},
		{ID: "intent-tweet", Title: "Post the intent tweet", Entries: 2, Intent: IntentTweet},
		{ID: "like-1995994265315406127", Title: "Like tweet 1995994265315406127", Entries: 1, Intent: IntentLike, TweetID: "1995994265315406127"},
		{ID: "retweet-1991999830911320492", Title: "Retweet tweet 1991999830911320492", Entries: 2, Intent: IntentRetweet, TweetID: "1991999830911320492"},
		{ID: "like-2000706974179074490", Title: "Like tweet 2000706974179074490", Entries: 1, Intent: IntentLike, TweetID: "2000706974179074490"},
	})
	return c
}

// New validates tasks and builds a catalog. Order is preserved for listing.
func New(tasks []Task) (*Catalog, error) {
	c := &Catalog{
		tasks: make([]Task, 0, len(tasks)),
		byID:  make(map[string]Task, len(tasks)),
	}
	for _, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("task with title %q has no id", t.Title)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", t.ID)
		}
		if t.Entries < 0 {
			return nil, fmt.Errorf("task %q has negative entries", t.ID)
		}
		if !t.Intent.Valid() {
			return nil, fmt.Errorf("task %q has unknown intent %q", t.ID, t.Intent)
		}
		c.tasks = append(c.tasks, t)
		c.byID[t.ID] = t
	}
	return c, nil
}

// Load reads a JSON array of tasks from path. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task catalog: %w", err)
	}
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse task catalog: %w", err)
	}
	return New(tasks)
}

func (c *Catalog) Lookup(id string) (Task, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Tasks returns a copy of the catalog in declaration order.
func (c *Catalog) Tasks() []Task {
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Bonus sums the entries of every catalog task present in claims.
// Claimed ids unknown to the catalog contribute nothing.
func (c *Catalog) Bonus(claims map[string]string) int {
	total := 0
	for _, t := range c.tasks {
		if _, ok := claims[t.ID]; ok {
			total += t.Entries
		}
	}
	return total
}

// BonusOf is Bonus for a list of claimed ids, used by the per-username variant.
func (c *Catalog) BonusOf(ids []string) int {
	claims := make(map[string]string, len(ids))
	for _, id := range ids {
		claims[id] = ""
	}
	return c.Bonus(claims)
}

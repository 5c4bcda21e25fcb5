// Package events looks up training events by name and recommends a choice.
//
// Event databases are JSON arrays in one of two shapes: a flat list of
// {"EventName", "EventOptions"} objects, or a list of characters each
// carrying such a list under "UmaEvents". Option order matters (the first
// option is the top choice on screen) so options are decoded in document
// order.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"uma-bot/internal/fuzzy"
	"uma-bot/internal/logger"
)

// Option is one event choice and the rewards text shown for it.
type Option struct {
	Name   string
	Reward string
}

// Options is an ordered list of event choices.
type Options []Option

// UnmarshalJSON decodes an object keeping key order.
func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("event options: expected object, got %v", tok)
	}

	var out Options
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var reward string
		if err := dec.Decode(&reward); err != nil {
			return fmt.Errorf("event option %q: %w", key, err)
		}
		out = out.set(key, reward)
	}
	*o = out
	return nil
}

// set replaces the reward of an existing option or appends a new one.
func (o Options) set(name, reward string) Options {
	for i := range o {
		if o[i].Name == name {
			o[i].Reward = reward
			return o
		}
	}
	return append(o, Option{Name: name, Reward: reward})
}

// Event is a database entry after merging every source that lists it.
type Event struct {
	Name    string
	Sources []string
	Options Options
}

// Source joins the names of the databases the event came from.
func (e Event) Source() string {
	return strings.Join(e.Sources, " + ")
}

type rawEvent struct {
	EventName    string  `json:"EventName"`
	EventOptions Options `json:"EventOptions"`
}

type rawEntry struct {
	rawEvent
	UmaEvents []rawEvent `json:"UmaEvents"`
}

type source struct {
	name   string
	events []rawEvent
}

// Database is the set of loaded event sources, searched in load order.
type Database struct {
	sources []source
}

// LoadDatabase reads every path. Missing or unreadable files are logged and
// skipped.
func LoadDatabase(paths []string) *Database {
	db := &Database{}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			logger.LogWarn("Error loading %s: %v", filepath.Base(p), err)
			continue
		}
		if err := db.Add(sourceName(p), data); err != nil {
			logger.LogWarn("Error loading %s: %v", filepath.Base(p), err)
		}
	}
	return db
}

// Add parses one database document.
func (db *Database) Add(name string, data []byte) error {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var entries []rawEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse event database: %w", err)
	}

	src := source{name: name}
	for _, e := range entries {
		if e.EventName != "" {
			src.events = append(src.events, e.rawEvent)
		}
		src.events = append(src.events, e.UmaEvents...)
	}
	db.sources = append(db.sources, src)
	return nil
}

// Len returns the number of events across every source.
func (db *Database) Len() int {
	n := 0
	for _, s := range db.sources {
		n += len(s.events)
	}
	return n
}

// sourceName turns "assets/events/support_card.json" into "Support Card".
func sourceName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.Fields(strings.ReplaceAll(base, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// collector merges events with the same name in first-seen order.
type collector struct {
	events []Event
}

func (c *collector) add(src string, ev rawEvent) {
	for i := range c.events {
		e := &c.events[i]
		if e.Name != ev.EventName {
			continue
		}
		if e.Sources[len(e.Sources)-1] != src {
			e.Sources = append(e.Sources, src)
		}
		for _, o := range ev.EventOptions {
			e.Options = e.Options.set(o.Name, o.Reward)
		}
		return
	}
	c.events = append(c.events, Event{
		Name:    ev.EventName,
		Sources: []string{src},
		Options: append(Options(nil), ev.EventOptions...),
	})
}

func (c *collector) first() (Event, bool) {
	if len(c.events) == 0 {
		return Event{}, false
	}
	return c.events[0], true
}

// Exact returns the event named exactly name.
func (db *Database) Exact(name string) (Event, bool) {
	var c collector
	for _, s := range db.sources {
		for _, ev := range s.events {
			if ev.EventName == name {
				c.add(s.name, ev)
			}
		}
	}
	return c.first()
}

// Match quality of a fuzzy lookup, best first.
type matchKind int

const (
	noMatch matchKind = iota
	prefixMatch
	wordMatch
	looseMatch
	similarMatch
)

// minSimilarity is the edit-distance ratio accepted when no substring
// strategy finds the event.
const minSimilarity = 0.85

var wordSplit = regexp.MustCompile(`[\s!?()\[\]\-><,.]`)

func classify(query, candidate string) matchKind {
	if strings.HasPrefix(candidate, query) {
		return prefixMatch
	}
	for _, w := range wordSplit.Split(candidate, -1) {
		if w == "" {
			continue
		}
		if w == query || (len(query) >= 3 && strings.HasPrefix(w, query)) {
			return wordMatch
		}
	}
	if len(query) >= 5 && strings.Contains(candidate, query) {
		return looseMatch
	}
	if fuzzy.Ratio(query, candidate) >= minSimilarity {
		return similarMatch
	}
	return noMatch
}

// Fuzzy finds the event whose name best fits an OCR'd name. Names starting
// with the text win over names containing it as a word, which win over
// plain substrings (5+ characters), which win over names within a small
// edit distance. Within a tier the first event in load order is returned.
func (db *Database) Fuzzy(name string) (Event, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return Event{}, false
	}

	tiers := map[matchKind]*collector{
		prefixMatch:  {},
		wordMatch:    {},
		looseMatch:   {},
		similarMatch: {},
	}
	for _, s := range db.sources {
		for _, ev := range s.events {
			if ev.EventName == "" {
				continue
			}
			kind := classify(query, strings.ToLower(strings.TrimSpace(ev.EventName)))
			if kind != noMatch {
				tiers[kind].add(s.name, ev)
			}
		}
	}

	for _, k := range []matchKind{prefixMatch, wordMatch, looseMatch, similarMatch} {
		if ev, ok := tiers[k].first(); ok {
			return ev, true
		}
	}
	return Event{}, false
}

// Lookup tries an exact match, then a fuzzy one.
func (db *Database) Lookup(name string) (Event, bool) {
	if ev, ok := db.Exact(name); ok {
		return ev, true
	}
	return db.Fuzzy(name)
}

// Package resolver turns a free-text utterance into the stations it mentions
// and the kind of transit question being asked.
package resolver

import (
	"cmp"
	"slices"
	"strings"

	"github.com/theoremus-urban-solutions/transit-fusion/gtfs"
)

// Intent classifies an utterance.
type Intent string

const (
	// IntentNone means no routing phrase and no known station.
	IntentNone Intent = "none"
	// IntentLookup asks about a single station, e.g. its next departures.
	IntentLookup Intent = "lookup"
	// IntentPlan asks how to get from one station to another.
	IntentPlan Intent = "plan"
)

// planPhrases mark an utterance as a routing request.
var planPhrases = []string{"route", "trip", "get to", "go to", "travel to"}

// StopFinder is the slice of the schedule store the resolver needs.
type StopFinder interface {
	FindByName(query string) (*gtfs.Stop, error)
	NearestStop(lat, lon float64) (*gtfs.Stop, error)
}

// Coordinates is a caller position in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Mention is a station name found in the utterance.
type Mention struct {
	Name   string
	Offset int
	Stop   gtfs.Stop
}

func (m Mention) end() int { return m.Offset + len(m.Name) }

// ResolvedTrip is the outcome of resolving one utterance.
type ResolvedTrip struct {
	Intent      Intent
	Origin      *gtfs.Stop
	Destination *gtfs.Stop
	Mentions    []Mention
	// OriginFromLocation is set when Origin came from the caller's coordinates.
	OriginFromLocation bool
}

// CanPlan reports whether both ends of a planned trip are known.
func (r ResolvedTrip) CanPlan() bool {
	return r.Intent == IntentPlan && r.Origin != nil && r.Destination != nil
}

// Resolver resolves utterances against a StopFinder.
type Resolver struct {
	stops StopFinder
}

// New returns a Resolver backed by stops.
func New(stops StopFinder) *Resolver {
	return &Resolver{stops: stops}
}

// Resolve extracts station mentions in utterance order, classifies intent and
// assigns origin and destination. caller may be nil.
func (r *Resolver) Resolve(utterance string, vocabulary []string, caller *Coordinates) (ResolvedTrip, error) {
	mentions, err := r.Mentions(utterance, vocabulary)
	if err != nil {
		return ResolvedTrip{}, err
	}
	res := ResolvedTrip{
		Intent:   ClassifyIntent(utterance, len(mentions)),
		Mentions: mentions,
	}

	switch res.Intent {
	case IntentPlan:
		switch {
		case len(mentions) >= 2:
			res.Origin = stopPtr(mentions[0].Stop)
			res.Destination = stopPtr(mentions[1].Stop)
		case len(mentions) == 1:
			res.Destination = stopPtr(mentions[0].Stop)
		}
		if res.Origin == nil && caller != nil {
			near, err := r.stops.NearestStop(caller.Lat, caller.Lon)
			if err != nil {
				return ResolvedTrip{}, err
			}
			res.Origin = near
			res.OriginFromLocation = near != nil
		}
	case IntentLookup:
		res.Origin = stopPtr(mentions[0].Stop)
	}
	return res, nil
}

// Mentions finds every vocabulary entry occurring in utterance (case-insensitive),
// resolves it to a stop and returns the hits ordered by offset. A hit lying inside
// a longer hit's span is dropped, as is a later hit on an already mentioned stop.
func (r *Resolver) Mentions(utterance string, vocabulary []string) ([]Mention, error) {
	text := strings.ToLower(utterance)
	var found []Mention
	seenName := map[string]bool{}
	for _, name := range vocabulary {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seenName[key] {
			continue
		}
		seenName[key] = true
		offsets := occurrences(text, key)
		if len(offsets) == 0 {
			continue
		}
		stop, err := r.stops.FindByName(name)
		if err != nil {
			return nil, err
		}
		if stop == nil {
			continue
		}
		for _, off := range offsets {
			found = append(found, Mention{Name: key, Offset: off, Stop: *stop})
		}
	}

	slices.SortStableFunc(found, func(a, b Mention) int {
		if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
			return c
		}
		return cmp.Compare(len(b.Name), len(a.Name))
	})

	out := found[:0]
	seenStop := map[string]bool{}
	for _, m := range found {
		if seenStop[m.Stop.ID] || coveredBy(m, out) {
			continue
		}
		seenStop[m.Stop.ID] = true
		out = append(out, m)
	}
	return out, nil
}

// occurrences returns the byte offset of every match of key in text.
func occurrences(text, key string) []int {
	var offs []int
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], key)
		if i < 0 {
			break
		}
		offs = append(offs, start+i)
		start += i + 1
	}
	return offs
}

func coveredBy(m Mention, accepted []Mention) bool {
	for _, a := range accepted {
		if m.Offset >= a.Offset && m.end() <= a.end() {
			return true
		}
	}
	return false
}

// ClassifyIntent returns IntentPlan when utterance contains a routing phrase,
// otherwise IntentLookup when there is at least one mention.
func ClassifyIntent(utterance string, mentions int) Intent {
	text := strings.ToLower(utterance)
	for _, p := range planPhrases {
		if strings.Contains(text, p) {
			return IntentPlan
		}
	}
	if mentions > 0 {
		return IntentLookup
	}
	return IntentNone
}

func stopPtr(s gtfs.Stop) *gtfs.Stop {
	return &s
}

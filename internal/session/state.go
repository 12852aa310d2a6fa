package session

import (
	"time"

	"spiritlife-frontend/internal/search"
)

// HistoryEntry is one past search as shown in the sidebar.
type HistoryEntry struct {
	Mode    search.Mode `json:"mode"`
	Summary string      `json:"summary"`
	At      time.Time   `json:"at"`
}

// State is everything a browser session keeps between requests.
// History is stored oldest first. Generation counts recorded searches and
// identifies which LastResponse a rendered page was built from.
type State struct {
	History      []HistoryEntry
	LastResponse search.SearchResponse
	Generation   int
}

func NewState() *State {
	return &State{
		History:      []HistoryEntry{},
		LastResponse: search.EmptyResponse(),
	}
}

// RecordSearch replaces the last response and appends a history entry.
func (s *State) RecordSearch(p search.Payload, resp search.SearchResponse, at time.Time) {
	if resp.Videos == nil {
		resp.Videos = []search.VideoResult{}
	}
	if resp.Audios == nil {
		resp.Audios = []search.AudioResult{}
	}
	s.LastResponse = resp
	s.Generation++
	s.History = append(s.History, HistoryEntry{
		Mode:    p.Mode,
		Summary: p.Summary(),
		At:      at,
	})
}

// HistoryNewestFirst returns a reversed copy for display.
func (s *State) HistoryNewestFirst() []HistoryEntry {
	out := make([]HistoryEntry, len(s.History))
	for i, h := range s.History {
		out[len(s.History)-1-i] = h
	}
	return out
}

// Audio returns the audio result at idx of the last response.
func (s *State) Audio(idx int) (search.AudioResult, bool) {
	if idx < 0 || idx >= len(s.LastResponse.Audios) {
		return search.AudioResult{}, false
	}
	return s.LastResponse.Audios[idx], true
}

// Clone returns a copy safe to read without holding the store lock.
func (s *State) Clone() *State {
	c := &State{
		Generation: s.Generation,
		History:    append([]HistoryEntry(nil), s.History...),
		LastResponse: search.SearchResponse{
			Videos: append([]search.VideoResult{}, s.LastResponse.Videos...),
			Audios: append([]search.AudioResult{}, s.LastResponse.Audios...),
		},
	}
	if c.History == nil {
		c.History = []HistoryEntry{}
	}
	return c
}

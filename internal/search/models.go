package search

import (
	"errors"
	"strings"
	"time"
)

// Mode selects which search endpoint a payload is sent to.
type Mode string

const (
	ModeManual Mode = "Manual Search"
	ModePrompt Mode = "AI Chat Search"
)

const dateLayout = "2006-01-02"

var ErrInvalidMode = errors.New("search: invalid mode")

// Modes lists the selectable modes in display order.
func Modes() []Mode {
	return []Mode{ModeManual, ModePrompt}
}

func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case string(ModeManual), "manual":
		return ModeManual, nil
	case string(ModePrompt), "prompt":
		return ModePrompt, nil
	}
	return "", ErrInvalidMode
}

// Payload is what the user entered. Only the fields matching Mode are sent.
type Payload struct {
	Mode      Mode
	Keywords  string
	Preacher  string
	StartDate *time.Time
	EndDate   *time.Time
	Prompt    string
}

// Summary is the short text recorded in the search history.
func (p Payload) Summary() string {
	if p.Keywords != "" {
		return p.Keywords
	}
	return p.Prompt
}

type manualBody struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Keywords  string  `json:"keywords"`
	Preacher  string  `json:"preacher"`
}

type promptBody struct {
	Prompt string `json:"prompt"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// ParseDate accepts an empty string as "no date".
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type VideoResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type AudioResult struct {
	MessageTitle string `json:"message_title"`
	Preacher     string `json:"preacher,omitempty"`
	URL          string `json:"url"`
}

type SearchResponse struct {
	Videos []VideoResult `json:"videos"`
	Audios []AudioResult `json:"audios"`
}

// EmptyResponse is the state before any search has run.
func EmptyResponse() SearchResponse {
	return SearchResponse{
		Videos: []VideoResult{},
		Audios: []AudioResult{},
	}
}

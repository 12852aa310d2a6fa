package session

import (
	"testing"
	"time"

	"spiritlife-frontend/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_Empty(t *testing.T) {
	s := NewState()
	assert.Empty(t, s.History)
	assert.NotNil(t, s.LastResponse.Videos)
	assert.NotNil(t, s.LastResponse.Audios)
	assert.Empty(t, s.LastResponse.Videos)
	assert.Empty(t, s.LastResponse.Audios)
}

func TestRecordSearch_HistoryOrder(t *testing.T) {
	s := NewState()
	now := time.Now()

	s.RecordSearch(search.Payload{Mode: search.ModeManual, Keywords: "faith"}, search.EmptyResponse(), now)
	s.RecordSearch(search.Payload{Mode: search.ModePrompt, Prompt: "find joy"}, search.SearchResponse{
		Audios: []search.AudioResult{{MessageTitle: "Joy", URL: "https://example.com/joy.mp3"}},
	}, now.Add(time.Minute))

	require.Len(t, s.History, 2)
	assert.Equal(t, 2, s.Generation)
	assert.Equal(t, 2, s.Clone().Generation)
	assert.Equal(t, "faith", s.History[0].Summary)
	assert.Equal(t, search.ModeManual, s.History[0].Mode)
	assert.Equal(t, "find joy", s.History[1].Summary)
	assert.Equal(t, search.ModePrompt, s.History[1].Mode)

	display := s.HistoryNewestFirst()
	require.Len(t, display, 2)
	assert.Equal(t, "find joy", display[0].Summary)
	assert.Equal(t, "faith", display[1].Summary)

	// storage order is untouched by the display copy
	assert.Equal(t, "faith", s.History[0].Summary)

	assert.NotNil(t, s.LastResponse.Videos)
	a, ok := s.Audio(0)
	require.True(t, ok)
	assert.Equal(t, "Joy", a.MessageTitle)
	_, ok = s.Audio(1)
	assert.False(t, ok)
	_, ok = s.Audio(-1)
	assert.False(t, ok)
}

func TestClone_IsIndependent(t *testing.T) {
	s := NewState()
	s.RecordSearch(search.Payload{Mode: search.ModeManual, Keywords: "grace"}, search.SearchResponse{
		Videos: []search.VideoResult{{Title: "Grace", URL: "https://youtu.be/abc"}},
	}, time.Now())

	c := s.Clone()
	c.History[0].Summary = "changed"
	c.LastResponse.Videos[0].Title = "changed"

	assert.Equal(t, "grace", s.History[0].Summary)
	assert.Equal(t, "Grace", s.LastResponse.Videos[0].Title)
}

package frontend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"spiritlife-frontend/internal/search"
	"spiritlife-frontend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
		isYT bool
	}{
		{"https://www.youtube.com/watch?v=abc123", "https://www.youtube.com/embed/abc123", true},
		{"https://youtube.com/watch?v=abc123&t=30s", "https://www.youtube.com/embed/abc123", true},
		{"https://m.youtube.com/watch?v=abc123", "https://www.youtube.com/embed/abc123", true},
		{"https://youtu.be/abc123", "https://www.youtube.com/embed/abc123", true},
		{"https://www.youtube.com/embed/abc123", "https://www.youtube.com/embed/abc123", true},
		{"https://www.youtube.com/shorts/abc123", "https://www.youtube.com/embed/abc123", true},
		{"https://www.youtube.com/live/abc123", "https://www.youtube.com/embed/abc123", true},
		{"https://www.youtube.com/channel/xyz", "https://www.youtube.com/channel/xyz", false},
		{"https://vimeo.com/12345", "https://vimeo.com/12345", false},
		{"not a url", "not a url", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, isYT := embedURL(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.isYT, isYT, tt.in)
	}
}

func TestBuildView_Empty(t *testing.T) {
	v := BuildView(context.Background(), session.NewState(), nil, Options{PageTitle: "T"})

	assert.Equal(t, "T", v.PageTitle)
	assert.Equal(t, []string{"Manual Search", "AI Chat Search"}, v.Modes)
	assert.Empty(t, v.History)
	assert.Empty(t, v.Videos)
	assert.Empty(t, v.Audios)
}

func TestBuildView_AudioSections(t *testing.T) {
	st := session.NewState()
	st.LastResponse.Audios = []search.AudioResult{
		{MessageTitle: "Faith Works", Preacher: "Orokpo", URL: "https://cdn.example/1.mp3"},
		{MessageTitle: "No Link"},
	}

	v := BuildView(context.Background(), st, nil, Options{})
	require.Len(t, v.Audios, 2)

	a := v.Audios[0]
	assert.Equal(t, "Faith Works — Orokpo", a.SectionTitle)
	assert.Equal(t, "Faith_Works.mp3", a.Filename)
	assert.Equal(t, "/audio/0/0", a.PlayURL)
	assert.Equal(t, "/audio/0/0/download", a.DownloadURL)
	assert.Equal(t, "/audio/0/0/progress", a.ProgressURL)
	assert.False(t, a.Unavailable)
	assert.False(t, a.Prefetched)

	assert.True(t, v.Audios[1].Unavailable)
	assert.Equal(t, "No Link", v.Audios[1].SectionTitle)
}

func TestBuildView_PrefetchFailureIsIsolated(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://cdn.example/bad.mp3").Return(nil, errors.New("timeout"))
	fetcher.On("Fetch", mock.Anything, "https://cdn.example/good.mp3").Return([]byte("mp3"), nil)

	st := session.NewState()
	st.LastResponse.Audios = []search.AudioResult{
		{MessageTitle: "Bad", URL: "https://cdn.example/bad.mp3"},
		{MessageTitle: "Good", URL: "https://cdn.example/good.mp3"},
	}

	v := BuildView(context.Background(), st, fetcher, Options{AudioPrefetch: true})
	require.Len(t, v.Audios, 2)
	assert.True(t, v.Audios[0].Unavailable)
	assert.False(t, v.Audios[0].Prefetched)
	assert.False(t, v.Audios[1].Unavailable)
	assert.True(t, v.Audios[1].Prefetched)
	fetcher.AssertExpectations(t)
}

func TestRender_PrefetchFailureIsIsolated(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://cdn.example/bad.mp3").Return(nil, errors.New("timeout"))
	fetcher.On("Fetch", mock.Anything, "https://cdn.example/good.mp3").Return([]byte("mp3"), nil)

	s := newTestServer(t, new(MockSearcher), fetcher, Options{AudioPrefetch: true})
	seedAudios(s,
		search.AudioResult{MessageTitle: "Bad", URL: "https://cdn.example/bad.mp3"},
		search.AudioResult{MessageTitle: "Good", URL: "https://cdn.example/good.mp3"},
	)

	body := getPage(t, s.Router())
	assert.Equal(t, 1, strings.Count(body, "Audio unavailable"))
	assert.Contains(t, body, `src="/audio/1/1"`)
	assert.Contains(t, body, "Bad")
	assert.Contains(t, body, "Good")
}

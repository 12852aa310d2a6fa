package frontend

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"spiritlife-frontend/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func manualFor(keywords string) interface{} {
	return mock.MatchedBy(func(p search.Payload) bool {
		return p.Mode == search.ModeManual && p.Keywords == keywords
	})
}

func TestHandleSearch_HistoryNewestFirst(t *testing.T) {
	searcher := new(MockSearcher)
	s := newTestServer(t, searcher, new(MockFetcher), Options{})
	r := s.Router()

	searcher.On("FetchResults", mock.Anything, manualFor("faith")).
		Return(search.SearchResponse{
			Videos: []search.VideoResult{{Title: "Faith Video", URL: "https://www.youtube.com/watch?v=abc123"}},
			Audios: []search.AudioResult{},
		}, nil).Once()
	searcher.On("FetchResults", mock.Anything, mock.MatchedBy(func(p search.Payload) bool {
		return p.Mode == search.ModePrompt && p.Prompt == "find joy"
	})).Return(search.SearchResponse{}, nil).Once()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, formRequest(url.Values{"mode": {"Manual Search"}, "keywords": {"faith"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	body := getPage(t, r)
	assert.Contains(t, body, "1. Manual Search")
	assert.Contains(t, body, "faith")
	assert.Contains(t, body, "Faith Video")
	assert.Contains(t, body, "https://www.youtube.com/embed/abc123")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, formRequest(url.Values{"mode": {"AI Chat Search"}, "prompt": {"find joy"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)

	body = getPage(t, r)
	first := strings.Index(body, "1. AI Chat Search")
	second := strings.Index(body, "2. Manual Search")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, body, "find joy")
	assert.Contains(t, body, "No video results found")
	assert.Contains(t, body, "No audio results found")
	searcher.AssertExpectations(t)
}

func TestHandleSearch_SectionsInInputOrder(t *testing.T) {
	searcher := new(MockSearcher)
	s := newTestServer(t, searcher, new(MockFetcher), Options{})
	r := s.Router()

	searcher.On("FetchResults", mock.Anything, manualFor("grace")).Return(search.SearchResponse{
		Videos: []search.VideoResult{
			{Title: "Video One", URL: "https://youtu.be/one"},
			{Title: "Video Two", URL: "https://example.com/two.mp4"},
		},
		Audios: []search.AudioResult{
			{MessageTitle: "Audio One", Preacher: "Orokpo", URL: "https://cdn.example/1.mp3"},
			{MessageTitle: "Audio Two", URL: "https://cdn.example/2.mp3"},
			{MessageTitle: "Audio Three", URL: "https://cdn.example/3.mp3"},
		},
	}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, formRequest(url.Values{"mode": {"Manual Search"}, "keywords": {"grace"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)

	body := getPage(t, r)
	assert.Equal(t, 2, strings.Count(body, `data-section="video"`))
	assert.Equal(t, 3, strings.Count(body, `data-section="audio"`))
	assert.Less(t, strings.Index(body, "Video One"), strings.Index(body, "Video Two"))
	assert.Less(t, strings.Index(body, "Audio One"), strings.Index(body, "Audio Two"))
	assert.Less(t, strings.Index(body, "Audio Two"), strings.Index(body, "Audio Three"))
	assert.Contains(t, body, "Audio One — Orokpo")
	assert.Contains(t, body, `src="https://example.com/two.mp4"`)
	assert.Contains(t, body, `download="Audio_Two.mp3"`)
}

func TestHandleSearch_FailureKeepsState(t *testing.T) {
	searcher := new(MockSearcher)
	s := newTestServer(t, searcher, new(MockFetcher), Options{})
	r := s.Router()

	searcher.On("FetchResults", mock.Anything, manualFor("faith")).
		Return(search.SearchResponse{Videos: []search.VideoResult{{Title: "Kept Video", URL: "https://youtu.be/k"}}}, nil)
	searcher.On("FetchResults", mock.Anything, manualFor("broken")).
		Return(search.SearchResponse{}, errors.New("connection refused"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, formRequest(url.Values{"mode": {"Manual Search"}, "keywords": {"faith"}}))
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, formRequest(url.Values{"mode": {"Manual Search"}, "keywords": {"broken"}}))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Search failed")
	assert.Contains(t, w.Body.String(), "Kept Video")

	st := s.sessions.Snapshot(testSID)
	require.Len(t, st.History, 1)
	assert.Equal(t, "faith", st.History[0].Summary)
	assert.Equal(t, "Kept Video", st.LastResponse.Videos[0].Title)
}

func TestHandleSearch_FirstFailureShowsEmptyState(t *testing.T) {
	searcher := new(MockSearcher)
	s := newTestServer(t, searcher, new(MockFetcher), Options{})

	searcher.On("FetchResults", mock.Anything, mock.Anything).
		Return(search.SearchResponse{}, &search.StatusError{StatusCode: 500})

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, formRequest(url.Values{"mode": {"AI Chat Search"}, "prompt": {"hope"}}))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "No searches yet")
	assert.Contains(t, w.Body.String(), `role="alert"`)
}

func TestHandleSearch_BadInput(t *testing.T) {
	s := newTestServer(t, new(MockSearcher), new(MockFetcher), Options{DateFilterEnabled: true})
	r := s.Router()

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"unknown mode", url.Values{"mode": {"voice"}}, "unsupported search mode"},
		{"long keywords", url.Values{"mode": {"Manual Search"}, "keywords": {strings.Repeat("a", maxFieldLen+1)}}, "too long"},
		{"long prompt", url.Values{"mode": {"AI Chat Search"}, "prompt": {strings.Repeat("a", maxPromptLen+1)}}, "too long"},
		{"bad date", url.Values{"mode": {"Manual Search"}, "start_date": {"01/02/2024"}}, "invalid start date"},
		{"reversed dates", url.Values{"mode": {"Manual Search"}, "start_date": {"2024-05-01"}, "end_date": {"2024-01-01"}}, "before start date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, formRequest(tt.form))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestPayloadFromForm_Dates(t *testing.T) {
	form := url.Values{
		"mode":       {"Manual Search"},
		"keywords":   {" faith "},
		"start_date": {"2024-01-01"},
		"end_date":   {"2024-12-31"},
	}

	t.Run("ignored when disabled", func(t *testing.T) {
		s := newTestServer(t, new(MockSearcher), new(MockFetcher), Options{})
		p, err := s.payloadFromForm(formRequest(form))
		require.NoError(t, err)
		assert.Equal(t, "faith", p.Keywords)
		assert.Nil(t, p.StartDate)
		assert.Nil(t, p.EndDate)
	})

	t.Run("parsed when enabled", func(t *testing.T) {
		s := newTestServer(t, new(MockSearcher), new(MockFetcher), Options{DateFilterEnabled: true})
		p, err := s.payloadFromForm(formRequest(form))
		require.NoError(t, err)
		require.NotNil(t, p.StartDate)
		require.NotNil(t, p.EndDate)
		assert.Equal(t, "2024-01-01", p.StartDate.Format("2006-01-02"))
		assert.Equal(t, "2024-12-31", p.EndDate.Format("2006-01-02"))
	})
}

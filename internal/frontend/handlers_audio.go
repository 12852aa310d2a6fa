package frontend

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"
	"time"

	"spiritlife-frontend/internal/audio"
	"spiritlife-frontend/internal/search"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// audioItem resolves {gen}/{idx} against the caller's last search. Links
// from a page rendered before a newer search get 409.
func (s *Server) audioItem(w http.ResponseWriter, r *http.Request) (search.AudioResult, bool) {
	gen, err := strconv.Atoi(chi.URLParam(r, "gen"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid results generation")
		return search.AudioResult{}, false
	}
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audio index")
		return search.AudioResult{}, false
	}
	st := s.sessions.Snapshot(s.sessionID(w, r))
	if gen != st.Generation {
		writeError(w, http.StatusConflict, "results changed, reload the page")
		return search.AudioResult{}, false
	}
	a, ok := st.Audio(idx)
	if !ok {
		writeError(w, http.StatusNotFound, "audio not found")
		return search.AudioResult{}, false
	}
	return a, true
}

func (s *Server) audioBytes(w http.ResponseWriter, r *http.Request, action string) (search.AudioResult, []byte, bool) {
	a, ok := s.audioItem(w, r)
	if !ok {
		return a, nil, false
	}
	b, err := s.fetcher.Fetch(r.Context(), a.URL)
	if err != nil {
		s.metrics.recordAudioError(action)
		log.WithError(err).WithField("title", a.MessageTitle).Warn("audio unavailable")
		writeError(w, http.StatusBadGateway, "audio unavailable")
		return a, nil, false
	}
	return a, b, true
}

// handleAudio serves the cached body for inline playback.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.audioBytes(w, r, "play")
	if !ok {
		return
	}
	w.Header().Set("Content-Type", audio.MimeType)
	http.ServeContent(w, r, audio.DownloadFilename(a.MessageTitle), time.Time{}, bytes.NewReader(b))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	a, b, ok := s.audioBytes(w, r, "download")
	if !ok {
		return
	}
	name := audio.DownloadFilename(a.MessageTitle)
	w.Header().Set("Content-Type", audio.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(b))
}

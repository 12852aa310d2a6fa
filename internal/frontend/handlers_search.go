package frontend

import (
	"errors"
	"net/http"
	"strings"

	"spiritlife-frontend/internal/search"
	"spiritlife-frontend/internal/session"

	log "github.com/sirupsen/logrus"
)

const (
	maxFieldLen  = 500
	maxPromptLen = 2000
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)
	st := s.sessions.Snapshot(id)
	s.render(w, http.StatusOK, "home.gohtml", BuildView(r.Context(), st, s.fetcher, s.opts))
}

// handleSearch forwards the form to the backend. On success the session
// state is replaced and the browser is sent back to the results page; on
// failure the state is left as it was and the error is shown.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	id := s.sessionID(w, r)

	p, err := s.payloadFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.searcher.FetchResults(r.Context(), p)
	if err != nil {
		s.metrics.recordSearch(p.Mode, "error")
		log.WithError(err).WithField("mode", p.Mode).Warn("search failed")

		v := BuildView(r.Context(), s.sessions.Snapshot(id), s.fetcher, s.opts)
		v.Error = "Search failed: the search service is unavailable. Please try again."
		s.render(w, http.StatusBadGateway, "home.gohtml", v)
		return
	}
	s.metrics.recordSearch(p.Mode, "ok")

	var entry session.HistoryEntry
	s.sessions.Update(id, func(st *session.State) {
		st.RecordSearch(p, resp, s.now())
		entry = st.History[len(st.History)-1]
	})
	s.publisher.SearchCompleted(r.Context(), entry, resp)

	log.WithFields(log.Fields{
		"mode":   p.Mode,
		"videos": len(resp.Videos),
		"audios": len(resp.Audios),
	}).Info("search completed")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) payloadFromForm(r *http.Request) (search.Payload, error) {
	if err := r.ParseForm(); err != nil {
		return search.Payload{}, errors.New("invalid form")
	}

	mode, err := search.ParseMode(r.PostForm.Get("mode"))
	if err != nil {
		return search.Payload{}, errors.New("unsupported search mode")
	}

	p := search.Payload{Mode: mode}
	switch mode {
	case search.ModeManual:
		p.Keywords = strings.TrimSpace(r.PostForm.Get("keywords"))
		p.Preacher = strings.TrimSpace(r.PostForm.Get("preacher"))
		if len(p.Keywords) > maxFieldLen || len(p.Preacher) > maxFieldLen {
			return search.Payload{}, errors.New("search field is too long")
		}
		if s.opts.DateFilterEnabled {
			if p.StartDate, err = search.ParseDate(r.PostForm.Get("start_date")); err != nil {
				return search.Payload{}, errors.New("invalid start date")
			}
			if p.EndDate, err = search.ParseDate(r.PostForm.Get("end_date")); err != nil {
				return search.Payload{}, errors.New("invalid end date")
			}
			if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
				return search.Payload{}, errors.New("end date is before start date")
			}
		}
	case search.ModePrompt:
		p.Prompt = strings.TrimSpace(r.PostForm.Get("prompt"))
		if len(p.Prompt) > maxPromptLen {
			return search.Payload{}, errors.New("prompt is too long")
		}
	}
	return p, nil
}

package frontend

import (
	"net/http"
	"strings"
	"time"

	"spiritlife-frontend/internal/audio"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait = 10 * time.Second
	// without a Content-Length, report every this many bytes
	unknownStep = 256 << 10
)

var upgrader = websocket.Upgrader{}

type progressMessage struct {
	Type       string  `json:"type"`
	Downloaded int64   `json:"downloaded,omitempty"`
	Total      int64   `json:"total,omitempty"`
	Fraction   float64 `json:"fraction,omitempty"`
	Src        string  `json:"src,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// handleProgress fetches one audio item over a websocket, streaming
// download progress so the page can show a progress bar before playback.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	a, ok := s.audioItem(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("progress ws upgrade")
		return
	}
	defer conn.Close()

	send := func(m progressMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(m)
	}

	lastPercent := -1
	var lastReported int64
	var sendErr error
	_, err = s.fetcher.FetchWithProgress(r.Context(), a.URL, func(p audio.Progress) {
		if sendErr != nil {
			return
		}
		if p.Known() {
			pct := int(p.Fraction * 100)
			if pct == lastPercent {
				return
			}
			lastPercent = pct
		} else if p.Downloaded-lastReported < unknownStep {
			return
		}
		lastReported = p.Downloaded
		sendErr = send(progressMessage{
			Type:       "progress",
			Downloaded: p.Downloaded,
			Total:      p.Total,
			Fraction:   p.Fraction,
		})
	})

	if err != nil {
		s.metrics.recordAudioError("progress")
		log.WithError(err).WithField("title", a.MessageTitle).Warn("audio unavailable")
		_ = send(progressMessage{Type: "error", Message: "Audio unavailable"})
	} else {
		_ = send(progressMessage{Type: "done", Src: strings.TrimSuffix(r.URL.Path, "/progress")})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

package frontend

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"spiritlife-frontend/internal/audio"
	"spiritlife-frontend/internal/search"
	"spiritlife-frontend/internal/session"

	log "github.com/sirupsen/logrus"
)

const youtubeEmbedBase = "https://www.youtube.com/embed/"

type VideoSection struct {
	Index     int
	Title     string
	URL       string
	EmbedURL  string
	IsYouTube bool
}

type AudioSection struct {
	Index        int
	Title        string
	Preacher     string
	SectionTitle string
	Filename     string
	PlayURL      string
	DownloadURL  string
	ProgressURL  string
	Prefetched   bool
	Unavailable  bool
}

type HistoryItem struct {
	Number  int
	Mode    string
	Summary string
}

// View is the data behind one rendered page.
type View struct {
	PageTitle  string
	Modes      []string
	DateFilter bool
	History    []HistoryItem
	Videos     []VideoSection
	Audios     []AudioSection
	Error      string
}

// BuildView runs the render pass over a session snapshot. With prefetch
// enabled every audio body is fetched here; a failure only marks its own
// section unavailable.
func BuildView(ctx context.Context, st *session.State, fetcher AudioFetcher, opts Options) View {
	v := View{
		PageTitle:  opts.PageTitle,
		DateFilter: opts.DateFilterEnabled,
		History:    []HistoryItem{},
		Videos:     make([]VideoSection, 0, len(st.LastResponse.Videos)),
		Audios:     make([]AudioSection, 0, len(st.LastResponse.Audios)),
	}
	for _, m := range search.Modes() {
		v.Modes = append(v.Modes, string(m))
	}

	for i, h := range st.HistoryNewestFirst() {
		v.History = append(v.History, HistoryItem{
			Number:  i + 1,
			Mode:    string(h.Mode),
			Summary: h.Summary,
		})
	}

	for i, vid := range st.LastResponse.Videos {
		embed, isYT := embedURL(vid.URL)
		v.Videos = append(v.Videos, VideoSection{
			Index:     i,
			Title:     vid.Title,
			URL:       vid.URL,
			EmbedURL:  embed,
			IsYouTube: isYT,
		})
	}

	for i, a := range st.LastResponse.Audios {
		v.Audios = append(v.Audios, audioSection(ctx, st.Generation, i, a, fetcher, opts.AudioPrefetch))
	}
	return v
}

func audioSection(ctx context.Context, gen, i int, a search.AudioResult, fetcher AudioFetcher, prefetch bool) AudioSection {
	base := "/audio/" + strconv.Itoa(gen) + "/" + strconv.Itoa(i)
	sec := AudioSection{
		Index:        i,
		Title:        a.MessageTitle,
		Preacher:     a.Preacher,
		SectionTitle: audio.SectionTitle(a.MessageTitle, a.Preacher),
		Filename:     audio.DownloadFilename(a.MessageTitle),
		PlayURL:      base,
		DownloadURL:  base + "/download",
		ProgressURL:  base + "/progress",
	}
	if strings.TrimSpace(a.URL) == "" {
		sec.Unavailable = true
		return sec
	}
	if !prefetch || fetcher == nil {
		return sec
	}
	if _, err := fetcher.Fetch(ctx, a.URL); err != nil {
		log.WithError(err).WithField("title", a.MessageTitle).Warn("audio unavailable")
		sec.Unavailable = true
		return sec
	}
	sec.Prefetched = true
	return sec
}

// embedURL maps YouTube watch, short and share links to the embeddable
// player URL. Anything else is returned unchanged.
func embedURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw, false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = strings.TrimPrefix(u.Path, "/embed/")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		case strings.HasPrefix(u.Path, "/live/"):
			id = strings.TrimPrefix(u.Path, "/live/")
		}
	default:
		return raw, false
	}

	id = strings.Trim(id, "/")
	if id == "" || strings.Contains(id, "/") {
		return raw, false
	}
	return youtubeEmbedBase + url.PathEscape(id), true
}

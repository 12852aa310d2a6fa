package search

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	untitledVideo = "Untitled Video"
	untitledAudio = "Untitled Audio"
)

var ErrNotJSON = errors.New("search: response is not a JSON object")

// decodeResponse reads the backend body leniently. Older backends name the
// audio title "title" instead of "message_title"; both are accepted.
func decodeResponse(body []byte) (SearchResponse, error) {
	if !gjson.ValidBytes(body) {
		return SearchResponse{}, ErrNotJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return SearchResponse{}, ErrNotJSON
	}

	out := EmptyResponse()

	if videos := root.Get("videos"); videos.IsArray() {
		for _, v := range videos.Array() {
			out.Videos = append(out.Videos, VideoResult{
				Title: firstNonEmpty(v.Get("title").String(), untitledVideo),
				URL:   strings.TrimSpace(v.Get("url").String()),
			})
		}
	}

	if audios := root.Get("audios"); audios.IsArray() {
		for _, a := range audios.Array() {
			out.Audios = append(out.Audios, AudioResult{
				MessageTitle: firstNonEmpty(a.Get("message_title").String(), a.Get("title").String(), untitledAudio),
				Preacher:     strings.TrimSpace(a.Get("preacher").String()),
				URL:          strings.TrimSpace(a.Get("url").String()),
			})
		}
	}

	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

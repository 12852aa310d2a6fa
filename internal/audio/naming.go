package audio

import "strings"

const (
	untitledAudio = "Untitled Audio"
	fileExt       = ".mp3"
	MimeType      = "audio/mpeg"
)

// DownloadFilename turns a message title into the saved file name:
// spaces become underscores and the mp3 extension is appended.
func DownloadFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = untitledAudio
	}
	return strings.ReplaceAll(title, " ", "_") + fileExt
}

// SectionTitle is the label of an audio section.
func SectionTitle(title, preacher string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = untitledAudio
	}
	if p := strings.TrimSpace(preacher); p != "" {
		return title + " — " + p
	}
	return title
}

package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTimeout = 30 * time.Second
	chunkSize      = 8192

	// preallocation ceiling for bodies announcing a Content-Length
	maxPrealloc = 64 << 20
)

var ErrNoURL = errors.New("audio: item has no url")

// StatusError is returned for non-2xx audio responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("audio: %s returned status %d", e.URL, e.StatusCode)
}

// Progress describes a streaming download. Fraction is -1 when the server
// did not announce a Content-Length.
type Progress struct {
	Downloaded int64   `json:"downloaded"`
	Total      int64   `json:"total"`
	Fraction   float64 `json:"fraction"`
}

func (p Progress) Known() bool {
	return p.Total > 0
}

type ProgressFunc func(Progress)

// Fetcher downloads audio bodies and memoizes them per URL.
type Fetcher struct {
	http  *http.Client
	cache *Cache
	group singleflight.Group

	mu        sync.Mutex
	listeners map[string]map[*listener]struct{}
}

// listener is one caller waiting on progress of a shared download.
type listener struct {
	mu   sync.Mutex
	fn   ProgressFunc
	done bool
}

func NewFetcher(timeout time.Duration, cache *Cache) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cache == nil {
		cache = NewCache(0)
	}
	return &Fetcher{
		http: &http.Client{
			Timeout: timeout,
		},
		cache:     cache,
		listeners: make(map[string]map[*listener]struct{}),
	}
}

func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// Fetch returns the body at url, served from the cache after the first
// successful GET. Concurrent callers for one URL share a single request.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrNoURL
	}
	if b, ok := f.cache.Get(url); ok {
		return b, nil
	}
	return f.shared(ctx, url)
}

// FetchWithProgress behaves like Fetch but reports progress while the body
// streams in. A caller joining a download already in flight sees progress
// from that point on.
func (f *Fetcher) FetchWithProgress(ctx context.Context, url string, fn ProgressFunc) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrNoURL
	}
	if fn == nil {
		fn = func(Progress) {}
	}
	if b, ok := f.cache.Get(url); ok {
		n := int64(len(b))
		fn(Progress{Downloaded: n, Total: n, Fraction: 1})
		return b, nil
	}

	var last Progress
	stop := f.listen(url, func(p Progress) {
		last = p
		fn(p)
	})
	b, err := f.shared(ctx, url)
	stop()
	if err != nil {
		return nil, err
	}
	if n := int64(len(b)); last.Downloaded != n {
		fn(Progress{Downloaded: n, Total: n, Fraction: 1})
	}
	return b, nil
}

// shared runs one download per URL, detached from any single caller and
// bounded by the client timeout. Each caller stops waiting when its own
// ctx is done.
func (f *Fetcher) shared(ctx context.Context, url string) ([]byte, error) {
	ch := f.group.DoChan(url, func() (any, error) {
		if b, ok := f.cache.peek(url); ok {
			return b, nil
		}
		b, err := f.download(context.WithoutCancel(ctx), url, func(p Progress) {
			f.notify(url, p)
		})
		if err != nil {
			return nil, err
		}
		f.store(url, b)
		return b, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.WithField("url", url).Debug("audio fetch shared with in-flight request")
		}
		return res.Val.([]byte), nil
	}
}

// listen registers fn for progress on url. The returned func unregisters
// it and waits for any report already being delivered to fn.
func (f *Fetcher) listen(url string, fn ProgressFunc) func() {
	l := &listener{fn: fn}
	f.mu.Lock()
	set, ok := f.listeners[url]
	if !ok {
		set = make(map[*listener]struct{})
		f.listeners[url] = set
	}
	set[l] = struct{}{}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(set, l)
		if len(f.listeners[url]) == 0 {
			delete(f.listeners, url)
		}
		f.mu.Unlock()

		l.mu.Lock()
		l.done = true
		l.mu.Unlock()
	}
}

func (f *Fetcher) notify(url string, p Progress) {
	f.mu.Lock()
	ls := make([]*listener, 0, len(f.listeners[url]))
	for l := range f.listeners[url] {
		ls = append(ls, l)
	}
	f.mu.Unlock()

	for _, l := range ls {
		l.mu.Lock()
		if !l.done {
			l.fn(p)
		}
		l.mu.Unlock()
	}
}

func (f *Fetcher) store(url string, b []byte) {
	if !f.cache.Add(url, b) {
		log.WithFields(log.Fields{
			"url":   url,
			"bytes": len(b),
		}).Warn("audio body larger than cache, not cached")
	}
}

func (f *Fetcher) download(ctx context.Context, url string, fn ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: build request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	if total > 0 && total <= maxPrealloc {
		buf.Grow(int(total))
	}

	chunk := make([]byte, chunkSize)
	var downloaded int64
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			downloaded += int64(n)
			fn(progressOf(downloaded, total))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("audio: read %s: %w", url, rerr)
		}
	}
	return buf.Bytes(), nil
}

func progressOf(downloaded, total int64) Progress {
	p := Progress{Downloaded: downloaded, Total: total, Fraction: -1}
	if total > 0 {
		p.Fraction = float64(downloaded) / float64(total)
		if p.Fraction > 1 {
			p.Fraction = 1
		}
	} else {
		p.Total = 0
	}
	return p
}

// Package audio plays pad samples through the system speaker.
package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"go-soundboard/debug"
)

// DecodeFunc turns an encoded sample into a stream
type DecodeFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// resampleQuality is passed to beep.Resample (1 = fast, 6 = best)
const resampleQuality = 4

// Loader fetches, decodes and caches samples at the output format
type Loader struct {
	format  beep.Format
	client  *http.Client
	cache   *cache.Cache
	group   singleflight.Group
	decoder map[string]DecodeFunc // by lowercase extension, "" = fallback
}

// NewLoader creates a loader that resamples everything to format
func NewLoader(format beep.Format, fetchTimeout, ttl time.Duration) *Loader {
	return &Loader{
		format: format,
		client: &http.Client{Timeout: fetchTimeout},
		cache:  cache.New(ttl, 2*ttl),
		decoder: map[string]DecodeFunc{
			".wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
				return wav.Decode(rc)
			},
			"": mp3.Decode,
		},
	}
}

// Format is the output format every buffer is converted to
func (l *Loader) Format() beep.Format {
	return l.format
}

// Cached returns an already-loaded sample without blocking
func (l *Loader) Cached(src string) (*beep.Buffer, bool) {
	if v, ok := l.cache.Get(src); ok {
		return v.(*beep.Buffer), true
	}
	return nil, false
}

// Load returns the decoded sample for src (http(s) URL, file URL or path).
// Concurrent loads of the same source share one fetch.
func (l *Loader) Load(ctx context.Context, src string) (*beep.Buffer, error) {
	if buf, ok := l.Cached(src); ok {
		return buf, nil
	}

	v, err, _ := l.group.Do(src, func() (any, error) {
		if buf, ok := l.Cached(src); ok {
			return buf, nil
		}
		buf, err := l.fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		l.cache.Set(src, buf, cache.DefaultExpiration)
		return buf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*beep.Buffer), nil
}

func (l *Loader) fetch(ctx context.Context, src string) (*beep.Buffer, error) {
	start := time.Now()

	rc, ext, err := l.open(ctx, src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	decode, ok := l.decoder[ext]
	if !ok {
		decode = l.decoder[""]
	}
	stream, format, err := decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if format.SampleRate != l.format.SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, l.format.SampleRate, stream)
	}

	buf := beep.NewBuffer(l.format)
	buf.Append(s)
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}

	debug.Log("audio", "loaded %s (%d samples, %s)", src, buf.Len(), time.Since(start).Round(time.Millisecond))
	return buf, nil
}

// open returns the raw sample bytes and the source's file extension
func (l *Loader) open(ctx context.Context, src string) (io.ReadCloser, string, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || u.Scheme == "file" || len(u.Scheme) == 1 {
		// plain path (a one-letter scheme is a Windows drive)
		p := src
		if err == nil && u.Scheme == "file" {
			p = u.Path
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", src, err)
		}
		return f, strings.ToLower(path.Ext(p)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", src, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", src, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetch %s: status %s", src, resp.Status)
	}
	return resp.Body, strings.ToLower(path.Ext(u.Path)), nil
}

package audio

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/require"
)

var outFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

// tone streams n frames of a constant level
type tone struct {
	n     int
	level float64
}

func (t *tone) Stream(samples [][2]float64) (int, bool) {
	if t.n <= 0 {
		return 0, false
	}
	n := min(len(samples), t.n)
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{t.level, t.level}
	}
	t.n -= n
	return n, true
}

func (t *tone) Err() error { return nil }

func writeWAV(t *testing.T, dir, name string, rate beep.SampleRate, frames int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, &tone{n: frames, level: 0.5}, format))
	return path
}

func newTestLoader() *Loader {
	return NewLoader(outFormat, time.Second, time.Minute)
}

func TestLoader_LocalWAV(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "clap.wav", 44100, 1000)
	l := newTestLoader()

	buf, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 1000, buf.Len())

	cached, ok := l.Cached(path)
	require.True(t, ok)
	require.Same(t, buf, cached)
}

func TestLoader_FileURL(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "kick.wav", 44100, 10)

	buf, err := newTestLoader().Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	require.Equal(t, 10, buf.Len())
}

func TestLoader_Resamples(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "low.wav", 22050, 2205)

	buf, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.InDelta(t, 4410, buf.Len(), 20)
}

func TestLoader_HTTPCachesAndDedupes(t *testing.T) {
	data, err := os.ReadFile(writeWAV(t, t.TempDir(), "hat.wav", 44100, 500))
	require.NoError(t, err)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(20 * time.Millisecond)
		w.Write(data)
	}))
	defer srv.Close()

	l := newTestLoader()
	src := srv.URL + "/drums/hat.wav"

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Load(context.Background(), src)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	_, err = l.Load(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestLoader_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := newTestLoader().Load(context.Background(), srv.URL+"/missing.mp3")
	require.ErrorContains(t, err, "404")
}

func TestLoader_DecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0644))

	l := newTestLoader()
	_, err := l.Load(context.Background(), path)
	require.ErrorContains(t, err, "decode")

	_, ok := l.Cached(path)
	require.False(t, ok, "failures are not cached")
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := newTestLoader().Load(context.Background(), filepath.Join(t.TempDir(), "gone.wav"))
	require.ErrorContains(t, err, "open")
}

func TestGainToVolume(t *testing.T) {
	tests := []struct {
		gain   float64
		volume float64
		silent bool
	}{
		{gain: 0, silent: true},
		{gain: -1, silent: true},
		{gain: math.NaN(), silent: true},
		{gain: 1, volume: 0},
		{gain: 0.5, volume: -1},
		{gain: 0.25, volume: -2},
		{gain: 3, volume: 0},
	}

	for _, tt := range tests {
		volume, silent := gainToVolume(tt.gain)
		require.Equal(t, tt.silent, silent, "gain %v", tt.gain)
		if !silent {
			require.InDelta(t, tt.volume, volume, 1e-9, "gain %v", tt.gain)
		}
	}
}

func loadedVoice(t *testing.T, frames int) (*Engine, *Voice) {
	t.Helper()
	path := writeWAV(t, t.TempDir(), "pad.wav", 44100, frames)
	l := newTestLoader()
	_, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	e := NewEngine(l)
	v := e.Handles()[0].(*Voice)
	v.SetSource(path)
	require.True(t, v.Ready())
	return e, v
}

func pull(e *Engine, n int) [][2]float64 {
	samples := make([][2]float64, n)
	e.Output().Stream(samples)
	return samples
}

func TestVoice_PlayMixesAtGain(t *testing.T) {
	e, v := loadedVoice(t, 100)

	v.SetVolume(0.5)
	v.SeekStart()
	v.Play()
	require.Equal(t, 1, e.Active())

	out := pull(e, 10)
	require.InDelta(t, 0.25, out[0][0], 0.01)
}

func TestVoice_SilentAtZeroVolume(t *testing.T) {
	e, v := loadedVoice(t, 100)

	v.SetVolume(0)
	v.Play()

	out := pull(e, 10)
	require.Zero(t, out[5][0])
}

func TestVoice_RetriggerReplacesInstance(t *testing.T) {
	e, v := loadedVoice(t, 100)

	v.Play()
	pull(e, 60)
	v.SeekStart()
	v.Play()

	// old instance is dropped on the next pull, new one plays from 0
	out := pull(e, 80)
	require.InDelta(t, 0.5, out[79][0], 0.01)
	require.Equal(t, 1, e.Active())
}

func TestVoice_DrainsToSilence(t *testing.T) {
	e, v := loadedVoice(t, 10)

	v.Play()
	out := pull(e, 20)
	require.InDelta(t, 0.5, out[0][0], 0.01)
	require.Zero(t, out[15][0])

	pull(e, 1)
	require.Zero(t, e.Active())
}

func TestVoice_PlayWithoutSampleIsNoop(t *testing.T) {
	e := NewEngine(newTestLoader())
	v := e.Handles()[4].(*Voice)

	v.SeekStart()
	v.Play()

	require.False(t, v.Ready())
	require.Zero(t, e.Active())
}

func TestVoice_SetSourceLoadsInBackground(t *testing.T) {
	path := writeWAV(t, t.TempDir(), "late.wav", 44100, 50)
	e := NewEngine(newTestLoader())
	v := e.Handles()[1].(*Voice)

	v.SetSource(path)

	require.Eventually(t, v.Ready, time.Second, 5*time.Millisecond)
}

func TestEngine_Prefetch(t *testing.T) {
	dir := t.TempDir()
	a := writeWAV(t, dir, "a.wav", 44100, 5)
	b := writeWAV(t, dir, "b.wav", 44100, 5)
	l := newTestLoader()
	e := NewEngine(l)

	err := e.Prefetch(context.Background(), []string{a, b, filepath.Join(dir, "missing.wav")})
	require.Error(t, err)

	_, ok := l.Cached(a)
	require.True(t, ok)
	_, ok = l.Cached(b)
	require.True(t, ok)
}

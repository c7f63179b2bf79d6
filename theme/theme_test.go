package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-soundboard/board"
)

func TestBuiltin_DefaultPalette(t *testing.T) {
	p, err := Builtin(DefaultPalette)
	require.NoError(t, err)
	require.Equal(t, "violet", p.Name)
	require.Len(t, p.Colors, 11)
}

func TestBuiltin_Unknown(t *testing.T) {
	_, err := Builtin("nope")
	require.Error(t, err)
}

func TestParseGPL(t *testing.T) {
	src := `GIMP Palette
Name: tiny
Columns: 2
# comment
  0   0   0	black
255 300  10	clamped
not a color line
`
	p, err := ParseGPL(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, "tiny", p.Name)
	require.Equal(t, []RGB{{0, 0, 0}, {255, 255, 10}}, p.Colors)
}

func TestParseGPL_Empty(t *testing.T) {
	_, err := ParseGPL(strings.NewReader("GIMP Palette\nName: empty\n"))
	require.Error(t, err)
}

func TestLoadGPL_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.gpl")
	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\n0 0 0\n200 100 50\n"), 0644))

	p, err := LoadGPL(path)
	require.NoError(t, err)
	require.Len(t, p.Colors, 2)

	_, err = LoadGPL(filepath.Join(t.TempDir(), "missing.gpl"))
	require.Error(t, err)
}

func TestLookup_Interpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}

	require.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	require.Equal(t, RGB{200, 100, 50}, p.Lookup(2))
	require.Equal(t, RGB{100, 50, 25}, p.Lookup(0.5))
}

func TestPadRGB_DistinctPerHighlight(t *testing.T) {
	th := New(MustBuiltin(DefaultPalette))

	none := th.PadRGB(board.HighlightNone)
	on := th.PadRGB(board.HighlightPowered)
	off := th.PadRGB(board.HighlightUnpowered)

	require.NotEqual(t, none, on)
	require.NotEqual(t, none, off)
	require.NotEqual(t, on, off)
}

func TestSetPalette(t *testing.T) {
	th := New(&Palette{Colors: []RGB{{1, 2, 3}}})
	require.Equal(t, RGB{1, 2, 3}, th.RGB(0.5))

	th.SetPalette(&Palette{Colors: []RGB{{9, 9, 9}}})
	require.Equal(t, RGB{9, 9, 9}, th.RGB(0.5))
}

package source_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scankit/pkg/scanner"
	"github.com/dmitrymomot/scankit/pkg/source"
)

func TestRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		opts  []source.Option
		want  string
	}{
		{name: "utf-8 passthrough", input: []byte("héllo"), want: "héllo"},
		{name: "explicit utf-8", input: []byte("héllo"), opts: []source.Option{source.WithCharset("UTF-8")}, want: "héllo"},
		{name: "windows-1252", input: []byte("caf\xe9 \x80"), opts: []source.Option{source.WithCharset("windows-1252")}, want: "café €"},
		{name: "latin-1", input: []byte("\xfcber"), opts: []source.Option{source.WithCharset("ISO-8859-1")}, want: "über"},
		{name: "shift_jis", input: []byte("\x82\xa0\x82\xa2"), opts: []source.Option{source.WithCharset("Shift_JIS")}, want: "あい"},
		{name: "nfc", input: []byte("e\u0301te\u0301"), opts: []source.Option{source.WithNormalize()}, want: "\u00e9t\u00e9"},
		{
			name:  "decode then normalize",
			input: []byte("\xe9"),
			opts:  []source.Option{source.WithCharset("ISO-8859-1"), source.WithNormalize()},
			want:  "\u00e9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf, err := source.Read(bytes.NewReader(tt.input), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.Rest())
			assert.Equal(t, 0, buf.Pos())
		})
	}
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	_, err := source.ReadString("x", source.WithCharset("no-such-charset"))
	assert.ErrorIs(t, err, source.ErrUnknownCharset)

	_, err = source.ReadString(strings.Repeat("a", 11), source.WithMaxSize(10))
	assert.ErrorIs(t, err, source.ErrInputTooLarge)

	buf, err := source.ReadString(strings.Repeat("a", 10), source.WithMaxSize(10))
	require.NoError(t, err)
	assert.Equal(t, 10, buf.Len())

	boom := errors.New("disk on fire")
	_, err = source.Read(failingReader{boom})
	assert.ErrorIs(t, err, source.ErrFailedToRead)

	_, err = source.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, source.ErrFailedToRead)
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("na\xefve"), 0o644))

	buf, err := source.ReadFile(path, source.WithCharset("windows-1252"))
	require.NoError(t, err)
	assert.Equal(t, "naïve", buf.Rest())
}

// Normalized input lets a single character matcher accept text typed with
// combining marks.
func TestNormalizedScan(t *testing.T) {
	t.Parallel()

	table := scanner.MustNew(scanner.WithState("accented",
		scanner.On(scanner.Alternatives{scanner.Range{Lo: 'a', Hi: 'z'}, scanner.Char('\u00e9')}, "accented", scanner.Collect()),
	))

	buf, err := source.ReadString("cafe\u0301", source.WithNormalize())
	require.NoError(t, err)

	res, err := table.Run(context.Background(), buf, scanner.WithFallback(scanner.Accumulated))
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", res.Text())

	_, err = table.Scan(context.Background(), "cafe\u0301")
	assert.ErrorIs(t, err, scanner.ErrNoApplicableTransition)
}

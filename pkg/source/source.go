// Package source loads scan input into a scanner.Buffer, decoding legacy
// charsets to UTF-8 and optionally normalizing it.
//
//	buf, err := source.Read(r, source.WithCharset("windows-1252"), source.WithNormalize())
//	res, err := table.Run(ctx, buf)
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/dmitrymomot/scankit/pkg/scanner"
)

// DefaultMaxSize bounds the decoded input size unless WithMaxSize says
// otherwise.
const DefaultMaxSize = 64 << 20

var (
	ErrUnknownCharset = errors.New("unknown charset")
	ErrInputTooLarge  = errors.New("input exceeds size limit")
	ErrFailedToRead   = errors.New("failed to read input")
)

type options struct {
	charset   string
	normalize bool
	maxSize   int64
}

type Option func(*options)

// WithCharset decodes the input from the named IANA charset, for example
// "ISO-8859-1", "windows-1251" or "Shift_JIS". UTF-8 needs no option.
func WithCharset(name string) Option {
	return func(o *options) { o.charset = name }
}

// WithNormalize converts the decoded input to Unicode NFC, so composed and
// decomposed spellings of a character match the same character matcher.
func WithNormalize() Option {
	return func(o *options) { o.normalize = true }
}

// WithMaxSize limits the decoded input to n bytes. Zero or negative means
// DefaultMaxSize.
func WithMaxSize(n int64) Option {
	return func(o *options) { o.maxSize = n }
}

// Read decodes r into a buffer positioned at offset 0.
func Read(r io.Reader, opts ...Option) (*scanner.Buffer, error) {
	o := options{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxSize <= 0 {
		o.maxSize = DefaultMaxSize
	}

	var chain []transform.Transformer
	if o.charset != "" && !isUTF8(o.charset) {
		enc, err := lookup(o.charset)
		if err != nil {
			return nil, err
		}
		chain = append(chain, enc.NewDecoder())
	}
	if o.normalize {
		chain = append(chain, norm.NFC)
	}
	if len(chain) > 0 {
		r = transform.NewReader(r, transform.Chain(chain...))
	}

	data, err := io.ReadAll(io.LimitReader(r, o.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToRead, err)
	}
	if int64(len(data)) > o.maxSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrInputTooLarge, o.maxSize)
	}
	return scanner.NewBufferBytes(data), nil
}

// ReadString is Read over an in-memory string.
func ReadString(s string, opts ...Option) (*scanner.Buffer, error) {
	return Read(strings.NewReader(s), opts...)
}

// ReadFile reads the named file. The path "-" reads standard input.
func ReadFile(path string, opts ...Option) (*scanner.Buffer, error) {
	if path == "-" {
		return Read(os.Stdin, opts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToRead, err)
	}
	defer f.Close()
	return Read(f, opts...)
}

func isUTF8(name string) bool {
	return strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8")
}

func lookup(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharset, name)
	}
	// Known names without a Go implementation come back as nil.
	if enc == nil {
		return nil, fmt.Errorf("%w: %s is not supported", ErrUnknownCharset, name)
	}
	return enc, nil
}

// Package source loads merge inputs from stdin, local files and GitHub.
package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/objmerge/pkg/github"
	"github.com/smykla-skalski/objmerge/pkg/logger"
	"github.com/smykla-skalski/objmerge/pkg/value"
)

var (
	// ErrNoFetcher indicates a GitHub reference while no fetcher is configured
	ErrNoFetcher = errors.New("GitHub references are not enabled")
	// ErrUnknownFormat indicates a format name other than json or yaml
	ErrUnknownFormat = errors.New("unknown input format")
)

// Stdin is the reference that reads from standard input.
const Stdin = "-"

// GitHubPrefix marks references fetched from GitHub.
const GitHubPrefix = "github:"

// Format is an input encoding.
type Format string

const (
	// FormatAuto tries JSON first and falls back to YAML.
	FormatAuto Format = ""
	// FormatJSON decodes JSON.
	FormatJSON Format = "json"
	// FormatYAML decodes YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. An empty name is FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatAuto, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
	}
}

// DetectFormat guesses the format from a file name extension.
func DetectFormat(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (value.Value, error) {
	switch format {
	case FormatJSON:
		return value.DecodeJSON(data)
	case FormatYAML:
		return value.DecodeYAML(data)
	case FormatAuto:
		v, jsonErr := value.DecodeJSON(data)
		if jsonErr == nil {
			return v, nil
		}

		v, yamlErr := value.DecodeYAML(data)
		if yamlErr != nil {
			return value.Value{}, errors.Wrap(yamlErr, "input is neither JSON nor YAML")
		}

		return v, nil
	default:
		return value.Value{}, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// Fetcher reads files from GitHub.
type Fetcher interface {
	FetchFile(ctx context.Context, ref github.FileRef) ([]byte, error)
}

// FetcherFactory builds a Fetcher on first use.
type FetcherFactory func(ctx context.Context) (Fetcher, error)

// Loader resolves input references. It is safe for concurrent use.
type Loader struct {
	stdin   io.Reader
	format  Format
	factory FetcherFactory
	log     *logger.Logger

	mu      sync.Mutex
	fetcher Fetcher
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithStdin replaces os.Stdin as the source of "-".
func WithStdin(r io.Reader) LoaderOption {
	return func(l *Loader) { l.stdin = r }
}

// WithFormat forces a format instead of detecting it.
func WithFormat(format Format) LoaderOption {
	return func(l *Loader) { l.format = format }
}

// WithFetcher enables GitHub references through f.
func WithFetcher(f Fetcher) LoaderOption {
	return func(l *Loader) { l.fetcher = f }
}

// WithFetcherFactory enables GitHub references, creating the fetcher the
// first time one is loaded so local runs never need credentials.
func WithFetcherFactory(factory FetcherFactory) LoaderOption {
	return func(l *Loader) { l.factory = factory }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// NewLoader returns a Loader reading stdin, local files and, when
// configured, GitHub.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		stdin: os.Stdin,
		log:   logger.Discard(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads and decodes one reference: "-" for stdin, "github:owner/repo/path[@ref]"
// or a local path.
func (l *Loader) Load(ctx context.Context, ref string) (value.Value, error) {
	data, name, err := l.read(ctx, ref)
	if err != nil {
		return value.Value{}, err
	}

	format := l.format
	if format == FormatAuto {
		format = DetectFormat(name)
	}

	l.log.Debug("decoding input", "ref", ref, "format", string(format), "bytes", len(data))

	v, err := Decode(data, format)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "decoding %s", ref)
	}

	return v, nil
}

// LoadAll loads every reference in order.
func (l *Loader) LoadAll(ctx context.Context, refs []string) ([]value.Value, error) {
	out := make([]value.Value, 0, len(refs))

	for _, ref := range refs {
		v, err := l.Load(ctx, ref)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, string, error) {
	switch {
	case ref == Stdin:
		data, err := io.ReadAll(l.stdin)
		if err != nil {
			return nil, "", errors.Wrap(err, "reading stdin")
		}

		return data, "", nil
	case strings.HasPrefix(ref, GitHubPrefix):
		fileRef, err := github.ParseFileRef(strings.TrimPrefix(ref, GitHubPrefix))
		if err != nil {
			return nil, "", err
		}

		fetcher, err := l.getFetcher(ctx)
		if err != nil {
			return nil, "", err
		}

		data, err := fetcher.FetchFile(ctx, fileRef)
		if err != nil {
			return nil, "", err
		}

		return data, fileRef.Path, nil
	default:
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, "", errors.Wrapf(err, "reading %s", ref)
		}

		return data, ref, nil
	}
}

func (l *Loader) getFetcher(ctx context.Context) (Fetcher, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fetcher != nil {
		return l.fetcher, nil
	}

	if l.factory == nil {
		return nil, errors.WithStack(ErrNoFetcher)
	}

	fetcher, err := l.factory(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "creating GitHub client")
	}

	l.fetcher = fetcher

	return fetcher, nil
}

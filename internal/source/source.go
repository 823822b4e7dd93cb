// Package source defines the capability set a tracker export format
// must provide and the registry the CLI resolves formats from. Adding a
// format means implementing Handler and registering it in the wiring;
// nothing else in the pipeline changes.
package source

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fitbridge/fitbridge/internal/extract"
	"github.com/fitbridge/fitbridge/internal/fieldpath"
	"github.com/fitbridge/fitbridge/internal/models"
	"github.com/fitbridge/fitbridge/internal/reader"
)

var (
	// ErrDuplicateFormat marks a registry built with two handlers
	// claiming the same format name. This is a wiring bug and fails
	// startup before any file is touched.
	ErrDuplicateFormat = errors.New("duplicate source format")

	// ErrUnknownFormat marks a lookup for a format no handler claims.
	ErrUnknownFormat = errors.New("unknown source format")
)

// Config is the extraction wiring for one format: where fields live in
// its records and how to interpret them.
type Config struct {
	// VitalsTimestamp and VitalsValue locate the instant and the
	// measurement in a raw vitals record, per kind.
	VitalsTimestamp map[models.Kind]fieldpath.Path
	VitalsValue     map[models.Kind]fieldpath.Path

	// TimestampLayout spells vitals timestamps; empty means ISO.
	// UseSeconds keeps second precision instead of truncating to
	// minutes.
	TimestampLayout string
	UseSeconds      bool

	// Sleep record admissibility and field locations.
	SleepRequired   []fieldpath.Path
	SleepTimestamp  fieldpath.Path
	SleepDateLayout string
	SleepStages     fieldpath.Path

	// Transforms derive the normalized sleep fields from an
	// admissible record.
	Transforms []extract.TransformPair

	// SleepReader, when set, replaces the file-type reader for sleep
	// files. Formats whose sleep files need assembly beyond plain row
	// decoding set this.
	SleepReader reader.Func
}

// Handler is everything the pipeline needs to know about one export
// format.
type Handler interface {
	// Name is the format identifier users pass to --format.
	Name() string

	// Resolve locates the format's base directory under the input
	// root, or reports that the root does not hold this format.
	Resolve(root string) (string, error)

	// Files globs the source files for each kind under the base
	// directory, sorted by name.
	Files(base string) (map[models.Kind][]string, error)

	// FileType reports how files of a kind are encoded.
	FileType(kind models.Kind) models.FileType

	// Timezone discovers the timezone timestamps should be rendered
	// in, from profile data or the environment.
	Timezone(base string) (*time.Location, error)

	// Config returns the format's extraction wiring.
	Config() Config
}

// Registry maps format names to handlers. It is built explicitly in
// the command wiring and passed down; there is no package-level
// instance.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a registry from the given handlers. A duplicate
// format name fails construction.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a handler, rejecting names already claimed.
func (r *Registry) Register(h Handler) error {
	name := h.Name()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateFormat, name)
	}
	r.handlers[name] = h
	return nil
}

// Lookup resolves a format name to its handler.
func (r *Registry) Lookup(name string) (Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownFormat, name, r.Names())
	}
	return h, nil
}

// Names lists registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

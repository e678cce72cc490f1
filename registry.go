package resarc

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/resarc/resarc/bsp"
	"github.com/resarc/resarc/internal/arctype"
	"github.com/resarc/resarc/lfd"
)

// Registry selects a codec for a candidate source and exposes a uniform
// open entry point regardless of concrete format.
//
// The codec list is explicit and ordered: more specific signatures come
// before generic ones, and the first match commits. There is no global
// mutable registry; construct one and pass it around.
type Registry struct {
	codecs []Codec
}

// NewRegistry creates a Registry trying codecs in the given order.
func NewRegistry(codecs ...Codec) *Registry {
	return &Registry{codecs: codecs}
}

// DefaultRegistry returns a Registry with all built-in codecs.
// LFD probes first: its literal magic is the strongest discriminator, and
// the BSP probe walks the whole slot table.
func DefaultRegistry() *Registry {
	return NewRegistry(lfd.New(), bsp.New())
}

// Detect returns the first codec whose signature matches src.
func (r *Registry) Detect(src ByteSource) (Codec, bool) {
	for _, codec := range r.codecs {
		if codec.Matches(src) {
			return codec, true
		}
	}
	return nil, false
}

// Open decodes src with the first matching codec and wraps the result in
// an Archive.
//
// A signature match is a strong commitment: if the matched codec's decode
// fails, the failure surfaces as that codec's FormatError rather than
// falling through to try other codecs. No match at all fails with
// ErrNoMatchingFormat.
func (r *Registry) Open(src ByteSource, opts ...OpenOption) (*Archive, error) {
	cfg := openConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	codec, ok := r.Detect(src)
	if !ok {
		return nil, ErrNoMatchingFormat
	}

	tree, err := codec.Decode(src, &arctype.DecodeOptions{
		Logger:   cfg.logger,
		Progress: cfg.progress,
	})
	if err != nil {
		return nil, err
	}

	a := newArchive(tree, codec, src, &cfg)
	if err := a.finishOpen(&cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenFile opens the container at path. The returned archive owns the file
// handle; Close releases it.
func (r *Registry) OpenFile(path string, opts ...OpenOption) (*Archive, error) {
	src, err := OpenSource(path)
	if err != nil {
		return nil, err
	}
	a, err := r.Open(src, opts...)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return a, nil
}

// OpenAll opens several containers concurrently. Decodes of independent
// containers share no state, so they are safe to run in parallel. The
// first failure cancels the rest and is returned; on success the archives
// are in path order.
func (r *Registry) OpenAll(ctx context.Context, paths []string, opts ...OpenOption) ([]*Archive, error) {
	archives := make([]*Archive, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := r.OpenFile(path, opts...)
			if err != nil {
				return err
			}
			archives[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, a := range archives {
			if a != nil {
				a.Close()
			}
		}
		return nil, err
	}
	return archives, nil
}

// Write dispatches to the archive's bound codec.
func (r *Registry) Write(a *Archive) ([]byte, error) {
	return a.Write()
}

// Open decodes src using the default registry.
func Open(src ByteSource, opts ...OpenOption) (*Archive, error) {
	return DefaultRegistry().Open(src, opts...)
}

// OpenFile opens the container at path using the default registry.
func OpenFile(path string, opts ...OpenOption) (*Archive, error) {
	return DefaultRegistry().OpenFile(path, opts...)
}

// finishOpen runs the post-decode passes: entry-type detection, payload
// residency policy, state reset. It ends by unmuting the archive, clearing
// the modified flag, and firing the one-shot opened event.
func (a *Archive) finishOpen(cfg *openConfig) error {
	total := a.Len()
	for i := 0; i < total; i++ {
		e := a.At(i)

		if cfg.typeFunc != nil || cfg.loadData {
			data, err := a.Read(e)
			if err != nil {
				return err
			}
			if cfg.typeFunc != nil {
				e.Type = cfg.typeFunc(e.Name, data)
			}
			if cfg.progress != nil {
				cfg.progress(ProgressEvent{
					Stage:        StageDetectingTypes,
					Name:         e.Name,
					EntriesDone:  i + 1,
					EntriesTotal: total,
				})
			}
		}

		if !cfg.loadData {
			if err := a.Unload(e); err != nil {
				return err
			}
		}
		e.ResetState()
	}

	a.mu.Lock()
	a.muted = false
	a.modified = false
	a.mu.Unlock()

	a.announce(EventOpened, "")
	return nil
}

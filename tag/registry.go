package tag

import (
	"iter"
	"log/slog"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ardnew/j2env/pkg"
)

type entry struct {
	Kind
	schema *jsonschema.Schema
}

// Registry is an ordered, concurrency-safe set of tag kinds.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	index   map[string]int
}

// NewRegistry returns a registry holding kinds in the given order.
func NewRegistry(kinds ...Kind) (*Registry, error) {
	r := &Registry{index: make(map[string]int)}

	for _, k := range kinds {
		if err := r.Register(k); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register appends k to the registry. The name must be unique, non-empty
// and free of colons, and the schema, if any, must compile.
func (r *Registry) Register(k Kind) error {
	err := pkg.ErrRegister.With(slog.String("tag", k.Name))

	switch {
	case k.Name == "" || strings.ContainsAny(k.Name, ": \t"):
		return err.Wrapf("invalid tag name %q", k.Name)
	case k.Parse == nil:
		return err.Wrapf("tag %q has no parser", k.Name)
	}

	e := &entry{Kind: k}

	if k.Schema != "" {
		s, cerr := CompileSchema(k.Name, k.Schema)
		if cerr != nil {
			return err.Wrap(cerr)
		}

		e.schema = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[k.Name]; ok {
		return err.Wrapf("tag %q already registered", k.Name)
	}

	r.index[k.Name] = len(r.entries)
	r.entries = append(r.entries, e)

	return nil
}

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[strings.TrimSuffix(name, ":")]
	if !ok {
		return nil, false
	}

	return r.entries[i], true
}

// Lookup returns the kind registered under name. A trailing colon on name
// is ignored.
func (r *Registry) Lookup(name string) (Kind, bool) {
	e, ok := r.lookup(name)
	if !ok {
		return Kind{}, false
	}

	return e.Kind, true
}

func (r *Registry) classify(value string) (*entry, bool) {
	if !strings.Contains(value, ":") {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if strings.HasPrefix(value, e.Prefix()) {
			return e, true
		}
	}

	return nil, false
}

// Classify returns the kind whose prefix starts value.
func (r *Registry) Classify(value string) (Kind, bool) {
	e, ok := r.classify(value)
	if !ok {
		return Kind{}, false
	}

	return e.Kind, true
}

// Kinds returns an iterator over the registered kinds in registration order.
func (r *Registry) Kinds() iter.Seq[Kind] {
	r.mu.RLock()
	snap := make([]Kind, len(r.entries))

	for i, e := range r.entries {
		snap[i] = e.Kind
	}
	r.mu.RUnlock()

	return func(yield func(Kind) bool) {
		for _, k := range snap {
			if !yield(k) {
				return
			}
		}
	}
}

// Names returns the registered tag names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}

	return names
}

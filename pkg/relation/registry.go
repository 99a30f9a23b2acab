package relation

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mesh-intelligence/entitykit/pkg/types"
)

type descriptorKey struct {
	source string
	target string
}

// Registry holds declared relation definitions per entity type and the
// descriptors composed from them.
type Registry struct {
	mu          sync.RWMutex
	relations   map[string]map[string]types.RelationDef
	descriptors map[descriptorKey]types.RelationDescriptor
	frozen      bool
	logger      *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration events.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		relations:   make(map[string]map[string]types.RelationDef),
		descriptors: make(map[descriptorKey]types.RelationDescriptor),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DeclareEntity records an entity type with no relations of its own, so it
// can be the target of descriptors and listed by Entities.
func (r *Registry) DeclareEntity(entity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return types.ErrRegistryFrozen
	}
	if entity == "" {
		return fmt.Errorf("%w: entity name must not be empty", types.ErrInvalidRelation)
	}
	if _, ok := r.relations[entity]; !ok {
		r.relations[entity] = make(map[string]types.RelationDef)
	}
	return nil
}

// Declare records the relation named name owned by entity. The definition
// must start at entity. Names are unique per entity.
func (r *Registry) Declare(entity, name string, def types.RelationDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return types.ErrRegistryFrozen
	}
	if name == "" {
		return fmt.Errorf("%w: relation on %s has no name", types.ErrInvalidRelation, entity)
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("declaring %s.%s: %w", entity, name, err)
	}
	if def.FromTable != entity {
		return fmt.Errorf("declaring %s.%s: starts at %s: %w", entity, name, def.FromTable, types.ErrRelationMismatch)
	}

	rels, ok := r.relations[entity]
	if !ok {
		rels = make(map[string]types.RelationDef)
		r.relations[entity] = rels
	}
	if _, dup := rels[name]; dup {
		return fmt.Errorf("declaring %s.%s: %w", entity, name, types.ErrDuplicateRelation)
	}
	rels[name] = def.Clone()

	r.logger.Debug("relation declared", "entity", entity, "relation", name, "def", def.String())
	return nil
}

// Definition returns the relation named name declared by entity.
func (r *Registry) Definition(entity, name string) (types.RelationDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, err := r.definitionLocked(entity, name)
	if err != nil {
		return types.RelationDef{}, err
	}
	return def.Clone(), nil
}

func (r *Registry) definitionLocked(entity, name string) (types.RelationDef, error) {
	rels, ok := r.relations[entity]
	if !ok {
		return types.RelationDef{}, fmt.Errorf("%s: %w", entity, types.ErrEntityUnknown)
	}
	def, ok := rels[name]
	if !ok {
		return types.RelationDef{}, fmt.Errorf("%s.%s: %w", entity, name, types.ErrRelationNotFound)
	}
	return def, nil
}

// ComposeDirect returns the descriptor for the single relation source
// declares towards target. The descriptor's Def is that declaration,
// unchanged.
func (r *Registry) ComposeDirect(source, target string) (types.RelationDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.composeDirectLocked(source, target)
}

func (r *Registry) composeDirectLocked(source, target string) (types.RelationDescriptor, error) {
	rels, ok := r.relations[source]
	if !ok {
		return types.RelationDescriptor{}, fmt.Errorf("%s: %w", source, types.ErrEntityUnknown)
	}

	var names []string
	for name, def := range rels {
		if def.ToTable == target {
			names = append(names, name)
		}
	}
	switch len(names) {
	case 0:
		return types.RelationDescriptor{}, fmt.Errorf("%s -> %s: %w", source, target, types.ErrRelationNotFound)
	case 1:
	default:
		slices.Sort(names)
		return types.RelationDescriptor{}, fmt.Errorf("%s -> %s via %v: %w", source, target, names, types.ErrAmbiguousRelation)
	}

	return types.RelationDescriptor{
		Source: source,
		Target: target,
		Def:    rels[names[0]].Clone(),
	}, nil
}

// ComposeNamed returns a direct descriptor for the relation named name on
// source. Use it when source declares several relations to the same target.
func (r *Registry) ComposeNamed(source, name string) (types.RelationDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, err := r.definitionLocked(source, name)
	if err != nil {
		return types.RelationDescriptor{}, err
	}
	return types.RelationDescriptor{
		Source: source,
		Target: def.ToTable,
		Def:    def.Clone(),
	}, nil
}

// ComposeViaJunction returns the descriptor for reaching target from the
// entity that junction's relation sourceName points back at. The junction
// must declare sourceName (junction -> source) and targetRelationName
// (junction -> target). Def is the junction's relation to target; Via is
// the reverse of its relation to source.
func (r *Registry) ComposeViaJunction(sourceName, junction, target, targetRelationName string) (types.RelationDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.composeViaLocked(sourceName, junction, target, targetRelationName)
}

func (r *Registry) composeViaLocked(sourceName, junction, target, targetRelationName string) (types.RelationDescriptor, error) {
	toTarget, err := r.definitionLocked(junction, targetRelationName)
	if err != nil {
		return types.RelationDescriptor{}, err
	}
	if toTarget.ToTable != target {
		return types.RelationDescriptor{}, fmt.Errorf("%s.%s points at %s, not %s: %w",
			junction, targetRelationName, toTarget.ToTable, target, types.ErrRelationMismatch)
	}

	toSource, err := r.definitionLocked(junction, sourceName)
	if err != nil {
		return types.RelationDescriptor{}, err
	}

	via := toSource.Reverse()
	return types.RelationDescriptor{
		Source:   toSource.ToTable,
		Target:   target,
		Junction: junction,
		Def:      toTarget.Clone(),
		Via:      &via,
	}, nil
}

// Register composes every spec and memoizes the result under its source
// and target. It stops at the first failure; descriptors composed before the
// failure stay registered.
func (r *Registry) Register(specs ...Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return types.ErrRegistryFrozen
	}

	for _, spec := range specs {
		desc, err := spec.compose(r)
		if err != nil {
			r.logger.Error("relation registration failed", "spec", spec.String(), "error", err)
			return fmt.Errorf("registering %s: %w", spec, err)
		}
		key := descriptorKey{source: desc.Source, target: desc.Target}
		if _, dup := r.descriptors[key]; dup {
			return fmt.Errorf("registering %s: %w", spec, types.ErrDuplicateRelation)
		}
		r.descriptors[key] = desc
		r.logger.Debug("relation registered", "descriptor", desc.String(), "direct", desc.IsDirect())
	}
	return nil
}

// MustRegister is Register that panics on failure. Call it during start-up.
func (r *Registry) MustRegister(specs ...Spec) {
	if err := r.Register(specs...); err != nil {
		panic(err)
	}
}

// Freeze ends registration. Later Declare and Register calls return
// ErrRegistryFrozen. Freeze is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.frozen {
		r.logger.Info("relation registry frozen", "entities", len(r.relations), "descriptors", len(r.descriptors))
	}
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup returns the registered descriptor from source to target.
func (r *Registry) Lookup(source, target string) (types.RelationDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[descriptorKey{source: source, target: target}]
	if !ok {
		return types.RelationDescriptor{}, fmt.Errorf("%s -> %s: %w", source, target, types.ErrRelationNotFound)
	}
	return desc.Clone(), nil
}

// Descriptors returns every registered descriptor ordered by source, then
// target.
func (r *Registry) Descriptors() []types.RelationDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.RelationDescriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d.Clone())
	}
	slices.SortFunc(out, func(a, b types.RelationDescriptor) int {
		return cmp.Or(cmp.Compare(a.Source, b.Source), cmp.Compare(a.Target, b.Target))
	})
	return out
}

// Entities returns the declared entity type names in sorted order.
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.relations))
	for name := range r.relations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

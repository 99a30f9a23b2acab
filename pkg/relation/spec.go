package relation

import (
	"fmt"

	"github.com/mesh-intelligence/entitykit/pkg/types"
)

// Spec names a descriptor to compose at registration time.
type Spec struct {
	source         string
	target         string
	relationName   string
	junction       string
	sourceName     string
	targetRelation string
}

// Direct asks for the single relation source declares towards target.
func Direct(source, target string) Spec {
	return Spec{source: source, target: target}
}

// Named asks for the relation named name on source.
func Named(source, name string) Spec {
	return Spec{source: source, relationName: name}
}

// Via asks for target reached through junction. sourceName is the
// junction's relation back to the source; targetRelation is its relation to
// target.
func Via(sourceName, junction, target, targetRelation string) Spec {
	return Spec{
		target:         target,
		junction:       junction,
		sourceName:     sourceName,
		targetRelation: targetRelation,
	}
}

func (s Spec) compose(r *Registry) (types.RelationDescriptor, error) {
	switch {
	case s.junction != "":
		return r.composeViaLocked(s.sourceName, s.junction, s.target, s.targetRelation)
	case s.relationName != "":
		def, err := r.definitionLocked(s.source, s.relationName)
		if err != nil {
			return types.RelationDescriptor{}, err
		}
		return types.RelationDescriptor{Source: s.source, Target: def.ToTable, Def: def.Clone()}, nil
	default:
		return r.composeDirectLocked(s.source, s.target)
	}
}

func (s Spec) String() string {
	switch {
	case s.junction != "":
		return fmt.Sprintf("%s.%s -> %s via %s.%s", s.junction, s.sourceName, s.target, s.junction, s.targetRelation)
	case s.relationName != "":
		return fmt.Sprintf("%s.%s", s.source, s.relationName)
	default:
		return fmt.Sprintf("%s -> %s", s.source, s.target)
	}
}

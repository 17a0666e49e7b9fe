package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/crypto/blake2s"

	"github.com/scenekit/vdiff/document"
	"github.com/scenekit/vdiff/policy"
)

// ErrBudgetExceeded indicates a snapshot build hit its resource budget.
// This is the engine's single fatal condition; callers surface it as the
// structured {"error","stage"} payload instead of a partial result.
var ErrBudgetExceeded = errors.New("snapshot resource budget exceeded")

// EntityState is one entity's serialized, hashed state inside a snapshot.
type EntityState struct {
	// Type is the entity's type tag.
	Type string `json:"type"`

	// Category is the name of the collection the entity came from; diff
	// output groups by it.
	Category string `json:"category"`

	// Props is the flat path→value map the walker produced.
	Props map[string]any `json:"props"`

	// Hash is the BLAKE2s content digest over Props (sorted keys).
	Hash string `json:"hash"`
}

// Name returns the entity's display name from its props, falling back to
// the canonical form for non-string name values.
func (s *EntityState) Name() string {
	if n, ok := s.Props["name"].(string); ok {
		return n
	}
	return canonicalString(s.Props["name"])
}

// Snapshot maps identity keys to entity states. Keys are unique within a
// snapshot; the builder disambiguates collisions deterministically.
type Snapshot map[string]*EntityState

// Budget caps a snapshot build. Zero fields mean unlimited.
type Budget struct {
	// MaxEntities caps the number of entities snapshotted.
	MaxEntities int

	// MaxProps caps the cumulative number of walked property paths.
	MaxProps int
}

// Builder assembles snapshots from documents. The zero value is not usable;
// construct with NewBuilder.
type Builder struct {
	pol          *policy.Policy
	idProp       string
	ignoreLinked bool
	budget       Budget
	logger       *slog.Logger
}

// NewBuilder returns a Builder using the given policy. A nil policy means
// the default policy; a nil logger means slog.Default(). Linked entities
// are ignored unless SetIgnoreLinked(false) is called.
func NewBuilder(pol *policy.Policy, logger *slog.Logger) *Builder {
	if pol == nil {
		pol = policy.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		pol:          pol,
		ignoreLinked: true,
		logger:       logger,
	}
}

// SetIDProp selects the custom tag property used for the strongest
// identity strategy. Empty disables it.
func (b *Builder) SetIDProp(name string) { b.idProp = name }

// SetIgnoreLinked controls whether externally linked entities are skipped.
func (b *Builder) SetIgnoreLinked(ignore bool) { b.ignoreLinked = ignore }

// SetBudget installs a resource budget for subsequent builds.
func (b *Builder) SetBudget(budget Budget) { b.budget = budget }

// Build snapshots every entity across the document's collections, except
// those the policy excludes. Entities without a usable name are skipped, as
// are externally linked ones when the builder ignores linked data.
//
// The only error Build returns wraps ErrBudgetExceeded; every per-entity
// problem degrades to marker values inside the affected entity's props.
func (b *Builder) Build(doc *document.Document) (Snapshot, error) {
	snap := make(Snapshot)
	entities := 0
	props := 0

	for _, coll := range doc.Collections {
		if b.pol.SkipCollection(coll.Name) {
			continue
		}
		for _, ent := range coll.Entities {
			if ent.Name == "" {
				continue
			}
			if b.ignoreLinked && ent.Linked {
				continue
			}

			entities++
			if b.budget.MaxEntities > 0 && entities > b.budget.MaxEntities {
				return nil, fmt.Errorf("%d entities: %w", entities, ErrBudgetExceeded)
			}

			state := b.HashEntity(ent)
			state.Category = coll.Name

			props += len(state.Props)
			if b.budget.MaxProps > 0 && props > b.budget.MaxProps {
				return nil, fmt.Errorf("%d props: %w", props, ErrBudgetExceeded)
			}

			key := Key(ent, state, b.idProp)
			if _, taken := snap[key]; taken {
				// Accidental clash; disambiguate with the raw name.
				key = key + ":" + ent.Name
				b.logger.Debug("identity key collision",
					"entity", ent.Name,
					"resolved_key", key)
			}
			snap[key] = state
		}
	}
	return snap, nil
}

// HashEntity walks one entity and computes its content hash. The walk
// result always contains a "name" prop; the entity's display name is
// injected when the schema did not provide one.
func (b *Builder) HashEntity(ent *document.Entity) *EntityState {
	props := Walk(ent, b.pol)
	if _, ok := props["name"]; !ok {
		props["name"] = ent.Name
	}
	return &EntityState{
		Type:  ent.Type,
		Props: props,
		Hash:  hashProps(props),
	}
}

// hashProps folds the props map through BLAKE2s, iterating keys in sorted
// order so the digest is independent of walk order.
func hashProps(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, err := blake2s.New256(nil)
	if err != nil {
		// Unkeyed BLAKE2s construction cannot fail.
		panic(err)
	}
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte(canonicalString(props[k])))
	}
	return hex.EncodeToString(h.Sum(nil))
}

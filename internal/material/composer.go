package material

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/ifcscene/internal/host"
	"github.com/Faultbox/ifcscene/pkg/ifcgeom"
)

// Composer builds one material per element from its styles, reusing the
// multi material of an earlier element with the same name sequence.
type Composer struct {
	reg   *Registry
	cache map[string]host.Material
	log   *zap.Logger
}

// NewComposer creates a composer with an empty cache.
func NewComposer(reg *Registry, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{
		reg:   reg,
		cache: make(map[string]host.Material),
		log:   log,
	}
}

// Compose returns the material for an element. Faces with the default
// index use a material named after elementType, which becomes sub-material
// 0 of the result. A single name yields a standard material, no names
// yield nil, and two or more yield a multi material cached under the
// exact name sequence.
func (c *Composer) Compose(styles []ifcgeom.Style, ids []ifcgeom.MaterialIndex, elementType string) host.Material {
	needsDefault := NeedsDefault(ids, len(styles))
	names := Names(styles, needsDefault, elementType)

	var def host.Material
	if needsDefault {
		def = c.reg.Default(elementType)
	}

	switch len(names) {
	case 0:
		return nil
	case 1:
		if needsDefault {
			return def
		}
		return c.reg.FindOrCreate(styles[0])
	}

	key := cacheKey(names)
	if m, ok := c.cache[key]; ok {
		return m
	}

	subs := make([]host.Material, 0, len(names))
	if needsDefault {
		subs = append(subs, def)
	}
	for _, s := range styles {
		subs = append(subs, c.reg.FindOrCreate(s))
	}

	m := c.reg.scene.NewMultiMaterial(subs)
	c.reg.created++
	c.reg.Place(m)
	c.cache[key] = m

	c.log.Debug("created multi material",
		zap.String("name", m.Name()),
		zap.Strings("subs", names))
	return m
}

// Composites returns the number of multi materials built so far.
func (c *Composer) Composites() int { return len(c.cache) }

// Registry returns the registry the composer creates materials with.
func (c *Composer) Registry() *Registry { return c.reg }

// Names returns the sub-material names of an element in sub-material
// order: the element type first when the default is needed, then every
// style in element order.
func Names(styles []ifcgeom.Style, needsDefault bool, elementType string) []string {
	names := make([]string, 0, len(styles)+1)
	if needsDefault {
		names = append(names, elementType)
	}
	for _, s := range styles {
		names = append(names, s.Name)
	}
	return names
}

// NeedsDefault reports whether any face uses the default material. An
// index past the style list counts as the default.
func NeedsDefault(ids []ifcgeom.MaterialIndex, styleCount int) bool {
	for _, id := range ids {
		if id.IsDefault() || !id.InRange(styleCount) {
			return true
		}
	}
	return false
}

// FaceMaterialIDs converts face indices to sub-material ids of the
// composed material. Style positions move up by one when the default
// material takes sub-material 0; default and out-of-range indices map to 0.
// bad is the number of out-of-range indices.
func FaceMaterialIDs(ids []ifcgeom.MaterialIndex, styleCount int) (out []int, bad int) {
	shift := 0
	if NeedsDefault(ids, styleCount) {
		shift = 1
	}

	out = make([]int, len(ids))
	for i, id := range ids {
		if !id.InRange(styleCount) {
			bad++
			continue
		}
		if pos, ok := id.Style(); ok {
			out[i] = pos + shift
		}
	}
	return out, bad
}

// cacheKey encodes an ordered name list. Each name is length-prefixed so
// that names containing the separator cannot collide.
func cacheKey(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(strconv.Itoa(len(n)))
		b.WriteByte(':')
		b.WriteString(n)
	}
	return b.String()
}

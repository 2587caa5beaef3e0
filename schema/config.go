package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/wirebind/wirebind/rename"
)

// DefaultMaxNestedDepth bounds descriptor recursion when Config.MaxNestedDepth
// is left at zero.
const DefaultMaxNestedDepth = 8

// Config is the transform policy applied while resolving a structure into
// field descriptors. The zero value is a usable default: identity renaming,
// no exclusions, underscore-prefixed names treated as private.
type Config struct {
	// RenameStrategy derives wire names from declared names. Nil means
	// identity. Applied recursively to nested structures.
	RenameStrategy rename.Strategy

	// RenameFields overrides the strategy for specific top-level fields,
	// keyed by declared name.
	RenameFields map[string]string

	// Exclude removes fields from both input binding and output
	// representation. Entries are dotted declared-name paths; a dotted entry
	// such as "address.zip_code" excludes only the nested field.
	Exclude []string

	// Include, when non-empty, restricts binding and output to the listed
	// dotted paths. Mutually exclusive with Exclude.
	Include []string

	// Partial makes every top-level field implicitly optional, for
	// patch-style payloads.
	Partial bool

	// IncludeUnderscoreFields disables the private-field convention, making
	// underscore-prefixed declared names behave as ordinary fields.
	IncludeUnderscoreFields bool

	// MaxNestedDepth bounds nested structure resolution. Zero means
	// DefaultMaxNestedDepth.
	MaxNestedDepth int
}

func (c *Config) maxDepth() int {
	if c.MaxNestedDepth > 0 {
		return c.MaxNestedDepth
	}
	return DefaultMaxNestedDepth
}

func (c *Config) strategy() rename.Strategy {
	if c.RenameStrategy != nil {
		return c.RenameStrategy
	}
	return rename.Identity
}

// fingerprint produces a deterministic cache-key component for the config.
// Strategies are distinguished by function identity.
func (c *Config) fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "s=%x", reflect.ValueOf(c.strategy()).Pointer())
	if len(c.RenameFields) > 0 {
		keys := make([]string, 0, len(c.RenameFields))
		for k := range c.RenameFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ";r=%s:%s", k, c.RenameFields[k])
		}
	}
	b.WriteString(";x=" + joinSorted(c.Exclude))
	b.WriteString(";i=" + joinSorted(c.Include))
	fmt.Fprintf(&b, ";p=%t;u=%t;d=%d", c.Partial, c.IncludeUnderscoreFields, c.maxDepth())
	return b.String()
}

func joinSorted(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	cp := make([]string, len(paths))
	copy(cp, paths)
	sort.Strings(cp)
	return strings.Join(cp, ",")
}

// pathTree indexes dotted field paths for nested exclusion/inclusion lookups.
type pathTree struct {
	children map[string]*pathTree
	leaf     bool
}

func newPathTree(paths []string) *pathTree {
	if len(paths) == 0 {
		return nil
	}
	root := &pathTree{children: make(map[string]*pathTree)}
	for _, p := range paths {
		node := root
		for seg := range strings.SplitSeq(p, ".") {
			if seg == "" {
				continue
			}
			child, ok := node.children[seg]
			if !ok {
				child = &pathTree{children: make(map[string]*pathTree)}
				node.children[seg] = child
			}
			node = child
		}
		node.leaf = true
	}
	return root
}

// lookup returns whether the name is a terminal match and the subtree for
// deeper paths, if any.
func (t *pathTree) lookup(name string) (terminal bool, sub *pathTree) {
	if t == nil {
		return false, nil
	}
	child, ok := t.children[name]
	if !ok {
		return false, nil
	}
	if len(child.children) == 0 {
		return child.leaf, nil
	}
	return child.leaf, child
}

// contains reports whether the name appears at this level, terminally or as
// a prefix of a deeper path.
func (t *pathTree) contains(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.children[name]
	return ok
}

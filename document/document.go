package document

import (
	"sort"
	"strconv"
)

// Version is the (major, minor) pair accepted from %VERSION. Only
// (1, 0) is currently valid.
type Version struct {
	Major, Minor uint32
}

func (v Version) String() string {
	return strconv.FormatUint(uint64(v.Major), 10) + "." + strconv.FormatUint(uint64(v.Minor), 10)
}

// Document is the fully resolved, immutable in-memory tree produced by
// parsing a HEDL document.
type Document struct {
	Version Version
	Aliases map[string]string
	Structs map[string][]string
	Nests   map[string]string // parent type -> child type
	Root    Object
}

// New returns an empty Document ready to be populated by the parser.
func New() *Document {
	return &Document{
		Aliases: make(map[string]string),
		Structs: make(map[string][]string),
		Nests:   make(map[string]string),
		Root:    make(Object),
	}
}

// Get returns the root-level item stored under key.
func (d *Document) Get(key string) (Item, bool) {
	it, ok := d.Root[key]
	return it, ok
}

// Schema returns the ordered column list for typeName, if declared.
func (d *Document) Schema(typeName string) ([]string, bool) {
	cols, ok := d.Structs[typeName]
	return cols, ok
}

// ChildType returns the NEST child type declared for parentType, if any.
func (d *Document) ChildType(parentType string) (string, bool) {
	c, ok := d.Nests[parentType]
	return c, ok
}

// ExpandAlias returns the literal string value an alias was declared
// to hold.
func (d *Document) ExpandAlias(name string) (string, bool) {
	v, ok := d.Aliases[name]
	return v, ok
}

// AliasKeys returns alias names in ASCII ascending order.
func (d *Document) AliasKeys() []string {
	keys := make([]string, 0, len(d.Aliases))
	for k := range d.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StructKeys returns struct type names in ASCII ascending order.
func (d *Document) StructKeys() []string {
	keys := make([]string, 0, len(d.Structs))
	for k := range d.Structs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NestKeys returns NEST parent type names in ASCII ascending order.
func (d *Document) NestKeys() []string {
	keys := make([]string, 0, len(d.Nests))
	for k := range d.Nests {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Walk invokes fn for every Node reachable from the document. Object
// keys (root included) are visited in ascending ASCII order, the rows
// of a matrix list in list order, and each row's NEST-grafted children
// right after that row, by ascending child key. Walk stops and returns
// fn's error if fn returns non-nil.
func (d *Document) Walk(fn func(n *Node) error) error {
	for _, key := range d.Root.SortedKeys() {
		if err := walkItem(d.Root[key], fn); err != nil {
			return err
		}
	}
	return nil
}

func walkItem(it Item, fn func(n *Node) error) error {
	switch it.Kind {
	case ItemObject:
		for _, key := range it.Object.SortedKeys() {
			if err := walkItem(it.Object[key], fn); err != nil {
				return err
			}
		}
	case ItemList:
		if it.List == nil {
			return nil
		}
		for _, n := range it.List.Rows {
			if err := walkNode(n, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkNode(n *Node, fn func(n *Node) error) error {
	if err := fn(n); err != nil {
		return err
	}
	if n.Children == nil {
		return nil
	}
	keys := make([]string, 0, len(n.Children))
	for k := range n.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, c := range n.Children[k] {
			if err := walkNode(c, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Package registry implements the workspace-wide Type Registry of spec
// §4.3: a deterministic two-phase (collect, then resolve) pass over
// every file's top-level `class`/`alias`/`enum` annotations, frozen
// read-only once construction completes (spec §3 invariant 2, §5
// "Shared resources").
package registry

import (
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/takeshiD/typua/internal/annot"
	"github.com/takeshiD/typua/internal/diagnostics"
	"github.com/takeshiD/typua/internal/pretty"
	"github.com/takeshiD/typua/internal/token"
	"github.com/takeshiD/typua/internal/types"
)

// FileID is a stable workspace-wide file identity (spec §6 "a workspace
// file list with stable FileId identities"). Callers that already have
// a stable id (e.g. a URI) should use NewFileID(existing); NewFileID("")
// with an empty argument mints one with google/uuid for callers (tests,
// ad-hoc scripts) that have no natural id of their own.
type FileID string

// NewFileID returns id unchanged if non-empty, otherwise mints a fresh
// random identity.
func NewFileID(id string) FileID {
	if id != "" {
		return FileID(id)
	}
	return FileID(uuid.NewString())
}

type classEntry struct {
	name       string
	parentName string
	sealed     bool
	fields     []types.Field
	declSpan   token.Span
	file       FileID
}

type aliasEntry struct {
	name     string
	raw      types.Type // as lowered, possibly containing Alias/Var references
	declSpan token.Span
	file     FileID
}

type enumEntry struct {
	name     string
	declSpan token.Span
	file     FileID
}

// Registry is the frozen, read-only workspace map from declared names
// to resolved schemes (spec §3 "TypeRegistry").
type Registry struct {
	classes map[string]*types.Class
	aliases map[string]types.Type
	enums   map[string]bool

	// duplicates and cycles, recorded during construction so the
	// checker can turn them into diagnostics at the right sites.
	Diagnostics []*diagnostics.DiagnosticError

	frozen bool
}

// Builder accumulates class/alias/enum declarations across files before
// a single Resolve() call freezes the result (spec §4.3 "Collect").
type Builder struct {
	classesByName map[string]classEntry
	aliasesByName map[string]aliasEntry
	enumsByName   map[string]enumEntry
	order         []string // first-seen declaration order, for deterministic diagnostics
	diags         []*diagnostics.DiagnosticError
}

// NewBuilder starts an empty collection pass.
func NewBuilder() *Builder {
	return &Builder{
		classesByName: map[string]classEntry{},
		aliasesByName: map[string]aliasEntry{},
		enumsByName:   map[string]enumEntry{},
	}
}

// CollectFile scans one file's top-level annotation blocks (as
// produced by annot.TopLevelBlocks) for class/alias/enum declarations.
// Field directives immediately following a @class directive within the
// same block attach to that class (spec §4.1 "Recognised directives").
func (b *Builder) CollectFile(file FileID, blocks []annot.Block) {
	for _, block := range blocks {
		var pendingClass *string
		var fields []types.Field
		var sealed bool
		var parent string
		flush := func() {
			if pendingClass == nil {
				return
			}
			b.addClass(*pendingClass, parent, sealed, fields, block.Span, file)
			pendingClass = nil
			fields = nil
			sealed = false
			parent = ""
		}
		for _, rec := range block.Records {
			switch rec.Kind {
			case annot.KindClass:
				flush()
				name := rec.Name
				pendingClass = &name
				sealed = rec.Exact
				parent = rec.Parent
			case annot.KindField:
				fields = append(fields, types.Field{Name: rec.Name, Type: rec.Type})
			case annot.KindAlias:
				flush()
				b.addAlias(rec.Name, rec.Type, block.Span, file)
			case annot.KindEnum:
				flush()
				b.addEnum(rec.Name, block.Span, file)
			}
		}
		flush()
	}
}

func (b *Builder) addClass(name, parent string, sealed bool, fields []types.Field, span token.Span, file FileID) {
	if _, exists := b.classesByName[name]; exists {
		b.diags = append(b.diags, diagnostics.New(diagnostics.DuplicateDecl, span, string(file),
			"duplicate class declaration: "+name))
		return // keep the first, per spec §4.3 "Collect"
	}
	b.classesByName[name] = classEntry{name: name, parentName: parent, sealed: sealed, fields: fields, declSpan: span, file: file}
	b.order = append(b.order, "class:"+name)
}

func (b *Builder) addAlias(name string, t types.Type, span token.Span, file FileID) {
	if _, exists := b.aliasesByName[name]; exists {
		b.diags = append(b.diags, diagnostics.New(diagnostics.DuplicateDecl, span, string(file),
			"duplicate alias declaration: "+name))
		return
	}
	b.aliasesByName[name] = aliasEntry{name: name, raw: t, declSpan: span, file: file}
	b.order = append(b.order, "alias:"+name)
}

func (b *Builder) addEnum(name string, span token.Span, file FileID) {
	if _, exists := b.enumsByName[name]; exists {
		b.diags = append(b.diags, diagnostics.New(diagnostics.DuplicateDecl, span, string(file),
			"duplicate enum declaration: "+name))
		return
	}
	b.enumsByName[name] = enumEntry{name: name, declSpan: span, file: file}
	b.order = append(b.order, "enum:"+name)
}

// Resolve walks aliases (detecting cycles) and class parent chains,
// producing a frozen Registry (spec §4.3 "Resolve").
func (b *Builder) Resolve() *Registry {
	r := &Registry{
		classes: map[string]*types.Class{},
		aliases: map[string]types.Type{},
		enums:   map[string]bool{},
	}
	for name := range b.enumsByName {
		r.enums[name] = true
	}

	state := map[string]int{} // 0=unvisited,1=in-progress,2=done
	var resolveAlias func(name string, path []string) types.Type
	resolveAlias = func(name string, path []string) types.Type {
		if t, ok := r.aliases[name]; ok && state[name] == 2 {
			return t
		}
		if state[name] == 1 {
			// Cycle: report once at every participating declaration,
			// i.e. the path from name's first occurrence onwards.
			start := 0
			for i, p := range path {
				if p == name {
					start = i
					break
				}
			}
			for _, p := range path[start:] {
				if e, ok := b.aliasesByName[p]; ok {
					b.diags = append(b.diags, diagnostics.New(diagnostics.CyclicAlias, e.declSpan, string(e.file),
						"cyclic alias: "+p))
				}
			}
			return types.Unknown
		}
		entry, ok := b.aliasesByName[name]
		if !ok {
			return types.Unknown
		}
		state[name] = 1
		resolved := substituteAliasRefs(entry.raw, b, &state, resolveAlias, append(path, name))
		state[name] = 2
		r.aliases[name] = resolved
		return resolved
	}

	names := make([]string, 0, len(b.aliasesByName))
	for n := range b.aliasesByName {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		resolveAlias(n, nil)
	}

	// Classes: resolve parent chains after aliases, in declaration-name
	// order for determinism.
	classNames := make([]string, 0, len(b.classesByName))
	for n := range b.classesByName {
		classNames = append(classNames, n)
	}
	sort.Strings(classNames)
	for _, n := range classNames {
		entry := b.classesByName[n]
		r.classes[n] = &types.Class{Name: n, Fields: fieldsToMap(entry.fields), Sealed: entry.sealed}
	}
	for _, n := range classNames {
		entry := b.classesByName[n]
		if entry.parentName == "" {
			continue
		}
		parent, ok := r.classes[entry.parentName]
		if !ok {
			b.diags = append(b.diags, diagnostics.New(diagnostics.UnknownName, entry.declSpan, string(entry.file),
				"unknown parent class: "+entry.parentName))
			continue
		}
		r.classes[n].Parent = parent
	}

	r.Diagnostics = b.diags
	r.frozen = true
	return r
}

func fieldsToMap(fields []types.Field) map[string]types.Type {
	m := make(map[string]types.Type, len(fields))
	for _, f := range fields {
		m[f.Name] = f.Type
	}
	return m
}

// substituteAliasRefs walks t, replacing any Alias node that names
// another alias with its (recursively resolved) body; Alias nodes
// naming an unknown name or a class are left for ResolveAlias's callers
// to handle at use-site (spec invariant 2: "unresolved ... at the
// reference site, never at the declaration").
func substituteAliasRefs(t types.Type, b *Builder, state *map[string]int, resolve func(string, []string) types.Type, path []string) types.Type {
	switch v := t.(type) {
	case types.Alias:
		if _, isAlias := b.aliasesByName[v.Name]; isAlias {
			return resolve(v.Name, path)
		}
		return v
	case types.Union:
		members := make([]types.Type, len(v.Members))
		for i, m := range v.Members {
			members[i] = substituteAliasRefs(m, b, state, resolve, path)
		}
		return types.Canon(types.Union{Members: members})
	case types.Array:
		return types.Array{Elem: substituteAliasRefs(v.Elem, b, state, resolve, path)}
	case types.Tuple:
		elems := make([]types.Type, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = substituteAliasRefs(e, b, state, resolve, path)
		}
		return types.Tuple{Elems: elems}
	case types.Map:
		return types.Map{Key: substituteAliasRefs(v.Key, b, state, resolve, path), Value: substituteAliasRefs(v.Value, b, state, resolve, path)}
	case types.Record:
		fields := make([]types.Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = types.Field{Name: f.Name, Type: substituteAliasRefs(f.Type, b, state, resolve, path)}
		}
		return types.Record{Fields: fields, Sealed: v.Sealed}
	case types.Function:
		params := make([]types.Param, len(v.Params))
		for i, p := range v.Params {
			params[i] = types.Param{Name: p.Name, Type: substituteAliasRefs(p.Type, b, state, resolve, path), Optional: p.Optional}
		}
		var vararg types.Type
		if v.Vararg != nil {
			vararg = substituteAliasRefs(v.Vararg, b, state, resolve, path)
		}
		returns := substituteAliasRefs(v.Returns, b, state, resolve, path).(types.Tuple)
		return types.Function{Params: params, Vararg: vararg, Returns: returns}
	default:
		return t
	}
}

// ResolveAlias implements types.Resolver: look up an already-resolved
// alias body, or a class name (surfaced as itself, since classes are
// nominal, not structural indirections).
func (r *Registry) ResolveAlias(name string) (types.Type, bool) {
	if t, ok := r.aliases[name]; ok {
		return t, true
	}
	if c, ok := r.classes[name]; ok {
		return c, true
	}
	return nil, false
}

// Class looks up a resolved class by name.
func (r *Registry) Class(name string) (*types.Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// IsEnum reports whether name was declared with @enum.
func (r *Registry) IsEnum(name string) bool { return r.enums[name] }

// Frozen reports whether this registry is safe for concurrent reads
// (spec §5 "the registry itself is read-only during the parallel
// phase").
func (r *Registry) Frozen() bool { return r.frozen }

// Snapshot is a workspace-wide dump of a resolved Registry's declared
// names, printed through internal/pretty so the dump is stable text
// rather than a serialization of the Type interface tree itself.
// Used by test fixtures; it is not reloaded into a live Registry
// (Resolve is the only constructor).
type Snapshot struct {
	Classes []string          `yaml:"classes"`
	Aliases map[string]string `yaml:"aliases"`
	Enums   []string          `yaml:"enums"`
}

// Snapshot renders r's resolved declarations into a serializable form.
func (r *Registry) Snapshot() Snapshot {
	s := Snapshot{Aliases: make(map[string]string, len(r.aliases))}
	for name := range r.classes {
		s.Classes = append(s.Classes, name)
	}
	sort.Strings(s.Classes)
	for name, t := range r.aliases {
		s.Aliases[name] = pretty.Print(t)
	}
	for name := range r.enums {
		s.Enums = append(s.Enums, name)
	}
	sort.Strings(s.Enums)
	return s
}

// DumpSnapshot serializes a Snapshot to YAML, the workspace-config
// format this core already uses for config.Options (internal/config).
func DumpSnapshot(s Snapshot) ([]byte, error) {
	return yaml.Marshal(s)
}

// LoadSnapshot parses a YAML-encoded Snapshot, the inverse of
// DumpSnapshot, for tests that round-trip a workspace dump.
func LoadSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	err := yaml.Unmarshal(data, &s)
	return s, err
}

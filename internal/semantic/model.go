// Package semantic builds a heuristic single-file semantic model over the C#
// syntax tree: program-declared types and methods, session (DbContext)
// classes and their mapped collections, and origin classification for
// invoked symbols. The model is the facade rules consult; every lookup can
// fail, and a failed lookup means the asking rule produces no finding.
package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/syntax"
)

// Origin classifies where a symbol is declared.
type Origin int

const (
	OriginUnknown Origin = iota
	OriginProgram
	OriginFramework
)

// Member is one declared member of a program type.
type Member struct {
	Name       string
	Kind       string // "property", "field", "method"
	Type       string
	Attributes []string
	Collection bool
	Node       *sitter.Node
}

// Type is a program-declared class.
type Type struct {
	Name    string
	Node    *sitter.Node // name identifier node
	Bases   []string
	Members []Member
}

// DbSet is a mapped collection property on a session class.
type DbSet struct {
	Prop    string
	Element string
	Context string
	Node    *sitter.Node // property declaration
}

// Method is a program-declared method or local function.
type Method struct {
	Name  string
	Node  *sitter.Node
	Async bool
	Calls []string // names of program-level calls made from the body
}

// Model is the per-file semantic facade. It is read-only after Build and
// safe to share across rule invocations within one pass.
type Model struct {
	file *syntax.File

	types    map[string]*Type
	methods  map[string]*Method
	contexts map[string]bool
	sets     []DbSet
	setProp  map[string]string // property name → element type

	keyConfigured map[string]bool // entity names with an explicit key configuration
	asyncContext  map[string]bool // methods in or reachable from an async method
}

// Build constructs the model for one parsed file. extraContexts names
// additional session types configured by the user (for sessions declared in
// other files).
func Build(f *syntax.File, extraContexts []string) *Model {
	m := &Model{
		file:          f,
		types:         make(map[string]*Type),
		methods:       make(map[string]*Method),
		contexts:      make(map[string]bool),
		setProp:       make(map[string]string),
		keyConfigured: make(map[string]bool),
		asyncContext:  make(map[string]bool),
	}
	for _, name := range extraContexts {
		m.contexts[name] = true
	}

	m.collectDeclarations()
	m.resolveContexts()
	m.collectSets()
	m.collectKeyConfigurations()
	m.computeAsyncContext()
	return m
}

// File returns the parsed file the model was built from.
func (m *Model) File() *syntax.File { return m.file }

func (m *Model) collectDeclarations() {
	f := m.file
	syntax.Walk(f.Root(), func(n *sitter.Node) bool {
		switch n.Type() {
		case syntax.KindClassDecl:
			m.addClass(n)
		case syntax.KindMethodDecl, syntax.KindLocalFunction:
			m.addMethod(n)
		}
		return true
	})
}

func (m *Model) addClass(n *sitter.Node) {
	f := m.file
	name := syntax.NameOf(f, n)
	if name == "" {
		return
	}
	t := &Type{Name: name, Node: n.ChildByFieldName("name")}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == syntax.KindBaseList {
			syntax.Walk(c, func(b *sitter.Node) bool {
				switch b.Type() {
				case syntax.KindIdentifier:
					t.Bases = append(t.Bases, f.Text(b))
					return false
				case syntax.KindGenericName:
					if id := b.NamedChild(0); id != nil {
						t.Bases = append(t.Bases, f.Text(id))
					}
					return false
				}
				return true
			})
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		body = n
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case syntax.KindPropertyDecl:
			t.Members = append(t.Members, m.memberFromProperty(c))
		case "field_declaration":
			if mem, ok := m.memberFromField(c); ok {
				t.Members = append(t.Members, mem)
			}
		case syntax.KindMethodDecl:
			t.Members = append(t.Members, Member{
				Name: syntax.NameOf(f, c),
				Kind: "method",
				Node: c,
			})
		}
	}
	m.types[name] = t
}

func (m *Model) memberFromProperty(prop *sitter.Node) Member {
	f := m.file
	typeText := ""
	if tn := prop.ChildByFieldName("type"); tn != nil {
		typeText = f.Text(tn)
	}
	return Member{
		Name:       syntax.NameOf(f, prop),
		Kind:       "property",
		Type:       typeText,
		Attributes: attributeNames(f, prop),
		Collection: isCollectionType(typeText),
		Node:       prop,
	}
}

func (m *Model) memberFromField(field *sitter.Node) (Member, bool) {
	f := m.file
	decl := firstOfKind(field, syntax.KindVariableDecl)
	if decl == nil {
		return Member{}, false
	}
	typeText := ""
	if tn := decl.ChildByFieldName("type"); tn != nil {
		typeText = f.Text(tn)
	}
	declarator := firstOfKind(decl, syntax.KindVarDeclarator)
	if declarator == nil {
		return Member{}, false
	}
	name := syntax.NameOf(f, declarator)
	if name == "" {
		if id := firstOfKind(declarator, syntax.KindIdentifier); id != nil {
			name = f.Text(id)
		}
	}
	return Member{
		Name:       name,
		Kind:       "field",
		Type:       typeText,
		Attributes: attributeNames(f, field),
		Collection: isCollectionType(typeText),
		Node:       field,
	}, name != ""
}

func (m *Model) addMethod(n *sitter.Node) {
	f := m.file
	name := syntax.NameOf(f, n)
	if name == "" {
		return
	}
	meth := &Method{
		Name:  name,
		Node:  n,
		Async: syntax.HasModifier(f, n, "async"),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		syntax.Walk(body, func(c *sitter.Node) bool {
			if c.Type() != syntax.KindInvocation {
				return true
			}
			recv, nameNode := syntax.Callee(c)
			if nameNode == nil {
				return true
			}
			callee := f.Text(nameNode)
			if recv == nil || f.Text(recv) == "this" {
				meth.Calls = append(meth.Calls, callee)
			}
			return true
		})
	}
	m.methods[name] = meth
}

// resolveContexts marks classes assignable to the session base type.
func (m *Model) resolveContexts() {
	for name := range m.types {
		if m.derivesFromContext(name, 0) {
			m.contexts[name] = true
		}
	}
}

func (m *Model) derivesFromContext(name string, depth int) bool {
	if depth > 8 {
		return false
	}
	if name == "DbContext" || m.contexts[name] {
		return true
	}
	t, ok := m.types[name]
	if !ok {
		return false
	}
	for _, base := range t.Bases {
		if m.derivesFromContext(base, depth+1) {
			return true
		}
	}
	return false
}

func (m *Model) collectSets() {
	for name, t := range m.types {
		if !m.contexts[name] {
			continue
		}
		for _, mem := range t.Members {
			if mem.Kind != "property" {
				continue
			}
			elem, ok := dbSetElement(mem.Type)
			if !ok {
				continue
			}
			m.sets = append(m.sets, DbSet{Prop: mem.Name, Element: elem, Context: name, Node: mem.Node})
			m.setProp[mem.Name] = elem
		}
	}
}

// collectKeyConfigurations scans OnModelCreating bodies for fluent HasKey
// calls and records the configured entity names.
func (m *Model) collectKeyConfigurations() {
	f := m.file
	meth, ok := m.methods["OnModelCreating"]
	if !ok {
		return
	}
	body := meth.Node.ChildByFieldName("body")
	if body == nil {
		return
	}
	syntax.Walk(body, func(n *sitter.Node) bool {
		if n.Type() != syntax.KindInvocation {
			return true
		}
		if syntax.CalleeName(f, n) != "HasKey" {
			return true
		}
		recv, _ := syntax.Callee(n)
		if recv == nil {
			return true
		}
		// The receiver chain contains Entity<T>(); pull T out of the generic
		// name.
		syntax.Walk(recv, func(g *sitter.Node) bool {
			if g.Type() != syntax.KindGenericName {
				return true
			}
			if id := g.NamedChild(0); id != nil && f.Text(id) == "Entity" {
				text := f.Text(g)
				if open := strings.IndexByte(text, '<'); open >= 0 {
					arg := strings.TrimSuffix(text[open+1:], ">")
					m.keyConfigured[strings.TrimSpace(arg)] = true
				}
			}
			return false
		})
		return true
	})
}

// computeAsyncContext marks async methods and every program method
// transitively reachable from one through bare calls.
func (m *Model) computeAsyncContext() {
	var frontier []string
	for name, meth := range m.methods {
		if meth.Async {
			m.asyncContext[name] = true
			frontier = append(frontier, name)
		}
	}
	for len(frontier) > 0 {
		name := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		meth := m.methods[name]
		if meth == nil {
			continue
		}
		for _, callee := range meth.Calls {
			if m.methods[callee] == nil || m.asyncContext[callee] {
				continue
			}
			m.asyncContext[callee] = true
			frontier = append(frontier, callee)
		}
	}
}

func attributeNames(f *syntax.File, decl *sitter.Node) []string {
	var names []string
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		c := decl.NamedChild(i)
		if c.Type() != syntax.KindAttributeList {
			continue
		}
		for j := 0; j < int(c.NamedChildCount()); j++ {
			attr := c.NamedChild(j)
			if attr.Type() != syntax.KindAttribute {
				continue
			}
			if n := attr.ChildByFieldName("name"); n != nil {
				names = append(names, f.Text(n))
			} else if id := firstOfKind(attr, syntax.KindIdentifier); id != nil {
				names = append(names, f.Text(id))
			}
		}
	}
	return names
}

var collectionPrefixes = []string{
	"List<", "IList<", "ICollection<", "IEnumerable<", "HashSet<",
	"ISet<", "Collection<", "ObservableCollection<",
}

func isCollectionType(typeText string) bool {
	t := strings.TrimSpace(typeText)
	if strings.HasSuffix(t, "[]") {
		return true
	}
	for _, p := range collectionPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// dbSetElement extracts T from a DbSet<T> property type.
func dbSetElement(typeText string) (string, bool) {
	t := strings.TrimSpace(typeText)
	if !strings.HasPrefix(t, "DbSet<") || !strings.HasSuffix(t, ">") {
		return "", false
	}
	return strings.TrimSpace(t[len("DbSet<") : len(t)-1]), true
}

func firstOfKind(n *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == kind {
			return c
		}
	}
	return nil
}

package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/linqcheck/internal/syntax"
)

// Symbol is a resolved declaration.
type Symbol struct {
	Name   string
	Kind   string // "method", "type", "property"
	Origin Origin
	Node   *sitter.Node
}

// ResolveSymbol resolves an identifier or member-access name node against
// the program model. The bool result is false when nothing is known; callers
// must degrade to "no finding" in that case.
func (m *Model) ResolveSymbol(n *sitter.Node) (Symbol, bool) {
	if n == nil {
		return Symbol{}, false
	}
	name := m.file.Text(n)
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if meth, ok := m.methods[name]; ok {
		return Symbol{Name: name, Kind: "method", Origin: OriginProgram, Node: meth.Node}, true
	}
	if t, ok := m.types[name]; ok {
		return Symbol{Name: name, Kind: "type", Origin: OriginProgram, Node: t.Node}, true
	}
	if IsFrameworkMethod(name) {
		return Symbol{Name: name, Kind: "method", Origin: OriginFramework}, true
	}
	return Symbol{}, false
}

// SymbolOrigin classifies a bare name. Origin is a property of where the
// symbol is declared, never of what it is called.
func (m *Model) SymbolOrigin(name string) Origin {
	if _, ok := m.methods[name]; ok {
		return OriginProgram
	}
	if _, ok := m.types[name]; ok {
		return OriginProgram
	}
	if IsFrameworkMethod(name) {
		return OriginFramework
	}
	return OriginUnknown
}

// IsAssignableTo reports whether typeName is target or derives from it
// through the program's declared base chains. "DbContext" matches any
// session class, declared or configured.
func (m *Model) IsAssignableTo(typeName, target string) bool {
	if typeName == target {
		return true
	}
	if target == "DbContext" {
		return m.derivesFromContext(typeName, 0)
	}
	seen := map[string]bool{}
	var walk func(name string) bool
	walk = func(name string) bool {
		if name == target {
			return true
		}
		if seen[name] {
			return false
		}
		seen[name] = true
		t, ok := m.types[name]
		if !ok {
			return false
		}
		for _, base := range t.Bases {
			if walk(base) {
				return true
			}
		}
		return false
	}
	return walk(typeName)
}

// DeclaredMembers returns the member list of a program type in declaration
// order.
func (m *Model) DeclaredMembers(typeName string) ([]Member, bool) {
	t, ok := m.types[typeName]
	if !ok {
		return nil, false
	}
	return t.Members, true
}

// LookupType returns a declared type by name.
func (m *Model) LookupType(name string) (*Type, bool) {
	t, ok := m.types[name]
	return t, ok
}

// DbSets returns the mapped collections of every session class in the file.
func (m *Model) DbSets() []DbSet { return m.sets }

// DbSetElement maps a mapped-collection property name to its entity type.
func (m *Model) DbSetElement(prop string) (string, bool) {
	elem, ok := m.setProp[prop]
	return elem, ok
}

// IsContextType reports whether name resolves to a session class.
func (m *Model) IsContextType(name string) bool {
	return m.derivesFromContext(name, 0)
}

// InAsyncContext reports whether the named method is asynchronous or
// reachable from an asynchronous method via program calls.
func (m *Model) InAsyncContext(methodName string) bool {
	return m.asyncContext[methodName]
}

// KeyMember resolves the identity key of an entity type: an explicit [Key]
// annotation wins, then the Id / <Type>Id naming convention.
func (m *Model) KeyMember(typeName string) (string, bool) {
	t, ok := m.types[typeName]
	if !ok {
		return "", false
	}
	for _, mem := range t.Members {
		for _, attr := range mem.Attributes {
			if attr == "Key" || attr == "KeyAttribute" {
				return mem.Name, true
			}
		}
	}
	for _, mem := range t.Members {
		lower := strings.ToLower(mem.Name)
		if lower == "id" || lower == strings.ToLower(typeName+"Id") {
			return mem.Name, true
		}
	}
	return "", false
}

// HasIdentityKey reports whether an entity resolves a key through annotation,
// naming convention, or explicit fluent configuration.
func (m *Model) HasIdentityKey(typeName string) bool {
	if m.keyConfigured[typeName] {
		return true
	}
	_, ok := m.KeyMember(typeName)
	return ok
}

// TypeOf resolves the declared or constructed type of an expression:
// object creations, locals, parameters, and session-field accesses. Returns
// ok=false for anything it cannot see.
func (m *Model) TypeOf(n *sitter.Node) (string, bool) {
	f := m.file
	n = syntax.StripParens(n)
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case syntax.KindObjectCreation:
		if t := n.ChildByFieldName("type"); t != nil {
			return f.Text(t), true
		}
	case syntax.KindIdentifier:
		scope := syntax.EnclosingFunction(n)
		if scope == nil {
			return "", false
		}
		return m.LocalType(scope, f.Text(n))
	case syntax.KindMemberAccess:
		// Field or property access: this.X, _x on some declared class.
		name := n.ChildByFieldName("name")
		if name == nil {
			return "", false
		}
		return m.memberType(f.Text(name))
	case "this_expression":
		if cls := syntax.Ancestor(n, syntax.KindClassDecl); cls != nil {
			return syntax.NameOf(f, cls), true
		}
	}
	return "", false
}

// memberType finds a uniquely named field/property across declared types.
func (m *Model) memberType(name string) (string, bool) {
	var found string
	for _, t := range m.types {
		for _, mem := range t.Members {
			if mem.Name == name && mem.Type != "" {
				if found != "" && found != mem.Type {
					return "", false // ambiguous
				}
				found = mem.Type
			}
		}
	}
	return found, found != ""
}

// LocalType resolves the type of a local variable or parameter within a
// method scope. `var` declarations are chased through their initializer.
func (m *Model) LocalType(scope *sitter.Node, name string) (string, bool) {
	f := m.file

	// Parameters first.
	if params := scope.ChildByFieldName("parameters"); params != nil {
		var typ string
		syntax.Walk(params, func(p *sitter.Node) bool {
			if p.Type() != syntax.KindParameter {
				return true
			}
			if nm := p.ChildByFieldName("name"); nm != nil && f.Text(nm) == name {
				if tn := p.ChildByFieldName("type"); tn != nil {
					typ = f.Text(tn)
				}
			}
			return false
		})
		if typ != "" {
			return typ, true
		}
	}

	declarator := LocalDeclarator(f, scope, name)
	if declarator == nil {
		return "", false
	}
	decl := syntax.Ancestor(declarator, syntax.KindVariableDecl)
	if decl != nil {
		if tn := decl.ChildByFieldName("type"); tn != nil {
			if t := f.Text(tn); t != "var" {
				return t, true
			}
		}
	}
	init := syntax.InitializerOf(declarator)
	if init == nil {
		return "", false
	}
	if init.Type() == syntax.KindObjectCreation {
		if tn := init.ChildByFieldName("type"); tn != nil {
			return f.Text(tn), true
		}
	}
	return "", false
}

// LocalDeclarator finds the declarator for a named local inside a scope.
func LocalDeclarator(f *syntax.File, scope *sitter.Node, name string) *sitter.Node {
	var found *sitter.Node
	syntax.Walk(scope, func(n *sitter.Node) bool {
		if n.Type() == syntax.KindLocalFunction && !n.Equal(scope) {
			return false // do not leak into nested functions
		}
		if n.Type() == syntax.KindVarDeclarator {
			nm := syntax.NameOf(f, n)
			if nm == "" {
				if id := firstOfKind(n, syntax.KindIdentifier); id != nil {
					nm = f.Text(id)
				}
			}
			if nm == name {
				found = n
			}
		}
		return true
	})
	return found
}

// LocalInitializer returns the initializer expression of a named local.
func LocalInitializer(f *syntax.File, scope *sitter.Node, name string) *sitter.Node {
	if d := LocalDeclarator(f, scope, name); d != nil {
		return syntax.InitializerOf(d)
	}
	return nil
}

// IsSessionValue reports whether an expression resolves to a session
// instance: a local or parameter of a context type, a context-typed
// field/property, or `this` inside a context subclass.
func (m *Model) IsSessionValue(n *sitter.Node) bool {
	typ, ok := m.TypeOf(n)
	if !ok {
		return false
	}
	return m.IsContextType(typ)
}

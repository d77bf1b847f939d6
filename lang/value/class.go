package value

// ConstructorName is the special method name a class calls implicitly when
// constructed (spec.md §4.4.3).
const ConstructorName = "constructor"

// Access is a field's declared visibility modifier (spec.md §3 Class
// "field declaration table name->access-modifier", §4.4.4).
type Access uint8

const (
	AccessPublic Access = iota
	AccessPrivate
	AccessProtected
)

// Class is a declared class: its method table and, for the extended
// variant, its field declarations with access modifiers (spec.md §3).
// Only one Class owns a given method map; Instances refer to it by a
// shared (GC-managed) pointer, never a copy.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Closure
	Fields     map[string]Access // declared field name -> access modifier
}

// NewClass allocates an empty Class named name.
func NewClass(name string) *Class {
	return &Class{Name: name, Methods: make(map[string]*Closure), Fields: make(map[string]Access)}
}

// FindMethod looks up name on c or, failing that, its superclass chain
// (used by GET_PROPERTY/INVOKE method binding and by GET_SUPER).
func (c *Class) FindMethod(name string) (*Closure, *Class) {
	for cur := c; cur != nil; cur = cur.Superclass {
		if m, ok := cur.Methods[name]; ok {
			return m, cur
		}
	}
	return nil, nil
}

// FindFieldAccess looks up name's declared access modifier on c or its
// superclass chain, returning ok=false if the field was never declared.
func (c *Class) FindFieldAccess(name string) (Access, *Class, bool) {
	for cur := c; cur != nil; cur = cur.Superclass {
		if a, ok := cur.Fields[name]; ok {
			return a, cur, true
		}
	}
	return AccessPublic, nil, false
}

// IsDescendantOf reports whether c is anc or a (possibly transitive)
// subclass of anc, used to enforce PROTECTED access (spec.md §4.4.4).
func (c *Class) IsDescendantOf(anc *Class) bool {
	for cur := c; cur != nil; cur = cur.Superclass {
		if cur == anc {
			return true
		}
	}
	return false
}

func NewClassValue(c *Class) Value {
	return Obj(&Object{Kind: ObjClass, Class: c})
}

// Instance is a runtime object allocated by calling a Class (spec.md §3,
// §4.4.3).
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstanceValue(i *Instance) Value {
	return Obj(&Object{Kind: ObjInstance, Instance: i})
}

// BoundMethod is created transiently when a method is read off an instance
// as a property (spec.md §3, §4.4.4).
type BoundMethod struct {
	Receiver Value
	Method   *Closure
}

func NewBoundMethodValue(b *BoundMethod) Value {
	return Obj(&Object{Kind: ObjBoundMethod, BoundMethod: b})
}

package value

// ObjectKind discriminates the heap Object union (spec.md §3 "Heap
// objects").
type ObjectKind uint8

const (
	ObjString ObjectKind = iota
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjList
)

var objectKindNames = [...]string{
	ObjString:      "string",
	ObjFunction:    "function",
	ObjNative:      "native function",
	ObjClosure:     "function",
	ObjUpvalue:     "upvalue",
	ObjClass:       "class",
	ObjInstance:    "instance",
	ObjBoundMethod: "function",
	ObjList:        "list",
}

// Object is the tagged union of every heap-allocated value variant. Exactly
// one of the typed fields matching Kind is non-nil. Memory is owned the way
// any Go value is owned: the runtime's tracing garbage collector reclaims
// unreachable Objects, including reference cycles (Instance<->Class,
// Closure<->Upvalue<->Instance via `this`), which makes the weak
// back-reference scheme spec.md §5/§9 describes for a reference-counted host
// unnecessary here; see DESIGN.md.
type Object struct {
	Kind ObjectKind

	Str         *StringObj
	Func        *Function
	Native      *Native
	Closure     *Closure
	Upvalue     *Upvalue
	Class       *Class
	Instance    *Instance
	BoundMethod *BoundMethod
	List        *List
}

func (o *Object) TypeName() string { return objectKindNames[o.Kind] }

func (o *Object) String() string {
	switch o.Kind {
	case ObjString:
		return o.Str.Value
	case ObjFunction:
		return o.Func.String()
	case ObjNative:
		return "<native fn " + o.Native.Name + ">"
	case ObjClosure:
		return o.Closure.String()
	case ObjUpvalue:
		return "<upvalue>"
	case ObjClass:
		return o.Class.Name
	case ObjInstance:
		return o.Instance.Class.Name + " instance"
	case ObjBoundMethod:
		return o.BoundMethod.Method.String()
	case ObjList:
		return o.List.String()
	default:
		return "<object>"
	}
}

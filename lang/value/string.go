package value

import "hash/fnv"

// StringObj is the heap representation of an immutable string value
// (spec.md §3: "immutable bytes, precomputed hash").
type StringObj struct {
	Value string
	Hash  uint64
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// NewString allocates a fresh (uninterned) string Object.
func NewString(s string) Value {
	return Obj(&Object{Kind: ObjString, Str: &StringObj{Value: s, Hash: hashString(s)}})
}

// Interner deduplicates string Objects by their text so that equal global
// and identifier names share one allocation (spec.md §4.1 "String ...
// Interned by the compiler's global-name table").
type Interner struct {
	table map[string]*Object
}

func NewInterner() *Interner {
	return &Interner{table: make(map[string]*Object)}
}

// Intern returns the canonical string Object for s, allocating one on first
// use.
func (in *Interner) Intern(s string) *Object {
	if o, ok := in.table[s]; ok {
		return o
	}
	o := &Object{Kind: ObjString, Str: &StringObj{Value: s, Hash: hashString(s)}}
	in.table[s] = o
	return o
}

package value

import "strings"

// List is an ordered, mutable sequence of Values (spec.md §3, created by
// the ARRAY op or list operators).
type List struct {
	Elems []Value
}

func NewListValue(l *List) Value {
	return Obj(&Object{Kind: ObjList, List: l})
}

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range l.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		if e.Is(ObjString) {
			sb.WriteByte('"')
			sb.WriteString(e.String())
			sb.WriteByte('"')
		} else {
			sb.WriteString(e.String())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

package vm

import (
	"fmt"
	"time"

	"github.com/andyyu8588/Luminous/lang/value"
)

// registerNatives installs the canonical native set as globals of kind
// Native (spec.md §4.5): clock, substring, size. Adding another is a
// one-liner here.
func registerNatives(vm *VM) {
	vm.defineNative("clock", 0, nativeClock)
	vm.defineNative("substring", 3, nativeSubstring)
	vm.defineNative("size", 1, nativeSize)
}

func (vm *VM) defineNative(name string, arity int, fn func([]value.Value) (value.Value, error)) {
	vm.globals.Put(name, value.NewNative(&value.Native{Name: name, Arity: arity, Fn: fn}))
}

func nativeClock(args []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}

func nativeSubstring(args []value.Value) (value.Value, error) {
	if !args[0].Is(value.ObjString) {
		return value.Null, fmt.Errorf("substring: first argument must be a string")
	}
	s := args[0].AsObject().Str.Value
	start, err := indexFromValue(args[1])
	if err != nil {
		return value.Null, fmt.Errorf("substring: start index must be a non-negative integer")
	}
	end, err := indexFromValue(args[2])
	if err != nil {
		return value.Null, fmt.Errorf("substring: end index must be a non-negative integer")
	}
	if start > len(s) || end > len(s) || start > end {
		return value.Null, fmt.Errorf("substring: index out of bounds")
	}
	return value.NewString(s[start:end]), nil
}

func nativeSize(args []value.Value) (value.Value, error) {
	switch {
	case args[0].Is(value.ObjString):
		return value.Number(float64(len(args[0].AsObject().Str.Value))), nil
	case args[0].Is(value.ObjList):
		return value.Number(float64(len(args[0].AsObject().List.Elems))), nil
	default:
		return value.Null, fmt.Errorf("size: argument must be a string or list")
	}
}

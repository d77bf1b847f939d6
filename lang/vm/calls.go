package vm

import (
	"fmt"

	"github.com/andyyu8588/Luminous/lang/value"
)

// callValue dispatches CALL's callee by heap-object kind (spec.md §4.4.3).
func (vm *VM) callValue(callee value.Value, argc int) error {
	if !callee.IsObject() {
		return fmt.Errorf("Can only call functions and classes.")
	}
	switch callee.AsObject().Kind {
	case value.ObjClosure:
		return vm.call(callee.AsObject().Closure, argc)
	case value.ObjClass:
		return vm.callClass(callee.AsObject().Class, argc)
	case value.ObjBoundMethod:
		bm := callee.AsObject().BoundMethod
		vm.stack[len(vm.stack)-argc-1] = bm.Receiver
		return vm.call(bm.Method, argc)
	case value.ObjNative:
		return vm.callNative(callee.AsObject().Native, argc)
	default:
		return fmt.Errorf("Can only call functions and classes.")
	}
}

// call pushes a new frame for closure (spec.md §4.4.3): verifies arity,
// enforces the frame-depth limit, and sets basePointer to where the
// callee's own stack slot sits so that GET_LOCAL 0 reaches it.
func (vm *VM) call(closure *value.Closure, argc int) error {
	if argc != closure.Func.Arity {
		return fmt.Errorf("Expected %d arguments but got %d.", closure.Func.Arity, argc)
	}
	if len(vm.frames) >= vm.maxFrames {
		return fmt.Errorf("Stack overflow.")
	}
	vm.frames = append(vm.frames, frame{
		closure:     closure,
		basePointer: len(vm.stack) - argc - 1,
	})
	return nil
}

// callClass implements calling a Class value as a constructor (spec.md
// §4.4.3): allocates an Instance with its declared fields defaulted to
// Null, then calls `constructor` if one exists.
func (vm *VM) callClass(class *value.Class, argc int) error {
	inst := &value.Instance{Class: class, Fields: make(map[string]value.Value)}
	for cur := class; cur != nil; cur = cur.Superclass {
		for name := range cur.Fields {
			if _, ok := inst.Fields[name]; !ok {
				inst.Fields[name] = value.Null
			}
		}
	}
	vm.stack[len(vm.stack)-argc-1] = value.NewInstanceValue(inst)

	if ctor, _ := class.FindMethod(value.ConstructorName); ctor != nil {
		return vm.call(ctor, argc)
	}
	if argc != 0 {
		return fmt.Errorf("Expected 0 arguments but got %d.", argc)
	}
	return nil
}

func (vm *VM) callNative(n *value.Native, argc int) error {
	if n.Arity >= 0 && argc != n.Arity {
		return fmt.Errorf("Expected %d arguments but got %d.", n.Arity, argc)
	}
	args := append([]value.Value(nil), vm.stack[len(vm.stack)-argc:]...)
	result, err := n.Fn(args)
	if err != nil {
		return err
	}
	vm.stack = vm.stack[:len(vm.stack)-argc-1]
	vm.push(result)
	return nil
}

// invoke fuses GET_PROPERTY+CALL for methods (spec.md §4.4.4 "INVOKE ...
// fuses field-or-method access and call"), including the field-as-callable
// shortcut when the name resolves to a plain field value rather than a
// declared method.
func (vm *VM) invoke(name string, argc int, accessorClass *value.Class) error {
	receiver := vm.peek(argc)
	if !receiver.Is(value.ObjInstance) {
		return fmt.Errorf("Only instances have methods.")
	}
	inst := receiver.AsObject().Instance

	if fieldVal, ok := inst.Fields[name]; ok {
		if err := vm.checkFieldAccess(inst.Class, name, accessorClass); err != nil {
			return err
		}
		vm.stack[len(vm.stack)-argc-1] = fieldVal
		return vm.callValue(fieldVal, argc)
	}

	method, _ := inst.Class.FindMethod(name)
	if method == nil {
		return fmt.Errorf("Undefined property '%s'.", name)
	}
	return vm.call(method, argc)
}

// superInvoke resolves name directly against the superclass value SUPER_INVOKE
// pops, rather than the receiver's own (dynamic) class (spec.md §4.4.4).
func (vm *VM) superInvoke(name string, argc int) error {
	superVal := vm.pop()
	superclass := superVal.AsObject().Class
	method, _ := superclass.FindMethod(name)
	if method == nil {
		return fmt.Errorf("Undefined property '%s'.", name)
	}
	return vm.call(method, argc)
}

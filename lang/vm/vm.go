// Package vm implements Luminous's stack-based virtual machine (spec.md
// §4.4): a value-tagged dispatch loop over the bytecode a Compile call
// produces, with call frames, method binding, superclass dispatch, and
// bounded recursion.
package vm

import (
	"fmt"
	"io"
	"math"

	"github.com/dolthub/swiss"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/disasm"
	"github.com/andyyu8588/Luminous/lang/value"
)

// frame is one call record (spec.md §4.4.1): the running closure, its
// program counter, and the stack index where its locals begin.
type frame struct {
	closure     *value.Closure
	pc          int
	basePointer int
}

// VM holds every piece of runtime state for one execution (spec.md §9:
// "the value stack and frame stack are owned exclusively by the VM
// instance").
type VM struct {
	stack  []value.Value
	frames []frame

	globals *swiss.Map[string, value.Value]

	// openUpvalues is the head of the open-upvalue linked list, sorted
	// descending by SlotIndex (spec.md §4.4.1, §4.4.5).
	openUpvalues *value.Upvalue

	out io.Writer

	// traceExec, when set, disassembles each instruction to out before
	// executing it (internal/config's LUMINOUS_TRACE_EXEC, never read by
	// this package directly — threaded in as a plain constructor parameter).
	traceExec bool
	maxFrames int
}

// New constructs a VM that writes `print` output to out and has the
// native registry installed (spec.md §4.5). traceExec enables a
// disassembled instruction trace on every step; maxFrames <= 0 falls back
// to compiler.MaxFrames.
func New(out io.Writer, traceExec bool, maxFrames int) *VM {
	if maxFrames <= 0 {
		maxFrames = compiler.MaxFrames
	}
	vm := &VM{
		globals:   swiss.NewMap[string, value.Value](32),
		out:       out,
		traceExec: traceExec,
		maxFrames: maxFrames,
	}
	registerNatives(vm)
	return vm
}

// Run compiles-result fn as the root script: wraps it in a Closure, pushes
// the initial frame, and dispatches until the root frame returns or a
// runtime error occurs (spec.md §2 "VM wraps the root Function in a
// Closure and executes").
func (vm *VM) Run(fn *value.Function) error {
	// a runtime error leaves the failed run's frames and stack behind;
	// close its upvalues and start from an empty stack and frame list
	vm.closeUpvalues(0)
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]

	closure := &value.Closure{Func: fn}
	vm.push(value.NewClosure(closure))
	vm.frames = append(vm.frames, frame{closure: closure, pc: 0, basePointer: 0})
	return vm.run()
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) peek(dist int) value.Value { return vm.stack[len(vm.stack)-1-dist] }

func (vm *VM) readByte(f *frame) byte {
	b := f.closure.Func.Chunk.Code[f.pc]
	f.pc++
	return b
}

func (vm *VM) readShort(f *frame) int {
	hi := vm.readByte(f)
	lo := vm.readByte(f)
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant(f *frame) value.Value {
	return f.closure.Func.Chunk.Constants[vm.readByte(f)]
}

func (vm *VM) readString(f *frame) string {
	return vm.readConstant(f).AsObject().Str.Value
}

// run is the main dispatch loop (spec.md §4.4.2): fetch one opcode byte at
// the current frame's pc and switch. The frame pointer is refetched at the
// top of every iteration rather than held across instructions, since CALL
// can append to vm.frames and reallocate its backing array.
func (vm *VM) run() error {
	for {
		f := &vm.frames[len(vm.frames)-1]
		opIP := f.pc
		if vm.traceExec {
			disasm.Instruction(vm.out, f.closure.Func.Chunk, opIP)
		}
		op := compiler.OpCode(vm.readByte(f))

		switch op {
		case compiler.OpConstant:
			vm.push(vm.readConstant(f))
		case compiler.OpNull:
			vm.push(value.Null)
		case compiler.OpTrue:
			vm.push(value.True)
		case compiler.OpFalse:
			vm.push(value.False)
		case compiler.OpPop:
			vm.pop()
		case compiler.OpDuplicate:
			n := int(vm.readByte(f))
			top := append([]value.Value(nil), vm.stack[len(vm.stack)-n:]...)
			vm.stack = append(vm.stack, top...)

		case compiler.OpGetLocal:
			slot := int(vm.readByte(f))
			vm.push(vm.stack[f.basePointer+slot])
		case compiler.OpSetLocal:
			slot := int(vm.readByte(f))
			vm.stack[f.basePointer+slot] = vm.peek(0)

		case compiler.OpGetGlobal:
			name := vm.readString(f)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeErrAt(opIP, f, "Undefined variable '%s'.", name)
			}
			vm.push(v)
		case compiler.OpSetGlobal:
			name := vm.readString(f)
			vm.globals.Put(name, vm.peek(0))

		case compiler.OpGetUpvalue:
			idx := int(vm.readByte(f))
			vm.push(f.closure.Upvalues[idx].Get())
		case compiler.OpSetUpvalue:
			idx := int(vm.readByte(f))
			f.closure.Upvalues[idx].Set(vm.peek(0))

		case compiler.OpGetProperty:
			if err := vm.opGetProperty(f); err != nil {
				return vm.wrapErr(opIP, f, err)
			}
		case compiler.OpSetProperty:
			if err := vm.opSetProperty(f); err != nil {
				return vm.wrapErr(opIP, f, err)
			}
		case compiler.OpGetSuper:
			if err := vm.opGetSuper(f); err != nil {
				return vm.wrapErr(opIP, f, err)
			}

		case compiler.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case compiler.OpGreater:
			if err := vm.compareOp(f, opIP, true); err != nil {
				return err
			}
		case compiler.OpLess:
			if err := vm.compareOp(f, opIP, false); err != nil {
				return err
			}

		case compiler.OpAdd, compiler.OpSub, compiler.OpMul, compiler.OpDiv, compiler.OpMod:
			if err := vm.binaryOp(op); err != nil {
				return vm.wrapErr(opIP, f, err)
			}

		case compiler.OpNot:
			v := vm.pop()
			vm.push(value.Bool(!v.Truthy()))
		case compiler.OpNegate:
			v := vm.pop()
			if !v.IsNumber() {
				return vm.runtimeErrAt(opIP, f, "Operand must be a number.")
			}
			vm.push(value.Number(-v.AsNumber()))

		case compiler.OpPrint:
			v := vm.pop()
			fmt.Fprintln(vm.out, v.String())

		case compiler.OpJump:
			off := vm.readShort(f)
			f.pc += off
		case compiler.OpJumpIfFalse:
			off := vm.readShort(f)
			if !vm.peek(0).Truthy() {
				f.pc += off
			}
		case compiler.OpLoop:
			off := vm.readShort(f)
			f.pc -= off

		case compiler.OpCall:
			argc := int(vm.readByte(f))
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return vm.wrapErr(opIP, f, err)
			}
		case compiler.OpInvoke:
			name := vm.readString(f)
			argc := int(vm.readByte(f))
			accessorClass := vm.readAccessor(f)
			if err := vm.invoke(name, argc, accessorClass); err != nil {
				return vm.wrapErr(opIP, f, err)
			}
		case compiler.OpSuperInvoke:
			name := vm.readString(f)
			argc := int(vm.readByte(f))
			if err := vm.superInvoke(name, argc); err != nil {
				return vm.wrapErr(opIP, f, err)
			}

		case compiler.OpClosure:
			vm.opClosure(f)
		case compiler.OpCloseUpvalue:
			vm.closeUpvalues(len(vm.stack) - 1)
			vm.pop()

		case compiler.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(f.basePointer)
			vm.stack = vm.stack[:f.basePointer]
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				return nil
			}
			vm.push(result)

		case compiler.OpClass:
			name := vm.readString(f)
			vm.push(value.NewClassValue(value.NewClass(name)))
		case compiler.OpInherit:
			if err := vm.opInherit(); err != nil {
				return vm.wrapErr(opIP, f, err)
			}
		case compiler.OpMethod:
			name := vm.readString(f)
			method := vm.pop()
			class := vm.peek(0).AsObject().Class
			class.Methods[name] = method.AsObject().Closure
		case compiler.OpField:
			name := vm.readString(f)
			access := value.Access(vm.readByte(f))
			class := vm.peek(0).AsObject().Class
			class.Fields[name] = access

		case compiler.OpArray:
			n := int(vm.readByte(f))
			elems := append([]value.Value(nil), vm.stack[len(vm.stack)-n:]...)
			vm.stack = vm.stack[:len(vm.stack)-n]
			vm.push(value.NewListValue(&value.List{Elems: elems}))
		case compiler.OpArrayGet:
			if err := vm.opArrayGet(); err != nil {
				return vm.wrapErr(opIP, f, err)
			}
		case compiler.OpArraySet:
			if err := vm.opArraySet(); err != nil {
				return vm.wrapErr(opIP, f, err)
			}

		default:
			return vm.runtimeErrAt(opIP, f, "Unknown opcode %d.", op)
		}
	}
}

func (vm *VM) compareOp(f *frame, opIP int, greater bool) error {
	b, a := vm.pop(), vm.pop()
	switch {
	case a.IsNumber() && b.IsNumber():
		if greater {
			vm.push(value.Bool(a.AsNumber() > b.AsNumber()))
		} else {
			vm.push(value.Bool(a.AsNumber() < b.AsNumber()))
		}
	case a.Is(value.ObjString) && b.Is(value.ObjString):
		if greater {
			vm.push(value.Bool(a.AsObject().Str.Value > b.AsObject().Str.Value))
		} else {
			vm.push(value.Bool(a.AsObject().Str.Value < b.AsObject().Str.Value))
		}
	default:
		return vm.runtimeErrAt(opIP, f, "Operands must be two numbers or two strings.")
	}
	return nil
}

func (vm *VM) binaryOp(op compiler.OpCode) error {
	b, a := vm.pop(), vm.pop()
	switch op {
	case compiler.OpAdd:
		return vm.add(a, b)
	case compiler.OpSub:
		return vm.sub(a, b)
	case compiler.OpMul:
		return vm.mul(a, b)
	case compiler.OpDiv:
		if !a.IsNumber() || !b.IsNumber() {
			return fmt.Errorf("Operands must be numbers.")
		}
		vm.push(value.Number(a.AsNumber() / b.AsNumber()))
	case compiler.OpMod:
		if !a.IsNumber() || !b.IsNumber() {
			return fmt.Errorf("Operands must be numbers.")
		}
		vm.push(value.Number(math.Mod(a.AsNumber(), b.AsNumber())))
	}
	return nil
}

// add implements ADD's overload set (spec.md §4.4.2): number+number,
// string+string (concatenate), string and number in either order (format
// the number as decimal text and concatenate), and list+value (append,
// copy-on-write).
func (vm *VM) add(a, b value.Value) error {
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
	case a.Is(value.ObjString) && b.Is(value.ObjString):
		vm.push(value.NewString(a.AsObject().Str.Value + b.AsObject().Str.Value))
	case a.Is(value.ObjString) && b.IsNumber():
		vm.push(value.NewString(a.AsObject().Str.Value + b.String()))
	case a.IsNumber() && b.Is(value.ObjString):
		vm.push(value.NewString(a.String() + b.AsObject().Str.Value))
	case a.Is(value.ObjList):
		lst := a.AsObject().List
		elems := append(append([]value.Value(nil), lst.Elems...), b)
		vm.push(value.NewListValue(&value.List{Elems: elems}))
	default:
		return fmt.Errorf("Operands must be numbers, strings, or a list and a value.")
	}
	return nil
}

// sub implements number subtraction and list-minus-index removal (spec.md
// §4.4.2 "list-value (remove-by-index)"): returns a copy with the element
// at that index removed.
func (vm *VM) sub(a, b value.Value) error {
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.push(value.Number(a.AsNumber() - b.AsNumber()))
	case a.Is(value.ObjList):
		idx, err := indexFromValue(b)
		if err != nil {
			return err
		}
		lst := a.AsObject().List
		if idx < 0 || idx >= len(lst.Elems) {
			return fmt.Errorf("List index out of bounds.")
		}
		elems := make([]value.Value, 0, len(lst.Elems)-1)
		elems = append(elems, lst.Elems[:idx]...)
		elems = append(elems, lst.Elems[idx+1:]...)
		vm.push(value.NewListValue(&value.List{Elems: elems}))
	default:
		return fmt.Errorf("Operands must be numbers, or a list and an index.")
	}
	return nil
}

// mul implements number multiplication and list*integer repetition
// (spec.md §4.4.2).
func (vm *VM) mul(a, b value.Value) error {
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.push(value.Number(a.AsNumber() * b.AsNumber()))
	case a.Is(value.ObjList) && b.IsNumber():
		n, err := indexFromValue(b)
		if err != nil {
			return err
		}
		lst := a.AsObject().List
		elems := make([]value.Value, 0, len(lst.Elems)*n)
		for i := 0; i < n; i++ {
			elems = append(elems, lst.Elems...)
		}
		vm.push(value.NewListValue(&value.List{Elems: elems}))
	default:
		return fmt.Errorf("Operands must be numbers, or a list and an integer.")
	}
	return nil
}

// indexFromValue requires v to be a non-negative integer Number (spec.md
// §8: "List index must be a non-negative integer; any other value is a
// runtime error").
func indexFromValue(v value.Value) (int, error) {
	if !v.IsNumber() {
		return 0, fmt.Errorf("List index must be a non-negative integer.")
	}
	n := v.AsNumber()
	if n < 0 || n != math.Trunc(n) {
		return 0, fmt.Errorf("List index must be a non-negative integer.")
	}
	return int(n), nil
}

func (vm *VM) opArrayGet() error {
	idxVal := vm.pop()
	recv := vm.pop()
	if !recv.Is(value.ObjList) {
		return fmt.Errorf("Only lists support indexing.")
	}
	idx, err := indexFromValue(idxVal)
	if err != nil {
		return err
	}
	lst := recv.AsObject().List
	if idx >= len(lst.Elems) {
		return fmt.Errorf("List index out of bounds.")
	}
	vm.push(lst.Elems[idx])
	return nil
}

func (vm *VM) opArraySet() error {
	val := vm.pop()
	idxVal := vm.pop()
	recv := vm.pop()
	if !recv.Is(value.ObjList) {
		return fmt.Errorf("Only lists support indexing.")
	}
	idx, err := indexFromValue(idxVal)
	if err != nil {
		return err
	}
	lst := recv.AsObject().List
	if idx >= len(lst.Elems) {
		return fmt.Errorf("List index out of bounds.")
	}
	lst.Elems[idx] = val
	vm.push(val)
	return nil
}

func (vm *VM) opInherit() error {
	superVal := vm.peek(1)
	if !superVal.Is(value.ObjClass) {
		return fmt.Errorf("Superclass must be a class.")
	}
	super := superVal.AsObject().Class
	child := vm.peek(0).AsObject().Class
	child.Superclass = super
	// Methods carry no access modifier in this language (only `private`/
	// `protected`/`public` field declarations do), so every inherited method
	// is copied. Fields skip PRIVATE ones: a private field copied into
	// child.Fields would make FindFieldAccess attribute it to child itself,
	// silently granting the subclass access to a field it never declared.
	for name, m := range super.Methods {
		child.Methods[name] = m
	}
	for name, a := range super.Fields {
		if a == value.AccessPrivate {
			continue
		}
		child.Fields[name] = a
	}
	vm.pop() // pops the child reference; superclass remains (it becomes `super`)
	return nil
}

// readAccessor reads OpInvoke/OpGetProperty/OpSetProperty's trailing
// (hasAccessor, accessorClassConst) operand pair, resolving it to the
// accessing Class (spec.md §4.4.4).
func (vm *VM) readAccessor(f *frame) *value.Class {
	hasAccessor := vm.readByte(f) != 0
	nameByte := vm.readByte(f)
	if !hasAccessor {
		return nil
	}
	name := f.closure.Func.Chunk.Constants[nameByte].AsObject().Str.Value
	return vm.classByName(name)
}

func (vm *VM) classByName(name string) *value.Class {
	v, ok := vm.globals.Get(name)
	if !ok || !v.Is(value.ObjClass) {
		return nil
	}
	return v.AsObject().Class
}

func (vm *VM) checkFieldAccess(owner *value.Class, name string, accessorClass *value.Class) error {
	access, declClass, ok := owner.FindFieldAccess(name)
	if !ok {
		return nil
	}
	switch access {
	case value.AccessPrivate:
		if accessorClass == nil || accessorClass != declClass {
			return fmt.Errorf("Can't access private field '%s' outside its declaring class.", name)
		}
	case value.AccessProtected:
		if accessorClass == nil || !accessorClass.IsDescendantOf(declClass) {
			return fmt.Errorf("Can't access protected field '%s' outside its class hierarchy.", name)
		}
	}
	return nil
}

func (vm *VM) opGetProperty(f *frame) error {
	name := vm.readString(f)
	accessorClass := vm.readAccessor(f)

	receiver := vm.pop()
	if !receiver.Is(value.ObjInstance) {
		return fmt.Errorf("Only instances have properties.")
	}
	inst := receiver.AsObject().Instance
	if v, ok := inst.Fields[name]; ok {
		if err := vm.checkFieldAccess(inst.Class, name, accessorClass); err != nil {
			return err
		}
		vm.push(v)
		return nil
	}
	method, _ := inst.Class.FindMethod(name)
	if method == nil {
		return fmt.Errorf("Undefined property '%s'.", name)
	}
	vm.push(value.NewBoundMethodValue(&value.BoundMethod{Receiver: receiver, Method: method}))
	return nil
}

func (vm *VM) opSetProperty(f *frame) error {
	name := vm.readString(f)
	accessorClass := vm.readAccessor(f)

	val := vm.pop()
	receiver := vm.pop()
	if !receiver.Is(value.ObjInstance) {
		return fmt.Errorf("Only instances have properties.")
	}
	inst := receiver.AsObject().Instance
	if err := vm.checkFieldAccess(inst.Class, name, accessorClass); err != nil {
		return err
	}
	inst.Fields[name] = val
	vm.push(val)
	return nil
}

func (vm *VM) opGetSuper(f *frame) error {
	name := vm.readString(f)
	superVal := vm.pop()
	this := vm.pop()
	superclass := superVal.AsObject().Class
	method, _ := superclass.FindMethod(name)
	if method == nil {
		return fmt.Errorf("Undefined property '%s'.", name)
	}
	vm.push(value.NewBoundMethodValue(&value.BoundMethod{Receiver: this, Method: method}))
	return nil
}

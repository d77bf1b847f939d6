package vm

import "github.com/andyyu8588/Luminous/lang/value"

// opClosure handles the CLOSURE instruction (spec.md §4.4.5): for each
// upvalue descriptor, either capture the enclosing frame's local slot
// (reusing an existing open Upvalue over that slot if one exists) or reuse
// the current closure's own upvalue at that index, propagating capture
// across nesting.
func (vm *VM) opClosure(f *frame) {
	fnVal := vm.readConstant(f)
	fn := fnVal.AsObject().Func

	closure := &value.Closure{Func: fn, Upvalues: make([]*value.Upvalue, len(fn.Upvalues))}
	for i := range fn.Upvalues {
		isLocal := vm.readByte(f) != 0
		idx := int(vm.readByte(f))
		if isLocal {
			closure.Upvalues[i] = vm.captureUpvalue(f.basePointer + idx)
		} else {
			closure.Upvalues[i] = f.closure.Upvalues[idx]
		}
	}
	vm.push(value.NewClosure(closure))
}

// captureUpvalue returns the open Upvalue already pointing at slot, or
// inserts a new one, preserving the open-upvalue list's descending
// slot-index order (spec.md §4.4.5, §8 "strictly descending at all times").
func (vm *VM) captureUpvalue(slot int) *value.Upvalue {
	var prev *value.Upvalue
	cur := vm.openUpvalues
	for cur != nil && cur.SlotIndex > slot {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.SlotIndex == slot {
		return cur
	}

	created := &value.Upvalue{Open: true, Stack: &vm.stack, SlotIndex: slot, Next: cur}
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue with SlotIndex >= from, copying
// the live stack value into each before detaching it from the stack
// (spec.md §4.4.5 closeUpvalues, §8 "after closeUpvalues(k) the open list
// contains no node with slot-index >= k").
func (vm *VM) closeUpvalues(from int) {
	for vm.openUpvalues != nil && vm.openUpvalues.SlotIndex >= from {
		uv := vm.openUpvalues
		next := uv.Next
		uv.Close()
		vm.openUpvalues = next
	}
}

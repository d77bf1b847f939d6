package compiler

// local is a compile-time record of a stack slot bound to a name within the
// currently-compiling function (spec.md §4.3.3).
type local struct {
	name       string
	depth      int // -1 while uninitialized (declared but not yet markInitialized'd)
	isCaptured bool
}

// funcState holds the compiler state for one nested function being compiled
// (spec.md §4.3.4: "pushing a new FunctionInfo").
type funcState struct {
	enclosing *funcState

	fn       *funcBuilder
	funcType functionType

	locals     []local
	scopeDepth int

	upvalues []upvalueDesc

	loops []loopState
}

type upvalueDesc struct {
	isLocal bool
	index   int
}

type loopState struct {
	// breakJumps collects the offsets of JUMP placeholders emitted by
	// `break` inside this loop, patched once the loop closes (loop-exit
	// jump list, since bytecode here is linear rather than a block CFG).
	// `continue` needs no equivalent list: it always re-targets loopStart
	// directly via emitLoop, with no forward patch to resolve later.
	breakJumps []int
	// loopStart is the bytecode offset the loop's condition re-evaluates
	// from, the target for `continue` under most loop shapes; `for` rewires
	// continue to jump to the increment step instead (see forStatement).
	loopStart int
}

type functionType uint8

const (
	typeScript functionType = iota
	typeFunction
	typeMethod
	typeConstructor
)

// declareLocal registers name as a new local at the current scope depth,
// initially uninitialized (depth -1) until its initializer has been
// compiled (spec.md §4.3.3 "declareLocal inserts a slot with depth -1").
func (fs *funcState) declareLocal(name string) {
	fs.locals = append(fs.locals, local{name: name, depth: -1})
}

// markInitialized sets the most recently declared local's depth to the
// current scope depth, preventing self-reference in its own initializer
// (spec.md §4.3.3, §7 "Can't read local variable in its own initializer").
func (fs *funcState) markInitialized() {
	if fs.scopeDepth == 0 {
		return
	}
	fs.locals[len(fs.locals)-1].depth = fs.scopeDepth
}

// resolveLocal walks fs's locals high-to-low looking for name, returning
// its slot index or -1 if not found.
func (fs *funcState) resolveLocal(name string) int {
	for i := len(fs.locals) - 1; i >= 0; i-- {
		if fs.locals[i].name == name {
			return i
		}
	}
	return -1
}

// addUpvalue records (or dedups) an upvalue descriptor on fs, returning its
// index (spec.md §4.3.3 resolveUpvalue).
func (fs *funcState) addUpvalue(isLocal bool, index int) int {
	for i, uv := range fs.upvalues {
		if uv.isLocal == isLocal && uv.index == index {
			return i
		}
	}
	fs.upvalues = append(fs.upvalues, upvalueDesc{isLocal: isLocal, index: index})
	return len(fs.upvalues) - 1
}

// resolveUpvalue implements spec.md §4.3.3 step 2: if the enclosing
// function has name as a local, capture it directly (marking it captured so
// the VM knows to close it on scope exit); otherwise recurse into the
// enclosing function's own upvalues, propagating capture across arbitrary
// nesting depth.
func (fs *funcState) resolveUpvalue(name string) int {
	if fs.enclosing == nil {
		return -1
	}
	if slot := fs.enclosing.resolveLocal(name); slot != -1 {
		fs.enclosing.locals[slot].isCaptured = true
		return fs.addUpvalue(true, slot)
	}
	if idx := fs.enclosing.resolveUpvalue(name); idx != -1 {
		return fs.addUpvalue(false, idx)
	}
	return -1
}

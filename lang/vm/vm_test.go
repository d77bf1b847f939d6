package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andyyu8588/Luminous/lang/compiler"
	"github.com/andyyu8588/Luminous/lang/scanner"
	"github.com/andyyu8588/Luminous/lang/value"
	"github.com/andyyu8588/Luminous/lang/vm"
)

// run compiles and executes src, returning whatever it wrote to stdout.
func run(t *testing.T, src string) (string, error) {
	t.Helper()

	toks, err := scanner.New("t.lum", []byte(src), scanner.NewImportGraph()).Scan()
	require.NoError(t, err)

	fn, errs := compiler.Compile(toks, value.NewInterner())
	require.Empty(t, errs)

	var out bytes.Buffer
	machine := vm.New(&out, false, 0)
	runErr := machine.Run(fn)
	return out.String(), runErr
}

func TestArithmeticPrecedence(t *testing.T) {
	out, err := run(t, `print 3 + 4 * 2;`)
	require.NoError(t, err)
	require.Equal(t, "11\n", out)
}

func TestIfElse(t *testing.T) {
	out, err := run(t, `if (true) { print 1; } else { print 2; }`)
	require.NoError(t, err)
	require.Equal(t, "1\n", out)
}

func TestWhileLoop(t *testing.T) {
	out, err := run(t, `
i = 0;
while (i < 3) {
	print i;
	i = i + 1;
}
`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestForLoopExclusiveBound(t *testing.T) {
	out, err := run(t, `for (i from 0 to 3) { print i; }`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n", out)
}

func TestForLoopDescending(t *testing.T) {
	out, err := run(t, `for (i from 3 to 0 by -1) { print i; }`)
	require.NoError(t, err)
	require.Equal(t, "3\n2\n1\n", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, err := run(t, `
function fib(n) {
	if (n < 2) return n;
	return fib(n - 1) + fib(n - 2);
}
print fib(10);
`)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}

func TestClosureCounter(t *testing.T) {
	out, err := run(t, `
function make() {
	x = 0;
	function inc() {
		x = x + 1;
		return x;
	}
	return inc;
}
counter = make();
print counter();
print counter();
print counter();
`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n3\n", out)
}

func TestIndependentClosures(t *testing.T) {
	out, err := run(t, `
function make() {
	x = 0;
	function inc() {
		x = x + 1;
		return x;
	}
	return inc;
}
a = make();
b = make();
print a();
print a();
print b();
`)
	require.NoError(t, err)
	require.Equal(t, "1\n2\n1\n", out)
}

func TestClassConstructorAndMethod(t *testing.T) {
	out, err := run(t, `
class Counter {
	function constructor(n) {
		this.n = n;
	}
	function get() {
		return this.n;
	}
	function bump() {
		this.n = this.n + 1;
	}
}
c = Counter(5);
c.bump();
print c.get();
`)
	require.NoError(t, err)
	require.Equal(t, "6\n", out)
}

func TestSingleInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
class Animal {
	function constructor(name) {
		this.name = name;
	}
	function speak() {
		return this.name + " makes a sound";
	}
}
class Dog inherits Animal {
	function speak() {
		return super.speak() + ", specifically a bark";
	}
}
d = Dog("Rex");
print d.speak();
`)
	require.NoError(t, err)
	require.Equal(t, "Rex makes a sound, specifically a bark\n", out)
}

func TestPrivateFieldNotInheritedAcrossSubclass(t *testing.T) {
	out, err := run(t, `
class Animal {
	private secret;
	function constructor(s) {
		this.secret = s;
	}
	function reveal() {
		return this.secret;
	}
}
class Dog inherits Animal {
	function constructor(s) {
		super.constructor(s);
	}
	function peek() {
		return this.secret;
	}
}
d = Dog("shh");
print d.reveal();
print d.peek();
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can't access private field 'secret' outside its declaring class.")
	require.Equal(t, "shh\n", out)
}

func TestListLiteralAndIndex(t *testing.T) {
	out, err := run(t, `
xs = [1, 2, 3];
print xs;
print xs[1];
xs[1] = 99;
print xs;
`)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]\n2\n[1, 99, 3]\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "count: " + 5;`)
	require.NoError(t, err)
	require.Equal(t, "count: 5\n", out)
}

func TestDivisionByZeroProducesInf(t *testing.T) {
	out, err := run(t, `print 1 / 0;`)
	require.NoError(t, err)
	require.Equal(t, "+Inf\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, `print doesNotExist;`)
	require.Error(t, err)
}

func TestBreakAndContinue(t *testing.T) {
	out, err := run(t, `
for (i from 0 to 5) {
	if (i equals 2) continue;
	if (i equals 4) break;
	print i;
}
`)
	require.NoError(t, err)
	require.Equal(t, "0\n1\n3\n", out)
}

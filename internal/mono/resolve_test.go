package mono_test

import (
	"strings"
	"testing"

	"paw/internal/diag"
	"paw/internal/mono"
	"paw/internal/parser"
	"paw/internal/source"
	"paw/internal/types"
)

func resolveSource(t *testing.T, src string) (*types.Interner, *mono.Table, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.paw", []byte(src), source.FileVirtual)
	file, _ := fs.Get(id)

	bag := diag.NewBag(64)
	reporter := &diag.BagReporter{Bag: bag}
	prog := parser.ParseFile(file, reporter)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}

	in := types.NewInterner(source.NewInterner())
	table := mono.NewTable(in)
	mono.NewResolver(in, table, reporter).Run(prog)
	return in, table, bag
}

func mangledNames(table *mono.Table) []string {
	out := make([]string, 0, table.Len())
	for _, inst := range table.Instances() {
		out = append(out, table.MangledName(inst))
	}
	return out
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func TestResolver_InferFromCallSite(t *testing.T) {
	_, table, bag := resolveSource(t, `
fn identity<T>(x: T) -> T {
    return x;
}

fn main() {
    let a = identity(1);
    let b = identity("hi");
    let c = identity(2);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	names := mangledNames(table)
	if !contains(names, "identity_i32") {
		t.Errorf("missing identity_i32 in %v", names)
	}
	if !contains(names, "identity_string") {
		t.Errorf("missing identity_string in %v", names)
	}
	// identity(1) and identity(2) share one instance.
	if table.Len() != 2 {
		t.Errorf("Len = %d, want 2: %v", table.Len(), names)
	}
}

func TestResolver_ExplicitTypeArgs(t *testing.T) {
	_, table, bag := resolveSource(t, `
fn zero<T>() -> T {
    return 0;
}

fn main() {
    let a = zero<i64>();
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if _, ok := table.Lookup("zero_i64"); !ok {
		t.Errorf("missing zero_i64 in %v", mangledNames(table))
	}
}

func TestResolver_QualifiedCallRecordsStructAndMethod(t *testing.T) {
	_, table, bag := resolveSource(t, `
struct Vec<T> {
    len: i32,

    fn new() -> Vec<T> {
        return Vec<T> { len: 0 };
    }
}

fn main() {
    let v = Vec<i32>::new();
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	method, ok := table.Lookup("Vec_i32_new")
	if !ok {
		t.Fatalf("missing Vec_i32_new in %v", mangledNames(table))
	}
	if method.Kind != mono.InstanceMethod || method.Base != "Vec" || method.Method != "new" {
		t.Errorf("method record = %+v", method)
	}
	st, ok := table.Lookup("Vec_i32")
	if !ok {
		t.Fatalf("missing Vec_i32 in %v", mangledNames(table))
	}
	if st.Kind != mono.InstanceStruct {
		t.Errorf("struct record kind = %v", st.Kind)
	}
}

func TestResolver_MethodCallOnInferredReceiver(t *testing.T) {
	_, table, bag := resolveSource(t, `
struct Box<T> {
    value: T,

    fn get(self) -> T {
        return self.value;
    }
}

fn main() {
    let b = Box<i32> { value: 7 };
    let v = b.get();
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	names := mangledNames(table)
	if !contains(names, "Box_i32") {
		t.Errorf("missing Box_i32 in %v", names)
	}
	if !contains(names, "Box_i32_get") {
		t.Errorf("missing Box_i32_get in %v", names)
	}
}

func TestResolver_NestedInstanceArgument(t *testing.T) {
	_, table, bag := resolveSource(t, `
struct Vec<T> {
    len: i32,

    fn new() -> Vec<T> {
        return Vec<T> { len: 0 };
    }
}

fn main() {
    let m = Vec<Vec<i32>>::new();
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if _, ok := table.Lookup("Vec_Vec_i32_new"); !ok {
		t.Errorf("missing Vec_Vec_i32_new in %v", mangledNames(table))
	}
}

func TestResolver_InferenceFailure(t *testing.T) {
	_, _, bag := resolveSource(t, `
fn make<T>() -> T {
    return 0;
}

fn main() {
    let x = make();
}
`)
	if !bag.HasErrors() {
		t.Fatal("expected an inference error")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.MonoInferenceFailed {
			found = true
			if !strings.Contains(d.Message, "T") {
				t.Errorf("message does not name the parameter: %q", d.Message)
			}
		}
	}
	if !found {
		t.Errorf("no MonoInferenceFailed diagnostic in %v", bag.Items())
	}
}

func TestResolver_ArgumentCountMismatch(t *testing.T) {
	_, _, bag := resolveSource(t, `
fn pick<T>(a: T, b: T) -> T {
    return a;
}

fn main() {
    let x = pick(1);
}
`)
	if !bag.HasErrors() {
		t.Fatal("expected an arity error")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.MonoArgCountMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("no MonoArgCountMismatch diagnostic in %v", bag.Items())
	}
}

func TestResolver_GenericBodiesNotRecorded(t *testing.T) {
	_, table, bag := resolveSource(t, `
struct Vec<T> {
    len: i32,

    fn grow(self) -> i32 {
        return self.len;
    }
}

fn main() {
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	// Visiting the unspecialized body must not record parameter-typed
	// instances.
	if table.Len() != 0 {
		t.Errorf("Len = %d, want 0: %v", table.Len(), mangledNames(table))
	}
}

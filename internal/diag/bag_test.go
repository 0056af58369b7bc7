package diag_test

import (
	"testing"

	"paw/internal/diag"
	"paw/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	bag := diag.NewBag(2)
	if !bag.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 0, 1), "one")) {
		t.Fatal("first add rejected")
	}
	if !bag.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 1, 2), "two")) {
		t.Fatal("second add rejected")
	}
	if bag.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 2, 3), "three")) {
		t.Error("add past the limit accepted")
	}
	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2", bag.Len())
	}
}

func TestBagSeverityQueries(t *testing.T) {
	bag := diag.NewBag(8)
	bag.Add(diag.New(diag.SevWarning, diag.GenLoopContext, span(0, 0, 1), "warn"))
	if bag.HasErrors() {
		t.Error("warning counted as error")
	}
	if !bag.HasWarnings() {
		t.Error("warning not counted")
	}
	bag.Add(diag.NewError(diag.GenUndefinedVariable, span(0, 1, 2), "err"))
	if !bag.HasErrors() {
		t.Error("error not counted")
	}
}

func TestBagSortOrder(t *testing.T) {
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.SynUnexpectedToken, span(1, 0, 1), "second file"))
	bag.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 9, 10), "first file, later"))
	bag.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 2, 3), "first file, earlier"))
	bag.Sort()

	items := bag.Items()
	if items[0].Message != "first file, earlier" {
		t.Errorf("items[0] = %q", items[0].Message)
	}
	if items[1].Message != "first file, later" {
		t.Errorf("items[1] = %q", items[1].Message)
	}
	if items[2].Message != "second file" {
		t.Errorf("items[2] = %q", items[2].Message)
	}
}

func TestBagDedup(t *testing.T) {
	bag := diag.NewBag(8)
	bag.Add(diag.NewError(diag.GenUndefinedVariable, span(0, 4, 5), "dup"))
	bag.Add(diag.NewError(diag.GenUndefinedVariable, span(0, 4, 5), "dup"))
	bag.Add(diag.NewError(diag.GenUndefinedField, span(0, 4, 5), "other code"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Errorf("Len after Dedup = %d, want 2", bag.Len())
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := diag.NewBag(1)
	a.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 0, 1), "a"))
	b := diag.NewBag(2)
	b.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 1, 2), "b1"))
	b.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 2, 3), "b2"))

	a.Merge(b)
	if a.Len() != 3 {
		t.Errorf("Len after Merge = %d, want 3", a.Len())
	}
}

func TestBagReporter(t *testing.T) {
	bag := diag.NewBag(4)
	r := &diag.BagReporter{Bag: bag}
	diag.Error(r, diag.GenUndefinedFunction, span(0, 0, 3), "boom")
	diag.Warning(r, diag.GenLoopContext, span(0, 3, 4), "meh")

	items := bag.Items()
	if len(items) != 2 {
		t.Fatalf("Len = %d, want 2", len(items))
	}
	if items[0].Severity != diag.SevError || items[0].Code != diag.GenUndefinedFunction {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Severity != diag.SevWarning {
		t.Errorf("items[1] = %+v", items[1])
	}
}

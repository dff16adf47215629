package util

import (
	"testing"
)

func TestSetOf(t *testing.T) {
	s := SetOf("a", "b", "a", "c", "b")
	if len(s) != 3 {
		t.Errorf("expected 3 distinct elements, got %d", len(s))
	}
	if !s.Contains("a") || !s.Contains("b") || !s.Contains("c") {
		t.Error("set should contain all initial elements")
	}
}

func TestAddRemove(t *testing.T) {
	s := Set[int]{}
	s.Add(1)
	s.Add(2)
	s.Add(1) // duplicate
	s.Remove(2)
	s.Remove(99) // doesn't exist

	if !s.Contains(1) {
		t.Error("set should contain added element")
	}
	if s.Contains(2) {
		t.Error("set should not contain removed element")
	}
}

func TestIsEmpty(t *testing.T) {
	s := Set[int]{}
	if !s.IsEmpty() {
		t.Error("new set should be empty")
	}

	s.Add(1)
	if s.IsEmpty() {
		t.Error("set with elements should not be empty")
	}

	s.Remove(1)
	if !s.IsEmpty() {
		t.Error("set after removing all elements should be empty")
	}
}

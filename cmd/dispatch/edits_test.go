package main

import (
	"testing"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

func TestEditFlagsApply(t *testing.T) {
	var e editFlags
	for _, s := range []string{"Stealth.player=95", "Tech.auto_fail=65", "Combat.bonus=", "Social.name=Charm"} {
		if err := e.set(s); err != nil {
			t.Fatalf("set(%q): %v", s, err)
		}
	}
	_ = e.add("Luck")
	_ = e.remove("Perception")

	attrs := dispatch.DefaultAttributes()
	notes, err := e.apply(&attrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 0 {
		t.Fatalf("unexpected notes %v", notes)
	}
	if attrs[0].PlayerValue != 95 {
		t.Fatalf("Stealth player = %d", attrs[0].PlayerValue)
	}
	if attrs[2].AutoFail == nil || *attrs[2].AutoFail != 65 {
		t.Fatalf("Tech auto_fail = %v", attrs[2].AutoFail)
	}
	if attrs[1].Bonus != nil {
		t.Fatalf("Combat bonus should be cleared")
	}
	if attrs[3].Name != "Charm" {
		t.Fatalf("Social rename = %q", attrs[3].Name)
	}
	if len(attrs) != 5 || attrs[4].Name != "Luck" {
		t.Fatalf("want Perception replaced by Luck at the end, got %+v", attrs)
	}
}

func TestEditFlagsRemoveFloor(t *testing.T) {
	var e editFlags
	_ = e.remove("A")
	attrs := dispatch.Attributes{
		dispatch.NewAttribute("A", 50, 50),
		dispatch.NewAttribute("B", 50, 50),
		dispatch.NewAttribute("C", 50, 50),
	}
	notes, err := e.apply(&attrs)
	if err != nil {
		t.Fatal(err)
	}
	if len(attrs) != 3 || len(notes) != 1 {
		t.Fatalf("removal below the floor must be refused with a note: %d attrs, notes %v", len(attrs), notes)
	}
}

func TestEditFlagsErrors(t *testing.T) {
	var e editFlags
	if err := e.set("noequals"); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := e.set(".player=3"); err == nil {
		t.Fatalf("expected error for empty name")
	}

	attrs := dispatch.DefaultAttributes()
	for _, s := range []string{"Nobody.player=1", "Stealth.colour=1", "Stealth.player=abc"} {
		var bad editFlags
		if err := bad.set(s); err != nil {
			t.Fatalf("set(%q): %v", s, err)
		}
		if _, err := bad.apply(&attrs); err == nil {
			t.Fatalf("apply(%q) accepted", s)
		}
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

// edit is one attribute mutation from the command line.
type edit struct {
	op    string // "set", "add", "remove"
	name  string
	field string
	value string
}

// editFlags collects -set/-add/-remove in the order they were given.
type editFlags struct{ edits []edit }

func (e *editFlags) set(s string) error {
	target, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want Name.field=value, got %q", s)
	}
	i := strings.LastIndex(target, ".")
	if i <= 0 {
		return fmt.Errorf("want Name.field=value, got %q", s)
	}
	e.edits = append(e.edits, edit{op: "set", name: target[:i], field: target[i+1:], value: value})
	return nil
}

func (e *editFlags) add(s string) error {
	e.edits = append(e.edits, edit{op: "add", name: s})
	return nil
}

func (e *editFlags) remove(s string) error {
	e.edits = append(e.edits, edit{op: "remove", name: s})
	return nil
}

func indexOf(attrs dispatch.Attributes, name string) int {
	for i, a := range attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// apply runs the edits against attrs. Rejected removals are reported in
// the returned notes, not as errors.
func (e *editFlags) apply(attrs *dispatch.Attributes) (notes []string, err error) {
	for _, ed := range e.edits {
		switch ed.op {
		case "add":
			attrs.Add(ed.name)
			continue
		case "remove":
			i := indexOf(*attrs, ed.name)
			if i < 0 {
				return notes, fmt.Errorf("no attribute %q", ed.name)
			}
			if !attrs.Remove(i) {
				notes = append(notes, fmt.Sprintf("kept %s: at least %d attributes are required", ed.name, dispatch.MinAttributes))
			}
			continue
		}

		i := indexOf(*attrs, ed.name)
		if i < 0 {
			return notes, fmt.Errorf("no attribute %q", ed.name)
		}
		switch ed.field {
		case "name":
			attrs.SetName(i, ed.value)
		case "player", "task":
			v, err := strconv.Atoi(strings.TrimSpace(ed.value))
			if err != nil {
				return notes, fmt.Errorf("%s.%s: %w", ed.name, ed.field, err)
			}
			if ed.field == "player" {
				attrs.SetPlayerValue(i, v)
			} else {
				attrs.SetTaskValue(i, v)
			}
		case "auto_fail":
			attrs.SetAutoFail(i, dispatch.ParseThreshold(ed.value))
		case "bonus":
			attrs.SetBonus(i, dispatch.ParseThreshold(ed.value))
		default:
			return notes, fmt.Errorf("unknown field %q (name, player, task, auto_fail, bonus)", ed.field)
		}
	}
	return notes, nil
}

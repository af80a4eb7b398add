package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xtding233/dispatch-bounce/internal/dispatch"
)

const shippedDir = "../../config"

func TestShippedConfigsPassSchema(t *testing.T) {
	p := NewLoader(shippedDir).Paths()
	files := append(p.Files("dispatch", "vault"), p.TaskPath("dispatch", "escort"))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatal(err)
		}
		if err := CheckSchema(b); err != nil {
			t.Fatalf("%s: %v", filepath.Base(f), err)
		}
	}
}

func TestShippedDispatchScenario(t *testing.T) {
	l := NewLoader(shippedDir)
	_, eng, err := l.Resolve("dispatch", "", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	want := dispatch.DefaultConfig()
	if len(eng.Config.Attributes) != len(want.Attributes) {
		t.Fatalf("got %d attributes", len(eng.Config.Attributes))
	}
	for i, a := range eng.Config.Attributes {
		w := want.Attributes[i]
		if a.Name != w.Name || a.PlayerValue != w.PlayerValue || a.TaskValue != w.TaskValue {
			t.Fatalf("attribute %d = %+v, want %+v", i, a, w)
		}
	}
	if eng.Config.Physics != want.Physics {
		t.Fatalf("physics = %+v, want %+v", eng.Config.Physics, want.Physics)
	}
	if eng.Layout != dispatch.DefaultLayout() {
		t.Fatalf("layout = %+v", eng.Layout)
	}
}

func TestShippedVaultTask(t *testing.T) {
	l := NewLoader(shippedDir)
	_, eng, err := l.Resolve("dispatch", "vault", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	attrs := eng.Config.Attributes
	if eng.Config.Physics.MaxBounces != 10 {
		t.Fatalf("max bounces = %d", eng.Config.Physics.MaxBounces)
	}
	if attrs[2].Name != "Tech" || attrs[2].TaskValue != 90 || attrs[2].AutoFail == nil || *attrs[2].AutoFail != 65 {
		t.Fatalf("tech = %+v", attrs[2])
	}
	if _, ok := dispatch.CheckAutoFail(attrs); ok {
		t.Fatalf("tech 60 is below the 65 auto-fail threshold")
	}
	if !dispatch.CheckBonus(attrs) {
		t.Fatalf("perception 85 meets the 80 bonus threshold")
	}
	if eng.Version != "1-vault" {
		t.Fatalf("version = %q", eng.Version)
	}
}

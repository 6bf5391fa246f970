package plugin

import (
	"testing"
)

// TestRegistryRegister tests plugin registration.
func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()

	p := Plugin{Name: "test-plugin"}
	if err := registry.Register(p); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if !registry.Has("test-plugin") {
		t.Error("Plugin should be registered")
	}

	if err := registry.Register(p); err == nil {
		t.Error("Should not allow duplicate registration")
	}
}

// TestRegistryRejectsUnnamed tests registering a plugin without a name.
func TestRegistryRejectsUnnamed(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(Plugin{}); err == nil {
		t.Error("Should not allow plugin without a name")
	}
}

// TestRegistryGet tests retrieving plugins.
func TestRegistryGet(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(Plugin{Name: "test-plugin"}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	p, err := registry.Get("test-plugin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if p.Name != "test-plugin" {
		t.Errorf("Got wrong plugin: %s", p.Name)
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("Get() should fail for unknown plugin")
	}
}

// TestRegistryResolveOrder tests that Resolve preserves the name order.
func TestRegistryResolveOrder(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		if err := registry.Register(Plugin{Name: name}); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	plugins, err := registry.Resolve([]string{"c", "a", "b"})
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}

	got := make([]string, len(plugins))
	for i, p := range plugins {
		got[i] = p.Name
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resolve order mismatch: got %v, want %v", got, want)
			break
		}
	}
}

// TestRegistryResolveUnknown tests that unknown names fail resolution.
func TestRegistryResolveUnknown(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Resolve([]string{"missing"}); err == nil {
		t.Error("Resolve() should fail for unknown plugin name")
	}
}

// TestCheckpointIsValid tests checkpoint validation.
func TestCheckpointIsValid(t *testing.T) {
	valid := []Checkpoint{CheckpointConfiguration, CheckpointBeforeBuild, CheckpointAfterBuild, CheckpointBundle}
	for _, c := range valid {
		if !c.IsValid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Checkpoint("nope").IsValid() {
		t.Error("unknown checkpoint should be invalid")
	}
}

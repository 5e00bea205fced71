package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c := Config{Backend: BackendFlatFile, DataDir: "/tmp/data"}
		if err := c.Validate(); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("empty backend", func(t *testing.T) {
		if err := (Config{}).Validate(); !errors.Is(err, ErrBackendEmpty) {
			t.Fatalf("expected ErrBackendEmpty, got %v", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		c := Config{Backend: "postgres"}
		if err := c.Validate(); !errors.Is(err, ErrBackendUnknown) {
			t.Fatalf("expected ErrBackendUnknown, got %v", err)
		}
	})
}

func TestTableExtension(t *testing.T) {
	if ext := (Config{}).TableExtension(); ext != ".csv" {
		t.Fatalf("expected .csv default, got %q", ext)
	}
	if ext := (Config{Extension: ".txt"}).TableExtension(); ext != ".txt" {
		t.Fatalf("expected .txt, got %q", ext)
	}
}

func TestRowRef(t *testing.T) {
	ref := ByPosition(3)
	if pos, ok := ref.Position(); !ok || pos != 3 {
		t.Fatalf("positional ref broken: %v %v", pos, ok)
	}
	if _, ok := ref.ID(); ok {
		t.Fatal("positional ref must not carry an id")
	}

	ref = ByID("17")
	if id, ok := ref.ID(); !ok || id != "17" {
		t.Fatalf("identity ref broken: %v %v", id, ok)
	}
	if ref.String() != "id=17" {
		t.Fatalf("unexpected String: %s", ref.String())
	}
}

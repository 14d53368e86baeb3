package storage

import "testing"

func TestNewStoreKinds(t *testing.T) {
	if store, err := NewStore("", ""); err != nil {
		t.Fatalf("default store: %v", err)
	} else if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("default store type %T, want *MemoryStore", store)
	}

	if store, err := NewStore("memory", ""); err != nil {
		t.Fatalf("memory store: %v", err)
	} else if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("memory store type %T, want *MemoryStore", store)
	}

	if store, err := NewStore("sqlite", "rmss.db"); err != nil {
		t.Fatalf("sqlite store: %v", err)
	} else if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("sqlite store type %T, want *SQLiteStore", store)
	}

	if _, err := NewStore("redis", ""); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

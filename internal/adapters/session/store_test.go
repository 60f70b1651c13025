package session

import "testing"

func TestStore(t *testing.T) {
	t.Run("bind and get", func(t *testing.T) {
		s := NewStore()
		if _, ok := s.Get("v1", "e1"); ok {
			t.Fatal("empty store returned a binding")
		}
		s.Bind("v1", "e1", "r1")
		if id, ok := s.Get("v1", "e1"); !ok || id != "r1" {
			t.Fatalf("Get = %q/%v, want r1", id, ok)
		}
		if _, ok := s.Get("v1", "e2"); ok {
			t.Fatal("binding leaked to another event")
		}
		if _, ok := s.Get("v2", "e1"); ok {
			t.Fatal("binding leaked to another visitor")
		}
	})

	t.Run("independent bindings per event", func(t *testing.T) {
		s := NewStore()
		s.Bind("v1", "e1", "r1")
		s.Bind("v1", "e2", "r2")
		if id, _ := s.Get("v1", "e1"); id != "r1" {
			t.Errorf("e1 binding = %q, want r1", id)
		}
		if id, _ := s.Get("v1", "e2"); id != "r2" {
			t.Errorf("e2 binding = %q, want r2", id)
		}
	})

	t.Run("ended binding misses on Get but resolves on Peek", func(t *testing.T) {
		s := NewStore()
		s.Bind("v1", "e1", "r1")
		s.End("v1", "e1")
		if _, ok := s.Get("v1", "e1"); ok {
			t.Fatal("ended binding still active")
		}
		if id, ok := s.Peek("v1", "e1"); !ok || id != "r1" {
			t.Fatalf("Peek = %q/%v, want r1", id, ok)
		}
	})

	t.Run("rebinding revives an ended pair", func(t *testing.T) {
		s := NewStore()
		s.Bind("v1", "e1", "r1")
		s.End("v1", "e1")
		s.Bind("v1", "e1", "r2")
		if id, ok := s.Get("v1", "e1"); !ok || id != "r2" {
			t.Fatalf("Get = %q/%v, want r2", id, ok)
		}
	})

	t.Run("ending an unknown pair is a no-op", func(t *testing.T) {
		s := NewStore()
		s.End("v1", "e1")
		if _, ok := s.Peek("v1", "e1"); ok {
			t.Fatal("End created a binding")
		}
	})
}

package subscriber

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()
	fileStore, err := NewFileStore(filepath.Join(dir, "subscribed_users.txt"))
	if err != nil {
		t.Fatal(err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "subscribers.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqliteStore.Close() })
	return map[string]Store{"file": fileStore, "sqlite": sqliteStore}
}

func TestStore_AddRemove(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if added, err := s.Add("U1"); err != nil || !added {
				t.Fatalf("Add(U1): expected (true, nil), got (%v, %v)", added, err)
			}
			if added, err := s.Add("U1"); err != nil || added {
				t.Errorf("Add(U1) again: expected (false, nil), got (%v, %v)", added, err)
			}
			s.Add("U2")
			s.Add("U3")

			if ok, _ := s.Contains("U2"); !ok {
				t.Error("expected U2 to be subscribed")
			}
			if removed, err := s.Remove("U2"); err != nil || !removed {
				t.Errorf("Remove(U2): expected (true, nil), got (%v, %v)", removed, err)
			}
			if removed, _ := s.Remove("U2"); removed {
				t.Error("Remove(U2) again: expected false")
			}

			ids, err := s.List()
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(ids, []string{"U1", "U3"}) {
				t.Errorf("expected [U1 U3], got %v", ids)
			}
			if n, _ := s.Count(); n != 2 {
				t.Errorf("expected count 2, got %d", n)
			}
			if _, err := s.Add(""); err != ErrEmptyUserID {
				t.Errorf("expected ErrEmptyUserID, got %v", err)
			}
		})
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := s.Add("U-same"); err != nil {
						t.Errorf("Add() error = %v", err)
					}
				}()
			}
			wg.Wait()
			if n, _ := s.Count(); n != 1 {
				t.Errorf("expected a single subscriber, got %d", n)
			}
		})
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribed_users.txt")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Add("Ua")
	s.Add("Ub")

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	ids, _ := reopened.List()
	if !reflect.DeepEqual(ids, []string{"Ua", "Ub"}) {
		t.Errorf("expected [Ua Ub], got %v", ids)
	}
}

func TestSQLiteStore_ImportLegacy(t *testing.T) {
	dir := t.TempDir()
	legacy := filepath.Join(dir, "subscribed_users.txt")
	if err := os.WriteFile(legacy, []byte("U1\n\nU2\nU1\n  U3  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewSQLiteStore(filepath.Join(dir, "subscribers.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Add("U2")

	n, err := s.ImportLegacy(legacy)
	if err != nil {
		t.Fatalf("ImportLegacy() error = %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 new subscribers, got %d", n)
	}
	if _, err := os.Stat(legacy + ".imported"); err != nil {
		t.Errorf("expected legacy file to be renamed: %v", err)
	}

	// second run finds no file
	if n, err := s.ImportLegacy(legacy); n != 0 || err != nil {
		t.Errorf("expected (0, nil) on second import, got (%d, %v)", n, err)
	}
	if count, _ := s.Count(); count != 3 {
		t.Errorf("expected 3 subscribers, got %d", count)
	}
}

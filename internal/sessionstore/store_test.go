package sessionstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"surfapp/internal/models"
)

func kvBackends(t *testing.T) map[string]KV {
	t.Helper()
	bkv, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() { bkv.Close() })

	kvs := map[string]KV{
		"memory": NewMemoryKV(),
		"badger": bkv,
	}
	if addr := os.Getenv("SURFAPP_TEST_REDIS_ADDR"); addr != "" {
		rkv, err := DialRedis(context.Background(), addr, "", 0)
		if err != nil {
			t.Fatalf("DialRedis() error = %v", err)
		}
		t.Cleanup(func() { rkv.Close() })
		kvs["redis"] = rkv
	}
	return kvs
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: "u-1", Email: "kai@example.com", Name: "Kai", Role: models.RoleSurfer}

	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(kv)
			_ = s.Clear(ctx)

			if _, err := s.Load(ctx); !errors.Is(err, ErrNoSession) {
				t.Fatalf("empty Load() err = %v; want ErrNoSession", err)
			}

			if err := s.Save(ctx, "tok-1", user); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			rec, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if rec.Token != "tok-1" || rec.User.ID != "u-1" || rec.User.Role != models.RoleSurfer {
				t.Errorf("Load() = %+v", rec)
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if _, err := s.Load(ctx); !errors.Is(err, ErrNoSession) {
				t.Errorf("after Clear err = %v; want ErrNoSession", err)
			}
			if err := s.Clear(ctx); err != nil {
				t.Errorf("clearing twice should succeed, got %v", err)
			}
		})
	}
}

func TestStoreIncomplete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		values map[string][]byte
	}{
		{"token only", map[string][]byte{TokenKey: []byte("tok")}},
		{"user only", map[string][]byte{UserKey: []byte(`{"id":"u-1"}`)}},
		{"corrupt user", map[string][]byte{TokenKey: []byte("tok"), UserKey: []byte("{not json")}},
		{"user without id", map[string][]byte{TokenKey: []byte("tok"), UserKey: []byte(`{"name":"x"}`)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := NewMemoryKV()
			for k, v := range tc.values {
				kv.Put(k, v)
			}
			_, err := New(kv).Load(ctx)
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("err = %v; want ErrIncomplete", err)
			}
		})
	}
}

func TestSaveFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	kv.FailWrites = errors.New("disk full")

	err := New(kv).Save(ctx, "tok", models.User{ID: "u-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	kv.FailWrites = nil
	if _, err := New(kv).Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v; want ErrNoSession", err)
	}
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	if err := New(NewMemoryKV()).Save(context.Background(), "", models.User{ID: "u-1"}); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestBadgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := OpenBadger(dir)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	if err := New(kv).Save(ctx, "tok-durable", models.User{ID: "u-9", Name: "Mar"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	kv, err = OpenBadger(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer kv.Close()

	rec, err := New(kv).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rec.Token != "tok-durable" || rec.User.Name != "Mar" {
		t.Errorf("Load() = %+v", rec)
	}
}

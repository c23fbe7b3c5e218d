package session

import (
	"fmt"
	"sync"
	"testing"
)

// TestSetGet 属性の保存と取得
func TestSetGet(t *testing.T) {
	registry := NewRegistry()

	registry.Set("conn-1", "username", "alice")

	value, ok := registry.Get("conn-1", "username")
	if !ok || value != "alice" {
		t.Errorf("Expected username=alice, got %q (ok=%v)", value, ok)
	}

	if _, ok := registry.Get("conn-1", "missing"); ok {
		t.Error("Unknown key should not be found")
	}
	if _, ok := registry.Get("conn-2", "username"); ok {
		t.Error("Unknown connection should not be found")
	}
}

// TestSet_Overwrite 同一キーへの再設定は上書き
func TestSet_Overwrite(t *testing.T) {
	registry := NewRegistry()

	registry.Set("conn-1", "username", "alice")
	registry.Set("conn-1", "username", "bob")

	value, _ := registry.Get("conn-1", "username")
	if value != "bob" {
		t.Errorf("Expected overwritten value bob, got %q", value)
	}
}

// TestRemove 単一属性の削除は他の属性に影響しない
func TestRemove(t *testing.T) {
	registry := NewRegistry()

	registry.Set("conn-1", "username", "alice")
	registry.Set("conn-1", "locale", "en")

	registry.Remove("conn-1", "username")

	if _, ok := registry.Get("conn-1", "username"); ok {
		t.Error("Removed attribute should not be found")
	}
	if value, ok := registry.Get("conn-1", "locale"); !ok || value != "en" {
		t.Error("Remaining attributes should survive Remove")
	}
}

// TestRelease 接続の全属性を破棄
func TestRelease(t *testing.T) {
	registry := NewRegistry()

	registry.Set("conn-1", "username", "alice")
	registry.Set("conn-2", "username", "bob")

	registry.Release("conn-1")

	if _, ok := registry.Get("conn-1", "username"); ok {
		t.Error("Released connection should have no attributes")
	}
	if _, ok := registry.Get("conn-2", "username"); !ok {
		t.Error("Other connections should be unaffected by Release")
	}

	// 未知の接続のReleaseはno-op
	registry.Release("conn-9")
}

// TestConcurrentAccess 並行アクセス安全性
func TestConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("conn-%d", i)
			registry.Set(connID, "username", fmt.Sprintf("user-%d", i))
			registry.Get(connID, "username")
			registry.Release(connID)
		}(i)
	}
	wg.Wait()
}

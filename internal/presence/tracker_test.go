package presence

import (
	"fmt"
	"sync"
	"testing"
)

// TestAddConnection_FirstConnection 初回接続のみtrueを返すことを確認
func TestAddConnection_FirstConnection(t *testing.T) {
	tracker := NewTracker()

	if !tracker.AddConnection("alice", "conn-1") {
		t.Error("First connection for alice should report a transition")
	}

	if tracker.AddConnection("alice", "conn-2") {
		t.Error("Second connection for alice should not report a transition")
	}

	identities := tracker.ConnectedIdentities()
	if len(identities) != 1 || identities[0] != "alice" {
		t.Errorf("Expected exactly [alice], got %v", identities)
	}
}

// TestAddConnection_EmptyInput 空入力はno-opでfalse
func TestAddConnection_EmptyInput(t *testing.T) {
	tracker := NewTracker()

	if tracker.AddConnection("", "conn-1") {
		t.Error("Empty identity should be a no-op returning false")
	}
	if tracker.AddConnection("alice", "") {
		t.Error("Empty connID should be a no-op returning false")
	}
	if len(tracker.ConnectedIdentities()) != 0 {
		t.Error("No-op adds must not register anything")
	}
}

// TestAddConnection_Duplicate 同一connIDの再追加は重複しない
func TestAddConnection_Duplicate(t *testing.T) {
	tracker := NewTracker()

	tracker.AddConnection("alice", "conn-1")
	if tracker.AddConnection("alice", "conn-1") {
		t.Error("Re-adding the same connID should not report a transition")
	}

	// The duplicated add must not inflate the live set: removing the one
	// real connection has to take alice offline.
	if !tracker.RemoveConnection("alice", "conn-1") {
		t.Error("Removing the only connection should report an offline transition")
	}
	if tracker.IsOnline("alice") {
		t.Error("alice should be offline after her single connection is removed")
	}
}

// TestRemoveConnection_LastConnection 最後の接続削除のみtrueを返す
func TestRemoveConnection_LastConnection(t *testing.T) {
	tracker := NewTracker()

	tracker.AddConnection("alice", "conn-1")
	tracker.AddConnection("alice", "conn-2")

	if tracker.RemoveConnection("alice", "conn-1") {
		t.Error("Removing one of two connections should not report a transition")
	}
	if !tracker.IsOnline("alice") {
		t.Error("alice should still be online with conn-2 live")
	}

	if !tracker.RemoveConnection("alice", "conn-2") {
		t.Error("Removing the last connection should report a transition")
	}
	if tracker.IsOnline("alice") {
		t.Error("alice should be offline after all connections are removed")
	}
}

// TestRemoveConnection_Idempotent 既に削除済み・未登録の削除はno-op
func TestRemoveConnection_Idempotent(t *testing.T) {
	tracker := NewTracker()

	tracker.AddConnection("alice", "conn-1")
	if !tracker.RemoveConnection("alice", "conn-1") {
		t.Error("First removal should report an offline transition")
	}
	if tracker.RemoveConnection("alice", "conn-1") {
		t.Error("Second removal of the same connection should be a no-op returning false")
	}
	if tracker.IsOnline("alice") {
		t.Error("alice must stay offline after repeated removals")
	}

	if tracker.RemoveConnection("ghost", "conn-9") {
		t.Error("Removing a connection for an unknown identity should return false")
	}
}

// TestConnectedIdentities_SnapshotIsIndependent スナップショットは後続の変更の影響を受けない
func TestConnectedIdentities_SnapshotIsIndependent(t *testing.T) {
	tracker := NewTracker()

	tracker.AddConnection("alice", "conn-1")
	tracker.AddConnection("bob", "conn-2")

	snapshot := tracker.ConnectedIdentities()
	if len(snapshot) != 2 {
		t.Fatalf("Expected 2 identities in snapshot, got %d", len(snapshot))
	}

	tracker.RemoveConnection("bob", "conn-2")

	if len(snapshot) != 2 {
		t.Errorf("Snapshot changed after tracker mutation: %v", snapshot)
	}
	if len(tracker.ConnectedIdentities()) != 1 {
		t.Error("Tracker itself should only have alice left")
	}
}

// TestNetConnectionCount 追加と削除の純増がある限りオンライン
func TestNetConnectionCount(t *testing.T) {
	tracker := NewTracker()

	for i := 0; i < 5; i++ {
		tracker.AddConnection("alice", fmt.Sprintf("conn-%d", i))
	}
	for i := 0; i < 4; i++ {
		tracker.RemoveConnection("alice", fmt.Sprintf("conn-%d", i))
	}

	if !tracker.IsOnline("alice") {
		t.Error("alice should be online with one net connection remaining")
	}

	tracker.RemoveConnection("alice", "conn-4")
	if tracker.IsOnline("alice") {
		t.Error("alice should be offline once every connection is removed")
	}
}

// TestConcurrentAddRemove 並行アクセスでも遷移が正確に1回ずつ観測される
func TestConcurrentAddRemove(t *testing.T) {
	tracker := NewTracker()

	const workers = 50
	var wg sync.WaitGroup
	transitions := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			transitions <- tracker.AddConnection("alice", fmt.Sprintf("conn-%d", i))
		}(i)
	}
	wg.Wait()
	close(transitions)

	onlineTransitions := 0
	for first := range transitions {
		if first {
			onlineTransitions++
		}
	}
	if onlineTransitions != 1 {
		t.Errorf("Expected exactly 1 online transition across concurrent adds, got %d", onlineTransitions)
	}

	offline := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			offline <- tracker.RemoveConnection("alice", fmt.Sprintf("conn-%d", i))
		}(i)
	}
	wg.Wait()
	close(offline)

	offlineTransitions := 0
	for last := range offline {
		if last {
			offlineTransitions++
		}
	}
	if offlineTransitions != 1 {
		t.Errorf("Expected exactly 1 offline transition across concurrent removes, got %d", offlineTransitions)
	}
	if tracker.IsOnline("alice") {
		t.Error("alice should be offline after all concurrent removals")
	}
}

package websocket

import (
	"encoding/json"
	"testing"
)

func TestHubBroadcastReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()
	target := &Client{send: make(chan []byte, 1)}
	other := &Client{send: make(chan []byte, 1)}
	hub.Register("user-1", target)
	hub.Register("user-2", other)

	hub.BroadcastBalance("user-1", BalanceUpdate{Asset: "COIN", Balance: "50.00"})

	select {
	case payload := <-target.send:
		var update BalanceUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if update.Asset != "COIN" || update.Balance != "50.00" {
			t.Fatalf("unexpected update: %+v", update)
		}
	default:
		t.Fatalf("expected a message for user-1")
	}
	select {
	case <-other.send:
		t.Fatalf("user-2 must not receive user-1 updates")
	default:
	}
}

func TestHubBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{send: make(chan []byte)}
	hub.Register("user-1", slow)

	// Unbuffered channel with no reader: the send must not block.
	hub.BroadcastBalance("user-1", BalanceUpdate{Asset: "COIN", Balance: "1.00"})
}

func TestHubUnregisterRemovesClient(t *testing.T) {
	hub := NewHub()
	client := &Client{send: make(chan []byte, 1)}
	hub.Register("user-1", client)
	hub.Unregister("user-1", client)

	hub.BroadcastBalance("user-1", BalanceUpdate{Asset: "TOKEN", Balance: "10.00"})
	select {
	case <-client.send:
		t.Fatalf("unregistered client must not receive updates")
	default:
	}
}

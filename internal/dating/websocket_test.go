package dating

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubNotifyAfterShutdownDoesNotBlock(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	hub.Shutdown()

	returned := make(chan struct{})
	go func() {
		hub.NotifyMatch(&Match{ID: "m1", User1ID: "alice", User2ID: "bob"})
		hub.NotifyStandoutsReady("alice")
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("notification blocked after hub shutdown")
	}
}

func TestHubNotifyMatchReachesBothSides(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Shutdown()

	alice := &Client{hub: hub, userID: "alice", send: make(chan Message, 4)}
	bob := &Client{hub: hub, userID: "bob", send: make(chan Message, 4)}
	hub.register <- alice
	hub.register <- bob

	hub.NotifyMatch(&Match{ID: "m1", User1ID: "alice", User2ID: "bob"})

	for _, c := range []*Client{alice, bob} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "new_match", msg.Type)
			assert.Equal(t, c.userID, msg.UserID)
		case <-time.After(time.Second):
			t.Fatalf("no message delivered to %s", c.userID)
		}
	}
}

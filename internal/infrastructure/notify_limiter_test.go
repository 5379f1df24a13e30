package infrastructure

import "testing"

func TestNotifyLimiterBurstThenBlocks(t *testing.T) {
	nl := NewNotifyLimiter(0.0001, 2)

	if !nl.Allow("5491155551234") {
		t.Fatal("first alert blocked")
	}
	if !nl.Allow("5491155551234") {
		t.Fatal("second alert blocked within burst")
	}
	if nl.Allow("5491155551234") {
		t.Error("third alert allowed past burst")
	}
}

func TestNotifyLimiterPerPhone(t *testing.T) {
	nl := NewNotifyLimiter(0.0001, 1)

	if !nl.Allow("111") {
		t.Fatal("first phone blocked")
	}
	if nl.Allow("111") {
		t.Error("same phone allowed past burst")
	}
	if !nl.Allow("222") {
		t.Error("different phone should have its own bucket")
	}
}

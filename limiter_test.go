package nouvelles

import (
	"testing"
	"time"
)

func TestLoginLimiterAllowsUpToMax(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("attempt over the limit should be denied")
	}
}

func TestLoginLimiterPerIP(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)

	if !l.Allow("10.0.0.1") {
		t.Fatal("first attempt from first IP should be allowed")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other IPs have their own budget")
	}
	if l.Allow("10.0.0.1") {
		t.Error("second attempt from first IP should be denied")
	}
}

func TestLoginLimiterWindowReset(t *testing.T) {
	l := NewLoginLimiter(1, 20*time.Millisecond)

	if !l.Allow("10.0.0.1") {
		t.Fatal("first attempt should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("second attempt should be denied")
	}

	time.Sleep(30 * time.Millisecond)

	if !l.Allow("10.0.0.1") {
		t.Error("attempt after the window expires should be allowed")
	}
}

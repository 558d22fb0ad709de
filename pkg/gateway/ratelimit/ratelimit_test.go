package ratelimit

import (
	"testing"
	"time"
)

func TestAllowRequest_BurstThenThrottle(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 2})
	now := time.Unix(1000, 0)

	if d := l.AllowRequest("u1", now); !d.Allowed {
		t.Fatal("first request denied")
	}
	if d := l.AllowRequest("u1", now); !d.Allowed {
		t.Fatal("second request denied")
	}
	d := l.AllowRequest("u1", now)
	if d.Allowed {
		t.Fatal("third request should exceed burst")
	}
	if d.RetryAfter < 1 {
		t.Errorf("retry after = %d", d.RetryAfter)
	}

	// Tokens refill with time.
	if d := l.AllowRequest("u1", now.Add(2*time.Second)); !d.Allowed {
		t.Error("request after refill denied")
	}
}

func TestAllowRequest_UsersAreIndependent(t *testing.T) {
	l := New(Config{RPS: 1, Burst: 1})
	now := time.Unix(1000, 0)

	if d := l.AllowRequest("u1", now); !d.Allowed {
		t.Fatal("u1 denied")
	}
	if d := l.AllowRequest("u2", now); !d.Allowed {
		t.Error("u2 throttled by u1's bucket")
	}
}

func TestAllowRequest_DisabledWhenUnconfigured(t *testing.T) {
	l := New(Config{})
	for range 100 {
		if d := l.AllowRequest("u1", time.Now()); !d.Allowed {
			t.Fatal("limiter active without RPS/Burst")
		}
	}
}

func TestAcquireLiveSession_CapAndRelease(t *testing.T) {
	l := New(Config{MaxLiveSessions: 1})
	now := time.Unix(1000, 0)

	d1 := l.AcquireLiveSession("u1", now)
	if !d1.Allowed {
		t.Fatal("first session denied")
	}
	if d := l.AcquireLiveSession("u1", now); d.Allowed {
		t.Fatal("second concurrent session allowed")
	}

	d1.Permit.Release()
	d1.Permit.Release() // idempotent
	if d := l.AcquireLiveSession("u1", now); !d.Allowed {
		t.Error("session denied after release")
	}
}

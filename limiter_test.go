package main

import (
	"testing"
	"time"
)

func TestIPLimiterAllowsBurstThenRejects(t *testing.T) {
	l := newIPLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !l.limiterFor("10.0.0.1").Allow() {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if l.limiterFor("10.0.0.1").Allow() {
		t.Fatal("request over the burst should be rejected")
	}

	// other clients are tracked independently
	if !l.limiterFor("10.0.0.2").Allow() {
		t.Fatal("a different IP must have its own budget")
	}
}

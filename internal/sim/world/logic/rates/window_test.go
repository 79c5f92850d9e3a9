package rates

import "testing"

func TestWindowAllow(t *testing.T) {
	w := Window{Ticks: 10, Max: 2}
	for i, want := range []bool{true, true, false} {
		if ok, _ := w.Allow(3); ok != want {
			t.Fatalf("call %d ok=%v want %v", i, ok, want)
		}
	}
	// The window opened on the first event at tick 3, so it reopens at 13.
	if ok, cd := w.Allow(8); ok || cd != 5 {
		t.Fatalf("tick 8: ok=%v cooldown=%d", ok, cd)
	}
	if ok, _ := w.Allow(13); !ok {
		t.Fatalf("expected window to reopen at tick 13")
	}
}

func TestZeroWindowAdmitsAll(t *testing.T) {
	var w Window
	for i := 0; i < 100; i++ {
		if ok, _ := w.Allow(0); !ok {
			t.Fatalf("zero window refused event %d", i)
		}
	}
}

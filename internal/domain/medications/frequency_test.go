package medications

import (
	"testing"
)

func TestResolveFrequency_ValidDescriptors(t *testing.T) {
	cases := []struct {
		descriptor string
		count      int
		times      []string
	}{
		{"1일 1회", 1, []string{"08:00"}},
		{"1일 2회", 2, []string{"08:00", "20:00"}},
		{"1일 3회", 3, []string{"08:00", "13:00", "19:00"}},
		{"1일 4회", 4, []string{"08:00", "12:00", "17:00", "21:00"}},
	}

	for _, tc := range cases {
		count, times, err := ResolveFrequency(tc.descriptor)
		if err != nil {
			t.Fatalf("ResolveFrequency(%q) error: %v", tc.descriptor, err)
		}
		if count != tc.count {
			t.Fatalf("ResolveFrequency(%q) count = %d, want %d", tc.descriptor, count, tc.count)
		}
		if len(times) != tc.count {
			t.Fatalf("ResolveFrequency(%q) len(times) = %d, want %d", tc.descriptor, len(times), tc.count)
		}
		for i := range times {
			if times[i] != tc.times[i] {
				t.Fatalf("ResolveFrequency(%q) times = %v, want %v", tc.descriptor, times, tc.times)
			}
		}
	}
}

func TestResolveFrequency_AsNeeded(t *testing.T) {
	count, times, err := ResolveFrequency(FrequencyAsNeeded)
	if err != nil {
		t.Fatalf("ResolveFrequency(필요시) error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count 0 for 필요시, got %d", count)
	}
	if len(times) != 0 {
		t.Fatalf("expected no default times for 필요시, got %v", times)
	}
}

func TestResolveFrequency_Invalid(t *testing.T) {
	for _, d := range []string{"", "1일 5회", "1일 0회", "2일 1회", "twice a day", "1일 회", "매일"} {
		if _, _, err := ResolveFrequency(d); err != ErrInvalidFrequency {
			t.Fatalf("ResolveFrequency(%q) = %v, want ErrInvalidFrequency", d, err)
		}
	}
}

func TestResolveFrequency_ReturnsCopy(t *testing.T) {
	_, times, err := ResolveFrequency("1일 2회")
	if err != nil {
		t.Fatalf("ResolveFrequency error: %v", err)
	}
	times[0] = "09:30"

	_, again, err := ResolveFrequency("1일 2회")
	if err != nil {
		t.Fatalf("ResolveFrequency error: %v", err)
	}
	if again[0] != "08:00" {
		t.Fatalf("default times table was mutated: %v", again)
	}
}

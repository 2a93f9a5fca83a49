package fixed

import "testing"

func TestFloorCeil(t *testing.T) {
	tests := []struct {
		name        string
		floor, ceil int
		gotFloor    int
		gotCeil     int
	}{
		{"UInt14_2 fraction", 2, 3, UInt14_2F(2.25).Floor(), UInt14_2F(2.25).Ceil()},
		{"UInt14_2 integer", 3, 3, UInt14_2U(3).Floor(), UInt14_2U(3).Ceil()},
		{"Int14_2 negative", -2, -1, Int14_2F(-1.25).Floor(), Int14_2F(-1.25).Ceil()},
		{"Int14_2 positive", 7, 8, Int14_2F(7.75).Floor(), Int14_2F(7.75).Ceil()},
		{"Int11_5 fraction", 0, 1, Int11_5F(0.03125).Floor(), Int11_5F(0.03125).Ceil()},
		{"Int11_5 integer", -4, -4, Int11_5U(-4).Floor(), Int11_5U(-4).Ceil()},
	}
	for _, tc := range tests {
		if tc.gotFloor != tc.floor || tc.gotCeil != tc.ceil {
			t.Errorf("%s: expected floor %d ceil %d, got %d %d", tc.name, tc.floor, tc.ceil, tc.gotFloor, tc.gotCeil)
		}
	}
}

func TestArithmetic(t *testing.T) {
	a, b := Int11_5F(1.5), Int11_5F(2)
	if got := a.Mul(b).Float(); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
	if got := a.Div(b).Float(); got != 0.75 {
		t.Errorf("expected 0.75, got %v", got)
	}
	if got := UInt14_2F(10.5).Mul(UInt14_2U(2)).Float(); got != 21 {
		t.Errorf("expected 21, got %v", got)
	}
	// conversion from float truncates to the next representable value
	if got := Int14_2F(0.3).Float(); got != 0.25 {
		t.Errorf("expected 0.25, got %v", got)
	}
}

func TestString(t *testing.T) {
	tests := map[string]string{
		UInt14_2F(2.25).String(): "2:1",
		Int11_5F(1.5).String():   "1:16",
		Int14_2U(-3).String():    "-3:0",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
}

package bplus

import "testing"

func TestCompareInt32(t *testing.T) {
	w := widthInt32
	a := EncodeInt32(5)
	b := EncodeInt32(10)
	if w.compare(a, b) >= 0 {
		t.Errorf("expected 5 < 10")
	}
	if w.compare(b, a) <= 0 {
		t.Errorf("expected 10 > 5")
	}
	if w.compare(a, a) != 0 {
		t.Errorf("expected 5 == 5")
	}
}

func TestCompareDouble(t *testing.T) {
	w := widthDouble
	a := EncodeDouble(1.5)
	b := EncodeDouble(2.5)
	if w.compare(a, b) >= 0 {
		t.Errorf("expected 1.5 < 2.5")
	}
}

func TestCompareString10(t *testing.T) {
	w := widthString10
	a := EncodeString10("alice")
	b := EncodeString10("bob")
	if w.compare(a, b) >= 0 {
		t.Errorf("expected alice < bob")
	}
}

func TestSentinelsRecognized(t *testing.T) {
	tests := []struct {
		name string
		w    *width
	}{
		{"int32", widthInt32},
		{"double", widthDouble},
		{"string10", widthString10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.w.isSentinel(tt.w.sentinel) {
				t.Errorf("width's own sentinel must compare equal to itself")
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	if got := DecodeInt32(EncodeInt32(-42)); got != -42 {
		t.Errorf("int32 roundtrip: got %d", got)
	}
	if got := DecodeDouble(EncodeDouble(3.14)); got != 3.14 {
		t.Errorf("double roundtrip: got %v", got)
	}
	if got := DecodeString10(EncodeString10("hello")); got != "hello" {
		t.Errorf("string10 roundtrip: got %q", got)
	}
}

func TestOccupancyPositive(t *testing.T) {
	for _, w := range []*width{widthInt32, widthDouble, widthString10} {
		if w.leafOcc <= 0 || w.nodeOcc <= 0 {
			t.Errorf("width %s has non-positive occupancy L=%d N=%d", w.attrType, w.leafOcc, w.nodeOcc)
		}
	}
}

package hashutil

import "testing"

func TestHashStable(t *testing.T) {
	a := Hash("file.txt")
	b := Hash("file.txt")
	if a != b {
		t.Fatalf("Hash not stable: %d != %d", a, b)
	}
	if Hash("a") == Hash("b") {
		t.Fatalf("Hash collided for distinct trivial inputs")
	}
}

func TestDJB2Stable(t *testing.T) {
	a := DJB2("file.txt")
	b := DJB2("file.txt")
	if a != b {
		t.Fatalf("DJB2 not stable: %d != %d", a, b)
	}
}

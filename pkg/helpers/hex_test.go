package helpers

import "testing"

func TestHexToBytesRoundtrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"with prefix", "0x01ab", []byte{0x01, 0xab}},
		{"without prefix", "01ab", []byte{0x01, 0xab}},
		{"empty", "", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HexToBytes(tt.in)
			if err != nil {
				t.Fatalf("HexToBytes(%q) error: %v", tt.in, err)
			}
			if !BytesEqual(got, tt.want) {
				t.Errorf("HexToBytes(%q) = %x, want %x", tt.in, got, tt.want)
			}
		})
	}
}

func TestBytesToHex(t *testing.T) {
	got := BytesToHex([]byte{0xde, 0xad, 0xbe, 0xef})
	want := "0xdeadbeef"
	if got != want {
		t.Errorf("BytesToHex = %s, want %s", got, want)
	}
}

func TestPadLeftRight(t *testing.T) {
	if got := PadLeft([]byte{1, 2}, 4); !BytesEqual(got, []byte{0, 0, 1, 2}) {
		t.Errorf("PadLeft = %x", got)
	}
	if got := PadRight([]byte{1, 2}, 4); !BytesEqual(got, []byte{1, 2, 0, 0}) {
		t.Errorf("PadRight = %x", got)
	}
	if got := PadLeft([]byte{1, 2, 3}, 2); !BytesEqual(got, []byte{1, 2, 3}) {
		t.Errorf("PadLeft with length < input should be unchanged, got %x", got)
	}
}

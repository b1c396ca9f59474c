package rf320

import (
	"bytes"
	"testing"
)

func TestEncode_Layout(t *testing.T) {
	got := Frame{Group: GroupButton, CommandID: CmdVolumeUp}.Encode()
	want := []byte{0xAB, 0x02, 0x0C, 0x12, 0xB9 + 0x12}
	if !bytes.Equal(got, want) {
		t.Fatalf("Encode() = % X, want % X", got, want)
	}
}

func TestEncode_ChecksumKnownVector(t *testing.T) {
	// AB 02 0C 14 ?? 的正确尾字节是 0xCD（0xB9+0x14）
	got := Frame{Group: GroupButton, CommandID: CmdTuneUp}.Encode()
	if got[4] != 0xCD {
		t.Fatalf("checksum = 0x%02X, want 0xCD", got[4])
	}
}

func TestEncode_AckGroupBase(t *testing.T) {
	got := Frame{Group: GroupAck, CommandID: CmdAckStatus}.Encode()
	if got[2] != 0x12 {
		t.Fatalf("group byte = 0x%02X, want 0x12", got[2])
	}
	if got[4] != 0xBF+0x01 {
		t.Fatalf("checksum = 0x%02X, want 0x%02X", got[4], 0xBF+0x01)
	}
}

func TestEncodeHandshake(t *testing.T) {
	got := EncodeHandshake()
	want := []byte{0xAB, 0x01, 0xFF, 0xAB}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeHandshake() = % X, want % X", got, want)
	}
	// 返回的是副本，修改不影响后续编码
	got[0] = 0x00
	if EncodeHandshake()[0] != 0xAB {
		t.Fatal("handshake literal mutated")
	}
}

func TestRoundTrip_AllKnownCommands(t *testing.T) {
	for _, group := range []Group{GroupButton, GroupAck} {
		for _, id := range KnownButtonIDs() {
			raw := Frame{Group: group, CommandID: id}.Encode()
			kind, ok := TryDecodeHeader(raw)
			if !ok {
				t.Fatalf("group=%s id=0x%02X: header rejected", group, id)
			}
			if kind != KindStatusShort {
				t.Fatalf("group=%s id=0x%02X: kind=%s", group, id, kind)
			}
			ev, err := decodeCommandEcho("dev", raw)
			if err != nil {
				t.Fatalf("decode echo: %v", err)
			}
			if ev.CommandEcho.Group != byte(group) || ev.CommandEcho.CommandID != id {
				t.Fatalf("round trip mismatch: got group=0x%02X id=0x%02X",
					ev.CommandEcho.Group, ev.CommandEcho.CommandID)
			}
		}
	}
}

func TestLongPress(t *testing.T) {
	tests := []struct {
		in   byte
		want byte
		ok   bool
	}{
		{CmdBand, 0x35, true},
		{CmdTuneUp, 0x49, true},
		{CmdTuneDown, CmdTuneDown, false},
		{CmdRecord, CmdRecord, false},
	}
	for _, tt := range tests {
		got, ok := LongPress(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("LongPress(0x%02X) = (0x%02X, %v), want (0x%02X, %v)",
				tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestKnownButton(t *testing.T) {
	if !KnownButton(CmdVolumeUp) || !KnownButton(0x49) {
		t.Fatal("known ids rejected")
	}
	if KnownButton(0x20) || KnownButton(0x4A) || KnownButton(0xFF) {
		t.Fatal("ids outside closed set accepted")
	}
}

func TestButtonByName(t *testing.T) {
	id, ok := ButtonByName("volume_up")
	if !ok || id != 0x12 {
		t.Fatalf("ButtonByName(volume_up) = (0x%02X, %v)", id, ok)
	}
	if _, ok := ButtonByName("no_such_button"); ok {
		t.Fatal("unexpected match")
	}
}

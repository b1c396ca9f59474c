package rf320

import "testing"

func TestDecodeBattery_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		raw     byte
		percent int
	}{
		{"满电", 0x07, 100},
		{"空电", 0x00, 0},
		{"整除截断", 0x02, 28}, // 2*100/7 = 28.57.. 截断为28
		{"超出刻度夹到100", 0x09, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := []byte{0xAB, 0x05, tt.raw, 0x00, 0x00, 0x00}
			ev, err := decodeBattery("dev", pkt)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Battery.Percent != tt.percent {
				t.Fatalf("percent = %d, want %d", ev.Battery.Percent, tt.percent)
			}
			if ev.Battery.Raw != tt.raw {
				t.Fatalf("raw = 0x%02X, want 0x%02X", ev.Battery.Raw, tt.raw)
			}
		})
	}
}

func TestDecodeVolume(t *testing.T) {
	pkt := []byte{0xAB, 0x05, 0x10, 0x0F, 0x00, 0x00}
	ev, err := decodeVolume("dev", pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Volume.Level != 15 {
		t.Fatalf("level = %d, want 15", ev.Volume.Level)
	}
}

func TestDecodeBandInfo_LittleEndianHz(t *testing.T) {
	// 103.70MHz = 0x062E5620，小端排列
	pkt := []byte{0xAB, 0x16, 0x02, 0x20, 0x56, 0x2E, 0x06, 0x01, 0x02, 0x03, 0x04, 0x00}
	ev, err := decodeBandInfo("dev", pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.BandInfo.FrequencyHz != 103700000 {
		t.Fatalf("freq = %d, want 103700000", ev.BandInfo.FrequencyHz)
	}
	if ev.BandInfo.BandCode != 0x02 || ev.BandInfo.SubBand4 != 0x04 {
		t.Fatalf("unexpected band fields: %+v", ev.BandInfo)
	}
}

func TestDecodeFrequencyStatus_BCD(t *testing.T) {
	// BCD 01 03 70 00 -> 1037000（0.1kHz单位，即103.7MHz），stereo 置位
	pkt := []byte{0xAB, 0x0D, 0x01, 0x03, 0x70, 0x00, 0x01, 0x00}
	ev, err := decodeFrequencyStatus("dev", pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.FrequencyStatus.FrequencyKHz10 != 1037000 {
		t.Fatalf("freq = %d, want 1037000", ev.FrequencyStatus.FrequencyKHz10)
	}
	if !ev.FrequencyStatus.Stereo {
		t.Fatal("stereo flag not set")
	}
}

func TestDecodeFrequencyStatus_BadNibble(t *testing.T) {
	// 0xAF 含非法BCD半字节，解码器报错（上层降级为 Unknown）
	pkt := []byte{0xAB, 0x0D, 0x01, 0xAF, 0x70, 0x00, 0x01, 0x00}
	if _, err := decodeFrequencyStatus("dev", pkt); err == nil {
		t.Fatal("expected error for bad bcd nibble")
	}
}

func TestAsciiField_Truncation(t *testing.T) {
	// textLen 声明 10 字节但只剩 3 字节：截断而非报错
	pkt := []byte{0xAB, 0x0A, 0x0A, '1', '0', '3'}
	ev, err := decodeFrequencyInput("dev", pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.FrequencyInput.Text != "103" {
		t.Fatalf("text = %q, want %q", ev.FrequencyInput.Text, "103")
	}
}

func TestAsciiField_ControlBytesPassThrough(t *testing.T) {
	// 协议不转义控制字符，原样透传
	pkt := []byte{0xAB, 0x0A, 0x03, 0x01, '\n', 0x7F}
	ev, err := decodeFrequencyInput("dev", pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.FrequencyInput.Text != "\x01\n\x7f" {
		t.Fatalf("text = %q", ev.FrequencyInput.Text)
	}
}

func TestDecodeTimeOfDay(t *testing.T) {
	pkt := []byte{0xAB, 0x09, 23, 59, 58, 0x00, 0x00, 0x00}
	ev, err := decodeTimeOfDay("dev", pkt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.TimeOfDay.Hour != 23 || ev.TimeOfDay.Minute != 59 || ev.TimeOfDay.Second != 58 {
		t.Fatalf("unexpected time: %+v", ev.TimeOfDay)
	}

	bad := []byte{0xAB, 0x09, 25, 0, 0, 0x00, 0x00, 0x00}
	if _, err := decodeTimeOfDay("dev", bad); err == nil {
		t.Fatal("expected error for hour 25")
	}
}

func TestDecodeIndexHalf_BigEndian(t *testing.T) {
	pkt := []byte{0xAB, 0x18, 0x1C, 0x06, 0x31, 0x00}
	h := decodeIndexHalf(pkt)
	if h.Index != 0x1C06 || h.Mode != 0x31 {
		t.Fatalf("index half = %+v", h)
	}
}

func TestDecodeInfoFragment_TerminalDetection(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		trailing byte
		terminal bool
	}{
		{"中间片段", "Radio version : ", 0x00, false},
		{"末片标记字节", "partial", 0xFF, true},
		{"文本含.com", "support@iraddy.com", 0x00, true},
		{"文本含.net", "mirror.example.net", 0x00, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := append([]byte{0xAB, 0x10, 0x01, byte(len(tt.text))}, tt.text...)
			pkt = append(pkt, tt.trailing)
			frag := decodeInfoFragment(pkt)
			if frag.Terminal != tt.terminal {
				t.Fatalf("terminal = %v, want %v", frag.Terminal, tt.terminal)
			}
			if frag.Text != tt.text {
				t.Fatalf("text = %q, want %q", frag.Text, tt.text)
			}
		})
	}
}

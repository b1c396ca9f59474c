package simulator

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// 回放脚本。CSV 每行一帧：第一列为十六进制字节串（可含空格），
// '#' 开头的行为注释。来源通常是从真实设备抓包转出的通知日志。

// LoadScriptCSV 从 CSV 文件读取回放脚本
func LoadScriptCSV(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseScriptCSV(f)
}

func parseScriptCSV(r io.Reader) ([]Frame, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	var script []Frame
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		raw, err := hex.DecodeString(strings.ReplaceAll(strings.TrimSpace(rec[0]), " ", ""))
		if err != nil {
			return nil, fmt.Errorf("script line %d: %w", line, err)
		}
		script = append(script, raw)
	}
	return script, nil
}

// DefaultScript 内置回放脚本：覆盖电量、音量、信号、波段、
// 频率配对与多片段设备信息，对应真实设备开机后的一轮状态广播。
func DefaultScript() []Frame {
	return []Frame{
		// 电量 raw=5
		{0xAB, 0x05, 0x05, 0x00, 0x00, 0x3A},
		// 音量标签（电量族的三字节子类型）level=8
		{0xAB, 0x05, 0x10, 0x08, 0x00, 0x3B},
		// 信号强度 level=12
		{0xAB, 0x07, 0x0C, 0x00, 0x00, 0x3C},
		// 波段信息：band=2, 103.70MHz（小端 Hz）
		{0xAB, 0x16, 0x02, 0x20, 0x56, 0x2E, 0x06, 0x01, 0x02, 0x03, 0x04, 0x3D},
		// 频率状态：BCD 01037000 -> 1037000 * 0.1kHz，stereo
		{0xAB, 0x0D, 0x01, 0x03, 0x70, 0x00, 0x01, 0x3E},
		// 频率配对：index 半包（index=0x1C06, mode=0x31）+ display 半包 "31"
		{0xAB, 0x18, 0x1C, 0x06, 0x31, 0x3F},
		{0xAB, 0x19, 0x02, 0x33, 0x31, 0x40},
		// 设备信息三片段，末片含 ".com"
		append(infoFrame(0x10, 0x01, "Radio version : "), 0x00),
		append(infoFrame(0x11, 0x02, "V4.0\nModel : "), 0x00),
		append(infoFrame(0x11, 0x03, "Raddy RF320\n\nsupport@iraddy.com"), 0xFF),
	}
}

// infoFrame 构造设备信息片段帧（不含尾字节）
func infoFrame(lenCode, partIdx byte, text string) []byte {
	out := []byte{0xAB, lenCode, partIdx, byte(len(text))}
	return append(out, text...)
}

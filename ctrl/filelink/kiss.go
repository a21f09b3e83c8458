package main

import (
	"bytes"
)

// KISS framing for the serial link: frames are delimited by FEND, with FEND
// and FESC bytes inside the payload escaped.
const (
	kissFEND    = 0xC0
	kissFESC    = 0xDB
	kissTFEND   = 0xDC
	kissTFESC   = 0xDD
	kissCmdData = 0x00
)

func escapeKISS(data []byte) []byte {
	var out bytes.Buffer
	for _, b := range data {
		switch b {
		case kissFEND:
			out.Write([]byte{kissFESC, kissTFEND})
		case kissFESC:
			out.Write([]byte{kissFESC, kissTFESC})
		default:
			out.WriteByte(b)
		}
	}
	return out.Bytes()
}

func unescapeKISS(data []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(data); i++ {
		if data[i] == kissFESC && i+1 < len(data) {
			i++
			switch data[i] {
			case kissTFEND:
				out.WriteByte(kissFEND)
			case kissTFESC:
				out.WriteByte(kissFESC)
			default:
				// invalid escape; keep the byte and let the checksum
				// catch the damage
				out.WriteByte(data[i])
			}
		} else {
			out.WriteByte(data[i])
		}
	}
	return out.Bytes()
}

func buildKISSFrame(payload []byte) []byte {
	frame := []byte{kissFEND, kissCmdData}
	frame = append(frame, escapeKISS(payload)...)
	return append(frame, kissFEND)
}

// frameExtractor accumulates raw serial bytes and splits out the payloads of
// complete KISS data frames.
type frameExtractor struct {
	buf []byte
}

func (f *frameExtractor) Push(data []byte) (payloads [][]byte) {
	f.buf = append(f.buf, data...)
	for {
		start := bytes.IndexByte(f.buf, kissFEND)
		if start < 0 {
			f.buf = nil
			return payloads
		}
		end := bytes.IndexByte(f.buf[start+1:], kissFEND)
		if end < 0 {
			f.buf = f.buf[start:]
			return payloads
		}
		frame := f.buf[start+1 : start+1+end]
		f.buf = f.buf[start+1+end:]
		if len(frame) >= 1 && frame[0] == kissCmdData {
			payloads = append(payloads, unescapeKISS(frame[1:]))
		}
	}
}

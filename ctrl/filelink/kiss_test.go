package main

import (
	"bytes"
	"testing"
)

func TestKISSEscapeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x01, 0x02, 0x03},
		{kissFEND},
		{kissFESC},
		{kissFEND, kissFESC, kissFEND, kissFESC},
		{0x00, kissFEND, 0x42, kissFESC, 0xFF},
	}
	for _, payload := range payloads {
		escaped := escapeKISS(payload)
		if bytes.IndexByte(escaped, kissFEND) >= 0 {
			t.Errorf("escaped form of %x still contains FEND: %x", payload, escaped)
		}
		restored := unescapeKISS(escaped)
		if !bytes.Equal(restored, payload) {
			t.Errorf("round trip of %x produced %x", payload, restored)
		}
	}
}

func TestFrameExtractorWholeFrames(t *testing.T) {
	var extractor frameExtractor
	first := []byte{0x10, kissFEND, 0x20}
	second := []byte{0x30, kissFESC}
	stream := append(buildKISSFrame(first), buildKISSFrame(second)...)

	payloads := extractor.Push(stream)
	if len(payloads) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(payloads))
	}
	if !bytes.Equal(payloads[0], first) {
		t.Errorf("first frame: got %x, expected %x", payloads[0], first)
	}
	if !bytes.Equal(payloads[1], second) {
		t.Errorf("second frame: got %x, expected %x", payloads[1], second)
	}
}

func TestFrameExtractorPartialPushes(t *testing.T) {
	var extractor frameExtractor
	payload := []byte{0x01, kissFEND, 0x02, kissFESC, 0x03}
	frame := buildKISSFrame(payload)

	var collected [][]byte
	// feed the frame one byte at a time
	for _, b := range frame {
		collected = append(collected, extractor.Push([]byte{b})...)
	}
	if len(collected) != 1 {
		t.Fatalf("expected 1 frame from byte-at-a-time push, got %d", len(collected))
	}
	if !bytes.Equal(collected[0], payload) {
		t.Errorf("got %x, expected %x", collected[0], payload)
	}
}

func TestFrameExtractorSkipsNoise(t *testing.T) {
	var extractor frameExtractor
	payload := []byte{0xAA, 0xBB}
	stream := append([]byte{0x99, 0x98, 0x97}, buildKISSFrame(payload)...)

	payloads := extractor.Push(stream)
	if len(payloads) != 1 {
		t.Fatalf("expected 1 frame past the leading noise, got %d", len(payloads))
	}
	if !bytes.Equal(payloads[0], payload) {
		t.Errorf("got %x, expected %x", payloads[0], payload)
	}
}

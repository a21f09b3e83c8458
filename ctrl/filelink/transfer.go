package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ScottHakoda/Networks/sim/rdt"
)

// Files travel as a header message followed by raw 20-byte chunks. The
// header carries the payload size and a truncated name; the final chunk is
// zero padded and trimmed back to size on the receiving side.
const (
	headerMarker  = 'H'
	headerNameLen = rdt.PayloadSize - 5 // marker + 4 size bytes
)

func fileMessages(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if len(name) > headerNameLen {
		name = name[:headerNameLen]
	}
	header := make([]byte, rdt.PayloadSize)
	header[0] = headerMarker
	binary.BigEndian.PutUint32(header[1:5], uint32(len(data)))
	copy(header[5:], name)

	messages := [][]byte{header}
	for offset := 0; offset < len(data); offset += rdt.PayloadSize {
		chunk := make([]byte, rdt.PayloadSize)
		copy(chunk, data[offset:])
		messages = append(messages, chunk)
	}
	return messages, nil
}

// fileWriter reassembles the message stream back into files under outDir. It
// is the receiving side's application layer.
type fileWriter struct {
	outDir    string
	current   *os.File
	remaining int
}

var _ rdt.AppLayer = &fileWriter{}

func (fw *fileWriter) DeliverData(message []byte) {
	if fw.current == nil {
		if len(message) != rdt.PayloadSize || message[0] != headerMarker {
			log.Printf("Ignoring stray message before any file header: %q", message)
			return
		}
		size := int(binary.BigEndian.Uint32(message[1:5]))
		name := sanitizeName(message[5:])
		path := filepath.Join(fw.outDir, name)
		f, err := os.Create(path)
		if err != nil {
			log.Printf("Cannot create %s: %v", path, err)
			return
		}
		log.Printf("Receiving %s (%d bytes)", path, size)
		fw.current = f
		fw.remaining = size
		fw.finishIfComplete()
		return
	}

	chunk := message
	if len(chunk) > fw.remaining {
		chunk = chunk[:fw.remaining]
	}
	if _, err := fw.current.Write(chunk); err != nil {
		log.Printf("Write failed: %v", err)
	}
	fw.remaining -= len(chunk)
	fw.finishIfComplete()
}

func (fw *fileWriter) finishIfComplete() {
	if fw.remaining > 0 {
		return
	}
	name := fw.current.Name()
	if err := fw.current.Close(); err != nil {
		log.Printf("Close failed for %s: %v", name, err)
	} else {
		log.Printf("Completed %s", name)
	}
	fw.current = nil
}

func sanitizeName(raw []byte) string {
	end := bytes.IndexByte(raw, 0)
	if end < 0 {
		end = len(raw)
	}
	name := filepath.Base(string(raw[:end]))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = fmt.Sprintf("unnamed-%d", os.Getpid())
	}
	return name
}

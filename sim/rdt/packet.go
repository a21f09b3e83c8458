package rdt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/netstack/tcpip/header"
)

// PayloadSize is the fixed length of every data payload. Acknowledgments
// carry no payload.
const PayloadSize = 20

// Packet is the wire unit exchanged between the two transport entities: a
// one-bit sequence number, a checksum covering the sequence number and every
// payload byte, and the payload itself. Packets are not modified after
// construction.
type Packet struct {
	Seq      uint8
	Checksum uint16
	Payload  []byte
}

// ComputeChecksum folds the sequence number and every payload byte into a
// 16-bit ones-complement sum. A single flipped payload byte or a changed
// sequence number always perturbs the sum; two compensating changes can
// cancel out, which is an accepted limitation of an additive checksum.
func ComputeChecksum(seq uint8, payload []byte) uint16 {
	return header.Checksum(payload, uint16(seq))
}

func MakeDataPacket(seq uint8, payload []byte) *Packet {
	if len(payload) != PayloadSize {
		panic(fmt.Sprintf("data payload must be exactly %d bytes, not %d", PayloadSize, len(payload)))
	}
	stable := append([]byte{}, payload...)
	return &Packet{
		Seq:      seq,
		Checksum: ComputeChecksum(seq, stable),
		Payload:  stable,
	}
}

func MakeAckPacket(seq uint8) *Packet {
	return &Packet{
		Seq:      seq,
		Checksum: ComputeChecksum(seq, nil),
		Payload:  nil,
	}
}

// Validate recomputes the checksum over the packet's claimed sequence number
// and payload. A packet that fails validation is corrupted, and neither field
// can be trusted.
func (p *Packet) Validate() bool {
	return p.Checksum == ComputeChecksum(p.Seq, p.Payload)
}

// IsAck reports whether this packet has the shape of an acknowledgment. Only
// meaningful on packets that pass Validate.
func (p *Packet) IsAck() bool {
	return len(p.Payload) == 0
}

func (p *Packet) Copy() *Packet {
	dup := *p
	dup.Payload = append([]byte{}, p.Payload...)
	return &dup
}

func (p *Packet) String() string {
	if p.IsAck() {
		return fmt.Sprintf("Ack(seq=%d, check=0x%04x)", p.Seq, p.Checksum)
	}
	return fmt.Sprintf("Data(seq=%d, check=0x%04x, payload=%q)", p.Seq, p.Checksum, p.Payload)
}

func (p *Packet) Equals(p2 *Packet) bool {
	return p.Seq == p2.Seq && p.Checksum == p2.Checksum && bytes.Equal(p.Payload, p2.Payload)
}

// Encode serializes the packet: seq, big-endian checksum, payload length,
// payload bytes.
func (p *Packet) Encode() []byte {
	if len(p.Payload) > 0xFF {
		panic("payload too long to encode")
	}
	encoded := make([]byte, 4+len(p.Payload))
	encoded[0] = p.Seq
	binary.BigEndian.PutUint16(encoded[1:3], p.Checksum)
	encoded[3] = uint8(len(p.Payload))
	copy(encoded[4:], p.Payload)
	return encoded
}

// DecodePacket reverses Encode. It only checks structure; checksum
// validation is the caller's concern, because a corrupted packet must still
// be decoded so that the receiving entity can react to it.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("packet too short: %d bytes", len(data))
	}
	length := int(data[3])
	if len(data) != 4+length {
		return nil, fmt.Errorf("packet length mismatch: header says %d payload bytes, found %d", length, len(data)-4)
	}
	return &Packet{
		Seq:      data[0],
		Checksum: binary.BigEndian.Uint16(data[1:3]),
		Payload:  append([]byte{}, data[4:]...),
	}, nil
}

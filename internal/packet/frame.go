package packet

import (
	"errors"
	"fmt"

	enc "github.com/named-data/ndnd/std/encoding"
	spec "github.com/named-data/ndnd/std/ndn/spec_2022"
	"github.com/named-data/ndnd/std/types/optional"
)

// Frame is one network-layer packet received from a forwarder, with
// the NDNLPv2 header stripped.  Exactly one of Interest and Data is set.
type Frame struct {
	Interest *spec.Interest
	Data     *spec.Data
	// Nack carries the reason when the forwarder returned Interest as
	// a network Nack.
	Nack optional.Optional[uint64]
}

// ParseFrame decodes one TLV block read from a face.  The parsed
// packet references wire, which must not be reused afterwards.
// Fragmented LpPackets are rejected; forwarders do not fragment on
// local and TCP faces.
func ParseFrame(wire []byte) (*Frame, error) {
	pkt, _, err := spec.ReadPacket(enc.NewBufferView(wire))
	if err != nil {
		return nil, err
	}

	f := &Frame{}
	if lp := pkt.LpPacket; lp != nil {
		if lp.FragIndex.IsSet() || lp.FragCount.IsSet() {
			return nil, errors.New("fragmented LpPacket")
		}
		if lp.Nack != nil {
			f.Nack = optional.Some(lp.Nack.Reason)
		}
		pkt, _, err = spec.ReadPacket(enc.NewWireView(lp.Fragment))
		if err != nil {
			return nil, fmt.Errorf("lp fragment: %w", err)
		}
	}

	f.Interest, f.Data = pkt.Interest, pkt.Data
	switch {
	case (f.Interest == nil) == (f.Data == nil):
		return nil, errors.New("frame carries neither an Interest nor a Data")
	case f.Nack.IsSet() && f.Interest == nil:
		return nil, errors.New("nack without an Interest")
	}
	return f, nil
}

// NackReasonString names a Nack reason code.
func NackReasonString(reason uint64) string {
	switch reason {
	case spec.NackReasonCongestion:
		return "Congestion"
	case spec.NackReasonDuplicate:
		return "Duplicate"
	case spec.NackReasonNoRoute:
		return "NoRoute"
	default:
		return "None"
	}
}

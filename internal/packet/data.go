package packet

import (
	"errors"
	"fmt"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	spec "github.com/named-data/ndnd/std/ndn/spec_2022"
)

// ErrTooLarge is returned for a packet that would not fit in one NDN
// link frame.
var ErrTooLarge = errors.New("packet exceeds the NDN packet size limit")

// Data is a signed Data packet in its wire encoding.
type Data struct {
	Name    enc.Name
	Config  *ndn.DataConfig
	Content []byte
	Wire    enc.Wire
}

// MakeData encodes a Data packet named name and signs it with signer.
// A nil config publishes a plain blob without MetaInfo fields.
func MakeData(name enc.Name, config *ndn.DataConfig, content []byte, signer ndn.Signer) (*Data, error) {
	if config == nil {
		config = &ndn.DataConfig{}
	}
	encoded, err := spec.Spec{}.MakeData(name, config, enc.Wire{content}, signer)
	if err != nil {
		return nil, fmt.Errorf("encoding data %s: %w", name, err)
	}
	if n := encoded.Wire.Length(); n > ndn.MaxNDNPacketSize {
		return nil, fmt.Errorf("data %s is %d bytes, exceeds %d: %w",
			name, n, ndn.MaxNDNPacketSize, ErrTooLarge)
	}
	return &Data{Name: name, Config: config, Content: content, Wire: encoded.Wire}, nil
}

// Len is the encoded size in bytes.
func (d *Data) Len() int { return int(d.Wire.Length()) }

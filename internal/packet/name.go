// Package packet is the thin layer ndnpoke keeps over the ndnd
// spec_2022 and mgmt_2022 codecs: name helpers, a signed Data ready for
// the wire, the frames a forwarder sends back, and NFD management
// command names and responses.
package packet

import (
	"fmt"

	enc "github.com/named-data/ndnd/std/encoding"
)

// Component builds a generic name component.
func Component(s string) enc.Component {
	return enc.NewGenericComponent(s)
}

// BytesComponent builds a generic name component holding raw bytes.
func BytesComponent(b []byte) enc.Component {
	return enc.NewGenericBytesComponent(b)
}

// ParseName parses an NDN URI such as "/example/data".
func ParseName(s string) (enc.Name, error) {
	name, err := enc.NameFromStr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid name %q: %w", s, err)
	}
	return name, nil
}

// ComponentEqual reports whether two components have the same type and
// value.
func ComponentEqual(a, b enc.Component) bool {
	return a.Equal(b)
}

// HasPrefix reports whether prefix is a (non-strict) prefix of name.
func HasPrefix(name, prefix enc.Name) bool {
	return prefix.IsPrefix(name)
}

// NameEqual reports whether a and b are the same name.
func NameEqual(a, b enc.Name) bool {
	return a.Equal(b)
}

// Append returns a new name made of name followed by comps.  Unlike
// enc.Name.Append the result never shares storage with name, so the
// encoder may extend it in place.
func Append(name enc.Name, comps ...enc.Component) enc.Name {
	out := make(enc.Name, 0, len(name)+len(comps))
	out = append(out, name...)
	return append(out, comps...)
}

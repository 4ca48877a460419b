package poke

import (
	"fmt"
	"io"

	"github.com/named-data/ndnd/std/ndn"
	"github.com/named-data/ndnd/std/types/optional"

	"ndnpoke/internal/packet"
)

// BuildContent reads payload to EOF and returns the signed Data named
// opts.Name.  Signing errors keep the *errors.SigningError the signer
// source reported.
func BuildContent(opts Options, payload io.Reader, signers SignerSource) (*packet.Data, error) {
	cfg := &ndn.DataConfig{Freshness: opts.Freshness}
	if opts.FinalBlock {
		if len(opts.Name) == 0 {
			return nil, fmt.Errorf("final block: name has no components")
		}
		cfg.FinalBlockID = optional.Some(opts.Name[len(opts.Name)-1])
	}

	content, err := io.ReadAll(payload)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}

	signer, err := signers.SignerFor(opts.SigningInfo)
	if err != nil {
		return nil, err
	}
	return packet.MakeData(opts.Name, cfg, content, signer)
}

package face

import (
	crand "crypto/rand"
	"fmt"
	"time"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	mgmt "github.com/named-data/ndnd/std/ndn/mgmt_2022"
	"github.com/named-data/ndnd/std/types/optional"

	"ndnpoke/internal/packet"
)

const signatureNonceSize = 8

// RegisteredPrefix is an interest filter plus the RIB route that makes
// the forwarder send matching Interests to this face.
type RegisteredPrefix struct {
	face       *Face
	prefix     enc.Name
	onInterest func(ndn.Interest)

	command    *pendingInterest
	registered bool
	cancelled  bool
}

// RegisterPrefix installs an interest filter for prefix and asks the
// forwarder to route prefix to this face.  onSuccess or onFailure runs
// once the forwarder answers; on failure the filter is removed again.
// onFailure may run before RegisterPrefix returns if the command cannot
// be sent.
func (f *Face) RegisterPrefix(prefix enc.Name,
	onInterest func(ndn.Interest),
	onSuccess func(enc.Name),
	onFailure func(prefix enc.Name, reason string)) *RegisteredPrefix {
	rp := &RegisteredPrefix{face: f, prefix: prefix, onInterest: onInterest}
	f.filters = append(f.filters, rp)

	f.log.Verbose("registering %s", prefix)

	cmd, err := f.sendCommand("rib", "register", packet.RouteArgs(prefix), func(resp *mgmt.ControlResponseVal, reason string) {
		rp.command = nil
		if rp.cancelled {
			return
		}
		if resp != nil && resp.StatusCode == packet.StatusOK {
			rp.registered = true
			f.opts.Metrics.RegistrationSucceeded()
			f.log.Verbose("registered %s", prefix)
			onSuccess(prefix)
			return
		}
		if resp != nil {
			reason = packet.ResponseReason(resp)
		}
		rp.fail(reason, onFailure)
	})
	if err != nil {
		rp.fail(err.Error(), onFailure)
		return rp
	}
	if !rp.cancelled {
		rp.command = cmd
	}
	return rp
}

func (rp *RegisteredPrefix) fail(reason string, onFailure func(enc.Name, string)) {
	rp.face.opts.Metrics.RegistrationFailed()
	rp.face.removeFilter(rp)
	rp.cancelled = true
	onFailure(rp.prefix, reason)
}

func (rp *RegisteredPrefix) active() bool { return !rp.cancelled }

// Cancel removes the interest filter and, if the forwarder accepted the
// route, unregisters it.  Calling Cancel again does nothing.
func (rp *RegisteredPrefix) Cancel() {
	if rp.cancelled {
		return
	}
	rp.cancelled = true
	f := rp.face
	f.removeFilter(rp)
	if rp.command != nil {
		f.removePending(rp.command)
		rp.command = nil
	}
	if !rp.registered {
		return
	}

	args := &mgmt.ControlArgs{
		Name:   rp.prefix,
		Origin: optional.Some(uint64(mgmt.RouteOriginApp)),
	}
	_, err := f.sendCommand("rib", "unregister", args, func(resp *mgmt.ControlResponseVal, reason string) {
		if resp != nil {
			reason = packet.ResponseReason(resp)
		}
		f.log.Debug("unregister %s: %s", rp.prefix, reason)
	})
	if err != nil {
		f.log.Debug("unregister %s: %v", rp.prefix, err)
	}
}

func (f *Face) removeFilter(rp *RegisteredPrefix) {
	for i, q := range f.filters {
		if q == rp {
			f.filters = append(f.filters[:i], f.filters[i+1:]...)
			return
		}
	}
}

// sendCommand expresses a signed management command
// <prefix>/<module>/<verb>/<ControlParameters>.  done receives the
// decoded response, or nil and a reason when the forwarder nacks the
// command, it times out, or the response cannot be decoded.
func (f *Face) sendCommand(module, verb string, args *mgmt.ControlArgs,
	done func(resp *mgmt.ControlResponseVal, reason string)) (*pendingInterest, error) {
	nonce := make([]byte, signatureNonceSize)
	if _, err := crand.Read(nonce); err != nil {
		return nil, fmt.Errorf("signature nonce: %w", err)
	}
	cfg := &ndn.InterestConfig{
		MustBeFresh: true,
		Lifetime:    optional.Some(f.opts.CommandTimeout),
		SigNonce:    nonce,
		SigTime:     optional.Some(time.Duration(f.opts.Now().UnixMilli()) * time.Millisecond),
	}
	name := packet.CommandName(f.opts.CommandPrefix, module, verb, args)

	return f.expressInterest(name, cfg, enc.Wire{}, f.opts.Signer,
		func(d ndn.Data) {
			resp, err := packet.ParseControlResponse(d.Content())
			if err != nil {
				done(nil, fmt.Sprintf("malformed response: %v", err))
				return
			}
			done(resp, "")
		},
		func(reason uint64) {
			done(nil, "nack "+packet.NackReasonString(reason))
		},
		func() {
			done(nil, "command timed out")
		})
}

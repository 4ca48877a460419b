// Package poke publishes a single Data packet in response to the first
// Interest that reaches it, or unsolicited in force mode.
package poke

import (
	"io"
	"time"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	"github.com/named-data/ndnd/std/types/optional"

	"ndnpoke/internal/packet"
	"ndnpoke/internal/security"
)

// Options describes the Data to publish and how long to wait for it to
// be requested.
type Options struct {
	Name        enc.Name
	ForceSend   bool                             // put the Data without waiting for an Interest
	Freshness   optional.Optional[time.Duration] // FreshnessPeriod, omitted when unset
	FinalBlock  bool                             // mark the last name component as FinalBlockId
	SigningInfo security.SigningInfo
	Timeout     optional.Optional[time.Duration] // unset waits forever
}

// ── Collaborators ────────────────────────────────────────────────────

// Handle is something that can be cancelled.  Cancel is idempotent.
type Handle interface {
	Cancel()
}

// Transport delivers Interests to the responder and Data to the network.
type Transport interface {
	RegisterPrefix(prefix enc.Name,
		onInterest func(ndn.Interest),
		onSuccess func(enc.Name),
		onFailure func(prefix enc.Name, reason string)) Handle
	Put(d *packet.Data) error
}

// Scheduler runs a function once after a delay.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Handle
}

// SignerSource resolves a SigningInfo to the signer for the Data.
type SignerSource interface {
	SignerFor(info security.SigningInfo) (ndn.Signer, error)
}

// Reporter is the operator-visible error channel.
type Reporter interface {
	Error(format string, args ...interface{})
}

// Deps bundles the collaborators of a Responder.
type Deps struct {
	Transport Transport
	Scheduler Scheduler
	Signer    SignerSource
	Reporter  Reporter
	Payload   io.Reader
}

// Package face speaks NDN to a local or remote forwarder over a stream
// connection.
//
// A Face reads packets on its own goroutine and hands every one of them
// to a loop.Loop, so interest filters, pending-Interest bookkeeping and
// all user callbacks run on the loop goroutine.  Methods other than
// Serve and Close must be called from that goroutine (or before the
// loop starts).
package face

import (
	"fmt"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	spec "github.com/named-data/ndnd/std/ndn/spec_2022"
	sig "github.com/named-data/ndnd/std/security/signer"
	"github.com/named-data/ndnd/std/types/optional"
	ndn_io "github.com/named-data/ndnd/std/utils/io"

	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/loop"
	"ndnpoke/internal/metrics"
	"ndnpoke/internal/packet"
	"ndnpoke/util"
)

// DefaultCommandPrefix is where NFD serves its management protocol on
// a local face.
const DefaultCommandPrefix = "/localhost/nfd"

// DefaultCommandTimeout bounds how long a management command may stay
// unanswered.
const DefaultCommandTimeout = 10 * time.Second

// DefaultInterestLifetime applies to Interests sent without one.
const DefaultInterestLifetime = 4 * time.Second

// Options tunes a Face.  Zero values select the defaults.
type Options struct {
	CommandPrefix  enc.Name
	CommandTimeout time.Duration
	Signer         ndn.Signer // signs command Interests; DigestSha256 if nil
	Logger         *util.Logger
	Metrics        *metrics.Collector
	Now            func() time.Time
}

// Face is a connection to a forwarder.
type Face struct {
	conn  net.Conn
	addr  string
	loop  *loop.Loop
	sched *loop.Scheduler
	opts  Options
	log   *util.Logger

	// Loop goroutine only.
	filters []*RegisteredPrefix
	pending []*pendingInterest

	wmu       sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

type pendingInterest struct {
	name        enc.Name
	canBePrefix bool
	onData      func(ndn.Data)
	onNack      func(reason uint64)
	onTimeout   func()
	timer       *loop.Event
}

// New wraps conn.  Call Serve to start reading.
func New(conn net.Conn, l *loop.Loop, sched *loop.Scheduler, opts Options) *Face {
	if opts.CommandPrefix == nil {
		opts.CommandPrefix, _ = packet.ParseName(DefaultCommandPrefix)
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	if opts.Signer == nil {
		opts.Signer = sig.NewSha256Signer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = util.Discard()
	}

	addr := ""
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	return &Face{
		conn:   conn,
		addr:   addr,
		loop:   l,
		sched:  sched,
		opts:   opts,
		log:    log,
		closed: make(chan struct{}),
	}
}

// ── Reading ──────────────────────────────────────────────────────────

// Serve reads packets until the connection ends.  It returns nil after
// Close, ErrFaceClosed when the forwarder hangs up, and a NetworkError
// on any other read failure.
func (f *Face) Serve() error {
	err := ndn_io.ReadTlvStream(f.conn, func(frame []byte) bool {
		// The stream reader reuses its buffer.
		wire := append([]byte(nil), frame...)
		f.opts.Metrics.BytesReceived(int64(len(wire)))
		f.loop.Post(func() { f.dispatch(wire) })
		return true
	}, nil)

	select {
	case <-f.closed:
		return nil
	default:
	}
	if err == nil {
		f.opts.Metrics.RecordError("forwarder closed the connection")
		return ncerr.ErrFaceClosed
	}
	f.opts.Metrics.RecordError(err.Error())
	return ncerr.Wrap("read", f.addr, err)
}

func (f *Face) dispatch(wire []byte) {
	frame, err := packet.ParseFrame(wire)
	if err != nil {
		f.log.Debug("dropping malformed packet: %v", err)
		return
	}

	switch {
	case frame.Nack.IsSet():
		f.onNack(frame.Interest.Name(), frame.Nack.Unwrap())
	case frame.Interest != nil:
		f.onInterest(frame.Interest)
	case frame.Data != nil:
		f.onData(frame.Data)
	}
}

func (f *Face) onInterest(in ndn.Interest) {
	f.opts.Metrics.InterestReceived()
	f.log.Verbose("interest %s", in.Name())

	// Callbacks may cancel filters, so walk a snapshot.
	filters := append([]*RegisteredPrefix(nil), f.filters...)
	for _, rp := range filters {
		if rp.active() && packet.HasPrefix(in.Name(), rp.prefix) {
			f.opts.Metrics.InterestMatched()
			rp.onInterest(in)
		}
	}
}

func (f *Face) onData(d ndn.Data) {
	for _, p := range f.pending {
		if p.matches(d.Name()) {
			f.removePending(p)
			p.onData(d)
			return
		}
	}
	f.log.Debug("unsolicited data %s", d.Name())
}

func (f *Face) onNack(name enc.Name, reason uint64) {
	for _, p := range f.pending {
		if packet.NameEqual(p.name, name) {
			f.removePending(p)
			p.onNack(reason)
			return
		}
	}
}

func (p *pendingInterest) matches(name enc.Name) bool {
	if p.canBePrefix {
		return packet.HasPrefix(name, p.name)
	}
	return packet.NameEqual(p.name, name)
}

// ── Writing ──────────────────────────────────────────────────────────

// Put sends d to the forwarder.
func (f *Face) Put(d *packet.Data) error {
	if err := f.write(d.Wire.Join()); err != nil {
		return err
	}
	f.opts.Metrics.DataSent()
	f.log.Verbose("data %s (%d bytes)", d.Name, d.Len())
	return nil
}

func (f *Face) write(wire []byte) error {
	f.wmu.Lock()
	defer f.wmu.Unlock()

	select {
	case <-f.closed:
		return ncerr.ErrFaceClosed
	default:
	}
	if _, err := f.conn.Write(wire); err != nil {
		f.opts.Metrics.RecordError(err.Error())
		return ncerr.Wrap("write", f.addr, err)
	}
	f.opts.Metrics.BytesSent(int64(len(wire)))
	return nil
}

// expressInterest encodes and sends an Interest for name and arranges
// for exactly one of the three callbacks to run on the loop.  appParam
// and signer may be nil; a signer requires appParam.
func (f *Face) expressInterest(name enc.Name, cfg *ndn.InterestConfig, appParam enc.Wire, signer ndn.Signer,
	onData func(ndn.Data), onNack func(uint64), onTimeout func()) (*pendingInterest, error) {
	if !cfg.Nonce.IsSet() {
		cfg.Nonce = optional.Some(rand.Uint32())
	}
	encoded, err := spec.Spec{}.MakeInterest(name, cfg, appParam, signer)
	if err != nil {
		return nil, fmt.Errorf("encoding interest %s: %w", name, err)
	}

	p := &pendingInterest{
		name:        encoded.FinalName,
		canBePrefix: cfg.CanBePrefix,
		onData:      onData,
		onNack:      onNack,
		onTimeout:   onTimeout,
	}
	p.timer = f.sched.Schedule(cfg.Lifetime.GetOr(DefaultInterestLifetime), func() {
		if f.removePending(p) {
			p.onTimeout()
		}
	})
	f.pending = append(f.pending, p)

	if err := f.write(encoded.Wire.Join()); err != nil {
		f.removePending(p)
		return nil, err
	}
	return p, nil
}

// removePending drops p and stops its timer.  It reports whether p was
// still pending.
func (f *Face) removePending(p *pendingInterest) bool {
	for i, q := range f.pending {
		if q == p {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			p.timer.Cancel()
			return true
		}
	}
	return false
}

// Close shuts the connection down.  Serve returns nil afterwards.
func (f *Face) Close() error {
	var err error
	f.closeOnce.Do(func() {
		close(f.closed)
		err = f.conn.Close()
	})
	return err
}

func (f *Face) String() string { return fmt.Sprintf("face(%s)", f.addr) }

package core

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	"golang.org/x/sync/errgroup"

	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/face"
	"ndnpoke/internal/loop"
	"ndnpoke/internal/metrics"
	"ndnpoke/internal/packet"
	"ndnpoke/internal/poke"
	"ndnpoke/internal/retry"
	"ndnpoke/internal/security"
	"ndnpoke/internal/transport"
	"ndnpoke/util"
)

// PokeMode connects to a forwarder and publishes one Data packet.
type PokeMode struct {
	Options poke.Options

	Dialer          transport.Dialer
	Forwarder       transport.FaceURI
	ConnectAttempts int
	CommandPrefix   enc.Name
	CommandTimeout  time.Duration

	Identity enc.Name
	KeyPath  string
	// Passphrase unlocks an encrypted KeyPath.  Defaults to a prompt on
	// the controlling terminal.
	Passphrase security.PassphraseFunc

	Logger  *util.Logger
	Metrics *metrics.Collector

	// Payload defaults to os.Stdin when nil.
	Payload io.Reader
}

func (m *PokeMode) payload() io.Reader {
	if m.Payload != nil {
		return m.Payload
	}
	return os.Stdin
}

func (m *PokeMode) passphrase() security.PassphraseFunc {
	if m.Passphrase != nil {
		return m.Passphrase
	}
	return func(path string) ([]byte, error) {
		return util.ReadSecret(fmt.Sprintf("Enter passphrase for key '%s': ", path))
	}
}

// Run publishes the Data and returns nil once it has been sent.  A
// timeout yields ErrTimedOut and a refused registration a
// *RegistrationError; both have already been reported.
func (m *PokeMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	kc, err := m.keyChain()
	if err != nil {
		return err
	}

	conn, err := m.dial(ctx)
	if err != nil {
		return err
	}
	m.Logger.Verbose("connected to %s", m.Forwarder)

	l := loop.New()
	sched := loop.NewScheduler(l)
	f := face.New(conn, l, sched, face.Options{
		CommandPrefix:  m.CommandPrefix,
		CommandTimeout: m.CommandTimeout,
		Signer:         kc.DefaultSigner(),
		Logger:         m.Logger,
		Metrics:        m.Metrics,
	})
	defer f.Close()

	r := poke.NewResponder(m.Options, poke.Deps{
		Transport: faceTransport{f},
		Scheduler: loopScheduler{sched},
		Signer:    kc,
		Reporter:  m.Logger,
		Payload:   m.payload(),
	})
	if err := r.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(f.Serve)
	g.Go(func() error { return l.Run(gctx) })
	g.Go(func() error {
		select {
		case <-r.Done():
		case <-gctx.Done():
		}
		l.Stop()
		return f.Close()
	})
	waitErr := g.Wait()

	if m.Logger.Enabled(util.LogDebug) {
		m.Logger.Debug("stats %s", m.Metrics.JSON())
	}
	return m.result(r, waitErr)
}

// result maps the responder's outcome onto Run's error.
func (m *PokeMode) result(r *poke.Responder, waitErr error) error {
	switch r.Outcome() {
	case poke.OutcomeSent:
		m.Logger.Verbose("sent %s", r.Data().Name)
		return nil
	case poke.OutcomeTimedOut:
		return fmt.Errorf("no Interest for %s: %w", m.Options.Name, ncerr.ErrTimedOut)
	case poke.OutcomeRegistrationFailed:
		return r.Err()
	}
	if err := r.Err(); err != nil {
		return err
	}
	if waitErr != nil {
		return waitErr
	}
	return ncerr.ErrFaceClosed
}

func (m *PokeMode) keyChain() (*security.KeyChain, error) {
	kc := security.NewKeyChain(m.Identity)
	if m.KeyPath == "" {
		return kc, nil
	}
	if err := kc.LoadKeyFile(m.KeyPath, m.passphrase()); err != nil {
		return nil, ncerr.WrapSigning(m.Identity.String(), err)
	}
	m.Logger.Verbose("loaded key %s", m.KeyPath)
	return kc, nil
}

// dial reaches the forwarder, retrying transient failures.
func (m *PokeMode) dial(ctx context.Context) (net.Conn, error) {
	b := retry.ForAttempts(m.ConnectAttempts)
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		m.Logger.Warn("connect to %s failed (attempt %d): %v; retrying in %s",
			m.Forwarder, attempt, err, wait.Round(time.Millisecond))
	}

	var conn net.Conn
	err := b.Do(ctx, func(int) error {
		m.Metrics.DialAttempt()
		c, err := transport.DialFace(ctx, m.Dialer, m.Forwarder)
		if err != nil {
			m.Metrics.RecordError(err.Error())
			if !ncerr.IsRetryable(err) {
				return retry.Permanent(err)
			}
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, ncerr.Wrap("connect", m.Forwarder.String(), err)
	}
	return conn, nil
}

// ── Adapters ─────────────────────────────────────────────────────────

type faceTransport struct{ f *face.Face }

func (t faceTransport) RegisterPrefix(prefix enc.Name,
	onInterest func(ndn.Interest),
	onSuccess func(enc.Name),
	onFailure func(enc.Name, string)) poke.Handle {
	return t.f.RegisterPrefix(prefix, onInterest, onSuccess, onFailure)
}

func (t faceTransport) Put(d *packet.Data) error { return t.f.Put(d) }

type loopScheduler struct{ s *loop.Scheduler }

func (s loopScheduler) Schedule(d time.Duration, fn func()) poke.Handle {
	return s.s.Schedule(d, fn)
}

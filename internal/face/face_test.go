package face

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	enc "github.com/named-data/ndnd/std/encoding"
	"github.com/named-data/ndnd/std/ndn"
	mgmt "github.com/named-data/ndnd/std/ndn/mgmt_2022"
	spec "github.com/named-data/ndnd/std/ndn/spec_2022"
	sig "github.com/named-data/ndnd/std/security/signer"
	"github.com/named-data/ndnd/std/types/optional"
	ndn_io "github.com/named-data/ndnd/std/utils/io"

	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/loop"
	"ndnpoke/internal/metrics"
	"ndnpoke/internal/packet"
)

// forwarder is the far end of a net.Pipe standing in for NFD.
type forwarder struct {
	t      *testing.T
	conn   net.Conn
	frames chan []byte
}

func newForwarder(t *testing.T, conn net.Conn) *forwarder {
	fw := &forwarder{t: t, conn: conn, frames: make(chan []byte, 16)}
	go ndn_io.ReadTlvStream(conn, func(frame []byte) bool {
		fw.frames <- append([]byte(nil), frame...)
		return true
	}, nil)
	return fw
}

func (fw *forwarder) readPacket() []byte {
	fw.t.Helper()
	select {
	case wire := <-fw.frames:
		return wire
	case <-time.After(5 * time.Second):
		fw.t.Error("forwarder read: no packet")
		return nil
	}
}

// readCommand reads a management command and returns the Interest, its
// signed portion, its verb and its parameters.
func (fw *forwarder) readCommand() (ndn.Interest, enc.Wire, string, *mgmt.ControlArgs) {
	fw.t.Helper()
	wire := fw.readPacket()
	if wire == nil {
		return nil, nil, "", nil
	}
	in, covered, err := spec.Spec{}.ReadInterest(enc.NewBufferView(wire))
	if err != nil {
		fw.t.Errorf("forwarder decode interest: %v", err)
		return nil, nil, "", nil
	}
	// /localhost/nfd/rib/<verb>/<params>/<digest>
	name := in.Name()
	if len(name) != 6 {
		fw.t.Errorf("command name %s has %d components", name, len(name))
		return in, covered, "", nil
	}
	params, err := mgmt.ParseControlParameters(enc.NewBufferView(name[4].Val), true)
	if err != nil {
		fw.t.Errorf("decode parameters: %v", err)
		return in, covered, string(name[3].Val), nil
	}
	return in, covered, string(name[3].Val), params.Val
}

func (fw *forwarder) respond(in ndn.Interest, code uint64, text string) {
	fw.t.Helper()
	resp := &mgmt.ControlResponse{Val: &mgmt.ControlResponseVal{StatusCode: code, StatusText: text}}
	d, err := packet.MakeData(in.Name(), nil, resp.Encode().Join(), sig.NewSha256Signer())
	if err != nil {
		fw.t.Fatal(err)
	}
	fw.write(d.Wire.Join())
}

func (fw *forwarder) write(wire []byte) {
	fw.t.Helper()
	fw.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fw.conn.Write(wire); err != nil {
		fw.t.Errorf("forwarder write: %v", err)
	}
}

func (fw *forwarder) sendInterest(name string) {
	fw.t.Helper()
	n, _ := packet.ParseName(name)
	in, err := spec.Spec{}.MakeInterest(n, &ndn.InterestConfig{Nonce: optional.Some(uint32(7))}, nil, nil)
	if err != nil {
		fw.t.Fatal(err)
	}
	fw.write(in.Wire.Join())
}

func (fw *forwarder) nack(wire []byte, reason uint64) {
	fw.t.Helper()
	pkt := &spec.Packet{LpPacket: &spec.LpPacket{
		Nack:     &spec.NetworkNack{Reason: reason},
		Fragment: enc.Wire{wire},
	}}
	encoder := spec.PacketEncoder{}
	encoder.Init(pkt)
	fw.write(encoder.Encode(pkt).Join())
}

func mustData(t *testing.T, name string, content []byte) *packet.Data {
	t.Helper()
	n, _ := packet.ParseName(name)
	d, err := packet.MakeData(n, nil, content, sig.NewSha256Signer())
	if err != nil {
		t.Fatal(err)
	}
	return d
}

type harness struct {
	face    *Face
	loop    *loop.Loop
	fw      *forwarder
	metrics *metrics.Collector
	served  chan error
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	local, remote := net.Pipe()
	l := loop.New()
	opts.Metrics = metrics.New()
	h := &harness{
		face:    New(local, l, loop.NewScheduler(l), opts),
		loop:    l,
		fw:      newForwarder(t, remote),
		metrics: opts.Metrics,
		served:  make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.served <- h.face.Serve() }()
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		h.face.Close()
		remote.Close()
	})
	return h
}

type regResult struct {
	ok     bool
	reason string
}

func (h *harness) register(prefix string, onInterest func(ndn.Interest)) (<-chan regResult, <-chan *RegisteredPrefix) {
	results := make(chan regResult, 2)
	handles := make(chan *RegisteredPrefix, 1)
	name, _ := packet.ParseName(prefix)
	h.loop.Post(func() {
		handles <- h.face.RegisterPrefix(name, onInterest,
			func(enc.Name) { results <- regResult{ok: true} },
			func(_ enc.Name, reason string) { results <- regResult{reason: reason} })
	})
	return results, handles
}

func waitResult(t *testing.T, ch <-chan regResult) regResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("no registration result")
		return regResult{}
	}
}

// ── Tests ────────────────────────────────────────────────────────────

func TestRegisterPrefix_Success(t *testing.T) {
	h := newHarness(t, Options{})
	got := make(chan enc.Name, 1)
	results, _ := h.register("/example/data", func(in ndn.Interest) { got <- in.Name() })

	in, covered, verb, params := h.fw.readCommand()
	if verb != "register" {
		t.Fatalf("verb = %q", verb)
	}
	want, _ := packet.ParseName("/example/data")
	if params == nil || !packet.NameEqual(params.Name, want) {
		t.Fatalf("params = %+v", params)
	}
	if flags, _ := params.Flags.Get(); flags != uint64(mgmt.RouteFlagChildInherit) {
		t.Errorf("flags = %d", flags)
	}
	s := in.Signature()
	if s.SigType() != ndn.SignatureDigestSha256 || len(s.SigNonce()) != signatureNonceSize || s.SigTime() == nil {
		t.Errorf("command signature = %v nonce %x time %v", s.SigType(), s.SigNonce(), s.SigTime())
	}
	if !sig.ValidateSha256(covered, s) {
		t.Error("command signature does not validate")
	}
	if !in.MustBeFresh() {
		t.Error("command should be MustBeFresh")
	}
	h.fw.respond(in, 200, "OK")

	if r := waitResult(t, results); !r.ok {
		t.Fatalf("registration failed: %s", r.reason)
	}

	// Unknown packets are dropped, a matching Interest reaches the
	// filter and a foreign one does not.
	h.fw.write([]byte{0x99, 0x01, 0x00})
	h.fw.sendInterest("/other/name")
	h.fw.sendInterest("/example/data/x")
	select {
	case name := <-got:
		if name.String() != "/example/data/x" {
			t.Errorf("filter got %s", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("interest not dispatched")
	}
	if h.metrics.InterestsReceived() != 2 || h.metrics.InterestsMatched() != 1 {
		t.Errorf("received = %d, matched = %d", h.metrics.InterestsReceived(), h.metrics.InterestsMatched())
	}
	if h.metrics.Registrations() != 1 {
		t.Errorf("registrations = %d", h.metrics.Registrations())
	}
}

func TestRegisterPrefix_Refused(t *testing.T) {
	h := newHarness(t, Options{})
	called := make(chan struct{}, 1)
	results, _ := h.register("/example", func(ndn.Interest) { called <- struct{}{} })

	in, _, _, _ := h.fw.readCommand()
	h.fw.respond(in, 403, "authorization rejected")

	r := waitResult(t, results)
	if r.ok || r.reason != "403 authorization rejected" {
		t.Fatalf("result = %+v", r)
	}

	// The filter is gone.
	h.fw.sendInterest("/example/x")
	time.Sleep(20 * time.Millisecond)
	done := make(chan struct{})
	h.loop.Post(func() { close(done) })
	<-done
	select {
	case <-called:
		t.Error("filter still active after failure")
	default:
	}
}

func TestRegisterPrefix_Nack(t *testing.T) {
	h := newHarness(t, Options{})
	results, _ := h.register("/example", nil)

	wire := h.fw.readPacket()
	h.fw.nack(wire, spec.NackReasonNoRoute)

	r := waitResult(t, results)
	if r.ok || r.reason != "nack NoRoute" {
		t.Fatalf("result = %+v", r)
	}
}

func TestRegisterPrefix_Timeout(t *testing.T) {
	h := newHarness(t, Options{CommandTimeout: 50 * time.Millisecond})
	results, _ := h.register("/example", nil)

	h.fw.readPacket()
	r := waitResult(t, results)
	if r.ok || !strings.Contains(r.reason, "timed out") {
		t.Fatalf("result = %+v", r)
	}

	// A late response is ignored.
	select {
	case r := <-results:
		t.Errorf("second result %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRegisterPrefix_MalformedResponse(t *testing.T) {
	h := newHarness(t, Options{})
	results, _ := h.register("/example", nil)

	in, _, _, _ := h.fw.readCommand()
	d, err := packet.MakeData(in.Name(), nil, []byte("not a response"), sig.NewSha256Signer())
	if err != nil {
		t.Fatal(err)
	}
	h.fw.write(d.Wire.Join())

	r := waitResult(t, results)
	if r.ok || !strings.HasPrefix(r.reason, "malformed response") {
		t.Fatalf("result = %+v", r)
	}
}

func TestRegisteredPrefix_CancelUnregisters(t *testing.T) {
	h := newHarness(t, Options{})
	results, handles := h.register("/example", nil)

	in, _, _, _ := h.fw.readCommand()
	h.fw.respond(in, 200, "OK")
	waitResult(t, results)
	rp := <-handles

	h.loop.Post(func() {
		rp.Cancel()
		rp.Cancel()
	})
	_, _, verb, params := h.fw.readCommand()
	if verb != "unregister" {
		t.Fatalf("verb = %q", verb)
	}
	if params == nil || params.Name.String() != "/example" {
		t.Errorf("unregister params = %+v", params)
	}

	// Only one unregister is sent.
	select {
	case <-h.fw.frames:
		t.Error("second command sent")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPut(t *testing.T) {
	h := newHarness(t, Options{})
	d := mustData(t, "/example/data", []byte("hello"))

	errc := make(chan error, 1)
	h.loop.Post(func() { errc <- h.face.Put(d) })

	got, _, err := spec.Spec{}.ReadData(enc.NewBufferView(h.fw.readPacket()))
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Content().Join()) != "hello" {
		t.Errorf("content = %q", got.Content().Join())
	}
	if err := <-errc; err != nil {
		t.Errorf("Put: %v", err)
	}
	if h.metrics.TotalDataSent() != 1 {
		t.Errorf("data sent = %d", h.metrics.TotalDataSent())
	}
}

func TestServe_RemoteClose(t *testing.T) {
	h := newHarness(t, Options{})
	h.fw.conn.Close()
	select {
	case err := <-h.served:
		if !errors.Is(err, ncerr.ErrFaceClosed) {
			t.Errorf("Serve = %v, want ErrFaceClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestServe_LocalClose(t *testing.T) {
	h := newHarness(t, Options{})
	h.face.Close()
	select {
	case err := <-h.served:
		if err != nil {
			t.Errorf("Serve = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return")
	}

	if err := h.face.Put(mustData(t, "/x", nil)); !errors.Is(err, ncerr.ErrFaceClosed) {
		t.Errorf("Put after Close = %v", err)
	}
}

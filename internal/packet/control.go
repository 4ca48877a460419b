package packet

import (
	"errors"
	"fmt"

	enc "github.com/named-data/ndnd/std/encoding"
	mgmt "github.com/named-data/ndnd/std/ndn/mgmt_2022"
	"github.com/named-data/ndnd/std/types/optional"
)

// StatusOK is the ControlResponse code for a successful command.
const StatusOK = 200

// CommandName builds <prefix>/<module>/<verb>/<ControlParameters>, the
// name of an NFD management command before signing.
func CommandName(prefix enc.Name, module, verb string, args *mgmt.ControlArgs) enc.Name {
	params := &mgmt.ControlParameters{Val: args}
	return Append(prefix, Component(module), Component(verb), BytesComponent(params.Bytes()))
}

// RouteArgs are the rib/register arguments for an application route:
// origin app, cost 0 and child-inherit.
func RouteArgs(prefix enc.Name) *mgmt.ControlArgs {
	return &mgmt.ControlArgs{
		Name:   prefix,
		Origin: optional.Some(uint64(mgmt.RouteOriginApp)),
		Cost:   optional.Some(uint64(0)),
		Flags:  optional.Some(uint64(mgmt.RouteFlagChildInherit)),
	}
}

// ParseControlResponse decodes the content of a command reply.
func ParseControlResponse(content enc.Wire) (*mgmt.ControlResponseVal, error) {
	resp, err := mgmt.ParseControlResponse(enc.NewWireView(content), true)
	if err != nil {
		return nil, fmt.Errorf("control response: %w", err)
	}
	if resp.Val == nil {
		return nil, errors.New("control response: missing value")
	}
	return resp.Val, nil
}

// ResponseReason formats a response status for an operator-facing
// message.
func ResponseReason(r *mgmt.ControlResponseVal) string {
	if r.StatusText == "" {
		return fmt.Sprintf("status %d", r.StatusCode)
	}
	return fmt.Sprintf("%d %s", r.StatusCode, r.StatusText)
}

package transport

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DefaultPort is the NFD stream port.
const DefaultPort = 6363

// FaceURI is a parsed forwarder address such as unix:///run/nfd/nfd.sock
// or tcp4://192.0.2.1:6363.
type FaceURI struct {
	Scheme  string // unix, tcp, tcp4 or tcp6
	Network string // argument for net.Dial
	Address string // socket path or host:port
}

// ParseFaceURI accepts unix://<path>, tcp://host[:port],
// tcp4://host[:port] and tcp6://[host][:port].  A missing TCP port
// defaults to 6363.
func ParseFaceURI(s string) (FaceURI, error) {
	u, err := url.Parse(s)
	if err != nil {
		return FaceURI{}, fmt.Errorf("face URI %q: %w", s, err)
	}

	switch u.Scheme {
	case "unix":
		path := u.Path
		if u.Host != "" {
			// unix://relative/path
			path = u.Host + u.Path
		}
		if path == "" {
			return FaceURI{}, fmt.Errorf("face URI %q: socket path is empty", s)
		}
		return FaceURI{Scheme: "unix", Network: "unix", Address: path}, nil

	case "tcp", "tcp4", "tcp6":
		host := u.Hostname()
		if host == "" {
			return FaceURI{}, fmt.Errorf("face URI %q: host is empty", s)
		}
		port := DefaultPort
		if p := u.Port(); p != "" {
			port, err = strconv.Atoi(p)
			if err != nil || port < 1 || port > 65535 {
				return FaceURI{}, fmt.Errorf("face URI %q: invalid port %q", s, p)
			}
		}
		if ip := net.ParseIP(host); ip != nil {
			is4 := ip.To4() != nil
			if (u.Scheme == "tcp4" && !is4) || (u.Scheme == "tcp6" && is4) {
				return FaceURI{}, fmt.Errorf("face URI %q: address family does not match scheme", s)
			}
		}
		return FaceURI{
			Scheme:  u.Scheme,
			Network: u.Scheme,
			Address: net.JoinHostPort(host, strconv.Itoa(port)),
		}, nil

	case "":
		return FaceURI{}, fmt.Errorf("face URI %q: missing scheme", s)
	default:
		return FaceURI{}, fmt.Errorf("face URI %q: unsupported scheme %q", s, u.Scheme)
	}
}

func (u FaceURI) String() string {
	if u.Scheme == "unix" {
		return "unix://" + u.Address
	}
	return u.Scheme + "://" + u.Address
}

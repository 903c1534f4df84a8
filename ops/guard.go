package ops

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
)

// DefaultTokenHeader is the header read by TokenGuard when none is given.
const DefaultTokenHeader = "X-Ops-Token"

// Guard is an admission middleware. Denied requests get 403.
type Guard func(http.Handler) http.Handler

// TokenGuard admits requests carrying one of tokens in header (DefaultTokenHeader if empty).
//
// It fails closed: blank tokens are ignored, and with no tokens left every request is denied.
// Tokens are compared in constant time.
func TokenGuard(tokens []string, header string) Guard {
	header = strings.TrimSpace(header)
	if header == "" {
		header = DefaultTokenHeader
	}
	var valid [][]byte
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			valid = append(valid, []byte(t))
		}
	}
	return check(func(r *http.Request) bool {
		vs := r.Header.Values(header)
		if len(vs) != 1 {
			return false
		}
		got := []byte(strings.TrimSpace(vs[0]))
		if len(got) == 0 {
			return false
		}
		ok := 0
		for _, t := range valid {
			ok |= subtle.ConstantTimeCompare(got, t)
		}
		return ok == 1
	})
}

// IPAllowList admits requests whose RemoteAddr falls in one of cidrsOrIPs.
//
// Entries may be CIDRs or single IPs. Invalid entries are ignored; with none left every
// request is denied.
func IPAllowList(cidrsOrIPs ...string) Guard {
	nets := parseCIDRsOrIPs(cidrsOrIPs)
	return check(func(r *http.Request) bool {
		ip := parseRemoteIP(r.RemoteAddr)
		if ip == nil {
			return false
		}
		for _, n := range nets {
			if n.Contains(ip) {
				return true
			}
		}
		return false
	})
}

func check(allow func(*http.Request) bool) Guard {
	return func(next http.Handler) http.Handler {
		if next == nil {
			panic("ops: nil next handler")
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allow(r) {
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("forbidden\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseCIDRsOrIPs(in []string) []*net.IPNet {
	var out []*net.IPNet
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			if _, n, err := net.ParseCIDR(s); err == nil {
				out = append(out, n)
			}
			continue
		}
		ip := net.ParseIP(s)
		if ip == nil {
			continue
		}
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 32
		}
		out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return out
}

func parseRemoteIP(addr string) net.IP {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return net.ParseIP(strings.Trim(host, "[]"))
}

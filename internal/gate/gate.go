// Vitrine - Personal Media Activity Tracker
// Copyright 2026 M. Croft
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mcroft/vitrine

// Package gate implements the access policy shared by both ingestion
// paths: a shared-secret token check for machine-to-machine webhooks
// and an IP allowlist for browser-originated writes. The gate is a
// pure function of the request plus a configuration snapshot; it
// performs no I/O and keeps no state.
package gate

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
)

// AccessDecision holds the per-request policy outcomes.
type AccessDecision struct {
	TokenAuthorized bool
	IPAllowed       bool
	ClientIP        string
}

// Gate evaluates caller identity against configured allowlists.
type Gate struct {
	secret       string
	secretHeader string
	allowedIPs   map[string]struct{}
	allowAll     bool
}

// New builds a gate from a configuration snapshot. An empty allowlist
// is a deliberate default-open policy for local use: every address is
// allowed. Callers are expected to have logged that condition at
// startup.
func New(secret, secretHeader string, allowedIPs []string) *Gate {
	g := &Gate{
		secret:       secret,
		secretHeader: secretHeader,
		allowedIPs:   make(map[string]struct{}, len(allowedIPs)),
		allowAll:     len(allowedIPs) == 0,
	}
	for _, ip := range allowedIPs {
		g.allowedIPs[NormalizeIP(strings.TrimSpace(ip))] = struct{}{}
	}
	return g
}

// Authorize computes the full access decision for a request. This is
// the form the HTTP handlers consume; the granular checks below remain
// exported for callers needing a single predicate.
func (g *Gate) Authorize(r *http.Request) AccessDecision {
	ip := ClientIP(r)
	return AccessDecision{
		TokenAuthorized: g.TokenAuthorized(r),
		IPAllowed:       g.IPAllowed(ip),
		ClientIP:        ip,
	}
}

// TokenAuthorized compares the configured header value against the
// configured secret in constant time. An empty configured secret never
// authorizes anything.
func (g *Gate) TokenAuthorized(r *http.Request) bool {
	if g.secret == "" {
		return false
	}
	presented := r.Header.Get(g.secretHeader)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(g.secret)) == 1
}

// IPAllowed tests a normalized address against the allowlist.
func (g *Gate) IPAllowed(ip string) bool {
	if g.allowAll {
		return true
	}
	_, ok := g.allowedIPs[NormalizeIP(ip)]
	return ok
}

// ClientIP extracts the caller's address, preferring the first
// X-Forwarded-For entry, then X-Real-IP, then the raw connection
// address. The result is normalized via NormalizeIP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx >= 0 {
			first = xff[:idx]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return NormalizeIP(ip)
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return NormalizeIP(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port (httptest, unix sockets).
		host = r.RemoteAddr
	}
	return NormalizeIP(host)
}

// NormalizeIP maps IPv6 loopback and IPv4-mapped-IPv6 forms to plain
// IPv4 dotted notation so allowlist entries written as IPv4 match
// requests arriving over IPv6 sockets.
func NormalizeIP(ip string) string {
	if ip == "::1" {
		return "127.0.0.1"
	}
	if strings.HasPrefix(ip, "::ffff:") {
		return strings.TrimPrefix(ip, "::ffff:")
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		if v4 := parsed.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ip
}

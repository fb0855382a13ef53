package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	localTimeout = 1 * time.Second
	raceTimeout  = 2 * time.Second
)

// publicDNS are resolvers queried when the system lookup fails.
// Entries are bare IP literals; JoinHostPort brackets the IPv6 ones.
var publicDNS = []string{
	"1.1.1.1",              // Cloudflare
	"1.0.0.1",              // Cloudflare
	"2606:4700:4700::1111", // Cloudflare
	"8.8.8.8",              // Google
	"8.8.4.4",              // Google
	"2001:4860:4860::8888", // Google
	"9.9.9.9",              // Quad9
	"149.112.112.112",      // Quad9
}

// Lookup resolves a hostname to an IP address, preferring the system
// resolver and falling back to a race across public DNS providers.
func Lookup(host string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), localTimeout)
	defer cancel()

	if ip, err := resolve(ctx, &net.Resolver{}, host); err == nil {
		return ip, nil
	}

	return raceLookup(host)
}

// raceLookup queries every public resolver concurrently and returns the
// first successful answer.
func raceLookup(host string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	results := make(chan string, len(publicDNS))
	for _, server := range publicDNS {
		go func(server string) {
			ip, err := resolve(ctx, resolverFor(server), host)
			if err != nil {
				results <- ""
				return
			}
			results <- ip
		}(server)
	}

	for range publicDNS {
		select {
		case ip := <-results:
			if ip != "" {
				return ip, nil
			}
		case <-ctx.Done():
			return "", fmt.Errorf("dns lookup for %s timed out", host)
		}
	}

	return "", fmt.Errorf("failed to resolve %s: all public resolvers failed", host)
}

// resolverFor builds a resolver pinned to a single upstream server.
func resolverFor(server string) *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := new(net.Dialer)
			return d.DialContext(ctx, network, net.JoinHostPort(server, "53"))
		},
	}
}

// resolve performs one lookup and picks an IPv4 answer when available.
func resolve(ctx context.Context, r *net.Resolver, host string) (string, error) {
	ips, err := r.LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", errors.New("no IP addresses found")
	}

	for _, ip := range ips {
		if net.ParseIP(ip).To4() != nil {
			return ip, nil
		}
	}

	return ips[0], nil
}

package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1(:\d{1,5})?$`)
)

func IPIsLocal(ipAddr string) bool {
	// used in local development ?
	if strings.HasPrefix(ipAddr, "127.0.0.1") || strings.HasPrefix(ipAddr, "[::1]") || ipAddr == "::1" {
		return true
	}

	// user within docker container ?
	return localDockerIpRegex.MatchString(ipAddr)
}

// ReadUserIP returns the client IP. X-Real-Ip and X-Forwarded-For are only honoured
// when the direct peer is a trusted proxy (loopback, docker bridge or a private network),
// otherwise anyone could pick their own address by setting the headers.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.RemoteAddr
	if remoteIsTrustedProxy(r.RemoteAddr) {
		if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
			ipAddr = realIP
		} else if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
			// first entry is the original client
			ipAddr = strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		}
	}

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}

	if ip := net.ParseIP(ipAddr); ip == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}

	return ipAddr, nil
}

func remoteIsTrustedProxy(remoteAddr string) bool {
	if IPIsLocal(remoteAddr) {
		return true
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}

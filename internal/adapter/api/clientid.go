package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const unknownClient = "unknown"

// ClientID derives the rate limiting key: first X-Forwarded-For entry, then
// X-Real-IP, then the transport address. Requests with no usable origin share
// the "unknown" bucket.
func ClientID(forwardedFor, realIP, remote string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP = strings.TrimSpace(realIP); realIP != "" {
		return realIP
	}
	if remote = strings.TrimSpace(remote); remote != "" {
		return remote
	}
	return unknownClient
}

func clientIDFromCtx(c *fiber.Ctx) string {
	return ClientID(c.Get(fiber.HeaderXForwardedFor), c.Get("X-Real-IP"), c.IP())
}

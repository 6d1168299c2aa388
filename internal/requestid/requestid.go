// Package requestid generates request identifiers and propagates them through fiber.
package requestid

import (
	"crypto/rand"

	"github.com/gofiber/fiber/v2"

	adapter "github.com/zalando-stups/stups-auth-adapter/internal/logger/adapter/fiber"
)

const (
	// Header carries the request id in both directions.
	Header = "X-Request-ID"

	// Len of a generated id, about 95 bits of entropy.
	Len = 16

	// maxLen bounds ids accepted from callers.
	maxLen = 128
)

// chars allowed in a generated id.
var chars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789") //nolint:gochecknoglobals

// New returns a random id of Len characters.
func New() string {
	return newLen(Len)
}

// newLen draws random bytes and rejects those above the largest multiple of len(chars),
// so every character is equally likely.
func newLen(length int) string {
	var (
		out   = make([]byte, 0, length)
		limit = 256 - (256 % len(chars)) //nolint:mnd
		buf   = make([]byte, length*2) //nolint:mnd
	)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			panic("requestid: random source failed: " + err.Error())
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%len(chars)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}

// Middleware reuses a caller supplied X-Request-ID or creates one, stores it in
// fiber.Locals for the access log and echoes it in the response.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" || len(id) > maxLen {
			id = New()
		}

		c.Locals(adapter.LocalsRequestID, id)
		c.Set(Header, id)

		return c.Next()
	}
}

package cachectrl

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// OptIn lets clients and proxies reuse the response for maxAge.
func OptIn(ctx *fiber.Ctx, maxAge time.Duration) {
	now := time.Now()
	ctx.Set(fiber.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
	ctx.Set(fiber.HeaderExpires, now.Add(maxAge).UTC().Format(time.RFC1123))

	ctx.Response().Header.SetLastModified(now)
}

// OptOut marks a response that must always be fetched again, such as views over entries
// that may change at any moment.
func OptOut(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
}

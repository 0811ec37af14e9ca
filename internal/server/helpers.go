package server

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// decodeParam returns the named route parameter with percent-encoding
// undone. Tags are usually Chinese, so they arrive percent-encoded in paths.
func decodeParam(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", err
	}
	return decoded, nil
}

package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// FetchStatus queries a running service at addr.
func FetchStatus(addr string, timeout time.Duration) (Status, error) {
	var st Status
	code, _, errs := fiber.Get("http://" + addr + "/v1/status").
		Timeout(timeout).
		Struct(&st)
	if len(errs) > 0 {
		return st, errors.Join(errs...)
	}
	if code != fiber.StatusOK {
		return st, fmt.Errorf("HTTP %d", code)
	}
	return st, nil
}

package netutil

import (
	"errors"
	"net"
	"net/url"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether an outbound Telegram call failure is worth
// retrying. It covers transient dial/timeout failures from net/http plus
// Telegram flood-wait responses.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() || netErr.Temporary() {
			return true
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() || opErr.Op == "dial" {
			return true
		}
		if nested, ok := opErr.Err.(net.Error); ok {
			if nested.Timeout() || nested.Temporary() {
				return true
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}

	return false
}

// BadRequestContains reports whether err is a Bad Request API error whose
// description contains substr.
func BadRequestContains(err error, substr string) bool {
	var apiErr *tele.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == 400 && strings.Contains(apiErr.Description, substr)
}

// FloodDelaySeconds returns the server-requested wait for flood errors, or 0.
func FloodDelaySeconds(err error) int {
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) && floodErr.RetryAfter > 0 {
		return floodErr.RetryAfter
	}
	return 0
}

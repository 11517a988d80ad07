package catalog

import (
	"appdeck/internal/scrapers/playstore"
	"appdeck/pkg/jsontree"
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind is the closed set of reasons a catalog attempt can fail for.
type ErrorKind int

const (
	// NetworkUnavailable means the page could not be transferred.
	NetworkUnavailable ErrorKind = iota + 1
	// RequestTimeout means the page was not transferred within the request timeout.
	RequestTimeout
	// ExtractionFailed means the page did not contain a parseable catalog payload.
	ExtractionFailed
	// UnknownFailure is everything else.
	UnknownFailure
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkUnavailable:
		return "network_unavailable"
	case RequestTimeout:
		return "request_timeout"
	case ExtractionFailed:
		return "extraction_failed"
	case UnknownFailure:
		return "unknown_failure"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// errPanic wraps a value recovered while processing a page.
var errPanic = errors.New("panic while processing page")

// Classify maps any error produced while loading a catalog to its ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, playstore.ErrRequestTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return RequestTimeout
	case errors.Is(err, playstore.ErrNetworkUnavailable):
		return NetworkUnavailable
	case errors.Is(err, playstore.ErrPayloadNotFound),
		errors.Is(err, jsontree.ErrSyntax):
		return ExtractionFailed
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return RequestTimeout
		}
		return NetworkUnavailable
	}

	return UnknownFailure
}

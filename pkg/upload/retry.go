package upload

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
)

// retryCodes are S3 error codes that clear up on their own.
var retryCodes = map[string]bool{
	"SlowDown":           true,
	"RequestTimeout":     true,
	"InternalError":      true,
	"ServiceUnavailable": true,
	"OperationAborted":   true,
}

// transient reports whether an object store failure is worth another
// attempt: 5xx responses, throttling and network timeouts. A cancelled or
// expired context never is.
func transient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if resp := minio.ToErrorResponse(err); resp.StatusCode >= http.StatusInternalServerError || retryCodes[resp.Code] {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// retry calls put until it succeeds, fails permanently or runs out of
// attempts. The wait doubles after every transient failure.
func retry(ctx context.Context, attempts int, wait time.Duration, put func() error) error {
	for attempt := 1; ; attempt++ {
		err := put()
		if err == nil || !transient(err) || attempt >= attempts {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}

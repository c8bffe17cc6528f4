// Package metrics emits the UI's standardised metrics to a statsd.Sink.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/target/interview-ui/internal/observability/errors"
	"github.com/target/interview-ui/internal/observability/statsd"
)

// Restore outcomes.
const (
	RestoreNoToken    = "no_token"
	RestoreMalformed  = "malformed"
	RestoreExpired    = "expired"
	RestoreStoreError = "store_error"
	RestoreOK         = "ok"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// EmitRestore counts one session restore by outcome.
func EmitRestore(sink statsd.Sink, outcome string) {
	if sink == nil {
		return
	}
	sink.Count("session.restore", 1, map[string]string{"outcome": outcome})
}

// EmitTransition counts a login or logout.
func EmitTransition(sink statsd.Sink, transition string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"transition": transition, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(err)
	}
	sink.Count("session.transition", 1, tags)
}

// EmitGuardRedirect counts an anonymous visit to a protected route.
func EmitGuardRedirect(sink statsd.Sink, route string) {
	if sink == nil {
		return
	}
	sink.Count("guard.redirect", 1, map[string]string{"route": route})
}

// BackendCall captures one outbound API call for metric emission.
type BackendCall struct {
	Endpoint string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitBackendCall emits standardised backend call metrics.
func EmitBackendCall(sink statsd.Sink, in BackendCall) {
	if sink == nil {
		return
	}
	tags := map[string]string{"endpoint": in.Endpoint, "result": ResultSuccess}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("backend.call", 1, tags)
	if in.Duration > 0 {
		sink.Timing("backend.duration", in.Duration, CloneTags(tags))
	}
}

// EmitHTTPRequest counts one served request and its latency, tagged by
// method and status class ("2xx", "4xx", ...).
func EmitHTTPRequest(sink statsd.Sink, method string, status int, d time.Duration) {
	if sink == nil {
		return
	}
	tags := map[string]string{"method": method, "status": StatusClass(status)}
	sink.Count("http.request", 1, tags)
	sink.Timing("http.duration", d, CloneTags(tags))
}

// StatusClass buckets an HTTP status code.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

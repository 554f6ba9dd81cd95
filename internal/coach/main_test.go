package coach

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in this package.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Genkit's tracing exporter runs a background batch processor.
		goleak.IgnoreTopFunction("go.opentelemetry.io/otel/sdk/trace.(*batchSpanProcessor).processQueue"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		// genkit.Init installs a signal handler and discards the stop
		// function, so callers cannot release this goroutine.
		goleak.IgnoreTopFunction("os/signal.NotifyContext.func1"),
	)
}

package ports_test

import (
	"testing"

	"github.com/target/interview-ui/internal/adapters/jwtclaims"
	"github.com/target/interview-ui/internal/clock"
	"github.com/target/interview-ui/internal/mocks"
	mockauth "github.com/target/interview-ui/internal/mocks/auth"
	"github.com/target/interview-ui/internal/ports"
)

// This test only verifies that our doubles and adapters conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.TokenStore = (*mockauth.MemoryTokenStore)(nil)
	var _ ports.TokenStore = (*mocks.MockTokenStore)(nil)
	var _ ports.TokenDecoder = (*mockauth.StaticDecoder)(nil)
	var _ ports.TokenDecoder = (*mocks.MockTokenDecoder)(nil)
	var _ ports.TokenDecoder = (*jwtclaims.Decoder)(nil)
	var _ ports.TimeProvider = (*clock.Real)(nil)
	var _ ports.TimeProvider = (*clock.Fixed)(nil)
}

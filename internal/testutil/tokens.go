package testutil

import (
	"testing"
	"time"

	"github.com/expotoworld/programs-service/internal/auth"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret"

// NewVerifier returns a verifier using TestSecret.
func NewVerifier() *auth.Verifier {
	return auth.NewVerifier(TestSecret, "", "")
}

// IssueToken signs a token for username; admin sets the administrator claim.
func IssueToken(t testing.TB, v *auth.Verifier, username string, admin bool) string {
	t.Helper()
	token, err := v.Issue(auth.Claims{PreferredUsername: username, Administrator: admin}, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// AdminHeader returns an Authorization header value for an ADMINS caller.
func AdminHeader(t testing.TB, v *auth.Verifier) string {
	t.Helper()
	return "JWT " + IssueToken(t, v, "staff", true)
}

// LearnerHeader returns an Authorization header value for a LEARNERS caller.
func LearnerHeader(t testing.TB, v *auth.Verifier) string {
	t.Helper()
	return "JWT " + IssueToken(t, v, "learner", false)
}

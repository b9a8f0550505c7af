package summarize

import "context"

// MockSummary is returned verbatim in offline mode.
const MockSummary = "📝 **Mock Summary (Offline Mode)**\n\n" +
	"1. Contractor proposes general repairs.\n" +
	"2. Labour: $1,000 | Materials: $800\n" +
	"3. Risk Rating: Low (Likelihood: Low, Severity: Low)\n" +
	"4. ✅ Final Recommendation: Approved\n\n" +
	"*This is a mock summary.*"

// Offline returns the canned summary whatever the input.
type Offline struct{}

// NewOffline returns an offline summarizer.
func NewOffline() Offline {
	return Offline{}
}

// Summarize returns MockSummary.
func (Offline) Summarize(context.Context, string) (string, error) {
	return MockSummary, nil
}

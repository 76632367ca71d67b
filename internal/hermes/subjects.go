package hermes

const (
	// SubjectRunRequest asks a serving instance to recompute the analysis.
	SubjectRunRequest = "effnets.run.request"

	StreamName   = "EFFNETS_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectRunStarted(runID string) string   { return "effnets.run." + runID + ".started" }
func SubjectRunCompleted(runID string) string { return "effnets.run." + runID + ".completed" }
func SubjectRunFailure(runID string) string   { return "effnets.run." + runID + ".failure" }

package hermes

const (
	SubjectCandidate = "swarm.baseurl.candidate"
	SubjectRejected  = "swarm.baseurl.rejected"

	StreamName   = "BASEURL_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectScored(evaluationID string) string { return "swarm.baseurl." + evaluationID + ".scored" }

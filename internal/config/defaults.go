package config

// Default risk scoring tables. Matched case-insensitively as substrings
// of the lowercased message.
var defaultCrisisKeywords = []string{
	"suicide", "kill myself", "end it all", "not worth living",
	"hurt myself", "self harm", "cutting", "overdose",
	"nobody cares", "better off dead", "cant go on",
}

var defaultUrgencyKeywords = []string{
	"tonight", "today", "right now", "about to", "going to",
}

// Canned replies used when a message requires crisis intervention. The
// generative oracle is deliberately bypassed for these.
const (
	defaultCrisisResponseHigh = "I'm really concerned about you right now. " +
		"Please know that you matter and there are people who want to help. " +
		"Can you reach out to someone you trust, or would you like me to " +
		"connect you with a crisis helpline?"

	defaultCrisisResponseMedium = "It sounds like you're going through a " +
		"really difficult time. You don't have to face this alone. Have you " +
		"been able to talk to anyone about how you're feeling?"

	defaultCrisisResponseLow = "I hear that you're struggling. Your feelings " +
		"are valid, and I'm here to listen. What's been the hardest part of " +
		"your day?"

	// Used when the generative oracle fails mid-conversation.
	defaultFallbackReply = "I'm here to listen. Sometimes I need a moment " +
		"to process - could you tell me more about how you're feeling?"
)

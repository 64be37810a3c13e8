package reply

import (
	"fmt"
	"strings"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
)

// RegistrationFormURL is the course registration form shared in the form and
// fallback templates.
const RegistrationFormURL = "https://forms.gle/iaaCourseRegn2wQz9"

// Welcome is the greeting reply with usage hints.
func Welcome(displayName string) string {
	return fmt.Sprintf(
		"Hello %s! Welcome to the Indian Aviation Academy course assistant.\n\n"+
			"Here is what I can help with:\n"+
			"- Type *courses* to browse all course domains\n"+
			"- Type a course name (e.g. *GeM Procurement* or *SMS*) for details\n"+
			"- Type *form* to get the registration form",
		displayNameOrDefault(displayName))
}

// Farewell is the fixed goodbye/thanks reply.
func Farewell() string {
	return "You're welcome! Thank you for reaching out to the Indian Aviation Academy. " +
		"Feel free to message me anytime for course information. Take care!"
}

// FormMessage is the fixed registration-form reply.
func FormMessage() string {
	return "Here is the course registration form:\n" + RegistrationFormURL + "\n\n" +
		"Fill it in and our team will get back to you with the next steps."
}

// DomainRangeError is the reply for a numeric selection outside 1-6.
func DomainRangeError(n int) string {
	return fmt.Sprintf(
		"%d is not a valid domain number. Please reply with a number between 1 and %d, "+
			"or type *courses* to see the full list.",
		n, catalog.DomainCount)
}

// DiagEcho is the diagnostic reply to the "test" keyword.
func DiagEcho() string {
	return "The course assistant is up and running. Type *courses* to get started."
}

// RateLimited is the reply sent when a user exceeds their message rate limit.
func RateLimited() string {
	return "You're sending messages a little too quickly. Please wait a moment and try again."
}

// TooLong is the reply for a message body over the WhatsApp text limit.
func TooLong(max int) string {
	return fmt.Sprintf("That message is too long for me to process. Please keep it under %d characters.", max)
}

// Fallback is the single canonical "could not fully answer" reply,
// parameterized only by the user's display name. Every miss, error, and
// exhausted retry path formats through this function so the user-facing
// contract stays uniform.
func Fallback(displayName string) string {
	return fmt.Sprintf(
		"Sorry %s, I couldn't fully answer that.\n\n"+
			"You can register your query here: %s\n\n"+
			"Quick suggestions:\n"+
			"- Type *courses* to browse all course domains\n"+
			"- Type a course name (e.g. *GeM Procurement* or *SMS*) for details\n"+
			"- Type *form* to get the registration form",
		displayNameOrDefault(displayName), RegistrationFormURL)
}

func displayNameOrDefault(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return name
}

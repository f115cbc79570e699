package mail

import (
	"fmt"
	"html"
	"strings"
)

// WelcomeMessage builds the email sent to a new newsletter subscriber.
func WelcomeMessage(from, to, subscriberName, siteName string) Message {
	name := html.EscapeString(firstNameOr(subscriberName, "there"))
	var b strings.Builder
	b.WriteString("<div style=\"font-family: Georgia, serif; max-width: 600px; margin: 0 auto;\">")
	fmt.Fprintf(&b, "<h1>Welcome, %s</h1>", name)
	fmt.Fprintf(&b, "<p>Thank you for joining the %s newsletter.</p>", html.EscapeString(siteName))
	b.WriteString("<p>You'll be the first to hear about new releases, cover reveals, and the occasional behind-the-scenes note from the writing desk.</p>")
	b.WriteString("<p>Until then, happy reading.</p>")
	b.WriteString("</div>")
	return Message{
		From:    from,
		To:      []string{to},
		Subject: fmt.Sprintf("Welcome to the %s newsletter", siteName),
		HTML:    b.String(),
	}
}

// SignupNotice builds the email sent to the site owner about a new subscriber.
func SignupNotice(from, owner, subscriberName, subscriberEmail string) Message {
	var b strings.Builder
	b.WriteString("<div style=\"font-family: sans-serif;\">")
	b.WriteString("<h2>New newsletter subscriber</h2>")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>", html.EscapeString(firstNameOr(subscriberName, "(not given)")))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", html.EscapeString(subscriberEmail))
	b.WriteString("</div>")
	return Message{
		From:    from,
		To:      []string{owner},
		Subject: "New newsletter subscriber",
		HTML:    b.String(),
	}
}

// ContactForward builds the email that forwards a contact-form submission to
// the site owner. ReplyTo is set to the visitor so the owner can answer
// directly.
func ContactForward(from, owner, senderName, senderEmail, subject, message string) Message {
	var b strings.Builder
	b.WriteString("<div style=\"font-family: sans-serif;\">")
	b.WriteString("<h2>New contact message</h2>")
	fmt.Fprintf(&b, "<p><strong>From:</strong> %s &lt;%s&gt;</p>",
		html.EscapeString(senderName), html.EscapeString(senderEmail))
	fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>", html.EscapeString(subject))
	fmt.Fprintf(&b, "<blockquote>%s</blockquote>", html.EscapeString(message))
	b.WriteString("</div>")
	return Message{
		From:    from,
		To:      []string{owner},
		ReplyTo: senderEmail,
		Subject: fmt.Sprintf("Contact form: %s", subject),
		HTML:    b.String(),
	}
}

func firstNameOr(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}

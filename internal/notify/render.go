package notify

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	Kind    Kind     `json:"kind"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	Link    string   `json:"link,omitempty"`
}

type template struct {
	subject string
	body    string
}

// English source strings. Arguments are positional: period label, actor,
// entry count, people concerned.
var templates = map[Kind]template{
	KindSubmit: {
		subject: "Timesheet submitted for %[1]s",
		body:    "%[2]s submitted %[3]d time entries for %[1]s and they are waiting for your review. People concerned: %[4]s.",
	},
	KindUnsubmit: {
		subject: "Timesheet reopened for %[1]s",
		body:    "%[2]s moved %[3]d time entries for %[1]s back to draft. People concerned: %[4]s.",
	},
	KindApprove: {
		subject: "Timesheet approved for %[1]s",
		body:    "%[2]s approved %[3]d time entries for %[1]s. People concerned: %[4]s.",
	},
	KindReject: {
		subject: "Timesheet rejected for %[1]s",
		body:    "%[2]s rejected %[3]d time entries for %[1]s. Please review and resubmit. People concerned: %[4]s.",
	},
	KindWithdraw: {
		subject: "Timesheet withdrawn for %[1]s",
		body:    "%[2]s withdrew %[3]d reviewed time entries for %[1]s and resubmitted them for review. People concerned: %[4]s.",
	},
	KindRemind: {
		subject: "Reminder: timesheet for %[1]s",
		body:    "%[2]s reminds you to review %[3]d time entries for %[1]s. People concerned: %[4]s.",
	},
}

func init() {
	for kind, tpl := range templates {
		message.SetString(language.English, subjectKey(kind), tpl.subject)
		message.SetString(language.English, bodyKey(kind), tpl.body)
	}
}

func subjectKey(k Kind) string { return "notify." + string(k) + ".subject" }
func bodyKey(k Kind) string    { return "notify." + string(k) + ".body" }

// Renderer turns requests into messages in one language.
type Renderer struct {
	printer *message.Printer
}

var (
	supported = []language.Tag{language.English}
	matcher   = language.NewMatcher(supported)
)

// NewRenderer returns a renderer for the closest supported language to tag.
func NewRenderer(tag language.Tag) *Renderer {
	_, idx, _ := matcher.Match(tag)
	return &Renderer{printer: message.NewPrinter(supported[idx])}
}

// Render renders req in English.
func Render(req Request) Message {
	return NewRenderer(language.English).Render(req)
}

// Render builds the subject and body for req.
func (r *Renderer) Render(req Request) Message {
	period := req.PeriodLabel
	if period == "" {
		period = "the current period"
	}
	actor := req.ActorName
	if actor == "" {
		actor = "Someone"
	}
	people := strings.Join(req.SubjectNames, ", ")
	if people == "" {
		people = "none"
	}

	body := r.printer.Sprintf(bodyKey(req.Kind), period, actor, req.EntryCount, people)
	if req.Link != "" {
		body += "\n\n" + req.Link
	}

	return Message{
		Kind:    req.Kind,
		To:      req.Recipients,
		Subject: r.printer.Sprintf(subjectKey(req.Kind), period),
		Body:    body,
		Link:    req.Link,
	}
}

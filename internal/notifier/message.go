// File: internal/notifier/message.go
package notifier

import (
	"fmt"
	"strings"
)

// Kind names an outbound message template.
type Kind string

const (
	KindIntroductionReceived Kind = "introduction_received"
	KindIntroductionAccepted Kind = "introduction_accepted"
)

// Data is what the templates may mention.
type Data struct {
	IntroductionID   string
	VehicleSummary   string
	WantListingTitle string
	CounterpartName  string
	Message          string
}

// Message is a rendered outbound message.
type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func render(kind Kind, to string, d Data) (Message, error) {
	who := d.CounterpartName
	if strings.TrimSpace(who) == "" {
		who = "A CarMatch user"
	}
	m := Message{Kind: kind, To: to}
	switch kind {
	case KindIntroductionReceived:
		m.Subject = fmt.Sprintf("New vehicle for \"%s\"", d.WantListingTitle)
		m.Body = fmt.Sprintf("%s thinks their %s fits your want listing \"%s\".\n", who, d.VehicleSummary, d.WantListingTitle)
		if d.Message != "" {
			m.Body += fmt.Sprintf("\nTheir message:\n%s\n", d.Message)
		}
		m.Body += "\nOpen CarMatch to accept or reject the introduction. It expires in 72 hours."
	case KindIntroductionAccepted:
		m.Subject = fmt.Sprintf("Your %s introduction was accepted", d.VehicleSummary)
		m.Body = fmt.Sprintf("%s accepted your introduction for \"%s\". You can now contact them through CarMatch.", who, d.WantListingTitle)
	default:
		return Message{}, fmt.Errorf("unknown notifier kind %q", kind)
	}
	return m, nil
}

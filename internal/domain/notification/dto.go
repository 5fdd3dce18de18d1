package notification

import "fmt"

// Subject builds the email subject line for a message.
func (m Message) Subject() string {
	switch m.Outcome {
	case OutcomeSubmitted:
		return fmt.Sprintf("[Office Portal] New %s from %s", m.Kind.Noun(), m.ActorName)
	case OutcomeApproved:
		return fmt.Sprintf("[Office Portal] Your %s was approved", m.Kind.Noun())
	case OutcomeRejected:
		return fmt.Sprintf("[Office Portal] Your %s was rejected", m.Kind.Noun())
	}
	return "[Office Portal] " + m.Kind.Label()
}

// Noun is the label in running text, e.g. "vacation request".
func (k Kind) Noun() string {
	return lower(k.Label())
}

func (m Message) Validate() error {
	if m.Kind == "" || m.Outcome == "" || m.Summary == "" {
		return ErrInvalidMessage
	}
	if m.Outcome == OutcomeRejected && m.Reason == "" {
		return ErrInvalidMessage
	}
	return nil
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

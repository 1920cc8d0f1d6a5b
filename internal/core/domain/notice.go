package domain

// Severity classifies a user-facing notice.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Notice is a message shown to the user on the next page view.
type Notice struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

func Warning(text string) Notice { return Notice{Severity: SeverityWarning, Text: text} }

func Success(text string) Notice { return Notice{Severity: SeveritySuccess, Text: text} }

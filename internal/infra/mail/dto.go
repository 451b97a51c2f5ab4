package mail

import "strings"

// LeadEmailData is the view model for the lead notification templates.
// Catalog slugs are already expanded to labels.
type LeadEmailData struct {
	LeadID       string
	Name         string
	Email        string
	Phone        string
	Company      string
	Service      string
	ProjectType  string
	Timeline     string
	Budget       string
	Message      string
	Received     string
	DashboardURL string
}

func (d LeadEmailData) MessageLines() []string {
	return strings.Split(d.Message, "\n")
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
}

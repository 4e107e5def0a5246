package notifications

import (
	"fmt"
	"text/template"
)

// Decision email templates. Each template name defines a :subject and
// a :body block; data carries Name and GraduationYear.
const decisionTemplates = `
{{define "profile_approved:subject"}}Welcome to the alumni network{{end}}
{{define "profile_approved:body"}}Hi {{.Name}},

Your alumni profile (batch of {{.GraduationYear}}) has been approved.
You can now sign in and browse the member directory.
{{end}}

{{define "profile_rejected:subject"}}Update on your alumni registration{{end}}
{{define "profile_rejected:body"}}Hi {{.Name}},

We could not approve your alumni registration at this time. If you
believe this is a mistake, please reply to this email.
{{end}}
`

func loadTemplates() (*template.Template, error) {
	tmpl, err := template.New("decisions").Parse(decisionTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse decision templates: %w", err)
	}
	return tmpl, nil
}

// internal/workers/communication/send-score-notification/message.go
package sendscorenotification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"tidescore-workers/internal/tidescore"
)

const emailSubject = "Your TideScore result"

var textTemplate = template.Must(template.New("text").Parse(`Hello {{.Name}},

Your TideScore for application {{.ApplicationID}} is {{.Score}} out of 850.
Risk level: {{.Risk}}
{{if .Suggestions}}
What you can do next:
{{range .Suggestions}}  - {{.}}
{{end}}{{end}}
Thank you for applying.
`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("html").Parse(`<html><body>
<p>Hello {{.Name}},</p>
<p>Your TideScore for application <strong>{{.ApplicationID}}</strong> is <strong>{{.Score}}</strong> out of 850.</p>
<p>Risk level: {{.Risk}}</p>
{{if .Suggestions}}<p>What you can do next:</p>
<ul>{{range .Suggestions}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p>Thank you for applying.</p>
</body></html>`))

type messageData struct {
	Name          string
	ApplicationID string
	Score         int
	Risk          tidescore.RiskLevel
	Suggestions   []string
}

func newMessageData(input *Input) messageData {
	name := input.RecipientName
	if name == "" {
		name = "applicant"
	}
	return messageData{
		Name:          name,
		ApplicationID: input.ApplicationID,
		Score:         input.ScoreReport.ScaledScore,
		Risk:          input.ScoreReport.RiskLevel,
		Suggestions:   input.ScoreReport.Suggestions,
	}
}

// RenderEmail builds the text and HTML bodies for a score email.
func RenderEmail(input *Input) (text, html string, err error) {
	data := newMessageData(input)

	var tb, hb bytes.Buffer
	if err := textTemplate.Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTemplate.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}
	return tb.String(), hb.String(), nil
}

// RenderSMS builds the short text message.
func RenderSMS(input *Input) string {
	return fmt.Sprintf("TideScore: your score is %d (%s risk). Check your email for ways to improve it.",
		input.ScoreReport.ScaledScore, input.ScoreReport.RiskLevel)
}

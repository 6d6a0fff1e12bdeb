package mailer

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// ResetSubject is the subject line of password reset mail.
const ResetSubject = "[Microblog] Reset Your Password"

const resetText = `Dear {{.Username}},

To reset your password click on the following link:

{{.Link}}

If you have not requested a password reset simply ignore this message.

Sincerely,

The Microblog Team
`

const resetHTML = `<p>Dear {{.Username}},</p>
<p>
    To reset your password
    <a href="{{.Link}}">click here</a>.
</p>
<p>Alternatively, you can paste the following link in your browser's address bar:</p>
<p>{{.Link}}</p>
<p>If you have not requested a password reset simply ignore this message.</p>
<p>Sincerely,</p>
<p>The Microblog Team</p>
`

var (
	resetTextTmpl = texttemplate.Must(texttemplate.New("reset_password.txt").Parse(resetText))
	resetHTMLTmpl = htmltemplate.Must(htmltemplate.New("reset_password.html").Parse(resetHTML))
)

// ResetData feeds the password reset templates.
type ResetData struct {
	Username string
	Link     string
}

// RenderReset builds the password reset message for one recipient.
func RenderReset(from, to string, data ResetData) (Message, error) {
	var text, html bytes.Buffer
	if err := resetTextTmpl.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := resetHTMLTmpl.Execute(&html, data); err != nil {
		return Message{}, err
	}

	return Message{
		From:     from,
		To:       []string{to},
		Subject:  ResetSubject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}

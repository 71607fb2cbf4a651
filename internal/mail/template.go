package mail

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/joelohman/birthday-reminder-be/internal/models"
)

// ReminderSubject is the subject line used for every reminder email.
const ReminderSubject = "Birthday reminder!"

var reminderTmpl = template.Must(template.New("reminder").Parse(`
<table style="width:100%; border:5px dotted #f0c8b0; color: #303346; padding: 20px; text-align:center; max-width: 600px; margin: auto;">
  <tr>
    <th style="height:70px; font-size:32px">Hey there!</th>
  </tr>
  <tr style="height:40px">
    <td>Looks like <b>{{.Name}}</b> has a birthday {{.When}}</td>
  </tr>
  <tr style="height:40px">
    <td>Don't forget to get them something nice!</td>
  </tr>
{{- if .Note}}
  <tr style="height:40px">
    <td>Your notes:</td>
  </tr>
  <tr style="height:40px">
    <td>
      <i>
        <span style="font-size:20px">&ldquo;</span>
        {{.Note}}
        <span style="font-size:20px">&rdquo;</span>
      </i>
    </td>
  </tr>
{{- end}}
</table>
`))

// RenderReminder turns a notification request into a deliverable message.
func RenderReminder(req models.NotificationRequest) (Message, error) {
	when := fmt.Sprintf("in %d days!", req.DaysUntil)
	if req.DaysUntil == 0 {
		when = "TODAY! 🎈🎈"
	}

	data := struct {
		Name string
		When string
		Note string
	}{
		Name: req.Birthday.FullName(),
		When: when,
		Note: req.Birthday.Note,
	}

	var html strings.Builder
	if err := reminderTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render reminder template: %w", err)
	}

	text := fmt.Sprintf("Hey there! Looks like %s has a birthday %s Don't forget to get them something nice!", data.Name, when)
	if req.Birthday.Note != "" {
		text += fmt.Sprintf(" Your notes: “%s”", req.Birthday.Note)
	}

	return Message{
		To:       req.RecipientAddress,
		Subject:  ReminderSubject,
		HTMLBody: html.String(),
		TextBody: text,
	}, nil
}

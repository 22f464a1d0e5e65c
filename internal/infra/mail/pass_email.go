package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

type PassEmailData struct {
	Name        string
	ProgramName string
	Tier        string
	Link        string
}

var passEmailTmpl = template.Must(template.New("pass").Parse(`<!doctype html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1d1d1f;">
    <p>Hi {{.Name}},</p>
    <p>Your {{.ProgramName}} {{.Tier}} card is ready.</p>
    <p><a href="{{.Link}}" style="display:inline-block;padding:12px 20px;background:#1a73e8;color:#fff;border-radius:6px;text-decoration:none;">Add to Wallet</a></p>
    <p style="font-size:12px;color:#6e6e73;">Open this link on your phone. iPhone users get an Apple Wallet pass, everyone else a Google Wallet card.</p>
  </body>
</html>`))

func RenderPassEmail(d PassEmailData) (subject, body string, err error) {
	var buf bytes.Buffer
	if err := passEmailTmpl.Execute(&buf, d); err != nil {
		return "", "", fmt.Errorf("render pass email: %w", err)
	}
	return fmt.Sprintf("Your %s card is ready", d.ProgramName), buf.String(), nil
}

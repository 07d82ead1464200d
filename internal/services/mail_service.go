package services

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	BaseURL  string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: Missing SMTP environment variables.")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		BaseURL:  baseURL,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: Emberboard <%s>\r\n"+
			"Subject: %s\r\n"+
			"%s\r\n%s", strings.Join(to, ","), s.From, subject, mime, body))

		err := smtp.SendMail(addr, auth, s.From, to, msg)
		if err != nil {
			log.Printf("Failed to send email to %v: %v", to, err)
		} else {
			log.Printf("Email sent to %v: %s", to, subject)
		}
	}()
}

var digestMailTmpl = template.Must(template.New("digest").Parse(`
<p>Hi {{.Username}},</p>
<p>Your post received <strong>{{.ReactionCount}}</strong> reaction(s) from {{.ActorCount}} member(s).</p>
<p><a href="{{.PostLink}}">View your post</a></p>
<p style="color:#888;font-size:12px">You can turn off these emails in your notification settings.</p>
`))

// SendReactionDigest 摘要邮件，正文只做简单汇总，不展开每条 reaction
func (s *MailService) SendReactionDigest(email, username, postPid string, actorCount, reactionCount int) {
	data := map[string]interface{}{
		"Username":      username,
		"ActorCount":    actorCount,
		"ReactionCount": reactionCount,
		"PostLink":      fmt.Sprintf("%s/p/%s", s.BaseURL, postPid),
	}

	var buf bytes.Buffer
	if err := digestMailTmpl.Execute(&buf, data); err != nil {
		log.Printf("Error rendering digest email: %v", err)
		return
	}
	s.sendAsync([]string{email}, fmt.Sprintf("Your post received %d new reactions", reactionCount), buf.String())
}

package mailservice

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	texttemplate "text/template"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/haerin/internal/common"
)

const welcomeTemplate = "welcome_email.tmpl"

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	logger    MailLogger
	baseURL   string
	baseDelay time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

// Template holds the parsed email templates keyed by file name. Subjects and plain bodies are
// rendered as text, html bodies with contextual escaping.
type Template struct {
	text map[string]*texttemplate.Template
	html map[string]*template.Template
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

type welcomeData struct {
	Name    string
	BaseURL string
}

// Config holds the SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

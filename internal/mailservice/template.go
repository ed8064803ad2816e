package mailservice

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("unknown email template")

// NewTemplate parses every embedded template. It panics on a malformed template since they are
// compiled into the binary.
func NewTemplate() *Template {
	files, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		panic(err)
	}

	tp := &Template{
		text: make(map[string]*texttemplate.Template, len(files)),
		html: make(map[string]*template.Template, len(files)),
	}

	for _, file := range files {
		name := path.Base(file)
		tp.text[name] = texttemplate.Must(texttemplate.New(name).ParseFS(templateFS, file))
		tp.html[name] = template.Must(template.New(name).ParseFS(templateFS, file))
	}

	return tp
}

// ParseTemplate renders the subject, plainBody and htmlBody blocks of the named template.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	text, ok := tp.text[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	subject := new(bytes.Buffer)
	if err := text.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, nil, nil, fmt.Errorf("render subject of %s: %w", name, err)
	}

	plainBody := new(bytes.Buffer)
	if err := text.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return nil, nil, nil, fmt.Errorf("render plainBody of %s: %w", name, err)
	}

	htmlBody := new(bytes.Buffer)
	if err := tp.html[name].ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
		return nil, nil, nil, fmt.Errorf("render htmlBody of %s: %w", name, err)
	}

	return subject, plainBody, htmlBody, nil
}

package mailservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	template := NewTemplate()

	testCases := []struct {
		name         string
		templateName string
		data         any
		expectedErr  error
		subject      string
		plainBody    string
		htmlBody     string
	}{
		{
			name:         "success",
			templateName: welcomeTemplate,
			data: welcomeData{
				Name:    "Test User",
				BaseURL: "http://localhost:4000",
			},
			subject:   "Welcome to Haerin, Test User!",
			plainBody: "Hi Test User,",
			htmlBody:  `<a href="http://localhost:4000">`,
		},
		{
			name:         "only the html body is escaped",
			templateName: welcomeTemplate,
			data: welcomeData{
				Name:    "O'Brien <dev>",
				BaseURL: "http://localhost:4000",
			},
			subject:   "Welcome to Haerin, O'Brien <dev>!",
			plainBody: "Hi O'Brien <dev>,",
			htmlBody:  "<p>Hi O&#39;Brien &lt;dev&gt;,</p>",
		},
		{
			name:         "invalid template name",
			templateName: "invalid_template.tmpl",
			expectedErr:  ErrUnknownTemplate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.subject, s.String())
			assert.Contains(t, p.String(), tc.plainBody)
			assert.Contains(t, h.String(), tc.htmlBody)
		})
	}
}

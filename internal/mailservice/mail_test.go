package mailservice

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendEmail(t *testing.T) {
	errParse := errors.New("could not parse template")
	errDial := errors.New("connection refused")

	testCases := []struct {
		name        string
		recipient   string
		parseErr    error
		dialErr     error
		expectParse bool
		expectDial  bool
		expectedErr error
	}{
		{
			name:        "success",
			recipient:   "test@example.com",
			expectParse: true,
			expectDial:  true,
		},
		{
			name:        "surrounding whitespace",
			recipient:   "  test@example.com ",
			expectParse: true,
			expectDial:  true,
		},
		{
			name:        "no recipient",
			recipient:   " ",
			expectedErr: ErrNoRecipient,
		},
		{
			name:        "template failure",
			recipient:   "test@example.com",
			parseErr:    errParse,
			expectParse: true,
			expectedErr: errParse,
		},
		{
			name:        "dial failure",
			recipient:   "test@example.com",
			dialErr:     errDial,
			expectParse: true,
			expectDial:  true,
			expectedErr: errDial,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockParser := new(MockTemplate)
			mockDialer := new(MockDialer)

			mailer := Mail{
				dialer: mockDialer,
				parser: mockParser,
				sender: "Haerin <no-reply@haerin.dev>",
			}

			data := welcomeData{Name: "Test User"}
			mockParser.On("ParseTemplate", welcomeTemplate, data).Return(
				bytes.NewBufferString("Test Subject\n"),
				bytes.NewBufferString("Test Plain Body"),
				bytes.NewBufferString("Test HTML Body"),
				tc.parseErr,
			)

			mockDialer.On("DialAndSend", mock.MatchedBy(func(msgs []*mail.Message) bool {
				return len(msgs) == 1 &&
					msgs[0].GetHeader("To")[0] == "test@example.com" &&
					msgs[0].GetHeader("Subject")[0] == "Test Subject"
			})).Return(tc.dialErr)

			err := mailer.send(tc.recipient, data, welcomeTemplate)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			if tc.expectParse {
				mockParser.AssertExpectations(t)
			} else {
				mockParser.AssertNotCalled(t, "ParseTemplate", mock.Anything, mock.Anything)
			}
			if tc.expectDial {
				mockDialer.AssertExpectations(t)
			} else {
				mockDialer.AssertNotCalled(t, "DialAndSend", mock.Anything)
			}
		})
	}
}

package userservice

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sushihentaime/haerin/internal/common"
)

var (
	EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateName(v *common.Validator, name string) {
	v.Check(strings.TrimSpace(name) != "", "name", "must be provided")
	v.Check(v.CheckStringLength(name, 1, 50), "name", "must not be more than 50 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(EmailRX.MatchString(email), "email", "must be a valid email address")
}

func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(v.CheckStringLength(password, 6, 72), "password", "must be between 6 and 72 characters long")
	// bcrypt rejects anything longer than 72 bytes
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
}

func validateBio(v *common.Validator, bio string) {
	v.Check(v.CheckStringLength(bio, 0, 500), "bio", "must not be more than 500 characters long")
}

func validateAvatar(v *common.Validator, avatar string) {
	if avatar == "" {
		return
	}

	u, err := url.Parse(avatar)
	v.Check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "", "avatar", "must be a valid http(s) URL")
	v.Check(len(avatar) <= 2048, "avatar", "must not be more than 2048 bytes long")
}

func validateID(v *common.Validator, id int64, name string) {
	v.Check(id > 0, name, "must be greater than zero")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package userservice

import (
	"strings"
	"testing"

	"github.com/sushihentaime/haerin/internal/common"
)

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name  string
		valid bool
	}{
		{name: "", valid: false},
		{name: "   ", valid: false},
		{name: "a", valid: true},
		{name: "Kang Hae-rin", valid: true},
		{name: strings.Repeat("a", 50), valid: true},
		{name: strings.Repeat("a", 51), valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateName(v, tc.name)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		email string
		valid bool
	}{
		{email: "", valid: false},
		{email: "a", valid: false},
		{email: "a@", valid: false},
		{email: "a@b", valid: false},
		{email: "a@b.c", valid: false},
		{email: "a@b.com", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			v := common.NewValidator()
			validateEmail(v, tc.email)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		password string
		valid    bool
	}{
		{password: "", valid: false},
		{password: "abcde", valid: false},
		{password: "abcdef", valid: true},
		{password: "password123", valid: true},
		{password: strings.Repeat("x", 72), valid: true},
		{password: strings.Repeat("x", 73), valid: false},
		{password: strings.Repeat("é", 36), valid: true},
		{password: strings.Repeat("é", 37), valid: false},
		{password: strings.Repeat("密", 30), valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.password, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
				for _, e := range v.Errors {
					t.Log(e)
				}
			}
		})
	}
}

func TestValidateAvatar(t *testing.T) {
	testCases := []struct {
		avatar string
		valid  bool
	}{
		{avatar: "", valid: true},
		{avatar: "https://cdn.example.com/a.png", valid: true},
		{avatar: "ftp://example.com/a.png", valid: false},
		{avatar: "not a url", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.avatar, func(t *testing.T) {
			v := common.NewValidator()
			validateAvatar(v, tc.avatar)
			if v.Valid() != tc.valid {
				t.Errorf("expected %v, got %v", tc.valid, v.Valid())
			}
		})
	}
}

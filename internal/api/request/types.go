package request

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Field length limits for credential forms
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
	maxBodyBytes      = 1 << 16
)

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate returns the first field problem, or "" when the request is usable
func (r *LoginRequest) Validate() string {
	return validateCredentials(r.Username, r.Password)
}

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Validate returns the first field problem, or "" when the request is usable
func (r *RegisterRequest) Validate() string {
	if msg := validateCredentials(r.Username, r.Password); msg != "" {
		return msg
	}
	if utf8.RuneCountInString(r.DisplayName) > 64 {
		return "Display name must be at most 64 characters"
	}
	return ""
}

func validateCredentials(username, password string) string {
	if utf8.RuneCountInString(strings.TrimSpace(username)) < MinUsernameLength {
		return "Username must be at least 3 characters"
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "Password must be at least 6 characters"
	}
	return ""
}

// Decode reads a JSON body into dst, rejecting oversized bodies
func Decode(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
}

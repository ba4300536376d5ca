package mailer

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	RegistrationSubject  = "Verify your email for upzunction"
	PasswordResetSubject = "Your Password Reset OTP for upzunction"
)

var (
	registrationTmpl = template.Must(template.New("registration").Parse(
		"Hello {{.Username}},\n\nYour verification OTP is: {{.OTP}}\nIt will expire in {{.Minutes}} minutes.\n"))
	passwordResetTmpl = template.Must(template.New("password_reset").Parse(
		"Hello {{.Username}},\n\nYour OTP is: {{.OTP}}\nIt will expire in {{.Minutes}} minutes.\n"))
)

type OTPMail struct {
	Username string
	OTP      string
	Minutes  int
}

func RegistrationBody(data OTPMail) (string, error) {
	return render(registrationTmpl, data)
}

func PasswordResetBody(data OTPMail) (string, error) {
	return render(passwordResetTmpl, data)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s mail: %w", t.Name(), err)
	}
	return buf.String(), nil
}

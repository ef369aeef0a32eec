package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/you/campusauth/domain"
)

const otpSubject = "Your UNIMIGO Login OTP"

var otpHTML = template.Must(template.New("otp").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; background: #ffffff; border-radius: 14px; border: 1px solid #e5e5e5;">
  <div style="background: linear-gradient(135deg, {{.Primary}} 0%, {{.Accent}} 100%); padding: 40px 20px; text-align: center;">
    <h1 style="color: #ffffff; margin: 0; font-size: 32px;">UNIMIGO</h1>
    <p style="color: #ffffff; margin: 8px 0 0;">{{.University}}</p>
  </div>
  <div style="padding: 32px 24px; color: #333333;">
    <p>Hi {{.FirstName}},</p>
    <p>Use the code below to sign in. It expires in {{.Minutes}} minutes.</p>
    <p style="font-size: 36px; font-weight: bold; letter-spacing: 8px; text-align: center;">{{.Code}}</p>
    <p style="font-size: 12px; color: #888888;">If you did not request this code you can ignore this email.</p>
  </div>
</div>`))

// OTPEmail renders the login code message for a tenant member
func OTPEmail(to, code string, tenant *domain.Tenant, minutes int) (domain.EmailMessage, error) {
	theme := tenant.Theme
	if theme == (domain.Theme{}) {
		theme = domain.DefaultTheme
	}
	data := struct {
		FirstName, University, Code, Primary, Accent string
		Minutes                                      int
	}{
		FirstName:  firstName(to),
		University: tenant.Name,
		Code:       code,
		Primary:    theme.PrimaryColor,
		Accent:     theme.AccentColor,
		Minutes:    minutes,
	}

	var html bytes.Buffer
	if err := otpHTML.Execute(&html, data); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("render otp email: %w", err)
	}

	text := fmt.Sprintf("Hi %s,\n\nYour %s login code is %s. It expires in %d minutes.\n",
		data.FirstName, tenant.Name, code, minutes)

	return domain.EmailMessage{
		To:       to,
		Subject:  otpSubject,
		TextBody: text,
		HTMLBody: html.String(),
	}, nil
}

// firstName guesses a greeting from "first.last@domain"
func firstName(email string) string {
	local := domain.LocalPart(email)
	if i := strings.Index(local, "."); i > 0 {
		local = local[:i]
	}
	if local == "" {
		return "there"
	}
	r, size := utf8.DecodeRuneInString(local)
	return string(unicode.ToUpper(r)) + local[size:]
}

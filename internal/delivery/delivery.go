// Package delivery builds WhatsApp and mailto deep links with pre-filled
// text. Nothing is sent from the server; the visitor's own WhatsApp or
// mail client takes over when the link is opened.
package delivery

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	DefaultCountryCode = "55"
	whatsAppBase       = "https://api.whatsapp.com/send"
)

// Digits strips everything but ASCII digits from phone.
func Digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

// NormalizePhone reduces phone to digits and prefixes countryCode for
// national numbers (10 or 11 digits, area code included).
func NormalizePhone(phone, countryCode string) string {
	d := Digits(phone)
	if n := len(d); n == 10 || n == 11 {
		return Digits(countryCode) + d
	}
	return d
}

// componentUnescaper undoes the QueryEscape choices that differ from a
// browser's encodeURIComponent: spaces as %20 and !'()* left literal.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s the way encodeURIComponent does.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// WhatsAppURL returns a click-to-chat link using DefaultCountryCode.
func WhatsAppURL(phone, text string) string {
	return whatsAppURL(NormalizePhone(phone, DefaultCountryCode), text)
}

func whatsAppURL(digits, text string) string {
	return whatsAppBase + "?phone=" + digits + "&text=" + encodeComponent(text)
}

// MailtoURL returns a mailto link with encoded subject and body.
func MailtoURL(address, subject, body string) string {
	return "mailto:" + strings.TrimSpace(address) +
		"?subject=" + encodeComponent(subject) +
		"&body=" + encodeComponent(body)
}

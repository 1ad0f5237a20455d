package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/RiskiJayaPutra/whfood/internal/money"
)

// NormalizePhone converts local numbers like "0812-3456-789" into the international
// digits-only form wa.me expects ("628123456789"), using countryCode for a leading 0.
func NormalizePhone(raw, countryCode string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "00"):
		return digits[2:]
	case strings.HasPrefix(digits, "0"):
		return countryCode + digits[1:]
	case strings.HasPrefix(digits, "8") && countryCode == "62":
		return countryCode + digits
	}
	return digits
}

// ChatURL builds a wa.me click-to-chat link with an optional prefilled message.
func ChatURL(phone, countryCode, message string) string {
	u := "https://wa.me/" + NormalizePhone(phone, countryCode)
	if message != "" {
		u += "?text=" + url.QueryEscape(message)
	}
	return u
}

// OrderMessage is the text a buyer starts the conversation with.
func OrderMessage(productName string, price decimal.Decimal, productURL string) string {
	return fmt.Sprintf("Hello, I'd like to order %s (%s).\n%s", productName, money.FormatRupiah(price), productURL)
}

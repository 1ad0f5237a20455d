package domain

import (
	"strings"
	"time"
	"unicode"
)

type SellerStatus string

const (
	SellerPending   SellerStatus = "pending"
	SellerApproved  SellerStatus = "approved"
	SellerSuspended SellerStatus = "suspended"
)

func (s SellerStatus) Valid() bool {
	switch s {
	case SellerPending, SellerApproved, SellerSuspended:
		return true
	}
	return false
}

type SellerProfile struct {
	ID          int64        `db:"id" json:"id"`
	UserID      int64        `db:"user_id" json:"user_id"`
	ShopName    string       `db:"shop_name" json:"shop_name"`
	Slug        string       `db:"slug" json:"slug"`
	Description string       `db:"description" json:"description,omitempty"`
	WhatsApp    string       `db:"whatsapp" json:"whatsapp"`
	Address     string       `db:"address" json:"address,omitempty"`
	City        string       `db:"city" json:"city"`
	Status      SellerStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

type PaymentMethodKind string

const (
	PaymentBankTransfer   PaymentMethodKind = "bank_transfer"
	PaymentEWallet        PaymentMethodKind = "e_wallet"
	PaymentQRIS           PaymentMethodKind = "qris"
	PaymentCashOnDelivery PaymentMethodKind = "cash_on_delivery"
)

var paymentLabels = map[PaymentMethodKind]string{
	PaymentBankTransfer:   "Bank transfer",
	PaymentEWallet:        "E-wallet",
	PaymentQRIS:           "QRIS",
	PaymentCashOnDelivery: "Cash on delivery",
}

func (k PaymentMethodKind) Valid() bool {
	_, ok := paymentLabels[k]
	return ok
}

func (k PaymentMethodKind) Label() string {
	if l, ok := paymentLabels[k]; ok {
		return l
	}
	return string(k)
}

// PaymentMethod is how a seller accepts money; shown to buyers next to the WhatsApp button.
type PaymentMethod struct {
	ID            int64             `db:"id" json:"id"`
	SellerID      int64             `db:"seller_id" json:"seller_id"`
	Method        PaymentMethodKind `db:"method" json:"method"`
	Provider      string            `db:"provider" json:"provider,omitempty"`
	AccountName   string            `db:"account_name" json:"account_name,omitempty"`
	AccountNumber string            `db:"account_number" json:"account_number,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
}

// Slugify lowercases s and joins its letter/digit runs with '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Dapur Bu Sri":        "dapur-bu-sri",
		"  Kue & Roti #1  ":   "kue-roti-1",
		"Sambal---Mantap!!":   "sambal-mantap",
		"Café Nusantara":      "caf-nusantara",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, RoleSeller.Valid())
	assert.False(t, Role("root").Valid())
	assert.True(t, SellerApproved.Valid())
	assert.False(t, SellerStatus("banned").Valid())
	assert.True(t, PaymentQRIS.Valid())
	assert.Equal(t, "Cash on delivery", PaymentCashOnDelivery.Label())
	assert.True(t, IsCategory("snacks"))
	assert.False(t, IsCategory("electronics"))
	assert.Equal(t, "Frozen food", CategoryLabel("frozen"))
}

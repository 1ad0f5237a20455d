package whatsapp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct{ in, cc, want string }{
		{"0812-3456-7890", "62", "6281234567890"},
		{"+62 812 3456 7890", "62", "6281234567890"},
		{"81234567890", "62", "6281234567890"},
		{"0062 81234", "62", "6281234"},
		{"012-345 6789", "60", "60123456789"},
		{"", "62", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizePhone(c.in, c.cc), c.in)
	}
}

func TestChatURL(t *testing.T) {
	assert.Equal(t, "https://wa.me/6281234567890", ChatURL("0812 3456 7890", "62", ""))

	msg := OrderMessage("Rendang", decimal.NewFromInt(45000), "https://whfood.id/products/3")
	u, err := url.Parse(ChatURL("081234567890", "62", msg))
	require.NoError(t, err)
	assert.Equal(t, "/6281234567890", u.Path)
	assert.Equal(t, "Hello, I'd like to order Rendang (Rp 45.000).\nhttps://whfood.id/products/3", u.Query().Get("text"))
}

func TestTwilioSend(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "tok", pass)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer srv.Close()

	c := NewTwilio("AC123", "tok", "whatsapp:+14155238886", "62")
	c.BaseURL = srv.URL
	require.True(t, c.Configured())

	require.NoError(t, c.Send(context.Background(), "0812 1111 2222", "Your shop is approved"))
	assert.Equal(t, "whatsapp:+6281211112222", got.Get("To"))
	assert.Equal(t, "Your shop is approved", got.Get("Body"))
}

func TestTwilioSend_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewTwilio("AC123", "tok", "whatsapp:+1", "62")
	c.BaseURL = srv.URL
	err := c.Send(context.Background(), "0812", "hi")

	var httpErr *twilioHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
}

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Name     string `form:"name" validate:"required,max=80"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone" validate:"omitempty,phone"`
	Category string `form:"category" validate:"category"`
}

func TestStruct(t *testing.T) {
	v := New()

	err := v.Struct(signupForm{Name: "Sri", Email: "sri@example.com", Phone: "0812-3456-7890", Category: "snacks"})
	assert.NoError(t, err)

	err = v.Struct(signupForm{Email: "nope", Phone: "12", Category: "tv"})
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	msgs := errs.Messages()
	assert.Equal(t, "name is required", msgs["name"])
	assert.Equal(t, "enter a valid email address", msgs["email"])
	assert.Equal(t, "enter a valid WhatsApp number", msgs["phone"])
	assert.Equal(t, "choose a category", msgs["category"])
	assert.Equal(t, "name is required", errs.Error())
}

func TestText(t *testing.T) {
	v := New()
	assert.Equal(t, "Enak banget", v.Text("  <b>Enak</b> banget<script>alert(1)</script> "))
	assert.Equal(t, "Kue & Roti", v.Text("Kue & Roti"))
}

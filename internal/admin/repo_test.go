package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductsSQL_UsesEscapedPattern(t *testing.T) {
	assert.Contains(t, productsSQL, "($1 = '' OR p.name ILIKE $1)")
	assert.NotContains(t, productsSQL, "'%' ||")
}

func TestSetProductStatusSQL_FlagsAdminHide(t *testing.T) {
	assert.Contains(t, setProductStatusSQL, "status = $2")
	assert.Contains(t, setProductStatusSQL, "moderated = ($2 = 'hidden')")
}

package reviews

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertSQL_KeepsStatus(t *testing.T) {
	assert.Contains(t, upsertSQL, "ON CONFLICT (product_id, user_id) DO UPDATE")
	assert.Contains(t, upsertSQL, "SET rating = EXCLUDED.rating, comment = EXCLUDED.comment")

	set := upsertSQL[strings.Index(upsertSQL, "DO UPDATE"):]
	assert.NotContains(t, set, "status")
	assert.NotContains(t, upsertSQL[:strings.Index(upsertSQL, "VALUES")], "status", "new reviews take the column default")
}

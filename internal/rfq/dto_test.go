package rfq

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organimart/organimart-backend/pkg/db/models"
)

func TestView_MarshalsSnakeCase(t *testing.T) {
	view := View{RFQ: &models.RFQ{ProductName: "Heirloom Tomatoes"}, QuoteCount: 3, Redacted: true}

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `"rfq":`)
	assert.Contains(t, body, `"quote_count":3`)
	assert.Contains(t, body, `"redacted":true`)
}

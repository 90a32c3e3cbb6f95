package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuditEventCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventPrizeClaimed.Category())
	assert.Equal(t, CategoryCompliance, EventRaffleEntered.Category())
	assert.Equal(t, CategorySecurity, EventReentryBlocked.Category())
	assert.Equal(t, CategoryOperations, EventRaffleCreated.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}

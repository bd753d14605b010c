package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_SetAndAllows(t *testing.T) {
	m := NewMatrix("proj-1")

	assert.False(t, m.Allows("manager", PermTaskCreate))

	require.NoError(t, m.Set("manager", PermTaskCreate, true))
	require.NoError(t, m.Set("manager", PermTaskDelete, false))
	require.NoError(t, m.Set("viewer", PermIssueCreate, false))

	assert.True(t, m.Allows("manager", PermTaskCreate))
	assert.False(t, m.Allows("manager", PermTaskDelete))
	assert.False(t, m.Allows("viewer", PermIssueCreate))
	assert.False(t, m.Allows("unknown-role", PermTaskCreate))
}

func TestMatrix_AdminShortCircuit(t *testing.T) {
	m := NewMatrix("proj-1")
	// Even an explicit deny cannot revoke admin.
	require.NoError(t, m.Set("admin", PermMatrixEdit, false))
	assert.True(t, m.Allows("admin", PermMatrixEdit))
	assert.True(t, m.Allows("admin", Permission("anything.at.all")))
}

func TestMatrix_EmptyRole(t *testing.T) {
	m := NewMatrix("proj-1")
	assert.Error(t, m.Set("", PermTaskEdit, true))
}

func TestMatrix_NilGrid(t *testing.T) {
	m := &Matrix{ProjectID: "proj-1"}
	require.NoError(t, m.Set("member", PermTaskEdit, true))
	assert.True(t, m.Allows("member", PermTaskEdit))
}

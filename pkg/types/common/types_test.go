package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_GeneratesValidUUID(t *testing.T) {
	id := NewID()
	_, err := uuid.Parse(string(id))
	assert.NoError(t, err)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

func TestPagination_Normalize_Defaults(t *testing.T) {
	var p Pagination
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestPagination_Normalize_ClampsOversizedPage(t *testing.T) {
	p := Pagination{Page: 2, PageSize: MaxPageSize + 1}
	p.Normalize()
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
}

func TestPagination_Normalize_NegativeValues(t *testing.T) {
	p := Pagination{Page: -3, PageSize: -1}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
}

func TestPagination_Offset(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())
}

func TestDateRange_IsZero(t *testing.T) {
	assert.True(t, DateRange{}.IsZero())

	now := time.Now()
	assert.False(t, DateRange{From: now}.IsZero())
	assert.False(t, DateRange{To: now}.IsZero())
}

func TestAPIResponse_SuccessRoundTrip(t *testing.T) {
	resp := APIResponse[[]string]{
		Success:    true,
		Data:       []string{"a", "b"},
		Pagination: &Pagination{Page: 1, PageSize: 50, Total: 2},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded APIResponse[[]string]
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Success)
	assert.Equal(t, resp.Data, decoded.Data)
	require.NotNil(t, decoded.Pagination)
	assert.Equal(t, int64(2), decoded.Pagination.Total)
	assert.Nil(t, decoded.Error)
}

func TestAPIResponse_ErrorOmitsEmptyDetail(t *testing.T) {
	resp := APIResponse[any]{
		Success: false,
		Error:   &ErrorDetail{Code: "COMMON_005", Message: "not found"},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "detail")
	assert.NotContains(t, string(data), "pagination")
}

func TestSortOrder_Values(t *testing.T) {
	assert.Equal(t, SortOrder("asc"), SortAsc)
	assert.Equal(t, SortOrder("desc"), SortDesc)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"branchpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, rec
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Msg: "bad input"}, http.StatusBadRequest},
		{"not found", &service.NotFoundError{Resource: "product", Key: "x"}, http.StatusNotFound},
		{"insufficient stock", &service.InsufficientStockError{SKU: "SKU-1", Available: 1, Requested: 5}, http.StatusNotFound},
		{"protected branch", service.ErrProtectedBranch, http.StatusForbidden},
		{"transaction failure", &service.TransactionError{Op: "settle", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext(t, "")
			respondError(c, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRespondError_TransactionDetailsNotLeaked(t *testing.T) {
	c, rec := testContext(t, "")
	respondError(c, &service.TransactionError{Op: "settle", Err: errors.New("pq: deadlock detected")})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "transaction failed", body["detail"])
	assert.NotContains(t, rec.Body.String(), "deadlock")
}

func TestBindAndValidate_InvalidJSON(t *testing.T) {
	c, rec := testContext(t, "{not json")

	var req struct {
		Name string `json:"name" validate:"required"`
	}
	ok := bindAndValidate(c, &req)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBindAndValidate_FieldViolations(t *testing.T) {
	c, rec := testContext(t, `{"quantity": 0}`)

	var req struct {
		Quantity int `json:"quantity" validate:"required,min=1"`
	}
	ok := bindAndValidate(c, &req)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	fields, _ := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "Quantity")
}

func TestBindAndValidate_OK(t *testing.T) {
	c, rec := testContext(t, `{"quantity": 3}`)

	var req struct {
		Quantity int `json:"quantity" validate:"required,min=1"`
	}
	ok := bindAndValidate(c, &req)

	assert.True(t, ok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package market

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrCode
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnavailable, http.StatusConflict},
		{CodeSelfPurchase, http.StatusForbidden},
		{CodeForbidden, http.StatusForbidden},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInternal, http.StatusInternalServerError},
		{ErrCode("???"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(string(c.code), func(t *testing.T) {
			assert.Equal(t, c.want, NewError(c.code, "x").HTTPStatus())
		})
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NewError(CodeUnavailable, "beda message", "detail")
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.NotErrorIs(t, err, ErrProductNotFound)
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("conn refused")
	err := WrapInternal(inner, "get product")
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "conn refused")
}

func TestErrorMessage(t *testing.T) {
	err := NewError(CodeValidation, "invalid product")
	assert.Equal(t, fmt.Sprintf("%s: invalid product", CodeValidation), err.Error())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusAvailable, StatusSold))
	assert.False(t, CanTransition(StatusSold, StatusAvailable))
	assert.False(t, CanTransition(StatusSold, StatusSold))
	assert.True(t, StatusAvailable.Valid())
	assert.False(t, Status("reserved").Valid())
}

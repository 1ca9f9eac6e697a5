package derrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	derrors "coursegate/pkg/domain-errors"
)

func TestHasCode(t *testing.T) {
	err := derrors.New(derrors.CodeConflict, "username taken")
	assert.True(t, derrors.HasCode(err, derrors.CodeConflict))
	assert.False(t, derrors.HasCode(err, derrors.CodeNotFound))
	assert.False(t, derrors.HasCode(errors.New("plain"), derrors.CodeConflict))
}

func TestHasCode_Wrapped(t *testing.T) {
	inner := derrors.Wrap(errors.New("db down"), derrors.CodeInternal, "failed to save user")
	outer := fmt.Errorf("register: %w", inner)
	assert.True(t, derrors.HasCode(outer, derrors.CodeInternal))
	assert.ErrorContains(t, outer, "db down")
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code derrors.Code
		want int
	}{
		{derrors.CodeBadRequest, http.StatusBadRequest},
		{derrors.CodeUnauthorized, http.StatusUnauthorized},
		{derrors.CodeForbidden, http.StatusForbidden},
		{derrors.CodeNotFound, http.StatusNotFound},
		{derrors.CodeConflict, http.StatusConflict},
		{derrors.CodeUpstream, http.StatusBadGateway},
		{derrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, derrors.ToHTTPStatus(derrors.New(tc.code, "x")), string(tc.code))
	}
	assert.Equal(t, http.StatusInternalServerError, derrors.ToHTTPStatus(errors.New("plain")))
}

func TestMessageFor(t *testing.T) {
	assert.Equal(t, "wrong password", derrors.MessageFor(derrors.New(derrors.CodeUnauthorized, "wrong password")))
	assert.Equal(t, "internal error", derrors.MessageFor(errors.New("pq: duplicate key")))
}

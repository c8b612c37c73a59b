package llm

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want ErrorCategory
	}{
		{429, ErrorTransient},
		{500, ErrorTransient},
		{503, ErrorTransient},
		{401, ErrorPermanent},
		{403, ErrorPermanent},
		{400, ErrorUserInput},
		{404, ErrorUserInput},
		{422, ErrorUserInput},
		{418, ErrorPermanent},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeStatusCode(tt.code))
		})
	}
}

func TestNewStatusError(t *testing.T) {
	t.Run("retry-after forces transient", func(t *testing.T) {
		err := NewStatusError("rate limited", 403, 5*time.Second, nil)
		assert.True(t, IsTransient(err))
		assert.Equal(t, 5*time.Second, RetryAfterOf(err))
	})

	t.Run("status decides category", func(t *testing.T) {
		err := NewStatusError("bad key", 401, 0, nil)
		assert.True(t, IsPermanent(err))
		assert.Equal(t, 401, StatusCodeOf(err))
	})
}

func TestError_Wrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", NewUserInputError("invalid", 400, cause))

	assert.True(t, IsUserInput(err))
	assert.False(t, IsTransient(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "outer: invalid: boom", err.Error())
}

func TestUnmarshalError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &UnmarshalError{Context: "agent", Content: `{"labels":`, TargetType: "*Out", Err: cause}

	assert.Contains(t, err.Error(), "agent: unmarshal into *Out")
	assert.ErrorIs(t, err, cause)
}

func TestUsage_Add(t *testing.T) {
	u := Usage{InputTokens: 1, OutputTokens: 2}.Add(Usage{InputTokens: 3, OutputTokens: 4})
	assert.Equal(t, Usage{InputTokens: 4, OutputTokens: 6}, u)
}

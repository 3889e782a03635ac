package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampRoundTripSortsLexically(t *testing.T) {
	early := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	late := early.Add(1500 * time.Millisecond)

	a, b := FormatTimestamp(early), FormatTimestamp(late)
	assert.Len(t, a, len(b))
	assert.Less(t, a, b)

	parsed, err := ParseTimestamp(b)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(late))
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, in := range []string{
		"2024-05-01T10:00:00Z",
		"2024-05-01T10:00:00.123+09:00",
		"2024-05-01 10:00:00",
		"2024-05-01T10:00:00",
	} {
		_, err := ParseTimestamp(in)
		assert.NoError(t, err, in)
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestErrorTaxonomy(t *testing.T) {
	assert.True(t, errors.Is(ErrBookmarkNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrTagNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrInvalidURL, ErrInvalidInput))
	assert.True(t, errors.Is(fmt.Errorf("%w: 42", ErrUnknownTag), ErrInvalidInput))
	assert.False(t, errors.Is(ErrUnknownFolder, ErrNotFound))

	var err error = &ValidationError{Fields: []FieldError{{Field: "url", Rule: "url", Message: "must be a valid URL"}}}
	assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrInvalidInput))
	assert.EqualError(t, err, "validation failed: url: must be a valid URL")

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("url"))
	assert.False(t, ve.Has("title"))
}

func TestFetchError(t *testing.T) {
	assert.EqualError(t, &FetchError{URL: "https://x", StatusCode: 404}, "Failed to fetch: 404")

	cause := errors.New("dial tcp: refused")
	err := &FetchError{URL: "https://x", Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestRequireIdentity(t *testing.T) {
	assert.ErrorIs(t, RequireIdentity(nil), ErrUnauthenticated)
	assert.ErrorIs(t, RequireIdentity(&Identity{Email: "a@b.c"}), ErrUnauthenticated)
	assert.NoError(t, RequireIdentity(&Identity{UserID: "u1"}))
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewTokenIssuer("secret", "field-task-api")

	tok, err := issuer.Issue(7, 3, time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := issuer.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.SessionID)
	assert.Equal(t, uint64(3), claims.UserID)
}

func TestParseRejectsBadTokens(t *testing.T) {
	issuer := NewTokenIssuer("secret", "field-task-api")

	expired, err := issuer.Issue(7, 3, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = issuer.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewTokenIssuer("other", "field-task-api").Issue(7, 3, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = issuer.Parse(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewTokenIssuer("secret", "someone-else").Issue(7, 3, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = issuer.Parse(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

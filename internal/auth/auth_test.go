package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

func TestResolve_RoundTripsIssuedToken(t *testing.T) {
	r := NewResolver("test-secret")

	token, err := r.Issue(mmodel.Actor{UserID: "u1", Username: "alice", Role: mmodel.RoleAdmin}, jwt.NumericDate{Time: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	actor, err := r.Resolve("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u1", actor.UserID)
	assert.Equal(t, "alice", actor.Username)
	assert.Equal(t, mmodel.RoleAdmin, actor.Role)
}

func TestResolve_MissingHeaderIsUnauthorized(t *testing.T) {
	r := NewResolver("test-secret")

	_, err := r.Resolve("")
	assert.Error(t, err)
}

func TestResolve_WrongSecretIsUnauthorized(t *testing.T) {
	r1 := NewResolver("secret-one")
	r2 := NewResolver("secret-two")

	token, err := r1.Issue(mmodel.Actor{UserID: "u1", Role: mmodel.RoleUser}, jwt.NumericDate{Time: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = r2.Resolve("Bearer " + token)
	assert.Error(t, err)
}

func TestResolve_ExpiredTokenIsUnauthorized(t *testing.T) {
	r := NewResolver("test-secret")

	token, err := r.Issue(mmodel.Actor{UserID: "u1", Role: mmodel.RoleUser}, jwt.NumericDate{Time: time.Now().Add(-time.Hour)})
	require.NoError(t, err)

	_, err = r.Resolve("Bearer " + token)
	assert.Error(t, err)
}

func TestResolve_DefaultsMissingRoleToUser(t *testing.T) {
	r := NewResolver("test-secret")

	token, err := r.Issue(mmodel.Actor{UserID: "u1"}, jwt.NumericDate{Time: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	actor, err := r.Resolve("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, mmodel.RoleUser, actor.Role)
}

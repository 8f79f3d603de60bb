package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gruby/internal/middleware"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAdminToken(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "ctl-secret")
	t.Setenv("ADMIN_JWT_ISSUER", "gruby-console")

	out, err := execute(t, "admin-token", "ops@gruby.app", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := middleware.NewAdminAuth("ctl-secret", "gruby-console").Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops@gruby.app", claims.Subject)
}

func TestAdminTokenNeedsSecret(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "")

	_, err := execute(t, "admin-token", "ops@gruby.app")
	assert.ErrorContains(t, err, "ADMIN_JWT_SECRET")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ensure-indexes", "backfill-embeddings", "send-notification", "admin-token"} {
		assert.True(t, names[want], want)
	}
}

func TestBackfillRejectsBadBatchSize(t *testing.T) {
	_, err := execute(t, "backfill-embeddings", "--batch-size", "0")
	assert.ErrorContains(t, err, "batch-size")
	_ = backfillCmd.Flags().Set("batch-size", "100")
}

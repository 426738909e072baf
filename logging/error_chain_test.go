package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	smerrors "github.com/Station-Manager/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestBuildErrorChain_WithDetailedAndStd(t *testing.T) {
	// Build Station-Manager DetailedError chain
	inner := smerrors.New("db.Connect").Msg("dial tcp 127.0.0.1:5432: connect: connection refused")
	middle := smerrors.New("db.Open").Err(inner).Msg("failed to connect to database")
	outer := smerrors.New("server.Start").Err(middle).Msg("startup failed")

	chain, ops, root, rootOp := buildErrorChain(outer)
	assert.Equal(t, []string{
		"startup failed",
		"failed to connect to database",
		"dial tcp 127.0.0.1:5432: connect: connection refused",
	}, chain)
	assert.Equal(t, []string{"server.Start", "db.Open", "db.Connect"}, ops)
	assert.Equal(t, "dial tcp 127.0.0.1:5432: connect: connection refused", root)
	assert.Equal(t, "db.Connect", rootOp)

	// Build std errors chain
	wrapped := smerrors.New("wrap.Std").Errorf("wrap: %w", outer)
	chain2, _, root2, _ := buildErrorChain(wrapped)
	// first element is wrapped message
	assert.True(t, strings.HasPrefix(chain2[0], "wrap:"))
	assert.Equal(t, root, root2)
}

func TestBuildErrorChain_Nil(t *testing.T) {
	chain, ops, root, rootOp := buildErrorChain(nil)
	assert.Empty(t, chain)
	assert.Empty(t, ops)
	assert.Empty(t, root)
	assert.Empty(t, rootOp)
	assert.Empty(t, joinChain(chain))
}

func TestEventErr_EmitsChainFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := validLoggingConfig()
	svc := &Service{WorkingDir: t.TempDir(), LoggingConfig: cfg, Console: &buf}
	svc.clock = func() time.Time { return fixedNow }
	require.NoError(t, svc.Initialize())
	defer svc.Close()

	inner := smerrors.New("db.Connect").Msg("dial tcp 127.0.0.1:5432: connect: connection refused")
	outer := smerrors.New("server.Start").Err(inner).Msg("startup failed")

	svc.ErrorWith().Err(outer).Msg("boom")

	var entry logEntry
	require.NoError(t, json.NewDecoder(&buf).Decode(&entry))

	assert.NotEmpty(t, entry[errorKey])
	assert.Equal(t, []any{"startup failed", "dial tcp 127.0.0.1:5432: connect: connection refused"}, entry["error_chain"])
	assert.Equal(t, "dial tcp 127.0.0.1:5432: connect: connection refused", entry["error_root"])
	assert.Equal(t, "startup failed -> dial tcp 127.0.0.1:5432: connect: connection refused", entry["error_history"])
	assert.Equal(t, []any{"server.Start", "db.Connect"}, entry["error_ops"])
	assert.Equal(t, "db.Connect", entry["error_root_op"])
	assert.NotEmpty(t, entry[stackKey])
}

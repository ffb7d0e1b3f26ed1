package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/minichain/app/services/node/handlers"
	"github.com/ardanlabs/minichain/app/tooling/admin/commands"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/nameservice"
	"github.com/ardanlabs/minichain/foundation/network"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDemo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, commands.Demo(&buf, 1, func(string, ...any) {}))

	out := buf.String()
	require.Equal(t, 2, strings.Count(out, "Mining..."))
	require.Contains(t, out, "AJ Balance: 100\n")
	require.Contains(t, out, "Account: aj")
	require.Contains(t, out, "Account: justin")
}

func TestDemoDifficulty(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, commands.Demo(&buf, 65, nil))
}

func TestGenKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "accounts")

	var buf bytes.Buffer
	require.NoError(t, commands.GenKey(&buf, dir, "kennedy", "pavel"))

	ns, err := nameservice.New(dir)
	require.NoError(t, err)
	require.Len(t, ns.Copy(), 2)

	_, err = os.Stat(filepath.Join(dir, "pavel.ecdsa"))
	require.NoError(t, err)
}

func TestPing(t *testing.T) {
	st, err := state.New(state.Config{Difficulty: 1})
	require.NoError(t, err)

	srv := network.NewServer(network.Config{
		Host:    "127.0.0.1:0",
		Handler: handlers.PeerHandler(zaptest.NewLogger(t).Sugar(), st),
	})
	require.NoError(t, srv.Listen())
	defer srv.Shutdown()

	var buf bytes.Buffer
	require.NoError(t, commands.Ping(&buf, srv.Addr(), 2*time.Second))
	require.Contains(t, buf.String(), "pong from")
}

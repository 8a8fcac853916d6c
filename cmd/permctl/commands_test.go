package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/asakaida/rolegate/internal/handlers"
	"github.com/asakaida/rolegate/internal/repositories/sqlite"
	"github.com/asakaida/rolegate/internal/services/authorization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

// bufconnDialer starts an in-process server backed by SQLite and returns a dialFunc for it
func bufconnDialer(t *testing.T) dialFunc {
	t.Helper()

	repo := sqlite.NewSQLitePermissionRepository(sqlite.SetupTestDB(t))
	manager := authorization.NewPermissionManager(repo, nil)

	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewServer()
	handlers.RegisterPermissionServer(server, handlers.NewPermissionHandler(manager, nil))
	go func() {
		_ = server.Serve(lis)
	}()
	t.Cleanup(server.Stop)

	return func(addr string) (grpc.ClientConnInterface, func() error, error) {
		conn, err := grpc.NewClient("passthrough:///"+addr,
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, nil, err
		}
		return conn, conn.Close, nil
	}
}

func execute(t *testing.T, dial dialFunc, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd(dial)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestPermctl_Workflow(t *testing.T) {
	dial := bufconnDialer(t)

	out, err := execute(t, dial, "allow", "editor", "write", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = execute(t, dial, "check", "editor", "write", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "allowed (explicit_allow)\n", out)

	out, err = execute(t, dial, "check", "viewer", "write", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "denied (implicit_deny)\n", out)

	_, err = execute(t, dial, "deny-all", "viewer", "doc-1")
	require.NoError(t, err)

	out, err = execute(t, dial, "list", "doc-1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ROLE", "SCOPE", "ACTION", "KIND", "ID"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"editor", "action", "write", "ALLOW"}, strings.Fields(lines[1])[:4])
	// Blanket rules print their scope and leave the action empty
	assert.Equal(t, []string{"viewer", "all", "DENY_ALL"}, strings.Fields(lines[2])[:3])
}

func TestPermctl_ListDistinguishesStarAction(t *testing.T) {
	dial := bufconnDialer(t)

	_, err := execute(t, dial, "allow", "editor", "*", "doc-1")
	require.NoError(t, err)
	_, err = execute(t, dial, "allow-all", "viewer", "doc-1")
	require.NoError(t, err)

	out, err := execute(t, dial, "list", "doc-1")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"editor", "action", "*", "ALLOW"}, strings.Fields(lines[1])[:4])
	assert.Equal(t, []string{"viewer", "all", "ALLOW_ALL"}, strings.Fields(lines[2])[:3])
}

func TestPermctl_Errors(t *testing.T) {
	dial := bufconnDialer(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing arguments", args: []string{"allow", "editor", "write"}},
		{name: "too many arguments", args: []string{"deny-all", "editor", "doc-1", "extra"}},
		{name: "empty action rejected by server", args: []string{"deny", "editor", "", "doc-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, dial, tt.args...)
			assert.Error(t, err)
		})
	}
}

package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playnvp/nvpduel/internal/api"
	"github.com/playnvp/nvpduel/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "nvpduel-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/nvpduel")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	// Create temp token file
	tokenFile := filepath.Join(t.TempDir(), "token")

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  tokenFile,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		MatchController: app.MatchController,
		HubManager:      app.HubManager,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type authResponse struct {
	Player struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		IsGuest     bool   `json:"is_guest"`
	} `json:"player"`
	SessionToken string `json:"session_token"`
}

type matchResponse struct {
	Key     string `json:"key"`
	Phase   string `json:"phase"`
	Players []struct {
		PlayerID        string `json:"player_id"`
		DisplayName     string `json:"display_name"`
		SecretCommitted bool   `json:"secret_committed"`
	} `json:"players"`
	CurrentTurn *string `json:"current_turn"`
	Winner      *string `json:"winner"`
}

type secretResponse struct {
	Match     string `json:"match"`
	Phase     string `json:"phase"`
	Committed int    `json:"committed"`
}

type guessResponse struct {
	Match     string  `json:"match"`
	Code      string  `json:"code"`
	Values    int     `json:"values"`
	Positions int     `json:"positions"`
	Win       bool    `json:"win"`
	NextTurn  *string `json:"next_turn"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create guest
	output, err := cli.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	assert.Equal(t, "Alice", authResp.Player.DisplayName)
	assert.True(t, authResp.Player.IsGuest)
	assert.NotEmpty(t, authResp.SessionToken)

	// Get me (token should be saved in token file)
	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)

	var player struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		IsGuest     bool   `json:"is_guest"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &player))
	assert.Equal(t, "Alice", player.DisplayName)
	assert.Equal(t, authResp.Player.ID, player.ID)
}

func TestCLI_MatchCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)

	var authResp authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &authResp))
	token := authResp.SessionToken

	// Create a match with a generated room code
	output, err = cli.runWithToken(token, "match", "new")
	require.NoError(t, err, "output: %s", output)

	var match matchResponse
	require.NoError(t, json.Unmarshal([]byte(output), &match))
	assert.Equal(t, "forming", match.Phase)
	assert.Len(t, match.Key, 6)
	key := match.Key

	// Join it
	output, err = cli.runWithToken(token, "match", "join", key)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &match))
	assert.Len(t, match.Players, 1)

	// Status shows the same state
	output, err = cli.runWithToken(token, "match", "status", key)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &match))
	assert.Equal(t, key, match.Key)
	assert.Equal(t, "forming", match.Phase)

	// Cancel it
	output, err = cli.runWithToken(token, "match", "cancel", key)
	require.NoError(t, err, "output: %s", output)

	// Status now fails
	output, err = cli.runWithToken(token, "match", "status", key)
	require.Error(t, err, "output: %s", output)
}

func TestCLI_FullDuelFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	// Create two CLI runners with separate token files
	cli1 := newCLIRunner(t, ts.addr)
	cli2 := &cliRunner{
		binaryPath: cli1.binaryPath,
		serverURL:  cli1.serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token2"),
	}

	// Create two players
	output, err := cli1.run("player", "guest", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	var auth1 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth1))
	token1 := auth1.SessionToken

	output, err = cli2.run("player", "guest", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)
	var auth2 authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth2))
	token2 := auth2.SessionToken

	// Alice creates a match
	output, err = cli1.runWithToken(token1, "match", "new", "--key", "e2e-duel")
	require.NoError(t, err, "output: %s", output)
	var match matchResponse
	require.NoError(t, json.Unmarshal([]byte(output), &match))
	key := match.Key

	// Both players join
	output, err = cli1.runWithToken(token1, "match", "join", key)
	require.NoError(t, err, "output: %s", output)

	output, err = cli2.runWithToken(token2, "match", "join", key)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &match))
	assert.Equal(t, "awaiting_secrets", match.Phase)

	// Alice commits her secret with an explicit match key
	output, err = cli1.runWithToken(token1, "secret", "1234", "--match", key)
	require.NoError(t, err, "output: %s", output)
	var secret secretResponse
	require.NoError(t, json.Unmarshal([]byte(output), &secret))
	assert.Equal(t, 1, secret.Committed)

	// Bob commits keyless, the server routes the secret for him
	output, err = cli2.runWithToken(token2, "secret", "5678")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &secret))
	assert.Equal(t, key, secret.Match)
	assert.Equal(t, "in_progress", secret.Phase)

	// Alice guesses and misses
	output, err = cli1.runWithToken(token1, "guess", key, "5671")
	require.NoError(t, err, "output: %s", output)
	var guess guessResponse
	require.NoError(t, json.Unmarshal([]byte(output), &guess))
	assert.False(t, guess.Win)
	assert.Equal(t, 3, guess.Positions)
	require.NotNil(t, guess.NextTurn)
	assert.Equal(t, auth2.Player.ID, *guess.NextTurn)

	// Bob cracks Alice's code and wins
	output, err = cli2.runWithToken(token2, "guess", key, "1234")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &guess))
	assert.True(t, guess.Win)
	assert.Nil(t, guess.NextTurn)

	// The finished match no longer shows as active
	output, err = cli1.runWithToken(token1, "match", "status", key)
	require.Error(t, err, "output: %s", output)
}

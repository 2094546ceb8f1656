package chat

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(Options{Addr: "127.0.0.1:0", Name: "Virtual Tea Party"}, logger)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)
	return srv
}

type testClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dialTestServer(t *testing.T, srv *Server) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(t *testing.T, line string) {
	t.Helper()
	_, err := c.conn.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

func (c *testClient) readLine(t *testing.T) string {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := c.r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

// expectLine skips lines until one starts with prefix and returns it.
func (c *testClient) expectLine(t *testing.T, prefix string) string {
	t.Helper()
	for {
		line := c.readLine(t)
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
}

// loginAs drives the client through the login handshake and waits until the
// server has processed it, so later assertions cannot race the registration.
func (c *testClient) loginAs(t *testing.T, name string) {
	t.Helper()
	c.expectLine(t, "Welcome to ")
	c.send(t, "login "+name)
	c.send(t, "who")
	c.expectLine(t, "The following are logged in:")
	c.expectLine(t, listRule)
}

func TestServer_WelcomeOnConnect(t *testing.T) {
	srv := startTestServer(t)
	c := dialTestServer(t, srv)

	assert.Equal(t, "Welcome to Virtual Tea Party!", c.readLine(t))
	assert.Equal(t, `Please log in using "login <nick>" or log out with "logout"`, c.readLine(t))
}

func TestServer_TwoClientsExchangeMessages(t *testing.T) {
	srv := startTestServer(t)

	alice := dialTestServer(t, srv)
	alice.loginAs(t, "alice")

	bob := dialTestServer(t, srv)
	bob.loginAs(t, "bob")

	assert.Equal(t, "bob has entered the room.", alice.expectLine(t, "bob has entered"))

	bob.send(t, "say tea is ready")
	assert.Equal(t, "bob: tea is ready", alice.expectLine(t, "bob: "))
}

func TestServer_DuplicateNicknameRejectedOverWire(t *testing.T) {
	srv := startTestServer(t)

	alice := dialTestServer(t, srv)
	alice.loginAs(t, "alice")

	second := dialTestServer(t, srv)
	second.expectLine(t, "Welcome to ")
	second.send(t, "login alice")

	assert.Equal(t, "The name alice is taken. Please try again",
		second.expectLine(t, "The name alice"))
}

func TestServer_LogoutSendsGoodbyeAndClosesConn(t *testing.T) {
	srv := startTestServer(t)

	alice := dialTestServer(t, srv)
	alice.loginAs(t, "alice")

	alice.send(t, "logout")
	assert.Equal(t, "Thank you for using Virtual Tea Party! Goodbye!",
		alice.expectLine(t, "Thank you for using "))

	require.NoError(t, alice.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := alice.r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestServer_AbruptDisconnectAnnouncedToOthers(t *testing.T) {
	srv := startTestServer(t)

	alice := dialTestServer(t, srv)
	alice.loginAs(t, "alice")

	bob := dialTestServer(t, srv)
	bob.loginAs(t, "bob")
	alice.expectLine(t, "bob has entered")

	bob.conn.Close()

	assert.Equal(t, "bob has left the room.", alice.expectLine(t, "bob has left"))
}

func TestServer_NicknameFreedAfterLogout(t *testing.T) {
	srv := startTestServer(t)

	alice := dialTestServer(t, srv)
	alice.loginAs(t, "alice")
	alice.send(t, "logout")
	alice.expectLine(t, "Thank you for using ")

	again := dialTestServer(t, srv)
	again.loginAs(t, "alice")

	again.send(t, "look")
	again.expectLine(t, "The following are in this room:")
	again.expectLine(t, listRule)
	assert.Equal(t, "alice", again.readLine(t))
}

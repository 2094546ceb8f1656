package chat

import (
	"bufio"
	"net"
)

// StartOutboundWriter drains out onto conn, one CRLF-terminated line per
// message. When out is closed it finishes what is queued and closes the
// connection, so a goodbye line reaches the peer before teardown.
func StartOutboundWriter(conn net.Conn, out <-chan string) {
	go func() {
		defer conn.Close()
		w := bufio.NewWriter(conn)
		for msg := range out {
			// Best-effort. If the connection breaks, just stop the writer.
			if _, err := w.WriteString(msg + "\r\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}()
}

package smtpmail

import (
	"bytes"
	"fmt"
	"html"
	"mime"
	"strings"

	"github.com/itassetops/assetnotify/pkg/dispatch"
)

// render assembles the wire form of a message: RFC 5322 headers plus an HTML
// body carrying the payload table. This is deliberately minimal; template
// rendering beyond the table is out of scope for this tool.
func render(sender string, msg dispatch.Message) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", sender)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	if len(msg.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(msg.Cc, ", "))
	}
	// Subjects are frequently non-ASCII; RFC 2047 q-encode them. ASCII
	// subjects pass through unchanged.
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")

	buf.WriteString("<html><body>")
	writeTable(&buf, msg.Payload)
	buf.WriteString("</body></html>\r\n")

	return buf.Bytes()
}

// writeTable renders the payload as a plain HTML table with escaped cells.
func writeTable(buf *bytes.Buffer, p dispatch.Payload) {
	buf.WriteString(`<table border="1"><thead><tr>`)
	for _, h := range p.Headers {
		fmt.Fprintf(buf, "<th>%s</th>", html.EscapeString(h))
	}
	buf.WriteString("</tr></thead><tbody>")
	for _, row := range p.Rows {
		buf.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(buf, "<td>%s</td>", html.EscapeString(cell))
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</tbody></table>")
}

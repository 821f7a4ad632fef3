package dispatch

import (
	"fmt"
	"time"
)

// summaryHeaders are the columns of the post-run send report.
var summaryHeaders = []string{"Time", "Recipient", "Subject", "Success", "Detail"}

// Summary renders the send log as a structured table for the post-run
// report. Failed sends always appear with their error text; partial success
// is the expected steady state, not an exceptional one.
func Summary(log *SendLog) Payload {
	p := Payload{Headers: summaryHeaders}
	for _, e := range log.Entries() {
		success := "Y"
		detail := ""
		if !e.Success {
			success = "N"
			detail = fmt.Sprintf("error code %d, %s", e.Code, e.Message)
		}
		p.Rows = append(p.Rows, []string{
			e.Time.Format(time.DateTime),
			e.Recipient,
			e.Subject,
			success,
			detail,
		})
	}
	return p
}

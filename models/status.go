package models

import "strings"

// RunStatus is the companion artifact written next to the ticker. A failed
// run publishes only this record, never a partially populated ticker.
type RunStatus struct {
	TickerState string  `json:"tickerState"`
	Error       *string `json:"error"`
}

func SuccessStatus() RunStatus {
	return RunStatus{TickerState: "success"}
}

// FailedStatus captures err with every configured secret scrubbed from the
// message, so credentials embedded in request URLs or response dumps never
// reach the published artifact.
func FailedStatus(err error, secrets ...string) RunStatus {
	msg := err.Error()
	for _, s := range secrets {
		if s == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, s, "[redacted]")
	}
	return RunStatus{TickerState: "failed", Error: &msg}
}

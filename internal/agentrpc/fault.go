package agentrpc

import "fmt"

// CodeAuthRejected is the fault code agents return when credentials are
// missing or wrong.
const CodeAuthRejected = 401

// Fault is a protocol-level error returned by an agent, as opposed to a
// transport failure reaching it.
type Fault struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (f *Fault) Error() string {
	return fmt.Sprintf("agent fault %d: %s", f.Code, f.Message)
}

/**
 * @description
 * This file defines the tagged error type every pipeline stage reports its
 * failure through. Each error carries a class drawn from a closed set, so the
 * HTTP layer can map outcomes to status codes with a total switch instead of
 * inspecting message strings.
 */

package app

// ErrorClass partitions pipeline failures by who is responsible.
type ErrorClass string

const (
	ErrorClassClient     ErrorClass = "client"     // malformed or invalid request
	ErrorClassAuth       ErrorClass = "auth"       // merchant not authorized
	ErrorClassInfra      ErrorClass = "infra"      // merchant store unreachable
	ErrorClassUpstream   ErrorClass = "upstream"   // bank rejected or unreachable after retries
	ErrorClassUnexpected ErrorClass = "unexpected" // anything not anticipated
)

// PipelineError is the single failure type the orchestrator returns. Message
// is what the caller sees; Detail carries the underlying error text for
// unexpected failures and is exposed alongside the generic message.
type PipelineError struct {
	Class   ErrorClass
	Message string
	Detail  string
}

func (e *PipelineError) Error() string {
	return e.Message
}

func clientError(message string) *PipelineError {
	return &PipelineError{Class: ErrorClassClient, Message: message}
}

func authError(message string) *PipelineError {
	return &PipelineError{Class: ErrorClassAuth, Message: message}
}

func infraError(message string) *PipelineError {
	return &PipelineError{Class: ErrorClassInfra, Message: message}
}

func upstreamError(message string) *PipelineError {
	return &PipelineError{Class: ErrorClassUpstream, Message: message}
}

func unexpectedError(detail string) *PipelineError {
	return &PipelineError{Class: ErrorClassUnexpected, Message: "Internal Server Error", Detail: detail}
}

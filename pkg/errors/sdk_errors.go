// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var (
	// errRespBody indicates that the response body carried no recognizable
	// error payload.
	errRespBody = New("response body expected error message json key not found")

	// errUnknown indicates that an unknown error was found in the response body.
	errUnknown = New("unknown error")
)

// SDKError is an error type returned by the context broker SDK. It carries the
// HTTP status code of the response that produced it, or 0 when the request
// never reached the broker.
type SDKError interface {
	Error
	StatusCode() int
}

var _ SDKError = (*sdkError)(nil)

type sdkError struct {
	*customError
	statusCode int
}

func (ce *sdkError) Error() string {
	if ce == nil {
		return ""
	}
	if ce.customError == nil {
		return http.StatusText(ce.statusCode)
	}
	return fmt.Sprintf("Status: %s: %s", http.StatusText(ce.statusCode), ce.customError.Error())
}

func (ce *sdkError) StatusCode() int {
	return ce.statusCode
}

// NewSDKError returns an SDK Error wrapping err. Wrapped error chains are
// preserved so Contains keeps working across the SDK boundary.
func NewSDKError(err error) SDKError {
	return NewSDKErrorWithStatus(err, 0)
}

// NewSDKErrorWithStatus returns an SDK Error setting the status code.
func NewSDKErrorWithStatus(err error, statusCode int) SDKError {
	ce, ok := cast(err).(*customError)
	if !ok {
		ce = &customError{msg: err.Error()}
	}

	return &sdkError{
		customError: ce,
		statusCode:  statusCode,
	}
}

// problemDetails is the RFC 7807 payload NGSI-LD brokers return on failure.
type problemDetails struct {
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Err     string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (pd problemDetails) text() string {
	switch {
	case pd.Detail != "":
		return pd.Detail
	case pd.Title != "":
		return pd.Title
	case pd.Err != "":
		return pd.Err
	case pd.Message != "":
		return pd.Message
	default:
		return ""
	}
}

// CheckError matches the HTTP response status code against the given expected
// codes. Since multiple status codes can be valid, we can pass multiple status
// codes to the function. On a non-expected code the broker problem details are
// decoded and wrapped with the taxonomy error for that code.
func CheckError(resp *http.Response, expectedStatusCodes ...int) SDKError {
	for _, expectedStatusCode := range expectedStatusCodes {
		if resp.StatusCode == expectedStatusCode {
			return nil
		}
	}

	cause := errUnknown
	var pd problemDetails
	if err := json.NewDecoder(resp.Body).Decode(&pd); err == nil {
		if txt := pd.text(); txt != "" {
			cause = New(txt)
		} else {
			cause = errRespBody
		}
	}

	return NewSDKErrorWithStatus(Wrap(statusError(resp.StatusCode), cause), resp.StatusCode)
}

// statusError maps a broker status code onto the shared error taxonomy.
func statusError(code int) Error {
	switch code {
	case http.StatusBadRequest:
		return ErrMalformedEntity
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrBroker
	}
}

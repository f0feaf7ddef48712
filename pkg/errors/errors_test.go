// Copyright (c) Stellio Hub
// SPDX-License-Identifier: Apache-2.0

package errors_test

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stellio-hub/ngsild/pkg/errors"
	"github.com/stretchr/testify/assert"
)

const level = 10

var (
	err0 = errors.New("0")
	err1 = errors.New("1")
	err2 = errors.New("2")
)

// wrap builds a chain of lvl wrapped errors with messages "lvl", "lvl-1", ... "0".
func wrap(lvl int) error {
	if lvl == 0 {
		return err0
	}
	return errors.Wrap(errors.New(strconv.Itoa(lvl)), wrap(lvl-1))
}

// message renders the expected Error() output of wrap(lvl).
func message(lvl int) string {
	if lvl == 0 {
		return "0"
	}
	return strconv.Itoa(lvl) + " : " + message(lvl-1)
}

func TestError(t *testing.T) {
	cases := []struct {
		desc string
		err  error
		msg  string
	}{
		{
			desc: "level 0 wrapped error",
			err:  err0,
			msg:  "0",
		},
		{
			desc: "level 1 wrapped error",
			err:  wrap(1),
			msg:  message(1),
		},
		{
			desc: "level 2 wrapped error",
			err:  wrap(2),
			msg:  message(2),
		},
		{
			desc: fmt.Sprintf("level %d wrapped error", level),
			err:  wrap(level),
			msg:  message(level),
		},
	}

	for _, tc := range cases {
		errMsg := tc.err.Error()
		assert.Equal(t, tc.msg, errMsg, fmt.Sprintf("%s: expected %s got %s\n", tc.desc, tc.msg, errMsg))
	}
}

func TestContains(t *testing.T) {
	cases := []struct {
		desc      string
		container error
		contained error
		contains  bool
	}{
		{
			desc:      "nil contains nil",
			container: nil,
			contained: nil,
			contains:  true,
		},
		{
			desc:      "nil contains non-nil",
			container: nil,
			contained: err0,
			contains:  false,
		},
		{
			desc:      "non-nil contains nil",
			container: err0,
			contained: nil,
			contains:  false,
		},
		{
			desc:      "non-nil contains non-nil",
			container: err0,
			contained: err1,
			contains:  false,
		},
		{
			desc:      "res of errors.Wrap(err1, err0) contains err0",
			container: errors.Wrap(err1, err0),
			contained: err0,
			contains:  true,
		},
		{
			desc:      "res of errors.Wrap(err1, err0) contains err1",
			container: errors.Wrap(err1, err0),
			contained: err1,
			contains:  true,
		},
		{
			desc:      "res of errors.Wrap(err2, errors.Wrap(err1, err0)) contains err1",
			container: errors.Wrap(err2, errors.Wrap(err1, err0)),
			contained: err1,
			contains:  true,
		},
		{
			desc:      fmt.Sprintf("level %d wrapped error contains", level),
			container: wrap(level),
			contained: errors.New(strconv.Itoa(level / 2)),
			contains:  true,
		},
	}
	for _, tc := range cases {
		contains := errors.Contains(tc.container, tc.contained)
		assert.Equal(t, tc.contains, contains, fmt.Sprintf("%s: expected %v to contain %v\n", tc.desc, tc.container, tc.contained))
	}
}

func TestWrap(t *testing.T) {
	cases := []struct {
		desc      string
		wrapper   error
		wrapped   error
		contained error
		contains  bool
	}{
		{
			desc:      "wrap error with nil",
			wrapper:   nil,
			wrapped:   err0,
			contained: err0,
			contains:  false,
		},
		{
			desc:      "wrap nil with error",
			wrapper:   err0,
			wrapped:   nil,
			contained: err0,
			contains:  true,
		},
		{
			desc:      "wrap error with error",
			wrapper:   err1,
			wrapped:   err0,
			contained: err0,
			contains:  true,
		},
		{
			desc:      "wrap error with wrapped error",
			wrapper:   err2,
			wrapped:   errors.Wrap(err1, err0),
			contained: err0,
			contains:  true,
		},
	}

	for _, tc := range cases {
		err := errors.Wrap(tc.wrapper, tc.wrapped)
		contains := errors.Contains(err, tc.contained)
		assert.Equal(t, tc.contains, contains, fmt.Sprintf("%s: expected %v to contain %v\n", tc.desc, err, tc.contained))
	}
}

func TestUnwrap(t *testing.T) {
	cases := []struct {
		desc    string
		err     error
		wrapper error
		wrapped error
	}{
		{
			desc:    "unwrap plain error",
			err:     err0,
			wrapper: nil,
			wrapped: err0,
		},
		{
			desc:    "unwrap wrapped error",
			err:     errors.Wrap(err1, err0),
			wrapper: err1,
			wrapped: err0,
		},
	}

	for _, tc := range cases {
		wrapper, wrapped := errors.Unwrap(tc.err)
		if tc.wrapper == nil {
			assert.Nil(t, wrapper, fmt.Sprintf("%s: expected nil wrapper got %v\n", tc.desc, wrapper))
		} else {
			assert.Equal(t, tc.wrapper.Error(), wrapper.Error(), fmt.Sprintf("%s: expected wrapper %v got %v\n", tc.desc, tc.wrapper, wrapper))
		}
		assert.Equal(t, tc.wrapped.Error(), wrapped.Error(), fmt.Sprintf("%s: expected wrapped %v got %v\n", tc.desc, tc.wrapped, wrapped))
	}
}

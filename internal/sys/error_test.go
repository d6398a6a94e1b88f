// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"errors"
	"testing"

	"github.com/aibor/pibuild/internal/sys"
	"github.com/stretchr/testify/assert"
)

func TestCommandErrorIs(t *testing.T) {
	//nolint:testifylint
	assert.ErrorIs(t, error(&sys.CommandError{}), &sys.CommandError{})
	assert.NotErrorIs(t, assert.AnError, &sys.CommandError{})
}

func TestCommandErrorError(t *testing.T) {
	err := &sys.CommandError{
		Name:   "mkfs.ext4",
		Err:    errors.New("exit status 1"),
		Stderr: "  device busy\n",
	}

	assert.Equal(t, "mkfs.ext4: exit status 1: device busy", err.Error())
}

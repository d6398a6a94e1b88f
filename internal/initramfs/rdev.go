// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: MIT

package initramfs

import (
	"bytes"
	"fmt"
	"io"
)

const (
	newcHeaderSize  = 110
	rdevMajorOffset = 78
	rdevMinorOffset = 86
	hexFieldSize    = 8
)

var newcMagic = []byte("07070")

// rdevWriter sets the rdevmajor and rdevminor fields of the next newc
// header written through it. The cpio library always writes them as zero,
// which makes device nodes unusable.
type rdevWriter struct {
	w     io.Writer
	armed bool
	major uint32
	minor uint32
}

// arm sets the device number for the next header.
func (r *rdevWriter) arm(major, minor uint32) {
	r.armed = true
	r.major = major
	r.minor = minor
}

func (r *rdevWriter) disarm() {
	r.armed = false
}

// Write implements [io.Writer]. The library writes a header in a single
// call, so a write of exactly header size with the newc magic is the header.
func (r *rdevWriter) Write(p []byte) (int, error) {
	if !r.armed || len(p) != newcHeaderSize || !bytes.HasPrefix(p, newcMagic) {
		return r.w.Write(p)
	}

	r.armed = false

	hdr := make([]byte, newcHeaderSize)
	copy(hdr, p)
	writeHex(hdr[rdevMajorOffset:], r.major)
	writeHex(hdr[rdevMinorOffset:], r.minor)

	return r.w.Write(hdr)
}

func writeHex(b []byte, value uint32) {
	copy(b[:hexFieldSize], fmt.Sprintf("%08X", value))
}

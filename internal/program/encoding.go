package program

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/Klingon-tech/golfmellow/pkg/types"
)

// encoder appends little-endian fields. Strings are u32 length + bytes.
type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8) *encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *encoder) u64(v uint64) *encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return e
}

func (e *encoder) str(s string) *encoder {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

func (e *encoder) addr(a types.Address) *encoder {
	e.buf = append(e.buf, a[:]...)
	return e
}

func (e *encoder) raw(b []byte) *encoder {
	e.buf = append(e.buf, b...)
	return e
}

// decoder reads fields written by encoder. The first failure sticks and
// every later read returns a zero value.
type decoder struct {
	data []byte
	off  int
	err  bool
}

func (d *decoder) take(n int) []byte {
	if d.err || n < 0 || len(d.data)-d.off < n {
		d.err = true
		return nil
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// str reads a length-prefixed string of at most max bytes.
func (d *decoder) str(max int) string {
	n := d.u32()
	if d.err || uint64(n) > uint64(max) {
		d.err = true
		return ""
	}
	b := d.take(int(n))
	if b == nil || !utf8.Valid(b) {
		d.err = true
		return ""
	}
	return string(b)
}

func (d *decoder) addr() types.Address {
	var a types.Address
	copy(a[:], d.take(types.AddressSize))
	return a
}

// done reports whether all data was consumed without error.
func (d *decoder) done() bool {
	return !d.err && d.off == len(d.data)
}

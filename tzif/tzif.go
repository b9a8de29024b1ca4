// Package tzif implements the Time Zone Information Format (TZif) according to
// RFC 8536. https://datatracker.ietf.org/doc/html/rfc8536
//
// Both data blocks of a file are represented by the same Block type. Times of
// the version 1 block are stored in 32 bits on disk and widened when decoded.
package tzif

import (
	"encoding/binary"
	"fmt"
)

// All multi-octet integer values are stored big-endian in two's complement.
var order = binary.BigEndian

// Version is the version octet of a TZif header.
type Version byte

const (
	// V1 files contain only the version 1 header and data block.
	V1 Version = 0x00
	// V2 files add a version 2+ header and data block with 64-bit times and a
	// footer holding a POSIX TZ string.
	V2 Version = '2'
	// V3 files may use the TZ string extensions of RFC 8536 section 3.3.1.
	V3 Version = '3'
	// V4 files may have a truncated or expiring leap second table, see tzfile(5).
	V4 Version = '4'
)

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2, V3, V4:
		return fmt.Sprintf("V%c (0x%x)", v, byte(v))
	}
	return fmt.Sprintf("<undefined version (%d)>", v)
}

// Magic is the four-octet sequence that starts every TZif header.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Header is a TZif header without its magic.
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	Version  Version
	Reserved [15]byte
	Isutcnt  uint32
	Isstdcnt uint32
	Leapcnt  uint32
	Timecnt  uint32
	Typecnt  uint32
	Charcnt  uint32
}

// LocalTimeType is a local time type record.
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeType struct {
	// Utoff is the number of seconds added to UT to obtain local time.
	Utoff int32
	IsDST bool
	// Idx is the offset of the designation in Block.Designations.
	Idx uint8
}

// LeapSecond is a leap second record.
type LeapSecond struct {
	Occur int64
	Corr  int32
}

// Block is a TZif data block.
//
//	+---------------------------------------------------------+
//	|  transition times          (timecnt x TIME_SIZE)        |
//	+---------------------------------------------------------+
//	|  transition types          (timecnt)                    |
//	+---------------------------------------------------------+
//	|  local time type records   (typecnt x 6)                |
//	+---------------------------------------------------------+
//	|  time zone designations    (charcnt)                    |
//	+---------------------------------------------------------+
//	|  leap-second records       (leapcnt x (TIME_SIZE + 4))  |
//	+---------------------------------------------------------+
//	|  standard/wall indicators  (isstdcnt)                   |
//	+---------------------------------------------------------+
//	|  UT/local indicators       (isutcnt)                    |
//	+---------------------------------------------------------+
type Block struct {
	TransitionTimes []int64
	TransitionTypes []uint8
	LocalTimeTypes  []LocalTimeType
	Designations    []byte
	LeapSeconds     []LeapSecond
	StandardWall    []bool
	UTLocal         []bool
}

// Header returns the header describing the block.
func (b Block) Header(v Version) Header {
	return Header{
		Version:  v,
		Isutcnt:  uint32(len(b.UTLocal)),
		Isstdcnt: uint32(len(b.StandardWall)),
		Leapcnt:  uint32(len(b.LeapSeconds)),
		Timecnt:  uint32(len(b.TransitionTimes)),
		Typecnt:  uint32(len(b.LocalTimeTypes)),
		Charcnt:  uint32(len(b.Designations)),
	}
}

// Designation returns the NUL-terminated designation starting at idx.
func (b Block) Designation(idx uint8) string {
	if int(idx) >= len(b.Designations) {
		return ""
	}
	s := b.Designations[idx:]
	for i, c := range s {
		if c == 0 {
			return string(s[:i])
		}
	}
	return string(s)
}

// Data is the content of a TZif file.
type Data struct {
	Version Version
	// V1 is the version 1 data block, which every file has.
	V1 Block
	// V2 is the version 2+ data block. It is empty for version 1 files.
	V2 Block
	// Footer is the TZ string of version 2+ files, without the
	// surrounding newlines.
	Footer string
}

// Block returns the data block a reader should use: the version 2+ block if
// there is one and the version 1 block otherwise.
func (d Data) Block() Block {
	if d.Version >= V2 {
		return d.V2
	}
	return d.V1
}

// New returns the TZif data for the given transitions. The version 1 block
// holds the transitions representable in 32 bits. For version 1 the footer
// is dropped.
func New(v Version, times []int64, types []uint8, ltts []LocalTimeType, designations string, footer string) Data {
	d := Data{Version: v}
	full := Block{
		TransitionTimes: times,
		TransitionTypes: types,
		LocalTimeTypes:  ltts,
		Designations:    []byte(designations),
	}
	if v == V1 {
		d.V1 = full
		return d
	}
	d.V1 = Block{LocalTimeTypes: ltts, Designations: []byte(designations)}
	for i, t := range times {
		if t >= -1<<31 && t < 1<<31 {
			d.V1.TransitionTimes = append(d.V1.TransitionTimes, t)
			d.V1.TransitionTypes = append(d.V1.TransitionTypes, types[i])
		}
	}
	d.V2 = full
	d.Footer = footer
	return d
}

package tzif

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	v1TimeSize = 4
	v2TimeSize = 8
)

// Encode writes d in the TZif format. Headers are derived from the blocks.
func (d Data) Encode(w io.Writer) error {
	e := &encoder{w: w}
	e.header(d.V1.Header(d.Version))
	e.block(d.V1, v1TimeSize)
	if e.err != nil {
		return fmt.Errorf("write v1 data: %w", e.err)
	}
	if d.Version == V1 {
		return nil
	}
	e.header(d.V2.Header(d.Version))
	e.block(d.V2, v2TimeSize)
	e.bytes([]byte("\n" + d.Footer + "\n"))
	if e.err != nil {
		return fmt.Errorf("write v2 data: %w", e.err)
	}
	return nil
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) bytes(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

func (e *encoder) uint32(v uint32) {
	e.bytes(order.AppendUint32(nil, v))
}

func (e *encoder) time(t int64, size int) {
	if size == v1TimeSize {
		if t < math.MinInt32 || t > math.MaxInt32 {
			if e.err == nil {
				e.err = fmt.Errorf("time %d does not fit into 32 bits", t)
			}
			return
		}
		e.uint32(uint32(int32(t)))
		return
	}
	e.bytes(order.AppendUint64(nil, uint64(t)))
}

func (e *encoder) bool(v bool) {
	if v {
		e.bytes([]byte{1})
	} else {
		e.bytes([]byte{0})
	}
}

func (e *encoder) header(h Header) {
	e.bytes(Magic[:])
	e.bytes([]byte{byte(h.Version)})
	e.bytes(h.Reserved[:])
	for _, n := range []uint32{h.Isutcnt, h.Isstdcnt, h.Leapcnt, h.Timecnt, h.Typecnt, h.Charcnt} {
		e.uint32(n)
	}
}

func (e *encoder) block(b Block, timeSize int) {
	for _, t := range b.TransitionTimes {
		e.time(t, timeSize)
	}
	e.bytes(b.TransitionTypes)
	for _, lt := range b.LocalTimeTypes {
		e.uint32(uint32(lt.Utoff))
		e.bool(lt.IsDST)
		e.bytes([]byte{lt.Idx})
	}
	e.bytes(b.Designations)
	for _, ls := range b.LeapSeconds {
		e.time(ls.Occur, timeSize)
		e.uint32(uint32(ls.Corr))
	}
	for _, v := range b.StandardWall {
		e.bool(v)
	}
	for _, v := range b.UTLocal {
		e.bool(v)
	}
}

// DecodeData reads a TZif file. Only the version 1 block is read from
// version 1 files.
func DecodeData(r io.Reader) (Data, error) {
	var d Data
	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return d, fmt.Errorf("read v1 header: %w", err)
	}
	d.Version = h.Version
	if d.V1, err = readBlock(br, h, v1TimeSize); err != nil {
		return d, fmt.Errorf("read v1 data block: %w", err)
	}
	if d.Version == V1 {
		return d, nil
	}

	if h, err = ReadHeader(br); err != nil {
		return d, fmt.Errorf("read v2 header: %w", err)
	}
	if h.Version != d.Version {
		return d, fmt.Errorf("read v2 header: version %v does not match %v", h.Version, d.Version)
	}
	if d.V2, err = readBlock(br, h, v2TimeSize); err != nil {
		return d, fmt.Errorf("read v2 data block: %w", err)
	}
	if d.Footer, err = readFooter(br); err != nil {
		return d, fmt.Errorf("read footer: %w", err)
	}
	return d, nil
}

// ReadHeader reads a header including its magic.
func ReadHeader(r io.Reader) (Header, error) {
	var (
		h   Header
		buf [44]byte
	)
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return h, err
	}
	if !bytes.Equal(buf[:4], Magic[:]) {
		return h, fmt.Errorf("invalid magic: %q", buf[:4])
	}
	h.Version = Version(buf[4])
	copy(h.Reserved[:], buf[5:20])
	counts := []*uint32{&h.Isutcnt, &h.Isstdcnt, &h.Leapcnt, &h.Timecnt, &h.Typecnt, &h.Charcnt}
	for i, c := range counts {
		*c = order.Uint32(buf[20+4*i:])
	}
	return h, nil
}

func readBlock(r io.Reader, h Header, timeSize int) (Block, error) {
	var b Block
	size := int64(h.Timecnt)*int64(timeSize+1) + int64(h.Typecnt)*6 + int64(h.Charcnt) +
		int64(h.Leapcnt)*int64(timeSize+4) + int64(h.Isstdcnt) + int64(h.Isutcnt)
	if size > 1<<24 {
		return b, fmt.Errorf("data block of %d bytes is too large", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return b, err
	}
	time := func() int64 {
		var t int64
		if timeSize == v1TimeSize {
			t = int64(int32(order.Uint32(buf)))
		} else {
			t = int64(order.Uint64(buf))
		}
		buf = buf[timeSize:]
		return t
	}
	var errs []error
	indicator := func(name string, i int) bool {
		v := buf[0]
		buf = buf[1:]
		if v > 1 {
			errs = append(errs, fmt.Errorf("%s indicator %d: invalid value %d", name, i, v))
		}
		return v == 1
	}

	if h.Timecnt > 0 {
		b.TransitionTimes = make([]int64, h.Timecnt)
		for i := range b.TransitionTimes {
			b.TransitionTimes[i] = time()
		}
		b.TransitionTypes = append([]uint8(nil), buf[:h.Timecnt]...)
		buf = buf[h.Timecnt:]
	}
	if h.Typecnt > 0 {
		b.LocalTimeTypes = make([]LocalTimeType, h.Typecnt)
		for i := range b.LocalTimeTypes {
			b.LocalTimeTypes[i] = LocalTimeType{
				Utoff: int32(order.Uint32(buf)),
				IsDST: buf[4] == 1,
				Idx:   buf[5],
			}
			if buf[4] > 1 {
				errs = append(errs, fmt.Errorf("local time type %d: invalid isdst %d", i, buf[4]))
			}
			buf = buf[6:]
		}
	}
	if h.Charcnt > 0 {
		b.Designations = append([]byte(nil), buf[:h.Charcnt]...)
		buf = buf[h.Charcnt:]
	}
	if h.Leapcnt > 0 {
		b.LeapSeconds = make([]LeapSecond, h.Leapcnt)
		for i := range b.LeapSeconds {
			b.LeapSeconds[i].Occur = time()
			b.LeapSeconds[i].Corr = int32(order.Uint32(buf))
			buf = buf[4:]
		}
	}
	if h.Isstdcnt > 0 {
		b.StandardWall = make([]bool, h.Isstdcnt)
		for i := range b.StandardWall {
			b.StandardWall[i] = indicator("standard/wall", i)
		}
	}
	if h.Isutcnt > 0 {
		b.UTLocal = make([]bool, h.Isutcnt)
		for i := range b.UTLocal {
			b.UTLocal[i] = indicator("UT/local", i)
		}
	}
	return b, errors.Join(errs...)
}

func readFooter(r *bufio.Reader) (string, error) {
	nl, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	if nl != '\n' {
		return "", fmt.Errorf("expected newline, got %q", nl)
	}
	s, err := r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("unterminated TZ string: %w", err)
	}
	return s[:len(s)-1], nil
}

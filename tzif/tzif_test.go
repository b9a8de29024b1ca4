package tzif

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// honolulu is example B.2 of RFC 8536.
var honolulu = []byte{
	// v1 header
	0x54, 0x5a, 0x69, 0x66, // magic
	0x32, // version
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x06, // isutcnt
	0x00, 0x00, 0x00, 0x06, // isstdcnt
	0x00, 0x00, 0x00, 0x00, // leapcnt
	0x00, 0x00, 0x00, 0x07, // timecnt
	0x00, 0x00, 0x00, 0x06, // typecnt
	0x00, 0x00, 0x00, 0x14, // charcnt
	// v1 block
	0x80, 0x00, 0x00, 0x00,
	0xbb, 0x05, 0x43, 0x48,
	0xbb, 0x21, 0x71, 0x58,
	0xcb, 0x89, 0x3d, 0xc8,
	0xd2, 0x23, 0xf4, 0x70,
	0xd2, 0x61, 0x49, 0x38,
	0xd5, 0x8d, 0x73, 0x48,
	0x01, 0x02, 0x01, 0x03, 0x04, 0x01, 0x05,
	0xff, 0xff, 0x6c, 0x02, 0x00, 0x00,
	0xff, 0xff, 0x6c, 0x58, 0x00, 0x04,
	0xff, 0xff, 0x7a, 0x68, 0x01, 0x08,
	0xff, 0xff, 0x7a, 0x68, 0x01, 0x0c,
	0xff, 0xff, 0x7a, 0x68, 0x01, 0x10,
	0xff, 0xff, 0x73, 0x60, 0x00, 0x04,
	'L', 'M', 'T', 0x00,
	'H', 'S', 'T', 0x00,
	'H', 'D', 'T', 0x00,
	'H', 'W', 'T', 0x00,
	'H', 'P', 'T', 0x00,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, // standard/wall
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, // UT/local
	// v2 header
	0x54, 0x5a, 0x69, 0x66,
	0x32,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x06,
	0x00, 0x00, 0x00, 0x06,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x07,
	0x00, 0x00, 0x00, 0x06,
	0x00, 0x00, 0x00, 0x14,
	// v2 block
	0xff, 0xff, 0xff, 0xff, 0x74, 0xe0, 0x70, 0xbe,
	0xff, 0xff, 0xff, 0xff, 0xbb, 0x05, 0x43, 0x48,
	0xff, 0xff, 0xff, 0xff, 0xbb, 0x21, 0x71, 0x58,
	0xff, 0xff, 0xff, 0xff, 0xcb, 0x89, 0x3d, 0xc8,
	0xff, 0xff, 0xff, 0xff, 0xd2, 0x23, 0xf4, 0x70,
	0xff, 0xff, 0xff, 0xff, 0xd2, 0x61, 0x49, 0x38,
	0xff, 0xff, 0xff, 0xff, 0xd5, 0x8d, 0x73, 0x48,
	0x01, 0x02, 0x01, 0x03, 0x04, 0x01, 0x05,
	0xff, 0xff, 0x6c, 0x02, 0x00, 0x00,
	0xff, 0xff, 0x6c, 0x58, 0x00, 0x04,
	0xff, 0xff, 0x7a, 0x68, 0x01, 0x08,
	0xff, 0xff, 0x7a, 0x68, 0x01, 0x0c,
	0xff, 0xff, 0x7a, 0x68, 0x01, 0x10,
	0xff, 0xff, 0x73, 0x60, 0x00, 0x04,
	'L', 'M', 'T', 0x00,
	'H', 'S', 'T', 0x00,
	'H', 'D', 'T', 0x00,
	'H', 'W', 'T', 0x00,
	'H', 'P', 'T', 0x00,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00,
	// footer
	0x0a, 'H', 'S', 'T', '1', '0', 0x0a,
}

var honoluluTypes = []LocalTimeType{
	{Utoff: -37886, IsDST: false, Idx: 0},
	{Utoff: -37800, IsDST: false, Idx: 4},
	{Utoff: -34200, IsDST: true, Idx: 8},
	{Utoff: -34200, IsDST: true, Idx: 12},
	{Utoff: -34200, IsDST: true, Idx: 16},
	{Utoff: -36000, IsDST: false, Idx: 4},
}

func honoluluBlock(first int64) Block {
	return Block{
		TransitionTimes: []int64{first, -1157283000, -1155436200, -880198200, -769395600, -765376200, -712150200},
		TransitionTypes: []uint8{1, 2, 1, 3, 4, 1, 5},
		LocalTimeTypes:  honoluluTypes,
		Designations:    []byte("LMT\x00HST\x00HDT\x00HWT\x00HPT\x00"),
		StandardWall:    []bool{false, false, false, false, true, false},
		UTLocal:         []bool{false, false, false, false, true, false},
	}
}

func TestDecodeData_Honolulu(t *testing.T) {
	got, err := DecodeData(bytes.NewReader(honolulu))
	if err != nil {
		t.Fatalf("DecodeData() failed: %v", err)
	}
	want := Data{
		Version: V2,
		V1:      honoluluBlock(-2147483648),
		V2:      honoluluBlock(-2334101314),
		Footer:  "HST10",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeData() mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(got); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	var buf bytes.Buffer
	if err := got.Encode(&buf); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if diff := cmp.Diff(honolulu, buf.Bytes()); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestBlock_Designation(t *testing.T) {
	b := honoluluBlock(0)
	for idx, want := range map[uint8]string{0: "LMT", 4: "HST", 16: "HPT", 17: "PT", 19: "", 20: ""} {
		if got := b.Designation(idx); got != want {
			t.Errorf("Designation(%d) = %q, want %q", idx, got, want)
		}
	}
}

func TestReadHeader(t *testing.T) {
	h, err := ReadHeader(bytes.NewReader(honolulu))
	if err != nil {
		t.Fatal(err)
	}
	want := Header{Version: V2, Isutcnt: 6, Isstdcnt: 6, Timecnt: 7, Typecnt: 6, Charcnt: 20}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("ReadHeader() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, honoluluBlock(0).Header(V2)); diff != "" {
		t.Errorf("Block.Header() mismatch (-want +got):\n%s", diff)
	}

	bad := append([]byte("TZIF"), honolulu[4:]...)
	if _, err := ReadHeader(bytes.NewReader(bad)); err == nil || !strings.Contains(err.Error(), "invalid magic") {
		t.Errorf("ReadHeader() with bad magic = %v", err)
	}
}

func TestNew(t *testing.T) {
	ltts := []LocalTimeType{
		{Utoff: -18000, Idx: 0},
		{Utoff: -14400, IsDST: true, Idx: 4},
	}
	// The first transition does not fit into 32 bits.
	d := New(V2, []int64{-3000000000, 1710054000, 1730613600}, []uint8{0, 1, 0}, ltts, "EST\x00EDT\x00", "EST5EDT,M3.2.0,M11.1.0")
	if err := Validate(d); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if diff := cmp.Diff([]int64{1710054000, 1730613600}, d.V1.TransitionTimes); diff != "" {
		t.Errorf("V1 times mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeData(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("DecodeData() mismatch (-want +got):\n%s", diff)
	}
	if got.Block().TransitionTimes[0] != -3000000000 {
		t.Errorf("Block() did not return the v2 block")
	}
}

func TestDecodeData_V1(t *testing.T) {
	d := New(V1, nil, nil, []LocalTimeType{{}}, "UTC\x00", "ignored")
	if d.Footer != "" {
		t.Errorf("New(V1) kept footer %q", d.Footer)
	}
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.Len(), 44+6+4; got != want {
		t.Errorf("encoded %d bytes, want %d", got, want)
	}
	got, err := DecodeData(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("DecodeData() mismatch (-want +got):\n%s", diff)
	}
	if got.Block().Designation(0) != "UTC" {
		t.Errorf("Block() did not return the v1 block")
	}
}

func TestDecodeData_Truncated(t *testing.T) {
	for _, n := range []int{0, 10, 44, 100, len(honolulu) - 1} {
		if _, err := DecodeData(bytes.NewReader(honolulu[:n])); err == nil {
			t.Errorf("DecodeData() of %d bytes succeeded, want error", n)
		}
	}
}

func TestEncode_V1TimeOutOfRange(t *testing.T) {
	d := Data{Version: V1, V1: Block{
		TransitionTimes: []int64{1 << 40},
		TransitionTypes: []uint8{0},
		LocalTimeTypes:  []LocalTimeType{{}},
		Designations:    []byte("UTC\x00"),
	}}
	if err := d.Encode(&bytes.Buffer{}); err == nil {
		t.Error("Encode() succeeded, want error")
	}
}

func TestValidate(t *testing.T) {
	b := Block{
		TransitionTimes: []int64{20, 10},
		TransitionTypes: []uint8{0, 3},
		LocalTimeTypes:  []LocalTimeType{{Utoff: -1 << 31, Idx: 9}},
		Designations:    []byte("UTC"),
		StandardWall:    []bool{false, false},
		UTLocal:         []bool{true},
		LeapSeconds:     []LeapSecond{{Occur: -1, Corr: 1}, {Occur: 100, Corr: 3}},
	}
	err := Validate(Data{Version: V2, V1: b, V2: b, Footer: "UTC0\n"})
	if err == nil {
		t.Fatal("Validate() succeeded, want error")
	}
	for _, want := range []string{
		"v1 transition time 1: not in strictly ascending order",
		"v2 transition type 1: index 3 out of range",
		"missing NUL terminator",
		"utoff must not be -2**31",
		"designation index 9 out of range",
		"isstdcnt (2): must be 0 or equal to typecnt (1)",
		"UT/local indicator 0: set without standard/wall indicator",
		"leap second 0: occurrence must be nonnegative",
		"leap second 1: less than 28 days",
		"leap second 1: correction differs by 2",
		"footer",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error does not contain %q", want)
		}
	}
}

package format

import (
	"strings"
	"testing"
	"time"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in    string
		want  Verbosity
		valid bool
	}{
		{"none", VerbNone, true},
		{"component", VerbComponent, true},
		{"all", VerbFull, true},
		{"full", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseVerbosity(tt.in)
		if ok != tt.valid || (ok && got != tt.want) {
			t.Errorf("ParseVerbosity(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

func TestParseTimeDateMode(t *testing.T) {
	tests := []struct {
		in    string
		want  TimeDateMode
		valid bool
	}{
		{"ganesha", TDLegacy, true},
		{"true", TDLegacy, true},
		{"local", TDLocal, true},
		{"8601", TDISO8601, true},
		{"ISO-8601", TDISO8601, true},
		{"syslog", TDSyslog, true},
		{"syslog_usec", TDSyslogUsec, true},
		{"none", TDNone, true},
		{"false", TDNone, true},
		{"user_defined", TDUser, true},
		{"rfc822", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseTimeDateMode(tt.in)
		if ok != tt.valid || (ok && got != tt.want) {
			t.Errorf("ParseTimeDateMode(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.valid)
		}
	}
}

func TestFieldsValidate(t *testing.T) {
	f := DefaultFields()
	if err := f.Validate(); err != nil {
		t.Errorf("default fields invalid: %v", err)
	}

	f.DateFormat = TDUser
	if err := f.Validate(); err == nil {
		t.Error("user date mode without pattern should fail")
	}
	f.UserDateFormat = "2006-01-02"
	if err := f.Validate(); err != nil {
		t.Errorf("user date mode with pattern failed: %v", err)
	}

	f = DefaultFields()
	f.UserTimeFormat = "15:04"
	if err := f.Validate(); err == nil {
		t.Error("time pattern without user mode should fail")
	}
}

func TestConstPrefix(t *testing.T) {
	fields := DefaultFields()
	f, err := New(fields, "myhost", "prog", 123, 0x1234)
	if err != nil {
		t.Fatal(err)
	}
	want := ": epoch 00001234 : myhost : prog-123"
	if got := f.ConstPrefix(); got != want {
		t.Errorf("const prefix = %q, want %q", got, want)
	}

	// Without a thread tag the prefix closes with a separator space.
	fields.ThreadName = false
	f, err = New(fields, "myhost", "prog", 123, 0x1234)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.ConstPrefix(); got != want+" " {
		t.Errorf("const prefix = %q, want %q", got, want+" ")
	}

	// No program: pid stands alone.
	fields = DefaultFields()
	fields.Program = false
	f, err = New(fields, "myhost", "prog", 123, 0x1234)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.ConstPrefix(); got != ": epoch 00001234 : myhost 123" {
		t.Errorf("const prefix = %q", got)
	}
}

func TestTimeLayouts(t *testing.T) {
	ts := time.Date(2026, 8, 24, 13, 5, 9, 123456000, time.UTC)
	tests := []struct {
		date, tm TimeDateMode
		want     string
	}{
		{TDLegacy, TDLegacy, "24/08/2026 13:05:09 "},
		{TDISO8601, TDISO8601, "2026-08-24 13:05:09 "},
		{TDSyslog, TDSyslog, "Aug 24 13:05:09 "},
		{TDSyslogUsec, TDSyslogUsec, "2026-08-24T13:05:09.123456Z "},
		{TDNone, TDNone, ""},
	}
	for _, tt := range tests {
		fields := DefaultFields()
		fields.DateFormat = tt.date
		fields.TimeFormat = tt.tm
		layout := buildTimeLayout(fields)
		if got := ts.Format(layout); got != tt.want {
			t.Errorf("mode (%v,%v): rendered %q, want %q", tt.date, tt.tm, got, tt.want)
		}
	}
}

func TestRenderHeaderGating(t *testing.T) {
	fields := DefaultFields()
	fields.DateFormat = TDNone
	fields.TimeFormat = TDNone
	f, err := New(fields, "h", "p", 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	b := display.New(display.DefaultSize)
	f.RenderHeader(b, time.Now(), VerbComponent)
	if b.Len() != 0 {
		t.Errorf("header rendered below full verbosity: %q", b.String())
	}

	f.RenderHeader(b, time.Now(), VerbFull)
	if got := b.String(); got != ": epoch 00000000 : h : p-1" {
		t.Errorf("header = %q", got)
	}
}

func TestRenderComponent(t *testing.T) {
	fields := DefaultFields()
	fields.DateFormat = TDNone
	fields.TimeFormat = TDNone
	fields.FileName = true
	fields.LineNum = true
	f, err := New(fields, "h", "p", 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	b := display.New(display.DefaultSize)
	f.RenderComponent(b, "worker", "main.go", 42, "doWork", "NFS3", level.Warn, VerbComponent)
	want := "[worker] main.go:42 :doWork :NFS3 :WARN :"
	if got := b.String(); got != want {
		t.Errorf("component block = %q, want %q", got, want)
	}

	b.Reset()
	f.RenderComponent(b, "worker", "main.go", 42, "doWork", "NFS3", level.Warn, VerbNone)
	if b.Len() != 0 {
		t.Errorf("component block rendered below component verbosity: %q", b.String())
	}
}

func TestHeaderOverflowAbandoned(t *testing.T) {
	fields := DefaultFields()
	fields.DateFormat = TDNone
	fields.TimeFormat = TDNone
	f, err := New(fields, strings.Repeat("h", 64), "p", 1, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Too small for the header: the whole header must be abandoned so
	// the message starts at position zero.
	b := display.New(16)
	f.RenderHeader(b, time.Now(), VerbFull)
	if b.Len() != 0 {
		t.Errorf("overflowed header kept %d bytes: %q", b.Len(), b.String())
	}
	b.Append("the message")
	if got := b.String(); got != "the message" {
		t.Errorf("message after abandoned header = %q", got)
	}
}

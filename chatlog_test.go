package chatmood

import (
	"os"
	"strings"
	"testing"
)

func TestParseChatLog(t *testing.T) {
	f, err := os.Open("testdata/chat.log")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	ds, stats, err := ParseChatLog(f)
	if err != nil {
		t.Fatalf("ParseChatLog failed: %v", err)
	}

	want := ChatLogStats{Lines: 5, Records: 3, Blank: 1, Malformed: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	if strings.Join(ds.Columns, ",") != "datetime,date,time,message" {
		t.Errorf("Columns = %v", ds.Columns)
	}

	first := ds.Records[0].Fields
	if first["datetime"] != "2018-11-02 19:00:03" || first["date"] != "2018-11-02" ||
		first["time"] != "19:00:03" || first["message"] != "good stream" {
		t.Errorf("first record = %v", first)
	}
	if msg := ds.Records[2].Message(DefaultMessageColumn); msg != "carol joined" {
		t.Errorf("line without a colon kept %q, want the text after the bracket", msg)
	}
}

func TestParseChatLine(t *testing.T) {
	tests := []struct {
		desc     string
		line     string
		datetime string
		message  string
		ok       bool
	}{
		{"Standard line", "[2018-11-02 19:00:03 UTC] alice: hi", "2018-11-02 19:00:03", "hi", true},
		{"Colon inside message", "[2018-11-02 19:00:03 UTC] bob: meet at 10:30", "2018-11-02 19:00:03", "meet at 10:30", true},
		{"No zone", "[2018-11-02 19:00:03] bob: hi", "2018-11-02 19:00:03", "hi", true},
		{"Numeric offset kept", "[2018-11-02 19:00:03 +0100] bob: hi", "2018-11-02 19:00:03 +0100", "hi", true},
		{"Trailing spaces", "[2018-11-02 19:00:03 UTC] bob: hi  ", "2018-11-02 19:00:03", "hi", true},
		{"No bracket", "bob: hi", "", "", false},
		{"Reversed brackets", "] bob [", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			rec, ok := parseChatLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseChatLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if !ok {
				return
			}
			if rec.Fields["datetime"] != tt.datetime {
				t.Errorf("datetime = %q, want %q", rec.Fields["datetime"], tt.datetime)
			}
			if rec.Message(DefaultMessageColumn) != tt.message {
				t.Errorf("message = %q, want %q", rec.Message(DefaultMessageColumn), tt.message)
			}
		})
	}
}

func TestParseChatLogCRLF(t *testing.T) {
	input := "[2018-11-02 19:00:03 UTC] alice: good\r\n\r\n"
	ds, stats, err := ParseChatLog(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseChatLog failed: %v", err)
	}
	if stats.Records != 1 || stats.Blank != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if msg := ds.Records[0].Message(DefaultMessageColumn); msg != "good" {
		t.Errorf("message = %q", msg)
	}
}

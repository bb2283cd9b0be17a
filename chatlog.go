package chatmood

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Chat log columns, in output order.
var ChatLogColumns = []string{"datetime", "date", "time", DefaultMessageColumn}

// ChatLogStats counts the lines ParseChatLog saw.
type ChatLogStats struct {
	Lines     int
	Records   int
	Blank     int
	Malformed int
}

// ParseChatLog reads chat log lines of the form
//
//	[2018-11-02 19:00:03 UTC] nickname: message text
//
// into records with datetime, date, time and message columns. The trailing
// time zone is dropped from datetime. A line without a colon after the
// bracket keeps everything after the bracket as its message. Blank lines
// and lines without a bracketed timestamp are skipped and counted.
func ParseChatLog(r io.Reader) (*Dataset, ChatLogStats, error) {
	ds := &Dataset{Columns: append([]string(nil), ChatLogColumns...)}
	var stats ChatLogStats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		stats.Lines++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			stats.Blank++
			continue
		}
		rec, ok := parseChatLine(line)
		if !ok {
			stats.Malformed++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, err
	}

	stats.Records = len(ds.Records)
	return ds, stats, nil
}

func parseChatLine(line string) (*Record, bool) {
	open := strings.IndexByte(line, '[')
	end := strings.IndexByte(line, ']')
	if open < 0 || end < open {
		return nil, false
	}

	datetime := stripZone(strings.TrimSpace(line[open+1 : end]))
	date, clock, _ := strings.Cut(datetime, " ")

	rest := line[end+1:]
	message := rest
	if _, after, found := strings.Cut(rest, ":"); found {
		message = after
	}

	return &Record{Fields: map[string]string{
		"datetime":           datetime,
		"date":               date,
		"time":               clock,
		DefaultMessageColumn: strings.TrimSpace(message),
	}}, true
}

// stripZone drops a trailing alphabetic zone name such as "UTC".
func stripZone(s string) string {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return s
	}
	zone := s[i+1:]
	if zone == "" || strings.IndexFunc(zone, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		return s
	}
	return strings.TrimSpace(s[:i])
}

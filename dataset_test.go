package chatmood

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestReadDataset(t *testing.T) {
	f, err := os.Open("testdata/messages.csv")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	ds, err := ReadDataset(f, ',', "")
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}

	if got := strings.Join(ds.Columns, ","); got != "sentiment,user,message" {
		t.Errorf("Columns = %q", got)
	}
	if len(ds.Records) != 4 {
		t.Fatalf("got %d records, want 4", len(ds.Records))
	}
	if msg := ds.Records[1].Message(DefaultMessageColumn); msg != "that was bad" {
		t.Errorf("record 1 message = %q", msg)
	}
	if user := ds.Records[2].Fields["user"]; user != "carol" {
		t.Errorf("record 2 user = %q", user)
	}
}

func TestReadDatasetCustomColumn(t *testing.T) {
	input := "\ufefftext\tchannel\nhello world\t#general\n"
	ds, err := ReadDataset(strings.NewReader(input), '\t', "text")
	if err != nil {
		t.Fatalf("ReadDataset failed: %v", err)
	}
	if len(ds.Records) != 1 || ds.Records[0].Message("text") != "hello world" {
		t.Errorf("records = %+v", ds.Records)
	}
}

func TestReadDatasetMissingColumn(t *testing.T) {
	tests := []struct {
		desc  string
		input string
	}{
		{"Empty input", ""},
		{"Wrong header", "text,user\nhi,bob\n"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input), ',', "message")
			if !errors.Is(err, ErrMissingColumn) {
				t.Errorf("error = %v, want ErrMissingColumn", err)
			}
		})
	}
}

func TestReadDatasetDuplicateColumn(t *testing.T) {
	tests := []struct {
		desc  string
		input string
	}{
		{"Repeated name", "message,user,user\nhi,alice,bob\n"},
		{"Repeated after trimming", "message, user,user \nhi,alice,bob\n"},
		{"Repeated message column", "message,message\nhi,there\n"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input), ',', "message")
			if !errors.Is(err, ErrDuplicateColumn) {
				t.Errorf("error = %v, want ErrDuplicateColumn", err)
			}
		})
	}
}

func TestDatasetRequireColumns(t *testing.T) {
	ds := scoredDataset()

	if err := ds.RequireColumns("sentiment", "message"); err != nil {
		t.Errorf("RequireColumns(present) = %v", err)
	}
	err := ds.RequireColumns("message", "sentimnet")
	if !errors.Is(err, ErrMissingColumn) || !strings.Contains(err.Error(), "sentimnet") {
		t.Errorf("RequireColumns(misspelled) = %v, want ErrMissingColumn naming it", err)
	}
}

func scoredDataset() *Dataset {
	return &Dataset{
		Columns: []string{"sentiment", "message", ColumnPrediction},
		Records: []*Record{
			{
				Fields:     map[string]string{"sentiment": "1", "message": "good", ColumnPrediction: "stale"},
				Prediction: Prediction{Label: Positive, Scores: Distribution{0.1, 0.2, 0.7}, Inferred: true, Matched: 1},
			},
			{
				Fields:     map[string]string{"sentiment": "0", "message": "zzz"},
				Prediction: unscored(),
			},
		},
	}
}

func TestWriteDataset(t *testing.T) {
	tests := []struct {
		desc     string
		opts     WriteOptions
		expected string
	}{
		{
			"Joined scores",
			WriteOptions{},
			"sentiment,message,pred_sentiment,class_scores,inferred\n" +
				"1,good,1,0.1-0.2-0.7,true\n" +
				"0,zzz,,0.33-0.34-0.33,false\n",
		},
		{
			"Split scores",
			WriteOptions{ScoreFormat: ScoresSplit},
			"sentiment,message,pred_sentiment,class_negative,class_neutral,class_positive,inferred\n" +
				"1,good,1,0.1,0.2,0.7,true\n" +
				"0,zzz,,0.33,0.34,0.33,false\n",
		},
		{
			"Tab delimited",
			WriteOptions{Delimiter: '\t'},
			"sentiment\tmessage\tpred_sentiment\tclass_scores\tinferred\n" +
				"1\tgood\t1\t0.1-0.2-0.7\ttrue\n" +
				"0\tzzz\t\t0.33-0.34-0.33\tfalse\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteDataset(&buf, scoredDataset(), tt.opts); err != nil {
				t.Fatalf("WriteDataset failed: %v", err)
			}
			if got := buf.String(); got != tt.expected {
				t.Errorf("WriteDataset =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestWriteDatasetNegativeLabel(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"message"},
		Records: []*Record{{
			Fields:     map[string]string{"message": "bad"},
			Prediction: Prediction{Label: Negative, Scores: Distribution{0.7, 0.2, 0.1}, Inferred: true},
		}},
	}

	var buf bytes.Buffer
	if err := WriteDataset(&buf, ds, WriteOptions{}); err != nil {
		t.Fatalf("WriteDataset failed: %v", err)
	}
	want := "message,pred_sentiment,class_scores,inferred\nbad,-1,0.7-0.2-0.1,true\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestParseScoreFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected ScoreFormat
		wantErr  bool
	}{
		{"", ScoresJoined, false},
		{"joined", ScoresJoined, false},
		{"split", ScoresSplit, false},
		{"columns", "", true},
	}

	for _, tt := range tests {
		got, err := ParseScoreFormat(tt.input)
		if (err != nil) != tt.wantErr || got != tt.expected {
			t.Errorf("ParseScoreFormat(%q) = %q, %v", tt.input, got, err)
		}
	}
}

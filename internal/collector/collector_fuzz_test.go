package collector

import (
	"strings"
	"testing"
)

// FuzzRead feeds arbitrary payloads to both decoders. Accepted titles come back trimmed.
func FuzzRead(f *testing.F) {
	seeds := []struct{ payload, format string }{
		{`[{"title":"Oppenheimer","seeders":10,"leechers":2,"category":"movies"}]`, FormatJSON},
		{`{"records":[{"title":"","seeders":1,"leechers":1}]}`, FormatJSON},
		{"title,seeders,leechers\nBarbie,5,1\n", FormatCSV},
		{"\ufefftitle,seeders\nx,1\n", FormatCSV},
	}
	for _, seed := range seeds {
		f.Add(seed.payload, seed.format)
	}

	f.Fuzz(func(t *testing.T, payload, format string) {
		if format != FormatJSON && format != FormatCSV {
			return
		}
		batch, err := Read(strings.NewReader(payload), format)
		if err != nil {
			return
		}
		for i, r := range batch.Records {
			if r.Title != strings.TrimSpace(r.Title) {
				t.Errorf("record %d kept surrounding whitespace: %q", i, r.Title)
			}
		}
	})
}

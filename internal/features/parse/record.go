package parse

import "strings"

// RecordFields are the three record columns a runner may publish, each named
// after the start type it was set under
type RecordFields struct {
	Mobile   string // car (mobile) start record, e.g. "12,6aly"
	Handicap string // handicap race record, e.g. "15,2ke"
	Vault    string // volt start record
}

// Record is the best available race record
type Record struct {
	Value        float64
	FromCarStart bool
	Found        bool
}

// SelectRecord picks the first record with a positive leading number. A car
// start prefers the mobile record; a line start prefers the handicap record.
func SelectRecord(f RecordFields, carStart bool) Record {
	type candidate struct {
		raw    string
		mobile bool
	}

	order := []candidate{{f.Handicap, false}, {f.Mobile, true}, {f.Vault, false}}
	if carStart {
		order = []candidate{{f.Mobile, true}, {f.Handicap, false}, {f.Vault, false}}
	}

	for _, c := range order {
		v := commaFloat(leadingDigitCommaRun.FindString(strings.TrimSpace(c.raw)))
		if v > 0 {
			return Record{Value: v, FromCarStart: c.mobile, Found: true}
		}
	}

	return Record{}
}

package rules

import (
	"crypto/md5"
	"strings"
	"testing"
)

func BenchmarkHashTable(b *testing.B) {
	table := mkTable()
	for n := 0; n < b.N; n++ {
		h := md5.New()
		table.Hash(h)
		_ = h.Sum(nil)
	}
}

func TestHashTable(t *testing.T) {
	base := hashOf(mkTable())
	if again := hashOf(mkTable()); again != base {
		t.Errorf("hash is not deterministic: %s != %s", base, again)
	}
	for _, tc := range []struct {
		desc  string
		table Table
	}{
		{
			"name",
			MustTable("other",
				New("centre", Category_Abbreviation, Word("centre"), Replace("Ctr")),
				NewFunc("upper", Category_Cleanup, strings.ToUpper),
			),
		},
		{
			"rule name",
			MustTable("t",
				New("center", Category_Abbreviation, Word("centre"), Replace("Ctr")),
				NewFunc("upper", Category_Cleanup, strings.ToUpper),
			),
		},
		{
			"category",
			MustTable("t",
				New("centre", Category_PlaceName, Word("centre"), Replace("Ctr")),
				NewFunc("upper", Category_Cleanup, strings.ToUpper),
			),
		},
		{
			"pattern",
			MustTable("t",
				New("centre", Category_Abbreviation, Word("center"), Replace("Ctr")),
				NewFunc("upper", Category_Cleanup, strings.ToUpper),
			),
		},
		{
			"template",
			MustTable("t",
				New("centre", Category_Abbreviation, Word("centre"), Replace("C")),
				NewFunc("upper", Category_Cleanup, strings.ToUpper),
			),
		},
		{
			"order",
			MustTable("t",
				NewFunc("upper", Category_Cleanup, strings.ToUpper),
				New("centre", Category_Abbreviation, Word("centre"), Replace("Ctr")),
			),
		},
		{
			"missing rule",
			MustTable("t",
				New("centre", Category_Abbreviation, Word("centre"), Replace("Ctr")),
			),
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			if hashOf(tc.table) == base {
				t.Errorf("changing the %s did not change the hash", tc.desc)
			}
		})
	}
}

func mkTable() Table {
	return MustTable("t",
		New("centre", Category_Abbreviation, Word("centre"), Replace("Ctr")),
		NewFunc("upper", Category_Cleanup, strings.ToUpper),
	)
}

func hashOf(t Table) string {
	h := md5.New()
	t.Hash(h)
	return string(h.Sum(nil))
}

package clean

import (
	"testing"

	"github.com/jamespfennell/gtfsclean/rules"
)

func TestTables(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		table    rules.Table
		input    string
		expected string
	}{
		{"saint", Saint(), "Saint-Nicolas", "St-Nicolas"},
		{"sainte", Saint(), "Sainte-Hélène", "Ste-Hélène"},
		{"saint lower case", Saint(), "rue saint-louis", "rue St-louis"},
		{"saint inside word", Saint(), "Saintonge", "Saintonge"},
		{"via", RemoveVia(), "Lévis via Desjardins", "Lévis"},
		{"via in parenthesis", RemoveVia(), "Lévis (via Desjardins)", "Lévis"},
		{"via inside word", RemoveVia(), "Rue Viau", "Rue Viau"},
		{"en dash", Dashes(), "Lévis – Québec", "Lévis - Québec"},
		{"em dash", Dashes(), "Lévis — Québec", "Lévis - Québec"},
		{"parenthesis", Parenthesis(), "Village ( St-Nicolas )", "Village (St-Nicolas)"},
		{"boulevard", StreetTypesFRCA(), "Boulevard Guillaume-Couture", "Boul Guillaume-Couture"},
		{"avenue", StreetTypesFRCA(), "12e Avenue", "12e Av"},
		{"route lower case", StreetTypesFRCA(), "route du Président-Kennedy", "Rte du Président-Kennedy"},
		{"montée", StreetTypesFRCA(), "Montée du Fleuve", "Mtée du Fleuve"},
		{"street type inside word", StreetTypesFRCA(), "Placette", "Placette"},
		{"label spaces", Label(), "  Lévis   Rivière  ", "Lévis Rivière"},
		{"label empty parenthesis", Label(), "Lagueux ()", "Lagueux"},
		{"label parenthesis spacing", Label(), "Village(St-Nicolas )", "Village (St-Nicolas)"},
		{"label trailing dash", Label(), "Lévis - ", "Lévis"},
		{"label leading dash", Label(), " - Lévis", "Lévis"},
		{"label comma", Label(), "Lévis , Québec", "Lévis, Québec"},
		{"label fr articles", LabelFR(), "Chemin De La Rivière", "Chemin de la Rivière"},
		{"label fr first word", LabelFR(), "la Source", "La Source"},
		{"label fr after dash", LabelFR(), "Lévis - La Source", "Lévis - La Source"},
		{"label fr elision", LabelFR(), "Rue D’Youville", "Rue d'Youville"},
		{"label fr apostrophe spacing", LabelFR(), "L' Anse", "L'Anse"},
		{"label fr capital accent", LabelFR(), "école", "École"},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			actual := tc.table.Apply(tc.input)
			if actual != tc.expected {
				t.Errorf("%s.Apply(%q) = %q, want %q", tc.table.Name(), tc.input, actual, tc.expected)
			}
		})
	}
}

func TestTablesAreIdempotent(t *testing.T) {
	for _, table := range []rules.Table{Saint(), RemoveVia(), Dashes(), Parenthesis(), StreetTypesFRCA(), Label(), LabelFR()} {
		for _, input := range []string{
			"Saint-Nicolas – Bernières (Direct)",
			"Boulevard de la Rive-Sud via Lagueux",
			"  Montée ( St-Jean ) - ",
			"l'Anse-Tibbits",
		} {
			once := table.Apply(input)
			twice := table.Apply(once)
			if once != twice {
				t.Errorf("%s is not idempotent on %q: %q then %q", table.Name(), input, once, twice)
			}
		}
	}
}

func TestCompose(t *testing.T) {
	decomposed := "Le\u0301vis"
	if actual := Compose(decomposed); actual != "L\u00e9vis" {
		t.Errorf("Compose(%q) = %q", decomposed, actual)
	}
}

func TestMergedID(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected string
	}{
		{"12345", "12345"},
		{"12345-merged-67", "12345"},
		{"12345-MERGED-67A", "12345"},
		{"1234A_merged", "1234A"},
		{"merged", "merged"},
	} {
		if actual := MergedID(tc.input); actual != tc.expected {
			t.Errorf("MergedID(%q) = %q, want %q", tc.input, actual, tc.expected)
		}
	}
}

package stlevis

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jamespfennell/gtfsclean/agency"
	"github.com/jamespfennell/gtfsclean/config"
	"github.com/jamespfennell/gtfsclean/rules"
	"gopkg.in/yaml.v3"
)

func newAgency(t *testing.T, opts Opts) *Agency {
	t.Helper()
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	return a
}

func TestTripHeadsign(t *testing.T) {
	a := newAgency(t, Opts{})
	for _, tc := range []struct {
		input    string
		expected string
	}{
		{"Lévis Terminus Rivière – St-Jean (Direct)", "Lévis Rivière - St-J"},
		{"Terminus", ""},
		{"Lévis (Direct) Lagueux", "Lévis (Direct) Lagueux"},
		{"Lévis (direct)", "Lévis"},
		{"Saint-Jean", "St-J"},
		{"Lévis (Arrêts limités)", "Lévis"},
		{"", ""},
	} {
		t.Run(tc.input, func(t *testing.T) {
			if actual := a.CleanTripHeadsign(tc.input); actual != tc.expected {
				t.Errorf("CleanTripHeadsign(%q) = %q, want %q", tc.input, actual, tc.expected)
			}
		})
	}
}

type corpusEntry struct {
	Kind  string `yaml:"kind"`
	Raw   string `yaml:"raw"`
	Clean string `yaml:"clean"`
}

func readCorpus(t *testing.T) []corpusEntry {
	t.Helper()
	b, err := os.ReadFile("testdata/corpus.yml")
	if err != nil {
		t.Fatalf("failed to read corpus: %v", err)
	}
	var entries []corpusEntry
	if err := yaml.Unmarshal(b, &entries); err != nil {
		t.Fatalf("failed to parse corpus: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("empty corpus")
	}
	return entries
}

func TestCorpus(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	for _, e := range readCorpus(t) {
		kind, ok := agency.ParseFieldKind(e.Kind)
		if !ok {
			t.Fatalf("unknown kind %q", e.Kind)
		}
		t.Run(e.Raw, func(t *testing.T) {
			actual := n.Normalize(kind, e.Raw)
			if actual != e.Clean {
				t.Errorf("Normalize(%s, %q) = %q, want %q", kind, e.Raw, actual, e.Clean)
			}
			if again := n.Normalize(kind, actual); again != actual {
				t.Errorf("Normalize(%s, %q) is not idempotent: got %q", kind, actual, again)
			}
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	entries := readCorpus(t)
	expected := make([]string, len(entries))
	for i, e := range entries {
		kind, _ := agency.ParseFieldKind(e.Kind)
		expected[i] = n.Normalize(kind, e.Raw)
	}
	var wg sync.WaitGroup
	results := make([][]string, 8)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for _, e := range entries {
				kind, _ := agency.ParseFieldKind(e.Kind)
				results[g] = append(results[g], n.Normalize(kind, e.Raw))
			}
		}(g)
	}
	wg.Wait()
	for _, actual := range results {
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Errorf("concurrent Normalize() diff = %s", diff)
		}
	}
}

func TestNormalizeUnknownKind(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	if actual := n.Normalize(agency.FieldKind(17), "Boulevard  Lagueux"); actual != "Boulevard  Lagueux" {
		t.Errorf("Normalize() = %q", actual)
	}
}

func TestRulesPreserveBoundaries(t *testing.T) {
	entries := readCorpus(t)
	r := DefaultRules()
	for _, table := range []rules.Table{r.RouteLongName, r.TripHeadsign, r.StopName} {
		for _, rule := range table.Rules() {
			if err := rule.Validate(); err != nil {
				t.Errorf("%s: %v", table.Name(), err)
			}
			if !rule.Bounded() {
				continue
			}
			left := rule.Pattern.SubexpIndex("left")
			right := rule.Pattern.SubexpIndex("right")
			for _, e := range entries {
				for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(e.Raw, -1) {
					out := string(rule.Pattern.ExpandString(nil, rule.Template, e.Raw, loc))
					l := e.Raw[loc[2*left]:loc[2*left+1]]
					rt := e.Raw[loc[2*right]:loc[2*right+1]]
					if !strings.HasPrefix(out, l) || !strings.HasSuffix(out, rt) {
						t.Errorf("rule %s on %q: replacement %q drops boundaries %q and %q", rule.Name, e.Raw, out, l, rt)
					}
				}
			}
		}
	}
}

func TestRuleOrder(t *testing.T) {
	const input = "Québec Centre-Ville - SAAQ"
	if actual := DefaultRules().TripHeadsign.Apply(input); actual != "Québec Ctr" {
		t.Errorf("Apply(%q) = %q", input, actual)
	}

	var saaq, centre rules.Rule
	for _, rule := range headsignRules.Rules() {
		switch rule.Name {
		case "quebec-centre-saaq":
			saaq = rule
		case "centre":
			centre = rule
		}
	}
	reversed := rules.MustTable("reversed", centre, saaq)
	if actual := reversed.Apply(input); actual != "Québec Ctr-Ville - SAAQ" {
		t.Errorf("reversed Apply(%q) = %q", input, actual)
	}
}

func TestTrace(t *testing.T) {
	n := NewNormalizer(DefaultRules())
	out, steps := n.Trace(agency.FieldKind_TripHeadsign, "Lévis Terminus Rivière – St-Jean (Direct)")
	if out != "Lévis Rivière - St-J" {
		t.Errorf("Trace() = %q", out)
	}
	var changed []string
	for _, s := range steps {
		if s.Changed() {
			changed = append(changed, s.Rule)
		}
	}
	expected := []string{"dash", "terminus", "st-jean", "direct", "label-spaces"}
	if diff := cmp.Diff(expected, changed); diff != "" {
		t.Errorf("changed rules diff = %s", diff)
	}
}

func TestDirectionHeadsign(t *testing.T) {
	var calls []string
	a := newAgency(t, Opts{
		DirectionFallback: func(a agency.Agency, directionID int, fromStopName bool, headsign string) string {
			calls = append(calls, headsign)
			return agency.DefaultDirectionHeadsign(a, directionID, fromStopName, headsign)
		},
	})
	for _, tc := range []struct {
		input        string
		fromStopName bool
		expected     string
	}{
		{"Lagueux (AM)", false, "AM"},
		{"Boulevard Lagueux (PM)", true, "PM"},
		{"Lagueux (am)", false, "Lagueux (am)"},
		{"Terminus Lagueux", false, "Lagueux"},
		{"Terminus Lagueux", true, "Terminus Lagueux"},
	} {
		if actual := a.CleanDirectionHeadsign(0, tc.fromStopName, tc.input); actual != tc.expected {
			t.Errorf("CleanDirectionHeadsign(%q, %t) = %q, want %q", tc.input, tc.fromStopName, actual, tc.expected)
		}
	}
	expectedCalls := []string{"Lagueux (am)", "Terminus Lagueux", "Terminus Lagueux"}
	if diff := cmp.Diff(expectedCalls, calls); diff != "" {
		t.Errorf("fallback calls diff = %s", diff)
	}
}

func TestRouteID(t *testing.T) {
	var calls []string
	a := newAgency(t, Opts{
		RouteIDFallback: func(routeShortName string) (int64, error) {
			calls = append(calls, routeShortName)
			return 42, nil
		},
	})
	for _, tc := range []struct {
		input    string
		expected int64
	}{
		{"ECQ", 9050317},
		{"VERT", 9053717},
		{"ZZZ", 42},
		{"ecq", 42},
	} {
		actual, err := a.RouteID(tc.input)
		if err != nil || actual != tc.expected {
			t.Errorf("RouteID(%q) = %d, %v, want %d", tc.input, actual, err, tc.expected)
		}
	}
	if diff := cmp.Diff([]string{"ZZZ", "ecq"}, calls); diff != "" {
		t.Errorf("fallback calls diff = %s", diff)
	}
}

func TestRouteIDDefaultFallback(t *testing.T) {
	a := newAgency(t, Opts{})
	if actual, err := a.RouteID("11"); err != nil || actual != 11 {
		t.Errorf("RouteID(11) = %d, %v", actual, err)
	}
	_, err := a.RouteID("ZZZ")
	var codeErr *agency.UnrecognizedCodeError
	if !errors.As(err, &codeErr) {
		t.Errorf("RouteID(ZZZ) err = %v, want UnrecognizedCodeError", err)
	}
}

func TestRouteColor(t *testing.T) {
	a := newAgency(t, Opts{})
	for _, tc := range []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{input: "142", expected: "FFD800"},
		{input: "100", expected: "FFD800"},
		{input: "999", expected: "FFD800"},
		{input: "T65", expected: "C7B24C"},
		{input: "t65", expected: "C7B24C"},
		{input: "42", wantErr: true},
		{input: "1000", wantErr: true},
		{input: "XYZ", wantErr: true},
		{input: "", wantErr: true},
	} {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := a.RouteColor(tc.input)
			if tc.wantErr {
				var codeErr *agency.UnrecognizedCodeError
				if !errors.As(err, &codeErr) {
					t.Fatalf("RouteColor(%q) err = %v, want UnrecognizedCodeError", tc.input, err)
				}
				if codeErr.RawInput() != tc.input {
					t.Errorf("RawInput() = %q, want %q", codeErr.RawInput(), tc.input)
				}
				return
			}
			if err != nil || actual != tc.expected {
				t.Errorf("RouteColor(%q) = %q, %v, want %q", tc.input, actual, err, tc.expected)
			}
		})
	}
}

func TestStopID(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{input: "12345", expected: 12345},
		{input: "12345-MERGED-67A", expected: 12345},
		{input: "1234A", expected: 1234},
		{input: "1234AB", expected: 1234},
		{input: "1234A_merged", expected: 1234},
		{input: "ABC", wantErr: true},
		{input: "12a", wantErr: true},
		{input: "12-34", wantErr: true},
		{input: "99999999999", wantErr: true},
		{input: "", wantErr: true},
	} {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := ExtractStopID(tc.input)
			if tc.wantErr {
				var idErr *agency.MalformedIDError
				if !errors.As(err, &idErr) {
					t.Fatalf("ExtractStopID(%q) err = %v, want MalformedIDError", tc.input, err)
				}
				if idErr.RawInput() != tc.input {
					t.Errorf("RawInput() = %q, want %q", idErr.RawInput(), tc.input)
				}
				return
			}
			if err != nil || actual != tc.expected {
				t.Errorf("ExtractStopID(%q) = %d, %v, want %d", tc.input, actual, err, tc.expected)
			}
		})
	}
}

func TestStopOriginalID(t *testing.T) {
	a := newAgency(t, Opts{})
	if actual := a.CleanStopOriginalID("1234A-merged-5"); actual != "1234A" {
		t.Errorf("CleanStopOriginalID() = %q", actual)
	}
}

func TestInfo(t *testing.T) {
	a := newAgency(t, Opts{})
	expected := agency.Info{
		ID:        "STLevis",
		Name:      "STLévis",
		URL:       "https://www.stlevis.ca",
		Timezone:  "America/Montreal",
		Language:  "fr",
		Color:     "009CBE",
		RouteType: 3,
	}
	if diff := cmp.Diff(expected, a.Info()); diff != "" {
		t.Errorf("Info() diff = %s", diff)
	}
}

func TestCustomProfile(t *testing.T) {
	p := &config.Profile{
		Agency: config.AgencyConfig{ID: "x", Name: "X", Timezone: "America/Montreal", Color: "abcdef"},
		Routes: config.RoutesConfig{
			IDOverrides: map[string]int64{"ABC": 7},
			ColorCodes:  map[string]string{"abc": "123abc"},
		},
	}
	a := newAgency(t, Opts{Profile: p})
	if a.Info().Color != "ABCDEF" {
		t.Errorf("Info().Color = %q", a.Info().Color)
	}
	if id, err := a.RouteID("ABC"); err != nil || id != 7 {
		t.Errorf("RouteID(ABC) = %d, %v", id, err)
	}
	if color, err := a.RouteColor("ABC"); err != nil || color != "123ABC" {
		t.Errorf("RouteColor(ABC) = %q, %v", color, err)
	}
	if _, err := a.RouteColor("142"); err == nil {
		t.Errorf("RouteColor(142) should fail without color ranges")
	}
}

package models

import "testing"

func TestInterestTypesCanonicalOrder(t *testing.T) {
	types := InterestTypes()
	if len(types) != 6 {
		t.Fatalf("expected 6 types, got %d", len(types))
	}
	for i, it := range types {
		if it.Code != CanonicalOrder[i] {
			t.Fatalf("type %d = %s, want %s", i, it.Code, CanonicalOrder[i])
		}
		if it.Name == "" || it.LocalName == "" || len(it.Careers) == 0 || len(it.Traits) == 0 {
			t.Fatalf("type %s is missing reference data: %+v", it.Code, it)
		}
	}
}

func TestParseCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"RIC", "RIC", true},
		{" sai ", "SAI", true},
		{"RIX", "", false},
		{"RI", "", false},
		{"RIAS", "", false},
		{"RRI", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		codes, ok := ParseCode(c.in)
		if ok != c.ok {
			t.Fatalf("ParseCode(%q) ok=%v, want %v", c.in, ok, c.ok)
		}
		got := ""
		for _, tc := range codes {
			got += string(tc)
		}
		if got != c.want {
			t.Fatalf("ParseCode(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestQuestionBankBalanced(t *testing.T) {
	qs := Questions()
	if len(qs) != 42 {
		t.Fatalf("expected 42 questions, got %d", len(qs))
	}
	perType := map[TypeCode]int{}
	seen := map[string]bool{}
	for _, q := range qs {
		if seen[q.ID] {
			t.Fatalf("duplicate question id %s", q.ID)
		}
		seen[q.ID] = true
		perType[q.Type]++
	}
	for _, code := range CanonicalOrder {
		if perType[code] != MaxScore {
			t.Fatalf("type %s has %d questions, want %d", code, perType[code], MaxScore)
		}
	}
	if q, ok := LookupQuestion("Q7"); !ok || q.Type != Realistic {
		t.Fatalf("LookupQuestion(Q7) = %+v, %v", q, ok)
	}
}

func TestAffirmativeAnswer(t *testing.T) {
	for _, in := range []string{"yes", "Y", " true ", "1", "agree"} {
		if !AffirmativeAnswer(in) {
			t.Fatalf("expected %q to be affirmative", in)
		}
	}
	for _, in := range []string{"no", "", "0", "maybe"} {
		if AffirmativeAnswer(in) {
			t.Fatalf("expected %q to be negative", in)
		}
	}
}

package i18n

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		prefs []string
		want  Lang
	}{
		{nil, Mongolian},
		{[]string{"mn"}, Mongolian},
		{[]string{"en"}, English},
		{[]string{"en-US,en;q=0.9"}, English},
		{[]string{"mn-MN,en;q=0.5"}, Mongolian},
		{[]string{"fr"}, Mongolian},
	}
	for _, tt := range tests {
		if got := Match(tt.prefs...); got != tt.want {
			t.Errorf("Match(%v) = %v, want %v", tt.prefs, got, tt.want)
		}
	}
}

func TestT(t *testing.T) {
	if got := T(Mongolian, NewUnitLabel); got != "Шинэ нэгж" {
		t.Errorf("T(mn, NewUnitLabel) = %q", got)
	}
	if got := T(English, ConfirmDelete, "HR"); got != `Delete unit "HR"?` {
		t.Errorf("T(en, ConfirmDelete) = %q", got)
	}
	if got := T("de", Save); got != "Хадгалах" {
		t.Errorf("unknown language should fall back, got %q", got)
	}
	if got := T(English, Key("missing")); got != "missing" {
		t.Errorf("unknown key = %q, want the key", got)
	}
}

func TestCatalogsComplete(t *testing.T) {
	for key := range catalog[Default] {
		for lang, msgs := range catalog {
			if _, ok := msgs[key]; !ok {
				t.Errorf("%s missing key %s", lang, key)
			}
		}
	}
}

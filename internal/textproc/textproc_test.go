package textproc

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"accents removed", "François Asselineau", "francois asselineau"},
		{"spaces collapsed", " A String   with     lots of spaceeee      ", "a string with lots of spaceeee"},
		{"line breaks", "Line\nBreaks", "line breaks"},
		{"repeated line breaks", "Line\n\n\nBreaks", "line breaks"},
		{
			"punctuation deleted in place",
			"Agressif : « moi, monsieur, si j'avais un tel nez,\nIl faudrait sur le champ que je me l'amputasse ! »",
			"agressif moi monsieur si javais un tel nez il faudrait sur le champ que je me lamputasse",
		},
		{
			"punctuation groups collapse with spaces",
			"On pouvait dire... oh ! Dieu ! ... bien des choses en somme...",
			"on pouvait dire oh dieu bien des choses en somme",
		},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"François Asselineau",
		"Ah ! Non ! C'est un peu court, jeune homme !",
		"  plain   text  ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent on %q: %q != %q", in, twice, once)
		}
	}
}

func TestGentleDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"Ah ! Non ! C'est un peu court, jeune homme !", "Ah! Non! C'est un peu court, jeune homme", 0},
		{"Ah ! Non !", "Ah! Non!", 0},
		{"Que paternellement vous vous préoccupâtes", "Que paternellement vous vous préoccupate", 1},
		{"Paris", "paris", 0},
		{"Paris", "Pariis", 1},
		{"", "", 0},
	}

	for _, tc := range cases {
		if got := GentleDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("GentleDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestGentleDistanceSelfIsZero(t *testing.T) {
	for _, s := range []string{"a", "Grand cru classé", "  Côtes   du Rhône ! "} {
		if got := GentleDistance(s, s); got != 0 {
			t.Errorf("GentleDistance(%q, %q) = %d, want 0", s, s, got)
		}
	}
}

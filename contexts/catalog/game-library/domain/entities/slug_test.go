package entities

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Freeze Tag", "freeze-tag"},
		{"punctuation collapses", "Yes, And... Circle!", "yes-and-circle"},
		{"leading and trailing junk", "  --What Are You Doing?--  ", "what-are-you-doing"},
		{"digits survive", "185 (One Eighty Five)", "185-one-eighty-five"},
		{"unicode drops out", "Café Improv", "caf-improv"},
		{"empty", "   ", ""},
		{"only punctuation", "?!?", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Fatalf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

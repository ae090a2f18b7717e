package resolve

// diagnostic_test.go — Message formatting.

import "testing"

func TestListAsSentence(t *testing.T) {
	tests := []struct {
		items []string
		want  string
	}{
		{[]string{"a"}, "conflict: a"},
		{[]string{"a", "b"}, "conflict: a and b"},
		{[]string{"a", "b", "c"}, "conflict: a, b and c"},
	}
	for _, tc := range tests {
		if got := listAsSentence("conflict:", "", tc.items); got != tc.want {
			t.Errorf("listAsSentence(%v) = %q, want %q", tc.items, got, tc.want)
		}
	}
}

func TestListAsSentence_Suffix(t *testing.T) {
	got := listAsSentence("options", "are exclusive", []string{"x", "y"})
	if got != "options x and y are exclusive" {
		t.Errorf("got %q", got)
	}
}

func TestGroupConflict_Message(t *testing.T) {
	d := groupConflict("ble-lib", []string{"ble-bleps", "ble-trouble"})
	want := "the following options can not be enabled together: ble-bleps and ble-trouble"
	if d.Message != want {
		t.Errorf("Message = %q, want %q", d.Message, want)
	}
}

package scoring

import "testing"

func TestCountThemes(t *testing.T) {
	c := CountThemes("Personal finance: money, wealth and a murder mystery")
	if c[Finance] != 4 {
		t.Errorf("finance: expected 4 (finance, money, wealth, personal finance), got %d", c[Finance])
	}
	if c[Thriller] != 2 {
		t.Errorf("thriller: expected 2, got %d", c[Thriller])
	}
	if c[Romance] != 0 || c[Mythology] != 0 {
		t.Errorf("unexpected counts %v", c)
	}
	if !c.Heavy(Finance) || c.Heavy(Romance) {
		t.Error("unexpected heaviness")
	}
}

func TestDetectTopic(t *testing.T) {
	tests := []struct {
		text                        string
		finance, romance, mythology bool
	}{
		{"money and wealth", true, false, false},
		{"love and money", true, true, false},
		{"love, passion and money", false, true, false},
		{"the gods of the mahabharata", false, false, true},
		{"a thriller", false, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			topic := DetectTopic(CountThemes(tc.text))
			if topic.AsksFinance != tc.finance || topic.AsksRomance != tc.romance || topic.AsksMythology != tc.mythology {
				t.Errorf("got %+v", topic)
			}
		})
	}
}

package classifier

import "testing"

func TestIsOffTopicMatchesExcludedDomains(t *testing.T) {
	c := NewDefault()

	cases := []struct {
		message string
		want    bool
	}{
		{"What's the weather like today?", true},
		{"Who won the election?", true},
		{"Any good movie recommendations?", true},
		{"Who won the world cup?", true},
		{"I have a headache, what medicine should I take?", true},
		{"What's the price of Bitcoin?", false},
		{"Transfer 0.5 ETH to 0xAbc", false},
		{"Check my wallet balance", false},
		{"Deploy an ERC20 token named Gold", false},
	}
	for _, tc := range cases {
		if got := c.IsOffTopic(tc.message); got != tc.want {
			t.Errorf("IsOffTopic(%q) = %v, want %v", tc.message, got, tc.want)
		}
	}
}

func TestGuardedRuleYieldsToDomainTerms(t *testing.T) {
	c := NewDefault()

	if !c.IsOffTopic("who is the president of France") {
		t.Fatalf("generic who-is question should be off topic")
	}
	if c.IsOffTopic("who is the owner of this NFT contract") {
		t.Fatalf("who-is question with domain terms should stay on topic")
	}
}

func TestEmptyMessageIsNotOffTopic(t *testing.T) {
	c := NewDefault()
	if c.IsOffTopic("") {
		t.Fatalf("empty message must not be classified")
	}
}

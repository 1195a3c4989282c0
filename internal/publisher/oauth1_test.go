package publisher

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

// Reference request from the Twitter "creating a signature" documentation.
func TestOAuth1SignerReferenceVector(t *testing.T) {
	s := &OAuth1Signer{
		ConsumerKey:    "xvz1evFS4wEEPTGEFPHBog",
		ConsumerSecret: "kAcSOqF21Fu85e7zjz7ZN2U4ZRhfV3WpwPAoE3Z7kBw",
		Token:          "370773112-GmHxMAgYyLbNEtIKZeRNFsMKPR9EyMZeS9weJAEb",
		TokenSecret:    "LswwdoUaIvS8ltyTt5jkRh4J50vUPVVHtR2YPi5kE",
		Now:            func() time.Time { return time.Unix(1318622958, 0) },
		Nonce:          func() string { return "kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg" },
	}
	params := url.Values{}
	params.Set("status", "Hello Ladies + Gentlemen, a signed OAuth request!")

	header, err := s.Sign("POST", "https://api.twitter.com/1.1/statuses/update.json?include_entities=true", params)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(header, "OAuth ") {
		t.Fatalf("header must start with OAuth: %q", header)
	}
	if !strings.Contains(header, `oauth_signature="hCtSmYh%2BiHYCEqBWrE7C7hYmtUk%3D"`) {
		t.Errorf("unexpected signature in %q", header)
	}
	for _, want := range []string{
		`oauth_consumer_key="xvz1evFS4wEEPTGEFPHBog"`,
		`oauth_nonce="kYjzVBB8Y0ZFabxSWbWovY3uYSQ2pTgmZeNu2VS4cg"`,
		`oauth_signature_method="HMAC-SHA1"`,
		`oauth_timestamp="1318622958"`,
		`oauth_version="1.0"`,
	} {
		if !strings.Contains(header, want) {
			t.Errorf("header missing %s", want)
		}
	}
	if strings.Contains(header, "status=") || strings.Contains(header, "include_entities") {
		t.Errorf("request params must not be in the header: %q", header)
	}
}

func TestOAuth1SignerDefaultNonceVaries(t *testing.T) {
	s := &OAuth1Signer{ConsumerKey: "k", ConsumerSecret: "s", Token: "t", TokenSecret: "ts"}
	a, _ := s.Sign("POST", "https://api.twitter.com/2/tweets", nil)
	b, _ := s.Sign("POST", "https://api.twitter.com/2/tweets", nil)
	if a == b {
		t.Fatal("expected different nonces between calls")
	}
}

func TestPercentEncode(t *testing.T) {
	cases := map[string]string{
		"Ladies + Gentlemen": "Ladies%20%2B%20Gentlemen",
		"An encoded string!": "An%20encoded%20string%21",
		"Dogs, Cats & Mice":  "Dogs%2C%20Cats%20%26%20Mice",
		"☃":                  "%E2%98%83",
		"a-b.c_d~e":          "a-b.c_d~e",
	}
	for in, want := range cases {
		if got := percentEncode(in); got != want {
			t.Errorf("percentEncode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeParamsSortsByNameThenValue(t *testing.T) {
	params := url.Values{}
	params.Add("a-b", "1")
	params.Add("a", "2")
	params.Add("c", "z")
	params.Add("c", "y")

	want := "a=2&a-b=1&c=y&c=z"
	if got := normalizeParams(params); got != want {
		t.Errorf("normalizeParams = %q, want %q", got, want)
	}
}

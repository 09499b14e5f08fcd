package cleaner

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clearurls/pkg/rules"
)

func embedded(t *testing.T) *Cleaner {
	t.Helper()
	store, err := rules.LoadEmbedded()
	require.NoError(t, err)
	return New(store)
}

func single(t *testing.T, spec rules.Spec) *Cleaner {
	t.Helper()
	p, err := rules.NewProvider("test", spec)
	require.NoError(t, err)
	return New(rules.NewStore(p))
}

var embeddedCases = []struct {
	name string
	in   string
	want string
}{
	{"utm param", "https://deezer.com/track/891177062?utm_source=deezer", "https://deezer.com/track/891177062"},
	{"double encoded redirect", "https://www.google.com/url?q=https%253A%252F%252Fpypi.org%252Fproject%252FUnalix", "https://pypi.org/project/Unalix"},
	{"amp redirect without scheme",
		"https://www.google.com/amp/s/de.statista.com/infografik/amp/22496/anzahl-der-gesamten-positiven-corona-tests-und-positivenrate/",
		"http://de.statista.com/infografik/amp/22496/anzahl-der-gesamten-positiven-corona-tests-und-positivenrate/"},
	{"raw rule", "https://www.amazon.com/gp/B08CH7RHDP/ref=as_li_ss_tl", "https://www.amazon.com/gp/B08CH7RHDP"},
	{"exception", "https://myaccount.google.com/?utm_source=google", "https://myaccount.google.com/?utm_source=google"},
	{"empty values kept", "http://example.com/?p1=&p2=", "http://example.com/?p1=&p2="},
	{"duplicate keys kept", "http://example.com/?p1=value&p1=othervalue", "http://example.com/?p1=value&p1=othervalue"},
	{"empty query collapses", "http://example.com/?&&&&", "http://example.com/"},
	{"anchor fragment", "https://docs.julialang.org/en/v1/stdlib/REPL/#Key-bindings", "https://docs.julialang.org/en/v1/stdlib/REPL/#Key-bindings"},
	{"raw rule and params",
		"https://www.amazon.com/Kobo-Glare-Free-Touchscreen-ComfortLight-Adjustable/dp/B0BCXLQNCC/ref=pd_ci_mcx_mh_mcx_views_0?pd_rd_w=Dx5dF&content-id=amzn1.sym.225b4624-972d-4629-9040-f1bf9923dd95%3Aamzn1.symc.40e6a10e-cbc4-4fa5-81e3-4435ff64d03b&pf_rd_p=225b4624-972d-4629-9040-f1bf9923dd95&pf_rd_r=A7JSDJGYR33BN5GRCV7V&pd_rd_wg=xW6Yf&pd_rd_r=4b8a3532-9e28-4857-a929-5e572d2c765f&pd_rd_i=B0BCXLQNCC",
		"https://www.amazon.com/Kobo-Glare-Free-Touchscreen-ComfortLight-Adjustable/dp/B0BCXLQNCC"},
	{"untouched", "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=1144182", "https://papers.ssrn.com/sol3/papers.cfm?abstract_id=1144182"},
	{"javascript void", "javascript:void(0)", "javascript:void(0)"},
	{"data url", "data:,Hello%2C%20World%21", "data:,Hello%2C%20World%21"},
	{"data url base64", "data:text/plain;base64,SGVsbG8sIFdvcmxkIQ==", "data:text/plain;base64,SGVsbG8sIFdvcmxkIQ=="},
	{"empty path gets slash", "https://goodreads.com?qid=1", "https://goodreads.com/"},
	{"redirect in query", "https://duckduckgo.com/l/abc?uddg=http%3A%2F%2Fexample.com%2Fimage.png", "http://example.com/image.png"},
	{"non-http scheme", "ftp://example.com/test/?utm_source=abc", "ftp://example.com/test/"},
	{"host lowercased", "https://Example.COM/a?utm_medium=x", "https://example.com/a"},
}

func TestClean_EmbeddedRules(t *testing.T) {
	c := embedded(t)
	for _, tc := range embeddedCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.Clean(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	c := embedded(t)
	for _, tc := range embeddedCases {
		once, err := c.Clean(tc.in)
		require.NoError(t, err, tc.in)
		res, err := c.CleanURL(once)
		require.NoError(t, err, once)
		assert.Equal(t, once, res.URL)
		assert.False(t, res.Changed, "cleaning %q again changed it", once)
	}
}

func TestClean_DataURLsNeverParsed(t *testing.T) {
	// a provider that would fail on anything it touches
	c := single(t, rules.Spec{URLPattern: ".*", RawRules: []string{"^.*$"}})
	for _, in := range []string{"data:", "data:,x", "data:text/html,<a href=\"?utm_source=1\">", "data:%%%"} {
		res, err := c.CleanURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, in, res.URL)
		assert.False(t, res.Changed)
	}
}

func TestClean_PartialKeyMatchKeepsParam(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*", Rules: []string{"utm"}})
	got, err := c.Clean("https://ex.test/?utm_source=1&xutm=2&utm=3&UTM=4")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.test/?utm_source=1&xutm=2", got)
}

func TestClean_FragmentParamsFiltered(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*", Rules: []string{"utm_[a-z]+"}})
	got, err := c.Clean("https://ex.test/p?a=1#utm_source=x&section=2")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.test/p?a=1#section=2", got)

	got, err = c.Clean("https://ex.test/p#utm_source=x")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.test/p", got)
}

func TestClean_BareKeySerialization(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*", Rules: []string{"drop"}})
	cases := map[string]string{
		"https://ex.test/#anchor":             "https://ex.test/#anchor",
		"https://ex.test/?only":               "https://ex.test/?only",
		"https://ex.test/?only=":              "https://ex.test/?only",
		"https://ex.test/?drop=1&keep":        "https://ex.test/?keep",
		"https://ex.test/?a&b":                "https://ex.test/?a=&b=",
		"https://ex.test/?a=1&b":              "https://ex.test/?a=1&b=",
		"https://ex.test/#x&y":                "https://ex.test/#x=&y=",
		"https://ex.test/?k=v":                "https://ex.test/?k=v",
		"https://ex.test/?a+b=c%20d":          "https://ex.test/?a+b=c+d",
		"https://ex.test/#two%20words":        "https://ex.test/#two%20words",
		"https://ex.test/?q=%C3%A9&drop=x":    "https://ex.test/?q=%C3%A9",
		"https://ex.test/?tilde=~&star=*&x=1": "https://ex.test/?tilde=%7E&star=*&x=1",
	}
	for in, want := range cases {
		got, err := c.Clean(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestClean_DecodeLoop(t *testing.T) {
	c := single(t, rules.Spec{
		URLPattern:   `^https://redir\.test/`,
		Redirections: []string{`^https://redir\.test/\?to=([^&]+)`},
	})
	targets := map[string]string{
		"https://example.com/a?b=c&d=e": "https://example.com/a?b=c&d=e",
		"http://example.com/":           "http://example.com/",
		"example.com/path":              "http://example.com/path",
		"www.example.org/x?y=1":         "http://www.example.org/x?y=1",
	}
	for target, want := range targets {
		enc := target
		for n := 1; n <= 4; n++ {
			enc = url.QueryEscape(enc)
			got, err := c.Clean("https://redir.test/?to=" + enc + "&other=1")
			require.NoError(t, err)
			assert.Equal(t, want, got, "%q encoded %d times", target, n)
		}
	}
}

func TestClean_RedirectionWithoutCapture(t *testing.T) {
	c := single(t, rules.Spec{
		URLPattern: `^https?://(?:[a-z0-9-]+\.)*?google(?:\.[a-z]{2,}){1,}`,
		// missing the capturing group around the target
		Redirections: []string{`^https?://(?:[a-z0-9-]+\.)*?google(?:\.[a-z]{2,}){1,}/url\?.*?(?:url|q)=https?[^&]+`},
	})
	got, err := c.Clean("https://google.co.uk/url?foo=bar&q=http%3A%2F%2Fexample.com%2Fimage.png&bar=foo")
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, ErrRedirectionMissingCapture))
	var rerr *RedirectionMissingCaptureError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t,
		`redirection regex ^https?://(?:[a-z0-9-]+\.)*?google(?:\.[a-z]{2,}){1,}/url\?.*?(?:url|q)=https?[^&]+ has no capture group`,
		err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestClean_RedirectionEmptyOrAbsentGroup(t *testing.T) {
	c := single(t, rules.Spec{
		URLPattern: `^https://x\.test/`,
		Redirections: []string{
			`^https://x\.test/\?u=([^&]*)`,
		},
	})
	_, err := c.Clean("https://x.test/?u=&y=1")
	assert.True(t, errors.Is(err, ErrRedirectionMissingCapture), "empty capture: %v", err)

	c = single(t, rules.Spec{
		URLPattern:   `^https://x\.test/`,
		Redirections: []string{`^https://x\.test/(?:a|(b))`},
	})
	_, err = c.Clean("https://x.test/a")
	assert.True(t, errors.Is(err, ErrRedirectionMissingCapture), "non-participating group: %v", err)
	got, err := c.Clean("https://x.test/b")
	require.NoError(t, err)
	assert.Equal(t, "http://b", got)
}

func TestClean_FirstMatchingRedirectionWins(t *testing.T) {
	c := single(t, rules.Spec{
		URLPattern: `^https://x\.test/`,
		Redirections: []string{
			`^https://x\.test/none\?u=(.+)`,
			`^https://x\.test/out\?a=([^&]+)`,
			`^https://x\.test/out\?.*?b=([^&]+)`,
		},
		Rules: []string{"a", "b"},
	})
	got, err := c.Clean("https://x.test/out?a=https%3A%2F%2Ffirst.test%2F&b=https%3A%2F%2Fsecond.test%2F")
	require.NoError(t, err)
	assert.Equal(t, "https://first.test/", got)
}

func TestClean_InvalidPercentEncoding(t *testing.T) {
	c := embedded(t)
	_, err := c.Clean("https://google.co.uk/url?foo=bar&q=http%F0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPercentEncoding))
	var perr *InvalidPercentEncodingError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 4, perr.Index)
	assert.Equal(t, "percent decoding resulted in non-UTF-8 bytes: incomplete utf-8 byte sequence from index 4", err.Error())

	_, err = c.Clean("https://google.co.uk/url?q=http%FFabc")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 4, perr.Index)
	assert.False(t, perr.Incomplete)
}

func TestClean_RawRuleBreaksURL(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: `https://example\.com`, RawRules: []string{"://"}})
	got, err := c.Clean("https://example.com/path?x=1")
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, ErrURLSyntax))

	c = single(t, rules.Spec{URLPattern: `https://example\.com`, RawRules: []string{"https://"}})
	_, err = c.Clean("https://example.com")
	assert.True(t, errors.Is(err, ErrURLSyntax))
	assert.Equal(t, "error parsing url: relative URL without a base", err.Error())
}

func TestClean_LenientInput(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*", Rules: []string{"utm_source"}})
	cases := map[string]string{
		"https://ex.test/100%off?utm_source=x":           "https://ex.test/100%off",
		"https://ex.test/sale-50%-off?utm_source=x&id=2": "https://ex.test/sale-50%-off?id=2",
		"https://ex.test/p#100%":                         "https://ex.test/p#100%",
		" https://ex.test/?utm_source=1":                 "https://ex.test/",
		"https://ex.test/?utm_source=1 \n":               "https://ex.test/",
		"https://ex.\ttest/a\nb?utm_source=1":            "https://ex.test/ab",
	}
	for in, want := range cases {
		got, err := c.Clean(in)
		require.NoError(t, err, "%q", in)
		assert.Equal(t, want, got, "%q", in)
	}
}

func TestClean_DotSegmentsRemoved(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*", Rules: []string{"utm_source"}})
	cases := map[string]string{
		"https://ex.test/a/../b?utm_source=x": "https://ex.test/b",
		"https://ex.test/a/./b/.":             "https://ex.test/a/b/",
		"https://ex.test/a/b/..":              "https://ex.test/a/",
		"https://ex.test/../x":                "https://ex.test/x",
		"https://ex.test/v1.2/file.tar.gz":    "https://ex.test/v1.2/file.tar.gz",
	}
	for in, want := range cases {
		got, err := c.Clean(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestClean_QuoteEscapedOnlyForSpecialSchemes(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*", Rules: []string{"drop"}})
	got, err := c.Clean("https://ex.test/?drop=1&it's")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.test/?it%27s", got)

	got, err = c.Clean("mailto:someone@ex.test?drop=1&it's")
	require.NoError(t, err)
	assert.Equal(t, "mailto:someone@ex.test?it's", got)
}

func TestClean_RawRulesAppliedInOrder(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*", RawRules: []string{"ab", "c"}})
	// matches are not rescanned, so the "ab" left behind by the first deletion stays
	got, err := c.Clean("https://ex.test/aabbcc")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.test/ab", got)
}

func TestClean_RawRulesUnchanged(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: "^https?://pantip.com", RawRules: []string{"#lead.*"}})
	in := "https://pantip.com/"
	res, err := c.CleanURL(in)
	require.NoError(t, err)
	assert.Equal(t, in, res.URL)
	assert.False(t, res.Changed)
}

func TestClean_RelativeInput(t *testing.T) {
	c := single(t, rules.Spec{URLPattern: ".*"})
	_, err := c.Clean("//example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrURLSyntax))
	assert.Equal(t, "error parsing url: relative URL without a base", err.Error())

	_, err = c.Clean("ftp://example.%com")
	assert.True(t, errors.Is(err, ErrURLSyntax), "%v", err)
}

func TestClean_ReferralMarketing(t *testing.T) {
	p := rules.MustProvider("ex", rules.Spec{URLPattern: `https://example\.com`, ReferralMarketing: []string{"ref"}})
	c := New(rules.NewStore(p))
	got, err := c.Clean("https://example.com?ref=1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/?ref=1", got)

	stripping := c.StripReferralMarketing(true)
	assert.False(t, c.StripsReferralMarketing(), "setter must not modify the receiver")
	assert.True(t, stripping.StripsReferralMarketing())
	got, err = stripping.Clean("https://example.com?ref=1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", got)

	got, err = New(rules.NewStore(p), WithStripReferralMarketing(true)).Clean("https://example.com?ref=1&a=b")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/?a=b", got)
}

func TestClean_SinglePassOnly(t *testing.T) {
	// b.test cleaning comes first, so the x parameter that the later
	// redirect uncovers is kept.
	store := rules.NewStore(
		rules.MustProvider("b", rules.Spec{URLPattern: `^https://b\.test`, Rules: []string{"x"}}),
		rules.MustProvider("a", rules.Spec{
			URLPattern:   `^https://a\.test`,
			Redirections: []string{`^https://a\.test/\?to=([^&]+)`},
		}),
	)
	got, err := New(store).Clean("https://a.test/?to=https%3A%2F%2Fb.test%2F%3Fx%3D1")
	require.NoError(t, err)
	assert.Equal(t, "https://b.test/?x=1", got)

	// in the other order the redirect result is seen by the b.test provider
	store = rules.NewStore(store.Providers()[1], store.Providers()[0])
	got, err = New(store).Clean("https://a.test/?to=https%3A%2F%2Fb.test%2F%3Fx%3D1")
	require.NoError(t, err)
	assert.Equal(t, "https://b.test/", got)
}

func TestClean_ErrorAbortsPass(t *testing.T) {
	store := rules.NewStore(
		rules.MustProvider("broken", rules.Spec{URLPattern: ".*", Redirections: []string{"^https"}}),
		rules.MustProvider("after", rules.Spec{URLPattern: ".*", Rules: []string{"utm_source"}}),
	)
	got, err := New(store).Clean("https://ex.test/?utm_source=1")
	require.Error(t, err)
	assert.Empty(t, got)
}

func TestClean_UnchangedReturnsInput(t *testing.T) {
	c := embedded(t)
	in := strings.Clone("https://example.org/path?keep=1")
	res, err := c.CleanURL(in)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, in, res.URL)

	res, err = c.CleanURL("https://example.org/path?keep=1&utm_campaign=x")
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "https://example.org/path?keep=1", res.URL)
}

func TestNew_NilStore(t *testing.T) {
	got, err := New(nil).Clean("https://ex.test/?utm_source=1")
	require.NoError(t, err)
	assert.Equal(t, "https://ex.test/?utm_source=1", got)
}

func TestMatches(t *testing.T) {
	p := rules.MustProvider("p", rules.Spec{
		URLPattern: ".*",
		Exceptions: []string{`^https://ex\.test/login`, `^https://admin\.`},
	})
	assert.True(t, Matches(p, "https://ex.test/"))
	assert.False(t, Matches(p, "javascript:void(0)"))
	assert.True(t, Matches(p, "javascript:void(1)"))
	assert.False(t, Matches(p, "https://ex.test/login?next=/"))
	assert.False(t, Matches(p, "HTTPS://ADMIN.ex.test/"))

	q := rules.MustProvider("q", rules.Spec{URLPattern: `^https://only\.test`})
	assert.False(t, Matches(q, "https://other.test/"))
	assert.True(t, Matches(q, "https://ONLY.test/"))
}

func TestClean_ConcurrentUse(t *testing.T) {
	c := embedded(t)
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tc := embeddedCases[i%len(embeddedCases)]
			got, err := c.Clean(tc.in)
			if err != nil {
				errs <- err
				return
			}
			if got != tc.want {
				errs <- errors.New(tc.name + ": got " + got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

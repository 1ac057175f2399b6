package secretsource

import "testing"

type fake map[string]string

func (f fake) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

func TestChainFallsThroughToLaterSources(t *testing.T) {
	c := Chain{fake{}, fake{"CLOUDFLARE_API_TOKEN": "from-second"}}
	v, ok := c.Get("CLOUDFLARE_API_TOKEN")
	if !ok || v != "from-second" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

func TestChainPrefersEarlierSources(t *testing.T) {
	c := Chain{fake{"CLOUDFLARE_API_TOKEN": "from-first"}, fake{"CLOUDFLARE_API_TOKEN": "from-second"}}
	v, _ := c.Get("CLOUDFLARE_API_TOKEN")
	if v != "from-first" {
		t.Fatalf("got %q", v)
	}
}

func TestChainMissReturnsFalse(t *testing.T) {
	c := Chain{fake{}}
	if _, ok := c.Get("MISSING"); ok {
		t.Fatal("expected miss")
	}
}

func TestEnvReadsProcessEnvironment(t *testing.T) {
	t.Setenv("SECRETSOURCE_TEST_KEY", "hello")
	v, ok := Env{}.Get("SECRETSOURCE_TEST_KEY")
	if !ok || v != "hello" {
		t.Fatalf("got %q, %v", v, ok)
	}
}

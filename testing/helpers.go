// Package testing provides fixtures and helpers for testing tome codecs.
package testing

import (
	"testing"

	"github.com/zoobzio/tome"
)

// Sample returns a document every built-in codec can round trip: no nil
// entries, no empty collections and keys that are valid element names.
func Sample() *tome.Map {
	server := tome.NewMap().
		Set("host", tome.String("localhost")).
		Set("port", tome.NewScalar(8080)).
		Set("tls", tome.NewScalar(true))

	replicas := tome.List{
		tome.NewMap().Set("name", tome.String("east")).Set("weight", tome.NewScalar(0.5)),
		tome.NewMap().Set("name", tome.String("west")).Set("weight", tome.NewScalar(1.5)),
	}

	return tome.NewMap().
		Set("name", tome.String("orders")).
		Set("server", server).
		Set("tags", tome.List{tome.String("alpha"), tome.String("beta")}).
		Set("replicas", replicas)
}

// Settings is a typed configuration flattened with tome struct tags.
type Settings struct {
	Name    string   `tome:"name"`
	Port    int      `tome:"port"`
	Debug   bool     `tome:"debug"`
	Tags    []string `tome:"tags"`
	Limits  Limits   `tome:"limits"`
	Token   string   `tome:"-"`
	Comment string   `tome:"comment,omitempty"`
}

// Limits is a nested section of Settings.
type Limits struct {
	Rate  float64 `tome:"rate"`
	Burst int     `tome:"burst"`
}

// SampleSettings returns a populated Settings.
func SampleSettings() Settings {
	return Settings{
		Name:   "orders",
		Port:   8080,
		Debug:  true,
		Tags:   []string{"alpha", "beta"},
		Limits: Limits{Rate: 2.5, Burst: 10},
		Token:  "hidden",
	}
}

// RoundTrip dumps data with c and loads the result back.
func RoundTrip(tb testing.TB, c tome.Codec, data *tome.Map) (*tome.Map, []byte) {
	tb.Helper()

	out, err := tome.Marshal(c, data)
	if err != nil {
		tb.Fatalf("%s Dump() error: %v", c.Format(), err)
	}
	got, err := tome.Unmarshal(c, out)
	if err != nil {
		tb.Fatalf("%s Load() error: %v\n%s", c.Format(), err, out)
	}
	return got, out
}

// AssertEqual fails tb when got and want differ structurally.
func AssertEqual(tb testing.TB, got, want tome.Value) {
	tb.Helper()
	if !tome.Equal(got, want) {
		tb.Errorf("value mismatch\ngot:  %s\nwant: %s", describe(got), describe(want))
	}
}

// describe renders a value compactly for failure messages.
func describe(v tome.Value) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case tome.Scalar:
		return t.Text()
	case tome.List:
		s := "["
		for i, e := range t {
			if i > 0 {
				s += " "
			}
			s += describe(e)
		}
		return s + "]"
	case *tome.Map:
		if t == nil {
			return "<nil>"
		}
		s := "{"
		first := true
		t.Range(func(k string, e tome.Value) bool {
			if !first {
				s += " "
			}
			first = false
			s += k + ":" + describe(e)
			return true
		})
		return s + "}"
	default:
		return "?"
	}
}

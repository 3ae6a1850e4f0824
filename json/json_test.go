package json

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/tome"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Fatal("New() should return non-nil codec")
	}
	if c.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/json")
	}
	if c.Format() != tome.FormatJSON {
		t.Errorf("Format() = %q, want %q", c.Format(), tome.FormatJSON)
	}
}

func TestLoad(t *testing.T) {
	input := `{
  // service settings
  "name": "tome",
  "port": 8080,
  "ratio": 0.5,
  "debug": false,
  "missing": null,
  "tags": ["a", "b",],
  "db": {"host": "localhost", "opts": {}},
  /* trailing comma tolerated */
}`
	got, err := tome.Unmarshal(New(), []byte(input))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if keys := strings.Join(got.Keys(), ","); keys != "name,port,ratio,debug,missing,tags,db" {
		t.Errorf("keys = %s, want document order", keys)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"name", "tome"},
		{"port", int64(8080)},
		{"ratio", 0.5},
		{"debug", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v, _ := got.Get(tt.key)
			s, ok := v.(tome.Scalar)
			if !ok {
				t.Fatalf("%s = %#v, want scalar", tt.key, v)
			}
			if s.Raw() != tt.want {
				t.Errorf("%s = %#v (%T), want %#v (%T)", tt.key, s.Raw(), s.Raw(), tt.want, tt.want)
			}
		})
	}

	if v, ok := got.Get("missing"); !ok || v != nil {
		t.Errorf("missing = %#v, want present nil", v)
	}
	if v, _ := got.Get("tags"); !tome.Equal(v, tome.List{tome.String("a"), tome.String("b")}) {
		t.Errorf("tags = %#v", v)
	}
	db, _ := got.Get("db")
	opts, _ := db.(*tome.Map).Get("opts")
	if m, ok := opts.(*tome.Map); !ok || m.Len() != 0 {
		t.Errorf("db.opts = %#v, want empty map", opts)
	}
}

func TestLoad_Empty(t *testing.T) {
	for _, input := range []string{"", "  \n", "{}"} {
		got, err := tome.Unmarshal(New(), []byte(input))
		if err != nil {
			t.Fatalf("Unmarshal(%q) error: %v", input, err)
		}
		if got.Len() != 0 {
			t.Errorf("Unmarshal(%q) = %v, want empty", input, got.Keys())
		}
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid", "invalid json"},
		{"array", `[1, 2]`},
		{"string", `"text"`},
		{"unclosed", `{"a": 1`},
		{"trailing", `{"a": 1} {"b": 2}`},
		{"xml", "<root><a>1</a></root>"},
		{"toml", "a = 1"},
		{"yaml", "a: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tome.Unmarshal(New(), []byte(tt.input))
			if !errors.Is(err, tome.ErrFormat) {
				t.Errorf("Unmarshal(%q) error = %v, want ErrFormat", tt.input, err)
			}
		})
	}
}

func TestDump(t *testing.T) {
	data := tome.NewMap().
		Set("name", tome.String("a<b")).
		Set("port", tome.NewScalar(8080)).
		Set("none", nil).
		Set("items", tome.List{tome.NewScalar(1), nil, tome.NewScalar(true)}).
		Set("empty", tome.NewMap())

	got, err := tome.Marshal(New(), data)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{
  "name": "a<b",
  "port": 8080,
  "none": null,
  "items": [
    1,
    null,
    true
  ],
  "empty": {}
}
`
	if string(got) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, want)
	}

	compact, err := tome.Marshal(New(WithIndent("")), data)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(compact) != `{"name":"a<b","port":8080,"none":null,"items":[1,null,true],"empty":{}}`+"\n" {
		t.Errorf("Marshal(compact) = %s", compact)
	}
}

func TestDump_Scalars(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	data := tome.NewMap().
		Set("when", tome.NewScalar(when)).
		Set("weights", tome.NewScalar(map[string]int{"b": 2, "a": 1}))

	got, err := tome.Marshal(New(WithIndent("")), data)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"when":"2024-05-06T07:08:09Z","weights":{"a":1,"b":2}}` + "\n"
	if string(got) != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestDump_Unsupported(t *testing.T) {
	_, err := tome.Marshal(New(), tome.NewMap().Set("ch", tome.NewScalar(make(chan int))))
	if !errors.Is(err, tome.ErrFormat) {
		t.Errorf("Marshal(chan) error = %v, want ErrFormat", err)
	}
}

func TestRoundTrip(t *testing.T) {
	data := tome.NewMap().
		Set("z", tome.String("last first")).
		Set("a", tome.NewMap().Set("list", tome.List{tome.NewScalar(int64(1)), tome.NewScalar(2.5)})).
		Set("7", tome.String("numeric key"))

	out, err := tome.Marshal(New(), data)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got, err := tome.Unmarshal(New(), out)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !tome.Equal(got, data) {
		t.Errorf("round trip mismatch:\n%s", out)
	}
	if keys := strings.Join(got.Keys(), ","); keys != "z,a,7" {
		t.Errorf("keys = %s, want z,a,7", keys)
	}
}

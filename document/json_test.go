package document

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestMarshal(t *testing.T) {
	t.Run("should keep field order and tag dates", func(t *testing.T) {
		doc := NewMap().
			Set("timeStamp", DateMillis(1700000000123)).
			Set("level", String("INFO")).
			Set("count", Int(42)).
			Set("ratio", Double(2)).
			Set("ok", Bool(true)).
			Set("missing", Null())

		want := `{"timeStamp":{"$date":1700000000123},"level":"INFO","count":42,"ratio":2.0,"ok":true,"missing":null}`
		got := string(Marshal(doc))
		if got != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
		}
	})

	t.Run("should write non-finite doubles as tagged strings", func(t *testing.T) {
		doc := NewMap().Set("nan", Double(math.NaN())).Set("inf", Double(math.Inf(-1)))

		want := `{"nan":{"$numberDouble":"NaN"},"inf":{"$numberDouble":"-Infinity"}}`
		got := string(Marshal(doc))
		if got != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
		}
	})
}

func TestUnmarshal(t *testing.T) {
	t.Run("should round trip every kind", func(t *testing.T) {
		frame := NewMap().Set("class", String("main")).Set("lineNumber", Int(-1))
		doc := NewMap().
			Set("date", Date(time.Date(2025, 10, 20, 12, 0, 0, 5_000_000, time.UTC))).
			Set("int", Int(-7)).
			Set("double", Double(0.25)).
			Set("whole", Double(3)).
			Set("string", String("quote \" and é")).
			Set("list", ListOf(Int(1), String("two"), Null())).
			Set("map", MapOf(frame)).
			Set("nan", Double(math.NaN()))

		got, err := Unmarshal(Marshal(doc))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !got.Equal(doc) {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", Marshal(doc), Marshal(got))
		}
		if !reflect.DeepEqual(got.Keys(), doc.Keys()) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", doc.Keys(), got.Keys())
		}

		whole, _ := got.Get("whole")
		if whole.Kind() != KindDouble {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", KindDouble, whole.Kind())
		}
	})

	t.Run("should keep plain objects with a $date sibling as maps", func(t *testing.T) {
		got, err := Unmarshal([]byte(`{"v":{"$date":1,"other":2}}`))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		v, _ := got.Get("v")
		if v.Kind() != KindMap {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", KindMap, v.Kind())
		}
	})

	t.Run("should round trip control characters and invalid utf-8", func(t *testing.T) {
		for _, s := range []string{
			"bell\a",
			"vtab\v",
			"nul\x00",
			"\x1b[31mred\x1b[0m",
			"tab\tline\nreturn\r",
			"back\\slash \"quoted\"",
			"bad \xff\xfe bytes",
			"unit \x1f and del \x7f",
		} {
			doc := NewMap().Set("message", String(s)).Set(s, Int(1))
			got, err := Unmarshal(Marshal(doc))
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if !got.Equal(doc) {
				t.Fatalf("\nwanted:\n%q\ngot:\n%q", Marshal(doc), Marshal(got))
			}
		}
	})

	t.Run("should escape control characters as json", func(t *testing.T) {
		want := `{"message":"\u001b[1m\u0000\u0007\n"}`
		if got := string(Marshal(NewMap().Set("message", String("\x1b[1m\x00\a\n")))); got != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, got)
		}
	})

	t.Run("should keep user maps with reserved keys apart from tagged values", func(t *testing.T) {
		user := NewMap().Set("$date", Int(5))
		doc := NewMap().
			Set("arg", MapOf(user)).
			Set("double", MapOf(NewMap().Set("$numberDouble", String("NaN")))).
			Set("$$already", Bool(true))

		data := Marshal(doc)
		want := `{"arg":{"$$date":5},"double":{"$$numberDouble":"NaN"},"$$$already":true}`
		if string(data) != want {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, data)
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !got.Equal(doc) {
			t.Fatalf("\nwanted:\n%s\ngot:\n%s", data, Marshal(got))
		}
	})

	t.Run("should reject non object documents", func(t *testing.T) {
		_, err := Unmarshal([]byte(`[1,2]`))
		if !errors.Is(err, ErrNotDocument) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrNotDocument, err)
		}
	})

	t.Run("should reject invalid json", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"a":`))
		if err == nil {
			t.Fatalf("\nwanted:\nnon-nil\ngot:\n%v", err)
		}
	})
}

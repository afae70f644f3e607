package table

import (
	"math"
	"testing"
	"time"
)

func TestValueFloatCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  float64
		ok    bool
	}{
		{name: "number", value: Number(13), want: 13, ok: true},
		{name: "decimal text", value: Text("13.5"), want: 13.5, ok: true},
		{name: "padded text", value: Text(" 8 "), want: 8, ok: true},
		{name: "empty text", value: Text(""), ok: false},
		{name: "word", value: Text("abc"), ok: false},
		{name: "bad decimal", value: Text("13.2.5"), ok: false},
		{name: "null", value: Null(), ok: false},
		{name: "time", value: Time(time.Now()), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Float()
			if ok != tt.ok || got != tt.want {
				t.Fatalf("Float() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNumberRejectsNonFinite(t *testing.T) {
	if !Number(math.NaN()).IsNull() || !Number(math.Inf(1)).IsNull() {
		t.Fatal("expected non-finite numbers to be stored as null")
	}
}

func TestCompareOrdersNullLast(t *testing.T) {
	if Compare(Null(), Number(1)) <= 0 {
		t.Fatal("expected null after number")
	}
	if Compare(Text("a"), Null()) >= 0 {
		t.Fatal("expected text before null")
	}
	if Compare(Number(2), Number(10)) >= 0 {
		t.Fatal("expected numeric ordering")
	}
	if Compare(Text("10"), Text("2")) >= 0 {
		t.Fatal("expected lexical ordering for text")
	}
	early := Time(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	late := Time(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if Compare(early, late) >= 0 {
		t.Fatal("expected chronological ordering")
	}
}

func TestClassifyColumn(t *testing.T) {
	tests := map[string]SemanticKind{
		"Created":        SemanticDate,
		"Due date":       SemanticDate,
		"Story Points":   SemanticNumber,
		"BusinessPoints": SemanticNumber,
		"T-Size":         SemanticNumber,
		"Confidence":     SemanticNumber,
		"Status":         SemanticString,
		"Whatever":       SemanticString,
	}
	for name, want := range tests {
		if got := ClassifyColumn(name); got != want {
			t.Fatalf("ClassifyColumn(%q) = %q, want %q", name, got, want)
		}
	}
}

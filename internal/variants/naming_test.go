package variants

import (
	"math"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/google/uuid"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Size":            "size",
		"Shirt Color":     "shirt-color",
		"  Fit / Cut!! ":  "fit-cut",
		"Material--Blend": "material-blend",
		"Größe":           "gr-e",
		"":                "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCombinationName(t *testing.T) {
	if got := CombinationName([]string{"M", "Blue"}); got != "M - Blue" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := CombinationName([]string{"Red"}); got != "Red" {
		t.Fatalf("unexpected single-value name %q", got)
	}
}

func TestSynthesizeSKU(t *testing.T) {
	if got := SynthesizeSKU("TSHIRT", []string{"M", "Blue"}, 6); got != "TSHIRT-207281" {
		t.Fatalf("unexpected sku %q", got)
	}
	if got := SynthesizeSKU("TSHIRT", []string{"M", "Blue"}, 8); got != "TSHIRT-20728142" {
		t.Fatalf("unexpected extended sku %q", got)
	}
	if got := SKUSuffix([]string{"Red"}, 64); got != "ee38e4d5dd68c4e440825018d549cb47" {
		t.Fatalf("expected full digest when length exceeds it, got %q", got)
	}
}

func TestGenerateVariantNameSkipsUnknownTypes(t *testing.T) {
	size := models.VariantType{ID: uuid.New(), Name: "Size"}
	color := models.VariantType{ID: uuid.New(), Name: "Color"}
	selections := []models.VariantSelection{
		{VariantTypeID: color.ID, Value: "Blue"},
		{VariantTypeID: uuid.New(), Value: "Ghost"},
		{VariantTypeID: size.ID, Value: "M"},
	}
	got := GenerateVariantName([]models.VariantType{size, color}, selections)
	if got != "Color: Blue, Size: M" {
		t.Fatalf("unexpected name %q", got)
	}
	if GenerateVariantName(nil, selections) != "" {
		t.Fatal("expected empty name when no type resolves")
	}
}

func TestCountCombinations(t *testing.T) {
	if got := CountCombinations([]int{2, 3}); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if got := CountCombinations([]int{6, 6, 6, 6, 6}); got != 7776 {
		t.Fatalf("expected 7776, got %d", got)
	}
	if got := CountCombinations(nil); got != 0 {
		t.Fatalf("expected 0 for no types, got %d", got)
	}
	if got := CountCombinations([]int{3, 0}); got != 0 {
		t.Fatalf("expected 0 with an empty type, got %d", got)
	}
	if got := CountCombinations([]int{math.MaxInt / 2, 3}); got != math.MaxInt {
		t.Fatalf("expected saturation, got %d", got)
	}
}

func TestCartesianKeepsTypeAndValueOrder(t *testing.T) {
	size := models.VariantType{ID: uuid.New(), Name: "Size"}
	color := models.VariantType{ID: uuid.New(), Name: "Color"}
	tuples := cartesian([]axis{
		{variantType: size, values: []string{"S", "M", "L"}},
		{variantType: color, values: []string{"Red", "Blue"}},
	})
	if len(tuples) != 6 {
		t.Fatalf("expected 6 tuples, got %d", len(tuples))
	}
	want := []string{"S - Red", "S - Blue", "M - Red", "M - Blue", "L - Red", "L - Blue"}
	for i, tuple := range tuples {
		if tuple[0].VariantTypeID != size.ID || tuple[1].VariantTypeID != color.ID {
			t.Fatalf("tuple %d lost type order", i)
		}
		if got := CombinationName(selectionValues(tuple)); got != want[i] {
			t.Fatalf("tuple %d: got %q want %q", i, got, want[i])
		}
	}
	if cartesian(nil) != nil {
		t.Fatal("expected no tuples without axes")
	}
}

func TestSuffixLengths(t *testing.T) {
	got := suffixLengths(6, 11)
	want := []int{6, 8, 10, 11}
	if len(got) != len(want) {
		t.Fatalf("unexpected lengths %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected lengths %v", got)
		}
	}
	if got := suffixLengths(6, 6); len(got) != 1 || got[0] != 6 {
		t.Fatalf("unexpected lengths %v", got)
	}
}

func TestVariantDataMarshalKeepsOrder(t *testing.T) {
	first := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	second := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	data := VariantData{{VariantTypeID: first, Value: "M"}, {VariantTypeID: second, Value: "Blue"}}
	raw, err := data.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"` + first.String() + `":"M","` + second.String() + `":"Blue"}`
	if string(raw) != want {
		t.Fatalf("got %s want %s", raw, want)
	}
}

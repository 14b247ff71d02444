package locator

import (
	"testing"

	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
)

func TestParseEngineVersionWithReleaseSuffix(t *testing.T) {
	v, ok := ParseEngineVersion("2021.3.14f1")
	if !ok {
		t.Fatal("ParseEngineVersion(2021.3.14f1) = false, want true")
	}
	if v.Year != 2021 || v.Minor != 3 || v.Patch != 14 {
		t.Fatalf("got %+v", v)
	}
}

func TestParseEngineVersionWithoutPatch(t *testing.T) {
	v, ok := ParseEngineVersion("2019.4")
	if !ok {
		t.Fatal("ParseEngineVersion(2019.4) = false, want true")
	}
	if v.Year != 2019 || v.Minor != 4 || v.Patch != 0 {
		t.Fatalf("got %+v", v)
	}
}

func TestParseEngineVersionNoSuffix(t *testing.T) {
	v, ok := ParseEngineVersion("2022.3.5")
	if !ok || v.Year != 2022 || v.Minor != 3 || v.Patch != 5 {
		t.Fatalf("got %+v, %v", v, ok)
	}
}

func TestParseEngineVersionRejectsGarbage(t *testing.T) {
	if _, ok := ParseEngineVersion("not-a-version"); ok {
		t.Fatal("ParseEngineVersion(garbage) = true, want false")
	}
	if _, ok := ParseEngineVersion("2021"); ok {
		t.Fatal("ParseEngineVersion(single segment) = true, want false")
	}
}

func TestCoarseTagMono(t *testing.T) {
	cases := []struct {
		year uint32
		want string
	}{
		{2019, "19-20.x"},
		{2020, "19-20.x"},
		{2021, "2021.3"},
		{2022, "2022.3"},
		{2023, "2022.3"},
		{2017, "2021.3"},
	}
	for _, c := range cases {
		got := CoarseTag(offsets.MRT, EngineVersion{Year: c.year})
		if got != c.want {
			t.Errorf("CoarseTag(MRT, year=%d) = %q, want %q", c.year, got, c.want)
		}
	}
}

func TestCoarseTagIl2Cpp(t *testing.T) {
	cases := []struct {
		year uint32
		want string
	}{
		{2019, "19-20.x"},
		{2021, "2021.x"},
		{2022, "2022.x"},
		{2024, "2022.x"},
	}
	for _, c := range cases {
		got := CoarseTag(offsets.ART, EngineVersion{Year: c.year})
		if got != c.want {
			t.Errorf("CoarseTag(ART, year=%d) = %q, want %q", c.year, got, c.want)
		}
	}
}

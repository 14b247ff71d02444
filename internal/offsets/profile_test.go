package offsets

import "testing"

func TestMonoForFallsBackOnUnknownVersion(t *testing.T) {
	got := MonoFor("not-a-real-version")
	want := monoProfiles["2021.3"]
	if got != want {
		t.Fatalf("MonoFor(unknown) = %+v, want fallback %+v", got, want)
	}
}

func TestMonoForKnownVersions(t *testing.T) {
	for _, v := range []string{"2021.3", "2022.3", "19-20.x"} {
		if got := MonoFor(v); got.Version != v {
			t.Errorf("MonoFor(%q).Version = %q, want %q", v, got.Version, v)
		}
	}
}

func TestIl2CppForFallsBackOnUnknownVersion(t *testing.T) {
	got := Il2CppFor("not-a-real-version")
	want := il2cppProfiles["2021.x"]
	if got != want {
		t.Fatalf("Il2CppFor(unknown) = %+v, want fallback %+v", got, want)
	}
}

func TestForVersionSelectsRuntime(t *testing.T) {
	p, err := ForVersion(MRT, "2022.3")
	if err != nil {
		t.Fatalf("ForVersion(MRT) error: %v", err)
	}
	if p.Kind != MRT || p.Mono.Version != "2022.3" {
		t.Fatalf("ForVersion(MRT, 2022.3) = %+v, want Kind=MRT Mono.Version=2022.3", p)
	}

	p, err = ForVersion(ART, "19-20.x")
	if err != nil {
		t.Fatalf("ForVersion(ART) error: %v", err)
	}
	if p.Kind != ART || p.Il2Cpp.Version != "19-20.x" {
		t.Fatalf("ForVersion(ART, 19-20.x) = %+v, want Kind=ART Il2Cpp.Version=19-20.x", p)
	}
}

func TestForVersionRejectsUnknownRuntime(t *testing.T) {
	if _, err := ForVersion(RuntimeUnknown, ""); err == nil {
		t.Fatal("ForVersion(RuntimeUnknown) returned nil error, want one")
	}
}

func TestRuntimeString(t *testing.T) {
	cases := map[Runtime]string{MRT: "M-RT", ART: "A-RT", RuntimeUnknown: "unknown"}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Errorf("Runtime(%d).String() = %q, want %q", r, got, want)
		}
	}
}

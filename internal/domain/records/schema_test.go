package records

import "testing"

func TestFieldsForCategory_AllCategoriesNonEmpty(t *testing.T) {
	for _, c := range Categories() {
		fields := FieldsForCategory(c)
		if len(fields) == 0 {
			t.Errorf("category %s has no field descriptors", c)
		}
		seen := map[string]bool{}
		for _, fd := range fields {
			if fd.Name == "" || fd.Label == "" || fd.Kind == "" {
				t.Errorf("category %s has incomplete descriptor %+v", c, fd)
			}
			if seen[fd.Name] {
				t.Errorf("category %s has duplicate field %s", c, fd.Name)
			}
			seen[fd.Name] = true
		}
	}
}

func TestFieldsForCategory_UnknownGetsDefault(t *testing.T) {
	fields := FieldsForCategory(Category("unheardOf"))
	if len(fields) != 3 {
		t.Fatalf("expected default 3-field schema, got %d fields", len(fields))
	}
	want := []string{"name", "notes", "date"}
	for i, fd := range fields {
		if fd.Name != want[i] {
			t.Errorf("default field %d = %s, want %s", i, fd.Name, want[i])
		}
	}
}

func TestParseCategory(t *testing.T) {
	if _, err := ParseCategory("vitalSigns"); err != nil {
		t.Errorf("vitalSigns should parse: %v", err)
	}
	if _, err := ParseCategory("vitalsigns"); err == nil {
		t.Error("category names are case sensitive")
	}
	if _, err := ParseCategory(""); err == nil {
		t.Error("empty category should not parse")
	}
}

func TestCategoryStepping(t *testing.T) {
	order := Categories()
	if len(order) != 12 {
		t.Fatalf("expected 12 categories, got %d", len(order))
	}

	if next, ok := NextCategory(order[0]); !ok || next != order[1] {
		t.Errorf("NextCategory(first) = %s, %v", next, ok)
	}
	if _, ok := NextCategory(order[len(order)-1]); ok {
		t.Error("NextCategory at final category should report ok=false")
	}
	if prev, ok := PreviousCategory(order[1]); !ok || prev != order[0] {
		t.Errorf("PreviousCategory(second) = %s, %v", prev, ok)
	}
	if _, ok := PreviousCategory(order[0]); ok {
		t.Error("PreviousCategory at first category should report ok=false")
	}
}

func TestUploadKindForCategory(t *testing.T) {
	cases := map[Category]string{
		CategoryLabResults:     "labresults",
		CategoryImagingReports: "imaging",
		CategoryDocuments:      "documents",
		CategoryVitalSigns:     "general",
		CategoryAllergies:      "general",
	}
	for c, want := range cases {
		if got := UploadKindForCategory(c); got != want {
			t.Errorf("UploadKindForCategory(%s) = %s, want %s", c, got, want)
		}
	}
}

// Package records implements the patient medical file: a per-patient
// collection of record items grouped into fixed categories, authored by
// doctors through a dialog-style editor flow.
package records

import "fmt"

// Category identifies one of the fixed medical-record groupings.
type Category string

const (
	CategoryVitalSigns      Category = "vitalSigns"
	CategoryAllergies       Category = "allergies"
	CategoryDiagnoses       Category = "diagnoses"
	CategoryLabResults      Category = "labResults"
	CategoryImagingReports  Category = "imagingReports"
	CategoryMedications     Category = "medications"
	CategoryImmunizations   Category = "immunizations"
	CategorySurgicalHistory Category = "surgicalHistory"
	CategoryDocuments       Category = "documents"
	CategoryFamilyHistory   Category = "familyHistory"
	CategorySocialHistory   Category = "socialHistory"
	CategoryGeneralHistory  Category = "generalHistory"
)

var categoryOrder = []Category{
	CategoryVitalSigns,
	CategoryAllergies,
	CategoryDiagnoses,
	CategoryLabResults,
	CategoryImagingReports,
	CategoryMedications,
	CategoryImmunizations,
	CategorySurgicalHistory,
	CategoryDocuments,
	CategoryFamilyHistory,
	CategorySocialHistory,
	CategoryGeneralHistory,
}

// Categories returns every category in display order. The order drives
// previous/next tab stepping.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// ParseCategory validates a category path segment.
func ParseCategory(s string) (Category, error) {
	for _, c := range categoryOrder {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown record category: %q", s)
}

// NextCategory steps forward through the category order. ok is false at the
// final category.
func NextCategory(c Category) (Category, bool) {
	for i, cur := range categoryOrder {
		if cur == c && i+1 < len(categoryOrder) {
			return categoryOrder[i+1], true
		}
	}
	return c, false
}

// PreviousCategory steps backward through the category order. ok is false at
// the first category.
func PreviousCategory(c Category) (Category, bool) {
	for i, cur := range categoryOrder {
		if cur == c && i > 0 {
			return categoryOrder[i-1], true
		}
	}
	return c, false
}

// FieldKind is the input kind of a record field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindTextarea FieldKind = "textarea"
	KindFile     FieldKind = "file"
	KindTags     FieldKind = "tags"
	KindJSON     FieldKind = "json"
	KindBool     FieldKind = "bool"
)

// FieldDescriptor describes one field of a record category.
type FieldDescriptor struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
	Accept   string    `json:"accept,omitempty"`
}

var fieldSchemas = map[Category][]FieldDescriptor{
	CategoryVitalSigns: {
		{Name: "bloodPressure", Label: "Blood Pressure", Kind: KindText, Required: true},
		{Name: "heartRate", Label: "Heart Rate (bpm)", Kind: KindNumber, Required: true},
		{Name: "temperature", Label: "Temperature (°C)", Kind: KindNumber},
		{Name: "weight", Label: "Weight (kg)", Kind: KindNumber},
		{Name: "height", Label: "Height (cm)", Kind: KindNumber},
		{Name: "oxygenSaturation", Label: "Oxygen Saturation (%)", Kind: KindNumber},
		{Name: "date", Label: "Date Recorded", Kind: KindDate, Required: true},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategoryAllergies: {
		{Name: "name", Label: "Allergen", Kind: KindText, Required: true},
		{Name: "severity", Label: "Severity", Kind: KindSelect, Required: true, Options: []string{"mild", "moderate", "severe"}},
		{Name: "reaction", Label: "Reaction", Kind: KindText},
		{Name: "date", Label: "Date Identified", Kind: KindDate},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategoryDiagnoses: {
		{Name: "name", Label: "Diagnosis", Kind: KindText, Required: true},
		{Name: "icdCode", Label: "ICD Code", Kind: KindText},
		{Name: "status", Label: "Status", Kind: KindSelect, Options: []string{"active", "resolved", "chronic"}},
		{Name: "date", Label: "Date Diagnosed", Kind: KindDate, Required: true},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategoryLabResults: {
		{Name: "testName", Label: "Test Name", Kind: KindText, Required: true},
		{Name: "results", Label: "Results", Kind: KindJSON},
		{Name: "referenceRange", Label: "Reference Range", Kind: KindText},
		{Name: "date", Label: "Test Date", Kind: KindDate, Required: true},
		{Name: "file", Label: "Report File", Kind: KindFile, Accept: ".pdf,.png,.jpg"},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategoryImagingReports: {
		{Name: "type", Label: "Imaging Type", Kind: KindSelect, Required: true, Options: []string{"X-Ray", "CT", "MRI", "Ultrasound", "PET"}},
		{Name: "bodyPart", Label: "Body Part", Kind: KindText},
		{Name: "findings", Label: "Findings", Kind: KindTextarea},
		{Name: "date", Label: "Study Date", Kind: KindDate, Required: true},
		{Name: "file", Label: "Image File", Kind: KindFile, Accept: "image/*,.pdf,.dcm"},
	},
	CategoryMedications: {
		{Name: "name", Label: "Medication", Kind: KindText, Required: true},
		{Name: "dose", Label: "Dose", Kind: KindText, Required: true},
		{Name: "frequency", Label: "Frequency", Kind: KindText, Required: true},
		{Name: "route", Label: "Route", Kind: KindSelect, Options: []string{"oral", "iv", "im", "topical", "inhaled"}},
		{Name: "startDate", Label: "Start Date", Kind: KindDate, Required: true},
		{Name: "endDate", Label: "End Date", Kind: KindDate},
		{Name: "active", Label: "Active", Kind: KindBool},
		{Name: "instructions", Label: "Instructions", Kind: KindTextarea},
	},
	CategoryImmunizations: {
		{Name: "vaccine", Label: "Vaccine", Kind: KindText, Required: true},
		{Name: "dose", Label: "Dose Number", Kind: KindText},
		{Name: "date", Label: "Date Administered", Kind: KindDate, Required: true},
		{Name: "administeredBy", Label: "Administered By", Kind: KindText},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategorySurgicalHistory: {
		{Name: "procedure", Label: "Procedure", Kind: KindText, Required: true},
		{Name: "surgeon", Label: "Surgeon", Kind: KindText},
		{Name: "date", Label: "Procedure Date", Kind: KindDate, Required: true},
		{Name: "outcome", Label: "Outcome", Kind: KindText},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategoryDocuments: {
		{Name: "title", Label: "Title", Kind: KindText, Required: true},
		{Name: "tags", Label: "Tags", Kind: KindTags},
		{Name: "file", Label: "Document", Kind: KindFile, Required: true, Accept: ".pdf,.doc,.docx,.png,.jpg"},
		{Name: "date", Label: "Document Date", Kind: KindDate},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategoryFamilyHistory: {
		{Name: "condition", Label: "Condition", Kind: KindText, Required: true},
		{Name: "relation", Label: "Relation", Kind: KindSelect, Required: true, Options: []string{"mother", "father", "sibling", "grandparent", "other"}},
		{Name: "ageAtOnset", Label: "Age at Onset", Kind: KindNumber},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategorySocialHistory: {
		{Name: "habit", Label: "Habit", Kind: KindSelect, Required: true, Options: []string{"smoking", "alcohol", "exercise", "diet", "occupation"}},
		{Name: "status", Label: "Status", Kind: KindText},
		{Name: "frequency", Label: "Frequency", Kind: KindText},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
	CategoryGeneralHistory: {
		{Name: "name", Label: "Title", Kind: KindText, Required: true},
		{Name: "date", Label: "Date", Kind: KindDate},
		{Name: "notes", Label: "Notes", Kind: KindTextarea},
	},
}

// defaultFields is returned for categories without a declared schema.
var defaultFields = []FieldDescriptor{
	{Name: "name", Label: "Name", Kind: KindText, Required: true},
	{Name: "notes", Label: "Notes", Kind: KindTextarea},
	{Name: "date", Label: "Date", Kind: KindDate},
}

// FieldsForCategory returns the ordered field descriptors for a category.
// Unknown categories get the default name/notes/date triple so the editor can
// always render something.
func FieldsForCategory(c Category) []FieldDescriptor {
	if fields, ok := fieldSchemas[c]; ok {
		out := make([]FieldDescriptor, len(fields))
		copy(out, fields)
		return out
	}
	out := make([]FieldDescriptor, len(defaultFields))
	copy(out, defaultFields)
	return out
}

// UploadKindForCategory maps a category to the upload route its file fields
// go through.
func UploadKindForCategory(c Category) string {
	switch c {
	case CategoryLabResults:
		return "labresults"
	case CategoryImagingReports:
		return "imaging"
	case CategoryDocuments:
		return "documents"
	}
	return "general"
}

package records

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careportal/careportal/internal/platform/api"
)

// EditorState is the dialog lifecycle: closed -> open -> submitting -> closed.
type EditorState int

const (
	StateClosed EditorState = iota
	StateOpen
	StateSubmitting
)

func (s EditorState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateSubmitting:
		return "submitting"
	}
	return "unknown"
}

// EditorMode distinguishes create from edit dialogs.
type EditorMode string

const (
	ModeAdd  EditorMode = "add"
	ModeEdit EditorMode = "edit"
)

// FileValue is a raw file handle sitting in a draft field before submission.
// Submit uploads it and replaces the field with the returned URL.
type FileValue struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Uploader is the upload collaborator. kind is one of the upload route kinds.
type Uploader interface {
	UploadFile(ctx context.Context, kind, filename, contentType string, content io.Reader) (string, error)
}

// EditorSession drives one record dialog. A session that fails to submit
// stays open with its draft intact so the caller can correct and retry.
type EditorSession struct {
	state    EditorState
	mode     EditorMode
	category Category
	recordID uuid.UUID
	draft    map[string]interface{}
}

func NewEditorSession() *EditorSession {
	return &EditorSession{state: StateClosed}
}

func (e *EditorSession) State() EditorState { return e.state }
func (e *EditorSession) Mode() EditorMode   { return e.mode }
func (e *EditorSession) Category() Category { return e.category }

// Draft returns a copy of the current draft values.
func (e *EditorSession) Draft() map[string]interface{} {
	out := make(map[string]interface{}, len(e.draft))
	for k, v := range e.draft {
		out[k] = v
	}
	return out
}

// OpenAdd starts a create dialog for the category with an empty draft.
func (e *EditorSession) OpenAdd(category Category) error {
	if e.state != StateClosed {
		return api.MutationError(fmt.Sprintf("cannot open dialog while %s", e.state), nil)
	}
	if _, err := ParseCategory(string(category)); err != nil {
		return api.ValidationError("unknown record category", map[string]string{"category": err.Error()})
	}
	e.state = StateOpen
	e.mode = ModeAdd
	e.category = category
	e.recordID = uuid.Nil
	e.draft = map[string]interface{}{}
	return nil
}

// OpenEdit starts an edit dialog seeded from an existing record. Immutable
// fields never enter the draft, and date-kind values are normalized to
// YYYY-MM-DD so a no-change submit round-trips cleanly.
func (e *EditorSession) OpenEdit(item *RecordItem) error {
	if e.state != StateClosed {
		return api.MutationError(fmt.Sprintf("cannot open dialog while %s", e.state), nil)
	}
	if item == nil {
		return api.InvalidRecord("no record selected for edit")
	}
	draft := make(map[string]interface{}, len(item.Fields))
	dateFields := map[string]bool{}
	for _, fd := range FieldsForCategory(item.Category) {
		if fd.Kind == KindDate {
			dateFields[fd.Name] = true
		}
	}
	for k, v := range item.Fields {
		switch k {
		case "id", "_id", "doctorId", "createdBy", "createdAt":
			continue
		}
		if dateFields[k] {
			v = normalizeDate(v)
		}
		draft[k] = v
	}
	e.state = StateOpen
	e.mode = ModeEdit
	e.category = item.Category
	e.recordID = item.ID
	e.draft = draft
	return nil
}

// SetField sets a draft value. Only legal while the dialog is open.
func (e *EditorSession) SetField(name string, value interface{}) error {
	if e.state != StateOpen {
		return api.MutationError(fmt.Sprintf("cannot edit draft while %s", e.state), nil)
	}
	e.draft[name] = value
	return nil
}

// Cancel closes the dialog and discards the draft.
func (e *EditorSession) Cancel() error {
	if e.state == StateClosed {
		return api.MutationError("no dialog open", nil)
	}
	e.state = StateClosed
	e.draft = nil
	return nil
}

// Submit runs the submission pipeline: required-field validation, file
// upload, category-specific coercions, then the store mutation. On any
// failure the session returns to open with the draft intact; on success the
// dialog closes and the reloaded medical file is returned.
func (e *EditorSession) Submit(ctx context.Context, svc *Service, up Uploader, patientID, doctorID uuid.UUID) (*MedicalFile, error) {
	if e.state != StateOpen {
		return nil, api.MutationError(fmt.Sprintf("cannot submit while %s", e.state), nil)
	}
	e.state = StateSubmitting

	if fieldErrs := e.validateRequired(); len(fieldErrs) > 0 {
		e.state = StateOpen
		return nil, api.ValidationError("missing required fields", fieldErrs)
	}

	payload, err := e.preparePayload(ctx, up)
	if err != nil {
		e.state = StateOpen
		return nil, err
	}

	var file *MedicalFile
	switch e.mode {
	case ModeAdd:
		file, err = svc.AddRecord(ctx, patientID, e.category, doctorID, payload)
	case ModeEdit:
		file, err = svc.UpdateRecord(ctx, patientID, e.category, e.recordID, doctorID, payload)
	default:
		err = api.MutationError("unknown editor mode", nil)
	}
	if err != nil {
		e.state = StateOpen
		return nil, err
	}

	e.state = StateClosed
	e.draft = nil
	return file, nil
}

func (e *EditorSession) validateRequired() map[string]string {
	fieldErrs := map[string]string{}
	for _, fd := range FieldsForCategory(e.category) {
		if !fd.Required {
			continue
		}
		v, ok := e.draft[fd.Name]
		if !ok || isEmptyValue(v) {
			fieldErrs[fd.Name] = fd.Label + " is required"
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

// preparePayload applies the per-kind coercions to a copy of the draft.
func (e *EditorSession) preparePayload(ctx context.Context, up Uploader) (map[string]interface{}, error) {
	payload := make(map[string]interface{}, len(e.draft))
	for k, v := range e.draft {
		payload[k] = v
	}

	for _, fd := range FieldsForCategory(e.category) {
		v, ok := payload[fd.Name]
		if !ok {
			continue
		}
		switch fd.Kind {
		case KindFile:
			fv, isFile := v.(*FileValue)
			if !isFile {
				continue
			}
			if up == nil {
				return nil, api.MutationError("no upload backend configured", nil)
			}
			url, err := up.UploadFile(ctx, UploadKindForCategory(e.category), fv.Name, fv.ContentType, fv.Content)
			if err != nil {
				return nil, api.MutationError("file upload failed", err)
			}
			payload[fd.Name] = url
		case KindDate:
			payload[fd.Name] = normalizeDate(v)
		case KindJSON:
			if raw, isString := v.(string); isString {
				payload[fd.Name] = parseJSONField(raw)
			}
		case KindTags:
			if raw, isString := v.(string); isString {
				payload[fd.Name] = splitTags(raw)
			}
		}
	}
	return payload, nil
}

func isEmptyValue(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []string:
		return len(x) == 0
	}
	return false
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// normalizeDate re-serializes a date value to YYYY-MM-DD. Values that cannot
// be interpreted as dates pass through unchanged.
func normalizeDate(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return x.Format("2006-01-02")
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return v
}

// parseJSONField parses free-text JSON. Malformed text never fails the
// submission; it is wrapped as {result: raw} instead.
func parseJSONField(raw string) interface{} {
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return map[string]interface{}{"result": raw}
	}
	return parsed
}

// splitTags splits comma-separated tags and trims each entry. Empty entries
// from trailing commas are kept as-is; "a,b," yields ["a","b",""].
func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

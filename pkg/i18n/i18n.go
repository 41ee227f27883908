// Package i18n holds the user-facing strings of the editor in Mongolian
// (the default) and English.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Lang is a supported UI language.
type Lang string

const (
	Mongolian Lang = "mn"
	English   Lang = "en"
)

// Default is used when nothing better matches.
const Default = Mongolian

var (
	supported = []language.Tag{language.Mongolian, language.English}
	matcher   = language.NewMatcher(supported)
)

// Match picks the best supported language for the given preferences, which
// may be plain tags ("en-US") or Accept-Language headers.
func Match(prefs ...string) Lang {
	if len(prefs) == 0 {
		return Default
	}
	_, idx := language.MatchStrings(matcher, prefs...)
	if idx == 1 {
		return English
	}
	return Mongolian
}

// Key identifies a message.
type Key string

const (
	Title            Key = "title"
	NewUnitLabel     Key = "new_unit_label"
	Saved            Key = "saved"
	ResetDone        Key = "reset_done"
	Unsaved          Key = "unsaved"
	Save             Key = "save"
	Reset            Key = "reset"
	AddUnit          Key = "add_unit"
	Preview          Key = "preview"
	EditTitle        Key = "edit_title"
	Delete           Key = "delete"
	Cancel           Key = "cancel"
	RootSelectTitle  Key = "root_select_title"
	RootIsCurrent    Key = "root_is_current"
	RootSelectPrompt Key = "root_select_prompt"
	DiagramNotFound  Key = "diagram_not_found"
	PNGExported      Key = "png_exported"
	ExportFailed     Key = "export_failed"
	UnknownError     Key = "unknown_error"
	ConfirmDelete    Key = "confirm_delete"
	ConfirmReset     Key = "confirm_reset"
	ConfirmOverwrite Key = "confirm_overwrite"
	Orphans          Key = "orphans"
	PreviewOn        Key = "preview_on"
)

var catalog = map[Lang]map[Key]string{
	Mongolian: {
		Title:            "Байгууллагын бүтэц",
		NewUnitLabel:     "Шинэ нэгж",
		Saved:            "✅ Амжилттай хадгаллаа",
		ResetDone:        "↩️ Буцаалтыг амжилттай гүйцэтгэлээ",
		Unsaved:          "● Өөрчлөлт хадгалагдаагүй",
		Save:             "Хадгалах",
		Reset:            "↩ Буцаах",
		AddUnit:          "+ Нэгж нэмэх",
		Preview:          "👁 Preview",
		EditTitle:        "Нэгжийн нэр засах",
		Delete:           "Устгах",
		Cancel:           "Болих",
		RootSelectTitle:  "Root нэгж солих",
		RootIsCurrent:    "%q нь одоогийн root байна.",
		RootSelectPrompt: "Шинэ root нэгжийг сонгоно уу.",
		DiagramNotFound:  "Диаграммыг олох боломжгүй",
		PNGExported:      "✅ PNG амжилттай экспортлогдлоо",
		ExportFailed:     "PNG экспорт амжилтгүй болсон: %s",
		UnknownError:     "Үл мэдэгдэх алдаа",
		ConfirmDelete:    "%q нэгжийг устгах уу?",
		ConfirmReset:     "Хадгалаагүй өөрчлөлтүүдийг устгах уу?",
		ConfirmOverwrite: "%q слот дахь бүтцийг уншиж чадсангүй. Дарж бичих үү?",
		Orphans:          "Холбоосгүй нэгжүүд",
		PreviewOn:        "Зөвхөн харах горим",
	},
	English: {
		Title:            "Organization structure",
		NewUnitLabel:     "New unit",
		Saved:            "✅ Saved",
		ResetDone:        "↩️ Changes reverted",
		Unsaved:          "● Unsaved changes",
		Save:             "Save",
		Reset:            "↩ Reset",
		AddUnit:          "+ Add unit",
		Preview:          "👁 Preview",
		EditTitle:        "Rename unit",
		Delete:           "Delete",
		Cancel:           "Cancel",
		RootSelectTitle:  "Replace root unit",
		RootIsCurrent:    "%q is the current root.",
		RootSelectPrompt: "Choose the new root unit.",
		DiagramNotFound:  "Diagram not found",
		PNGExported:      "✅ PNG exported",
		ExportFailed:     "PNG export failed: %s",
		UnknownError:     "Unknown error",
		ConfirmDelete:    "Delete unit %q?",
		ConfirmReset:     "Discard unsaved changes?",
		ConfirmOverwrite: "Slot %q holds a chart that could not be read. Overwrite it?",
		Orphans:          "Unattached units",
		PreviewOn:        "Preview mode",
	},
}

// T returns the message for key in lang, formatted with args when given.
// Unknown languages fall back to [Default]; unknown keys return the key.
func T(lang Lang, key Key, args ...any) string {
	msgs, ok := catalog[lang]
	if !ok {
		msgs = catalog[Default]
	}
	msg, ok := msgs[key]
	if !ok {
		return string(key)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Package format holds the static table of file formats supported by the
// document editing service. The table is versioned with the code, it is
// not extensible at runtime.
package format

import (
	"path/filepath"
	"strings"
)

// DocumentType is the editor category of a file format.
type DocumentType string

const (
	TypeWord  DocumentType = "word"
	TypeCell  DocumentType = "cell"
	TypeSlide DocumentType = "slide"
	// TypeNone marks an extension the editing service cannot open.
	TypeNone DocumentType = ""
)

type capabilities struct {
	docType   DocumentType
	edit      bool
	fillForms bool
}

var supportedFormats = map[string]capabilities{
	"djvu":  {docType: TypeWord},
	"doc":   {docType: TypeWord},
	"docm":  {docType: TypeWord},
	"docx":  {docType: TypeWord, edit: true},
	"docxf": {docType: TypeWord, edit: true},
	"dot":   {docType: TypeWord},
	"dotm":  {docType: TypeWord},
	"dotx":  {docType: TypeWord},
	"epub":  {docType: TypeWord},
	"fb2":   {docType: TypeWord},
	"fodt":  {docType: TypeWord},
	"html":  {docType: TypeWord},
	"mht":   {docType: TypeWord},
	"odt":   {docType: TypeWord},
	"ott":   {docType: TypeWord},
	"oxps":  {docType: TypeWord},
	"pdf":   {docType: TypeWord},
	"rtf":   {docType: TypeWord},
	"txt":   {docType: TypeWord},
	"xps":   {docType: TypeWord},
	"xml":   {docType: TypeWord},
	"oform": {docType: TypeWord, fillForms: true},

	"csv":  {docType: TypeCell},
	"fods": {docType: TypeCell},
	"ods":  {docType: TypeCell},
	"ots":  {docType: TypeCell},
	"xls":  {docType: TypeCell},
	"xlsm": {docType: TypeCell},
	"xlsx": {docType: TypeCell, edit: true},
	"xlt":  {docType: TypeCell},
	"xltm": {docType: TypeCell},
	"xltx": {docType: TypeCell},

	"fodp": {docType: TypeSlide},
	"odp":  {docType: TypeSlide},
	"otp":  {docType: TypeSlide},
	"pot":  {docType: TypeSlide},
	"potm": {docType: TypeSlide},
	"potx": {docType: TypeSlide},
	"pps":  {docType: TypeSlide},
	"ppsm": {docType: TypeSlide},
	"ppsx": {docType: TypeSlide},
	"ppt":  {docType: TypeSlide},
	"pptm": {docType: TypeSlide},
	"pptx": {docType: TypeSlide, edit: true},
}

// Extension returns the lower-case extension of a filename without the
// leading dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// GetDocumentType returns the editor category for an extension, or
// TypeNone for unsupported formats. Lookup is case-insensitive.
func GetDocumentType(extension string) DocumentType {
	return supportedFormats[strings.ToLower(extension)].docType
}

// IsSupported reports whether the editing service can open the extension.
func IsSupported(extension string) bool {
	return GetDocumentType(extension) != TypeNone
}

// IsEditable reports whether the extension can be edited, not just viewed.
func IsEditable(extension string) bool {
	return supportedFormats[strings.ToLower(extension)].edit
}

// IsFillableForm reports whether the extension is a fillable form format.
func IsFillableForm(extension string) bool {
	return supportedFormats[strings.ToLower(extension)].fillForms
}

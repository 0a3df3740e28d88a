package models

// EditorConfig is the configuration object handed to the embedded editor.
// When a shared secret is configured, Token holds an HS256 JWT over the
// rest of the object.
type EditorConfig struct {
	Type         string         `json:"type"`
	Width        string         `json:"width"`
	Height       string         `json:"height"`
	DocumentType string         `json:"documentType"`
	Document     EditorDocument `json:"document"`
	EditorConfig EditorSettings `json:"editorConfig"`
	Token        string         `json:"token,omitempty"`
}

type EditorDocument struct {
	Title       string            `json:"title"`
	Url         string            `json:"url"`
	FileType    string            `json:"fileType"`
	Key         string            `json:"key"`
	Info        EditorDocInfo     `json:"info"`
	Permissions EditorPermissions `json:"permissions"`
}

type EditorDocInfo struct {
	Owner    string `json:"owner,omitempty"`
	Uploaded string `json:"uploaded,omitempty"`
}

type EditorPermissions struct {
	Download  bool `json:"download"`
	Edit      bool `json:"edit"`
	FillForms bool `json:"fillForms"`
}

type EditorSettings struct {
	CallbackUrl   string              `json:"callbackUrl"`
	Mode          string              `json:"mode"`
	Lang          string              `json:"lang"`
	User          EditorUser          `json:"user"`
	Customization EditorCustomization `json:"customization"`
}

type EditorUser struct {
	Id   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type EditorCustomization struct {
	Goback EditorGoback `json:"goback"`
}

type EditorGoback struct {
	Url string `json:"url,omitempty"`
}

// EditorParams binds GET /media/:id/editor.
type EditorParams struct {
	Id     string `path:"id" validate:"required"`
	Mode   string `query:"mode"`
	Lang   string `query:"lang"`
	UserId string `query:"userId"`
}

// EditorConfigResponse wraps the config so unsupported formats come back
// as an explicit user-facing state instead of a config with an empty
// document type.
type EditorConfigResponse struct {
	Supported bool          `json:"supported"`
	Message   string        `json:"message,omitempty"`
	Config    *EditorConfig `json:"config,omitempty"`
}

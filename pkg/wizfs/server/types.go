package server

import (
	"encoding/json"
)

// Envelope is the wire shape of every message, surface-bound and
// host-bound alike: a type tag plus the fields of that message kind.
type Envelope struct {
	Type string `json:"type"`

	// Session and workspace addressing.
	Folder string `json:"folder,omitempty"`
	Key    string `json:"key,omitempty"`

	// Payload fields, populated per kind.
	Filename   string            `json:"filename,omitempty"`
	FolderName string            `json:"folderName,omitempty"`
	Text       string            `json:"text,omitempty"`
	Path       string            `json:"path,omitempty"`
	Name       string            `json:"name,omitempty"`
	Dir        string            `json:"dir,omitempty"`
	Mode       string            `json:"mode,omitempty"`
	Title      string            `json:"title,omitempty"`
	Level      string            `json:"level,omitempty"`
	Message    string            `json:"message,omitempty"`
	Missing    bool              `json:"missing,omitempty"`
	Sources    []string          `json:"sources,omitempty"`
	Tabs       json.RawMessage   `json:"tabs,omitempty"`
	Target     json.RawMessage   `json:"target,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
	Root       json.RawMessage   `json:"root,omitempty"`
	Undo       int               `json:"undo,omitempty"`
	Redo       int               `json:"redo,omitempty"`
}

// Surface-bound message kinds.
const (
	TypeInit     = "init"
	TypeOpenTab  = "openTab"
	TypeContent  = "content"
	TypeSaved    = "saved"
	TypeDeleted  = "deleted"
	TypeTemplate = "template"
	TypeNotice   = "notice"
	TypeTree     = "tree"
	TypeHistory  = "history"
	TypeError    = "error"
)

// Host-bound message kinds.
const (
	TypeOpen                    = "open"
	TypeRead                    = "read"
	TypeEdit                    = "edit"
	TypeWrite                   = "write"
	TypeRequestTemplate         = "requestTemplate"
	TypeRequestTemplateLastDrag = "requestTemplateFromLastDrag"
	TypeCreateFile              = "createFile"
	TypeCreateFolder            = "createFolder"
	TypeCreateDocument          = "createDocument"
	TypeRename                  = "rename"
	TypeDelete                  = "delete"
	TypeMove                    = "move"
	TypeDrop                    = "drop"
	TypeRequestTree             = "requestTree"
	TypeUndo                    = "undo"
	TypeRedo                    = "redo"
	TypeSetLastDrag             = "setLastDrag"
)

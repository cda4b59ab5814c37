package session

// Outgoing is the sealed set of messages a session sends to the editor
// surface. The server renders them as JSON envelopes.
type Outgoing interface{ isOutgoing() }

// Tab describes one editor tab in the init message.
type Tab struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Filename string `json:"filename"`
}

// Init announces a freshly opened folder and its tab set.
type Init struct {
	FolderName string `json:"folderName"`
	Tabs       []Tab  `json:"tabs"`
}

// OpenTab asks the surface to switch the active tab.
type OpenTab struct {
	Key string `json:"key"`
}

// Content delivers a file's text. Missing is set when the file does not
// exist on disk.
type Content struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Text     string `json:"text"`
	Missing  bool   `json:"missing"`
}

// Saved acknowledges a persisted write.
type Saved struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
}

// Deleted reports an external deletion applied to a clean buffer.
type Deleted struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
}

// Template carries drop-insertion text for the pug tab.
type Template struct {
	Text    string `json:"text"`
	Missing bool   `json:"missing"`
}

func (Init) isOutgoing()     {}
func (OpenTab) isOutgoing()  {}
func (Content) isOutgoing()  {}
func (Saved) isOutgoing()    {}
func (Deleted) isOutgoing()  {}
func (Template) isOutgoing() {}

// Sink receives a session's outgoing messages.
type Sink func(Outgoing)

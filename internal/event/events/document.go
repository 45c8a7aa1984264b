package events

import "github.com/dshills/a11ybus/internal/event"

// Document interface identity.
const (
	DocumentInterface = "org.a11y.atspi.Event.Document"
	DocumentTag       = "Document:"
)

// DocumentEvent is any event of the Document interface.
type DocumentEvent interface {
	event.Event
	isDocumentEvent()
}

// DocumentGroup is the member table of the Document interface.
var DocumentGroup = event.NewGroup("Document", DocumentInterface, DocumentTag,
	event.SignalSpec{Member: "LoadComplete", Decode: itemOnly[DocumentLoadComplete]},
	event.SignalSpec{Member: "Reload", Decode: itemOnly[DocumentReload]},
	event.SignalSpec{Member: "LoadStopped", Decode: itemOnly[DocumentLoadStopped]},
	event.SignalSpec{Member: "ContentChanged", Decode: itemOnly[DocumentContentChanged]},
	event.SignalSpec{Member: "AttributesChanged", Decode: itemOnly[DocumentAttributesChanged]},
	event.SignalSpec{Member: "PageChanged", Decode: itemOnly[DocumentPageChanged]},
)

func documentSignal(member string) *event.Signal { return DocumentGroup.Signal(member) }

// DocumentLoadComplete reports that the document finished loading.
type DocumentLoadComplete struct{ Item event.Accessible }

func (e DocumentLoadComplete) Source() event.Accessible { return e.Item }
func (DocumentLoadComplete) Signal() *event.Signal      { return documentSignal("LoadComplete") }
func (DocumentLoadComplete) Body() event.Body           { return emptyBody() }
func (DocumentLoadComplete) isDocumentEvent()           {}

// DocumentReload reports that the document is being reloaded.
type DocumentReload struct{ Item event.Accessible }

func (e DocumentReload) Source() event.Accessible { return e.Item }
func (DocumentReload) Signal() *event.Signal      { return documentSignal("Reload") }
func (DocumentReload) Body() event.Body           { return emptyBody() }
func (DocumentReload) isDocumentEvent()           {}

// DocumentLoadStopped reports that loading was stopped before completion.
type DocumentLoadStopped struct{ Item event.Accessible }

func (e DocumentLoadStopped) Source() event.Accessible { return e.Item }
func (DocumentLoadStopped) Signal() *event.Signal      { return documentSignal("LoadStopped") }
func (DocumentLoadStopped) Body() event.Body           { return emptyBody() }
func (DocumentLoadStopped) isDocumentEvent()           {}

// DocumentContentChanged reports that the document content changed.
type DocumentContentChanged struct{ Item event.Accessible }

func (e DocumentContentChanged) Source() event.Accessible { return e.Item }
func (DocumentContentChanged) Signal() *event.Signal      { return documentSignal("ContentChanged") }
func (DocumentContentChanged) Body() event.Body           { return emptyBody() }
func (DocumentContentChanged) isDocumentEvent()           {}

// DocumentAttributesChanged reports that document attributes changed.
type DocumentAttributesChanged struct{ Item event.Accessible }

func (e DocumentAttributesChanged) Source() event.Accessible { return e.Item }
func (DocumentAttributesChanged) Signal() *event.Signal      { return documentSignal("AttributesChanged") }
func (DocumentAttributesChanged) Body() event.Body           { return emptyBody() }
func (DocumentAttributesChanged) isDocumentEvent()           {}

// DocumentPageChanged reports that the current page changed.
type DocumentPageChanged struct{ Item event.Accessible }

func (e DocumentPageChanged) Source() event.Accessible { return e.Item }
func (DocumentPageChanged) Signal() *event.Signal      { return documentSignal("PageChanged") }
func (DocumentPageChanged) Body() event.Body           { return emptyBody() }
func (DocumentPageChanged) isDocumentEvent()           {}

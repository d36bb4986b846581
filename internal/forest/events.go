package forest

import "context"

type EventType int

const (
	CreateFile   EventType = iota // A file was installed for a new URI.
	UpdateFile                    // A file's content or module name changed.
	DeleteFile                    // A file was removed.
	CreateImport                  // An import edge was added.
	DeleteImport                  // An import edge was removed.
)

// FileEvent describes the file side of an event.
type FileEvent struct {
	ID           FileID
	URI          string
	ModuleName   string
	IsDependency bool
}

// ImportEvent carries only topology.
type ImportEvent struct {
	Source FileID
	Target FileID
}

// Event describes a single change in the forest.
type Event struct {
	Type   EventType
	File   *FileEvent   // Populated for file events.
	Import *ImportEvent // Populated for import events.
}

// Subscribe returns a channel of change events until ctx is canceled.
// Events are dropped for subscribers that do not keep up.
func (f *Forest) Subscribe(ctx context.Context) <-chan Event {
	f.subMu.Lock()
	ch := make(chan Event, 64)
	sid := f.nextSubID
	f.nextSubID++
	f.subscribers[sid] = ch
	f.subMu.Unlock()

	go func() {
		<-ctx.Done()
		f.subMu.Lock()
		delete(f.subscribers, sid)
		close(ch)
		f.subMu.Unlock()
	}()
	return ch
}

// emit sends event to all subscribers without blocking.
func (f *Forest) emit(event Event) {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	for _, ch := range f.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func fileEvent(sf *SourceFile) *FileEvent {
	return &FileEvent{ID: sf.ID, URI: sf.URI, ModuleName: sf.ModuleName, IsDependency: sf.IsDependency}
}

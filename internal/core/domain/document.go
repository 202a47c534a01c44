package domain

// DocumentType identifies the kind of source a document came from.
// Stored in the doc.type column as a small integer (1=file, 2=email, 3=webpage).
type DocumentType int

const (
	DocumentTypeFile    DocumentType = 1
	DocumentTypeEmail   DocumentType = 2
	DocumentTypeWebpage DocumentType = 3
)

func (t DocumentType) String() string {
	switch t {
	case DocumentTypeFile:
		return "file"
	case DocumentTypeEmail:
		return "email"
	case DocumentTypeWebpage:
		return "webpage"
	default:
		return "unknown"
	}
}

// Document is a candidate item produced by a DocumentSource. Locator is the
// document's canonical identity string, unique within doc. GetText is called
// at most once per indexing pass by the worker that claims this document.
type Document struct {
	Locator   string
	MTime     int64
	Title     string
	Extension string
	Type      DocumentType
	From      string
	To        string
	Size      int64
	GetText   func() (string, error)
}

// Row is the persisted form of a Document, after id assignment.
type Row struct {
	ID              int64
	Type            DocumentType
	Locator         string
	MTime           int64
	Title           string
	Extension       string
	From            string
	To              string
	Size            int64
	WordCount       int
	UniqueWordCount int
}

// Classification records why a Document was (or was not) pushed to the
// indexer channel, for dispatcher statistics and logging.
type Classification int

const (
	ClassNew Classification = iota
	ClassOutdated
	ClassUptodate
	ClassError
)

func (c Classification) String() string {
	switch c {
	case ClassNew:
		return "new"
	case ClassOutdated:
		return "outdated"
	case ClassUptodate:
		return "uptodate"
	case ClassError:
		return "error"
	default:
		return "unknown"
	}
}

// Fragment is a worker's per-document contribution to zero or more posting
// lists, ready to be merged and appended by the writer. Postings maps
// word_hash to the varint-encoded triple (doc_id, frequency, average_position).
type Fragment struct {
	NewID           int64
	Supersedes      *int64 // old document id, when this fragment supersedes a prior row
	Row             Row
	Postings        map[int64][]byte
	shutdown        bool
}

// ShutdownFragment returns the sentinel value used to signal a worker or the
// writer that no further fragments are coming on this channel.
func ShutdownFragment() *Fragment {
	return &Fragment{shutdown: true}
}

// IsShutdown reports whether this Fragment is the channel-draining sentinel.
func (f *Fragment) IsShutdown() bool {
	return f != nil && f.shutdown
}

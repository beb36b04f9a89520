package documents

import "time"

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindText Kind = "text"
)

// Page is a single extracted PDF page. Numbers start at 1.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"-"`
}

// Document is immutable once loaded. PDFs carry Pages, text and markdown files carry Text.
type Document struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Pages []Page `json:"-"`
	Text  string `json:"-"`
}

type LoadWarning struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Library holds PDFs first, then text documents, each group in filename order.
type Library struct {
	Documents []Document    `json:"documents"`
	Warnings  []LoadWarning `json:"warnings"`
	LoadedAt  time.Time     `json:"loaded_at"`
}

func (l *Library) PDFs() []Document {
	return l.byKind(KindPDF)
}

func (l *Library) Texts() []Document {
	return l.byKind(KindText)
}

func (l *Library) byKind(kind Kind) []Document {
	var docs []Document
	for _, doc := range l.Documents {
		if doc.Kind == kind {
			docs = append(docs, doc)
		}
	}
	return docs
}

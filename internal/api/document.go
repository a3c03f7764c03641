package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/altin/brunoview/internal/model"
	"github.com/altin/brunoview/internal/normalize"
)

// ErrCouldNotLoad is returned when a results document cannot be read or
// parsed. Validation failures are reported separately by normalize.Validate.
var ErrCouldNotLoad = errors.New("could not load file")

// Document is one results file as fetched from disk or a server.
type Document struct {
	Name string
	Size int64
	Body []byte
	Raw  any
}

// Source produces results documents.
type Source interface {
	Fetch(ctx context.Context) (Document, error)
	Describe() string
}

// Loaded is a validated and normalized document.
type Loaded struct {
	Document Document
	Shape    normalize.Shape
	Dataset  model.Dataset
}

// Load fetches from src, validates the document shape and normalizes it.
func Load(ctx context.Context, src Source) (Loaded, error) {
	doc, err := src.Fetch(ctx)
	if err != nil {
		return Loaded{}, err
	}
	if err := normalize.Validate(doc.Raw); err != nil {
		return Loaded{Document: doc}, err
	}
	return Loaded{
		Document: doc,
		Shape:    normalize.Classify(doc.Raw),
		Dataset:  normalize.Normalize(doc.Raw),
	}, nil
}

func parse(name string, body []byte) (Document, error) {
	raw, err := normalize.Decode(body)
	if err != nil {
		return Document{}, fmt.Errorf("%w %s: %w", ErrCouldNotLoad, name, err)
	}
	return Document{Name: name, Size: int64(len(body)), Body: body, Raw: raw}, nil
}

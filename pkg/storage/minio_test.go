package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentObjectName(t *testing.T) {
	assert.Equal(t, "documents/12/notes.pdf", DocumentObjectName(12, "notes.pdf"))
}

func TestNewObjectStoreDisabled(t *testing.T) {
	MinioClient = nil
	assert.Nil(t, NewObjectStore())
}

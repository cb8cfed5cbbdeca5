package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/finbridge/escalator/internal/letterxpress"
)

// PrintJobRecord captures a submitted print job.
type PrintJobRecord struct {
	Filename string
	Content  []byte
}

// InMemoryPrintStore implements letterxpress.Client, recording jobs.
type InMemoryPrintStore struct {
	mu   sync.Mutex
	Jobs []PrintJobRecord
}

func NewInMemoryPrintStore() *InMemoryPrintStore {
	return &InMemoryPrintStore{}
}

func (s *InMemoryPrintStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Jobs = nil
}

func (s *InMemoryPrintStore) SubmitPrintJob(_ context.Context, pdf []byte, filename string) (*letterxpress.PrintJobResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Jobs = append(s.Jobs, PrintJobRecord{Filename: filename, Content: pdf})
	return &letterxpress.PrintJobResult{JobID: fmt.Sprintf("job-%d", len(s.Jobs))}, nil
}

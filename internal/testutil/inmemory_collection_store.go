package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/finbridge/escalator/internal/paywise"
)

// UploadedDocument records a claim attachment.
type UploadedDocument struct {
	ClaimID  string
	Filename string
	Content  []byte
}

// InMemoryCollectionStore implements paywise.Client with in-memory
// debtor and claim records.
type InMemoryCollectionStore struct {
	mu sync.Mutex

	debtorsByReference map[string]paywise.Debtor
	claimsByDocRef     map[string]paywise.Claim
	claimsByYourRef    map[string]paywise.Claim

	CreatedDebtors  []paywise.DebtorPayload
	CreatedClaims   []paywise.ClaimPayload
	ReleasedClaims  []string
	Uploads         []UploadedDocument
	nextClaimNumber int
}

func NewInMemoryCollectionStore() *InMemoryCollectionStore {
	return &InMemoryCollectionStore{
		debtorsByReference: make(map[string]paywise.Debtor),
		claimsByDocRef:     make(map[string]paywise.Claim),
		claimsByYourRef:    make(map[string]paywise.Claim),
	}
}

func (s *InMemoryCollectionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debtorsByReference = make(map[string]paywise.Debtor)
	s.claimsByDocRef = make(map[string]paywise.Claim)
	s.claimsByYourRef = make(map[string]paywise.Claim)
	s.CreatedDebtors = nil
	s.CreatedClaims = nil
	s.ReleasedClaims = nil
	s.Uploads = nil
	s.nextClaimNumber = 0
}

// SeedDebtor registers an existing debtor for a reference.
func (s *InMemoryCollectionStore) SeedDebtor(reference, debtorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debtorsByReference[reference] = paywise.Debtor{ID: debtorID}
}

func (s *InMemoryCollectionStore) FindDebtorByReference(_ context.Context, reference string) (*paywise.Debtor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if debtor, ok := s.debtorsByReference[reference]; ok {
		return &debtor, nil
	}
	return nil, nil
}

func (s *InMemoryCollectionStore) CreateDebtor(_ context.Context, payload *paywise.DebtorPayload) (*paywise.Debtor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreatedDebtors = append(s.CreatedDebtors, *payload)
	debtor := paywise.Debtor{ID: fmt.Sprintf("debtor-%d", len(s.CreatedDebtors))}
	s.debtorsByReference[payload.YourReference] = debtor
	return &debtor, nil
}

func (s *InMemoryCollectionStore) FindClaim(_ context.Context, documentReference, claimReference string) (*paywise.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if documentReference != "" {
		if claim, ok := s.claimsByDocRef[documentReference]; ok {
			return &claim, nil
		}
		return nil, nil
	}
	if claimReference != "" {
		if claim, ok := s.claimsByYourRef[claimReference]; ok {
			return &claim, nil
		}
	}
	return nil, nil
}

func (s *InMemoryCollectionStore) CreateClaim(_ context.Context, payload *paywise.ClaimPayload) (*paywise.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreatedClaims = append(s.CreatedClaims, *payload)
	s.nextClaimNumber++
	claim := paywise.Claim{ID: fmt.Sprintf("claim-%d", s.nextClaimNumber)}
	s.claimsByDocRef[payload.DocumentReference] = claim
	s.claimsByYourRef[payload.YourReference] = claim
	return &claim, nil
}

func (s *InMemoryCollectionStore) ReleaseClaim(_ context.Context, claimID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ReleasedClaims = append(s.ReleasedClaims, claimID)
	return nil
}

func (s *InMemoryCollectionStore) UploadClaimDocument(_ context.Context, claimID, filename string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads = append(s.Uploads, UploadedDocument{
		ClaimID:  claimID,
		Filename: filename,
		Content:  content,
	})
	return nil
}

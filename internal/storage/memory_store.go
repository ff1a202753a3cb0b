package storage

import (
	"context"
	"fmt"
	"sort"
	"surveycore/internal/models"
	"sync"
	"time"
)

// MemoryStore keeps the ledger in process and is persisted through
// Snapshot/Restore. All methods hand out copies.
type MemoryStore struct {
	mu          sync.RWMutex
	campaigns   map[string]*models.Campaign
	tokens      map[string]*models.Token
	tokenByFP   map[string]string
	responses   map[string]*models.Response
	responseKey map[string]string
	answers     map[string]map[string]models.Answer
	audit       []models.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.campaigns = make(map[string]*models.Campaign)
	s.tokens = make(map[string]*models.Token)
	s.tokenByFP = make(map[string]string)
	s.responses = make(map[string]*models.Response)
	s.responseKey = make(map[string]string)
	s.answers = make(map[string]map[string]models.Answer)
	s.audit = nil
}

func responseKey(campaignID, anonymousID string) string {
	return campaignID + "\x00" + anonymousID
}

func (s *MemoryStore) PutCampaign(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) GetCampaign(_ context.Context, id string) (*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) ListDueCampaigns(_ context.Context, now time.Time) ([]*models.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Campaign
	for _, c := range s.campaigns {
		if c.Due(now) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) TransitionCampaign(_ context.Context, id string, from, to models.CampaignStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != from {
		return conflict("campaign %s is %s, expected %s", id, c.Status, from)
	}
	c.Status = to
	switch to {
	case models.CampaignActive:
		c.StartedAt = &at
	case models.CampaignClosed:
		c.ClosedAt = &at
	}
	return nil
}

func (s *MemoryStore) PutTokens(_ context.Context, tokens []*models.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		if id, ok := s.tokenByFP[t.Fingerprint]; ok && id != t.ID {
			return conflict("token fingerprint collision")
		}
	}
	for _, t := range tokens {
		s.tokens[t.ID] = t.Clone()
		s.tokenByFP[t.Fingerprint] = t.ID
	}
	return nil
}

func (s *MemoryStore) GetTokenByFingerprint(_ context.Context, fingerprint string) (*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokenByFP[fingerprint]
	if !ok {
		return nil, ErrNotFound
	}
	return s.tokens[id].Clone(), nil
}

func (s *MemoryStore) StartResponse(_ context.Context, tokenID, ipHash string, r *models.Response) (*models.Response, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := responseKey(r.CampaignID, r.AnonymousID)
	if id, ok := s.responseKey[key]; ok {
		return s.responses[id].Clone(), false, nil
	}
	t, ok := s.tokens[tokenID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if t.Exhausted() {
		return nil, false, ErrTokenExhausted
	}
	if _, ok := s.responses[r.ID]; ok {
		return nil, false, conflict("response id %s already exists", r.ID)
	}
	t.UsedCount++
	if ipHash != "" {
		t.IPHash = ipHash
	}
	s.responses[r.ID] = r.Clone()
	s.responseKey[key] = r.ID
	return r.Clone(), true, nil
}

func (s *MemoryStore) ListTokens(_ context.Context, campaignID string) ([]*models.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Token
	for _, t := range s.tokens {
		if t.CampaignID == campaignID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateResponse(_ context.Context, r *models.Response) (*models.Response, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := responseKey(r.CampaignID, r.AnonymousID)
	if id, ok := s.responseKey[key]; ok {
		return s.responses[id].Clone(), false, nil
	}
	if _, ok := s.responses[r.ID]; ok {
		return nil, false, conflict("response id %s already exists", r.ID)
	}
	s.responses[r.ID] = r.Clone()
	s.responseKey[key] = r.ID
	return r.Clone(), true, nil
}

func (s *MemoryStore) GetResponse(_ context.Context, id string) (*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.responses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryStore) FindResponse(_ context.Context, campaignID, anonymousID string) (*models.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.responseKey[responseKey(campaignID, anonymousID)]
	if !ok {
		return nil, ErrNotFound
	}
	return s.responses[id].Clone(), nil
}

// inProgress returns the live response or the error a writer should see.
func (s *MemoryStore) inProgress(id string) (*models.Response, error) {
	r, ok := s.responses[id]
	if !ok {
		return nil, models.ErrInvalidSession
	}
	switch r.Status {
	case models.StatusInProgress:
		return r, nil
	case models.StatusCompleted:
		return nil, models.ErrAlreadySubmitted
	default:
		return nil, models.ErrInvalidSession
	}
}

func (s *MemoryStore) SaveAnswers(_ context.Context, responseID string, answers []models.Answer, savedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.inProgress(responseID)
	if err != nil {
		return err
	}
	byQuestion, ok := s.answers[responseID]
	if !ok {
		byQuestion = make(map[string]models.Answer, len(answers))
		s.answers[responseID] = byQuestion
	}
	for _, a := range answers {
		a.ResponseID = responseID
		byQuestion[a.QuestionID] = a
	}
	r.LastSavedAt = savedAt
	return nil
}

func (s *MemoryStore) CompleteResponse(_ context.Context, responseID string, at time.Time) (*models.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.inProgress(responseID)
	if err != nil {
		return nil, err
	}
	r.Status = models.StatusCompleted
	r.CompletedAt = &at
	r.LastSavedAt = at
	return r.Clone(), nil
}

func (s *MemoryStore) SetDemographics(_ context.Context, responseID string, d models.Demographics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.inProgress(responseID)
	if err != nil {
		return err
	}
	r.Demographics = d
	return nil
}

func (s *MemoryStore) ExpireResponses(_ context.Context, campaignID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.responses {
		if r.CampaignID == campaignID && r.Status.CanTransition(models.StatusExpired) {
			r.Status = models.StatusExpired
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountResponses(_ context.Context, campaignID string) (map[models.ResponseStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.ResponseStatus]int, 3)
	for _, r := range s.responses {
		if r.CampaignID == campaignID {
			counts[r.Status]++
		}
	}
	return counts, nil
}

func (s *MemoryStore) ListSubmissions(_ context.Context, campaignID string) ([]models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Submission
	for id, r := range s.responses {
		if r.CampaignID != campaignID || r.Status != models.StatusCompleted {
			continue
		}
		answers := make([]models.Answer, 0, len(s.answers[id]))
		for _, a := range s.answers[id] {
			answers = append(answers, a)
		}
		models.SortAnswers(answers)
		out = append(out, models.Submission{Response: *r.Clone(), Answers: answers})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Response.ID < out[j].Response.ID })
	return out, nil
}

func (s *MemoryStore) AppendAudit(_ context.Context, e models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

func (s *MemoryStore) ListAudit(_ context.Context, campaignID string) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AuditEntry
	for _, e := range s.audit {
		if e.CampaignID == campaignID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{Version: SnapshotVersion}
	for _, c := range s.campaigns {
		snap.Campaigns = append(snap.Campaigns, c.Clone())
	}
	for _, t := range s.tokens {
		snap.Tokens = append(snap.Tokens, t.Clone())
	}
	for _, r := range s.responses {
		snap.Responses = append(snap.Responses, r.Clone())
	}
	for _, byQuestion := range s.answers {
		for _, a := range byQuestion {
			snap.Answers = append(snap.Answers, a)
		}
	}
	snap.Audit = append(snap.Audit, s.audit...)

	sort.Slice(snap.Campaigns, func(i, j int) bool { return snap.Campaigns[i].ID < snap.Campaigns[j].ID })
	sort.Slice(snap.Tokens, func(i, j int) bool { return snap.Tokens[i].ID < snap.Tokens[j].ID })
	sort.Slice(snap.Responses, func(i, j int) bool { return snap.Responses[i].ID < snap.Responses[j].ID })
	sort.Slice(snap.Answers, func(i, j int) bool {
		if snap.Answers[i].ResponseID != snap.Answers[j].ResponseID {
			return snap.Answers[i].ResponseID < snap.Answers[j].ResponseID
		}
		return snap.Answers[i].QuestionID < snap.Answers[j].QuestionID
	})
	return snap
}

// Restore replaces the whole store with snap.
func (s *MemoryStore) Restore(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	known := make(map[string]struct{}, len(snap.Responses))
	for _, r := range snap.Responses {
		known[r.ID] = struct{}{}
	}
	for _, a := range snap.Answers {
		if _, ok := known[a.ResponseID]; !ok {
			return fmt.Errorf("answer %s references unknown response %s", a.QuestionID, a.ResponseID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	for _, c := range snap.Campaigns {
		s.campaigns[c.ID] = c.Clone()
	}
	for _, t := range snap.Tokens {
		s.tokens[t.ID] = t.Clone()
		s.tokenByFP[t.Fingerprint] = t.ID
	}
	for _, r := range snap.Responses {
		s.responses[r.ID] = r.Clone()
		s.responseKey[responseKey(r.CampaignID, r.AnonymousID)] = r.ID
	}
	for _, a := range snap.Answers {
		byQuestion, ok := s.answers[a.ResponseID]
		if !ok {
			byQuestion = make(map[string]models.Answer)
			s.answers[a.ResponseID] = byQuestion
		}
		byQuestion[a.QuestionID] = a
	}
	s.audit = append(s.audit, snap.Audit...)
	return nil
}

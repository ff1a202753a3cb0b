package jobs

import (
	"context"
	"errors"
	"io"
	"surveycore/internal/models"
	"surveycore/internal/services"
	"surveycore/internal/storage"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

var seedTime = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

// seededStore holds one campaign with a completed response and answer.
func seededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := storage.NewMemoryStore()
	require.NoError(t, s.PutCampaign(ctx, &models.Campaign{
		ID: "c1", TenantID: "t1", Name: "Pulse", Status: models.CampaignActive,
		Modules: []models.ModuleCode{models.ModuleQCI}, CreatedAt: seedTime,
	}))
	require.NoError(t, s.PutTokens(ctx, []*models.Token{{
		ID: "tok-1", Fingerprint: "fp-1", CampaignID: "c1", ParticipantID: "p1",
		ModuleSet: []models.ModuleCode{models.ModuleQCI}, ExpiresAt: seedTime.Add(time.Hour), MaxUses: 1,
	}}))
	_, _, err := s.CreateResponse(ctx, &models.Response{
		ID: "r1", CampaignID: "c1", AnonymousID: "anon-1", Status: models.StatusInProgress, StartedAt: seedTime,
	})
	require.NoError(t, err)
	require.NoError(t, s.SaveAnswers(ctx, "r1", []models.Answer{{
		ModuleCode: models.ModuleQCI, QuestionID: "q1",
		Payload: models.LikertPayload{Dimension: "quality", Value: 4, ScaleMax: 5},
	}}, seedTime))
	_, err = s.CompleteResponse(ctx, "r1", seedTime.Add(time.Minute))
	require.NoError(t, err)
	return s
}

type mockPutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (m *mockPutter) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.inputs = append(m.inputs, params)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

type recordingArchiver struct {
	names []string
	data  [][]byte
	err   error
}

func (r *recordingArchiver) Archive(_ context.Context, name string, data []byte) error {
	r.names = append(r.names, name)
	r.data = append(r.data, data)
	return r.err
}

type mockCampaigns struct {
	services.CampaignServiceInterface
	sweeps int
	closed int
	err    error
}

func (m *mockCampaigns) SweepDue(_ context.Context) (int, error) {
	m.sweeps++
	return m.closed, m.err
}

var errBoom = errors.New("boom")

package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/jobapply/internal/ai"
	"github.com/spigell/jobapply/internal/form"
	"github.com/spigell/jobapply/internal/kv"
)

func TestUpsertAndMarkApplied(t *testing.T) {
	ctx := context.Background()
	h := New(kv.NewMemory(), zap.NewNop())

	job := form.Job{URL: "https://jobs.example.com/1", JobTitle: "SRE", Company: "Acme"}
	h.Upsert(ctx, job, &ai.FitResult{Score: 70, Reason: "solid"})

	record, ok := h.MarkApplied(ctx, job.URL)
	require.True(t, ok)
	assert.True(t, record.Applied)
	require.NotNil(t, record.AppliedAt)

	job.Company = "Acme Inc"
	h.Upsert(ctx, job, &ai.FitResult{Score: 75, Reason: "better"})

	records := h.List(ctx)
	require.Len(t, records, 1)
	assert.Equal(t, "Acme Inc", records[0].Company)
	assert.True(t, records[0].Applied, "re-viewing keeps applied state")
	assert.Equal(t, 75, records[0].FitScore.Score)

	_, ok = h.MarkApplied(ctx, "https://jobs.example.com/unknown")
	assert.False(t, ok)
}

func TestUpsertCap(t *testing.T) {
	ctx := context.Background()
	h := New(kv.NewMemory(), zap.NewNop())

	for i := range MaxRecords + 2 {
		h.Upsert(ctx, form.Job{URL: fmt.Sprintf("https://jobs.example.com/%d", i)}, nil)
	}

	records := h.List(ctx)
	require.Len(t, records, MaxRecords)
	assert.Equal(t, "https://jobs.example.com/2", records[0].URL)
}

func TestSaveApplication(t *testing.T) {
	t.Parallel()

	seen := form.Job{URL: "https://jobs.example.com/seen", JobTitle: "SRE", Company: "Acme"}

	tests := []struct {
		name        string
		app         Application
		wantRecords int
		wantTitle   string
		wantCompany string
		wantFit     bool
	}{
		{
			name:        "known job keeps its fit score",
			app:         Application{Position: "Senior SRE", URL: seen.URL},
			wantRecords: 1,
			wantTitle:   "Senior SRE",
			wantCompany: "Acme",
			wantFit:     true,
		},
		{
			name:        "unknown job becomes a record",
			app:         Application{Position: "Data Engineer", Company: "Initech", URL: "https://jobs.example.com/new"},
			wantRecords: 2,
			wantTitle:   "Data Engineer",
			wantCompany: "Initech",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			h := New(kv.NewMemory(), zap.NewNop())
			h.Upsert(ctx, seen, &ai.FitResult{Score: 70})

			record := h.SaveApplication(ctx, tt.app)
			require.NotNil(t, record.SavedAt)
			assert.Equal(t, tt.wantTitle, record.JobTitle)
			assert.Equal(t, tt.wantCompany, record.Company)
			assert.Equal(t, tt.wantFit, record.FitScore != nil)
			assert.False(t, record.Applied)

			assert.Len(t, h.List(ctx), tt.wantRecords)
		})
	}
}
